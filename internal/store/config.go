package store

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const dateLayout = "2006-01-02"

// Config is the run configuration loaded from config.yaml. Validation errors
// are fatal and abort before the simulation starts; everything else that goes
// wrong during a run is handled in place.
type Config struct {
	InitialBalance float64  `yaml:"initial_balance"`
	Universe       []string `yaml:"universe"`

	// Either an explicit inclusive date range, or a rolling window of `days`
	// ticks starting `days_back` days before now (days_back defaults to days).
	StartDate string `yaml:"start_date"`
	EndDate   string `yaml:"end_date"`
	Days      int    `yaml:"days"`
	DaysBack  int    `yaml:"days_back"`

	Indicators struct {
		ShortEMA int `yaml:"short_ema"`
		LongEMA  int `yaml:"long_ema"`
	} `yaml:"indicators"`

	News struct {
		Provider      string `yaml:"provider"` // NEWSAPI or SCRAPER
		MaxArticles   int    `yaml:"max_articles"`
		CacheDir      string `yaml:"cache_dir"`
		RatePerMinute int    `yaml:"rate_per_minute"`
		APIKeyEnv     string `yaml:"api_key_env"`
	} `yaml:"news"`

	LLM struct {
		Provider    string  `yaml:"provider"` // CLAUDE, GEMINI or empty for noop
		Model       string  `yaml:"model"`
		MaxTokens   int     `yaml:"max_tokens"`
		Temperature float32 `yaml:"temperature"`
		MaxRetries  int     `yaml:"max_retries"`
	} `yaml:"llm"`

	Data struct {
		Source string `yaml:"source"` // LIVE (Yahoo) or STATIC (files)
		Dir    string `yaml:"dir"`    // directory for STATIC price files
	} `yaml:"data"`

	Recorder struct {
		Driver string `yaml:"driver"` // sqlite or none
		Path   string `yaml:"path"`
	} `yaml:"recorder"`
}

// Validate checks the configuration surface the simulation depends on.
func (c *Config) Validate() error {
	if c.InitialBalance <= 0 {
		return fmt.Errorf("initial_balance must be positive, got %.2f", c.InitialBalance)
	}
	if len(c.Universe) == 0 {
		return errors.New("universe cannot be empty")
	}
	if c.StartDate == "" && c.Days <= 0 {
		return errors.New("either start_date/end_date or a positive days window is required")
	}
	if (c.StartDate == "") != (c.EndDate == "") {
		return errors.New("start_date and end_date must be set together")
	}
	if c.StartDate != "" {
		start, err := time.Parse(dateLayout, c.StartDate)
		if err != nil {
			return fmt.Errorf("invalid start_date %q: %w", c.StartDate, err)
		}
		end, err := time.Parse(dateLayout, c.EndDate)
		if err != nil {
			return fmt.Errorf("invalid end_date %q: %w", c.EndDate, err)
		}
		if end.Before(start) {
			return fmt.Errorf("end_date %s is before start_date %s", c.EndDate, c.StartDate)
		}
	}
	if c.Indicators.ShortEMA <= 0 || c.Indicators.LongEMA <= 0 {
		return errors.New("indicator windows must be positive")
	}
	if c.Indicators.ShortEMA >= c.Indicators.LongEMA {
		return fmt.Errorf("short_ema (%d) must be below long_ema (%d)",
			c.Indicators.ShortEMA, c.Indicators.LongEMA)
	}
	if c.Data.Source != "LIVE" && c.Data.Source != "STATIC" {
		return fmt.Errorf("data.source must be 'LIVE' or 'STATIC', got %q", c.Data.Source)
	}
	if c.Data.Source == "STATIC" && c.Data.Dir == "" {
		return errors.New("data.dir is required when data.source is STATIC")
	}
	return nil
}

// Window resolves the simulated date range to a start day and tick count.
// Explicit dates win over the rolling window.
func (c *Config) Window(now time.Time) (start time.Time, days int) {
	if c.StartDate != "" {
		start, _ = time.Parse(dateLayout, c.StartDate)
		end, _ := time.Parse(dateLayout, c.EndDate)
		return start, int(end.Sub(start).Hours()/24) + 1
	}
	back := c.DaysBack
	if back == 0 {
		back = c.Days
	}
	return now.AddDate(0, 0, -back), c.Days
}

// LoadConfig reads, defaults and validates the configuration file.
func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	if c.Indicators.ShortEMA == 0 {
		c.Indicators.ShortEMA = 50
	}
	if c.Indicators.LongEMA == 0 {
		c.Indicators.LongEMA = 200
	}
	if c.News.MaxArticles == 0 {
		c.News.MaxArticles = 20
	}
	if c.News.CacheDir == "" {
		c.News.CacheDir = "news"
	}
	if c.News.RatePerMinute == 0 {
		c.News.RatePerMinute = 30
	}
	if c.News.APIKeyEnv == "" {
		c.News.APIKeyEnv = "NEWS_API_KEY"
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 1024
	}
	if c.LLM.MaxRetries == 0 {
		c.LLM.MaxRetries = 3
	}
	if c.Data.Source == "" {
		c.Data.Source = "LIVE"
	}
	if c.Recorder.Driver == "" {
		c.Recorder.Driver = "none"
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &c, nil
}
