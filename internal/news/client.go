package news

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"sentiment-backtester/internal/logger"
	"sentiment-backtester/internal/types"
)

// Client fetches ranked articles from a NewsAPI-compatible endpoint. Fetched
// days are cached on disk per symbol and ranking, so re-running a window does
// not burn API quota.
type Client struct {
	apiKey      string
	baseURL     string
	httpClient  *http.Client
	limiter     *rate.Limiter
	cacheDir    string
	maxArticles int
	maxRetries  int

	mu sync.Mutex // guards cache files
}

// ClientConfig configures the NewsAPI client.
type ClientConfig struct {
	APIKey        string
	CacheDir      string
	MaxArticles   int
	RatePerMinute int
	MaxRetries    int
}

// NewClient creates a NewsAPI client with rate limiting and a disk cache.
func NewClient(cfg ClientConfig) *Client {
	if cfg.MaxArticles <= 0 {
		cfg.MaxArticles = 20
	}
	if cfg.RatePerMinute <= 0 {
		cfg.RatePerMinute = 30
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	return &Client{
		apiKey:      cfg.APIKey,
		baseURL:     "https://newsapi.org/v2",
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		limiter:     rate.NewLimiter(rate.Limit(float64(cfg.RatePerMinute)/60), 1),
		cacheDir:    cfg.CacheDir,
		maxArticles: cfg.MaxArticles,
		maxRetries:  cfg.MaxRetries,
	}
}

type everythingResponse struct {
	Status   string          `json:"status"`
	Message  string          `json:"message"`
	Articles []types.Article `json:"articles"`
}

// FetchRanked implements interfaces.NewsProvider. An empty result for a day
// is valid and is cached like any other.
func (c *Client) FetchRanked(ctx context.Context, subject string, day time.Time, rankBy types.RankBy) ([]types.Article, error) {
	date := day.Format("2006-01-02")

	if cached, ok := c.cacheGet(subject, rankBy, date); ok {
		logger.Debug(ctx, "News served from cache", "subject", subject, "date", date, "rank_by", string(rankBy))
		return cached, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("q", subject)
	q.Set("from", date)
	q.Set("to", date)
	q.Set("sortBy", string(rankBy))
	q.Set("pageSize", fmt.Sprintf("%d", c.maxArticles))
	q.Set("apiKey", c.apiKey)
	u := c.baseURL + "/everything?" + q.Encode()

	articles, err := c.fetchWithRetry(ctx, u)
	if err != nil {
		return nil, err
	}
	if len(articles) > c.maxArticles {
		articles = articles[:c.maxArticles]
	}

	if err := c.cacheSet(subject, rankBy, date, articles); err != nil {
		logger.Warn(ctx, "Failed to write news cache", "subject", subject, "error", err)
	}

	logger.Info(ctx, "Fetched news", "subject", subject, "date", date,
		"rank_by", string(rankBy), "articles", len(articles))
	return articles, nil
}

func (c *Client) fetchWithRetry(ctx context.Context, u string) ([]types.Article, error) {
	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			wait := backoff(attempt - 1)
			logger.Warn(ctx, "Retrying news fetch", "attempt", attempt, "wait", wait.String())
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("news http %d", resp.StatusCode)
			continue
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("news http %d: %s", resp.StatusCode, string(body))
		}

		var er everythingResponse
		if err := json.Unmarshal(body, &er); err != nil {
			return nil, fmt.Errorf("news decode: %w", err)
		}
		if er.Status != "ok" {
			return nil, fmt.Errorf("news api: %s", er.Message)
		}
		return er.Articles, nil
	}
	return nil, lastErr
}

func backoff(attempt int) time.Duration {
	d := 2 * time.Second << attempt
	if d > 30*time.Second {
		return 30 * time.Second
	}
	return d
}

func (c *Client) cachePath(subject string, rankBy types.RankBy) string {
	return filepath.Join(c.cacheDir, fmt.Sprintf("%s_%s.json", subject, rankBy))
}

func (c *Client) cacheGet(subject string, rankBy types.RankBy, date string) ([]types.Article, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.cachePath(subject, rankBy))
	if err != nil {
		return nil, false
	}
	var byDate map[string][]types.Article
	if err := json.Unmarshal(data, &byDate); err != nil {
		return nil, false
	}
	articles, ok := byDate[date]
	return articles, ok
}

func (c *Client) cacheSet(subject string, rankBy types.RankBy, date string, articles []types.Article) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	byDate := map[string][]types.Article{}
	if data, err := os.ReadFile(c.cachePath(subject, rankBy)); err == nil {
		_ = json.Unmarshal(data, &byDate)
	}
	byDate[date] = articles

	if err := os.MkdirAll(c.cacheDir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(byDate, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.cachePath(subject, rankBy), data, 0o644)
}
