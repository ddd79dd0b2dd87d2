package main

import (
	"context"
	"os"
	"time"

	"sentiment-backtester/internal/engine"
	"sentiment-backtester/internal/interfaces"
	"sentiment-backtester/internal/llm/claude"
	"sentiment-backtester/internal/llm/gemini"
	"sentiment-backtester/internal/llm/noop"
	"sentiment-backtester/internal/logger"
	"sentiment-backtester/internal/marketdata"
	"sentiment-backtester/internal/news"
	"sentiment-backtester/internal/recorder"
	"sentiment-backtester/internal/store"
)

// buildEngine wires the news provider, classifier, price source and recorder
// into a run-ready engine.
func buildEngine(ctx context.Context, cfg *store.Config) (*engine.Engine, recorder.Recorder, error) {
	provider := newNewsProvider(ctx, cfg)
	classifier := newClassifier(ctx, cfg)
	prices := newPriceSource(ctx, cfg)

	rec, err := newRecorder(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	sentiment := news.NewService(provider, classifier, nil)
	return engine.New(cfg, sentiment, prices, rec), rec, nil
}

func newNewsProvider(ctx context.Context, cfg *store.Config) interfaces.NewsProvider {
	apiKey := os.Getenv(cfg.News.APIKeyEnv)
	if cfg.News.Provider == "SCRAPER" || apiKey == "" {
		if apiKey == "" && cfg.News.Provider != "SCRAPER" {
			logger.Warn(ctx, "No news API key found, falling back to scraper",
				"env", cfg.News.APIKeyEnv)
		}
		return news.NewScraper(30 * time.Second)
	}
	return news.NewClient(news.ClientConfig{
		APIKey:        apiKey,
		CacheDir:      cfg.News.CacheDir,
		MaxArticles:   cfg.News.MaxArticles,
		RatePerMinute: cfg.News.RatePerMinute,
		MaxRetries:    cfg.LLM.MaxRetries,
	})
}

func newClassifier(ctx context.Context, cfg *store.Config) interfaces.Classifier {
	switch cfg.LLM.Provider {
	case "CLAUDE":
		return claude.NewClassifier(cfg)
	case "GEMINI":
		return gemini.NewClassifier(cfg)
	default:
		logger.Warn(ctx, "No LLM provider configured - using noop classifier (all signals neutral)")
		return noop.NewClassifier()
	}
}

func newPriceSource(ctx context.Context, cfg *store.Config) interfaces.PriceSource {
	if cfg.Data.Source == "STATIC" {
		logger.Info(ctx, "Using static price data", "dir", cfg.Data.Dir)
		return marketdata.NewStaticSource(cfg.Data.Dir)
	}
	logger.Info(ctx, "Using live price data from Yahoo Finance")
	return marketdata.NewYahooSource()
}

func newRecorder(ctx context.Context, cfg *store.Config) (recorder.Recorder, error) {
	if cfg.Recorder.Driver != "sqlite" {
		return recorder.NewNoopRecorder(), nil
	}
	path := cfg.Recorder.Path
	if path == "" {
		path = "backtest.db"
	}
	rec, err := recorder.NewSQLiteRecorder(path)
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "Recording run to sqlite", "path", path)
	return rec, nil
}
