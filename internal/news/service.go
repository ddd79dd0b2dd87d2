package news

import (
	"context"
	"sync"
	"time"

	"sentiment-backtester/internal/interfaces"
	"sentiment-backtester/internal/logger"
	"sentiment-backtester/internal/ranking"
	"sentiment-backtester/internal/trace"
	"sentiment-backtester/internal/types"
)

// Service turns a day's ranked news into a trade signal: fetch the popularity
// and relevancy listings, classify the articles, fuse the two rankings and
// derive a direction and order size.
type Service struct {
	provider   interfaces.NewsProvider
	classifier interfaces.Classifier
	agg        *ranking.Aggregator
	cache      *signalCache
}

// NewService wires a provider and classifier into a sentiment source. A nil
// matcher means exact title matching across the two rankings.
func NewService(provider interfaces.NewsProvider, classifier interfaces.Classifier, matcher ranking.TitleMatcher) *Service {
	return &Service{
		provider:   provider,
		classifier: classifier,
		agg:        ranking.NewAggregator(matcher),
		cache:      newSignalCache(time.Hour),
	}
}

// Signal implements interfaces.SentimentSource. Classifier failures default
// every affected article to neutral; a day with no articles at all
// short-circuits to NOTHING with zero quantity.
func (s *Service) Signal(ctx context.Context, symbol string, day time.Time) (types.TradeAction, int, error) {
	ctx, span := trace.StartSpan(ctx, "sentiment-signal")
	defer span.End()

	key := symbol + "@" + day.Format("2006-01-02")
	if entry, ok := s.cache.get(key); ok {
		logger.Debug(ctx, "Using cached signal", "symbol", symbol, "date", day.Format("2006-01-02"))
		return entry.action, entry.quantity, nil
	}

	popularity := s.fetch(ctx, symbol, day, types.RankByPopularity)
	relevancy := s.fetch(ctx, symbol, day, types.RankByRelevancy)

	if len(popularity) == 0 && len(relevancy) == 0 {
		logger.Info(ctx, "No articles for day", "symbol", symbol, "date", day.Format("2006-01-02"))
		s.cache.set(key, signalEntry{action: types.Nothing})
		return types.Nothing, 0, nil
	}

	popRanked := s.rankedList(ctx, symbol, popularity)
	relRanked := s.rankedList(ctx, symbol, relevancy)

	fused := s.agg.Factorize(popRanked, relRanked)
	action := ranking.Action(fused)
	quantity := ranking.Quantity(fused)

	logger.Info(ctx, "Sentiment signal computed", "symbol", symbol,
		"date", day.Format("2006-01-02"), "fused", fused,
		"action", action.String(), "qty", quantity,
		"popularity_articles", len(popularity), "relevancy_articles", len(relevancy))

	s.cache.set(key, signalEntry{action: action, quantity: quantity, fused: fused})
	return action, quantity, nil
}

// fetch pulls one ranked listing; a provider failure is logged and treated as
// an empty listing, never surfaced.
func (s *Service) fetch(ctx context.Context, symbol string, day time.Time, rankBy types.RankBy) []types.Article {
	articles, err := s.provider.FetchRanked(ctx, symbol, day, rankBy)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to fetch ranked news", err,
			"symbol", symbol, "rank_by", string(rankBy))
		return nil
	}
	return articles
}

// rankedList classifies articles and pairs each with its 1-based listing
// rank. When classification fails every signal defaults to 0.
func (s *Service) rankedList(ctx context.Context, symbol string, articles []types.Article) []types.ArticleSentiment {
	if len(articles) == 0 {
		return nil
	}

	signals, err := s.classifier.ClassifyArticles(ctx, symbol, articles)
	if err != nil || len(signals) != len(articles) {
		logger.Warn(ctx, "Classification failed, defaulting signals to neutral",
			"symbol", symbol, "articles", len(articles), "error", err)
		signals = make([]int, len(articles))
	}

	ranked := make([]types.ArticleSentiment, len(articles))
	for i, a := range articles {
		ranked[i] = types.ArticleSentiment{Title: a.Title, Signal: signals[i], Rank: i + 1}
	}
	return ranked
}

// signalCache stores computed signals per (symbol, date) with a TTL so the
// same day is never classified twice within one run.
type signalCache struct {
	mu   sync.RWMutex
	data map[string]*cacheEntry
	ttl  time.Duration
}

type signalEntry struct {
	action   types.TradeAction
	quantity int
	fused    float64
}

type cacheEntry struct {
	entry     signalEntry
	timestamp time.Time
}

func newSignalCache(ttl time.Duration) *signalCache {
	return &signalCache{
		data: make(map[string]*cacheEntry),
		ttl:  ttl,
	}
}

func (c *signalCache) get(key string) (signalEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.data[key]
	if !ok || time.Since(e.timestamp) > c.ttl {
		return signalEntry{}, false
	}
	return e.entry, true
}

func (c *signalCache) set(key string, entry signalEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[key] = &cacheEntry{entry: entry, timestamp: time.Now()}
}
