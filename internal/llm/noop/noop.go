package noop

import (
	"context"

	"sentiment-backtester/internal/logger"
	"sentiment-backtester/internal/types"
)

// Classifier is the fallback used when no LLM provider is configured. It
// scores every article as neutral, which makes every fused signal zero.
type Classifier struct{}

// NewClassifier returns a classifier that always answers neutral.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// ClassifyArticles implements interfaces.Classifier.
func (c *Classifier) ClassifyArticles(ctx context.Context, subject string, articles []types.Article) ([]int, error) {
	logger.Debug(ctx, "Noop classifier called - all signals neutral", "subject", subject, "articles", len(articles))
	return make([]int, len(articles)), nil
}
