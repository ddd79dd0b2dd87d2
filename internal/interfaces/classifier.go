package interfaces

import (
	"context"

	"sentiment-backtester/internal/types"
)

// Classifier scores each article as bad (-1), neutral (0) or good (+1) for the
// given subject. The returned slice has the same length and order as the input.
type Classifier interface {
	ClassifyArticles(ctx context.Context, subject string, articles []types.Article) ([]int, error)
}
