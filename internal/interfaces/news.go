package interfaces

import (
	"context"
	"time"

	"sentiment-backtester/internal/types"
)

// NewsProvider returns the articles published for a subject on one day,
// ordered by the requested ranking. An empty slice is a valid result.
type NewsProvider interface {
	FetchRanked(ctx context.Context, subject string, day time.Time, rankBy types.RankBy) ([]types.Article, error)
}
