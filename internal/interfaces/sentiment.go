package interfaces

import (
	"context"
	"time"

	"sentiment-backtester/internal/types"
)

// SentimentSource produces the news-derived trade direction and order size for
// a symbol on one simulated day.
type SentimentSource interface {
	Signal(ctx context.Context, symbol string, day time.Time) (types.TradeAction, int, error)
}
