package interfaces

import (
	"context"
	"time"

	"sentiment-backtester/internal/types"
)

// PriceSource fetches daily closing prices for a symbol over a date range,
// oldest first. Non-trading days are absent from the result.
type PriceSource interface {
	DailyCloses(ctx context.Context, symbol string, from, to time.Time) ([]types.PricePoint, error)
}
