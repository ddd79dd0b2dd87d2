package marketdata

import (
	"sort"
	"time"

	"sentiment-backtester/internal/types"
)

const dateLayout = "2006-01-02"

// Series is an immutable, date-indexed daily close history for one symbol.
// It is built once per run and only read afterwards.
type Series struct {
	points []types.PricePoint
	byDate map[string]float64
}

// NewSeries builds a Series from price points, sorting them oldest first.
func NewSeries(points []types.PricePoint) *Series {
	sorted := make([]types.PricePoint, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date < sorted[j].Date })

	byDate := make(map[string]float64, len(sorted))
	for _, p := range sorted {
		byDate[p.Date] = p.Close
	}
	return &Series{points: sorted, byDate: byDate}
}

// CloseOn returns the close for the exact trading day, false when the market
// had no bar that day.
func (s *Series) CloseOn(day time.Time) (float64, bool) {
	c, ok := s.byDate[day.Format(dateLayout)]
	return c, ok
}

// LatestOn returns the most recent close at or before day, for mark-to-market
// valuation. False when the series has no bar that early.
func (s *Series) LatestOn(day time.Time) (float64, bool) {
	key := day.Format(dateLayout)
	for i := len(s.points) - 1; i >= 0; i-- {
		if s.points[i].Date <= key {
			return s.points[i].Close, true
		}
	}
	return 0, false
}

// Points returns the underlying sorted price points.
func (s *Series) Points() []types.PricePoint { return s.points }

// Len returns the number of trading days in the series.
func (s *Series) Len() int { return len(s.points) }
