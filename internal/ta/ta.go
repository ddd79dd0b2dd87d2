package ta

import (
	"time"

	"sentiment-backtester/internal/types"
)

// Kind selects the moving-average flavour.
type Kind int

const (
	SMA Kind = iota
	EMA
)

const dateLayout = "2006-01-02"

// MovingAverage computes the requested moving average over a daily close
// series, sampled at asOf. Points must be sorted oldest first. ok is false
// when the series has no usable value at or before asOf.
func MovingAverage(points []types.PricePoint, window int, asOf time.Time, kind Kind) (float64, bool) {
	switch kind {
	case EMA:
		return SampleAt(EMASeries(points, window), asOf)
	default:
		return TrailingSMA(points, window, asOf)
	}
}

// TrailingSMA is the arithmetic mean of the trailing `window` closes ending at
// or before asOf.
func TrailingSMA(points []types.PricePoint, window int, asOf time.Time) (float64, bool) {
	if window <= 0 {
		return 0, false
	}
	end := lastIndexAtOrBefore(points, asOf)
	if end < 0 || end+1 < window {
		return 0, false
	}
	sum := 0.0
	for i := end + 1 - window; i <= end; i++ {
		sum += points[i].Close
	}
	return sum / float64(window), true
}

// EMASeries computes an exponential moving average over the whole series with
// smoothing span = `span` (alpha = 2/(span+1)), seeded at the first close.
// The result keeps the input's dates so it can be sampled per trading day.
func EMASeries(points []types.PricePoint, span int) []types.PricePoint {
	if span <= 0 || len(points) == 0 {
		return nil
	}
	alpha := 2.0 / (float64(span) + 1.0)
	out := make([]types.PricePoint, len(points))
	out[0] = points[0]
	for i := 1; i < len(points); i++ {
		out[i] = types.PricePoint{
			Date:  points[i].Date,
			Close: alpha*points[i].Close + (1-alpha)*out[i-1].Close,
		}
	}
	return out
}

// SampleAt returns the series value for asOf. When the exact date has no
// entry, the nearest strictly earlier date is used; when no earlier date
// exists either, ok is false.
func SampleAt(points []types.PricePoint, asOf time.Time) (float64, bool) {
	i := lastIndexAtOrBefore(points, asOf)
	if i < 0 {
		return 0, false
	}
	return points[i].Close, true
}

// Crossover derives a trade direction from a short- and long-span EMA sampled
// at asOf: short above long means BUY, otherwise SELL. ok is false when
// either average cannot be resolved, in which case the caller skips the
// symbol for that day.
func Crossover(points []types.PricePoint, shortSpan, longSpan int, asOf time.Time) (types.TradeAction, bool) {
	short, ok := MovingAverage(points, shortSpan, asOf, EMA)
	if !ok {
		return types.Nothing, false
	}
	long, ok := MovingAverage(points, longSpan, asOf, EMA)
	if !ok {
		return types.Nothing, false
	}
	if short > long {
		return types.Buy, true
	}
	return types.Sell, true
}

// lastIndexAtOrBefore finds the last point dated at or before asOf, or -1.
// Date strings in YYYY-MM-DD form compare correctly as strings.
func lastIndexAtOrBefore(points []types.PricePoint, asOf time.Time) int {
	key := asOf.Format(dateLayout)
	for i := len(points) - 1; i >= 0; i-- {
		if points[i].Date <= key {
			return i
		}
	}
	return -1
}
