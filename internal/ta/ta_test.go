package ta

import (
	"math"
	"testing"
	"time"

	"sentiment-backtester/internal/types"
)

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func points(closes map[string]float64, order ...string) []types.PricePoint {
	out := make([]types.PricePoint, 0, len(order))
	for _, d := range order {
		out = append(out, types.PricePoint{Date: d, Close: closes[d]})
	}
	return out
}

func TestTrailingSMA(t *testing.T) {
	series := points(map[string]float64{
		"2026-01-01": 10, "2026-01-02": 20, "2026-01-03": 30, "2026-01-06": 40,
	}, "2026-01-01", "2026-01-02", "2026-01-03", "2026-01-06")

	got, ok := TrailingSMA(series, 3, day("2026-01-06"))
	if !ok {
		t.Fatal("expected SMA to resolve")
	}
	if got != 30 {
		t.Fatalf("SMA = %v, want 30", got)
	}

	// as_of between bars uses the trailing window ending at the prior bar.
	got, ok = TrailingSMA(series, 2, day("2026-01-05"))
	if !ok || got != 25 {
		t.Fatalf("SMA = %v ok=%v, want 25", got, ok)
	}

	if _, ok := TrailingSMA(series, 5, day("2026-01-06")); ok {
		t.Fatal("expected MISSING when window exceeds history")
	}
	if _, ok := TrailingSMA(series, 1, day("2025-12-31")); ok {
		t.Fatal("expected MISSING before first bar")
	}
}

func TestEMASeriesRecursion(t *testing.T) {
	series := points(map[string]float64{
		"2026-01-01": 1, "2026-01-02": 2, "2026-01-03": 3,
	}, "2026-01-01", "2026-01-02", "2026-01-03")

	// span 3 => alpha 0.5: 1, 1.5, 2.25
	ema := EMASeries(series, 3)
	want := []float64{1, 1.5, 2.25}
	for i, w := range want {
		if math.Abs(ema[i].Close-w) > 1e-12 {
			t.Fatalf("ema[%d] = %v, want %v", i, ema[i].Close, w)
		}
	}
}

func TestSampleAtFallsBackToEarlierDate(t *testing.T) {
	series := points(map[string]float64{
		"2026-01-02": 10, "2026-01-05": 20,
	}, "2026-01-02", "2026-01-05")

	got, ok := SampleAt(series, day("2026-01-04"))
	if !ok || got != 10 {
		t.Fatalf("SampleAt = %v ok=%v, want 10 from 2026-01-02", got, ok)
	}

	if _, ok := SampleAt(series, day("2026-01-01")); ok {
		t.Fatal("expected MISSING when no earlier date exists")
	}
}

func TestCrossover(t *testing.T) {
	rising := points(map[string]float64{
		"2026-01-01": 10, "2026-01-02": 11, "2026-01-03": 12, "2026-01-04": 13,
	}, "2026-01-01", "2026-01-02", "2026-01-03", "2026-01-04")

	action, ok := Crossover(rising, 2, 3, day("2026-01-04"))
	if !ok || action != types.Buy {
		t.Fatalf("rising crossover = %s ok=%v, want BUY", action, ok)
	}

	falling := points(map[string]float64{
		"2026-01-01": 13, "2026-01-02": 12, "2026-01-03": 11, "2026-01-04": 10,
	}, "2026-01-01", "2026-01-02", "2026-01-03", "2026-01-04")

	action, ok = Crossover(falling, 2, 3, day("2026-01-04"))
	if !ok || action != types.Sell {
		t.Fatalf("falling crossover = %s ok=%v, want SELL", action, ok)
	}

	if _, ok := Crossover(nil, 2, 3, day("2026-01-04")); ok {
		t.Fatal("expected crossover to be unresolvable on empty series")
	}
}

func TestMovingAverageDispatch(t *testing.T) {
	series := points(map[string]float64{
		"2026-01-01": 1, "2026-01-02": 2, "2026-01-03": 3,
	}, "2026-01-01", "2026-01-02", "2026-01-03")

	sma, ok := MovingAverage(series, 3, day("2026-01-03"), SMA)
	if !ok || sma != 2 {
		t.Fatalf("SMA dispatch = %v ok=%v, want 2", sma, ok)
	}
	ema, ok := MovingAverage(series, 3, day("2026-01-03"), EMA)
	if !ok || math.Abs(ema-2.25) > 1e-12 {
		t.Fatalf("EMA dispatch = %v ok=%v, want 2.25", ema, ok)
	}
}
