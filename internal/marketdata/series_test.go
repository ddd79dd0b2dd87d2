package marketdata

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"sentiment-backtester/internal/types"
)

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func TestSeriesSortsAndIndexes(t *testing.T) {
	s := NewSeries([]types.PricePoint{
		{Date: "2026-01-05", Close: 30},
		{Date: "2026-01-02", Close: 10},
		{Date: "2026-01-03", Close: 20},
	})

	if s.Len() != 3 {
		t.Fatalf("len = %d, want 3", s.Len())
	}
	if s.Points()[0].Date != "2026-01-02" {
		t.Fatalf("points not sorted: first = %s", s.Points()[0].Date)
	}

	c, ok := s.CloseOn(day("2026-01-03"))
	if !ok || c != 20 {
		t.Fatalf("CloseOn = %v ok=%v, want 20", c, ok)
	}
}

func TestCloseOnIsExactDateOnly(t *testing.T) {
	s := NewSeries([]types.PricePoint{{Date: "2026-01-02", Close: 10}})

	if _, ok := s.CloseOn(day("2026-01-03")); ok {
		t.Fatal("CloseOn should not fall back to earlier dates")
	}
}

func TestLatestOnScansBackward(t *testing.T) {
	s := NewSeries([]types.PricePoint{
		{Date: "2026-01-02", Close: 10},
		{Date: "2026-01-05", Close: 30},
	})

	c, ok := s.LatestOn(day("2026-01-04"))
	if !ok || c != 10 {
		t.Fatalf("LatestOn = %v ok=%v, want 10", c, ok)
	}
	if _, ok := s.LatestOn(day("2026-01-01")); ok {
		t.Fatal("expected no price before the first bar")
	}
}

func TestStaticSourceFiltersRange(t *testing.T) {
	dir := t.TempDir()
	points := []types.PricePoint{
		{Date: "2026-01-01", Close: 1},
		{Date: "2026-01-02", Close: 2},
		{Date: "2026-01-03", Close: 3},
	}
	data, _ := json.Marshal(points)
	if err := os.WriteFile(filepath.Join(dir, "AAPL.json"), data, 0o644); err != nil {
		t.Fatal(err)
	}

	src := NewStaticSource(dir)
	got, err := src.DailyCloses(context.Background(), "AAPL", day("2026-01-02"), day("2026-01-03"))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Date != "2026-01-02" {
		t.Fatalf("unexpected points: %+v", got)
	}

	if _, err := src.DailyCloses(context.Background(), "MISSING", day("2026-01-01"), day("2026-01-02")); err == nil {
		t.Fatal("expected error for missing symbol file")
	}
}
