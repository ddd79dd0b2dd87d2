package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"sentiment-backtester/internal/types"
)

// StaticSource reads daily closes from JSON files on disk, one file per
// symbol, for offline runs and tests. Each file holds an array of
// {"date":"YYYY-MM-DD","close":N} objects.
type StaticSource struct {
	dir string
}

// NewStaticSource creates a file-backed price source rooted at dir.
func NewStaticSource(dir string) *StaticSource {
	return &StaticSource{dir: dir}
}

// DailyCloses implements interfaces.PriceSource. Points outside [from, to]
// are filtered out.
func (s *StaticSource) DailyCloses(_ context.Context, symbol string, from, to time.Time) ([]types.PricePoint, error) {
	path := filepath.Join(s.dir, symbol+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("static price data for %s: %w", symbol, err)
	}

	var all []types.PricePoint
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("static price data for %s: %w", symbol, err)
	}

	lo := from.Format(dateLayout)
	hi := to.Format(dateLayout)
	points := make([]types.PricePoint, 0, len(all))
	for _, p := range all {
		if p.Date >= lo && p.Date <= hi {
			points = append(points, p)
		}
	}
	return points, nil
}
