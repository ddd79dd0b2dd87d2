package recorder

// TradeRecord captures one ledger call during a run, including rejected and
// no-op trades.
type TradeRecord struct {
	Date    string // simulated trading day, YYYY-MM-DD
	Symbol  string
	Action  string
	Qty     int
	Price   float64
	Outcome string
}

// DaySnapshot captures the portfolio state at the end of one simulated day.
type DaySnapshot struct {
	Date       string
	Balance    float64
	StockValue float64
	TotalValue float64
}

// Recorder persists run history for later analysis. It records results, not
// resumable simulation state.
type Recorder interface {
	RecordTrade(t *TradeRecord) error
	RecordSnapshot(s *DaySnapshot) error
	Close() error
}
