package engine

import (
	"context"
	"time"

	"sentiment-backtester/internal/interfaces"
	"sentiment-backtester/internal/ledger"
	"sentiment-backtester/internal/logger"
	"sentiment-backtester/internal/marketdata"
	"sentiment-backtester/internal/recorder"
	"sentiment-backtester/internal/store"
	"sentiment-backtester/internal/ta"
	"sentiment-backtester/internal/trace"
	"sentiment-backtester/internal/tradelog"
	"sentiment-backtester/internal/types"
)

const dateLayout = "2006-01-02"

// Engine steps a simulation through the configured date range, one tick per
// calendar day, reconciling the sentiment and crossover signals per symbol
// and driving the ledger. Execution is sequential; the ledger has a single
// writer.
type Engine struct {
	cfg       *store.Config
	sentiment interfaces.SentimentSource
	prices    interfaces.PriceSource
	book      *ledger.Ledger
	rec       recorder.Recorder
	series    map[string]*marketdata.Series
}

type runStats struct {
	executed int
	rejected int
	skipped  int
}

// New creates an engine for one run. A nil recorder defaults to noop.
func New(cfg *store.Config, sentiment interfaces.SentimentSource, prices interfaces.PriceSource, rec recorder.Recorder) *Engine {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Engine{
		cfg:       cfg,
		sentiment: sentiment,
		prices:    prices,
		book:      ledger.New(cfg.InitialBalance),
		rec:       rec,
		series:    make(map[string]*marketdata.Series),
	}
}

// Run executes the simulation and returns the final report. Cancellation is
// honored between date ticks, so every completed day is fully committed.
func (e *Engine) Run(ctx context.Context) (*types.Report, error) {
	start, days := e.cfg.Window(time.Now())

	logger.Info(ctx, "Starting simulation",
		"start", start.Format(dateLayout), "days", days,
		"universe", e.cfg.Universe, "initial_balance", e.book.InitialBalance())

	e.loadHistory(ctx, start, days)

	stats := &runStats{}
	day := start
	for i := 0; i < days; i++ {
		if err := ctx.Err(); err != nil {
			logger.Warn(ctx, "Simulation cancelled between ticks", "completed_days", i)
			break
		}

		dayCtx, span := trace.StartSpan(ctx, "simulated-day")
		logger.Info(dayCtx, "Simulated day", "day", i+1, "date", day.Format(dateLayout))

		for _, symbol := range e.cfg.Universe {
			e.step(dayCtx, symbol, day, stats)
		}

		value := e.valuationOn(day)
		if err := e.rec.RecordSnapshot(&recorder.DaySnapshot{
			Date:       day.Format(dateLayout),
			Balance:    e.book.Balance(),
			StockValue: value,
			TotalValue: e.book.Balance() + value,
		}); err != nil {
			logger.Warn(dayCtx, "Failed to record snapshot", "error", err)
		}
		span.End()

		day = day.AddDate(0, 0, 1)
	}

	return e.report(start, day, days, stats), nil
}

// step handles one (day, symbol) pair. Missing indicators or prices skip the
// pair for that day only, never the run.
func (e *Engine) step(ctx context.Context, symbol string, day time.Time, stats *runStats) {
	date := day.Format(dateLayout)

	action, quantity, err := e.sentiment.Signal(ctx, symbol, day)
	if err != nil {
		logger.ErrorWithErr(ctx, "Sentiment signal failed, treating as neutral", err, "symbol", symbol)
		action, quantity = types.Nothing, 0
	}

	series := e.series[symbol]
	crossover, ok := ta.Crossover(series.Points(),
		e.cfg.Indicators.ShortEMA, e.cfg.Indicators.LongEMA, day)
	if !ok {
		logger.Info(ctx, "Skipping symbol, indicator unavailable", "symbol", symbol, "date", date)
		_ = tradelog.AppendDecision(tradelog.DecisionEntry{
			SimDate: date, Symbol: symbol, Sentiment: action.String(), Note: "missing indicator",
		})
		stats.skipped++
		return
	}

	// Both signals must agree on direction; any disagreement holds.
	final := types.Nothing
	if action == crossover {
		final = action
	}

	_ = tradelog.AppendDecision(tradelog.DecisionEntry{
		SimDate: date, Symbol: symbol,
		Sentiment: action.String(), Crossover: crossover.String(),
		Final: final.String(), Qty: quantity,
	})

	price, ok := series.CloseOn(day)
	if !ok {
		logger.Info(ctx, "Skipping symbol, no price for date", "symbol", symbol, "date", date)
		stats.skipped++
		return
	}

	outcome := e.book.Trade(ctx, final, symbol, quantity, price)
	switch outcome {
	case ledger.Executed:
		stats.executed++
	case ledger.InsufficientFunds, ledger.InsufficientShares:
		stats.rejected++
	}

	if outcome != ledger.NoAction {
		_ = tradelog.Append(tradelog.Entry{
			SimDate: date, Symbol: symbol, Action: final.String(),
			Qty: quantity, Price: price, Outcome: outcome.String(),
		})
		if err := e.rec.RecordTrade(&recorder.TradeRecord{
			Date: date, Symbol: symbol, Action: final.String(),
			Qty: quantity, Price: price, Outcome: outcome.String(),
		}); err != nil {
			logger.Warn(ctx, "Failed to record trade", "error", err)
		}
	}
}

// loadHistory fetches one year of closes before the window for every symbol,
// once, so indicator lookbacks have data. A failed fetch leaves an empty
// series and the symbol is skipped day by day.
func (e *Engine) loadHistory(ctx context.Context, start time.Time, days int) {
	from := start.AddDate(-1, 0, 0)
	to := start.AddDate(0, 0, days)

	logger.Info(ctx, "Loading price history", "symbols", len(e.cfg.Universe),
		"from", from.Format(dateLayout), "to", to.Format(dateLayout))

	for _, symbol := range e.cfg.Universe {
		points, err := e.prices.DailyCloses(ctx, symbol, from, to)
		if err != nil {
			logger.ErrorWithErr(ctx, "Failed to load price history", err, "symbol", symbol)
			points = nil
		}
		e.series[symbol] = marketdata.NewSeries(points)
	}
}

// valuationOn marks holdings to market using the most recent close at or
// before day. Symbols without any resolvable price are excluded.
func (e *Engine) valuationOn(day time.Time) float64 {
	return e.book.Valuation(func(symbol string) (float64, bool) {
		series, ok := e.series[symbol]
		if !ok {
			return 0, false
		}
		return series.LatestOn(day)
	})
}

func (e *Engine) report(start, end time.Time, days int, stats *runStats) *types.Report {
	stockValue := e.valuationOn(end)
	total := e.book.Balance() + stockValue

	return &types.Report{
		StartDate:      start.Format(dateLayout),
		EndDate:        end.AddDate(0, 0, -1).Format(dateLayout),
		Days:           days,
		InitialBalance: e.book.InitialBalance(),
		FinalBalance:   e.book.Balance(),
		StockValue:     stockValue,
		TotalValue:     total,
		NetGain:        total - e.book.InitialBalance(),
		Holdings:       e.book.Holdings(),
		TradesExecuted: stats.executed,
		TradesRejected: stats.rejected,
		DaysSkipped:    stats.skipped,
	}
}
