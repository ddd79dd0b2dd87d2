package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sentiment-backtester/internal/store"
	"sentiment-backtester/internal/types"
)

type stubSentiment struct {
	action types.TradeAction
	qty    int
	calls  int
}

func (s *stubSentiment) Signal(_ context.Context, _ string, _ time.Time) (types.TradeAction, int, error) {
	s.calls++
	return s.action, s.qty, nil
}

type stubPrices struct {
	points map[string][]types.PricePoint
}

func (s *stubPrices) DailyCloses(_ context.Context, symbol string, _, _ time.Time) ([]types.PricePoint, error) {
	return s.points[symbol], nil
}

func testConfig(t *testing.T, balance float64, universe ...string) *store.Config {
	t.Helper()
	t.Setenv("BACKTEST_LOG_DIR", t.TempDir())

	cfg := &store.Config{
		InitialBalance: balance,
		Universe:       universe,
		StartDate:      "2026-01-04",
		EndDate:        "2026-01-05",
	}
	cfg.Indicators.ShortEMA = 2
	cfg.Indicators.LongEMA = 3
	cfg.Data.Source = "STATIC"
	cfg.Data.Dir = t.TempDir()
	require.NoError(t, cfg.Validate())
	return cfg
}

func risingPrices() []types.PricePoint {
	return []types.PricePoint{
		{Date: "2026-01-01", Close: 10},
		{Date: "2026-01-02", Close: 11},
		{Date: "2026-01-03", Close: 12},
		{Date: "2026-01-04", Close: 13},
		{Date: "2026-01-05", Close: 14},
	}
}

func TestAgreementExecutesTrades(t *testing.T) {
	cfg := testConfig(t, 100, "TEST")
	sentiment := &stubSentiment{action: types.Buy, qty: 2}
	prices := &stubPrices{points: map[string][]types.PricePoint{"TEST": risingPrices()}}

	eng := New(cfg, sentiment, prices, nil)
	report, err := eng.Run(context.Background())
	require.NoError(t, err)

	// Rising closes make the short EMA sit above the long EMA, so the BUY
	// sentiment passes the gate on both days: 2 @ 13 then 2 @ 14.
	assert.Equal(t, 2, report.TradesExecuted)
	assert.Equal(t, 100.0-26-28, report.FinalBalance)
	assert.Equal(t, map[string]int{"TEST": 4}, report.Holdings)
	assert.Equal(t, 4*14.0, report.StockValue)
	assert.Equal(t, 100.0, report.InitialBalance)
	assert.InDelta(t, 2.0, report.NetGain, 1e-9)
	assert.Equal(t, "2026-01-04", report.StartDate)
	assert.Equal(t, "2026-01-05", report.EndDate)
}

func TestDisagreementGateHolds(t *testing.T) {
	cfg := testConfig(t, 100, "TEST")
	// Crossover says BUY on a rising series; sentiment says SELL.
	sentiment := &stubSentiment{action: types.Sell, qty: 5}
	prices := &stubPrices{points: map[string][]types.PricePoint{"TEST": risingPrices()}}

	eng := New(cfg, sentiment, prices, nil)
	report, err := eng.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, report.TradesExecuted)
	assert.Equal(t, 0, report.TradesRejected)
	assert.Equal(t, 100.0, report.FinalBalance)
	assert.Empty(t, report.Holdings)
}

func TestMissingPriceSkipsDayOnly(t *testing.T) {
	cfg := testConfig(t, 100, "TEST")
	sentiment := &stubSentiment{action: types.Buy, qty: 1}
	// History ends before the window: indicators resolve via fallback but the
	// trade-date close is missing, so both days are skipped, not fatal.
	prices := &stubPrices{points: map[string][]types.PricePoint{"TEST": {
		{Date: "2026-01-01", Close: 10},
		{Date: "2026-01-02", Close: 11},
		{Date: "2026-01-03", Close: 12},
	}}}

	eng := New(cfg, sentiment, prices, nil)
	report, err := eng.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.DaysSkipped)
	assert.Equal(t, 0, report.TradesExecuted)
	assert.Equal(t, 100.0, report.FinalBalance)
}

func TestMissingIndicatorSkips(t *testing.T) {
	cfg := testConfig(t, 100, "TEST", "EMPTY")
	sentiment := &stubSentiment{action: types.Buy, qty: 1}
	prices := &stubPrices{points: map[string][]types.PricePoint{
		"TEST": risingPrices(),
		// EMPTY has no history at all.
	}}

	eng := New(cfg, sentiment, prices, nil)
	report, err := eng.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.DaysSkipped) // EMPTY on both days
	assert.Equal(t, 2, report.TradesExecuted)
}

func TestInsufficientFundsIsRejectedNotFatal(t *testing.T) {
	cfg := testConfig(t, 20, "TEST")
	sentiment := &stubSentiment{action: types.Buy, qty: 5} // 5 @ 13 = 65 > 20
	prices := &stubPrices{points: map[string][]types.PricePoint{"TEST": risingPrices()}}

	eng := New(cfg, sentiment, prices, nil)
	report, err := eng.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, report.TradesExecuted)
	assert.Equal(t, 2, report.TradesRejected)
	assert.Equal(t, 20.0, report.FinalBalance)
}

func TestCancellationStopsBetweenTicks(t *testing.T) {
	cfg := testConfig(t, 100, "TEST")
	sentiment := &stubSentiment{action: types.Buy, qty: 1}
	prices := &stubPrices{points: map[string][]types.PricePoint{"TEST": risingPrices()}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	eng := New(cfg, sentiment, prices, nil)
	report, err := eng.Run(ctx)
	require.NoError(t, err)

	// Cancelled before the first tick: no trades, no sentiment calls.
	assert.Equal(t, 0, report.TradesExecuted)
	assert.Equal(t, 0, sentiment.calls)
	assert.Equal(t, 100.0, report.FinalBalance)
}
