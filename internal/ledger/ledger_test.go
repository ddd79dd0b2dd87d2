package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sentiment-backtester/internal/types"
)

func TestBuyRejectedOnInsufficientFunds(t *testing.T) {
	l := New(100)
	ctx := context.Background()

	// cost 150 > balance 100: nothing changes
	outcome := l.Trade(ctx, types.Buy, "AAPL", 3, 50)
	assert.Equal(t, InsufficientFunds, outcome)
	assert.Equal(t, 100.0, l.Balance())
	assert.Empty(t, l.Holdings())
}

func TestBuyThenSell(t *testing.T) {
	l := New(1000)
	ctx := context.Background()

	require.Equal(t, Executed, l.Trade(ctx, types.Buy, "AAPL", 4, 100))
	assert.Equal(t, 600.0, l.Balance())
	assert.Equal(t, 4, l.Holding("AAPL"))

	require.Equal(t, Executed, l.Trade(ctx, types.Sell, "AAPL", 4, 110))
	assert.Equal(t, 1040.0, l.Balance())
	assert.Equal(t, 0, l.Holding("AAPL"))
	assert.Empty(t, l.Holdings())
}

func TestSellRejectedOnInsufficientShares(t *testing.T) {
	l := New(1000)
	ctx := context.Background()

	require.Equal(t, Executed, l.Trade(ctx, types.Buy, "AAPL", 2, 100))

	outcome := l.Trade(ctx, types.Sell, "AAPL", 3, 100)
	assert.Equal(t, InsufficientShares, outcome)
	assert.Equal(t, 800.0, l.Balance())
	assert.Equal(t, 2, l.Holding("AAPL"))

	// selling a symbol never held
	assert.Equal(t, InsufficientShares, l.Trade(ctx, types.Sell, "MSFT", 1, 10))
}

func TestNothingAndZeroQuantityAreNoops(t *testing.T) {
	l := New(500)
	ctx := context.Background()

	assert.Equal(t, NoAction, l.Trade(ctx, types.Nothing, "AAPL", 5, 100))
	assert.Equal(t, NoAction, l.Trade(ctx, types.Buy, "AAPL", 0, 100))
	assert.Equal(t, 500.0, l.Balance())
	assert.Empty(t, l.Holdings())
}

func TestBalanceAndHoldingsNeverNegative(t *testing.T) {
	l := New(50)
	ctx := context.Background()

	seq := []struct {
		action types.TradeAction
		qty    int
		price  float64
	}{
		{types.Buy, 1000, 10},
		{types.Buy, 5, 10},
		{types.Sell, 100, 10},
		{types.Sell, 5, 10},
		{types.Sell, 1, 10},
		{types.Buy, 3, 1000},
	}
	for _, s := range seq {
		l.Trade(ctx, s.action, "AAPL", s.qty, s.price)
		assert.GreaterOrEqual(t, l.Balance(), 0.0)
		for _, held := range l.Holdings() {
			assert.GreaterOrEqual(t, held, 0)
		}
	}
}

func TestValuationExcludesUnresolvablePrices(t *testing.T) {
	l := New(10000)
	ctx := context.Background()

	require.Equal(t, Executed, l.Trade(ctx, types.Buy, "AAPL", 2, 100))
	require.Equal(t, Executed, l.Trade(ctx, types.Buy, "MSFT", 3, 50))

	prices := map[string]float64{"AAPL": 120}
	value := l.Valuation(func(symbol string) (float64, bool) {
		p, ok := prices[symbol]
		return p, ok
	})

	// MSFT has no resolvable price and is excluded, not valued at zero.
	assert.Equal(t, 240.0, value)
}

func TestHoldingsReturnsCopy(t *testing.T) {
	l := New(1000)
	require.Equal(t, Executed, l.Trade(context.Background(), types.Buy, "AAPL", 1, 10))

	h := l.Holdings()
	h["AAPL"] = 999
	assert.Equal(t, 1, l.Holding("AAPL"))
}
