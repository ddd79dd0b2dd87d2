package ledger

import (
	"context"

	"sentiment-backtester/internal/logger"
	"sentiment-backtester/internal/types"
)

// Outcome reports what a Trade call did. Rejections are normal branches of
// the simulation, not errors.
type Outcome int

const (
	Executed Outcome = iota
	NoAction
	InsufficientFunds
	InsufficientShares
)

func (o Outcome) String() string {
	switch o {
	case Executed:
		return "EXECUTED"
	case NoAction:
		return "NO_ACTION"
	case InsufficientFunds:
		return "INSUFFICIENT_FUNDS"
	case InsufficientShares:
		return "INSUFFICIENT_SHARES"
	}
	return "UNKNOWN"
}

// Ledger holds the cash balance and share holdings of one simulation run.
// All mutation goes through Trade; the simulation loop is the single writer.
type Ledger struct {
	initial  float64
	balance  float64
	holdings map[string]int
}

// New creates a ledger with the given starting balance and no holdings.
func New(initialBalance float64) *Ledger {
	return &Ledger{
		initial:  initialBalance,
		balance:  initialBalance,
		holdings: make(map[string]int),
	}
}

// Trade validates and applies one order at the given price. A BUY needs
// balance >= price*quantity, a SELL needs holding >= quantity; a rejected
// order leaves the ledger untouched. Price must already be resolved for the
// trade date by the caller.
func (l *Ledger) Trade(ctx context.Context, action types.TradeAction, symbol string, quantity int, price float64) Outcome {
	if action == types.Nothing || quantity <= 0 {
		return NoAction
	}

	cost := price * float64(quantity)

	switch action {
	case types.Buy:
		if l.balance < cost {
			logger.Warn(ctx, "Insufficient funds to buy shares",
				"symbol", symbol, "qty", quantity, "cost", cost, "balance", l.balance)
			return InsufficientFunds
		}
		l.balance -= cost
		l.holdings[symbol] += quantity
		logger.Info(ctx, "Bought shares", "symbol", symbol, "qty", quantity, "price", price, "balance", l.balance)
		return Executed

	case types.Sell:
		if l.holdings[symbol] < quantity {
			logger.Warn(ctx, "Insufficient shares to sell",
				"symbol", symbol, "qty", quantity, "held", l.holdings[symbol])
			return InsufficientShares
		}
		l.balance += cost
		l.holdings[symbol] -= quantity
		if l.holdings[symbol] == 0 {
			delete(l.holdings, symbol)
		}
		logger.Info(ctx, "Sold shares", "symbol", symbol, "qty", quantity, "price", price, "balance", l.balance)
		return Executed
	}

	return NoAction
}

// Balance returns the current cash balance.
func (l *Ledger) Balance() float64 { return l.balance }

// InitialBalance returns the balance the run started with.
func (l *Ledger) InitialBalance() float64 { return l.initial }

// Holding returns the share count held for a symbol.
func (l *Ledger) Holding(symbol string) int { return l.holdings[symbol] }

// Holdings returns a copy of the holdings map.
func (l *Ledger) Holdings() map[string]int {
	out := make(map[string]int, len(l.holdings))
	for sym, qty := range l.holdings {
		out[sym] = qty
	}
	return out
}

// Valuation marks the holdings to market using priceOf. Symbols whose price
// cannot be resolved are excluded from the total rather than valued at zero.
func (l *Ledger) Valuation(priceOf func(symbol string) (float64, bool)) float64 {
	total := 0.0
	for sym, qty := range l.holdings {
		if price, ok := priceOf(sym); ok {
			total += float64(qty) * price
		}
	}
	return total
}
