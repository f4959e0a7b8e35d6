package sim

import (
	"errors"
	"fmt"
	"time"

	"github.com/rustyeddy/backtester/market"
)

// DefaultFeeBuffer is the default per-share cost overestimate used when
// sizing a buy (0.2%, covering charges on top of slippage).
const DefaultFeeBuffer = 0.002

var (
	// ErrAlreadyLong is returned by ApplyBuy while a position is open.
	ErrAlreadyLong = errors.New("sim: buy while position is open")

	// ErrNotLong is returned by ApplySell while flat.
	ErrNotLong = errors.New("sim: sell while flat")

	// ErrPartialExit is returned by ApplySell when the quantity does not
	// match the held position; only full exits are supported.
	ErrPartialExit = errors.New("sim: partial exits are not supported")
)

// Portfolio is the ledger: cash, an at-most-one open position, and the
// ordered trade history. Cash is mutated only by applying fills; a fill
// updates cash and position together or not at all. One Portfolio per
// simulation run — never share one across concurrent runs.
type Portfolio struct {
	InitialCapital float64
	Cash           float64
	Position       Position
	Trades         []TradeRecord
}

// NewPortfolio creates a flat ledger holding the given capital in cash.
func NewPortfolio(capital float64) *Portfolio {
	return &Portfolio{
		InitialCapital: capital,
		Cash:           capital,
	}
}

// SizeBuy computes the maximum whole-share quantity affordable at an
// approximate all-in unit price of refPrice × (1 + slippage + feeBuffer).
// The buffer is a conservative heuristic, not an exact solve: the true
// post-charge cost depends on the fill price, which is only known after
// the quantity is accepted. Overestimating the unit cost keeps the
// ledger from going cash-negative. Returns 0 when unaffordable.
func (p *Portfolio) SizeBuy(refPrice, slippage, feeBuffer float64) int64 {
	if refPrice <= 0 {
		return 0
	}
	approx := refPrice * (1 + slippage + feeBuffer)
	qty := int64(p.Cash / approx)
	if qty < 0 {
		return 0
	}
	return qty
}

// ApplyBuy debits cash by the fill notional plus charges, opens the
// position, and appends a Buy record. The ledger must be flat.
func (p *Portfolio) ApplyBuy(date time.Time, fill Fill, qty int64) error {
	if p.Position.Open {
		return ErrAlreadyLong
	}
	if qty <= 0 {
		return fmt.Errorf("sim: buy quantity must be positive, got %d", qty)
	}

	value := fill.Price * float64(qty)
	p.Cash -= value + fill.Charges.Total
	p.Position = Position{
		Open:         true,
		Quantity:     qty,
		EntryPrice:   fill.Price,
		EntryDate:    date,
		EntryCharges: fill.Charges.Total,
	}
	p.Trades = append(p.Trades, TradeRecord{
		Side:      market.Buy,
		Date:      date,
		Price:     fill.Price,
		Quantity:  qty,
		Value:     value,
		Charges:   fill.Charges,
		CashAfter: p.Cash,
	})
	return nil
}

// ApplySell credits cash by the fill notional minus charges, realizes
// P&L against the entry, appends a Sell record, and flattens the
// position. The full held quantity must be sold.
func (p *Portfolio) ApplySell(date time.Time, fill Fill, qty int64) error {
	if !p.Position.Open {
		return ErrNotLong
	}
	if qty != p.Position.Quantity {
		return fmt.Errorf("%w: held %d, got %d", ErrPartialExit, p.Position.Quantity, qty)
	}

	value := fill.Price * float64(qty)
	p.Cash += value - fill.Charges.Total

	buyValue := p.Position.EntryPrice * float64(qty)
	pnl := (value - buyValue) - (p.Position.EntryCharges + fill.Charges.Total)

	p.Trades = append(p.Trades, TradeRecord{
		Side:      market.Sell,
		Date:      date,
		Price:     fill.Price,
		Quantity:  qty,
		Value:     value,
		Charges:   fill.Charges,
		CashAfter: p.Cash,

		EntryDate:    p.Position.EntryDate,
		EntryPrice:   p.Position.EntryPrice,
		EntryCharges: p.Position.EntryCharges,
		HoldingDays:  int(date.Sub(p.Position.EntryDate).Hours() / 24),
		PnL:          pnl,
	})
	p.Position = Position{}
	return nil
}

// Equity marks the portfolio to the given close price: cash plus the
// held quantity times close, with zero holdings contribution when flat.
func (p *Portfolio) Equity(closePrice float64) float64 {
	if !p.Position.Open {
		return p.Cash
	}
	return p.Cash + float64(p.Position.Quantity)*closePrice
}
