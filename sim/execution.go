// Package sim implements the simulation primitives: the execution
// engine that turns a reference price into a fill, and the portfolio
// ledger that fills are applied to.
package sim

import (
	"github.com/rustyeddy/backtester/costs"
	"github.com/rustyeddy/backtester/market"
)

// DefaultSlippage is the default adverse price adjustment rate (0.1%).
const DefaultSlippage = 0.001

// Fill is the executed price and itemized cost of a trade.
type Fill struct {
	Price   float64
	Charges costs.Charges
}

// Executor applies slippage to a reference price and computes charges on
// the resulting notional. Slippage is always adverse to the trader: buys
// fill above the reference, sells below. Fills are deterministic, so
// identical inputs always reproduce identical fills.
type Executor struct {
	Slippage float64
	Costs    costs.Schedule
}

// NewExecutor creates an Executor with the given slippage rate and
// charge schedule.
func NewExecutor(slippage float64, sched costs.Schedule) Executor {
	return Executor{Slippage: slippage, Costs: sched}
}

// Fill executes a trade of qty shares at the reference price adjusted
// for slippage, and computes charges on the fill notional.
func (e Executor) Fill(refPrice float64, qty int64, side market.Side) Fill {
	price := refPrice * (1 + e.Slippage)
	if side == market.Sell {
		price = refPrice * (1 - e.Slippage)
	}
	return Fill{
		Price:   price,
		Charges: e.Costs.Charges(price*float64(qty), side),
	}
}
