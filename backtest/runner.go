// Package backtest drives a strategy over a daily bar series through
// the execution engine and portfolio ledger, then scores the run.
package backtest

import (
	"fmt"
	"time"

	"github.com/rustyeddy/backtester/journal"
	"github.com/rustyeddy/backtester/market"
	"github.com/rustyeddy/backtester/metrics"
	"github.com/rustyeddy/backtester/sim"
	"github.com/rustyeddy/backtester/strategies"
)

// EquityPoint is one per-bar portfolio sample, taken after any trade on
// that bar. Append-only; never revised retroactively.
type EquityPoint struct {
	Date     time.Time `json:"date"`
	Close    float64   `json:"close"`
	Equity   float64   `json:"equity"`
	Cash     float64   `json:"cash"`
	Holdings float64   `json:"holdings"`
}

// Runner executes one simulation run. Each Runner owns its Portfolio
// and must not be shared across concurrent runs; parallel parameter
// sweeps run independent Runners.
type Runner struct {
	Portfolio *sim.Portfolio
	Executor  sim.Executor
	Strategy  strategies.Strategy

	// FeeBuffer is the sizing overestimate passed to SizeBuy.
	FeeBuffer float64

	// Journal, when set, receives every fill and equity sample tagged
	// with RunID.
	Journal journal.Journal
	RunID   string
}

// Run simulates the bar series in chronological order:
// read the bar's signal, gate it on the current position state, fill and
// apply any resulting trade, then append a post-trade equity sample.
// The first bar only seeds strategy state — there is no prior signal to
// compare against, so it never trades. An open position at the end
// stays open; it is reported, never force-closed.
func (r *Runner) Run(bars []market.Bar) (*Result, error) {
	if r.Portfolio == nil {
		return nil, fmt.Errorf("backtest: Portfolio is required")
	}
	if r.Strategy == nil {
		return nil, fmt.Errorf("backtest: Strategy is required")
	}
	if err := market.ValidateBars(bars); err != nil {
		return nil, err
	}

	r.Strategy.Reset()

	curve := make([]EquityPoint, 0, len(bars))
	for i, bar := range bars {
		sig := r.Strategy.OnBar(bar)

		if i > 0 {
			if err := r.step(bar, sig); err != nil {
				return nil, err
			}
		}

		eq := r.Portfolio.Equity(bar.Close)
		pt := EquityPoint{
			Date:     bar.Date,
			Close:    bar.Close,
			Equity:   eq,
			Cash:     r.Portfolio.Cash,
			Holdings: eq - r.Portfolio.Cash,
		}
		curve = append(curve, pt)

		if r.Journal != nil {
			err := r.Journal.RecordEquity(journal.Equity{
				RunID:    r.RunID,
				Date:     pt.Date,
				Close:    pt.Close,
				Equity:   pt.Equity,
				Cash:     pt.Cash,
				Holdings: pt.Holdings,
			})
			if err != nil {
				return nil, fmt.Errorf("backtest: journal equity: %w", err)
			}
		}
	}

	return newResult(r.Portfolio, curve), nil
}

// step maps one signal onto the ledger. Signals inapplicable to the
// current position state are silently ignored, as is an entry the
// portfolio cannot afford.
func (r *Runner) step(bar market.Bar, sig strategies.Signal) error {
	switch {
	case sig == strategies.LongEntry && !r.Portfolio.Position.Open:
		qty := r.Portfolio.SizeBuy(bar.Close, r.Executor.Slippage, r.FeeBuffer)
		if qty == 0 {
			return nil // unaffordable: no-op, not an error
		}
		fill := r.Executor.Fill(bar.Close, qty, market.Buy)
		if err := r.Portfolio.ApplyBuy(bar.Date, fill, qty); err != nil {
			return err
		}
		return r.journalLastTrade()

	case sig == strategies.LongExit && r.Portfolio.Position.Open:
		qty := r.Portfolio.Position.Quantity
		fill := r.Executor.Fill(bar.Close, qty, market.Sell)
		if err := r.Portfolio.ApplySell(bar.Date, fill, qty); err != nil {
			return err
		}
		return r.journalLastTrade()
	}
	return nil
}

func (r *Runner) journalLastTrade() error {
	if r.Journal == nil {
		return nil
	}
	rec := r.Portfolio.Trades[len(r.Portfolio.Trades)-1]
	if err := r.Journal.RecordTrade(journal.FromRecord(r.RunID, rec)); err != nil {
		return fmt.Errorf("backtest: journal trade: %w", err)
	}
	return nil
}

func equityValues(curve []EquityPoint) []float64 {
	vals := make([]float64, len(curve))
	for i, pt := range curve {
		vals[i] = pt.Equity
	}
	return vals
}

func newResult(p *sim.Portfolio, curve []EquityPoint) *Result {
	res := &Result{
		Report:         metrics.Compute(equityValues(curve), p.Trades, p.InitialCapital),
		Trades:         p.Trades,
		EquityCurve:    curve,
		InitialCapital: p.InitialCapital,
		FinalCash:      p.Cash,
	}
	if p.Position.Open {
		pos := p.Position
		res.OpenPosition = &pos
	}
	for _, t := range p.Trades {
		res.TotalCharges += t.Charges.Total
	}
	return res
}
