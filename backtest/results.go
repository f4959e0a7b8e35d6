package backtest

import (
	"fmt"
	"io"
	"time"

	"github.com/rustyeddy/backtester/market"
	"github.com/rustyeddy/backtester/metrics"
	"github.com/rustyeddy/backtester/sim"
)

// Result is the complete output of one run: the performance report, the
// full trade history, and the per-bar equity curve (same length and
// order as the input bars).
type Result struct {
	Report      metrics.Report    `json:"report"`
	Trades      []sim.TradeRecord `json:"trades"`
	EquityCurve []EquityPoint     `json:"equity_curve"`

	// OpenPosition is non-nil when the run ended still holding.
	OpenPosition *sim.Position `json:"open_position,omitempty"`

	InitialCapital float64 `json:"initial_capital"`
	FinalCash      float64 `json:"final_cash"`
	TotalCharges   float64 `json:"total_charges"`
}

// FinalEquity is the last equity sample: cash plus any unrealized
// holdings marked at the final close.
func (r *Result) FinalEquity() float64 {
	if len(r.EquityCurve) == 0 {
		return r.InitialCapital
	}
	return r.EquityCurve[len(r.EquityCurve)-1].Equity
}

// NetPnL is total portfolio value against initial capital, realized and
// unrealized combined.
func (r *Result) NetPnL() float64 {
	return r.FinalEquity() - r.InitialCapital
}

// PrintResult writes a formatted run summary: the metrics block, each
// fill with its charge breakdown, and the closing portfolio state.
func PrintResult(w io.Writer, res *Result) {
	rep := res.Report

	fmt.Fprintln(w, "==================================================")
	fmt.Fprintln(w, " Backtest Result")
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintf(w, "Total Return:    %.2f%%\n", rep.TotalReturn*100)
	fmt.Fprintf(w, "CAGR:            %.2f%%\n", rep.CAGR*100)
	fmt.Fprintf(w, "Max Drawdown:    %.2f%%\n", rep.MaxDrawdown*100)
	fmt.Fprintf(w, "Sharpe Ratio:    %.2f\n", rep.SharpeRatio)
	fmt.Fprintf(w, "Completed Trades: %d\n", rep.CompletedTrades)
	fmt.Fprintf(w, "Open Positions:  %d\n", rep.OpenPositions)
	fmt.Fprintf(w, "Wins / Losses:   %d / %d\n", rep.WinningTrades, rep.LosingTrades)
	fmt.Fprintf(w, "Win Rate:        %.2f%%\n", rep.WinRate*100)

	if len(res.Trades) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Trades")
		fmt.Fprintln(w, "--------------------------------------------------")
	}
	for _, t := range res.Trades {
		c := t.Charges.Rounded()
		fmt.Fprintf(w, "%s  %-4s price=%.2f qty=%d value=%.2f\n",
			t.Date.Format(time.DateOnly), t.Side, t.Price, t.Quantity, t.Value)
		fmt.Fprintf(w, "            charges: brokerage=%.2f txn_tax=%.2f exchange=%.2f regulatory=%.2f tax_on_fees=%.2f stamp=%.2f total=%.2f\n",
			c.Brokerage, c.TransactionTax, c.ExchangeFee, c.RegulatoryFee, c.TaxOnFees, c.StampDuty, c.Total)
		fmt.Fprintf(w, "            cash after: %.2f\n", t.CashAfter)
		if t.Side == market.Sell { // show the round trip
			fmt.Fprintf(w, "            entry %s @ %.2f, held %d days, P&L %.2f\n",
				t.EntryDate.Format(time.DateOnly), t.EntryPrice, t.HoldingDays, t.PnL)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Summary")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Initial Capital: %.2f\n", res.InitialCapital)
	fmt.Fprintf(w, "Cash Balance:    %.2f\n", res.FinalCash)

	if pos := res.OpenPosition; pos != nil {
		last := res.EquityCurve[len(res.EquityCurve)-1]
		unrealized := (last.Close - pos.EntryPrice) * float64(pos.Quantity)
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Open Position")
		fmt.Fprintf(w, "  Quantity:       %d\n", pos.Quantity)
		fmt.Fprintf(w, "  Entry:          %s @ %.2f\n", pos.EntryDate.Format(time.DateOnly), pos.EntryPrice)
		fmt.Fprintf(w, "  Last Close:     %.2f\n", last.Close)
		fmt.Fprintf(w, "  Holdings Value: %.2f\n", last.Holdings)
		fmt.Fprintf(w, "  Unrealized P&L: %.2f\n", unrealized)
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Portfolio: %.2f\n", res.FinalEquity())
	fmt.Fprintf(w, "Total Charges:   %.2f\n", res.TotalCharges)
	fmt.Fprintf(w, "Net P&L:         %.2f\n", res.NetPnL())
	fmt.Fprintln(w)
}
