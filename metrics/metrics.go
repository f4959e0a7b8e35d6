// Package metrics computes performance statistics from a completed
// equity curve and trade history. Everything here is a pure function of
// its inputs; a report is recomputed wholesale each time it is
// requested.
package metrics

import (
	"math"

	"github.com/montanaflynn/stats"

	"github.com/rustyeddy/backtester/market"
	"github.com/rustyeddy/backtester/sim"
)

// TradingDaysPerYear is the annualization constant. The engine assumes
// daily bars; a caller feeding coarser bars must rescale.
const TradingDaysPerYear = 252

// Report is a read-only snapshot of run performance. Return, drawdown,
// and win-rate fields are fractions, not percentages.
type Report struct {
	TotalReturn     float64 `json:"total_return"`
	CAGR            float64 `json:"cagr"`
	MaxDrawdown     float64 `json:"max_drawdown"`
	SharpeRatio     float64 `json:"sharpe_ratio"`
	CompletedTrades int     `json:"completed_trades"`
	OpenPositions   int     `json:"open_positions"`
	WinningTrades   int     `json:"winning_trades"`
	LosingTrades    int     `json:"losing_trades"`
	WinRate         float64 `json:"win_rate"`
}

// Compute derives a Report from the per-bar equity samples, the trade
// history, and the starting capital. Degenerate inputs fall back to
// well-defined values: a zero-variance return series yields Sharpe 0,
// zero completed trades yield win rate 0.
func Compute(equity []float64, trades []sim.TradeRecord, capital float64) Report {
	var r Report
	if len(equity) == 0 || capital <= 0 {
		return r
	}

	final := equity[len(equity)-1]
	r.TotalReturn = final/capital - 1

	if n := len(equity); n > 1 {
		r.CAGR = math.Pow(final/capital, TradingDaysPerYear/float64(n)) - 1
	}

	r.MaxDrawdown = MaxDrawdown(equity)

	returns := Returns(equity)
	mean, errMean := stats.Mean(returns)
	stdev, errStd := stats.StandardDeviationSample(returns)
	if errMean == nil && errStd == nil && stdev != 0 {
		r.SharpeRatio = mean / stdev * math.Sqrt(TradingDaysPerYear)
	}

	buys, sells := 0, 0
	for _, t := range trades {
		if t.Side == market.Buy {
			buys++
			continue
		}
		sells++
		if t.PnL > 0 {
			r.WinningTrades++
		} else {
			r.LosingTrades++
		}
	}
	r.CompletedTrades = sells
	r.OpenPositions = buys - sells
	if sells > 0 {
		r.WinRate = float64(r.WinningTrades) / float64(sells)
	}
	return r
}

// Returns converts an equity curve into per-bar simple returns. The
// first value is 0: there is no prior sample.
func Returns(equity []float64) []float64 {
	rets := make([]float64, len(equity))
	for i := 1; i < len(equity); i++ {
		if equity[i-1] != 0 {
			rets[i] = equity[i]/equity[i-1] - 1
		}
	}
	return rets
}

// MaxDrawdown is the worst decline from a running equity peak,
// reported as a non-positive fraction (0 for a curve that never dips).
func MaxDrawdown(equity []float64) float64 {
	maxDD := 0.0
	peak := math.Inf(-1)
	for _, e := range equity {
		if e > peak {
			peak = e
		}
		if peak > 0 {
			if dd := e/peak - 1; dd < maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}
