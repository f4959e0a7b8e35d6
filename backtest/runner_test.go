package backtest

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/backtester/costs"
	"github.com/rustyeddy/backtester/journal"
	"github.com/rustyeddy/backtester/market"
	"github.com/rustyeddy/backtester/sim"
	"github.com/rustyeddy/backtester/strategies"
)

// scriptedStrategy replays a fixed signal per bar index.
type scriptedStrategy struct {
	signals []strategies.Signal
	i       int
}

func (s *scriptedStrategy) Name() string { return "scripted" }

func (s *scriptedStrategy) Reset() { s.i = 0 }

func (s *scriptedStrategy) OnBar(_ market.Bar) strategies.Signal {
	if s.i >= len(s.signals) {
		return strategies.Hold
	}
	sig := s.signals[s.i]
	s.i++
	return sig
}

func mkBars(closes ...float64) []market.Bar {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]market.Bar, len(closes))
	for i, c := range closes {
		bars[i] = market.Bar{Date: start.AddDate(0, 0, i), Close: c}
	}
	return bars
}

func newRunner(capital float64, signals []strategies.Signal) *Runner {
	return &Runner{
		Portfolio: sim.NewPortfolio(capital),
		Executor:  sim.NewExecutor(sim.DefaultSlippage, costs.DefaultSchedule()),
		Strategy:  &scriptedStrategy{signals: signals},
		FeeBuffer: sim.DefaultFeeBuffer,
	}
}

func TestRunValidation(t *testing.T) {
	t.Parallel()

	t.Run("missing portfolio", func(t *testing.T) {
		t.Parallel()
		r := newRunner(1000, nil)
		r.Portfolio = nil
		_, err := r.Run(mkBars(100))
		require.Error(t, err)
		assert.Equal(t, "backtest: Portfolio is required", err.Error())
	})

	t.Run("missing strategy", func(t *testing.T) {
		t.Parallel()
		r := newRunner(1000, nil)
		r.Strategy = nil
		_, err := r.Run(mkBars(100))
		require.Error(t, err)
		assert.Equal(t, "backtest: Strategy is required", err.Error())
	})

	t.Run("empty bars", func(t *testing.T) {
		t.Parallel()
		_, err := newRunner(1000, nil).Run(nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "empty")
	})

	t.Run("bad close", func(t *testing.T) {
		t.Parallel()
		_, err := newRunner(1000, nil).Run(mkBars(100, -1))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bar 1")
	})
}

// Reference scenario: entry at close 100 with capital 1,000,000 fills
// 9970 shares at 100.1; the later exit at close 120 fills at 119.88 and
// realizes a positive P&L net of both charge totals.
func TestRunRoundTrip(t *testing.T) {
	t.Parallel()

	signals := []strategies.Signal{
		strategies.Hold,      // bar 0 seeds only
		strategies.LongEntry, // bar 1: buy at close 100
		strategies.Hold,
		strategies.LongExit, // bar 3: sell at close 120
		strategies.Hold,
	}
	r := newRunner(1_000_000, signals)

	res, err := r.Run(mkBars(95, 100, 110, 120, 121))
	require.NoError(t, err)

	require.Len(t, res.Trades, 2)
	buy, sell := res.Trades[0], res.Trades[1]

	assert.InDelta(t, 100.1, buy.Price, 1e-9)
	assert.Equal(t, int64(9970), buy.Quantity)
	assert.InDelta(t, 1_000_000-(100.1*9970+buy.Charges.Total), buy.CashAfter, 1e-6)

	assert.InDelta(t, 119.88, sell.Price, 1e-9)
	wantPnL := (119.88*9970 - 100.1*9970) - (buy.Charges.Total + sell.Charges.Total)
	assert.InDelta(t, wantPnL, sell.PnL, 1e-6)
	assert.Greater(t, sell.PnL, 0.0)

	assert.Equal(t, 1, res.Report.CompletedTrades)
	assert.Equal(t, 0, res.Report.OpenPositions)
	assert.Equal(t, 1, res.Report.WinningTrades)
	assert.InDelta(t, 1.0, res.Report.WinRate, 1e-9)
	assert.Nil(t, res.OpenPosition)
}

func TestRunFirstBarNeverTrades(t *testing.T) {
	t.Parallel()

	r := newRunner(1_000_000, []strategies.Signal{strategies.LongEntry, strategies.Hold})
	res, err := r.Run(mkBars(100, 101))
	require.NoError(t, err)
	assert.Empty(t, res.Trades, "bar 0 seeds state only")
}

func TestRunEquityCurveLength(t *testing.T) {
	t.Parallel()

	for _, n := range []int{1, 2, 7} {
		closes := make([]float64, n)
		for i := range closes {
			closes[i] = 100 + float64(i)
		}
		res, err := newRunner(1_000_000, nil).Run(mkBars(closes...))
		require.NoError(t, err)
		assert.Len(t, res.EquityCurve, n, "one sample per bar regardless of trade activity")
	}
}

func TestRunZeroTrades(t *testing.T) {
	t.Parallel()

	res, err := newRunner(1_000_000, nil).Run(mkBars(100, 101, 102, 103))
	require.NoError(t, err)

	assert.Empty(t, res.Trades)
	assert.Equal(t, 0, res.Report.CompletedTrades)
	assert.Equal(t, 0, res.Report.OpenPositions)
	assert.Zero(t, res.Report.WinRate)
	assert.Zero(t, res.Report.TotalReturn)
	for _, pt := range res.EquityCurve {
		assert.InDelta(t, 1_000_000, pt.Equity, 1e-9, "equity constant at initial capital")
	}
}

func TestRunOpenPositionAtEnd(t *testing.T) {
	t.Parallel()

	signals := []strategies.Signal{strategies.Hold, strategies.LongEntry, strategies.Hold}
	res, err := newRunner(1_000_000, signals).Run(mkBars(100, 100, 130))
	require.NoError(t, err)

	assert.Equal(t, 0, res.Report.CompletedTrades)
	assert.Equal(t, 1, res.Report.OpenPositions)
	require.NotNil(t, res.OpenPosition)

	// Final equity marks the open position to the last close.
	last := res.EquityCurve[len(res.EquityCurve)-1]
	assert.InDelta(t, res.FinalCash+float64(res.OpenPosition.Quantity)*130, last.Equity, 1e-6)
	assert.Greater(t, last.Equity, 1_000_000.0, "unrealized gain shows in equity, not in realized P&L")
}

func TestRunInapplicableSignalsIgnored(t *testing.T) {
	t.Parallel()

	signals := []strategies.Signal{
		strategies.Hold,
		strategies.LongExit,  // exit while flat: ignored
		strategies.LongEntry, // buy
		strategies.LongEntry, // entry while long: ignored
		strategies.LongExit,  // sell
		strategies.LongExit,  // exit while flat again: ignored
	}
	res, err := newRunner(1_000_000, signals).Run(mkBars(100, 100, 100, 100, 100, 100))
	require.NoError(t, err)

	require.Len(t, res.Trades, 2)
	assert.Equal(t, market.Buy, res.Trades[0].Side)
	assert.Equal(t, market.Sell, res.Trades[1].Side)
}

func TestRunUnaffordableEntryIsNoOp(t *testing.T) {
	t.Parallel()

	signals := []strategies.Signal{strategies.Hold, strategies.LongEntry}
	res, err := newRunner(50, signals).Run(mkBars(100, 100))
	require.NoError(t, err)
	assert.Empty(t, res.Trades)
	assert.InDelta(t, 50.0, res.FinalCash, 1e-9)
}

// Two runs on identical inputs yield bit-identical trades and curves.
func TestRunIdempotent(t *testing.T) {
	t.Parallel()

	bars := mkBars(95, 100, 104, 98, 120, 115, 122)
	signals := []strategies.Signal{
		strategies.Hold, strategies.LongEntry, strategies.Hold,
		strategies.LongExit, strategies.LongEntry, strategies.Hold, strategies.LongExit,
	}

	run := func() *Result {
		res, err := newRunner(1_000_000, signals).Run(bars)
		require.NoError(t, err)
		return res
	}

	a, b := run(), run()
	assert.Equal(t, a.Trades, b.Trades)
	assert.Equal(t, a.EquityCurve, b.EquityCurve)
	assert.Equal(t, a.Report, b.Report)
}

func TestRunJournals(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	j, err := journal.NewSQLite(filepath.Join(dir, "bt.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })

	signals := []strategies.Signal{strategies.Hold, strategies.LongEntry, strategies.LongExit}
	r := newRunner(1_000_000, signals)
	r.Journal = j
	r.RunID = "RUN-TEST"

	_, err = r.Run(mkBars(100, 100, 105))
	require.NoError(t, err)

	trades, err := j.ListTradesByRun("RUN-TEST")
	require.NoError(t, err)
	require.Len(t, trades, 2)
	assert.Equal(t, "BUY", trades[0].Side)
	assert.Equal(t, "SELL", trades[1].Side)
}
