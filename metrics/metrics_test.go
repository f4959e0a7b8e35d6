package metrics

import (
	"math"
	"testing"

	"github.com/montanaflynn/stats"
	"github.com/stretchr/testify/assert"

	"github.com/rustyeddy/backtester/market"
	"github.com/rustyeddy/backtester/sim"
)

func TestReturns(t *testing.T) {
	t.Parallel()

	rets := Returns([]float64{100, 110, 99})
	assert.Len(t, rets, 3)
	assert.Zero(t, rets[0], "first sample has no prior")
	assert.InDelta(t, 0.10, rets[1], 1e-9)
	assert.InDelta(t, -0.10, rets[2], 1e-9)
}

func TestMaxDrawdown(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		equity []float64
		want   float64
	}{
		{"monotonic rise never dips", []float64{100, 110, 120}, 0},
		{"flat curve", []float64{100, 100, 100}, 0},
		{"single trough", []float64{100, 120, 90, 130}, 90.0/120.0 - 1},
		{"new peak then deeper trough", []float64{100, 80, 140, 70}, 70.0/140.0 - 1},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := MaxDrawdown(tt.equity)
			assert.InDelta(t, tt.want, got, 1e-9)
			assert.LessOrEqual(t, got, 0.0)
		})
	}
}

func TestComputeTotalReturnAndCAGR(t *testing.T) {
	t.Parallel()

	equity := make([]float64, 252)
	for i := range equity {
		equity[i] = 1_000_000 * (1 + float64(i)*0.001)
	}
	final := equity[len(equity)-1]

	r := Compute(equity, nil, 1_000_000)

	assert.InDelta(t, final/1_000_000-1, r.TotalReturn, 1e-9)
	// n == 252, so CAGR collapses to total return.
	assert.InDelta(t, r.TotalReturn, r.CAGR, 1e-9)
}

func TestComputeCAGRSingleBar(t *testing.T) {
	t.Parallel()

	r := Compute([]float64{1_050_000}, nil, 1_000_000)
	assert.InDelta(t, 0.05, r.TotalReturn, 1e-9)
	assert.Zero(t, r.CAGR, "CAGR undefined with one bar")
}

func TestComputeSharpe(t *testing.T) {
	t.Parallel()

	equity := []float64{100, 101, 100, 102, 101, 103}
	rets := Returns(equity)
	mean, _ := stats.Mean(rets)
	stdev, _ := stats.StandardDeviationSample(rets)

	r := Compute(equity, nil, 100)
	assert.InDelta(t, mean/stdev*math.Sqrt(252), r.SharpeRatio, 1e-9)
}

func TestComputeDegenerate(t *testing.T) {
	t.Parallel()

	// Flat equity: zero-variance returns must not divide by zero.
	r := Compute([]float64{100, 100, 100}, nil, 100)
	assert.Zero(t, r.SharpeRatio)
	assert.Zero(t, r.TotalReturn)
	assert.Zero(t, r.MaxDrawdown)
	assert.Zero(t, r.WinRate, "no completed trades means win rate 0")

	assert.Equal(t, Report{}, Compute(nil, nil, 100))
}

func TestComputeTradeStats(t *testing.T) {
	t.Parallel()

	trades := []sim.TradeRecord{
		{Side: market.Buy},
		{Side: market.Sell, PnL: 50},
		{Side: market.Buy},
		{Side: market.Sell, PnL: -20},
		{Side: market.Buy},
		{Side: market.Sell, PnL: 0}, // break-even counts as a loss
		{Side: market.Buy},          // still open at end
	}

	r := Compute([]float64{100, 101}, trades, 100)
	assert.Equal(t, 3, r.CompletedTrades)
	assert.Equal(t, 1, r.OpenPositions)
	assert.Equal(t, 1, r.WinningTrades)
	assert.Equal(t, 2, r.LosingTrades)
	assert.InDelta(t, 1.0/3.0, r.WinRate, 1e-9)
}
