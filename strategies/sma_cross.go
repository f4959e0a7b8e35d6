package strategies

import (
	"github.com/rustyeddy/backtester/indicators"
	"github.com/rustyeddy/backtester/market"
)

// Compile-time interface check.
var _ Strategy = (*SMACross)(nil)

// SMACross signals from the relation of a fast and a slow simple moving
// average: LongEntry while the fast average is above the slow, LongExit
// while below, Hold when equal or during warm-up. The signal is
// level-based, not edge-based; the runner's position gating turns it
// into at most one entry per crossing.
type SMACross struct {
	fastPeriod int
	slowPeriod int

	fast *indicators.SimpleMA
	slow *indicators.SimpleMA
}

// NewSMACross creates the strategy with the given fast and slow periods.
func NewSMACross(fast, slow int) *SMACross {
	return &SMACross{
		fastPeriod: fast,
		slowPeriod: slow,
		fast:       indicators.NewMA(fast),
		slow:       indicators.NewMA(slow),
	}
}

func (s *SMACross) Name() string { return "sma-cross" }

func (s *SMACross) Reset() {
	s.fast.Reset()
	s.slow.Reset()
}

func (s *SMACross) OnBar(bar market.Bar) Signal {
	s.fast.Update(bar.Close)
	s.slow.Update(bar.Close)

	// Warm-up window: signal inapplicable, not an error.
	if !s.fast.Ready() || !s.slow.Ready() {
		return Hold
	}

	switch {
	case s.fast.Value() > s.slow.Value():
		return LongEntry
	case s.fast.Value() < s.slow.Value():
		return LongExit
	default:
		return Hold
	}
}
