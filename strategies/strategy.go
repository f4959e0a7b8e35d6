// Package strategies defines the per-bar signal contract consumed by
// the backtest runner, plus the built-in strategy implementations.
package strategies

import (
	"fmt"
	"strings"

	"github.com/rustyeddy/backtester/market"
)

// Signal is a strategy's directional instruction for one bar. The
// runner treats it as opaque: it reacts to the value but never computes
// it.
type Signal int8

const (
	Hold Signal = iota
	LongEntry
	LongExit
)

func (s Signal) String() string {
	switch s {
	case Hold:
		return "HOLD"
	case LongEntry:
		return "LONG_ENTRY"
	case LongExit:
		return "LONG_EXIT"
	}
	return fmt.Sprintf("Signal(%d)", int8(s))
}

// Strategy produces one Signal per bar. Implementations carry their own
// indicator state and must emit Hold while warming up. Any strategy
// satisfying this interface can drive the runner; the engine does not
// depend on how signals are computed.
type Strategy interface {
	Name() string
	Reset()
	OnBar(bar market.Bar) Signal
}

// ByName constructs a built-in strategy from its CLI name.
func ByName(name string, fast, slow int) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "noop", "none":
		return NoopStrategy{}, nil

	case "sma-cross", "smacross":
		return NewSMACross(fast, slow), nil

	default:
		return nil, fmt.Errorf("unknown strategy %q (supported: noop, sma-cross)", name)
	}
}
