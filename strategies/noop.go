package strategies

import "github.com/rustyeddy/backtester/market"

// NoopStrategy never signals. Useful as a baseline: a run with it must
// leave the equity curve flat at initial capital.
type NoopStrategy struct{}

func (NoopStrategy) Name() string { return "noop" }

func (NoopStrategy) Reset() {}

func (NoopStrategy) OnBar(_ market.Bar) Signal { return Hold }
