// Package market holds the core value types shared by the simulation
// engine: daily price bars and trade sides.
package market

import (
	"fmt"
	"time"
)

// Bar is one trading day of price data. Immutable once produced.
type Bar struct {
	Date  time.Time
	Close float64
}

// Side of a fill: Buy opens a long position, Sell closes it.
type Side int8

const (
	Buy  Side = 1
	Sell Side = -1
)

func (s Side) String() string {
	switch s {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	}
	return fmt.Sprintf("Side(%d)", int8(s))
}

// ValidateBars rejects a bar series before simulation starts. It checks
// for an empty series, non-positive closes, and non-monotonic dates, and
// identifies the offending bar in the error.
func ValidateBars(bars []Bar) error {
	if len(bars) == 0 {
		return fmt.Errorf("market: bar series is empty")
	}
	for i, b := range bars {
		if b.Close <= 0 {
			return fmt.Errorf("market: bar %d (%s): close must be positive, got %v",
				i, b.Date.Format("2006-01-02"), b.Close)
		}
		if i > 0 && !b.Date.After(bars[i-1].Date) {
			return fmt.Errorf("market: bar %d (%s): dates must be strictly increasing",
				i, b.Date.Format("2006-01-02"))
		}
	}
	return nil
}
