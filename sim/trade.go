package sim

import (
	"time"

	"github.com/rustyeddy/backtester/costs"
	"github.com/rustyeddy/backtester/market"
)

// Position is the ledger's current holding. The zero value is flat.
type Position struct {
	Open         bool
	Quantity     int64
	EntryPrice   float64
	EntryDate    time.Time
	EntryCharges float64
}

// TradeRecord is an immutable log entry created on every fill. The
// entry-linkage fields (EntryDate through PnL) are set on Sell records
// only; realized P&L is defined only when a position closes.
type TradeRecord struct {
	Side      market.Side
	Date      time.Time
	Price     float64
	Quantity  int64
	Value     float64 // Price × Quantity
	Charges   costs.Charges
	CashAfter float64

	// Sell records: link back to the matching entry.
	EntryDate    time.Time
	EntryPrice   float64
	EntryCharges float64
	HoldingDays  int
	PnL          float64
}
