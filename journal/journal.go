// Package journal persists backtest output — trade fills, per-bar
// equity samples, and run summaries — to CSV files or SQLite. The
// journal records results; it never feeds state back into a run.
package journal

import (
	"time"

	"github.com/rustyeddy/backtester/sim"
)

// Trade is one journaled fill, flattened for persistence. Charges are
// itemized and rounded to reporting precision.
type Trade struct {
	RunID        string
	Side         string
	Date         time.Time
	Price        float64
	Quantity     int64
	Value        float64
	Brokerage    float64
	TxnTax       float64
	ExchangeFee  float64
	RegFee       float64
	TaxOnFees    float64
	StampDuty    float64
	ChargesTotal float64
	CashAfter    float64
	PnL          float64
	HoldingDays  int
}

// Equity is one journaled per-bar portfolio sample.
type Equity struct {
	RunID    string
	Date     time.Time
	Close    float64
	Equity   float64
	Cash     float64
	Holdings float64
}

// Run is a journaled summary of a completed backtest.
type Run struct {
	RunID    string
	Created  time.Time
	Strategy string
	Dataset  string

	Start time.Time
	End   time.Time

	Capital     float64
	FinalEquity float64

	TotalReturn float64
	CAGR        float64
	MaxDrawdown float64
	Sharpe      float64
	Trades      int
	Wins        int
	Losses      int
	WinRate     float64
}

// Journal is the persistence interface backtest runs write to.
type Journal interface {
	RecordTrade(Trade) error
	RecordEquity(Equity) error
	Close() error
}

// FromRecord flattens a ledger trade record for journaling under the
// given run ID.
func FromRecord(runID string, t sim.TradeRecord) Trade {
	c := t.Charges.Rounded()
	return Trade{
		RunID:        runID,
		Side:         t.Side.String(),
		Date:         t.Date,
		Price:        t.Price,
		Quantity:     t.Quantity,
		Value:        t.Value,
		Brokerage:    c.Brokerage,
		TxnTax:       c.TransactionTax,
		ExchangeFee:  c.ExchangeFee,
		RegFee:       c.RegulatoryFee,
		TaxOnFees:    c.TaxOnFees,
		StampDuty:    c.StampDuty,
		ChargesTotal: c.Total,
		CashAfter:    t.CashAfter,
		PnL:          t.PnL,
		HoldingDays:  t.HoldingDays,
	}
}
