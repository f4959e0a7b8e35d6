// Package costs computes regulatory and brokerage charges for a trade
// notional. Charges are side-asymmetric: the transaction tax applies
// only to sells and stamp duty only to buys.
package costs

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/backtester/market"
)

// Schedule holds the per-notional charge rates. All rates are fractions
// of the trade notional except TaxOnFeesRate, which applies to the sum
// of brokerage and exchange fees.
type Schedule struct {
	BrokerageRate      float64 `json:"brokerage_rate" yaml:"brokerage_rate"`
	TransactionTaxRate float64 `json:"transaction_tax_rate" yaml:"transaction_tax_rate"` // SELL only
	ExchangeRate       float64 `json:"exchange_rate" yaml:"exchange_rate"`
	RegulatoryRate     float64 `json:"regulatory_rate" yaml:"regulatory_rate"`
	TaxOnFeesRate      float64 `json:"tax_on_fees_rate" yaml:"tax_on_fees_rate"`
	StampDutyRate      float64 `json:"stamp_duty_rate" yaml:"stamp_duty_rate"` // BUY only
}

// DefaultSchedule returns the recognized default rates: brokerage 0.03%,
// sell-side transaction tax 0.1%, exchange fee 0.00345%, regulatory fee
// 0.0001%, tax on fees 18%, buy-side stamp duty 0.015%.
func DefaultSchedule() Schedule {
	return Schedule{
		BrokerageRate:      0.0003,
		TransactionTaxRate: 0.001,
		ExchangeRate:       0.0000345,
		RegulatoryRate:     0.000001,
		TaxOnFeesRate:      0.18,
		StampDutyRate:      0.00015,
	}
}

// Validate checks that every rate is non-negative.
func (s Schedule) Validate() error {
	rates := map[string]float64{
		"brokerage_rate":       s.BrokerageRate,
		"transaction_tax_rate": s.TransactionTaxRate,
		"exchange_rate":        s.ExchangeRate,
		"regulatory_rate":      s.RegulatoryRate,
		"tax_on_fees_rate":     s.TaxOnFeesRate,
		"stamp_duty_rate":      s.StampDutyRate,
	}
	for name, r := range rates {
		if r < 0 {
			return fmt.Errorf("costs: %s must be non-negative, got %v", name, r)
		}
	}
	return nil
}

// Charges is the itemized cost of a single fill.
type Charges struct {
	Brokerage      float64 `json:"brokerage"`
	TransactionTax float64 `json:"transaction_tax"`
	ExchangeFee    float64 `json:"exchange_fee"`
	RegulatoryFee  float64 `json:"regulatory_fee"`
	TaxOnFees      float64 `json:"tax_on_fees"`
	StampDuty      float64 `json:"stamp_duty"`
	Total          float64 `json:"total"`
}

// Charges computes the itemized charges for a trade of the given
// notional and side. Values are full precision; use Rounded for
// reporting surfaces.
func (s Schedule) Charges(notional float64, side market.Side) Charges {
	c := Charges{
		Brokerage:     notional * s.BrokerageRate,
		ExchangeFee:   notional * s.ExchangeRate,
		RegulatoryFee: notional * s.RegulatoryRate,
	}
	c.TaxOnFees = s.TaxOnFeesRate * (c.Brokerage + c.ExchangeFee)
	if side == market.Sell {
		c.TransactionTax = notional * s.TransactionTaxRate
	}
	if side == market.Buy {
		c.StampDuty = notional * s.StampDutyRate
	}
	c.Total = c.Brokerage + c.TransactionTax + c.ExchangeFee +
		c.RegulatoryFee + c.TaxOnFees + c.StampDuty
	return c
}

// Rounded returns a copy with every component rounded to two decimal
// places. Only reporting output rounds; accumulation across a trade
// history stays full precision so rounding error cannot compound.
func (c Charges) Rounded() Charges {
	return Charges{
		Brokerage:      round2(c.Brokerage),
		TransactionTax: round2(c.TransactionTax),
		ExchangeFee:    round2(c.ExchangeFee),
		RegulatoryFee:  round2(c.RegulatoryFee),
		TaxOnFees:      round2(c.TaxOnFees),
		StampDuty:      round2(c.StampDuty),
		Total:          round2(c.Total),
	}
}

func round2(x float64) float64 {
	f, _ := decimal.NewFromFloat(x).Round(2).Float64()
	return f
}
