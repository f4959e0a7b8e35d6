package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/backtester/backtest"
	"github.com/rustyeddy/backtester/costs"
	"github.com/rustyeddy/backtester/market"
	"github.com/rustyeddy/backtester/metrics"
)

// backtestResponse is the wire shape the chart frontend consumes.
type backtestResponse struct {
	Metrics      metrics.Report  `json:"metrics"`
	Trades       []tradePayload  `json:"trades"`
	ChartData    []chartPoint    `json:"chart_data"`
	Summary      summaryPayload  `json:"summary"`
	OpenPosition *openPosPayload `json:"open_position"`
}

type tradePayload struct {
	Type       string        `json:"type"`
	Date       string        `json:"date"`
	Price      float64       `json:"price"`
	Qty        int64         `json:"qty"`
	TradeValue float64       `json:"trade_value"`
	Charges    costs.Charges `json:"charges"`
	CashAfter  float64       `json:"cash_after"`
	PnL        *float64      `json:"pnl"`

	// Entry linkage, sells only.
	BuyDate     string  `json:"buy_date,omitempty"`
	BuyPrice    float64 `json:"buy_price,omitempty"`
	BuyCharges  float64 `json:"buy_charges,omitempty"`
	HoldingDays int     `json:"holding_days,omitempty"`
}

type chartPoint struct {
	Date     string  `json:"date"`
	Close    float64 `json:"close"`
	Equity   float64 `json:"equity"`
	Cash     float64 `json:"cash"`
	Holdings float64 `json:"holdings"`
}

type summaryPayload struct {
	InitialCapital float64 `json:"initial_capital"`
	CashBalance    float64 `json:"cash_balance"`
	HoldingsValue  float64 `json:"holdings_value"`
	TotalPortfolio float64 `json:"total_portfolio"`
	TotalCharges   float64 `json:"total_charges"`
	NetPnL         float64 `json:"net_pnl"`
	ReturnPct      float64 `json:"return_pct"`
}

type openPosPayload struct {
	Qty           int64   `json:"qty"`
	EntryPrice    float64 `json:"entry_price"`
	EntryDate     string  `json:"entry_date"`
	CurrentPrice  float64 `json:"current_price"`
	HoldingsValue float64 `json:"holdings_value"`
	UnrealizedPnL float64 `json:"unrealized_pnl"`
}

func buildResponse(res *backtest.Result) backtestResponse {
	trades := make([]tradePayload, 0, len(res.Trades))
	for _, t := range res.Trades {
		tp := tradePayload{
			Type:       t.Side.String(),
			Date:       t.Date.Format(time.DateOnly),
			Price:      t.Price,
			Qty:        t.Quantity,
			TradeValue: round2(t.Value),
			Charges:    t.Charges.Rounded(),
			CashAfter:  round2(t.CashAfter),
		}
		if t.Side == market.Sell {
			pnl := round2(t.PnL)
			tp.PnL = &pnl
			tp.BuyDate = t.EntryDate.Format(time.DateOnly)
			tp.BuyPrice = t.EntryPrice
			tp.BuyCharges = round2(t.EntryCharges)
			tp.HoldingDays = t.HoldingDays
		}
		trades = append(trades, tp)
	}

	chart := make([]chartPoint, 0, len(res.EquityCurve))
	for _, pt := range res.EquityCurve {
		chart = append(chart, chartPoint{
			Date:     pt.Date.Format(time.DateOnly),
			Close:    round2(pt.Close),
			Equity:   round2(pt.Equity),
			Cash:     round2(pt.Cash),
			Holdings: round2(pt.Holdings),
		})
	}

	finalEquity := res.FinalEquity()
	holdings := finalEquity - res.FinalCash

	resp := backtestResponse{
		Metrics:   res.Report,
		Trades:    trades,
		ChartData: chart,
		Summary: summaryPayload{
			InitialCapital: res.InitialCapital,
			CashBalance:    round2(res.FinalCash),
			HoldingsValue:  round2(holdings),
			TotalPortfolio: round2(finalEquity),
			TotalCharges:   round2(res.TotalCharges),
			NetPnL:         round2(res.NetPnL()),
			ReturnPct:      round2(res.NetPnL() / res.InitialCapital * 100),
		},
	}

	if pos := res.OpenPosition; pos != nil && len(res.EquityCurve) > 0 {
		last := res.EquityCurve[len(res.EquityCurve)-1]
		resp.OpenPosition = &openPosPayload{
			Qty:           pos.Quantity,
			EntryPrice:    round2(pos.EntryPrice),
			EntryDate:     pos.EntryDate.Format(time.DateOnly),
			CurrentPrice:  round2(last.Close),
			HoldingsValue: round2(last.Holdings),
			UnrealizedPnL: round2((last.Close - pos.EntryPrice) * float64(pos.Quantity)),
		}
	}

	return resp
}

func round2(x float64) float64 {
	f, _ := decimal.NewFromFloat(x).Round(2).Float64()
	return f
}
