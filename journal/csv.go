// journal/csv.go
package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

type CSVJournal struct {
	trades *csv.Writer
	equity *csv.Writer
	tf, ef *os.File
}

func NewCSV(tradesPath, equityPath string) (*CSVJournal, error) {
	tf, err := os.Create(tradesPath)
	if err != nil {
		return nil, err
	}
	ef, err := os.Create(equityPath)
	if err != nil {
		tf.Close()
		return nil, err
	}

	tw := csv.NewWriter(tf)
	ew := csv.NewWriter(ef)

	if err := tw.Write([]string{
		"run_id", "side", "date", "price", "quantity", "value",
		"brokerage", "transaction_tax", "exchange_fee", "regulatory_fee",
		"tax_on_fees", "stamp_duty", "charges_total", "cash_after",
		"pnl", "holding_days",
	}); err != nil {
		return nil, err
	}
	if err := ew.Write([]string{"run_id", "date", "close", "equity", "cash", "holdings"}); err != nil {
		return nil, err
	}

	tw.Flush()
	if err := tw.Error(); err != nil {
		return nil, err
	}
	ew.Flush()
	if err := ew.Error(); err != nil {
		return nil, err
	}

	return &CSVJournal{tw, ew, tf, ef}, nil
}

func (j *CSVJournal) RecordTrade(t Trade) error {
	err := j.trades.Write([]string{
		t.RunID,
		t.Side,
		t.Date.Format(time.DateOnly),
		f(t.Price),
		strconv.FormatInt(t.Quantity, 10),
		f(t.Value),
		f(t.Brokerage),
		f(t.TxnTax),
		f(t.ExchangeFee),
		f(t.RegFee),
		f(t.TaxOnFees),
		f(t.StampDuty),
		f(t.ChargesTotal),
		f(t.CashAfter),
		f(t.PnL),
		strconv.Itoa(t.HoldingDays),
	})
	if err != nil {
		return err
	}

	j.trades.Flush()
	return j.trades.Error()
}

func (j *CSVJournal) RecordEquity(e Equity) error {
	err := j.equity.Write([]string{
		e.RunID,
		e.Date.Format(time.DateOnly),
		f(e.Close),
		f(e.Equity),
		f(e.Cash),
		f(e.Holdings),
	})
	if err != nil {
		return err
	}

	j.equity.Flush()
	return j.equity.Error()
}

func (j *CSVJournal) Close() error {
	j.trades.Flush()
	if err := j.trades.Error(); err != nil {
		return err
	}
	j.equity.Flush()
	if err := j.equity.Error(); err != nil {
		return err
	}

	if err := j.tf.Close(); err != nil {
		return err
	}
	return j.ef.Close()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 2, 64)
}
