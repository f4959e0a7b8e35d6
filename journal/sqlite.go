package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteJournal struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		return nil, err
	}

	return &SQLiteJournal{db: db}, nil
}

func (j *SQLiteJournal) RecordTrade(t Trade) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(run_id, side, date, price, quantity, value,
		 brokerage, transaction_tax, exchange_fee, regulatory_fee, tax_on_fees, stamp_duty,
		 charges_total, cash_after, pnl, holding_days)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.RunID, t.Side, t.Date, t.Price, t.Quantity, t.Value,
		t.Brokerage, t.TxnTax, t.ExchangeFee, t.RegFee, t.TaxOnFees, t.StampDuty,
		t.ChargesTotal, t.CashAfter, t.PnL, t.HoldingDays,
	)
	return err
}

func (j *SQLiteJournal) RecordEquity(e Equity) error {
	_, err := j.db.Exec(`
		INSERT INTO equity
		(run_id, date, close, equity, cash, holdings)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.RunID, e.Date, e.Close, e.Equity, e.Cash, e.Holdings,
	)
	return err
}

// RecordRun stores a completed run summary.
func (j *SQLiteJournal) RecordRun(r Run) error {
	_, err := j.db.Exec(`
		INSERT INTO runs
		(run_id, created, strategy, dataset, start_date, end_date, capital, final_equity,
		 total_return, cagr, max_drawdown, sharpe, trades, wins, losses, win_rate)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Created, r.Strategy, r.Dataset, r.Start, r.End, r.Capital, r.FinalEquity,
		r.TotalReturn, r.CAGR, r.MaxDrawdown, r.Sharpe, r.Trades, r.Wins, r.Losses, r.WinRate,
	)
	return err
}

// ListRuns returns run summaries, most recent first.
func (j *SQLiteJournal) ListRuns() ([]Run, error) {
	rows, err := j.db.Query(`
		SELECT run_id, created, strategy, dataset, start_date, end_date, capital, final_equity,
		       total_return, cagr, max_drawdown, sharpe, trades, wins, losses, win_rate
		FROM runs ORDER BY run_id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(
			&r.RunID, &r.Created, &r.Strategy, &r.Dataset, &r.Start, &r.End,
			&r.Capital, &r.FinalEquity, &r.TotalReturn, &r.CAGR, &r.MaxDrawdown,
			&r.Sharpe, &r.Trades, &r.Wins, &r.Losses, &r.WinRate,
		); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// ListTradesByRun returns a run's fills in chronological order.
func (j *SQLiteJournal) ListTradesByRun(runID string) ([]Trade, error) {
	rows, err := j.db.Query(`
		SELECT run_id, side, date, price, quantity, value,
		       brokerage, transaction_tax, exchange_fee, regulatory_fee, tax_on_fees, stamp_duty,
		       charges_total, cash_after, pnl, holding_days
		FROM trades WHERE run_id = ? ORDER BY date`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trades []Trade
	for rows.Next() {
		var t Trade
		if err := rows.Scan(
			&t.RunID, &t.Side, &t.Date, &t.Price, &t.Quantity, &t.Value,
			&t.Brokerage, &t.TxnTax, &t.ExchangeFee, &t.RegFee, &t.TaxOnFees, &t.StampDuty,
			&t.ChargesTotal, &t.CashAfter, &t.PnL, &t.HoldingDays,
		); err != nil {
			return nil, err
		}
		trades = append(trades, t)
	}
	return trades, rows.Err()
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
