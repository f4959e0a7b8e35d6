// journal/schema.go
package journal

const Schema = `
CREATE TABLE IF NOT EXISTS trades (
	run_id TEXT NOT NULL,
	side TEXT NOT NULL,
	date DATETIME NOT NULL,
	price REAL NOT NULL,
	quantity INTEGER NOT NULL,
	value REAL NOT NULL,
	brokerage REAL NOT NULL,
	transaction_tax REAL NOT NULL,
	exchange_fee REAL NOT NULL,
	regulatory_fee REAL NOT NULL,
	tax_on_fees REAL NOT NULL,
	stamp_duty REAL NOT NULL,
	charges_total REAL NOT NULL,
	cash_after REAL NOT NULL,
	pnl REAL NOT NULL,
	holding_days INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS equity (
	run_id TEXT NOT NULL,
	date DATETIME NOT NULL,
	close REAL NOT NULL,
	equity REAL NOT NULL,
	cash REAL NOT NULL,
	holdings REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	created DATETIME NOT NULL,
	strategy TEXT NOT NULL,
	dataset TEXT NOT NULL,
	start_date DATETIME NOT NULL,
	end_date DATETIME NOT NULL,
	capital REAL NOT NULL,
	final_equity REAL NOT NULL,
	total_return REAL NOT NULL,
	cagr REAL NOT NULL,
	max_drawdown REAL NOT NULL,
	sharpe REAL NOT NULL,
	trades INTEGER NOT NULL,
	wins INTEGER NOT NULL,
	losses INTEGER NOT NULL,
	win_rate REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_run ON trades(run_id);
CREATE INDEX IF NOT EXISTS idx_equity_run ON equity(run_id, date);
`
