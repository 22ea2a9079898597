package archive

// Schema creates the candle archive. Prices are stored as REAL; time is
// stored as unix seconds so ordering and range queries stay numeric.
const Schema = `
CREATE TABLE IF NOT EXISTS candles (
	ticker TEXT NOT NULL,
	time INTEGER NOT NULL,
	open REAL NOT NULL,
	high REAL NOT NULL,
	low REAL NOT NULL,
	close REAL NOT NULL,
	volume REAL NOT NULL,
	PRIMARY KEY (ticker, time)
);

CREATE TABLE IF NOT EXISTS imports (
	import_id TEXT PRIMARY KEY,
	ticker TEXT NOT NULL,
	origin TEXT NOT NULL,
	rows INTEGER NOT NULL,
	imported_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_imports_ticker ON imports(ticker);
`
