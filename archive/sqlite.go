// Package archive keeps imported candles in a local SQLite database and
// serves them back as a candle source.
package archive

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rustyeddy/altchart/chart"
	"github.com/rustyeddy/altchart/internal/id"
)

// SQLite is a candle archive backed by a SQLite file.
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLite opens (and if needed creates) the archive at path.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db, now: time.Now}, nil
}

// Import is one recorded import run.
type Import struct {
	ImportID   string
	Ticker     string
	Origin     string
	Rows       int
	ImportedAt time.Time
}

// Import stores candles for ticker, replacing rows with the same
// timestamp, and records the run. Candles are validated first so the
// archive never holds rows the transcoder would reject.
func (a *SQLite) Import(ctx context.Context, ticker, origin string, candles []chart.Candle) (Import, error) {
	ticker = strings.TrimSpace(ticker)
	if ticker == "" {
		return Import{}, fmt.Errorf("archive: missing ticker")
	}
	if err := chart.Validate(candles); err != nil {
		return Import{}, fmt.Errorf("archive: %w", err)
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return Import{}, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO candles
		(ticker, time, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return Import{}, err
	}
	defer stmt.Close()

	for _, c := range candles {
		if _, err := stmt.ExecContext(ctx,
			ticker, c.Time.Unix(), c.Open, c.High, c.Low, c.Close, c.Volume,
		); err != nil {
			return Import{}, err
		}
	}

	imp := Import{
		ImportID:   id.New(),
		Ticker:     ticker,
		Origin:     origin,
		Rows:       len(candles),
		ImportedAt: a.now().UTC().Truncate(time.Second),
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO imports
		(import_id, ticker, origin, rows, imported_at)
		VALUES (?, ?, ?, ?, ?)`,
		imp.ImportID, imp.Ticker, imp.Origin, imp.Rows, imp.ImportedAt.Unix(),
	); err != nil {
		return Import{}, err
	}

	if err := tx.Commit(); err != nil {
		return Import{}, err
	}
	return imp, nil
}

func (a *SQLite) Close() error {
	return a.db.Close()
}
