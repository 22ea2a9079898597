package archive

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/rustyeddy/altchart/chart"
	"github.com/rustyeddy/altchart/source"
)

// Candles implements source.CandleSource. A non-empty period limits the
// result to that window before the newest stored candle.
func (a *SQLite) Candles(ctx context.Context, q source.Query) ([]chart.Candle, error) {
	if q.Ticker == "" {
		return nil, fmt.Errorf("archive: missing ticker")
	}

	from := int64(math.MinInt64)
	if q.Period != "" && q.Period != "max" {
		var newest sql.NullInt64
		row := a.db.QueryRowContext(ctx, `SELECT MAX(time) FROM candles WHERE ticker = ?`, q.Ticker)
		if err := row.Scan(&newest); err != nil {
			return nil, err
		}
		if !newest.Valid {
			return nil, fmt.Errorf("archive %s: %w", q.Ticker, source.ErrTickerNotFound)
		}
		start, err := periodStart(time.Unix(newest.Int64, 0).UTC(), q.Period)
		if err != nil {
			return nil, fmt.Errorf("archive: %w", err)
		}
		from = start.Unix()
	}

	rows, err := a.db.QueryContext(ctx, `
		SELECT time, open, high, low, close, volume
		FROM candles
		WHERE ticker = ? AND time >= ?
		ORDER BY time ASC`, q.Ticker, from)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []chart.Candle
	for rows.Next() {
		var ts int64
		var c chart.Candle
		if err := rows.Scan(&ts, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			return nil, err
		}
		c.Time = time.Unix(ts, 0).UTC()
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("archive %s: %w", q.Ticker, source.ErrTickerNotFound)
	}
	return out, nil
}

// periodStart returns the first instant inside period when the window ends
// at newest. Day periods count back from the newest candle inclusively.
func periodStart(newest time.Time, period string) (time.Time, error) {
	if err := source.ValidatePeriod(period); err != nil {
		return time.Time{}, err
	}
	switch period {
	case "1d":
		return newest, nil
	case "5d":
		return newest.AddDate(0, 0, -4), nil
	case "1mo":
		return newest.AddDate(0, -1, 0), nil
	case "3mo":
		return newest.AddDate(0, -3, 0), nil
	case "6mo":
		return newest.AddDate(0, -6, 0), nil
	case "1y":
		return newest.AddDate(-1, 0, 0), nil
	case "2y":
		return newest.AddDate(-2, 0, 0), nil
	case "5y":
		return newest.AddDate(-5, 0, 0), nil
	}
	return time.Time{}, nil
}

// TickerSummary describes what the archive holds for one ticker.
type TickerSummary struct {
	Ticker string
	Rows   int
	First  time.Time
	Last   time.Time
}

// Tickers lists every archived ticker with its row count and time span.
func (a *SQLite) Tickers(ctx context.Context) ([]TickerSummary, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT ticker, COUNT(*), MIN(time), MAX(time)
		FROM candles
		GROUP BY ticker
		ORDER BY ticker ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TickerSummary
	for rows.Next() {
		var s TickerSummary
		var first, last int64
		if err := rows.Scan(&s.Ticker, &s.Rows, &first, &last); err != nil {
			return nil, err
		}
		s.First = time.Unix(first, 0).UTC()
		s.Last = time.Unix(last, 0).UTC()
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Imports returns the recorded import runs for ticker, oldest first.
func (a *SQLite) Imports(ctx context.Context, ticker string) ([]Import, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT import_id, ticker, origin, rows, imported_at
		FROM imports
		WHERE ticker = ?
		ORDER BY import_id ASC`, ticker)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Import
	for rows.Next() {
		var imp Import
		var at int64
		if err := rows.Scan(&imp.ImportID, &imp.Ticker, &imp.Origin, &imp.Rows, &at); err != nil {
			return nil, err
		}
		imp.ImportedAt = time.Unix(at, 0).UTC()
		out = append(out, imp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
