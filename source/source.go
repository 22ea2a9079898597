// Package source provides the candle inputs for chart transformations.
package source

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rustyeddy/altchart/chart"
)

// Source types understood by the CLI configuration.
const (
	TypeHTTP   = "http"
	TypeCSV    = "csv"
	TypeSQLite = "sqlite"
)

// ErrTickerNotFound is returned when a source has no candles for a ticker.
var ErrTickerNotFound = errors.New("ticker not found")

// Periods are the look-back windows the analytics API accepts.
var Periods = []string{"1d", "5d", "1mo", "3mo", "6mo", "1y", "2y", "5y", "max"}

// ValidatePeriod rejects periods the API would refuse.
func ValidatePeriod(p string) error {
	for _, v := range Periods {
		if p == v {
			return nil
		}
	}
	return fmt.Errorf("unsupported period %q (want one of %s)", p, strings.Join(Periods, ", "))
}

// Query selects the candles to load.
type Query struct {
	Ticker string
	Period string // optional, one of Periods
}

// CandleSource returns chronologically ordered candles.
type CandleSource interface {
	Candles(ctx context.Context, q Query) ([]chart.Candle, error)
}

// Func adapts a function to CandleSource.
type Func func(ctx context.Context, q Query) ([]chart.Candle, error)

func (f Func) Candles(ctx context.Context, q Query) ([]chart.Candle, error) { return f(ctx, q) }

// Cleaned wraps src so that rows chart.Validate would reject are dropped
// instead of failing the transformation.
func Cleaned(src CandleSource) CandleSource {
	return Func(func(ctx context.Context, q Query) ([]chart.Candle, error) {
		candles, err := src.Candles(ctx, q)
		if err != nil {
			return nil, err
		}
		return chart.Clean(candles), nil
	})
}
