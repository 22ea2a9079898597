package source

import (
	"compress/gzip"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rustyeddy/altchart/chart"
	"github.com/ulikunitz/xz"
)

// CSVSource reads candles from a file with a header row naming the
// columns date, open, high, low, close and volume in any order (volume is
// optional). Files ending in .gz or .xz are decompressed on the fly.
//
// The query ticker is ignored; a file holds one instrument.
type CSVSource struct {
	Path string
}

// Candles implements CandleSource.
func (s *CSVSource) Candles(ctx context.Context, q Query) ([]chart.Candle, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := decompress(s.Path, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Path, err)
	}

	candles, err := ReadCSV(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Path, err)
	}
	return candles, nil
}

func decompress(path string, r io.Reader) (io.Reader, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		return gzip.NewReader(r)
	case ".xz":
		return xz.NewReader(r)
	default:
		return r, nil
	}
}

var csvColumns = []string{"date", "open", "high", "low", "close", "volume"}

// ReadCSV parses candles from r. Empty cells in price columns become NaN so
// that chart.Validate can reject the row.
func ReadCSV(ctx context.Context, r io.Reader) ([]chart.Candle, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		if name == "time" || name == "timestamp" {
			name = "date"
		}
		cols[name] = i
	}
	for _, c := range csvColumns[:5] {
		if _, ok := cols[c]; !ok {
			return nil, fmt.Errorf("missing %q column in header %v", c, header)
		}
	}

	var out []chart.Candle
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		line++
		if line%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if len(row) == 0 || (len(row) == 1 && strings.TrimSpace(row[0]) == "") {
			continue
		}

		c, err := parseRow(row, cols)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, c)
	}
}

func parseRow(row []string, cols map[string]int) (chart.Candle, error) {
	cell := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var c chart.Candle
	var err error
	if c.Time, err = chart.ParseDate(cell("date")); err != nil {
		return c, err
	}

	prices := []struct {
		name string
		dst  *float64
	}{
		{"open", &c.Open},
		{"high", &c.High},
		{"low", &c.Low},
		{"close", &c.Close},
	}
	for _, p := range prices {
		if *p.dst, err = parseFloat(cell(p.name), true); err != nil {
			return c, fmt.Errorf("bad %s: %w", p.name, err)
		}
	}
	if c.Volume, err = parseFloat(cell("volume"), false); err != nil {
		return c, fmt.Errorf("bad volume: %w", err)
	}
	return c, nil
}

func parseFloat(s string, nanIfEmpty bool) (float64, error) {
	if s == "" {
		if nanIfEmpty {
			return math.NaN(), nil
		}
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

// WriteCSV writes candles with the header ReadCSV expects.
func WriteCSV(w io.Writer, candles []chart.Candle) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvColumns); err != nil {
		return err
	}
	for _, c := range candles {
		row := []string{
			chart.FormatDate(c.Time),
			f(c.Open),
			f(c.High),
			f(c.Low),
			f(c.Close),
			f(c.Volume),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
