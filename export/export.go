// Package export writes derived chart series in the formats the CLI offers.
package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rustyeddy/altchart/chart"
)

// Writer renders a series to w.
type Writer interface {
	Format() string
	Write(w io.Writer, s chart.Series) error
}

// Formats lists every supported output format.
var Formats = []string{"table", "json", "csv", "parquet"}

// New returns the Writer for format.
func New(format string) (Writer, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "table":
		return Table{}, nil
	case "json":
		return JSON{Indent: "  "}, nil
	case "csv":
		return CSV{}, nil
	case "parquet":
		return Parquet{}, nil
	default:
		return nil, fmt.Errorf("export: unsupported format %q (use %s)", format, strings.Join(Formats, ", "))
	}
}

// Records flattens s into a header and one string row per primitive.
func Records(s chart.Series) ([]string, [][]string, error) {
	switch s.Kind {
	case chart.KindRenko:
		rows := make([][]string, len(s.Renko))
		for i, b := range s.Renko {
			rows[i] = []string{strconv.Itoa(b.Index), f(b.Price), b.Direction.String(), f(b.Low), f(b.High)}
		}
		return []string{"index", "price", "direction", "low", "high"}, rows, nil
	case chart.KindKagi:
		rows := make([][]string, len(s.Kagi))
		for i, p := range s.Kagi {
			rows[i] = []string{strconv.Itoa(p.Index), f(p.Price), p.Trend.String()}
		}
		return []string{"index", "price", "trend"}, rows, nil
	case chart.KindPointFigure:
		rows := make([][]string, len(s.PointFigure))
		for i, m := range s.PointFigure {
			rows[i] = []string{strconv.Itoa(m.Column), f(m.Price), m.Type.String(), strconv.Itoa(m.Index)}
		}
		return []string{"column", "price", "type", "index"}, rows, nil
	case chart.KindRange:
		rows := make([][]string, len(s.Range))
		for i, b := range s.Range {
			rows[i] = []string{strconv.Itoa(b.Index), f(b.Open), f(b.High), f(b.Low), f(b.Close), strconv.Itoa(b.Count)}
		}
		return []string{"index", "open", "high", "low", "close", "count"}, rows, nil
	}
	return nil, nil, fmt.Errorf("export: unknown chart kind %q", s.Kind)
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
