package export

import (
	"fmt"
	"io"
	"os"

	"github.com/parquet-go/parquet-go"
	"github.com/rustyeddy/altchart/chart"
)

type renkoRow struct {
	Index     int64   `parquet:"index"`
	Price     float64 `parquet:"price"`
	Direction string  `parquet:"direction"`
	Low       float64 `parquet:"low"`
	High      float64 `parquet:"high"`
}

type kagiRow struct {
	Index int64   `parquet:"index"`
	Price float64 `parquet:"price"`
	Trend string  `parquet:"trend"`
}

type pointFigureRow struct {
	Column int64   `parquet:"column"`
	Price  float64 `parquet:"price"`
	Type   string  `parquet:"type"`
	Index  int64   `parquet:"index"`
}

type rangeRow struct {
	Index int64   `parquet:"index"`
	Open  float64 `parquet:"open"`
	High  float64 `parquet:"high"`
	Low   float64 `parquet:"low"`
	Close float64 `parquet:"close"`
	Count int64   `parquet:"count"`
}

// Parquet writes one parquet file per series with a schema per kind.
type Parquet struct{}

func (Parquet) Format() string { return "parquet" }

func (Parquet) Write(w io.Writer, s chart.Series) error {
	switch s.Kind {
	case chart.KindRenko:
		rows := make([]renkoRow, len(s.Renko))
		for i, b := range s.Renko {
			rows[i] = renkoRow{int64(b.Index), b.Price, b.Direction.String(), b.Low, b.High}
		}
		return parquet.Write(w, rows)
	case chart.KindKagi:
		rows := make([]kagiRow, len(s.Kagi))
		for i, p := range s.Kagi {
			rows[i] = kagiRow{int64(p.Index), p.Price, p.Trend.String()}
		}
		return parquet.Write(w, rows)
	case chart.KindPointFigure:
		rows := make([]pointFigureRow, len(s.PointFigure))
		for i, m := range s.PointFigure {
			rows[i] = pointFigureRow{int64(m.Column), m.Price, m.Type.String(), int64(m.Index)}
		}
		return parquet.Write(w, rows)
	case chart.KindRange:
		rows := make([]rangeRow, len(s.Range))
		for i, b := range s.Range {
			rows[i] = rangeRow{int64(b.Index), b.Open, b.High, b.Low, b.Close, int64(b.Count)}
		}
		return parquet.Write(w, rows)
	}
	return fmt.Errorf("export: unknown chart kind %q", s.Kind)
}

// WriteFile renders s with wr into a new file at path.
func WriteFile(wr Writer, path string, s chart.Series) error {
	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := wr.Write(fh, s); err != nil {
		fh.Close()
		return fmt.Errorf("export %s: %w", path, err)
	}
	return fh.Close()
}
