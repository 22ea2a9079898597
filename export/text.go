package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/rustyeddy/altchart/chart"
)

// Table prints an aligned plain-text table.
type Table struct{}

func (Table) Format() string { return "table" }

func (Table) Write(w io.Writer, s chart.Series) error {
	header, rows, err := Records(s)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, strings.Join(header, "\t")+"\t")
	for _, r := range rows {
		fmt.Fprintln(tw, strings.Join(r, "\t")+"\t")
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%d %s primitives\n", len(rows), s.Kind)
	return err
}

// JSON writes the series object, e.g. {"kind":"renko","renko":[...]}.
type JSON struct {
	Indent string
}

func (JSON) Format() string { return "json" }

func (j JSON) Write(w io.Writer, s chart.Series) error {
	if _, _, err := Records(s); err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	if j.Indent != "" {
		enc.SetIndent("", j.Indent)
	}
	return enc.Encode(s)
}

// CSV writes a header row followed by one row per primitive.
type CSV struct{}

func (CSV) Format() string { return "csv" }

func (CSV) Write(w io.Writer, s chart.Series) error {
	header, rows, err := Records(s)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}
