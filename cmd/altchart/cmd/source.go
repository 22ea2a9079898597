package cmd

import (
	"fmt"
	"net/http"

	"github.com/rustyeddy/altchart/archive"
	"github.com/rustyeddy/altchart/config"
	"github.com/rustyeddy/altchart/source"
)

// openSource builds the candle source configured in c. The returned close
// function is never nil.
func openSource(c *config.Config) (source.CandleSource, func() error, error) {
	var src source.CandleSource
	closer := func() error { return nil }

	switch c.Source.Type {
	case source.TypeHTTP:
		timeout, err := c.Source.TimeoutDuration()
		if err != nil {
			return nil, closer, fmt.Errorf("source timeout: %w", err)
		}
		src = &source.HTTPSource{
			BaseURL: c.Source.BaseURL,
			Path:    c.Source.Path,
			HTTP:    &http.Client{Timeout: timeout},
		}
	case source.TypeCSV:
		if c.Source.CSVFile == "" {
			return nil, closer, fmt.Errorf("csv source: csv_file is required")
		}
		src = &source.CSVSource{Path: c.Source.CSVFile}
	case source.TypeSQLite:
		a, err := archive.NewSQLite(c.Archive.DBPath)
		if err != nil {
			return nil, closer, fmt.Errorf("open archive: %w", err)
		}
		src, closer = a, a.Close
	default:
		return nil, closer, fmt.Errorf("unknown source type %q", c.Source.Type)
	}

	if c.Source.DropInvalid {
		src = source.Cleaned(src)
	}
	return src, closer, nil
}
