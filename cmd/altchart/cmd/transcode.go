package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/rustyeddy/altchart/chart"
	"github.com/rustyeddy/altchart/config"
	"github.com/rustyeddy/altchart/export"
	"github.com/rustyeddy/altchart/internal/id"
	"github.com/rustyeddy/altchart/internal/logger"
	"github.com/rustyeddy/altchart/source"
	"github.com/spf13/cobra"
)

var transcodeCmd = &cobra.Command{
	Use:   "transcode",
	Short: "Load candles and print an alternative chart",
	Long: `Transcode loads candles from the configured source and converts them into
Renko bricks, Kagi points, Point & Figure marks or range bars.

Only the most recent primitives are shown (display limits from the config,
override with --limit; 0 shows everything).

Examples:
  altchart transcode --ticker BTC-USD --kind renko --brick-size 500
  altchart transcode --csv candles.csv.xz --kind pnf --box-size 1 --reversal-boxes 3
  altchart transcode --ticker AAPL --all --format parquet -o aapl.parquet`,
	Args: cobra.NoArgs,
	RunE: runTranscode,
}

// chartFlags are the flags shared by transcode and watch.
type chartFlags struct {
	kind   string
	all    bool
	format string
	output string
	limit  int

	ticker  string
	period  string
	csvFile string
	source  string

	brickSize      float64
	reversalAmount float64
	boxSize        float64
	reversalBoxes  int
	rangeSize      float64
	precision      int
	flush          bool
}

var tcFlags chartFlags

func init() {
	rootCmd.AddCommand(transcodeCmd)
	tcFlags.register(transcodeCmd)
	transcodeCmd.Flags().BoolVar(&tcFlags.all, "all", false, "produce every chart kind")
	transcodeCmd.Flags().StringVarP(&tcFlags.output, "output", "o", "", "write to file instead of stdout (required for parquet)")
}

func (f *chartFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVarP(&f.kind, "kind", "k", "renko", "chart kind (renko, kagi, pnf, range)")
	fl.StringVarP(&f.format, "format", "f", "table", "output format (table, json, csv, parquet)")
	fl.IntVar(&f.limit, "limit", 0, "show only the last N primitives (default from config)")

	fl.StringVarP(&f.ticker, "ticker", "t", "", "ticker symbol (default from config)")
	fl.StringVarP(&f.period, "period", "p", "", "look-back period: "+strings.Join(source.Periods, ", "))
	fl.StringVar(&f.csvFile, "csv", "", "read candles from a CSV file (.gz and .xz allowed)")
	fl.StringVar(&f.source, "source", "", "source type override (http, csv, sqlite)")

	fl.Float64Var(&f.brickSize, "brick-size", 0, "renko: brick size")
	fl.Float64Var(&f.reversalAmount, "reversal", 0, "kagi: reversal amount")
	fl.Float64Var(&f.boxSize, "box-size", 0, "pnf: box size")
	fl.IntVar(&f.reversalBoxes, "reversal-boxes", 0, "pnf: boxes needed to reverse")
	fl.IntVar(&f.precision, "precision", 0, "pnf: rounding precision in decimal places")
	fl.Float64Var(&f.rangeSize, "range-size", 0, "range: bar size")
	fl.BoolVar(&f.flush, "flush", false, "range: keep the trailing incomplete bar")
}

// apply copies explicitly set flags over the loaded configuration.
func (f *chartFlags) apply(cmd *cobra.Command, c *config.Config) {
	fl := cmd.Flags()
	if fl.Changed("ticker") {
		c.Source.Ticker = f.ticker
	}
	if fl.Changed("period") {
		c.Source.Period = f.period
	}
	if fl.Changed("csv") {
		c.Source.Type = source.TypeCSV
		c.Source.CSVFile = f.csvFile
	}
	if fl.Changed("source") {
		c.Source.Type = f.source
	}
	if fl.Changed("brick-size") {
		c.Chart.BrickSize = f.brickSize
	}
	if fl.Changed("reversal") {
		c.Chart.ReversalAmount = f.reversalAmount
	}
	if fl.Changed("box-size") {
		c.Chart.BoxSize = f.boxSize
	}
	if fl.Changed("reversal-boxes") {
		c.Chart.ReversalBoxes = f.reversalBoxes
	}
	if fl.Changed("precision") {
		c.Chart.Precision = f.precision
	}
	if fl.Changed("range-size") {
		c.Chart.RangeSize = f.rangeSize
	}
	if fl.Changed("flush") {
		c.Chart.FlushPartial = f.flush
	}
}

// job is one resolved transcode request.
type job struct {
	src     source.CandleSource
	query   source.Query
	kinds   []chart.Kind
	params  chart.Params
	display config.DisplayConfig
	limit   int // overrides display when >= 0
	writer  export.Writer
	output  string
}

func (f *chartFlags) job(cmd *cobra.Command, c *config.Config, src source.CandleSource) (*job, error) {
	j := &job{
		src:     src,
		query:   source.Query{Ticker: c.Source.Ticker, Period: c.Source.Period},
		params:  c.Chart.Params(),
		display: c.Display,
		limit:   -1,
		output:  f.output,
	}
	if cmd.Flags().Changed("limit") {
		j.limit = f.limit
	}

	if f.all {
		j.kinds = chart.Kinds
	} else {
		k, err := chart.ParseKind(f.kind)
		if err != nil {
			return nil, err
		}
		j.kinds = []chart.Kind{k}
	}
	for _, k := range j.kinds {
		if err := j.params.Validate(k); err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
	}

	w, err := export.New(f.format)
	if err != nil {
		return nil, err
	}
	if w.Format() == "parquet" && f.output == "" {
		return nil, fmt.Errorf("parquet output needs --output")
	}
	j.writer = w
	return j, nil
}

func runTranscode(cmd *cobra.Command, args []string) error {
	tcFlags.apply(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	src, closeSrc, err := openSource(cfg)
	if err != nil {
		return err
	}
	defer closeSrc()

	j, err := tcFlags.job(cmd, cfg, src)
	if err != nil {
		return err
	}

	ctx := id.WithRun(cmd.Context(), id.New())
	err = j.run(ctx, cmd.OutOrStdout(), log)
	if errors.Is(err, chart.ErrEmptyInput) {
		log.WarnContext(ctx, "nothing to render", logger.F("ticker", j.query.Ticker))
		return nil
	}
	return err
}

// run loads candles once and writes one series per kind. A source with no
// candles yields chart.ErrEmptyInput and writes nothing.
func (j *job) run(ctx context.Context, out io.Writer, l *logger.Logger) error {
	candles, err := j.src.Candles(ctx, j.query)
	if err != nil {
		return fmt.Errorf("load %s: %w", j.query.Ticker, err)
	}
	if len(candles) == 0 {
		return fmt.Errorf("load %s: %w", j.query.Ticker, chart.ErrEmptyInput)
	}

	for i, kind := range j.kinds {
		s, err := chart.Transform(kind, candles, j.params)
		if err != nil {
			return err
		}
		total := s.Len()

		limit := j.limit
		if limit < 0 {
			limit = j.display.Limit(kind)
		}
		s = s.Tail(limit)

		l.InfoContext(ctx, "transcoded",
			logger.F("ticker", j.query.Ticker),
			logger.F("kind", string(kind)),
			logger.F("candles", len(candles)),
			logger.F("primitives", total),
			logger.F("shown", s.Len()),
		)

		if j.output != "" {
			path := outputPath(j.output, kind, len(j.kinds) > 1)
			if err := export.WriteFile(j.writer, path, s); err != nil {
				return err
			}
			l.InfoContext(ctx, "wrote series", logger.F("path", path), logger.F("format", j.writer.Format()))
			continue
		}

		if i > 0 {
			fmt.Fprintln(out)
		}
		if j.writer.Format() == "table" {
			fmt.Fprintf(out, "# %s %s\n", j.query.Ticker, kind)
		}
		if err := j.writer.Write(out, s); err != nil {
			return err
		}
	}
	return nil
}

// outputPath inserts the kind before the extension when several kinds
// share one --output, e.g. btc.parquet -> btc.renko.parquet.
func outputPath(path string, kind chart.Kind, multi bool) string {
	if !multi {
		return path
	}
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "." + string(kind) + ext
}
