package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/rustyeddy/altchart/chart"
	"github.com/rustyeddy/altchart/export"
	"github.com/rustyeddy/altchart/internal/id"
	"github.com/rustyeddy/altchart/internal/logger"
	"github.com/rustyeddy/altchart/replay"
	"github.com/rustyeddy/altchart/source"
	"github.com/spf13/cobra"
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Stream candles through a chart builder and print primitives as they form",
	Long: `Replay feeds candles to a builder one at a time and prints each primitive
next to the candle that produced it.

Examples:
  altchart replay --csv btc.csv --kind renko --brick-size 250
  altchart replay --ticker AAPL --kind pnf --delay 200ms --quiet`,
	Args: cobra.NoArgs,
	RunE: runReplay,
}

var (
	rpFlags chartFlags
	rpDelay time.Duration
	rpQuiet bool
)

func init() {
	rootCmd.AddCommand(replayCmd)
	rpFlags.register(replayCmd)
	replayCmd.Flags().DurationVar(&rpDelay, "delay", 0, "pause between candles")
	replayCmd.Flags().BoolVarP(&rpQuiet, "quiet", "q", false, "skip candles that emit nothing")
}

func runReplay(cmd *cobra.Command, args []string) error {
	rpFlags.apply(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	kind, err := chart.ParseKind(rpFlags.kind)
	if err != nil {
		return err
	}
	b, err := chart.NewBuilder(kind, cfg.Chart.Params())
	if err != nil {
		return fmt.Errorf("%s: %w", kind, err)
	}

	src, closeSrc, err := openSource(cfg)
	if err != nil {
		return err
	}
	defer closeSrc()

	ctx := id.WithRun(cmd.Context(), id.New())
	q := source.Query{Ticker: cfg.Source.Ticker, Period: cfg.Source.Period}
	candles, err := src.Candles(ctx, q)
	if err != nil {
		return fmt.Errorf("load %s: %w", q.Ticker, err)
	}

	out := cmd.OutOrStdout()
	header := false
	err = replay.Candles(ctx, candles, b, replay.Options{Delay: rpDelay, SkipQuiet: rpQuiet}, func(s replay.Step) error {
		cols, rows, err := export.Records(s.Added)
		if err != nil {
			return err
		}
		if !header {
			fmt.Fprintf(out, "date %s\n", strings.Join(cols, " "))
			header = true
		}
		date := chart.FormatDate(s.Candle.Time)
		if len(rows) == 0 {
			fmt.Fprintf(out, "%s -\n", date)
		}
		for _, r := range rows {
			fmt.Fprintf(out, "%s %s\n", date, strings.Join(r, " "))
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.InfoContext(ctx, "replayed",
		logger.F("builder", b.Name()),
		logger.F("candles", len(candles)),
		logger.F("primitives", b.Len()))
	return nil
}
