package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rustyeddy/altchart/chart"
	"github.com/rustyeddy/altchart/feed"
	"github.com/rustyeddy/altchart/internal/id"
	"github.com/rustyeddy/altchart/internal/logger"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-render a chart whenever the market feed reports activity",
	Long: `Watch renders the chart once, then subscribes to the live market feed and
renders again after events for the ticker arrive. Bursts of events within
the debounce window trigger a single refresh.

Examples:
  altchart watch --ticker BTC-USD --kind renko
  altchart watch --ticker ETH-USD --kind kagi --event-types price_change,execution --debounce 5s`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

var (
	wFlags      chartFlags
	wFeedURL    string
	wEventTypes []string
	wDebounce   time.Duration
)

func init() {
	rootCmd.AddCommand(watchCmd)
	wFlags.register(watchCmd)
	watchCmd.Flags().StringVar(&wFeedURL, "feed-url", "", "market feed WebSocket URL (default from config)")
	watchCmd.Flags().StringSliceVar(&wEventTypes, "event-types", nil, "event types that trigger a refresh (default from config; empty matches all)")
	watchCmd.Flags().DurationVar(&wDebounce, "debounce", 0, "minimum delay between refreshes (default from config)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	wFlags.apply(cmd, cfg)
	fl := cmd.Flags()
	if fl.Changed("feed-url") {
		cfg.Feed.URL = wFeedURL
	}
	if fl.Changed("event-types") {
		cfg.Feed.EventTypes = wEventTypes
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	debounce, _ := cfg.Feed.DebounceDuration()
	if fl.Changed("debounce") {
		debounce = wDebounce
	}

	src, closeSrc, err := openSource(cfg)
	if err != nil {
		return err
	}
	defer closeSrc()

	j, err := wFlags.job(cmd, cfg, src)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := feed.NewClient(cfg.Feed.URL)
	client.Log = log
	client.Filter = feed.Filter{Ticker: j.query.Ticker, Types: cfg.Feed.EventTypes}

	w := &watcher{job: j, client: client, debounce: debounce, log: log}
	return w.watch(ctx, cmd)
}

type watcher struct {
	job      *job
	client   *feed.Client
	debounce time.Duration
	log      *logger.Logger
	stats    feed.Stats
}

// render runs the job under a fresh run id. Failures are logged so a
// transient source error does not end the watch.
func (w *watcher) render(ctx context.Context, cmd *cobra.Command) {
	ctx = id.WithRun(ctx, id.New())
	err := w.job.run(ctx, cmd.OutOrStdout(), w.log)
	switch {
	case err == nil:
	case errors.Is(err, chart.ErrEmptyInput):
		w.log.WarnContext(ctx, "nothing to render", logger.F("ticker", w.job.query.Ticker))
	default:
		w.log.ErrorContext(ctx, err, logger.F("ticker", w.job.query.Ticker))
	}
}

func (w *watcher) watch(ctx context.Context, cmd *cobra.Command) error {
	w.render(ctx, cmd)

	sub, err := w.client.Subscribe(ctx)
	if err != nil {
		return err
	}

	var refresh <-chan time.Time
	for {
		select {
		case ev, ok := <-sub.Events():
			if !ok {
				if err := sub.Err(); err != nil {
					return err
				}
				if ctx.Err() != nil {
					w.log.Info("watch stopped",
						logger.F("events", w.stats.Total),
						logger.F("positive", w.stats.Positive),
						logger.F("negative", w.stats.Negative))
					return nil
				}
				return feed.ErrClosed
			}
			w.stats.Add(ev)
			w.log.Debug("feed event",
				logger.F("id", ev.ID),
				logger.F("type", ev.Type),
				logger.F("variation", ev.Variation))
			if refresh == nil {
				refresh = time.After(w.debounce)
			}
		case <-refresh:
			refresh = nil
			w.render(ctx, cmd)
		}
	}
}
