// Package replay streams candles through a chart builder one at a time so
// callers can watch primitives form as the market moved.
package replay

import (
	"context"
	"time"

	"github.com/rustyeddy/altchart/chart"
)

// Options controls how a replay behaves.
type Options struct {
	// Delay pauses between candles. Zero replays as fast as possible.
	Delay time.Duration

	// SkipQuiet suppresses steps for candles that emitted nothing.
	SkipQuiet bool
}

// Step is the outcome of feeding one candle.
type Step struct {
	Index  int
	Candle chart.Candle
	// Added holds the primitives this candle emitted.
	Added chart.Series
	// Total is the builder length after the candle.
	Total int
}

// Candles resets b and feeds it candles in order, calling fn after each
// one. Candles are validated up front so a bad row fails before anything
// is emitted. Replay stops early when ctx is done, the builder fails, or
// fn returns an error.
func Candles(ctx context.Context, candles []chart.Candle, b chart.Builder, opts Options, fn func(Step) error) error {
	if err := chart.Validate(candles); err != nil {
		return err
	}
	b.Reset()

	var timer *time.Timer
	if opts.Delay > 0 {
		timer = time.NewTimer(opts.Delay)
		defer timer.Stop()
	}

	for i, c := range candles {
		if err := ctx.Err(); err != nil {
			return err
		}
		if timer != nil && i > 0 {
			timer.Reset(opts.Delay)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-timer.C:
			}
		}

		before := b.Len()
		b.Update(c)
		if err := b.Err(); err != nil {
			return err
		}

		step := Step{
			Index:  i,
			Candle: c,
			Added:  b.Series().Since(before),
			Total:  b.Len(),
		}
		if opts.SkipQuiet && step.Added.Len() == 0 {
			continue
		}
		if err := fn(step); err != nil {
			return err
		}
	}
	return nil
}
