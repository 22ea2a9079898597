// Package chart converts OHLC candles into alternative chart series:
// Renko bricks, Kagi lines, Point & Figure marks and range bars.
package chart

import "fmt"

// Builder folds candles into a derived series one candle at a time.
// Builders are deterministic: feeding the same candles after Reset yields
// the same series. A Builder is not safe for concurrent use.
type Builder interface {
	// Name returns a stable identifier like "Renko(2)" or "Kagi(3)".
	Name() string

	// Reset clears all internal state and the emitted series.
	Reset()

	// Update consumes the next candle in chronological order.
	Update(c Candle)

	// Len reports how many primitives have been emitted so far.
	Len() int

	// Err is non-nil once a candle could not be folded; later updates are
	// ignored until Reset.
	Err() error

	// Series returns everything emitted so far. The slices are shared with
	// the builder and must not be modified.
	Series() Series
}

// Direction is the trend of a brick or line segment.
type Direction int8

const (
	Up   Direction = 1
	Down Direction = -1
)

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return fmt.Sprintf("Direction(%d)", int8(d))
	}
}

func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Direction) UnmarshalText(b []byte) error {
	switch string(b) {
	case "up":
		*d = Up
	case "down":
		*d = Down
	default:
		return fmt.Errorf("unknown direction %q", b)
	}
	return nil
}

func sign(x float64) Direction {
	if x > 0 {
		return Up
	}
	return Down
}

// fold runs every candle through b and stops at the first builder error.
func fold(b Builder, candles []Candle) error {
	for _, c := range candles {
		b.Update(c)
		if err := b.Err(); err != nil {
			return err
		}
	}
	return nil
}
