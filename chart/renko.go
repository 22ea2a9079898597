package chart

import (
	"fmt"
	"math"
)

// RenkoBrick is one fixed-size brick. Index is the position of the candle
// that completed it; several bricks may share an index.
type RenkoBrick struct {
	Index     int       `json:"index"`
	Price     float64   `json:"price"`
	Direction Direction `json:"direction"`
	Low       float64   `json:"low"`
	High      float64   `json:"high"`
}

// RenkoBuilder emits a brick for every full brickSize move of the close
// away from the last brick price.
type RenkoBuilder struct {
	brickSize float64

	n       int
	current float64
	bricks  []RenkoBrick
	err     error
}

// NewRenko returns a streaming Renko builder.
func NewRenko(brickSize float64) (*RenkoBuilder, error) {
	if err := positive("brick size", brickSize); err != nil {
		return nil, err
	}
	return &RenkoBuilder{brickSize: brickSize}, nil
}

func (b *RenkoBuilder) Name() string { return fmt.Sprintf("Renko(%g)", b.brickSize) }

func (b *RenkoBuilder) Reset() {
	b.n = 0
	b.current = 0
	b.bricks = nil
	b.err = nil
}

func (b *RenkoBuilder) Update(c Candle) {
	if b.err != nil {
		return
	}
	idx := b.n
	b.n++
	if idx == 0 {
		b.current = c.Close
		return
	}

	diff := c.Close - b.current
	if math.Abs(diff) < b.brickSize {
		return
	}

	dir := sign(diff)
	steps := math.Floor(math.Abs(diff) / b.brickSize)
	step := b.brickSize * float64(dir)
	if steps > MaxSteps {
		b.fail(idx, c.Close)
		return
	}
	for i := 0; i < int(steps); i++ {
		next := b.current + step
		if next == b.current {
			b.fail(idx, c.Close)
			return
		}
		b.current = next
		brick := RenkoBrick{
			Index:     idx,
			Price:     b.current,
			Direction: dir,
			Low:       b.current,
			High:      b.current + b.brickSize,
		}
		if dir == Down {
			brick.Low = b.current - b.brickSize
			brick.High = b.current
		}
		b.bricks = append(b.bricks, brick)
	}
}

func (b *RenkoBuilder) fail(idx int, to float64) {
	b.err = &StepError{Index: idx, Name: "brick size", Size: b.brickSize, From: b.current, To: to}
}

// Err reports why the builder stopped accepting candles.
func (b *RenkoBuilder) Err() error { return b.err }

func (b *RenkoBuilder) Len() int { return len(b.bricks) }

// Bricks returns the bricks emitted so far.
func (b *RenkoBuilder) Bricks() []RenkoBrick { return b.bricks }

func (b *RenkoBuilder) Series() Series { return Series{Kind: KindRenko, Renko: b.bricks} }

// Renko converts candles into Renko bricks of the given size.
func Renko(candles []Candle, brickSize float64) ([]RenkoBrick, error) {
	b, err := NewRenko(brickSize)
	if err != nil {
		return nil, err
	}
	if err := prepare(candles); err != nil {
		return nil, err
	}
	if err := fold(b, candles); err != nil {
		return nil, err
	}
	return b.Bricks(), nil
}
