package chart

import "fmt"

// KagiPoint is emitted when the line extends to a new extreme or reverses.
type KagiPoint struct {
	Index int       `json:"index"`
	Price float64   `json:"price"`
	Trend Direction `json:"trend"`
}

// KagiBuilder tracks the running high and low of the current line and
// flips its trend once the close moves more than reversalAmount against it.
type KagiBuilder struct {
	reversal float64

	n      int
	trend  Direction
	lastHi float64
	lastLo float64
	points []KagiPoint
}

// NewKagi returns a streaming Kagi builder.
func NewKagi(reversalAmount float64) (*KagiBuilder, error) {
	if err := positive("reversal amount", reversalAmount); err != nil {
		return nil, err
	}
	return &KagiBuilder{reversal: reversalAmount, trend: Up}, nil
}

func (b *KagiBuilder) Name() string { return fmt.Sprintf("Kagi(%g)", b.reversal) }

func (b *KagiBuilder) Reset() {
	b.n = 0
	b.trend = Up
	b.lastHi = 0
	b.lastLo = 0
	b.points = nil
}

func (b *KagiBuilder) Update(c Candle) {
	idx := b.n
	b.n++
	price := c.Close
	if idx == 0 {
		b.lastHi = price
		b.lastLo = price
		return
	}

	switch b.trend {
	case Up:
		if price > b.lastHi {
			b.lastHi = price
			b.emit(idx, price)
		} else if price < b.lastHi-b.reversal {
			b.trend = Down
			b.lastLo = price
			b.emit(idx, price)
		}
	case Down:
		if price < b.lastLo {
			b.lastLo = price
			b.emit(idx, price)
		} else if price > b.lastLo+b.reversal {
			b.trend = Up
			b.lastHi = price
			b.emit(idx, price)
		}
	}
}

func (b *KagiBuilder) emit(idx int, price float64) {
	b.points = append(b.points, KagiPoint{Index: idx, Price: price, Trend: b.trend})
}

// Err is always nil; every finite candle folds.
func (b *KagiBuilder) Err() error { return nil }

func (b *KagiBuilder) Len() int { return len(b.points) }

// Points returns the points emitted so far.
func (b *KagiBuilder) Points() []KagiPoint { return b.points }

func (b *KagiBuilder) Series() Series { return Series{Kind: KindKagi, Kagi: b.points} }

// Kagi converts candle closes into Kagi line points. A move of exactly
// reversalAmount does not reverse the line.
func Kagi(candles []Candle, reversalAmount float64) ([]KagiPoint, error) {
	b, err := NewKagi(reversalAmount)
	if err != nil {
		return nil, err
	}
	if err := prepare(candles); err != nil {
		return nil, err
	}
	if err := fold(b, candles); err != nil {
		return nil, err
	}
	return b.Points(), nil
}
