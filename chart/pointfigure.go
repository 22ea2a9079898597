package chart

import (
	"fmt"
	"math"
)

// MarkType is the symbol of a Point & Figure box.
type MarkType byte

const (
	X MarkType = 'X'
	O MarkType = 'O'
)

func (m MarkType) String() string { return string(m) }

func (m MarkType) MarshalText() ([]byte, error) {
	return []byte{byte(m)}, nil
}

func (m *MarkType) UnmarshalText(b []byte) error {
	if len(b) != 1 || (b[0] != 'X' && b[0] != 'O') {
		return fmt.Errorf("unknown mark type %q", b)
	}
	*m = MarkType(b[0])
	return nil
}

// PointFigureMark is one box in a Point & Figure column. Index is the
// position of the candle that produced it.
type PointFigureMark struct {
	Column int      `json:"column"`
	Price  float64  `json:"price"`
	Type   MarkType `json:"type"`
	Index  int      `json:"index"`
}

// PointFigureOptions tunes price rounding. With Precision 0 prices are
// rounded to whole units, which flattens assets priced below 1.0; a
// Precision of n rounds to 10^-n units instead.
type PointFigureOptions struct {
	Precision int
}

// PointFigureBuilder stacks X boxes while prices rise and O boxes while
// they fall, starting a new column on every reversal.
type PointFigureBuilder struct {
	box   float64
	boxes int
	scale float64

	n       int
	column  int
	dir     Direction // 0 until the first candle assigns it
	current float64
	marks   []PointFigureMark
	err     error
}

// MaxPrecision is the largest rounding precision a float64 price can
// still honour.
const MaxPrecision = 15

func checkPrecision(p int) error {
	if p < 0 || p > MaxPrecision {
		return &ParamError{Name: "precision", Value: float64(p), Reason: fmt.Sprintf("must be between 0 and %d", MaxPrecision)}
	}
	return nil
}

// NewPointFigure returns a streaming Point & Figure builder that rounds to
// whole price units.
func NewPointFigure(boxSize float64, reversalBoxes int) (*PointFigureBuilder, error) {
	return NewPointFigureWithOptions(boxSize, reversalBoxes, PointFigureOptions{})
}

func NewPointFigureWithOptions(boxSize float64, reversalBoxes int, opts PointFigureOptions) (*PointFigureBuilder, error) {
	if err := positive("box size", boxSize); err != nil {
		return nil, err
	}
	if err := positive("reversal boxes", float64(reversalBoxes)); err != nil {
		return nil, err
	}
	if err := checkPrecision(opts.Precision); err != nil {
		return nil, err
	}
	return &PointFigureBuilder{
		box:   boxSize,
		boxes: reversalBoxes,
		scale: math.Pow10(opts.Precision),
	}, nil
}

func (b *PointFigureBuilder) Name() string {
	return fmt.Sprintf("PointFigure(%g,%d)", b.box, b.boxes)
}

func (b *PointFigureBuilder) Reset() {
	b.n = 0
	b.column = 0
	b.dir = 0
	b.current = 0
	b.marks = nil
	b.err = nil
}

// round matches the usual "halves go up" rule: 2.5 -> 3, -2.5 -> -2.
func (b *PointFigureBuilder) round(x float64) float64 {
	return math.Floor(x*b.scale+0.5) / b.scale
}

func (b *PointFigureBuilder) Update(c Candle) {
	if b.err != nil {
		return
	}
	idx := b.n
	b.n++
	price := b.round(c.Close)
	if idx == 0 {
		b.current = price
	}

	if b.dir == 0 {
		b.dir = sign(price - b.current)
		b.column++
	}

	reversal := b.box * float64(b.boxes)
	switch {
	case b.dir == Up && price >= b.current+b.box:
		b.walk(idx, price, b.box, X)
	case b.dir == Down && price <= b.current-b.box:
		b.walk(idx, price, -b.box, O)
	case (b.dir == Up && price <= b.current-reversal) ||
		(b.dir == Down && price >= b.current+reversal):
		b.dir = -b.dir
		b.column++
		b.current = price
	}
}

// walk steps current towards price one box at a time, emitting a mark per
// box. Moves needing more than MaxSteps boxes, or boxes too small to change
// current, stop the builder with a *StepError.
func (b *PointFigureBuilder) walk(idx int, price, step float64, t MarkType) {
	if (price-b.current)/step > MaxSteps+1 {
		b.fail(idx, price)
		return
	}
	for (step > 0 && price >= b.current+step) || (step < 0 && price <= b.current+step) {
		next := b.current + step
		if next == b.current {
			b.fail(idx, price)
			return
		}
		b.current = next
		b.emit(idx, t)
	}
}

func (b *PointFigureBuilder) fail(idx int, to float64) {
	b.err = &StepError{Index: idx, Name: "box size", Size: b.box, From: b.current, To: to}
}

// Err reports why the builder stopped accepting candles.
func (b *PointFigureBuilder) Err() error { return b.err }

func (b *PointFigureBuilder) emit(idx int, t MarkType) {
	b.marks = append(b.marks, PointFigureMark{
		Column: b.column,
		Price:  b.current,
		Type:   t,
		Index:  idx,
	})
}

func (b *PointFigureBuilder) Len() int { return len(b.marks) }

// Marks returns the marks emitted so far.
func (b *PointFigureBuilder) Marks() []PointFigureMark { return b.marks }

func (b *PointFigureBuilder) Series() Series {
	return Series{Kind: KindPointFigure, PointFigure: b.marks}
}

// PointFigure converts candle closes, rounded to whole units, into Point &
// Figure marks.
func PointFigure(candles []Candle, boxSize float64, reversalBoxes int) ([]PointFigureMark, error) {
	return PointFigureWithOptions(candles, boxSize, reversalBoxes, PointFigureOptions{})
}

func PointFigureWithOptions(candles []Candle, boxSize float64, reversalBoxes int, opts PointFigureOptions) ([]PointFigureMark, error) {
	b, err := NewPointFigureWithOptions(boxSize, reversalBoxes, opts)
	if err != nil {
		return nil, err
	}
	if err := prepare(candles); err != nil {
		return nil, err
	}
	if err := fold(b, candles); err != nil {
		return nil, err
	}
	return b.Marks(), nil
}
