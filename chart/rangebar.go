package chart

import "fmt"

// RangeBar aggregates consecutive candles until its high-low span reaches
// the range size. Index is the position of the first absorbed candle and
// Count the number of candles absorbed.
type RangeBar struct {
	Index int     `json:"index"`
	Open  float64 `json:"open"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`
	Count int     `json:"count"`
}

// RangeBarOptions controls what happens to a bar still open at the end of
// input. By default it is dropped.
type RangeBarOptions struct {
	Flush bool
}

// RangeBarBuilder accumulates candles into a working bar.
type RangeBarBuilder struct {
	size float64

	n       int
	working *RangeBar
	bars    []RangeBar
}

// NewRangeBars returns a streaming range bar builder.
func NewRangeBars(rangeSize float64) (*RangeBarBuilder, error) {
	if err := positive("range size", rangeSize); err != nil {
		return nil, err
	}
	return &RangeBarBuilder{size: rangeSize}, nil
}

func (b *RangeBarBuilder) Name() string { return fmt.Sprintf("RangeBars(%g)", b.size) }

func (b *RangeBarBuilder) Reset() {
	b.n = 0
	b.working = nil
	b.bars = nil
}

func (b *RangeBarBuilder) Update(c Candle) {
	idx := b.n
	b.n++

	if b.working == nil {
		b.working = &RangeBar{
			Index: idx,
			Open:  c.Open,
			High:  c.High,
			Low:   c.Low,
		}
	}

	w := b.working
	w.High = max(w.High, c.High)
	w.Low = min(w.Low, c.Low)
	w.Close = c.Close
	w.Count++

	if w.High-w.Low >= b.size {
		b.bars = append(b.bars, *w)
		b.working = nil
	}
}

// Err is always nil; every finite candle folds.
func (b *RangeBarBuilder) Err() error { return nil }

func (b *RangeBarBuilder) Len() int { return len(b.bars) }

// Bars returns the completed bars.
func (b *RangeBarBuilder) Bars() []RangeBar { return b.bars }

// Series holds the completed bars only.
func (b *RangeBarBuilder) Series() Series { return Series{Kind: KindRange, Range: b.bars} }

// Partial returns the bar still being accumulated, if any.
func (b *RangeBarBuilder) Partial() (RangeBar, bool) {
	if b.working == nil {
		return RangeBar{}, false
	}
	return *b.working, true
}

// RangeBars converts candles into range bars. A bar still open at the end
// of input is discarded.
func RangeBars(candles []Candle, rangeSize float64) ([]RangeBar, error) {
	return RangeBarsWithOptions(candles, rangeSize, RangeBarOptions{})
}

func RangeBarsWithOptions(candles []Candle, rangeSize float64, opts RangeBarOptions) ([]RangeBar, error) {
	b, err := NewRangeBars(rangeSize)
	if err != nil {
		return nil, err
	}
	if err := prepare(candles); err != nil {
		return nil, err
	}
	if err := fold(b, candles); err != nil {
		return nil, err
	}

	bars := b.Bars()
	if p, ok := b.Partial(); ok && opts.Flush {
		bars = append(bars, p)
	}
	return bars, nil
}
