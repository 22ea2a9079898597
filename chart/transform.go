package chart

import (
	"fmt"
	"strings"
)

// Kind selects one of the alternative chart representations.
type Kind string

const (
	KindRenko       Kind = "renko"
	KindKagi        Kind = "kagi"
	KindPointFigure Kind = "pnf"
	KindRange       Kind = "range"
)

// Kinds lists every supported kind in display order.
var Kinds = []Kind{KindRenko, KindKagi, KindPointFigure, KindRange}

// ParseKind accepts the canonical names plus a few common aliases.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "renko":
		return KindRenko, nil
	case "kagi":
		return KindKagi, nil
	case "pnf", "point_figure", "point-figure", "pointfigure", "p&f":
		return KindPointFigure, nil
	case "range", "range_bars", "rangebars", "range-bars":
		return KindRange, nil
	default:
		return "", fmt.Errorf("unknown chart kind %q (want renko, kagi, pnf or range)", s)
	}
}

// Params carries the parameters of every transformation; each kind reads
// only its own fields.
type Params struct {
	BrickSize      float64 `json:"brick_size" yaml:"brick_size"`
	ReversalAmount float64 `json:"reversal_amount" yaml:"reversal_amount"`
	BoxSize        float64 `json:"box_size" yaml:"box_size"`
	ReversalBoxes  int     `json:"reversal_boxes" yaml:"reversal_boxes"`
	RangeSize      float64 `json:"range_size" yaml:"range_size"`

	// Precision is the Point & Figure rounding precision in decimal places.
	Precision int `json:"precision,omitempty" yaml:"precision,omitempty"`
	// FlushPartial keeps a trailing incomplete range bar.
	FlushPartial bool `json:"flush_partial,omitempty" yaml:"flush_partial,omitempty"`
}

// DefaultParams returns the parameters the dashboard charts use.
func DefaultParams() Params {
	return Params{
		BrickSize:      2,
		ReversalAmount: 3,
		BoxSize:        1,
		ReversalBoxes:  3,
		RangeSize:      2,
	}
}

// Validate checks only the parameters kind needs.
func (p Params) Validate(kind Kind) error {
	switch kind {
	case KindRenko:
		return positive("brick size", p.BrickSize)
	case KindKagi:
		return positive("reversal amount", p.ReversalAmount)
	case KindPointFigure:
		if err := positive("box size", p.BoxSize); err != nil {
			return err
		}
		if err := positive("reversal boxes", float64(p.ReversalBoxes)); err != nil {
			return err
		}
		return checkPrecision(p.Precision)
	case KindRange:
		return positive("range size", p.RangeSize)
	default:
		return fmt.Errorf("unknown chart kind %q", kind)
	}
}

// Series is the output of Transform. Exactly the slice matching Kind is set.
type Series struct {
	Kind        Kind              `json:"kind"`
	Renko       []RenkoBrick      `json:"renko,omitempty"`
	Kagi        []KagiPoint       `json:"kagi,omitempty"`
	PointFigure []PointFigureMark `json:"point_figure,omitempty"`
	Range       []RangeBar        `json:"range,omitempty"`
}

// Len returns the number of primitives in the series.
func (s Series) Len() int {
	switch s.Kind {
	case KindRenko:
		return len(s.Renko)
	case KindKagi:
		return len(s.Kagi)
	case KindPointFigure:
		return len(s.PointFigure)
	case KindRange:
		return len(s.Range)
	}
	return 0
}

// Tail keeps the most recent n primitives. n <= 0 keeps everything.
func (s Series) Tail(n int) Series {
	s.Renko = Tail(s.Renko, n)
	s.Kagi = Tail(s.Kagi, n)
	s.PointFigure = Tail(s.PointFigure, n)
	s.Range = Tail(s.Range, n)
	return s
}

// Since drops the first n primitives, leaving those emitted after the
// series had n.
func (s Series) Since(n int) Series {
	s.Renko = since(s.Renko, n)
	s.Kagi = since(s.Kagi, n)
	s.PointFigure = since(s.PointFigure, n)
	s.Range = since(s.Range, n)
	return s
}

func since[T any](s []T, n int) []T {
	if n >= len(s) {
		return nil
	}
	return s[max(n, 0):]
}

// NewBuilder returns the streaming builder for kind. Range builders never
// flush; the trailing bar is available from RangeBarBuilder.Partial.
func NewBuilder(kind Kind, p Params) (Builder, error) {
	if err := p.Validate(kind); err != nil {
		return nil, err
	}
	switch kind {
	case KindRenko:
		return &RenkoBuilder{brickSize: p.BrickSize}, nil
	case KindKagi:
		return &KagiBuilder{reversal: p.ReversalAmount, trend: Up}, nil
	case KindPointFigure:
		b, _ := NewPointFigureWithOptions(p.BoxSize, p.ReversalBoxes, PointFigureOptions{Precision: p.Precision})
		return b, nil
	default:
		return &RangeBarBuilder{size: p.RangeSize}, nil
	}
}

// Transformer turns candles into a derived series.
type Transformer interface {
	Transform(candles []Candle) (Series, error)
}

// TransformerFunc adapts a function to Transformer.
type TransformerFunc func(candles []Candle) (Series, error)

func (f TransformerFunc) Transform(candles []Candle) (Series, error) { return f(candles) }

// New binds kind and params into a Transformer. Parameters are checked
// once here and again on every call.
func New(kind Kind, p Params) (Transformer, error) {
	if err := p.Validate(kind); err != nil {
		return nil, err
	}
	return TransformerFunc(func(candles []Candle) (Series, error) {
		return Transform(kind, candles, p)
	}), nil
}

// Transform runs the builder selected by kind over candles.
func Transform(kind Kind, candles []Candle, p Params) (Series, error) {
	s := Series{Kind: kind}
	var err error
	switch kind {
	case KindRenko:
		s.Renko, err = Renko(candles, p.BrickSize)
	case KindKagi:
		s.Kagi, err = Kagi(candles, p.ReversalAmount)
	case KindPointFigure:
		s.PointFigure, err = PointFigureWithOptions(candles, p.BoxSize, p.ReversalBoxes,
			PointFigureOptions{Precision: p.Precision})
	case KindRange:
		s.Range, err = RangeBarsWithOptions(candles, p.RangeSize,
			RangeBarOptions{Flush: p.FlushPartial})
	default:
		err = fmt.Errorf("unknown chart kind %q", kind)
	}
	if err != nil {
		return Series{}, fmt.Errorf("%s: %w", kind, err)
	}
	return s, nil
}

// Tail returns the last n elements of s, or s itself when n <= 0 or s is
// shorter than n. Display truncation belongs to callers; the builders never
// truncate.
func Tail[T any](s []T, n int) []T {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
