package chart

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParameter is returned for a non-positive brick size,
	// reversal amount, box size, reversal box count or range size.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrInvalidCandle is returned when an input row carries NaN or infinite
	// values, or a high below its low.
	ErrInvalidCandle = errors.New("invalid candle")

	// ErrEmptyInput marks a zero-length candle sequence. The builders return
	// an empty result instead of this error; callers use it to signal
	// "nothing to render".
	ErrEmptyInput = errors.New("empty input")
)

// MaxSteps bounds the bricks or boxes a single candle may emit.
const MaxSteps = 1 << 20

// ParamError describes a rejected transformation parameter.
type ParamError struct {
	Name  string
	Value float64
	// Reason defaults to "must be positive".
	Reason string
}

func (e *ParamError) Error() string {
	reason := e.Reason
	if reason == "" {
		reason = "must be positive"
	}
	return fmt.Sprintf("%s %s, got %g", e.Name, reason, e.Value)
}

func (e *ParamError) Unwrap() error { return ErrInvalidParameter }

// CandleError describes the first rejected input row.
type CandleError struct {
	Index int
	Field string
	Value float64
}

func (e *CandleError) Error() string {
	return fmt.Sprintf("candle %d: bad %s %g", e.Index, e.Field, e.Value)
}

func (e *CandleError) Unwrap() error { return ErrInvalidCandle }

// StepError reports a candle whose move cannot be walked in steps of Size:
// it needs more than MaxSteps steps, or Size is below the float resolution
// of the price so a step changes nothing.
type StepError struct {
	Index int
	Name  string
	Size  float64
	From  float64
	To    float64
}

func (e *StepError) Error() string {
	return fmt.Sprintf("candle %d: %s %g cannot step from %g to %g", e.Index, e.Name, e.Size, e.From, e.To)
}

func (e *StepError) Unwrap() error { return ErrInvalidParameter }

func positive(name string, v float64) error {
	// written as !(v > 0) so that NaN is rejected too
	if !(v > 0) {
		return &ParamError{Name: name, Value: v}
	}
	return nil
}
