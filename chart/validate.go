package chart

import "math"

// Validate checks every candle before a fold begins. It returns a
// *CandleError for the first row holding NaN or infinite values, or a high
// below its low.
func Validate(candles []Candle) error {
	for i, c := range candles {
		if err := validateCandle(i, c); err != nil {
			return err
		}
	}
	return nil
}

// Clean returns a copy of candles without the rows Validate would reject.
// The input slice is left untouched.
func Clean(candles []Candle) []Candle {
	out := make([]Candle, 0, len(candles))
	for i, c := range candles {
		if validateCandle(i, c) == nil {
			out = append(out, c)
		}
	}
	return out
}

func validateCandle(i int, c Candle) error {
	fields := [...]struct {
		name string
		v    float64
	}{
		{"open", c.Open},
		{"high", c.High},
		{"low", c.Low},
		{"close", c.Close},
		{"volume", c.Volume},
	}
	for _, f := range fields {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return &CandleError{Index: i, Field: f.name, Value: f.v}
		}
	}
	if c.High < c.Low {
		return &CandleError{Index: i, Field: "high", Value: c.High}
	}
	return nil
}

// prepare runs before every fold. Empty input is not an error.
func prepare(candles []Candle) error {
	if len(candles) == 0 {
		return nil
	}
	return Validate(candles)
}
