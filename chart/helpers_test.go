package chart

import (
	"math/rand"
	"time"
)

var day0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// closes builds flat candles whose open, high, low and close are all x.
func closes(xs ...float64) []Candle {
	out := make([]Candle, len(xs))
	for i, x := range xs {
		out[i] = Candle{
			Time:  day0.AddDate(0, 0, i),
			Open:  x,
			High:  x,
			Low:   x,
			Close: x,
		}
	}
	return out
}

// walk returns n candles following a seeded random walk around 100.
func walk(seed int64, n int) []Candle {
	r := rand.New(rand.NewSource(seed))
	out := make([]Candle, n)
	price := 100.0
	for i := range out {
		open := price
		price += r.Float64()*6 - 3
		hi := max(open, price) + r.Float64()
		lo := min(open, price) - r.Float64()
		out[i] = Candle{
			Time:   day0.AddDate(0, 0, i),
			Open:   open,
			High:   hi,
			Low:    lo,
			Close:  price,
			Volume: float64(r.Intn(1000)),
		}
	}
	return out
}

func clone(c []Candle) []Candle {
	return append([]Candle(nil), c...)
}
