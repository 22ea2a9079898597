package chart

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Candle represents one OHLCV bar. Candles are consumed in chronological
// order; a candle has no identity beyond its position in the input.
type Candle struct {
	Time time.Time

	Open  float64
	High  float64
	Low   float64
	Close float64

	Volume float64
}

type candleJSON struct {
	Date   string   `json:"date"`
	Open   *float64 `json:"open"`
	High   *float64 `json:"high"`
	Low    *float64 `json:"low"`
	Close  *float64 `json:"close"`
	Volume *float64 `json:"volume"`
}

// MarshalJSON writes the candle in the {date, open, high, low, close, volume}
// shape served by the analytics API. Midnight UTC timestamps are written as
// plain dates.
func (c Candle) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Date   string  `json:"date"`
		Open   float64 `json:"open"`
		High   float64 `json:"high"`
		Low    float64 `json:"low"`
		Close  float64 `json:"close"`
		Volume float64 `json:"volume"`
	}{
		Date:   FormatDate(c.Time),
		Open:   c.Open,
		High:   c.High,
		Low:    c.Low,
		Close:  c.Close,
		Volume: c.Volume,
	})
}

// UnmarshalJSON accepts a plain date or an RFC3339 timestamp. A null price
// decodes to NaN so that Validate rejects the row; a null volume decodes to 0.
func (c *Candle) UnmarshalJSON(b []byte) error {
	var aux candleJSON
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}

	t, err := ParseDate(aux.Date)
	if err != nil {
		return err
	}

	*c = Candle{
		Time:   t,
		Open:   orNaN(aux.Open),
		High:   orNaN(aux.High),
		Low:    orNaN(aux.Low),
		Close:  orNaN(aux.Close),
		Volume: orZero(aux.Volume),
	}
	return nil
}

// ParseDate parses "2006-01-02" or RFC3339 (with or without fractional
// seconds). An empty string yields the zero time.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.ParseInLocation(dateLayout, s, time.UTC); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad date %q: %w", s, err)
	}
	return t.UTC(), nil
}

// FormatDate is the inverse of ParseDate.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	u := t.UTC()
	if u.Hour() == 0 && u.Minute() == 0 && u.Second() == 0 && u.Nanosecond() == 0 {
		return u.Format(dateLayout)
	}
	return u.Format(time.RFC3339)
}

func orNaN(p *float64) float64 {
	if p == nil {
		return math.NaN()
	}
	return *p
}

func orZero(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
