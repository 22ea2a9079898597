package chart

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCandleJSONNullPrices(t *testing.T) {
	var c Candle
	err := json.Unmarshal([]byte(`{"date":"2024-03-01","open":1,"high":2,"low":0.5,"close":null,"volume":null}`), &c)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), c.Time)
	assert.True(t, math.IsNaN(c.Close))
	assert.Equal(t, 0.0, c.Volume)

	err = Validate([]Candle{c})
	var ce *CandleError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "close", ce.Field)
	assert.Equal(t, 0, ce.Index)
}

func TestCandleJSONRoundTripDates(t *testing.T) {
	in := []Candle{
		{Time: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Open: 1, High: 2, Low: 1, Close: 2, Volume: 10},
		{Time: time.Date(2024, 3, 1, 15, 30, 0, 0, time.UTC), Open: 2, High: 3, Low: 2, Close: 3},
	}
	b, err := json.Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"date":"2024-03-01"`)
	assert.Contains(t, string(b), `"date":"2024-03-01T15:30:00Z"`)

	var out []Candle
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, in, out)
}

func TestParseDate(t *testing.T) {
	_, err := ParseDate("01/02/2024")
	assert.Error(t, err)

	tm, err := ParseDate("")
	require.NoError(t, err)
	assert.True(t, tm.IsZero())
	assert.Equal(t, "", FormatDate(tm))
}

func TestValidateAndClean(t *testing.T) {
	candles := closes(1, 2, 3, 4)
	candles[1].Volume = math.Inf(1)
	candles[3].High = 3
	candles[3].Low = 5

	err := Validate(candles)
	require.ErrorIs(t, err, ErrInvalidCandle)
	assert.Contains(t, err.Error(), "candle 1: bad volume")

	cleaned := Clean(candles)
	require.Len(t, cleaned, 2)
	assert.Equal(t, 1.0, cleaned[0].Close)
	assert.Equal(t, 3.0, cleaned[1].Close)
	assert.Len(t, candles, 4)

	assert.NoError(t, Validate(nil))
}

func TestDirectionText(t *testing.T) {
	b, err := json.Marshal(KagiPoint{Index: 1, Price: 2, Trend: Down})
	require.NoError(t, err)
	assert.JSONEq(t, `{"index":1,"price":2,"trend":"down"}`, string(b))

	var d Direction
	require.NoError(t, d.UnmarshalText([]byte("up")))
	assert.Equal(t, Up, d)
	assert.Error(t, d.UnmarshalText([]byte("sideways")))
	assert.Equal(t, "Direction(0)", Direction(0).String())
}
