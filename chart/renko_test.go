package chart

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenkoScenario(t *testing.T) {
	bricks, err := Renko(closes(100, 103, 108), 2)
	require.NoError(t, err)
	require.Len(t, bricks, 4)

	want := []float64{102, 104, 106, 108}
	for i, b := range bricks {
		assert.Equal(t, want[i], b.Price)
		assert.Equal(t, Up, b.Direction)
		assert.Equal(t, b.Price, b.Low)
		assert.Equal(t, b.Price+2, b.High)
	}
	assert.Equal(t, 1, bricks[0].Index)
	assert.Equal(t, 2, bricks[1].Index)
	assert.Equal(t, 2, bricks[3].Index)
}

func TestRenkoDownBricks(t *testing.T) {
	bricks, err := Renko(closes(100, 95), 2)
	require.NoError(t, err)

	assert.Equal(t, []RenkoBrick{
		{Index: 1, Price: 98, Direction: Down, Low: 96, High: 98},
		{Index: 1, Price: 96, Direction: Down, Low: 94, High: 96},
	}, bricks)
}

func TestRenkoExactBrickSizeEmits(t *testing.T) {
	bricks, err := Renko(closes(100, 102, 103), 2)
	require.NoError(t, err)
	require.Len(t, bricks, 1)
	assert.Equal(t, 102.0, bricks[0].Price)
}

func TestRenkoMonotonicCount(t *testing.T) {
	tests := []struct {
		name  string
		from  float64
		to    float64
		brick float64
	}{
		{"unit steps, brick 3", 10, 30, 3},
		{"unit steps, brick 2.5", 0, 10, 2.5},
		{"unit steps, brick 1", 50, 60, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var xs []float64
			for x := tt.from; x <= tt.to; x++ {
				xs = append(xs, x)
			}
			bricks, err := Renko(closes(xs...), tt.brick)
			require.NoError(t, err)
			assert.Len(t, bricks, int(math.Floor((tt.to-tt.from)/tt.brick)))
			for _, b := range bricks {
				assert.Equal(t, Up, b.Direction)
			}
		})
	}
}

func TestRenkoInvalidBrickSize(t *testing.T) {
	for _, size := range []float64{0, -2, math.NaN()} {
		_, err := Renko(closes(1, 2, 3), size)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidParameter))

		var pe *ParamError
		require.True(t, errors.As(err, &pe))
		assert.Equal(t, "brick size", pe.Name)
	}
}

func TestRenkoEmptyInput(t *testing.T) {
	bricks, err := Renko(nil, 2)
	assert.NoError(t, err)
	assert.Empty(t, bricks)

	_, err = Renko(nil, 0)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestRenkoRejectsNaN(t *testing.T) {
	candles := closes(100, 101, 102)
	candles[2].Close = math.NaN()

	_, err := Renko(candles, 1)
	require.ErrorIs(t, err, ErrInvalidCandle)

	var ce *CandleError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 2, ce.Index)
	assert.Equal(t, "close", ce.Field)
}

func TestRenkoPureAndStreaming(t *testing.T) {
	candles := walk(7, 200)
	orig := clone(candles)

	a, err := Renko(candles, 1.5)
	require.NoError(t, err)
	b, err := Renko(candles, 1.5)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, orig, candles)

	// the streaming builder gives the same bricks, also after Reset
	rb, err := NewRenko(1.5)
	require.NoError(t, err)
	fold(rb, candles)
	assert.Equal(t, a, rb.Bricks())
	rb.Reset()
	assert.Equal(t, 0, rb.Len())
	fold(rb, candles)
	assert.Equal(t, a, rb.Bricks())
	assert.Equal(t, "Renko(1.5)", rb.Name())

	for i := 1; i < len(a); i++ {
		assert.GreaterOrEqual(t, a[i].Index, a[i-1].Index)
	}
}

func TestRenkoStepLimit(t *testing.T) {
	bricks, err := Renko(closes(0, 1e20), 1)
	require.ErrorIs(t, err, ErrInvalidParameter)
	assert.Nil(t, bricks)
	var se *StepError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 1, se.Index)
	assert.Equal(t, "brick size", se.Name)
	assert.Equal(t, 1e20, se.To)

	_, err = Renko(closes(0, MaxSteps+1), 1)
	assert.ErrorIs(t, err, ErrInvalidParameter)

	bricks, err = Renko(closes(0, 100000), 1)
	require.NoError(t, err)
	assert.Len(t, bricks, 100000)
	assert.Equal(t, 100000.0, bricks[len(bricks)-1].Price)
}

func TestRenkoBrickBelowPriceResolution(t *testing.T) {
	// 1e17 + 4 == 1e17 in float64, so no brick can ever be placed
	_, err := Renko(closes(1e17, 1e17+64), 4)
	var se *StepError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 1e17, se.From)

	b, err := NewRenko(4)
	require.NoError(t, err)
	for _, c := range closes(1e17, 1e17+64, 5, 1) {
		b.Update(c)
	}
	require.ErrorIs(t, b.Err(), ErrInvalidParameter)
	assert.Equal(t, 0, b.Len())

	b.Reset()
	assert.NoError(t, b.Err())
	for _, c := range closes(10, 18) {
		b.Update(c)
	}
	assert.NoError(t, b.Err())
	assert.Equal(t, 2, b.Len())
}
