package chart

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointFigureColumns(t *testing.T) {
	marks, err := PointFigure(closes(10, 8, 7, 11, 12, 13, 9), 1, 3)
	require.NoError(t, err)

	assert.Equal(t, []PointFigureMark{
		{Column: 1, Price: 9, Type: O, Index: 1},
		{Column: 1, Price: 8, Type: O, Index: 1},
		{Column: 1, Price: 7, Type: O, Index: 2},
		{Column: 2, Price: 12, Type: X, Index: 4},
		{Column: 2, Price: 13, Type: X, Index: 5},
	}, marks)
}

func TestPointFigureReversalEmitsNoMarks(t *testing.T) {
	pb, err := NewPointFigure(1, 3)
	require.NoError(t, err)

	fold(pb, closes(10, 8, 11))
	assert.Equal(t, 2, pb.Len())
	assert.Equal(t, 2, pb.column)
	assert.Equal(t, Up, pb.dir)
	assert.Equal(t, 11.0, pb.current)
}

func TestPointFigureRounding(t *testing.T) {
	// 8.5 rounds up to 9, 8.49 rounds down to 8
	marks, err := PointFigure(closes(10.4, 8.5), 1, 3)
	require.NoError(t, err)
	assert.Equal(t, []PointFigureMark{{Column: 1, Price: 9, Type: O, Index: 1}}, marks)

	marks, err = PointFigure(closes(10.4, 8.49), 1, 3)
	require.NoError(t, err)
	assert.Len(t, marks, 2)

	pb, err := NewPointFigure(1, 3)
	require.NoError(t, err)
	assert.Equal(t, 3.0, pb.round(2.5))
	assert.Equal(t, -2.0, pb.round(-2.5))
}

func TestPointFigureSubUnitPrecision(t *testing.T) {
	candles := closes(1.0, 0.5)

	// whole units: 0.5 rounds to 1 and nothing moves
	marks, err := PointFigure(candles, 0.25, 3)
	require.NoError(t, err)
	assert.Empty(t, marks)

	marks, err = PointFigureWithOptions(candles, 0.25, 3, PointFigureOptions{Precision: 2})
	require.NoError(t, err)
	assert.Equal(t, []PointFigureMark{
		{Column: 1, Price: 0.75, Type: O, Index: 1},
		{Column: 1, Price: 0.5, Type: O, Index: 1},
	}, marks)
}

func TestPointFigureColumnsNonDecreasing(t *testing.T) {
	marks, err := PointFigure(walk(5, 800), 1, 3)
	require.NoError(t, err)
	require.NotEmpty(t, marks)

	for i := 1; i < len(marks); i++ {
		prev, cur := marks[i-1], marks[i]
		assert.GreaterOrEqual(t, cur.Column, prev.Column)
		assert.GreaterOrEqual(t, cur.Index, prev.Index)
		if cur.Column == prev.Column {
			assert.Equal(t, prev.Type, cur.Type, "mark %d", i)
		}
	}
}

func TestPointFigureInvalidParams(t *testing.T) {
	tests := []struct {
		name  string
		box   float64
		boxes int
		opts  PointFigureOptions
		want  string
	}{
		{"zero box", 0, 3, PointFigureOptions{}, "box size"},
		{"negative box", -1, 3, PointFigureOptions{}, "box size"},
		{"zero reversal", 1, 0, PointFigureOptions{}, "reversal boxes"},
		{"negative precision", 1, 3, PointFigureOptions{Precision: -1}, "precision"},
		{"precision above float resolution", 1, 3, PointFigureOptions{Precision: MaxPrecision + 1}, "precision"},
		{"precision overflowing the scale", 1, 3, PointFigureOptions{Precision: 400}, "precision"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PointFigureWithOptions(closes(1, 2), tt.box, tt.boxes, tt.opts)
			require.ErrorIs(t, err, ErrInvalidParameter)
			require.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestPointFigureEmptyAndIdempotent(t *testing.T) {
	marks, err := PointFigure(nil, 1, 3)
	assert.NoError(t, err)
	assert.Empty(t, marks)

	candles := walk(9, 300)
	a, err := PointFigure(candles, 2, 2)
	require.NoError(t, err)
	b, err := PointFigure(candles, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestMarkTypeText(t *testing.T) {
	b, err := X.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "X", string(b))

	var m MarkType
	require.NoError(t, m.UnmarshalText([]byte("O")))
	assert.Equal(t, O, m)
	assert.Error(t, m.UnmarshalText([]byte("Z")))
}

func TestPointFigureMaxPrecision(t *testing.T) {
	marks, err := PointFigureWithOptions(closes(1, 1.5, 2), 0.25, 3, PointFigureOptions{Precision: MaxPrecision})
	require.NoError(t, err)
	assert.Len(t, marks, 4)

	for _, prec := range []int{MaxPrecision + 1, 309, 400} {
		p := DefaultParams()
		p.Precision = prec
		err := p.Validate(KindPointFigure)
		var pe *ParamError
		require.True(t, errors.As(err, &pe), prec)
		assert.Equal(t, "precision", pe.Name)
		assert.ErrorIs(t, err, ErrInvalidParameter)
	}
}

func TestPointFigureBoxBelowPriceResolution(t *testing.T) {
	// a one unit box cannot be walked across 1e17 without 1e17 steps
	_, err := PointFigure(closes(1e17, 2e17, 3e17), 1, 3)
	require.ErrorIs(t, err, ErrInvalidParameter)
	var se *StepError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 1, se.Index)
	assert.Equal(t, "box size", se.Name)

	// few steps, but adding 4 to 1e17 rounds back to 1e17
	_, err = PointFigure(closes(1e17, 1e17+64), 4, 3)
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 1e17, se.From)

	_, err = PointFigure(closes(1e17, 1e17-64), 4, 3)
	require.ErrorIs(t, err, ErrInvalidParameter)
}

func TestPointFigureStepLimit(t *testing.T) {
	_, err := PointFigure(closes(0, MaxSteps+2), 1, 3)
	assert.ErrorIs(t, err, ErrInvalidParameter)

	marks, err := PointFigure(closes(0, 50000), 1, 3)
	require.NoError(t, err)
	assert.Len(t, marks, 50000)
}

func TestPointFigureBuilderStopsAfterError(t *testing.T) {
	b, err := NewPointFigure(1, 3)
	require.NoError(t, err)

	for _, c := range closes(1e17, 2e17, 3e17) {
		b.Update(c)
	}
	require.Error(t, b.Err())
	assert.Equal(t, 0, b.Len())

	b.Reset()
	assert.NoError(t, b.Err())
	for _, c := range closes(10, 13) {
		b.Update(c)
	}
	assert.NoError(t, b.Err())
	assert.Equal(t, 3, b.Len())
}
