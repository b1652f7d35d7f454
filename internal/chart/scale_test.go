package chart

import (
	"testing"

	"PairPulse/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeRange(t *testing.T) {
	_, _, err := ComputeRange(nil)
	assert.ErrorIs(t, err, ErrNoCandles)

	hi, lo, err := ComputeRange([]models.Candle{
		{High: 12, Low: 9},
		{High: 15, Low: 10},
		{High: 11, Low: 7},
	})
	require.NoError(t, err)
	assert.Equal(t, 15.0, hi)
	assert.Equal(t, 7.0, lo)
}

func TestScale(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		want  float64
	}{
		{"max maps to top", 20, 0},
		{"min maps to bottom", 10, 300},
		{"midpoint", 15, 150},
		{"quarter", 17.5, 75},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Scale(tt.value, 20, 10, 300), 1e-9)
		})
	}
}

func TestScale_FlatRangeIsMidline(t *testing.T) {
	assert.Equal(t, 50.0, Scale(3, 3, 3, 100))
}

func TestScale_Monotonic(t *testing.T) {
	prev := Scale(10, 20, 10, 480)
	for v := 10.5; v <= 20; v += 0.5 {
		y := Scale(v, 20, 10, 480)
		assert.Less(t, y, prev, "higher price draws higher up")
		prev = y
	}
}

func TestTransform_PriceInvertsY(t *testing.T) {
	tr, err := NewTransform([]models.Candle{{High: 2, Low: 1}}, 200)
	require.NoError(t, err)

	for _, p := range []float64{1, 1.25, 1.5, 2} {
		assert.InDelta(t, p, tr.Price(tr.Y(p)), 1e-9)
	}

	flat := Transform{Max: 4, Min: 4, Height: 10}
	assert.Equal(t, 4.0, flat.Price(3))
}
