package chart

import (
	"image/color"
	"testing"

	"PairPulse/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type line struct {
	x0, y0, x1, y1, w float64
	c                 color.Color
}

type rect struct {
	x, y, w, h float64
	c          color.Color
}

type recordingSurface struct {
	w, h   float64
	clears int
	lines  []line
	rects  []rect
}

func (s *recordingSurface) Size() (float64, float64) { return s.w, s.h }

func (s *recordingSurface) Clear() {
	s.clears++
	s.lines, s.rects = nil, nil
}

func (s *recordingSurface) StrokeLine(x0, y0, x1, y1, w float64, c color.Color) {
	s.lines = append(s.lines, line{x0, y0, x1, y1, w, c})
}

func (s *recordingSurface) FillRect(x, y, w, h float64, c color.Color) {
	s.rects = append(s.rects, rect{x, y, w, h, c})
}

func TestRenderer_Geometry(t *testing.T) {
	p := DefaultPalette()
	s := &recordingSurface{w: 200, h: 100}

	NewRenderer(p).Render(s, []models.Candle{
		{Open: 10, High: 12, Low: 9, Close: 11},
		{Open: 11, High: 11.5, Low: 8, Close: 8},
	})

	require.Equal(t, 1, s.clears)
	require.Len(t, s.lines, 2)
	require.Len(t, s.rects, 2)

	// slot = 100, range [8, 12] over 100px.
	assert.Equal(t, line{70, 0, 70, 75, 2, p.Up}, s.lines[0])
	assert.Equal(t, rect{20, 25, 60, 25, p.Up}, s.rects[0])

	assert.Equal(t, line{170, 12.5, 170, 100, 2, p.Down}, s.lines[1])
	assert.Equal(t, rect{120, 25, 60, 75, p.Down}, s.rects[1])
}

func TestRenderer_FlatCandleHasMinimumBody(t *testing.T) {
	s := &recordingSurface{w: 50, h: 40}
	NewRenderer(Palette{}).Render(s, []models.Candle{{Open: 5, High: 5, Low: 5, Close: 5}})

	require.Len(t, s.rects, 1)
	r := s.rects[0]
	assert.Equal(t, 20.0, r.y, "flat range sits on the midline")
	assert.Equal(t, 1.0, r.h)
	assert.Equal(t, DefaultPalette().Up, r.c, "close == open counts as up")
}

func TestRenderer_FlatBodyAtBottomEdgeStaysInside(t *testing.T) {
	s := &recordingSurface{w: 100, h: 100}
	NewRenderer(Palette{}).Render(s, []models.Candle{
		{Open: 10, High: 12, Low: 9, Close: 11},
		{Open: 9, High: 9, Low: 9, Close: 9},
	})

	require.Len(t, s.rects, 2)
	r := s.rects[1]
	assert.Equal(t, 99.0, r.y)
	assert.Equal(t, 1.0, r.h)
	assert.LessOrEqual(t, r.y+r.h, 100.0)
}

func TestRenderer_EmptyOnlyClears(t *testing.T) {
	s := &recordingSurface{w: 50, h: 40}
	s.lines = []line{{}}

	NewRenderer(DefaultPalette()).Render(s, nil)

	assert.Equal(t, 1, s.clears)
	assert.Empty(t, s.lines)
	assert.Empty(t, s.rects)
}

func TestParseHexColor(t *testing.T) {
	c, err := ParseHexColor("#00E8A2")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 0x00, G: 0xE8, B: 0xA2, A: 0xFF}, c)

	_, err = ParseHexColor("green")
	assert.Error(t, err)
}
