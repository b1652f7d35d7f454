package chart

import (
	"fmt"
	"image/color"
	"math"

	"PairPulse/internal/domain/models"

	"github.com/lucasb-eyer/go-colorful"
)

// Surface is a 2D drawing target. Coordinates are pixels, origin top-left.
type Surface interface {
	Size() (width, height float64)
	Clear()
	StrokeLine(x0, y0, x1, y1, width float64, c color.Color)
	FillRect(x, y, w, h float64, c color.Color)
}

const (
	slotInset   = 0.2
	bodyWidth   = 0.6
	wickWidth   = 2
	minBodyRows = 1
)

// Palette holds the candle colors.
type Palette struct {
	Up   color.Color
	Down color.Color
}

// DefaultPalette matches the web page colors.
func DefaultPalette() Palette {
	return Palette{
		Up:   color.RGBA{R: 0x00, G: 0xE8, B: 0xA2, A: 0xFF},
		Down: color.RGBA{R: 0xE7, G: 0x4C, B: 0x3C, A: 0xFF},
	}
}

// Renderer draws candles onto a Surface.
type Renderer struct {
	palette Palette
}

func NewRenderer(p Palette) *Renderer {
	if p.Up == nil || p.Down == nil {
		p = DefaultPalette()
	}
	return &Renderer{palette: p}
}

// Render clears s and draws one wick and one body per candle, left to right.
func (r *Renderer) Render(s Surface, candles []models.Candle) {
	s.Clear()
	if len(candles) == 0 {
		return
	}

	width, height := s.Size()
	tr, err := NewTransform(candles, height)
	if err != nil {
		return
	}
	slot := width / float64(len(candles))

	for i, c := range candles {
		x := float64(i)*slot + slot*slotInset
		col := r.palette.Down
		if c.Up() {
			col = r.palette.Up
		}

		wx := x + slot/2
		s.StrokeLine(wx, tr.Y(c.High), wx, tr.Y(c.Low), wickWidth, col)

		yOpen, yClose := tr.Y(c.Open), tr.Y(c.Close)
		top := math.Min(yOpen, yClose)
		h := math.Abs(yOpen - yClose)
		if h < minBodyRows {
			h = minBodyRows
			// Keep a flat body at the bottom edge inside the surface.
			if top+h > height {
				top = height - h
			}
		}
		s.FillRect(x, top, slot*bodyWidth, h, col)
	}
}

// ParseHexColor parses "#RRGGBB" into an opaque color.
func ParseHexColor(s string) (color.Color, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return nil, fmt.Errorf("parse color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xFF}, nil
}
