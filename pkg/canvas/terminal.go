package canvas

import (
	"image/color"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

const (
	bodyRune = '█'
	wickRune = '│'
)

type cell struct {
	r   rune
	hex string
}

// Terminal is a character-cell surface: one cell is one unit in both axes.
type Terminal struct {
	cols, rows int
	cells      [][]cell
	styles     map[string]lipgloss.Style
}

// NewTerminal allocates a cols x rows grid.
func NewTerminal(cols, rows int) *Terminal {
	t := &Terminal{styles: make(map[string]lipgloss.Style)}
	t.Resize(cols, rows)
	return t
}

// Resize reallocates the grid when the size changed.
func (t *Terminal) Resize(cols, rows int) {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	if cols == t.cols && rows == t.rows && t.cells != nil {
		return
	}
	t.cols, t.rows = cols, rows
	t.cells = make([][]cell, rows)
	for i := range t.cells {
		t.cells[i] = make([]cell, cols)
	}
	t.Clear()
}

func (t *Terminal) Size() (float64, float64) {
	return float64(t.cols), float64(t.rows)
}

func (t *Terminal) Clear() {
	for _, row := range t.cells {
		for i := range row {
			row[i] = cell{r: ' '}
		}
	}
}

// StrokeLine only supports the vertical strokes used for wicks; other
// directions are drawn as the covering rectangle. Width is ignored.
func (t *Terminal) StrokeLine(x0, y0, x1, y1, _ float64, c color.Color) {
	hex := toHex(c)
	c0, c1 := t.colSpan(math.Min(x0, x1), math.Abs(x1-x0))
	r0, r1 := t.rowSpan(math.Min(y0, y1), math.Abs(y1-y0))
	for r := r0; r <= r1; r++ {
		for col := c0; col <= c1; col++ {
			// Bodies win over wicks.
			if t.cells[r][col].r != bodyRune {
				t.cells[r][col] = cell{r: wickRune, hex: hex}
			}
		}
	}
}

func (t *Terminal) FillRect(x, y, w, h float64, c color.Color) {
	hex := toHex(c)
	c0, c1 := t.colSpan(x, w)
	r0, r1 := t.rowSpan(y, h)
	for r := r0; r <= r1; r++ {
		for col := c0; col <= c1; col++ {
			t.cells[r][col] = cell{r: bodyRune, hex: hex}
		}
	}
}

// String renders the grid with lipgloss colors, one line per row.
func (t *Terminal) String() string {
	var b strings.Builder
	for i, row := range t.cells {
		if i > 0 {
			b.WriteByte('\n')
		}
		start := 0
		for j := 1; j <= len(row); j++ {
			if j < len(row) && row[j].hex == row[start].hex {
				continue
			}
			b.WriteString(t.render(row[start:j]))
			start = j
		}
	}
	return b.String()
}

// Plain renders the grid without escape sequences.
func (t *Terminal) Plain() string {
	var b strings.Builder
	for i, row := range t.cells {
		if i > 0 {
			b.WriteByte('\n')
		}
		for _, c := range row {
			b.WriteRune(c.r)
		}
	}
	return b.String()
}

// At returns the rune at col, row.
func (t *Terminal) At(col, row int) rune { return t.cells[row][col].r }

func (t *Terminal) render(run []cell) string {
	var s strings.Builder
	for _, c := range run {
		s.WriteRune(c.r)
	}
	hex := run[0].hex
	if hex == "" {
		return s.String()
	}
	st, ok := t.styles[hex]
	if !ok {
		st = lipgloss.NewStyle().Foreground(lipgloss.Color(hex))
		t.styles[hex] = st
	}
	return st.Render(s.String())
}

// colSpan converts [x, x+w) into an inclusive, clamped column range covering at least one column.
func (t *Terminal) colSpan(x, w float64) (int, int) {
	return span(x, w, t.cols)
}

func (t *Terminal) rowSpan(y, h float64) (int, int) {
	return span(y, h, t.rows)
}

func span(v, size float64, limit int) (int, int) {
	lo := clamp(int(math.Floor(v)), 0, limit-1)
	hi := clamp(int(math.Ceil(v+size))-1, 0, limit-1)
	if hi < lo {
		hi = lo
	}
	return lo, hi
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func toHex(c color.Color) string {
	cf, ok := colorful.MakeColor(c)
	if !ok {
		return ""
	}
	return cf.Hex()
}
