package render

import (
	"strings"

	"github.com/jwulff/trippy-go/internal/domain"
)

// Mosaic is one rendered frame: a grid of glyphs plus how to paint it.
type Mosaic struct {
	Width      int
	Height     int
	Columns    int
	Rows       int
	CellSize   float64
	Colors     domain.ColorPair
	Mode       domain.SourceMode
	FrameCount int
	// Glyphs is row-major, Columns*Rows entries.
	Glyphs []string
}

// NewMosaic allocates an empty grid.
func NewMosaic(g domain.Geometry) *Mosaic {
	return &Mosaic{
		Width:    g.Width,
		Height:   g.Height,
		Columns:  g.Columns,
		Rows:     g.Rows,
		CellSize: g.CellSize,
		Glyphs:   make([]string, g.Columns*g.Rows),
	}
}

// At returns the glyph at column x, row y, or "" when out of range.
func (m *Mosaic) At(x, y int) string {
	if x < 0 || x >= m.Columns || y < 0 || y >= m.Rows {
		return ""
	}
	return m.Glyphs[y*m.Columns+x]
}

// Set stores the glyph for column x, row y.
func (m *Mosaic) Set(x, y int, glyph string) {
	if x < 0 || x >= m.Columns || y < 0 || y >= m.Rows {
		return
	}
	m.Glyphs[y*m.Columns+x] = glyph
}

// Origin returns the top-left pixel of a cell.
func (m *Mosaic) Origin(x, y int) (px, py float64) {
	return float64(x) * m.CellSize, float64(y) * m.CellSize
}

// Lines renders the grid as text, one line per row. Empty glyphs become spaces.
func (m *Mosaic) Lines() []string {
	lines := make([]string, m.Rows)
	var b strings.Builder
	for y := 0; y < m.Rows; y++ {
		b.Reset()
		for x := 0; x < m.Columns; x++ {
			g := m.At(x, y)
			if g == "" {
				g = " "
			}
			b.WriteString(g)
		}
		lines[y] = b.String()
	}
	return lines
}

// String joins Lines with newlines.
func (m *Mosaic) String() string {
	return strings.Join(m.Lines(), "\n")
}
