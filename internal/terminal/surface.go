// Package terminal shows trippy in a text terminal with tcell.
package terminal

import (
	"math"
	"sync"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"
	"github.com/jwulff/trippy-go/internal/domain"
	"github.com/jwulff/trippy-go/internal/render"
)

// Nominal pixel size of one terminal cell. The mosaic is laid out in these
// pixels so the cell-size heuristic behaves as it does on a raster.
const (
	CellWidth  = 8
	CellHeight = 16
)

// Surface paints mosaics onto a tcell screen. The bottom row is reserved for
// a status line.
type Surface struct {
	screen tcell.Screen

	mu     sync.Mutex
	status string
}

// NewSurface wraps an initialised screen.
func NewSurface(screen tcell.Screen) *Surface {
	return &Surface{screen: screen}
}

// Size implements render.Surface in nominal pixels.
func (s *Surface) Size() (int, int) {
	cols, rows := s.grid()
	return cols * CellWidth, rows * CellHeight
}

// grid is the drawable area in terminal cells.
func (s *Surface) grid() (int, int) {
	cols, rows := s.screen.Size()
	return max(cols, 0), max(rows-1, 0)
}

// SetStatus replaces the status line text.
func (s *Surface) SetStatus(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = text
}

// Status returns the status line text.
func (s *Surface) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Draw implements render.Surface. Each terminal cell shows the glyph of the
// mosaic cell under its center.
func (s *Surface) Draw(m *render.Mosaic) error {
	cols, rows := s.grid()
	style := tcell.StyleDefault.
		Background(toColor(m.Colors.Background)).
		Foreground(toColor(m.Colors.Foreground))

	for cy := 0; cy < rows; cy++ {
		for cx := 0; cx < cols; cx++ {
			r := ' '
			if m.CellSize > 0 {
				px := (float64(cx) + 0.5) * CellWidth
				py := (float64(cy) + 0.5) * CellHeight
				mx := int(math.Floor(px / m.CellSize))
				my := int(math.Floor(py / m.CellSize))
				r = glyphRune(m.At(mx, my))
			}
			s.screen.SetContent(cx, cy, r, nil, style)
		}
	}

	s.drawStatus(cols, rows)
	s.screen.Show()
	return nil
}

func (s *Surface) drawStatus(cols, row int) {
	style := tcell.StyleDefault.Reverse(true)
	text := []rune(s.Status())
	for x := 0; x < cols; x++ {
		r := ' '
		if x < len(text) {
			r = text[x]
		}
		s.screen.SetContent(x, row, r, nil, style)
	}
}

// glyphRune returns the first rune of a glyph, or a space for none.
func glyphRune(g string) rune {
	if g == "" {
		return ' '
	}
	r, _ := utf8.DecodeRuneInString(g)
	if r == utf8.RuneError || r < ' ' {
		return ' '
	}
	return r
}

func toColor(c domain.RGB) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

var _ render.Surface = (*Surface)(nil)
