package render

import (
	"fmt"
	"image/png"
	"io"
	"math"
	"sync"

	"github.com/jwulff/trippy-go/internal/domain"
)

// Canvas is an in-memory raster surface. It keeps the last painted frame so it
// can be served or saved.
type Canvas struct {
	mu    sync.Mutex
	frame *domain.Frame
	faces FaceCache
}

// NewCanvas creates a black canvas of width x height pixels.
func NewCanvas(width, height int) *Canvas {
	return &Canvas{frame: domain.NewFrame(width, height)}
}

// Size implements Surface.
func (c *Canvas) Size() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frame.Width, c.frame.Height
}

// Resize replaces the raster with a black one of the new size.
func (c *Canvas) Resize(width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if width == c.frame.Width && height == c.frame.Height {
		return
	}
	c.frame = domain.NewFrame(width, height)
}

// Draw implements Surface: background first, then every glyph top-left aligned
// in a face sized to the cell.
func (c *Canvas) Draw(m *Mosaic) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.frame.Fill(m.Colors.Background)
	if m.CellSize <= 0 {
		return nil
	}
	face, err := c.faces.Face(m.CellSize)
	if err != nil {
		return fmt.Errorf("failed to load face: %w", err)
	}

	for y := 0; y < m.Rows; y++ {
		for x := 0; x < m.Columns; x++ {
			px, py := m.Origin(x, y)
			DrawGlyph(c.frame, face, m.At(x, y), int(math.Round(px)), int(math.Round(py)), m.Colors.Foreground)
		}
	}
	return nil
}

// Snapshot returns a copy of the current raster.
func (c *Canvas) Snapshot() *domain.Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frame.Clone()
}

// EncodePNG writes the current raster as PNG.
func (c *Canvas) EncodePNG(w io.Writer) error {
	snap := c.Snapshot()
	if err := png.Encode(w, snap); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return nil
}

var _ Surface = (*Canvas)(nil)
