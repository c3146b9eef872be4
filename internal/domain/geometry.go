package domain

import "math"

// DefaultCellSize is the desired cell size before the first resize.
const DefaultCellSize = 15

// Geometry describes how the viewport is divided into cells.
type Geometry struct {
	Width           int
	Height          int
	DesiredCellSize float64
	// CellSize is DesiredCellSize adjusted so Columns cells span Width exactly.
	CellSize float64
	Columns  int
	// Rows includes a partial trailing row.
	Rows int
}

// CellSize returns width / round(width / desired).
func CellSize(desired, width float64) float64 {
	cols := Columns(desired, width)
	if cols == 0 {
		return desired
	}
	return width / float64(cols)
}

// Columns returns round(width / desired), never less than 1 for a positive width.
func Columns(desired, width float64) int {
	if desired <= 0 || width <= 0 {
		return 0
	}
	cols := int(math.Round(width / desired))
	if cols < 1 {
		cols = 1
	}
	return cols
}

// DesiredCellSize picks the target cell size for a viewport. Landscape viewports
// scale with w/h*8, portrait ones with h/w*10.
func DesiredCellSize(width, height int) float64 {
	if width <= 0 || height <= 0 {
		return DefaultCellSize
	}
	w, h := float64(width), float64(height)
	if w > h {
		return math.Round(w / h * 8)
	}
	return math.Round(h / w * 10)
}

// NewGeometry computes the grid for a viewport of width x height pixels.
func NewGeometry(width, height int) Geometry {
	return NewGeometryWithCellSize(width, height, DesiredCellSize(width, height))
}

// NewGeometryWithCellSize computes the grid for an explicit desired cell size.
func NewGeometryWithCellSize(width, height int, desired float64) Geometry {
	g := Geometry{
		Width:           width,
		Height:          height,
		DesiredCellSize: desired,
	}
	g.Columns = Columns(desired, float64(width))
	g.CellSize = CellSize(desired, float64(width))
	if g.CellSize > 0 && height > 0 {
		g.Rows = int(math.Ceil(float64(height) / g.CellSize))
	}
	return g
}
