package render

import (
	"image"
	"image/draw"

	"github.com/jwulff/trippy-go/internal/domain"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// DrawGlyph draws glyph with the top of its em box at (x, y).
func DrawGlyph(dst draw.Image, face font.Face, glyph string, x, y int, color domain.RGB) {
	if glyph == "" {
		return
	}
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color),
		Face: face,
	}
	d.Dot = fixed.Point26_6{
		X: fixed.I(x),
		Y: fixed.I(y) + face.Metrics().Ascent,
	}
	d.DrawString(glyph)
}

// DrawGlyphCentered draws glyph centered horizontally and vertically on (cx, cy).
func DrawGlyphCentered(dst draw.Image, face font.Face, glyph string, cx, cy int, color domain.RGB) {
	if glyph == "" {
		return
	}
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color),
		Face: face,
	}
	m := face.Metrics()
	advance := d.MeasureString(glyph)
	d.Dot = fixed.Point26_6{
		X: fixed.I(cx) - advance/2,
		Y: fixed.I(cy) + (m.Ascent-m.Descent)/2,
	}
	d.DrawString(glyph)
}

// MeasureGlyph returns the advance width of glyph in whole pixels.
func MeasureGlyph(face font.Face, glyph string) int {
	return font.MeasureString(face, glyph).Ceil()
}
