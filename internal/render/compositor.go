// Package render turns brightness and noise samples into ASCII mosaics and
// paints them onto raster surfaces.
package render

import (
	"image"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"
	"github.com/jwulff/trippy-go/internal/domain"
	"github.com/jwulff/trippy-go/internal/fit"
	"github.com/jwulff/trippy-go/internal/noise"
)

// FrameInput is everything a single frame depends on.
type FrameInput struct {
	Geometry   domain.Geometry
	Palette    domain.Palette
	Colors     domain.ColorPair
	Params     noise.Params
	FrameCount int
	// DownSample divides the backing raster resolution; values below 1 are treated as 1.
	DownSample float64
	// Camera is the latest camera frame, or nil to render from noise alone.
	Camera image.Image
}

// Compositor maps a noise field and an optional camera frame to glyphs.
// It owns the backing raster camera frames are fitted into.
type Compositor struct {
	field   noise.Field
	backing *image.RGBA
}

// NewCompositor creates a compositor sampling field.
func NewCompositor(field noise.Field) *Compositor {
	return &Compositor{field: field}
}

// Compose builds the mosaic for one frame.
func (c *Compositor) Compose(in FrameInput) *Mosaic {
	m := NewMosaic(in.Geometry)
	m.Colors = in.Colors
	m.FrameCount = in.FrameCount
	m.Mode = domain.SourceNoise

	ds := in.DownSample
	if ds < 1 || math.IsNaN(ds) {
		ds = 1
	}

	var raster *image.RGBA
	if in.Camera != nil && !in.Camera.Bounds().Empty() {
		raster = c.drawCamera(in.Camera, in.Geometry, ds)
	}
	if raster != nil {
		m.Mode = domain.SourceCamera
	}

	sampled := in.Geometry.CellSize / ds
	dx, dy := in.Params.Drift(in.FrameCount)
	for y := 0; y < m.Rows; y++ {
		for x := 0; x < m.Columns; x++ {
			var n, lum float64
			if raster != nil {
				// Camera mode varies noise per row only.
				n = c.field.Sample(float64(in.FrameCount), float64(y))
				px := int(math.Floor(float64(x) * sampled))
				py := int(math.Floor(float64(y) * sampled))
				lum = luminanceAt(raster, px, py)
			} else {
				n = c.field.Sample(float64(x)+dx, float64(y)+dy)
			}
			m.Set(x, y, in.Palette.CharFor(lum+n))
		}
	}
	return m
}

// Backing returns the raster the last camera frame was fitted into, or nil.
func (c *Compositor) Backing() *image.RGBA {
	return c.backing
}

// drawCamera fits src over a raster of viewport/ds pixels, cropping the overflow.
func (c *Compositor) drawCamera(src image.Image, g domain.Geometry, ds float64) *image.RGBA {
	dstW := float64(g.Width) / ds
	dstH := float64(g.Height) / ds
	w, h := int(math.Ceil(dstW)), int(math.Ceil(dstH))
	if w <= 0 || h <= 0 {
		return nil
	}

	if c.backing == nil || c.backing.Bounds().Dx() != w || c.backing.Bounds().Dy() != h {
		c.backing = image.NewRGBA(image.Rect(0, 0, w, h))
	} else {
		draw.Draw(c.backing, c.backing.Bounds(), image.Black, image.Point{}, draw.Src)
	}

	sb := src.Bounds()
	rect := fit.Cover(float64(sb.Dx()), float64(sb.Dy()), dstW, dstH)
	sw, sh := int(math.Round(rect.Width)), int(math.Round(rect.Height))
	if sw <= 0 || sh <= 0 {
		return c.backing
	}

	scaled := imaging.Resize(src, sw, sh, imaging.Linear)
	at := image.Pt(int(math.Round(rect.OffsetX)), int(math.Round(rect.OffsetY)))
	draw.Draw(c.backing, scaled.Bounds().Add(at), scaled, image.Point{}, draw.Src)
	return c.backing
}

// luminanceAt reads one pixel; anything outside the raster counts as black.
func luminanceAt(img *image.RGBA, x, y int) float64 {
	if !(image.Point{X: x, Y: y}).In(img.Bounds()) {
		return 0
	}
	p := img.RGBAAt(x, y)
	return domain.Luminance(p.R, p.G, p.B)
}
