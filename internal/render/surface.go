package render

// Surface is a raster target that can show a mosaic.
type Surface interface {
	// Size returns the viewport in pixels.
	Size() (width, height int)
	// Draw paints the background and every glyph of m.
	Draw(m *Mosaic) error
}
