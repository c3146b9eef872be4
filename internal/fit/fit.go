// Package fit maps an arbitrary-aspect source image onto a fixed destination
// rectangle so that the destination is always fully covered.
package fit

// Rect is the placement of the scaled source relative to the destination origin.
// Negative offsets mean the source is cropped on that axis.
type Rect struct {
	Width   float64
	Height  float64
	OffsetX float64
	OffsetY float64
}

// FillWidth scales the source to the destination width and centers it vertically.
func FillWidth(srcW, srcH, dstW, dstH float64) Rect {
	r := Rect{
		Width:  dstW,
		Height: dstW * (srcH / srcW),
	}
	r.OffsetY = -(r.Height - dstH) / 2
	return r
}

// FillHeight scales the source to the destination height and centers it horizontally.
func FillHeight(srcW, srcH, dstW, dstH float64) Rect {
	r := Rect{
		Width:  dstH * (srcW / srcH),
		Height: dstH,
	}
	r.OffsetX = -(r.Width - dstW) / 2
	return r
}

// Fit places the source inside the destination. Unless forcePerspective is set it
// tries FillWidth first and falls back to FillHeight when the result would leave
// a gap at the top or bottom. FillHeight is never retried.
func Fit(srcW, srcH, dstW, dstH float64, forcePerspective bool) Rect {
	if forcePerspective {
		return FillHeight(srcW, srcH, dstW, dstH)
	}
	r := FillWidth(srcW, srcH, dstW, dstH)
	if r.Height < dstH {
		return FillHeight(srcW, srcH, dstW, dstH)
	}
	return r
}

// Cover is Fit without forcing a mode.
func Cover(srcW, srcH, dstW, dstH float64) Rect {
	return Fit(srcW, srcH, dstW, dstH, false)
}
