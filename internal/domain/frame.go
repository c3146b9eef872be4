// Package domain contains core domain types for the trippy renderer.
package domain

import (
	"fmt"
	"image"
	"image/color"
)

// IconSize is the edge length of an icon frame (matches a Pixoo64 display).
const IconSize = 64

// BytesPerPixel is the number of bytes per pixel (RGB).
const BytesPerPixel = 3

// RGB represents an RGB color with 8-bit channels.
type RGB struct {
	R, G, B uint8
}

// NewRGB creates a new RGB color.
func NewRGB(r, g, b uint8) RGB {
	return RGB{R: r, G: g, B: b}
}

// Equals checks if two RGB colors are equal.
func (c RGB) Equals(other RGB) bool {
	return c.R == other.R && c.G == other.G && c.B == other.B
}

// String returns a string representation of the RGB color.
func (c RGB) String() string {
	return fmt.Sprintf("RGB(%d, %d, %d)", c.R, c.G, c.B)
}

// RGBA implements color.Color so an RGB can be used as a draw source.
func (c RGB) RGBA() (r, g, b, a uint32) {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}.RGBA()
}

// Luminance returns the perceptual brightness of the color in [0,1].
func (c RGB) Luminance() float64 {
	return Luminance(c.R, c.G, c.B)
}

// Luminance computes 0.2126 R + 0.7152 G + 0.0722 B normalized to [0,1].
func Luminance(r, g, b uint8) float64 {
	return (0.2126*float64(r) + 0.7152*float64(g) + 0.0722*float64(b)) / 255
}

// Frame represents a single frame of pixel data.
//
// Frame implements draw.Image so font drawers and encoders can work on it directly.
type Frame struct {
	Width  int
	Height int
	// Pixels is a flat array of RGB values: [r0,g0,b0, r1,g1,b1, ...]
	Pixels []byte
}

// NewFrame creates a new frame filled with black (0, 0, 0).
func NewFrame(width, height int) *Frame {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Frame{
		Width:  width,
		Height: height,
		Pixels: make([]byte, width*height*BytesPerPixel),
	}
}

// NewFrameWithColor creates a new frame filled with the specified color.
func NewFrameWithColor(width, height int, color RGB) *Frame {
	f := NewFrame(width, height)
	f.Fill(color)
	return f
}

// SetPixel sets a single pixel in the frame. Out of bounds coordinates are silently ignored.
func (f *Frame) SetPixel(x, y int, color RGB) {
	if x < 0 || x >= f.Width || y < 0 || y >= f.Height {
		return
	}
	offset := (y*f.Width + x) * BytesPerPixel
	f.Pixels[offset] = color.R
	f.Pixels[offset+1] = color.G
	f.Pixels[offset+2] = color.B
}

// GetPixel returns the color at the specified coordinates, or nil if out of bounds.
func (f *Frame) GetPixel(x, y int) *RGB {
	if x < 0 || x >= f.Width || y < 0 || y >= f.Height {
		return nil
	}
	offset := (y*f.Width + x) * BytesPerPixel
	return &RGB{
		R: f.Pixels[offset],
		G: f.Pixels[offset+1],
		B: f.Pixels[offset+2],
	}
}

// Fill fills the entire frame with the specified color.
func (f *Frame) Fill(color RGB) {
	for i := 0; i < f.Width*f.Height; i++ {
		offset := i * BytesPerPixel
		f.Pixels[offset] = color.R
		f.Pixels[offset+1] = color.G
		f.Pixels[offset+2] = color.B
	}
}

// Clone creates a deep copy of the frame.
func (f *Frame) Clone() *Frame {
	clone := &Frame{
		Width:  f.Width,
		Height: f.Height,
		Pixels: make([]byte, len(f.Pixels)),
	}
	copy(clone.Pixels, f.Pixels)
	return clone
}

// ColorModel implements image.Image.
func (f *Frame) ColorModel() color.Model {
	return color.RGBAModel
}

// Bounds implements image.Image.
func (f *Frame) Bounds() image.Rectangle {
	return image.Rect(0, 0, f.Width, f.Height)
}

// At implements image.Image. Out of bounds reads are opaque black.
func (f *Frame) At(x, y int) color.Color {
	p := f.GetPixel(x, y)
	if p == nil {
		return color.RGBA{A: 0xff}
	}
	return color.RGBA{R: p.R, G: p.G, B: p.B, A: 0xff}
}

// Set implements draw.Image. Alpha is composited over the existing pixel.
func (f *Frame) Set(x, y int, c color.Color) {
	if x < 0 || x >= f.Width || y < 0 || y >= f.Height {
		return
	}
	r, g, b, a := c.RGBA()
	if a == 0xffff {
		f.SetPixel(x, y, NewRGB(uint8(r>>8), uint8(g>>8), uint8(b>>8)))
		return
	}
	// Premultiplied source over destination.
	dst := f.GetPixel(x, y)
	inv := 0xffff - a
	blend := func(s uint32, d uint8) uint8 {
		return uint8((s + uint32(d)*0x101*inv/0xffff) >> 8)
	}
	f.SetPixel(x, y, NewRGB(blend(r, dst.R), blend(g, dst.G), blend(b, dst.B)))
}
