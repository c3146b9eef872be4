package render

import (
	"fmt"
	"math"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
)

// maxCachedFaces bounds how many sizes a FaceCache keeps.
const maxCachedFaces = 8

var (
	monoOnce sync.Once
	mono     *truetype.Font
	monoErr  error
)

// MonoFont returns the parsed Go Mono font.
func MonoFont() (*truetype.Font, error) {
	monoOnce.Do(func() {
		mono, monoErr = truetype.Parse(gomono.TTF)
		if monoErr != nil {
			monoErr = fmt.Errorf("failed to parse mono font: %w", monoErr)
		}
	})
	return mono, monoErr
}

// NewFace creates a fixed-width face of size pixels.
func NewFace(size float64) (font.Face, error) {
	f, err := MonoFont()
	if err != nil {
		return nil, err
	}
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}

// FaceCache hands out faces by pixel size. Faces are not safe for concurrent
// drawing, so each surface owns its own cache.
type FaceCache struct {
	faces map[int]font.Face
}

// Face returns a face for size, creating it on first use.
func (c *FaceCache) Face(size float64) (font.Face, error) {
	key := int(math.Round(size * 64))
	if face, ok := c.faces[key]; ok {
		return face, nil
	}
	if c.faces == nil || len(c.faces) >= maxCachedFaces {
		c.faces = make(map[int]font.Face)
	}
	face, err := NewFace(size)
	if err != nil {
		return nil, err
	}
	c.faces[key] = face
	return face, nil
}
