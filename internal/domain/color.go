package domain

import (
	"fmt"
	"math/rand"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// ColorPair holds the background and foreground colors of a session.
type ColorPair struct {
	Background RGB
	Foreground RGB
}

// ParseHex parses "#rrggbb" or "#rgb" into an RGB color.
func ParseHex(s string) (RGB, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return NewRGB(r, g, b), nil
}

// Hex formats the color as lowercase "#rrggbb".
func (c RGB) Hex() string {
	return colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}.Hex()
}

// RandomRGB returns a uniformly random 24-bit color.
func RandomRGB(rng *rand.Rand) RGB {
	v := rng.Intn(1 << 24)
	return NewRGB(uint8(v>>16), uint8(v>>8), uint8(v))
}

// RandomColorPair returns independent random background and foreground colors.
func RandomColorPair(rng *rand.Rand) ColorPair {
	return ColorPair{
		Background: RandomRGB(rng),
		Foreground: RandomRGB(rng),
	}
}
