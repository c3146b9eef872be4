package domain

import "math"

// DefaultText is the palette text used when nothing else is supplied.
const DefaultText = "Merry Christmas"

// FallbackGlyph is drawn when the palette is empty.
const FallbackGlyph = "x"

// Palette is an ordered sequence of candidate glyphs.
type Palette []string

// ParsePalette splits raw text into one glyph per character.
// Multi-codepoint glyphs (combining marks, emoji sequences) are not joined.
func ParsePalette(text string) Palette {
	p := make(Palette, 0, len(text))
	for _, r := range text {
		p = append(p, string(r))
	}
	return p
}

// String joins the palette back into its raw text.
func (p Palette) String() string {
	n := 0
	for _, g := range p {
		n += len(g)
	}
	b := make([]byte, 0, n)
	for _, g := range p {
		b = append(b, g...)
	}
	return string(b)
}

// Index maps value onto a palette slot: floor(|value| * len) mod len.
// Values are not clamped; anything above 1 wraps around. Non-finite values map to 0.
func (p Palette) Index(value float64) int {
	n := len(p)
	if n == 0 {
		return 0
	}
	scaled := math.Floor(math.Abs(value) * float64(n))
	if math.IsNaN(scaled) || math.IsInf(scaled, 0) {
		return 0
	}
	idx := math.Mod(scaled, float64(n))
	return int(idx)
}

// CharFor returns the glyph for value, FallbackGlyph for an empty palette,
// or "" if the resolved slot is empty.
func (p Palette) CharFor(value float64) string {
	if len(p) == 0 {
		return FallbackGlyph
	}
	return p[p.Index(value)]
}

// Glyphs returns the palette, or the fallback glyph when empty.
func (p Palette) Glyphs() []string {
	if len(p) == 0 {
		return []string{FallbackGlyph}
	}
	return p
}
