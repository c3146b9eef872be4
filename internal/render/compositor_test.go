package render

import (
	"image"
	"image/color"
	"testing"

	"github.com/jwulff/trippy-go/internal/domain"
	"github.com/jwulff/trippy-go/internal/noise"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingField returns a fixed value and remembers every sample point.
type recordingField struct {
	value   float64
	samples [][2]float64
}

func (f *recordingField) Sample(x, y float64) float64 {
	f.samples = append(f.samples, [2]float64{x, y})
	return f.value
}

func blackAndWhite(t *testing.T) domain.ColorPair {
	bg, err := domain.ParseHex("#000000")
	require.NoError(t, err)
	fg, err := domain.ParseHex("#ffffff")
	require.NoError(t, err)
	return domain.ColorPair{Background: bg, Foreground: fg}
}

func TestComposeNoiseModeMatchesField(t *testing.T) {
	params := noise.Params{ModifyX: 75, ModifyY: 60}
	field := noise.NewSimplex(99, params)
	palette := domain.ParsePalette("AB")

	c := NewCompositor(field)
	m := c.Compose(FrameInput{
		Geometry:   domain.NewGeometry(160, 90),
		Palette:    palette,
		Colors:     blackAndWhite(t),
		Params:     params,
		FrameCount: 0,
		DownSample: 1,
	})

	assert.Equal(t, domain.SourceNoise, m.Mode)
	s := field.Sample(0, 0)
	assert.Equal(t, palette.CharFor(0+s), m.At(0, 0))

	// Every cell follows the same formula.
	for y := 0; y < m.Rows; y++ {
		for x := 0; x < m.Columns; x++ {
			assert.Equal(t, palette.CharFor(field.Sample(float64(x), float64(y))), m.At(x, y))
		}
	}
}

func TestComposeNoiseModeDriftsWithFrameCount(t *testing.T) {
	field := &recordingField{}
	params := noise.Params{ModifyX: 50, ModifyY: 100}

	c := NewCompositor(field)
	m := c.Compose(FrameInput{
		Geometry:   domain.NewGeometryWithCellSize(20, 10, 10),
		Palette:    domain.ParsePalette("AB"),
		Params:     params,
		FrameCount: 20,
	})

	require.Equal(t, 2, m.Columns)
	require.Equal(t, 1, m.Rows)
	// 20 / (50/10) = 4 and 20 / (100/10) = 2
	assert.Equal(t, [][2]float64{{4, 2}, {5, 2}}, field.samples)
	assert.Equal(t, 20, m.FrameCount)
}

func TestComposeIsDeterministic(t *testing.T) {
	params := noise.Params{ModifyX: 55, ModifyY: 66}
	in := FrameInput{
		Geometry:   domain.NewGeometry(320, 200),
		Palette:    domain.ParsePalette("Merry Christmas"),
		Params:     params,
		FrameCount: 12,
	}

	a := NewCompositor(noise.NewSimplex(5, params)).Compose(in)
	b := NewCompositor(noise.NewSimplex(5, params)).Compose(in)
	assert.Equal(t, a.Glyphs, b.Glyphs)
}

func TestComposeCameraModeUsesLuminance(t *testing.T) {
	field := &recordingField{}
	gray := color.RGBA{R: 200, G: 200, B: 200, A: 255}
	frame := image.NewRGBA(image.Rect(0, 0, 64, 48))
	for y := 0; y < 48; y++ {
		for x := 0; x < 64; x++ {
			frame.SetRGBA(x, y, gray)
		}
	}

	c := NewCompositor(field)
	m := c.Compose(FrameInput{
		Geometry:   domain.NewGeometryWithCellSize(40, 30, 10),
		Palette:    domain.ParsePalette("AB"),
		FrameCount: 3,
		DownSample: 1,
		Camera:     frame,
	})

	assert.Equal(t, domain.SourceCamera, m.Mode)
	// luminance 200/255 ~ 0.78, *2 floors to 1
	for _, g := range m.Glyphs {
		assert.Equal(t, "B", g)
	}

	// Noise is sampled at (frameCount, row) in camera mode.
	require.Len(t, field.samples, m.Columns*m.Rows)
	for i, s := range field.samples {
		assert.Equal(t, 3.0, s[0])
		assert.Equal(t, float64(i/m.Columns), s[1])
	}
	require.NotNil(t, c.Backing())
	assert.Equal(t, image.Rect(0, 0, 40, 30), c.Backing().Bounds())
}

func TestComposeCameraDownSample(t *testing.T) {
	frame := image.NewRGBA(image.Rect(0, 0, 10, 10))
	c := NewCompositor(&recordingField{})
	m := c.Compose(FrameInput{
		Geometry:   domain.NewGeometryWithCellSize(40, 40, 10),
		Palette:    domain.ParsePalette("AB"),
		DownSample: 2,
		Camera:     frame,
	})

	assert.Equal(t, domain.SourceCamera, m.Mode)
	assert.Equal(t, image.Rect(0, 0, 20, 20), c.Backing().Bounds())
	// Black camera, zero noise.
	assert.Equal(t, "A", m.At(3, 3))
}

func TestComposeEmptyCameraFallsBackToNoise(t *testing.T) {
	c := NewCompositor(&recordingField{value: 0.6})
	m := c.Compose(FrameInput{
		Geometry: domain.NewGeometryWithCellSize(20, 20, 10),
		Palette:  domain.ParsePalette("AB"),
		Camera:   image.NewRGBA(image.Rect(0, 0, 0, 0)),
	})

	assert.Equal(t, domain.SourceNoise, m.Mode)
	assert.Equal(t, "B", m.At(0, 0))
}

func TestComposeEmptyPaletteUsesFallback(t *testing.T) {
	c := NewCompositor(&recordingField{value: 0.3})
	m := c.Compose(FrameInput{Geometry: domain.NewGeometryWithCellSize(30, 10, 10)})

	for _, g := range m.Glyphs {
		assert.Equal(t, domain.FallbackGlyph, g)
	}
}

func TestLuminanceAtOutOfBounds(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(1, 1, color.White)

	assert.InDelta(t, 1.0, luminanceAt(img, 1, 1), 1e-9)
	assert.Equal(t, 0.0, luminanceAt(img, 2, 2))
	assert.Equal(t, 0.0, luminanceAt(img, -1, 0))
}
