package domain

import (
	"math/rand"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHex(t *testing.T) {
	c, err := ParseHex("#111111")
	require.NoError(t, err)
	assert.Equal(t, NewRGB(0x11, 0x11, 0x11), c)

	c, err = ParseHex("#fff")
	require.NoError(t, err)
	assert.Equal(t, NewRGB(255, 255, 255), c)
}

func TestParseHexInvalid(t *testing.T) {
	for _, s := range []string{"", "red", "#12", "111111", "#gggggg"} {
		_, err := ParseHex(s)
		assert.Error(t, err, s)
	}
}

func TestHexRoundTrip(t *testing.T) {
	for _, s := range []string{"#000000", "#ffffff", "#111111", "#0a0b0c", "#ff8000"} {
		c, err := ParseHex(s)
		require.NoError(t, err)
		assert.Equal(t, s, c.Hex())
	}
}

func TestRandomColorPairIsSixDigitHex(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	re := regexp.MustCompile(`^#[0-9a-f]{6}$`)

	for i := 0; i < 100; i++ {
		pair := RandomColorPair(rng)
		assert.Regexp(t, re, pair.Background.Hex())
		assert.Regexp(t, re, pair.Foreground.Hex())
	}
}
