package session

import (
	"math/rand"
	"net/url"
	"regexp"
	"strings"
	"testing"

	"github.com/jwulff/trippy-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var hexColor = regexp.MustCompile(`^#[0-9a-f]{6}$`)

func newRand() *rand.Rand {
	return rand.New(rand.NewSource(42))
}

func TestParseQueryTextAndBackground(t *testing.T) {
	s := ParseQuery("?text=Hi&bgColor=%23111111", newRand())

	assert.Equal(t, domain.Palette{"H", "i"}, domain.ParsePalette(s.Text))
	assert.Equal(t, "#111111", s.Colors.Background.Hex())
	assert.Regexp(t, hexColor, s.Colors.Foreground.Hex())
}

func TestParseQueryDefaults(t *testing.T) {
	for _, raw := range []string{"", "?", "text=", "other=1"} {
		s := ParseQuery(raw, newRand())
		assert.Equal(t, domain.DefaultText, s.Text, "query %q", raw)
		assert.Regexp(t, hexColor, s.Colors.Background.Hex())
		assert.Regexp(t, hexColor, s.Colors.Foreground.Hex())
	}
}

func TestParseQueryMalformedColorFallsBack(t *testing.T) {
	s := ParseQuery("fgColor=notacolor&bgColor=%23zzzzzz", newRand())
	assert.Regexp(t, hexColor, s.Colors.Foreground.Hex())
	assert.Regexp(t, hexColor, s.Colors.Background.Hex())
}

func TestParseQueryMalformedEscapes(t *testing.T) {
	s := ParseQuery("text=%zz", newRand())
	assert.Equal(t, domain.DefaultText, s.Text)
}

func TestSettingsEncodeRoundTrip(t *testing.T) {
	in := ParseQuery("text=a+b&bgColor=%23010203&fgColor=%23a0b0c0", newRand())
	out := ParseQuery(in.Encode(), newRand())
	assert.Equal(t, in, out)
}

func TestNewSession(t *testing.T) {
	s := New(Options{Query: "text=Hi", Width: 1920, Height: 1080, Rand: newRand()})
	st := s.Snapshot()

	assert.Equal(t, domain.Palette{"H", "i"}, st.Palette)
	assert.True(t, st.Webcam)
	assert.Equal(t, 0, st.FrameCount)
	assert.Equal(t, 137, st.Geometry.Columns)
	assert.Equal(t, 1.0, st.DownSample)
	assert.GreaterOrEqual(t, st.Params.ModifyX, 50.0)
	assert.Less(t, st.Params.ModifyX, 100.0)
	assert.Equal(t, "/?text=Hi", st.Link)
}

func TestSetTextUpdatesLinkAndFiresHook(t *testing.T) {
	s := New(Options{Path: "/trippy", Query: "text=Hi&keep=1", Rand: newRand()})
	calls := 0
	s.OnChange(func() { calls++ })

	s.SetText("Yo!")

	assert.Equal(t, 1, calls)
	assert.Equal(t, domain.Palette{"Y", "o", "!"}, s.Snapshot().Palette)

	link := s.Link()
	require.True(t, strings.HasPrefix(link, "/trippy?"))
	q, err := url.ParseQuery(strings.TrimPrefix(link, "/trippy?"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Yo!"}, q[ParamText], "text replaced, not appended")
	assert.Equal(t, "1", q.Get("keep"))
}

func TestSetTextEmptyGivesEmptyPalette(t *testing.T) {
	s := New(Options{Rand: newRand()})
	s.SetText("")
	st := s.Snapshot()
	assert.Empty(t, st.Palette)
	assert.Equal(t, domain.FallbackGlyph, st.Palette.CharFor(0.5))
}

func TestRandomizeColorsUpdatesLink(t *testing.T) {
	s := New(Options{Query: "bgColor=%23000000&fgColor=%23ffffff", Rand: newRand()})
	calls := 0
	s.OnChange(func() { calls++ })

	colors := s.RandomizeColors()

	assert.Equal(t, 1, calls)
	assert.Equal(t, colors, s.Snapshot().Colors)
	q, err := url.ParseQuery(strings.TrimPrefix(s.Link(), "/?"))
	require.NoError(t, err)
	assert.Equal(t, []string{colors.Background.Hex()}, q[ParamBgColor])
	assert.Equal(t, []string{colors.Foreground.Hex()}, q[ParamFgColor])
}

func TestLinkReflectsEditsAndReloads(t *testing.T) {
	s := New(Options{Rand: newRand()})
	s.SetText("Snow")
	colors := s.RandomizeColors()

	reloaded := New(Options{Query: strings.TrimPrefix(s.Link(), "/"), Rand: rand.New(rand.NewSource(7))})
	st := reloaded.Snapshot()
	assert.Equal(t, domain.ParsePalette("Snow"), st.Palette)
	assert.Equal(t, colors, st.Colors)
}

func TestSetWebcam(t *testing.T) {
	s := New(Options{Rand: newRand()})
	calls := 0
	s.OnChange(func() { calls++ })

	assert.False(t, s.SetWebcam(true))
	assert.True(t, s.SetWebcam(false))
	assert.False(t, s.Snapshot().Webcam)
	assert.Equal(t, 0, calls)
	assert.Equal(t, "/", s.Link())
}

func TestResizeAndAdvance(t *testing.T) {
	s := New(Options{Width: 100, Height: 100, Rand: newRand()})

	g := s.Resize(1080, 1920)
	assert.Equal(t, 18.0, g.DesiredCellSize)
	assert.Equal(t, g, s.Snapshot().Geometry)

	assert.Equal(t, 1, s.Advance())
	assert.Equal(t, 2, s.Advance())
	assert.Equal(t, 2, s.Snapshot().FrameCount)
}

func TestShareText(t *testing.T) {
	s := New(Options{Query: "text=Ho+ho", Rand: newRand()})
	assert.Equal(t, "Ho ho – get Xmas trippy", s.ShareText())
}
