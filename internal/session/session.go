// Package session holds the mutable state of one trippy view: palette, colors,
// webcam choice, frame counter and viewport, plus the shareable link that
// mirrors them.
package session

import (
	"math/rand"
	"net/url"
	"strings"
	"sync"

	"github.com/jwulff/trippy-go/internal/domain"
	"github.com/jwulff/trippy-go/internal/noise"
)

// ShareSuffix is appended to the palette text in share messages.
const ShareSuffix = " – get Xmas trippy"

// Options configures a new Session.
type Options struct {
	// Path is the link path, "/" when empty.
	Path string
	// Query is the initial query string.
	Query string
	Width  int
	Height int
	// DownSample divides the camera raster resolution; 1 when below 1.
	DownSample float64
	// Rand drives color and noise parameter choices. Seeded from Seed when nil.
	Rand *rand.Rand
	Seed int64
}

// State is a consistent copy of everything a frame depends on.
type State struct {
	Palette    domain.Palette
	Colors     domain.ColorPair
	Webcam     bool
	FrameCount int
	Geometry   domain.Geometry
	Params     noise.Params
	DownSample float64
	Link       string
}

// Session is safe for concurrent use. The change hook runs after palette or
// color edits, outside the session lock.
type Session struct {
	mu         sync.Mutex
	rng        *rand.Rand
	path       string
	query      url.Values
	palette    domain.Palette
	colors     domain.ColorPair
	webcam     bool
	frameCount int
	geometry   domain.Geometry
	params     noise.Params
	downSample float64
	onChange   func()
}

// New creates a session from opts. The webcam choice starts on.
func New(opts Options) *Session {
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(opts.Seed))
	}
	path := opts.Path
	if path == "" {
		path = "/"
	}
	query, _ := url.ParseQuery(strings.TrimPrefix(opts.Query, "?"))
	if query == nil {
		query = url.Values{}
	}
	ds := opts.DownSample
	if ds < 1 {
		ds = 1
	}

	settings := ParseQuery(opts.Query, rng)
	return &Session{
		rng:        rng,
		path:       path,
		query:      query,
		palette:    domain.ParsePalette(settings.Text),
		colors:     settings.Colors,
		webcam:     true,
		geometry:   domain.NewGeometry(opts.Width, opts.Height),
		params:     noise.NewParams(rng),
		downSample: ds,
	}
}

// OnChange registers fn to run after every palette or color edit.
func (s *Session) OnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

// Snapshot returns the current state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		Palette:    append(domain.Palette(nil), s.palette...),
		Colors:     s.colors,
		Webcam:     s.webcam,
		FrameCount: s.frameCount,
		Geometry:   s.geometry,
		Params:     s.params,
		DownSample: s.downSample,
		Link:       s.linkLocked(),
	}
}

// SetText replaces the palette and the text parameter of the link.
func (s *Session) SetText(text string) {
	s.mu.Lock()
	s.palette = domain.ParsePalette(text)
	s.query.Set(ParamText, text)
	hook := s.onChange
	s.mu.Unlock()

	if hook != nil {
		hook()
	}
}

// RandomizeColors picks a new random color pair and records it in the link.
func (s *Session) RandomizeColors() domain.ColorPair {
	s.mu.Lock()
	s.colors = domain.RandomColorPair(s.rng)
	s.query.Set(ParamFgColor, s.colors.Foreground.Hex())
	s.query.Set(ParamBgColor, s.colors.Background.Hex())
	colors := s.colors
	hook := s.onChange
	s.mu.Unlock()

	if hook != nil {
		hook()
	}
	return colors
}

// SetWebcam records the webcam choice. It reports whether the choice changed.
func (s *Session) SetWebcam(on bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := s.webcam != on
	s.webcam = on
	return changed
}

// Resize recomputes the geometry for a new viewport.
func (s *Session) Resize(width, height int) domain.Geometry {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.geometry = domain.NewGeometry(width, height)
	return s.geometry
}

// Advance increments the frame counter and returns the new value.
func (s *Session) Advance() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frameCount++
	return s.frameCount
}

// Link returns the current relative link: path plus encoded query.
func (s *Session) Link() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.linkLocked()
}

func (s *Session) linkLocked() string {
	if len(s.query) == 0 {
		return s.path
	}
	return s.path + "?" + s.query.Encode()
}

// ShareText is the message shared alongside the link.
func (s *Session) ShareText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.palette.String() + ShareSuffix
}
