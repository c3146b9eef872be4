package engine

import (
	"bytes"
	"context"
	"errors"
	"image"
	"log/slog"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/jwulff/trippy-go/internal/camera"
	"github.com/jwulff/trippy-go/internal/clock"
	"github.com/jwulff/trippy-go/internal/domain"
	"github.com/jwulff/trippy-go/internal/icon"
	"github.com/jwulff/trippy-go/internal/render"
	"github.com/jwulff/trippy-go/internal/session"
	"github.com/jwulff/trippy-go/internal/share"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSurface struct {
	mu      sync.Mutex
	w, h    int
	drawn   []*render.Mosaic
	resizes int
}

func (s *fakeSurface) Size() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w, s.h
}

func (s *fakeSurface) Draw(m *render.Mosaic) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drawn = append(s.drawn, m)
	return nil
}

func (s *fakeSurface) Resize(w, h int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.w, s.h = w, h
	s.resizes++
}

type constField float64

func (f constField) Sample(float64, float64) float64 { return float64(f) }

type fakeStream struct {
	mu     sync.Mutex
	img    image.Image
	closed bool
}

func (s *fakeStream) Frame() image.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	return s.img
}

func (s *fakeStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fakeStream) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

type fakeSource struct {
	mu      sync.Mutex
	streams []*fakeStream
	err     error
}

func (s *fakeSource) Open(context.Context) (camera.Stream, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	st := &fakeStream{img: img}
	s.streams = append(s.streams, st)
	return st, nil
}

func (s *fakeSource) opened() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.streams)
}

type countingSink struct {
	mu     sync.Mutex
	frames []*domain.Frame
}

func (s *countingSink) ShowIcon(_ context.Context, f *domain.Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = append(s.frames, f)
	return nil
}

func (s *countingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.frames)
}

type fixture struct {
	engine  *Engine
	surface *fakeSurface
	clock   *clock.Mock
	sink    *countingSink
	icons   *icon.Animator
	logs    *bytes.Buffer
}

func newFixture(t *testing.T, query string, mod func(*Options)) *fixture {
	t.Helper()
	f := &fixture{
		surface: &fakeSurface{w: 160, h: 90},
		clock:   clock.NewMock(time.Unix(0, 0)),
		sink:    &countingSink{},
		logs:    &bytes.Buffer{},
	}
	f.icons = icon.NewAnimator(f.clock, f.sink, icon.WithSize(16))
	opts := Options{
		Session: session.New(session.Options{Query: query, Rand: rand.New(rand.NewSource(1))}),
		Field:   constField(0),
		Surface: f.surface,
		Clock:   f.clock,
		FPS:     1,
		Icons:   f.icons,
		Logger:  slog.New(slog.NewTextHandler(f.logs, nil)),
	}
	if mod != nil {
		mod(&opts)
	}
	e, err := New(opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	f.engine = e
	return f
}

func TestNewRequiresCollaborators(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}

func TestNewSizesSessionToSurface(t *testing.T) {
	f := newFixture(t, "", nil)
	g := f.engine.Session().Snapshot().Geometry
	assert.Equal(t, 160, g.Width)
	assert.Equal(t, 90, g.Height)
}

func TestRenderFrameAdvances(t *testing.T) {
	f := newFixture(t, "text=AB", nil)

	m0 := f.engine.RenderFrame()
	m1 := f.engine.RenderFrame()

	assert.Equal(t, 0, m0.FrameCount)
	assert.Equal(t, 1, m1.FrameCount)
	assert.Equal(t, 2, f.engine.Session().Snapshot().FrameCount)
	assert.Equal(t, domain.SourceNoise, m0.Mode)
	assert.Equal(t, "A", m0.At(0, 0))
	assert.Same(t, m1, f.engine.Last())
	assert.Len(t, f.surface.drawn, 2)
}

func TestResizeAppliesLatestOnNextFrame(t *testing.T) {
	f := newFixture(t, "", nil)

	f.engine.Resize(800, 600)
	f.engine.Resize(1024, 768)
	f.engine.Resize(1920, 1080)
	assert.Equal(t, 90, f.engine.Session().Snapshot().Geometry.Height, "nothing applied before the frame")

	m := f.engine.RenderFrame()
	assert.Equal(t, 1, f.surface.resizes)
	assert.Equal(t, 137, m.Columns)
	assert.Equal(t, 1920, f.engine.Session().Snapshot().Geometry.Width)

	f.engine.RenderFrame()
	assert.Equal(t, 1, f.surface.resizes)
}

func TestEditsRestartIconsAfterQuietPeriod(t *testing.T) {
	f := newFixture(t, "text=AB", nil)

	for _, text := range []string{"X", "XY", "XYZ"} {
		f.engine.SetText(text)
		f.clock.Advance(100 * time.Millisecond)
	}
	f.engine.RandomizeColors()
	assert.Equal(t, 0, f.sink.count())

	f.clock.Advance(499 * time.Millisecond)
	assert.Equal(t, 0, f.sink.count())
	f.clock.Advance(time.Millisecond)
	assert.Equal(t, 1, f.sink.count())
	assert.Len(t, f.icons.Frames(), 3)

	// The mosaic picks up the edit on the very next frame.
	assert.Equal(t, "X", f.engine.RenderFrame().At(0, 0))
}

func TestStartShowsIconAndIsIdempotent(t *testing.T) {
	f := newFixture(t, "text=AB", func(o *Options) { o.Camera = nil })

	f.engine.Start()
	f.engine.Start()

	assert.True(t, f.engine.Started())
	assert.Equal(t, 1, f.sink.count())
	assert.Equal(t, 1, f.clock.Pending())
}

func TestCameraAcquiredInBackground(t *testing.T) {
	src := &fakeSource{}
	f := newFixture(t, "text=AB", func(o *Options) { o.Camera = src })
	assert.Equal(t, domain.SourceNoise, f.engine.Mode())

	f.engine.Start()
	require.Eventually(t, func() bool {
		return f.engine.Mode() == domain.SourceCamera
	}, 2*time.Second, 5*time.Millisecond)

	m := f.engine.RenderFrame()
	assert.Equal(t, domain.SourceCamera, m.Mode)
	// White camera, zero noise: luminance rounds to just under 1, so slot 1.
	assert.Equal(t, "B", m.At(1, 1))
}

func TestWebcamToggleReleasesAndReacquires(t *testing.T) {
	src := &fakeSource{}
	f := newFixture(t, "", func(o *Options) { o.Camera = src })
	f.engine.Start()
	require.Eventually(t, func() bool { return f.engine.Mode() == domain.SourceCamera }, 2*time.Second, 5*time.Millisecond)

	assert.False(t, f.engine.ToggleWebcam())
	assert.Equal(t, domain.SourceNoise, f.engine.Mode())
	assert.True(t, src.streams[0].isClosed())
	assert.Equal(t, domain.SourceNoise, f.engine.RenderFrame().Mode)

	assert.True(t, f.engine.ToggleWebcam())
	require.Eventually(t, func() bool { return f.engine.Mode() == domain.SourceCamera }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, 2, src.opened())
}

func TestWebcamChoiceBeforeStartDoesNotAcquire(t *testing.T) {
	src := &fakeSource{}
	f := newFixture(t, "", func(o *Options) { o.Camera = src })

	f.engine.SetWebcam(false)
	f.engine.SetWebcam(true)
	assert.Equal(t, 0, src.opened())
}

func TestCameraFailureStaysOnNoise(t *testing.T) {
	src := &fakeSource{err: errors.New("permission denied")}
	f := newFixture(t, "", func(o *Options) { o.Camera = src })

	f.engine.Start()
	require.Eventually(t, func() bool { return f.engine.CameraError() != nil }, 2*time.Second, 5*time.Millisecond)

	assert.Equal(t, domain.SourceNoise, f.engine.Mode())
	assert.Equal(t, domain.SourceNoise, f.engine.RenderFrame().Mode)
	assert.Contains(t, f.logs.String(), "camera unavailable")
}

func TestNoCameraSourceStaysOnNoise(t *testing.T) {
	f := newFixture(t, "", nil)
	f.engine.Start()
	require.Eventually(t, func() bool {
		return errors.Is(f.engine.CameraError(), camera.ErrNoSource)
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, domain.SourceNoise, f.engine.Mode())
}

func TestShareUnsupported(t *testing.T) {
	f := newFixture(t, "", nil)
	_, err := f.engine.Share(context.Background())
	assert.ErrorIs(t, err, share.ErrUnsupported)
}

func TestSharePayload(t *testing.T) {
	var buf bytes.Buffer
	f := newFixture(t, "text=Ho", func(o *Options) {
		o.Share = share.LogTarget{Logger: slog.New(slog.NewTextHandler(&buf, nil))}
		o.BaseURL = "http://localhost:8080/"
	})

	p, err := f.engine.Share(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Ho – get Xmas trippy", p.Text)
	assert.Equal(t, "http://localhost:8080/?text=Ho", p.URL)
	assert.Contains(t, buf.String(), "shared")
}

func TestLoopRendersAfterStart(t *testing.T) {
	f := newFixture(t, "", func(o *Options) { o.FPS = 100 })
	f.engine.Start()

	assert.Eventually(t, func() bool {
		return f.engine.Session().Snapshot().FrameCount >= 3
	}, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, f.engine.Close())
	n := f.engine.Session().Snapshot().FrameCount
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, n, f.engine.Session().Snapshot().FrameCount)
}
