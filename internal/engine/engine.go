// Package engine runs one trippy view: it owns the session, drives the render
// loop into a surface, keeps the icon animation in sync with edits, and
// acquires the camera in the background.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jwulff/trippy-go/internal/camera"
	"github.com/jwulff/trippy-go/internal/clock"
	"github.com/jwulff/trippy-go/internal/domain"
	"github.com/jwulff/trippy-go/internal/icon"
	"github.com/jwulff/trippy-go/internal/noise"
	"github.com/jwulff/trippy-go/internal/render"
	"github.com/jwulff/trippy-go/internal/schedule"
	"github.com/jwulff/trippy-go/internal/session"
	"github.com/jwulff/trippy-go/internal/share"
)

// Resizer is implemented by surfaces whose pixel size follows the viewport.
type Resizer interface {
	Resize(width, height int)
}

// Options configures an Engine. Session, Field and Surface are required.
type Options struct {
	Session *session.Session
	Field   noise.Field
	Surface render.Surface

	// Clock drives the debounce and icon timers. Defaults to the system clock.
	Clock    clock.Clock
	FPS      int
	Debounce time.Duration

	// Icons receives the palette animation. Optional.
	Icons *icon.Animator
	// Camera is opened when the webcam choice is on. Optional.
	Camera camera.Source
	// Share defaults to share.Unsupported.
	Share share.Target
	// BaseURL makes shared links absolute.
	BaseURL string
	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

type viewport struct {
	width, height int
}

// Engine is safe for concurrent use. Frames are rendered one at a time.
type Engine struct {
	session  *session.Session
	surface  render.Surface
	comp     *render.Compositor
	icons    *icon.Animator
	source   camera.Source
	target   share.Target
	baseURL  string
	logger   *slog.Logger
	loop     *schedule.Loop
	debounce *schedule.Debouncer
	resize   schedule.FrameThrottle[viewport]

	ctx    context.Context
	cancel context.CancelFunc

	// frameMu serialises frame rendering.
	frameMu sync.Mutex
	last    *render.Mosaic

	mu        sync.Mutex
	started   bool
	stream    camera.Stream
	acquiring bool
	cameraGen uint64
	cameraErr error
}

// New creates a stopped engine sized to its surface.
func New(opts Options) (*Engine, error) {
	if opts.Session == nil || opts.Field == nil || opts.Surface == nil {
		return nil, errors.New("engine needs a session, a noise field and a surface")
	}
	c := opts.Clock
	if c == nil {
		c = clock.New()
	}
	delay := opts.Debounce
	if delay <= 0 {
		delay = schedule.DefaultDebounce
	}
	target := opts.Share
	if target == nil {
		target = share.Unsupported{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{
		session: opts.Session,
		surface: opts.Surface,
		comp:    render.NewCompositor(opts.Field),
		icons:   opts.Icons,
		source:  opts.Camera,
		target:  target,
		baseURL: opts.BaseURL,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
	}
	e.loop = schedule.NewLoop(opts.FPS, func(time.Duration) { e.RenderFrame() })
	e.debounce = schedule.NewDebouncer(c, delay, e.restartIcons)
	e.session.OnChange(e.debounce.Trigger)

	w, h := opts.Surface.Size()
	e.session.Resize(w, h)
	return e, nil
}

// Start begins the render loop, the icon animation and camera acquisition.
// Starting twice is a no-op.
func (e *Engine) Start() {
	e.mu.Lock()
	if e.started {
		e.mu.Unlock()
		return
	}
	e.started = true
	e.mu.Unlock()

	e.logger.Info("engine starting", "fps", int(time.Second/e.loop.Interval()))
	e.restartIcons()
	if e.session.Snapshot().Webcam {
		e.acquireCamera()
	}
	e.loop.Start(e.ctx)
}

// Started reports whether Start has run.
func (e *Engine) Started() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.started
}

// Close stops every schedule and releases the camera.
func (e *Engine) Close() error {
	e.cancel()
	e.loop.Stop()
	e.debounce.Cancel()
	if e.icons != nil {
		e.icons.Stop()
	}
	e.mu.Lock()
	e.cameraGen++
	stream := e.stream
	e.stream = nil
	e.mu.Unlock()
	if stream != nil {
		return stream.Close()
	}
	return nil
}

// Resize requests a new viewport. It is applied at the start of the next
// frame; only the latest request between two frames counts.
func (e *Engine) Resize(width, height int) {
	e.resize.Request(viewport{width: width, height: height})
}

// SetText replaces the palette.
func (e *Engine) SetText(text string) {
	e.session.SetText(text)
}

// RandomizeColors picks a new color pair.
func (e *Engine) RandomizeColors() domain.ColorPair {
	return e.session.RandomizeColors()
}

// SetWebcam switches the webcam choice. Turning it off releases the stream;
// turning it on after Start acquires a fresh one.
func (e *Engine) SetWebcam(on bool) {
	if !e.session.SetWebcam(on) {
		return
	}
	if !on {
		e.releaseCamera()
		return
	}
	if e.Started() {
		e.acquireCamera()
	}
}

// ToggleWebcam flips the webcam choice and returns the new value.
func (e *Engine) ToggleWebcam() bool {
	on := !e.session.Snapshot().Webcam
	e.SetWebcam(on)
	return on
}

// Share sends the current text and link to the share target.
func (e *Engine) Share(ctx context.Context) (share.Payload, error) {
	link, err := share.ResolveURL(e.baseURL, e.session.Link())
	if err != nil {
		return share.Payload{}, err
	}
	p := share.Payload{Text: e.session.ShareText(), URL: link}
	if err := e.target.Share(ctx, p); err != nil {
		return p, fmt.Errorf("share failed: %w", err)
	}
	return p, nil
}

// Mode returns the source the next frame will use.
func (e *Engine) Mode() domain.SourceMode {
	webcam := e.session.Snapshot().Webcam
	e.mu.Lock()
	defer e.mu.Unlock()
	return domain.ResolveMode(webcam, e.stream != nil)
}

// Session exposes the session for read access.
func (e *Engine) Session() *session.Session {
	return e.session
}

// Last returns the most recently rendered mosaic, or nil.
func (e *Engine) Last() *render.Mosaic {
	e.frameMu.Lock()
	defer e.frameMu.Unlock()
	return e.last
}

// RenderFrame runs one frame: apply a pending resize, compose, draw, advance
// the frame counter. The render loop calls it once per tick.
func (e *Engine) RenderFrame() *render.Mosaic {
	e.frameMu.Lock()
	defer e.frameMu.Unlock()

	e.resize.Flush(func(v viewport) {
		if r, ok := e.surface.(Resizer); ok {
			r.Resize(v.width, v.height)
		}
		e.session.Resize(v.width, v.height)
	})

	st := e.session.Snapshot()
	in := render.FrameInput{
		Geometry:   st.Geometry,
		Palette:    st.Palette,
		Colors:     st.Colors,
		Params:     st.Params,
		FrameCount: st.FrameCount,
		DownSample: st.DownSample,
	}
	if st.Webcam {
		e.mu.Lock()
		if e.stream != nil {
			in.Camera = e.stream.Frame()
		}
		e.mu.Unlock()
	}

	m := e.comp.Compose(in)
	if err := e.surface.Draw(m); err != nil {
		e.logger.Warn("failed to draw frame", "frame", st.FrameCount, "error", err)
	}
	e.session.Advance()
	e.last = m
	return m
}

// CameraError returns why the last acquisition failed, if it did.
func (e *Engine) CameraError() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cameraErr
}

func (e *Engine) restartIcons() {
	if e.icons == nil {
		return
	}
	st := e.session.Snapshot()
	if err := e.icons.Start(st.Palette, st.Colors); err != nil {
		e.logger.Warn("failed to start icon animation", "error", err)
	}
}

// acquireCamera opens the source in the background. Frames keep rendering
// from noise until the stream arrives.
func (e *Engine) acquireCamera() {
	e.mu.Lock()
	if e.stream != nil || e.acquiring {
		e.mu.Unlock()
		return
	}
	e.acquiring = true
	e.cameraErr = nil
	e.cameraGen++
	gen := e.cameraGen
	e.mu.Unlock()

	results := camera.Acquire(e.ctx, e.source)
	go func() {
		res := <-results
		if res.Err != nil && !errors.Is(res.Err, context.Canceled) {
			e.logger.Warn("camera unavailable, staying on noise", "error", res.Err)
		}

		e.mu.Lock()
		current := gen == e.cameraGen
		if current {
			e.acquiring = false
		}
		if res.Err != nil {
			if current {
				e.cameraErr = res.Err
			}
			e.mu.Unlock()
			return
		}
		if !current {
			e.mu.Unlock()
			res.Stream.Close()
			return
		}
		e.stream = res.Stream
		e.mu.Unlock()
		e.logger.Info("camera stream active")
	}()
}

func (e *Engine) releaseCamera() {
	e.mu.Lock()
	e.cameraGen++
	e.acquiring = false
	stream := e.stream
	e.stream = nil
	e.mu.Unlock()

	if stream != nil {
		if err := stream.Close(); err != nil {
			e.logger.Warn("failed to release camera", "error", err)
		}
	}
}
