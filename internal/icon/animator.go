// Package icon renders the palette as a cycling sequence of small square
// frames, one glyph per frame, for favicons and pixel displays.
package icon

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jwulff/trippy-go/internal/clock"
	"github.com/jwulff/trippy-go/internal/domain"
	"github.com/jwulff/trippy-go/internal/render"
)

// DefaultInterval is how long each icon frame is shown.
const DefaultInterval = 500 * time.Millisecond

// fontRatio is the glyph size relative to the frame edge (48px on 64px).
const fontRatio = 0.75

// RenderFrames draws one size x size frame per palette glyph: background fill,
// glyph centered in the foreground color. An empty palette yields a single
// frame showing the fallback glyph.
func RenderFrames(palette domain.Palette, colors domain.ColorPair, size int) ([]*domain.Frame, error) {
	face, err := render.NewFace(float64(size) * fontRatio)
	if err != nil {
		return nil, fmt.Errorf("failed to create icon face: %w", err)
	}

	glyphs := palette.Glyphs()
	frames := make([]*domain.Frame, 0, len(glyphs))
	for _, g := range glyphs {
		frame := domain.NewFrameWithColor(size, size, colors.Background)
		render.DrawGlyphCentered(frame, face, g, size/2, size/2, colors.Foreground)
		frames = append(frames, frame)
	}
	return frames, nil
}

// Animator cycles icon frames into a Sink. It is either idle or has exactly
// one tick scheduled.
type Animator struct {
	clock    clock.Clock
	sink     Sink
	interval time.Duration
	size     int

	mu     sync.Mutex
	timer  clock.Timer
	gen    uint64
	frames []*domain.Frame
	idx    int
}

// Option configures an Animator.
type Option func(*Animator)

// WithInterval sets the per-frame display time.
func WithInterval(d time.Duration) Option {
	return func(a *Animator) {
		if d > 0 {
			a.interval = d
		}
	}
}

// WithSize sets the frame edge length in pixels.
func WithSize(size int) Option {
	return func(a *Animator) {
		if size > 0 {
			a.size = size
		}
	}
}

// NewAnimator creates an idle animator.
func NewAnimator(c clock.Clock, sink Sink, opts ...Option) *Animator {
	a := &Animator{
		clock:    c,
		sink:     sink,
		interval: DefaultInterval,
		size:     domain.IconSize,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Start cancels any scheduled tick, re-renders the frames and shows the first
// one immediately.
func (a *Animator) Start(palette domain.Palette, colors domain.ColorPair) error {
	frames, err := RenderFrames(palette, colors, a.size)
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.cancelLocked()
	a.frames = frames
	a.idx = 0
	gen := a.gen
	a.mu.Unlock()

	a.tick(gen)
	return nil
}

// Stop cancels the scheduled tick.
func (a *Animator) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cancelLocked()
}

// Frames returns the frames of the current cycle.
func (a *Animator) Frames() []*domain.Frame {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]*domain.Frame(nil), a.frames...)
}

// Scheduled reports whether a tick is pending.
func (a *Animator) Scheduled() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.timer != nil
}

func (a *Animator) cancelLocked() {
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.gen++
}

func (a *Animator) tick(gen uint64) {
	a.mu.Lock()
	if gen != a.gen || len(a.frames) == 0 {
		a.mu.Unlock()
		return
	}
	frame := a.frames[a.idx%len(a.frames)]
	a.idx++
	a.timer = a.clock.AfterFunc(a.interval, func() { a.tick(gen) })
	a.mu.Unlock()

	if a.sink == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), a.interval)
	defer cancel()
	if err := a.sink.ShowIcon(ctx, frame); err != nil {
		slog.Warn("icon sink failed", "error", err)
	}
}
