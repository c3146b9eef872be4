package camera

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/jwulff/trippy-go/internal/clock"
)

// minGIFDelay is used for GIF frames that declare no delay.
const minGIFDelay = 100 * time.Millisecond

// FileSource plays an image file as a camera. Animated GIFs loop using their
// frame delays; anything else is a still frame.
type FileSource struct {
	Path  string
	Clock clock.Clock
}

// Open decodes the file.
func (s FileSource) Open(ctx context.Context) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c := s.Clock
	if c == nil {
		c = clock.New()
	}

	if strings.EqualFold(filepath.Ext(s.Path), ".gif") {
		frames, delays, err := decodeGIF(s.Path)
		if err != nil {
			return nil, err
		}
		return newLoopStream(c, frames, delays), nil
	}

	img, err := imaging.Open(s.Path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to open camera file: %w", err)
	}
	return newLoopStream(c, []image.Image{img}, nil), nil
}

// decodeGIF flattens every GIF frame onto the canvas so partial frames
// render complete.
func decodeGIF(path string) ([]image.Image, []time.Duration, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open camera file: %w", err)
	}
	defer f.Close()

	g, err := gif.DecodeAll(f)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode gif: %w", err)
	}
	if len(g.Image) == 0 {
		return nil, nil, fmt.Errorf("gif has no frames: %s", path)
	}

	bounds := image.Rect(0, 0, g.Config.Width, g.Config.Height)
	if bounds.Empty() {
		bounds = g.Image[0].Bounds()
	}
	canvas := image.NewRGBA(bounds)
	frames := make([]image.Image, 0, len(g.Image))
	delays := make([]time.Duration, 0, len(g.Image))
	for i, p := range g.Image {
		draw.Draw(canvas, p.Bounds(), p, p.Bounds().Min, draw.Over)
		frames = append(frames, imaging.Clone(canvas))

		d := time.Duration(g.Delay[i]) * 10 * time.Millisecond
		if d <= 0 {
			d = minGIFDelay
		}
		delays = append(delays, d)
	}
	return frames, delays, nil
}

// loopStream cycles decoded frames against the clock.
type loopStream struct {
	clock  clock.Clock
	start  time.Time
	frames []image.Image
	delays []time.Duration
	total  time.Duration

	mu     sync.Mutex
	closed bool
}

func newLoopStream(c clock.Clock, frames []image.Image, delays []time.Duration) *loopStream {
	s := &loopStream{clock: c, start: c.Now(), frames: frames, delays: delays}
	for _, d := range delays {
		s.total += d
	}
	return s
}

func (s *loopStream) Frame() image.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || len(s.frames) == 0 {
		return nil
	}
	if len(s.frames) == 1 || s.total <= 0 {
		return s.frames[0]
	}

	at := s.clock.Now().Sub(s.start) % s.total
	for i, d := range s.delays {
		if at < d {
			return s.frames[i]
		}
		at -= d
	}
	return s.frames[len(s.frames)-1]
}

func (s *loopStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
