// Package camera provides the live image sources the renderer can read
// brightness from: still or animated image files and HTTP snapshot endpoints.
package camera

import (
	"context"
	"errors"
	"image"
	"time"

	"github.com/jwulff/trippy-go/internal/clock"
)

// ErrNoSource is returned when no camera source is configured.
var ErrNoSource = errors.New("no camera source configured")

// Stream is an open camera.
type Stream interface {
	// Frame returns the latest frame, or nil if none has arrived yet.
	Frame() image.Image
	// Close releases the camera. Frame returns nil afterwards.
	Close() error
}

// Source opens streams.
type Source interface {
	Open(ctx context.Context) (Stream, error)
}

// Result is the outcome of an asynchronous Open.
type Result struct {
	Stream Stream
	Err    error
}

// Acquire opens src in the background. The channel receives exactly one
// Result and is then closed. A nil src yields ErrNoSource.
func Acquire(ctx context.Context, src Source) <-chan Result {
	ch := make(chan Result, 1)
	if src == nil {
		ch <- Result{Err: ErrNoSource}
		close(ch)
		return ch
	}
	go func() {
		defer close(ch)
		stream, err := src.Open(ctx)
		if err == nil && ctx.Err() != nil {
			// Nobody is waiting for it anymore.
			stream.Close()
			stream, err = nil, ctx.Err()
		}
		ch <- Result{Stream: stream, Err: err}
	}()
	return ch
}

// New picks a source from configuration: a file wins over a URL. It returns
// nil when neither is set.
func New(file, url string, poll time.Duration, c clock.Clock) Source {
	switch {
	case file != "":
		return FileSource{Path: file, Clock: c}
	case url != "":
		src := NewHTTPSource(url)
		if poll > 0 {
			src.PollInterval = poll
		}
		return src
	}
	return nil
}
