package icon

import (
	"context"
	"errors"

	"github.com/jwulff/trippy-go/internal/domain"
)

// Sink displays icon frames: a device, a favicon, a log.
type Sink interface {
	ShowIcon(ctx context.Context, frame *domain.Frame) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, frame *domain.Frame) error

// ShowIcon calls f.
func (f SinkFunc) ShowIcon(ctx context.Context, frame *domain.Frame) error {
	return f(ctx, frame)
}

// MultiSink fans a frame out to every sink. All sinks are tried; their errors
// are joined.
type MultiSink []Sink

// ShowIcon implements Sink.
func (m MultiSink) ShowIcon(ctx context.Context, frame *domain.Frame) error {
	var errs []error
	for _, s := range m {
		if err := s.ShowIcon(ctx, frame); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
