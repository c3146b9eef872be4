// Package share hands the current text and link to a share target.
package share

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/jwulff/trippy-go/internal/storage"
)

// ErrUnsupported is returned by targets that cannot share on this host.
var ErrUnsupported = errors.New("sharing is not supported")

// Payload is what gets shared.
type Payload struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

// Message renders the payload as one line.
func (p Payload) Message() string {
	if p.URL == "" {
		return p.Text
	}
	return p.Text + " " + p.URL
}

// Target delivers a payload.
type Target interface {
	Share(ctx context.Context, p Payload) error
}

// ResolveURL makes a relative link absolute against base. Base may be empty,
// in which case link is returned unchanged.
func ResolveURL(base, link string) (string, error) {
	if base == "" {
		return link, nil
	}
	b, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid base url: %w", err)
	}
	l, err := url.Parse(link)
	if err != nil {
		return "", fmt.Errorf("invalid link: %w", err)
	}
	return b.ResolveReference(l).String(), nil
}

// Unsupported is the target used when nothing can share.
type Unsupported struct{}

// Share always fails with ErrUnsupported.
func (Unsupported) Share(context.Context, Payload) error {
	return ErrUnsupported
}

// LogTarget writes the payload to a logger.
type LogTarget struct {
	Logger *slog.Logger
}

// Share implements Target.
func (t LogTarget) Share(ctx context.Context, p Payload) error {
	logger := t.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "shared", "text", p.Text, "url", p.URL)
	return nil
}

// StoreTarget appends the payload to the share outbox.
type StoreTarget struct {
	Store storage.Store
}

// Share implements Target.
func (t StoreTarget) Share(ctx context.Context, p Payload) error {
	if t.Store == nil {
		return ErrUnsupported
	}
	if err := t.Store.SaveShare(ctx, storage.NewShare(p.Text, p.URL)); err != nil {
		return fmt.Errorf("failed to record share: %w", err)
	}
	return nil
}

// Multi shares to every target in order and stops at the first failure.
type Multi []Target

// Share implements Target.
func (m Multi) Share(ctx context.Context, p Payload) error {
	if len(m) == 0 {
		return ErrUnsupported
	}
	for _, t := range m {
		if err := t.Share(ctx, p); err != nil {
			return err
		}
	}
	return nil
}
