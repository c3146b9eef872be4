package web

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"sync"

	"github.com/jwulff/trippy-go/internal/domain"
	"github.com/jwulff/trippy-go/internal/icon"
)

// Favicon keeps the latest icon frame as PNG for the page's <link rel=icon>.
type Favicon struct {
	mu  sync.RWMutex
	png []byte
	seq uint64
}

// ShowIcon implements icon.Sink.
func (f *Favicon) ShowIcon(_ context.Context, frame *domain.Frame) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, frame); err != nil {
		return fmt.Errorf("failed to encode favicon: %w", err)
	}
	f.mu.Lock()
	f.png = buf.Bytes()
	f.seq++
	f.mu.Unlock()
	return nil
}

// PNG returns the current icon and its sequence number. The sequence
// changes with every frame so clients can bust caches.
func (f *Favicon) PNG() ([]byte, uint64) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.png, f.seq
}

var _ icon.Sink = (*Favicon)(nil)
