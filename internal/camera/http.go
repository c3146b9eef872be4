package camera

import (
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/disintegration/imaging"
)

// DefaultPollInterval is how often an HTTP camera is polled.
const DefaultPollInterval = 200 * time.Millisecond

// DefaultTimeout bounds a single snapshot request.
const DefaultTimeout = 5 * time.Second

// HTTPSource polls a snapshot URL (JPEG, PNG, GIF) such as an IP camera's
// still-image endpoint.
type HTTPSource struct {
	URL          string
	PollInterval time.Duration
	HTTPClient   *http.Client
}

// NewHTTPSource creates a source with default polling and timeout.
func NewHTTPSource(url string) *HTTPSource {
	return &HTTPSource{
		URL:          url,
		PollInterval: DefaultPollInterval,
		HTTPClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

// Open fetches the first snapshot synchronously, so an unreachable camera
// fails here, then keeps polling in the background until Close.
func (s *HTTPSource) Open(ctx context.Context) (Stream, error) {
	client := s.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	interval := s.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	first, err := fetchSnapshot(ctx, client, s.URL)
	if err != nil {
		return nil, err
	}

	pollCtx, cancel := context.WithCancel(context.Background())
	st := &pollStream{latest: first, cancel: cancel, done: make(chan struct{})}
	go st.poll(pollCtx, client, s.URL, interval)
	return st, nil
}

func fetchSnapshot(ctx context.Context, client *http.Client, url string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch snapshot: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(body))
	}

	img, err := imaging.Decode(resp.Body, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return img, nil
}

type pollStream struct {
	mu     sync.Mutex
	latest image.Image
	closed bool
	cancel context.CancelFunc
	done   chan struct{}
}

func (s *pollStream) poll(ctx context.Context, client *http.Client, url string, interval time.Duration) {
	defer close(s.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		img, err := fetchSnapshot(ctx, client, url)
		if err != nil {
			if ctx.Err() == nil {
				slog.Debug("camera snapshot failed", "url", url, "error", err)
			}
			continue
		}
		s.mu.Lock()
		if !s.closed {
			s.latest = img
		}
		s.mu.Unlock()
	}
}

func (s *pollStream) Frame() image.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	return s.latest
}

func (s *pollStream) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.latest = nil
	s.mu.Unlock()

	s.cancel()
	<-s.done
	return nil
}
