package pixoo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/jwulff/trippy-go/internal/domain"
	"github.com/jwulff/trippy-go/internal/icon"
)

// DefaultPort is the default Pixoo HTTP API port.
const DefaultPort = 80

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 5 * time.Second

// maxPicID is where the device's GIF id counter is reset.
const maxPicID = 60

// Client is an HTTP client for a Pixoo device. It implements icon.Sink.
type Client struct {
	IP         string
	Port       int
	HTTPClient *http.Client
	testURL    string // For testing with httptest

	mu    sync.Mutex
	picID int // last id used; 0 means the counter needs a reset
}

// NewClient creates a new Pixoo client with default settings.
func NewClient(ip string) *Client {
	return NewClientWithPort(ip, DefaultPort)
}

// NewClientWithPort creates a new Pixoo client with a custom port.
func NewClientWithPort(ip string, port int) *Client {
	return &Client{
		IP:   ip,
		Port: port,
		HTTPClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

// Endpoint returns the full API endpoint URL.
func (c *Client) Endpoint() string {
	if c.testURL != "" {
		return c.testURL
	}
	return fmt.Sprintf("http://%s:%d/post", c.IP, c.Port)
}

// sendCommand posts a command and checks both the HTTP status and the
// device's error_code.
func (c *Client) sendCommand(ctx context.Context, command any) ([]byte, error) {
	data, err := json.Marshal(command)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal command: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint(), bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(body))
	}

	var r Response
	if json.Unmarshal(body, &r) == nil && r.ErrorCode != 0 {
		return nil, fmt.Errorf("device error code %d", r.ErrorCode)
	}

	return body, nil
}

// nextPicID hands out upload ids, resetting the device counter first when
// needed.
func (c *Client) nextPicID(ctx context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.picID == 0 || c.picID >= maxPicID {
		if _, err := c.sendCommand(ctx, CreateResetGifIDCommand()); err != nil {
			return 0, fmt.Errorf("failed to reset gif id: %w", err)
		}
		c.picID = 0
	}
	c.picID++
	return c.picID, nil
}

// ShowIcon displays a single frame, scaled to the display if needed.
func (c *Client) ShowIcon(ctx context.Context, frame *domain.Frame) error {
	return c.SendAnimation(ctx, []*domain.Frame{frame}, 1000)
}

// SendAnimation uploads frames as one looping animation.
func (c *Client) SendAnimation(ctx context.Context, frames []*domain.Frame, speedMs int) error {
	if len(frames) == 0 {
		return nil
	}
	id, err := c.nextPicID(ctx)
	if err != nil {
		return err
	}
	for _, cmd := range CreateIconCommands(frames, id, speedMs) {
		if _, err := c.sendCommand(ctx, cmd); err != nil {
			return fmt.Errorf("failed to send frame %d: %w", cmd.PicOffset, err)
		}
	}
	return nil
}

// GetDeviceTime queries the device time.
func (c *Client) GetDeviceTime(ctx context.Context) ([]byte, error) {
	return c.sendCommand(ctx, CreateDeviceTimeCommand())
}

// SetBrightness sets the display brightness (0-100).
func (c *Client) SetBrightness(ctx context.Context, brightness int) error {
	_, err := c.sendCommand(ctx, CreateBrightnessCommand(brightness))
	return err
}

// IsReachable checks if the device is reachable.
func (c *Client) IsReachable(ctx context.Context) bool {
	_, err := c.GetDeviceTime(ctx)
	return err == nil
}

var _ icon.Sink = (*Client)(nil)
