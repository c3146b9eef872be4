// Package storage provides storage abstractions for trippy: the share outbox,
// discovered icon devices and a few persisted settings.
package storage

import (
	"context"
	"time"
)

// Store is the interface for persistent storage.
type Store interface {
	// Share outbox
	SaveShare(ctx context.Context, share *Share) error
	ListShares(ctx context.Context, limit int) ([]*Share, error)
	CountShares(ctx context.Context) (int, error)

	// Device management
	SaveDevice(ctx context.Context, device *Device) error
	GetDevice(ctx context.Context, id string) (*Device, error)
	GetDevices(ctx context.Context) ([]*Device, error)
	DeleteDevice(ctx context.Context, id string) error

	// Settings
	GetConfig(ctx context.Context, key string) (string, error)
	SetConfig(ctx context.Context, key, value string) error
	DeleteConfig(ctx context.Context, key string) error

	// Lifecycle
	Close() error
}

// ConfigDefaultDevice is the settings key holding the ID of the device icons
// go to when no address is configured.
const ConfigDefaultDevice = "pixoo.default_device"

// Share is one shared link.
type Share struct {
	ID        int64
	Text      string
	URL       string
	CreatedAt time.Time
}

// NewShare creates a share record stamped now.
func NewShare(text, url string) *Share {
	return &Share{Text: text, URL: url, CreatedAt: time.Now()}
}

// Device represents a stored Pixoo device.
type Device struct {
	ID        string
	IP        string
	Name      string
	Type      string
	CreatedAt time.Time
	LastSeen  time.Time
}

// NewDevice creates a new device record.
func NewDevice(id, ip, name, deviceType string) *Device {
	now := time.Now()
	return &Device{
		ID:        id,
		IP:        ip,
		Name:      name,
		Type:      deviceType,
		CreatedAt: now,
		LastSeen:  now,
	}
}

// ErrNotFound is returned when a record is not found.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e ErrNotFound) Error() string {
	return e.Resource + " not found: " + e.ID
}

// IsNotFound checks if an error is a not found error.
func IsNotFound(err error) bool {
	_, ok := err.(ErrNotFound)
	return ok
}
