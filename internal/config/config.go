// Package config loads trippy settings from a YAML or TOML file and the
// environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration written as "500ms" in config files.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for both decoders.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the top-level configuration.
type Config struct {
	Listen     string   `yaml:"listen" toml:"listen"`
	BaseURL    string   `yaml:"base_url" toml:"base_url"`
	Width      int      `yaml:"width" toml:"width"`
	Height     int      `yaml:"height" toml:"height"`
	FPS        int      `yaml:"fps" toml:"fps"`
	DownSample float64  `yaml:"down_sample" toml:"down_sample"`
	Query      string   `yaml:"query" toml:"query"`
	Seed       int64    `yaml:"seed" toml:"seed"`
	Debounce   Duration `yaml:"debounce" toml:"debounce"`

	Camera CameraConfig `yaml:"camera" toml:"camera"`
	Icon   IconConfig   `yaml:"icon" toml:"icon"`
	Pixoo  PixooConfig  `yaml:"pixoo" toml:"pixoo"`
	Share  ShareConfig  `yaml:"share" toml:"share"`
	Log    LogConfig    `yaml:"log" toml:"log"`
}

// CameraConfig selects the camera source. File wins over URL.
type CameraConfig struct {
	File         string   `yaml:"file" toml:"file"`
	URL          string   `yaml:"url" toml:"url"`
	PollInterval Duration `yaml:"poll_interval" toml:"poll_interval"`
}

// IconConfig controls the icon animation.
type IconConfig struct {
	Interval Duration `yaml:"interval" toml:"interval"`
	Size     int      `yaml:"size" toml:"size"`
}

// PixooConfig points at a Pixoo64 used as an icon display.
type PixooConfig struct {
	IP         string `yaml:"ip" toml:"ip"`
	Port       int    `yaml:"port" toml:"port"`
	Brightness int    `yaml:"brightness" toml:"brightness"` // 0 leaves the device setting alone
}

// ShareConfig controls where shares are recorded.
type ShareConfig struct {
	DB string `yaml:"db" toml:"db"` // sqlite path; empty disables the outbox
}

// LogConfig controls logging.
type LogConfig struct {
	Level  string `yaml:"level" toml:"level"`   // debug | info | warn | error
	Format string `yaml:"format" toml:"format"` // text | json
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads path (YAML for .yaml/.yml, TOML for .toml), applies defaults and
// then environment overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := decode(path, data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}
	cfg.applyDefaults()
	if err := cfg.applyEnv(os.Getenv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	case ".toml":
		_, err := toml.Decode(string(data), cfg)
		return err
	default:
		return fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}
}

func (c *Config) applyDefaults() {
	if c.Listen == "" {
		c.Listen = ":8080"
	}
	if c.Width <= 0 {
		c.Width = 1280
	}
	if c.Height <= 0 {
		c.Height = 720
	}
	if c.FPS <= 0 {
		c.FPS = 30
	}
	if c.DownSample < 1 {
		c.DownSample = 1
	}
	if c.Debounce <= 0 {
		c.Debounce = Duration(500 * time.Millisecond)
	}
	if c.Camera.PollInterval <= 0 {
		c.Camera.PollInterval = Duration(200 * time.Millisecond)
	}
	if c.Icon.Interval <= 0 {
		c.Icon.Interval = Duration(500 * time.Millisecond)
	}
	if c.Icon.Size <= 0 {
		c.Icon.Size = 64
	}
	if c.Pixoo.Port <= 0 {
		c.Pixoo.Port = 80
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// applyEnv overrides settings from TRIPPY_* variables.
func (c *Config) applyEnv(getenv func(string) string) error {
	set := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	set("TRIPPY_LISTEN", &c.Listen)
	set("TRIPPY_BASE_URL", &c.BaseURL)
	set("TRIPPY_QUERY", &c.Query)
	set("TRIPPY_CAMERA_FILE", &c.Camera.File)
	set("TRIPPY_CAMERA_URL", &c.Camera.URL)
	set("TRIPPY_PIXOO_IP", &c.Pixoo.IP)
	set("TRIPPY_SHARE_DB", &c.Share.DB)
	set("TRIPPY_LOG_LEVEL", &c.Log.Level)
	set("TRIPPY_LOG_FORMAT", &c.Log.Format)

	if v := getenv("TRIPPY_FPS"); v != "" {
		fps, err := strconv.Atoi(v)
		if err != nil || fps <= 0 {
			return fmt.Errorf("invalid TRIPPY_FPS %q", v)
		}
		c.FPS = fps
	}
	return nil
}
