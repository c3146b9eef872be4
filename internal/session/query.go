package session

import (
	"log/slog"
	"math/rand"
	"net/url"
	"strings"

	"github.com/jwulff/trippy-go/internal/domain"
)

// Query parameter names carried in the share link.
const (
	ParamText    = "text"
	ParamBgColor = "bgColor"
	ParamFgColor = "fgColor"
)

// Settings are the user-facing values a link can carry.
type Settings struct {
	Text   string
	Colors domain.ColorPair
}

// ParseQuery reads settings from a raw query string. A leading "?" is allowed.
// Missing or empty text falls back to domain.DefaultText. Missing or malformed
// colors fall back to random ones.
func ParseQuery(raw string, rng *rand.Rand) Settings {
	values, err := url.ParseQuery(strings.TrimPrefix(raw, "?"))
	if err != nil {
		slog.Warn("malformed query, using defaults", "query", raw, "error", err)
	}

	s := Settings{Text: domain.DefaultText}
	if text := values.Get(ParamText); text != "" {
		s.Text = text
	}
	s.Colors.Background = colorParam(values, ParamBgColor, rng)
	s.Colors.Foreground = colorParam(values, ParamFgColor, rng)
	return s
}

func colorParam(values url.Values, key string, rng *rand.Rand) domain.RGB {
	raw := values.Get(key)
	if raw == "" {
		return domain.RandomRGB(rng)
	}
	c, err := domain.ParseHex(raw)
	if err != nil {
		slog.Warn("ignoring malformed color", "param", key, "value", raw, "error", err)
		return domain.RandomRGB(rng)
	}
	return c
}

// Encode renders settings as a query string with every parameter set.
func (s Settings) Encode() string {
	values := url.Values{}
	values.Set(ParamText, s.Text)
	values.Set(ParamBgColor, s.Colors.Background.Hex())
	values.Set(ParamFgColor, s.Colors.Foreground.Hex())
	return values.Encode()
}
