// Package pixoo drives a Divoom Pixoo64 as an icon display.
//
// The Pixoo64 has a local HTTP API at port 80.
// Endpoint: POST http://<ip>/post
//
// Icon frames are uploaded as single-picture HTTP GIFs:
// - 64x64 pixels, RGB, base64 encoded (12,288 bytes raw)
// - every upload needs a fresh PicID; the counter is reset with
//   Draw/ResetHttpGifId before it grows past the device limit
package pixoo

import (
	"encoding/base64"
	"fmt"

	"github.com/disintegration/imaging"
	"github.com/jwulff/trippy-go/internal/domain"
)

// DisplaySize is the Pixoo64 edge length.
const DisplaySize = 64

// PixooCommand is a command without arguments.
type PixooCommand struct {
	Command string `json:"Command"`
}

// FrameCommand represents a Draw/SendHttpGif command.
type FrameCommand struct {
	Command   string `json:"Command"`
	PicNum    int    `json:"PicNum"`
	PicWidth  int    `json:"PicWidth"`
	PicOffset int    `json:"PicOffset"`
	PicID     int    `json:"PicID"`
	PicSpeed  int    `json:"PicSpeed"`
	PicData   string `json:"PicData"`
}

// BrightnessCommand represents a Channel/SetBrightness command.
type BrightnessCommand struct {
	Command    string `json:"Command"`
	Brightness int    `json:"Brightness"`
}

// Response is the envelope every command answers with.
type Response struct {
	ErrorCode int `json:"error_code"`
}

// EncodeFrameToBase64 encodes frame pixels to base64 for the Pixoo API.
func EncodeFrameToBase64(frame *domain.Frame) string {
	return base64.StdEncoding.EncodeToString(frame.Pixels)
}

// DecodeBase64ToFrame decodes base64 to a frame.
func DecodeBase64ToFrame(encoded string, width, height int) (*domain.Frame, error) {
	pixels, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64: %w", err)
	}

	expectedSize := width * height * domain.BytesPerPixel
	if len(pixels) != expectedSize {
		return nil, fmt.Errorf("pixel data size mismatch: expected %d, got %d", expectedSize, len(pixels))
	}

	return &domain.Frame{
		Width:  width,
		Height: height,
		Pixels: pixels,
	}, nil
}

// FitFrame returns frame scaled to the display size. Square frames of the
// right size are returned as is.
func FitFrame(frame *domain.Frame) *domain.Frame {
	if frame.Width == DisplaySize && frame.Height == DisplaySize {
		return frame
	}
	out := domain.NewFrame(DisplaySize, DisplaySize)
	if frame.Width == 0 || frame.Height == 0 {
		return out
	}
	scaled := imaging.Fill(frame, DisplaySize, DisplaySize, imaging.Center, imaging.NearestNeighbor)
	for y := 0; y < DisplaySize; y++ {
		for x := 0; x < DisplaySize; x++ {
			c := scaled.NRGBAAt(x, y)
			out.SetPixel(x, y, domain.NewRGB(c.R, c.G, c.B))
		}
	}
	return out
}

// CreateIconCommands builds the upload of an animation: one SendHttpGif per
// frame, all sharing picID. speedMs is the per-frame duration.
func CreateIconCommands(frames []*domain.Frame, picID, speedMs int) []FrameCommand {
	cmds := make([]FrameCommand, 0, len(frames))
	for i, f := range frames {
		f = FitFrame(f)
		cmds = append(cmds, FrameCommand{
			Command:   "Draw/SendHttpGif",
			PicNum:    len(frames),
			PicWidth:  f.Width,
			PicOffset: i,
			PicID:     picID,
			PicSpeed:  speedMs,
			PicData:   EncodeFrameToBase64(f),
		})
	}
	return cmds
}

// CreateResetGifIDCommand creates a Draw/ResetHttpGifId command.
func CreateResetGifIDCommand() PixooCommand {
	return PixooCommand{Command: "Draw/ResetHttpGifId"}
}

// CreateDeviceTimeCommand creates a Device/GetDeviceTime command.
func CreateDeviceTimeCommand() PixooCommand {
	return PixooCommand{Command: "Device/GetDeviceTime"}
}

// CreateBrightnessCommand creates a Channel/SetBrightness command.
func CreateBrightnessCommand(brightness int) BrightnessCommand {
	brightness = max(0, min(100, brightness))
	return BrightnessCommand{
		Command:    "Channel/SetBrightness",
		Brightness: brightness,
	}
}
