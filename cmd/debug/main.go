package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/jwulff/trippy-go/internal/domain"
	"github.com/jwulff/trippy-go/internal/icon"
	"github.com/jwulff/trippy-go/internal/pixoo"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: debug <text> [IP]")
		os.Exit(1)
	}
	palette := domain.ParsePalette(os.Args[1])
	colors := domain.ColorPair{
		Background: domain.NewRGB(0, 0, 0),
		Foreground: domain.NewRGB(255, 255, 255),
	}

	frames, err := icon.RenderFrames(palette, colors, pixoo.DisplaySize)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	cmds := pixoo.CreateIconCommands(frames, 1, int(icon.DefaultInterval/time.Millisecond))

	fmt.Printf("Palette %q: %d frame(s)\n", palette.String(), len(frames))
	for _, cmd := range cmds {
		data, _ := json.Marshal(cmd)
		fmt.Printf("  %s offset=%d/%d id=%d speed=%dms data=%d chars json=%d bytes\n",
			cmd.Command, cmd.PicOffset, cmd.PicNum, cmd.PicID, cmd.PicSpeed, len(cmd.PicData), len(data))
	}

	if len(os.Args) < 3 {
		return
	}
	ip := os.Args[2]
	url := fmt.Sprintf("http://%s:%d/post", ip, pixoo.DefaultPort)
	fmt.Printf("\nSending to %s...\n", url)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := post(ctx, url, pixoo.CreateResetGifIDCommand()); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	for _, cmd := range cmds {
		if err := post(ctx, url, cmd); err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
	}
}

func post(ctx context.Context, url string, cmd any) error {
	jsonData, _ := json.Marshal(cmd)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	fmt.Printf("Status: %d Response: %s\n", resp.StatusCode, string(body))
	return nil
}
