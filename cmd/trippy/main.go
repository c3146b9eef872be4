// Package main is the entry point for the trippy renderer.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/jwulff/trippy-go/internal/camera"
	"github.com/jwulff/trippy-go/internal/clock"
	"github.com/jwulff/trippy-go/internal/config"
	"github.com/jwulff/trippy-go/internal/engine"
	"github.com/jwulff/trippy-go/internal/icon"
	"github.com/jwulff/trippy-go/internal/logging"
	"github.com/jwulff/trippy-go/internal/noise"
	"github.com/jwulff/trippy-go/internal/pixoo"
	"github.com/jwulff/trippy-go/internal/render"
	"github.com/jwulff/trippy-go/internal/session"
	"github.com/jwulff/trippy-go/internal/share"
	"github.com/jwulff/trippy-go/internal/storage"
	"github.com/jwulff/trippy-go/internal/storage/sqlite"
	"github.com/jwulff/trippy-go/internal/terminal"
	"github.com/jwulff/trippy-go/internal/web"
)

const version = "0.1.0-dev"

func main() {
	if len(os.Args) < 2 {
		showUsage()
		return
	}

	cmd, args := os.Args[1], os.Args[2:]
	if cmd == "version" {
		fmt.Println("trippy", version)
		return
	}

	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	configPath := fs.String("config", os.Getenv("TRIPPY_CONFIG"), "path to a .yaml or .toml config file")
	logPath := fs.String("log", "trippy.log", "log file for the term command")
	_ = fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch cmd {
	case "serve":
		slog.SetDefault(logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format))
		err = serve(ctx, cfg)
	case "term":
		err = runTerminal(ctx, cfg, *logPath)
	case "preview":
		slog.SetDefault(logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format))
		err = preview(cfg)
	case "scan":
		slog.SetDefault(logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format))
		err = scan(ctx, cfg)
	default:
		showUsage()
		return
	}
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func showUsage() {
	fmt.Println("Usage:")
	fmt.Println("  trippy serve [-config FILE]     - Serve the animation over HTTP")
	fmt.Println("  trippy term [-config FILE]      - Run the animation in this terminal")
	fmt.Println("  trippy preview [-config FILE]   - Print one frame as text")
	fmt.Println("  trippy scan [-config FILE]      - Find Pixoo devices and remember the first")
	fmt.Println("  trippy version                  - Print the version")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  TRIPPY_CONFIG       - Config file used when -config is not given")
	fmt.Println("  TRIPPY_LISTEN       - HTTP listen address (default :8080)")
	fmt.Println("  TRIPPY_QUERY        - Initial query, e.g. text=Ho&bg_color=%23000000")
	fmt.Println("  TRIPPY_CAMERA_FILE  - Image or GIF used as the camera")
	fmt.Println("  TRIPPY_CAMERA_URL   - Snapshot URL polled as the camera")
	fmt.Println("  TRIPPY_PIXOO_IP     - Pixoo64 that mirrors the icon animation")
	fmt.Println("  TRIPPY_SHARE_DB     - SQLite file recording shares")
}

// app is an engine and the optional resources it was built with.
type app struct {
	engine *engine.Engine
	store  *sqlite.Store
}

func (a *app) Close() {
	if a.engine != nil {
		_ = a.engine.Close()
	}
	if a.store != nil {
		_ = a.store.Close()
	}
}

// build wires a session, noise field, icon sinks, camera and share targets
// around surface.
func build(ctx context.Context, cfg *config.Config, surface render.Surface, sinks icon.MultiSink, logger *slog.Logger) (*app, error) {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	w, h := surface.Size()
	sess := session.New(session.Options{
		Query:      cfg.Query,
		Width:      w,
		Height:     h,
		DownSample: cfg.DownSample,
		Rand:       rng,
	})
	field := noise.NewSimplex(seed, sess.Snapshot().Params)

	a := &app{}
	targets := share.Multi{share.LogTarget{Logger: logger}}
	var store storage.Store
	if cfg.Share.DB != "" {
		db, err := sqlite.NewFileStore(cfg.Share.DB)
		if err != nil {
			return nil, fmt.Errorf("failed to open share store: %w", err)
		}
		a.store = db
		store = db
		targets = append(targets, share.StoreTarget{Store: db})
	}

	if client := pixooClient(ctx, cfg, store, logger); client != nil {
		sinks = append(sinks, client)
	}

	c := clock.New()
	var animator *icon.Animator
	if len(sinks) > 0 {
		animator = icon.NewAnimator(c, sinks,
			icon.WithInterval(cfg.Icon.Interval.Std()),
			icon.WithSize(cfg.Icon.Size))
	}

	eng, err := engine.New(engine.Options{
		Session:  sess,
		Field:    field,
		Surface:  surface,
		Clock:    c,
		FPS:      cfg.FPS,
		Debounce: cfg.Debounce.Std(),
		Icons:    animator,
		Camera:   camera.New(cfg.Camera.File, cfg.Camera.URL, cfg.Camera.PollInterval.Std(), c),
		Share:    targets,
		BaseURL:  cfg.BaseURL,
		Logger:   logger,
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	a.engine = eng
	return a, nil
}

// pixooClient returns a client for the configured or remembered Pixoo, or nil.
func pixooClient(ctx context.Context, cfg *config.Config, store storage.Store, logger *slog.Logger) *pixoo.Client {
	ip := cfg.Pixoo.IP
	if ip == "" && store != nil {
		id, err := store.GetConfig(ctx, storage.ConfigDefaultDevice)
		if err == nil {
			if device, err := store.GetDevice(ctx, id); err == nil {
				ip = device.IP
			}
		}
	}
	if ip == "" {
		return nil
	}

	client := pixoo.NewClientWithPort(ip, cfg.Pixoo.Port)
	probeCtx, cancel := context.WithTimeout(ctx, pixoo.DefaultTimeout)
	defer cancel()
	if !client.IsReachable(probeCtx) {
		logger.Warn("pixoo not reachable, icons stay local", "ip", ip)
		return nil
	}
	if cfg.Pixoo.Brightness > 0 {
		if err := client.SetBrightness(probeCtx, cfg.Pixoo.Brightness); err != nil {
			logger.Warn("failed to set pixoo brightness", "ip", ip, "error", err)
		}
	}
	logger.Info("mirroring icons to pixoo", "ip", ip)
	return client
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger := slog.Default()
	canvas := render.NewCanvas(cfg.Width, cfg.Height)
	favicon := &web.Favicon{}

	a, err := build(ctx, cfg, canvas, icon.MultiSink{favicon}, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           web.NewServer(a.engine, canvas, favicon, cfg.FPS),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runTerminal(ctx context.Context, cfg *config.Config, logPath string) error {
	// The screen owns stdout, so logs go to a file.
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer f.Close()
	logger := logging.New(f, cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to init screen: %w", err)
	}
	defer screen.Fini()

	surface := terminal.NewSurface(screen)
	a, err := build(ctx, cfg, surface, nil, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	a.engine.Start()
	runner := terminal.NewRunner(screen, surface, a.engine, a.engine.Session().Snapshot().Palette.String())
	return runner.Run(ctx)
}

func preview(cfg *config.Config) error {
	canvas := render.NewCanvas(cfg.Width, cfg.Height)
	cfg.Camera = config.CameraConfig{}
	a, err := build(context.Background(), cfg, canvas, nil, slog.Default())
	if err != nil {
		return err
	}
	defer a.Close()

	m := a.engine.RenderFrame()
	fmt.Printf("%dx%d cells, %s on %s\n", m.Columns, m.Rows, m.Colors.Foreground.Hex(), m.Colors.Background.Hex())
	fmt.Println()
	fmt.Print(m.String())
	return nil
}

func scan(ctx context.Context, cfg *config.Config) error {
	fmt.Println("Scanning for Pixoo devices on local network...")
	fmt.Println()

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	devices, err := pixoo.ScanForDevices(ctx, func(current, total int) {
		pct := current * 100 / total
		bar := strings.Repeat("█", pct/5) + strings.Repeat("░", 20-pct/5)
		fmt.Printf("\r  [%s] %d%% (%d/%d)", bar, pct, current, total)
	})
	fmt.Println()
	if err != nil {
		return err
	}

	fmt.Println()
	if len(devices) == 0 {
		fmt.Println("No Pixoo devices found.")
		return nil
	}

	fmt.Printf("Found %d device(s):\n", len(devices))
	for i, device := range devices {
		fmt.Printf("  %d. %s - %s\n", i+1, device.Name, device.IP)
	}

	if cfg.Share.DB == "" {
		fmt.Println()
		fmt.Println("To mirror icons, set pixoo.ip or TRIPPY_PIXOO_IP:")
		fmt.Printf("  TRIPPY_PIXOO_IP=%s trippy serve\n", devices[0].IP)
		return nil
	}

	store, err := sqlite.NewFileStore(cfg.Share.DB)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()

	for _, d := range devices {
		if err := store.SaveDevice(ctx, storage.NewDevice(d.IP, d.IP, d.Name, "pixoo64")); err != nil {
			return fmt.Errorf("failed to save device: %w", err)
		}
	}
	if err := store.SetConfig(ctx, storage.ConfigDefaultDevice, devices[0].IP); err != nil {
		return fmt.Errorf("failed to set default device: %w", err)
	}
	fmt.Printf("\nRemembered %s as the default Pixoo.\n", devices[0].IP)
	return nil
}
