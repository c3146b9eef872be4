// Package web serves trippy over HTTP: the page, the current frame as PNG,
// the animated favicon and a small JSON control API.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jwulff/trippy-go/internal/domain"
	"github.com/jwulff/trippy-go/internal/render"
	"github.com/jwulff/trippy-go/internal/session"
	"github.com/jwulff/trippy-go/internal/share"
)

// Controls is the engine surface the API drives.
type Controls interface {
	Start()
	Started() bool
	Resize(width, height int)
	SetText(text string)
	RandomizeColors() domain.ColorPair
	SetWebcam(on bool)
	Share(ctx context.Context) (share.Payload, error)
	Mode() domain.SourceMode
	Session() *session.Session
}

// maxViewport bounds the raster a client may ask for.
const maxViewport = 4096

// State is the JSON view of the session.
type State struct {
	Text       string  `json:"text"`
	BgColor    string  `json:"bgColor"`
	FgColor    string  `json:"fgColor"`
	Webcam     bool    `json:"webcam"`
	Mode       string  `json:"mode"`
	FrameCount int     `json:"frameCount"`
	Columns    int     `json:"columns"`
	Rows       int     `json:"rows"`
	CellSize   float64 `json:"cellSize"`
	Link       string  `json:"link"`
	Started    bool    `json:"started"`
}

// Server routes HTTP requests to the engine.
type Server struct {
	controls Controls
	canvas   *render.Canvas
	favicon  *Favicon
	frameMs  int
	router   *chi.Mux
}

// NewServer creates the router. fps sets how often the page refreshes the frame.
func NewServer(controls Controls, canvas *render.Canvas, favicon *Favicon, fps int) *Server {
	if fps <= 0 {
		fps = 30
	}
	s := &Server{
		controls: controls,
		canvas:   canvas,
		favicon:  favicon,
		frameMs:  max(1000/fps, 1),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/", s.handlePage)
	r.Get("/frame.png", s.handleFrame)
	r.Get("/favicon.png", s.handleFavicon)

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", s.handleState)
		r.Post("/start", s.handleStart)
		r.Post("/text", s.handleText)
		r.Post("/colors/randomize", s.handleRandomize)
		r.Post("/webcam", s.handleWebcam)
		r.Post("/viewport", s.handleViewport)
		r.Post("/share", s.handleShare)
	})

	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) state() State {
	st := s.controls.Session().Snapshot()
	return State{
		Text:       st.Palette.String(),
		BgColor:    st.Colors.Background.Hex(),
		FgColor:    st.Colors.Foreground.Hex(),
		Webcam:     st.Webcam,
		Mode:       string(s.controls.Mode()),
		FrameCount: st.FrameCount,
		Columns:    st.Geometry.Columns,
		Rows:       st.Geometry.Rows,
		CellSize:   st.Geometry.CellSize,
		Link:       st.Link,
		Started:    s.controls.Started(),
	}
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	st := s.state()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := pageTemplate.Execute(w, pageData{
		Text:     st.Text,
		BgColor:  st.BgColor,
		FgColor:  st.FgColor,
		CellSize: st.CellSize,
		Webcam:   st.Webcam,
		Started:  st.Started,
		FrameMs:  s.frameMs,
	})
	if err != nil {
		slog.Error("failed to render page", "error", err)
	}
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if err := s.canvas.EncodePNG(w); err != nil {
		slog.Warn("failed to write frame", "error", err)
	}
}

func (s *Server) handleFavicon(w http.ResponseWriter, r *http.Request) {
	data, seq := s.favicon.PNG()
	if len(data) == 0 {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("ETag", strconv.Quote(strconv.FormatUint(seq, 10)))
	_, _ = w.Write(data)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.state())
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	s.controls.Start()
	writeJSON(w, http.StatusOK, s.state())
}

func (s *Server) handleText(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text *string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Text == nil {
		writeError(w, http.StatusBadRequest, errors.New("text is required"))
		return
	}
	s.controls.SetText(*req.Text)
	writeJSON(w, http.StatusOK, s.state())
}

func (s *Server) handleRandomize(w http.ResponseWriter, r *http.Request) {
	s.controls.RandomizeColors()
	writeJSON(w, http.StatusOK, s.state())
}

func (s *Server) handleWebcam(w http.ResponseWriter, r *http.Request) {
	var req struct {
		On *bool `json:"on"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.On == nil {
		writeError(w, http.StatusBadRequest, errors.New("on is required"))
		return
	}
	s.controls.SetWebcam(*req.On)
	writeJSON(w, http.StatusOK, s.state())
}

func (s *Server) handleViewport(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Width <= 0 || req.Height <= 0 || req.Width > maxViewport || req.Height > maxViewport {
		writeError(w, http.StatusBadRequest, errors.New("viewport out of range"))
		return
	}
	s.controls.Resize(req.Width, req.Height)
	writeJSON(w, http.StatusAccepted, map[string]int{"width": req.Width, "height": req.Height})
}

func (s *Server) handleShare(w http.ResponseWriter, r *http.Request) {
	p, err := s.controls.Share(r.Context())
	switch {
	case errors.Is(err, share.ErrUnsupported):
		writeError(w, http.StatusNotImplemented, err)
	case err != nil:
		writeError(w, http.StatusBadGateway, err)
	default:
		writeJSON(w, http.StatusOK, p)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// requestLogger logs requests at debug level; the page polls frames many
// times a second.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		slog.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
