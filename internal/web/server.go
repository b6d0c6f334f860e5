// Package web serves the local meeting remote: a small token-protected API
// on loopback so another device in the room can start the launch sequence,
// watch its progress, and record attendance.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/advenimus/jwtools/internal/attendance"
	"github.com/advenimus/jwtools/internal/launcher"
	"github.com/advenimus/jwtools/internal/logging"
	"github.com/advenimus/jwtools/internal/settings"
)

var webLog = logging.ForComponent(logging.CompWeb)

// Config defines runtime options for the web remote.
type Config struct {
	ListenAddr string
	Token      string
	Version    string

	// RecordLaunch persists a finished launch run, so remote-triggered
	// sequences show up in history like TUI and CLI ones. May be nil when
	// history is disabled.
	RecordLaunch func(*launcher.RunResult)
}

// LaunchService runs the meeting launch sequence. Satisfied by
// *launcher.Launcher.
type LaunchService interface {
	Run() (*launcher.RunResult, error)
	Running() bool
}

// AttendanceSaver persists a finished attendance calculation.
type AttendanceSaver func(counts attendance.Counts, total int) error

// Server wraps an HTTP server for the meeting remote.
type Server struct {
	cfg        Config
	httpServer *http.Server
	store      *settings.Store
	launch     LaunchService
	events     *launcher.Broadcaster
	saver      AttendanceSaver
	limiter    *rate.Limiter
	baseCtx    context.Context
	cancelBase context.CancelFunc
}

// NewServer creates a web remote over a settings store, a launch service and
// its progress broadcaster. saver may be nil when history is disabled.
func NewServer(cfg Config, store *settings.Store, launch LaunchService, events *launcher.Broadcaster, saver AttendanceSaver) *Server {
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = "127.0.0.1:8430"
	}

	s := &Server{
		cfg:    cfg,
		store:  store,
		launch: launch,
		events: events,
		saver:  saver,
		// One launch burst per client action; the sequence itself takes
		// tens of seconds, so anything faster is a misbehaving client.
		limiter: rate.NewLimiter(rate.Every(5*time.Second), 2),
	}
	s.baseCtx, s.cancelBase = context.WithCancel(context.Background())

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/launch", s.handleLaunch)
	mux.HandleFunc("/api/attendance", s.handleAttendance)
	mux.HandleFunc("/ws/events", s.handleEventsWS)

	s.httpServer = &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           withRecover(mux),
		BaseContext:       func(_ net.Listener) context.Context { return s.baseCtx },
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return s
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Handler returns the configured HTTP handler (used by tests).
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start starts the HTTP server and blocks until shutdown or error.
// Returns nil on graceful shutdown.
func (s *Server) Start() error {
	webLog.Info("web_remote_started", "addr", s.cfg.ListenAddr)
	err := s.httpServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.cancelBase != nil {
		// Signal long-lived WS handlers to stop promptly.
		s.cancelBase()
	}

	err := s.httpServer.Shutdown(ctx)
	if err == nil {
		return nil
	}

	// Open websockets may still block graceful shutdown. Force close as a
	// fallback so Ctrl+C exits promptly.
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		if closeErr := s.httpServer.Close(); closeErr == nil {
			return nil
		} else {
			return fmt.Errorf("graceful shutdown timed out and force close failed: %w", closeErr)
		}
	}

	return err
}

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				webLog.Error("panic", "recover", fmt.Sprintf("%v", rec), "path", r.URL.Path)
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type apiErrorResponse struct {
	Error apiError `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeAPIError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, apiErrorResponse{
		Error: apiError{
			Code:    code,
			Message: message,
		},
	})
}
