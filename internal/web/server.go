// Package web serves the wizard, its progress stream and the informational
// pages over HTTP.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/resumeai/enhancer/internal/model"
	"github.com/resumeai/enhancer/internal/pacing"
	"github.com/resumeai/enhancer/internal/ratelimit"
	"github.com/resumeai/enhancer/internal/store"
	"github.com/resumeai/enhancer/internal/wizard"
)

// Options configures a Server.
type Options struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	CookieName   string
	SecureCookie bool
	CookieMaxAge time.Duration

	FreeAnalyses     int
	ProgressStep     int
	ProgressInterval time.Duration
}

// Server is the web front-end. Sessions live in memory; the ledger remembers
// used allowances across session expiry.
type Server struct {
	opts      Options
	sessions  *store.SessionStore
	ledger    model.UsageLedger
	notifier  model.Notifier
	limiter   *ratelimit.ClientLimiter
	runner    *pacing.Runner
	presenter wizard.Presenter
	pages     *pages
	hub       *hub
	logger    *slog.Logger

	// jobs scopes background analyses and notifications.
	jobs       context.Context
	cancelJobs context.CancelFunc
	wg         sync.WaitGroup
	mu         sync.Mutex
	closed     bool

	httpServer *http.Server
}

// New wires a server. Call Run to listen, or Handler to mount it elsewhere.
func New(
	opts Options,
	sessions *store.SessionStore,
	ledger model.UsageLedger,
	notifier model.Notifier,
	limiter *ratelimit.ClientLimiter,
	runner *pacing.Runner,
	presenter wizard.Presenter,
	logger *slog.Logger,
) *Server {
	jobs, cancel := context.WithCancel(context.Background())
	s := &Server{
		opts:       opts,
		sessions:   sessions,
		ledger:     ledger,
		notifier:   notifier,
		limiter:    limiter,
		runner:     runner,
		presenter:  presenter,
		pages:      mustParsePages(),
		hub:        newHub(),
		logger:     logger,
		jobs:       jobs,
		cancelJobs: cancel,
	}
	s.httpServer = &http.Server{
		Addr:         opts.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.Handle("POST /analyze", s.withSubmitLimit(http.HandlerFunc(s.handleAnalyze)))
	mux.HandleFunc("POST /resume/clear", s.handleClearResume)
	mux.HandleFunc("GET /progress", s.handleProgress)
	mux.HandleFunc("POST /enhancements", s.handleEnhancements)
	mux.HandleFunc("POST /unlock", s.handleUnlock)
	mux.HandleFunc("POST /start-over", s.handleStartOver)

	mux.HandleFunc("GET /about", s.handleAbout)
	mux.HandleFunc("GET /features", s.handleFeatures)
	mux.HandleFunc("GET /pricing", s.handlePricing)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	return s.withLogging(mux)
}

// Run listens until ctx is cancelled, then shuts down gracefully and waits for
// background analyses to stop.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("web server starting", "addr", s.opts.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		s.Close()
		if ok {
			return fmt.Errorf("web server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down web server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()

	// SSE streams end once their analyses are cancelled.
	s.Close()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("web server shutdown: %w", err)
	}
	s.logger.Info("web server stopped")
	return nil
}

// Close cancels background analyses and waits for them to finish.
func (s *Server) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cancelJobs()
	s.wg.Wait()
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("encoding JSON response", "error", err)
	}
}
