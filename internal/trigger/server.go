package trigger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vk/buildgridgo/internal/ctxlog"
	"github.com/vk/buildgridgo/internal/report"
)

// RunFunc executes the configured pipeline once under the given run ID. Any
// trigger adapter can call it; this server is the HTTP one.
type RunFunc func(ctx context.Context, runID string) (*report.PipelineReport, error)

// Server is the HTTP trigger adapter. One run may be in flight at a time;
// concurrent trigger requests are rejected with 409.
type Server struct {
	logger  *slog.Logger
	execute RunFunc
	store   *Store
	running atomic.Bool

	httpServer *http.Server
}

// NewServer creates a trigger server around a pipeline execute function.
func NewServer(logger *slog.Logger, execute RunFunc) *Server {
	return &Server{
		logger:  logger,
		execute: execute,
		store:   NewStore(),
	}
}

// Router builds the chi route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", s.handleHealth)
	r.Route("/api/v1/runs", func(r chi.Router) {
		r.Post("/", s.handleTrigger)
		r.Get("/latest", s.handleLatest)
		r.Get("/{runID}", s.handleGet)
	})
	return r
}

// ListenAndServe runs the server until the context is cancelled, then shuts
// it down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("🛎️ Trigger server starting", "address", addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("trigger server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.logger.Info("🛎️ Shutting down trigger server...")
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("trigger server shutdown failed: %w", err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

// handleTrigger starts a run in the background and immediately returns the
// assigned run ID. The report becomes retrievable once the run finishes.
func (s *Server) handleTrigger(w http.ResponseWriter, r *http.Request) {
	if !s.running.CompareAndSwap(false, true) {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "a run is already in flight"})
		return
	}

	runID := uuid.NewString()
	s.logger.Info("🚀 Run triggered over HTTP", "run_id", runID, "remote_addr", r.RemoteAddr)

	go func() {
		defer s.running.Store(false)
		ctx := ctxlog.WithLogger(context.Background(), s.logger.With("run_id", runID))
		rep, err := s.execute(ctx, runID)
		if err != nil && rep == nil {
			s.logger.Error("Triggered run failed before producing a report.", "run_id", runID, "error", err)
			return
		}
		s.store.Put(rep)
		s.logger.Info("🏁 Triggered run finished", "run_id", runID, "success", rep.Success)
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{"run_id": runID})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")
	rep, ok := s.store.Get(runID)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown or unfinished run"})
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	rep, ok := s.store.Latest()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no finished runs"})
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
