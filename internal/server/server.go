// Package server exposes the mediated command, file, and item
// operations over HTTP.
package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"llmgate/internal/config"
	"llmgate/internal/domain"
	"llmgate/internal/executor"
	"llmgate/internal/fileio"
	"llmgate/internal/mediator"
	"llmgate/internal/metrics"
	"llmgate/internal/policy"
)

const maxBodySize = 1 << 20 // 1MB

// Server wires the policy engine, executor, file accessor, mediator,
// and item store behind the HTTP API.
type Server struct {
	cfg      *config.Config
	engine   *policy.Engine
	shell    *executor.Shell
	files    *fileio.Accessor
	mediator *mediator.Mediator
	store    domain.ItemStore // nil when the store is disabled
	logger   *slog.Logger

	httpServer *http.Server
}

type Deps struct {
	Config   *config.Config
	Engine   *policy.Engine
	Shell    *executor.Shell
	Files    *fileio.Accessor
	Mediator *mediator.Mediator
	Store    domain.ItemStore
	Logger   *slog.Logger
}

func New(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:      deps.Config,
		engine:   deps.Engine,
		shell:    deps.Shell,
		files:    deps.Files,
		mediator: deps.Mediator,
		store:    deps.Store,
		logger:   logger,
	}
}

// Router builds the HTTP routing table. Health and metrics are open;
// everything else requires the API key.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.countRequests)

	r.Get("/health", s.handleHealth)
	r.Get("/metrics", metrics.Collector.Handler())

	r.Group(func(r chi.Router) {
		r.Use(s.requireAPIKey)
		r.Post("/cli", s.handleCLI)
		r.Get("/read-file", s.handleReadFile)
		r.Post("/write-file", s.handleWriteFile)
		r.Post("/items", s.handleCreateItem)
		r.Get("/items/{id}", s.handleGetItem)
		r.Post("/api", s.handleUnified)
	})

	return r
}

// Start runs the HTTP server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Commands have no execution timeout, so responses may take a
		// long time to start writing.
		WriteTimeout:   0,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	s.logger.Info("server started",
		"addr", addr,
		"security_level", s.engine.Level(),
		"store_enabled", s.store != nil,
	)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.httpServer.Shutdown(shutdownCtx)
	}()

	if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.RequestsTotal.Inc()
		metrics.ActiveRequests.Inc()
		defer metrics.ActiveRequests.Dec()
		next.ServeHTTP(w, r)
	})
}

// requireAPIKey rejects requests whose X-API-Key header does not match
// the configured key. The comparison is constant-time.
func (s *Server) requireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("X-API-Key")
		if subtle.ConstantTimeCompare([]byte(key), []byte(s.cfg.Server.APIKey)) != 1 {
			s.logger.Warn("rejected request with invalid API key",
				"path", r.URL.Path,
				"remote", r.RemoteAddr,
			)
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "Invalid API Key"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"security_level": string(s.engine.Level()),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeDomainError maps the error taxonomy onto HTTP statuses with the
// exact error strings clients key on.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	switch e := err.(type) {
	case *domain.PolicyError:
		metrics.PolicyDenials.Inc()
		writeJSON(w, http.StatusForbidden, map[string]string{"error": e.Reason})
	case *domain.NotFoundError:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "File not found"})
	case *domain.ConflictError:
		writeJSON(w, http.StatusConflict, map[string]string{"error": "Item already exists"})
	default:
		s.logger.Error("internal error", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
}

// audit records an entry when the store is enabled. Audit failures are
// logged, never surfaced to the client.
func (s *Server) audit(ctx context.Context, entry domain.AuditEntry) {
	if s.store == nil {
		return
	}
	if err := s.store.LogAudit(ctx, entry); err != nil {
		s.logger.Error("audit write failed", "err", err)
	}
}
