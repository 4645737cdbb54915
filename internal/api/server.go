// Package api serves the benchmark report and persisted history over HTTP.
// It is a thin presentation layer: the report shape it exposes is owned by
// the bench package.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/Bubalan0203/crawlbench/internal/bench"
	"github.com/Bubalan0203/crawlbench/internal/history"
)

// Server wraps the http.Server to provide graceful shutdown.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates and configures a new API server.
func NewServer(addr string, report *bench.Report, store *history.Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		httpServer: &http.Server{
			Addr:    addr,
			Handler: NewRouter(report, store, logger),
		},
		logger: logger,
	}
}

// ListenAndServe runs the HTTP server until it is shut down.
func (s *Server) ListenAndServe() error {
	s.logger.Info("serving benchmark report", slog.String("addr", s.httpServer.Addr))
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
