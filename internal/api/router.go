package api

import (
	"log/slog"
	"net/http"

	"github.com/Bubalan0203/crawlbench/internal/bench"
	"github.com/Bubalan0203/crawlbench/internal/history"
)

// NewRouter creates a new http.ServeMux and registers the API handlers.
func NewRouter(report *bench.Report, store *history.Store, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	h := NewHandlers(report, store, logger)

	mux.HandleFunc("GET /v1/report", h.GetReport)
	mux.HandleFunc("GET /v1/sessions", h.ListSessions)
	mux.HandleFunc("GET /v1/sessions/{session_id}/results", h.ListSessionResults)
	mux.HandleFunc("GET /healthz", h.Healthz)

	return mux
}
