package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Bubalan0203/crawlbench/internal/bench"
	"github.com/Bubalan0203/crawlbench/internal/history"
)

// Handlers holds dependencies for the API handlers.
type Handlers struct {
	report *bench.Report
	store  *history.Store
	logger *slog.Logger
}

// NewHandlers creates a new Handlers struct. store may be nil when history
// persistence is disabled.
func NewHandlers(report *bench.Report, store *history.Store, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{report: report, store: store, logger: logger}
}

// GetReport serves the benchmark report of the current run.
func (h *Handlers) GetReport(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.report)
}

// ListSessions serves persisted benchmark sessions, newest first.
func (h *Handlers) ListSessions(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		http.Error(w, "history persistence is disabled", http.StatusNotFound)
		return
	}
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}
	sessions, err := h.store.ListSessions(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list sessions", slog.Any("error", err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if sessions == nil {
		sessions = []history.Session{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
}

// ListSessionResults serves the per-target results of one persisted session.
func (h *Handlers) ListSessionResults(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		http.Error(w, "history persistence is disabled", http.StatusNotFound)
		return
	}
	sessionID := r.PathValue("session_id")
	results, err := h.store.SessionResults(r.Context(), sessionID)
	if err != nil {
		h.logger.Error("failed to list session results",
			slog.String("session_id", sessionID), slog.Any("error", err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if results == nil {
		results = []history.Result{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

// Healthz reports liveness.
func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
