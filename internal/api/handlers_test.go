package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/Bubalan0203/crawlbench/internal/api"
	"github.com/Bubalan0203/crawlbench/internal/bench"
	"github.com/Bubalan0203/crawlbench/internal/fetch"
	"github.com/Bubalan0203/crawlbench/internal/history"
	"github.com/Bubalan0203/crawlbench/internal/strategy"
)

func sampleReport() *bench.Report {
	run := strategy.Run{
		Strategy:  strategy.Sequential,
		ElapsedMs: 100,
		Successes: 1,
		Outcomes: []fetch.Outcome{
			{Target: "https://a.test", Succeeded: true, StatusCode: 200, ElapsedMs: 100},
		},
	}
	return &bench.Report{
		StartedAt:   time.Now().UTC(),
		TargetCount: 1,
		Results: []bench.StrategyResult{
			{Strategy: strategy.Sequential, Run: &run},
		},
	}
}

func get(t *testing.T, handler http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestGetReport(t *testing.T) {
	router := api.NewRouter(sampleReport(), nil, nil)
	rec := get(t, router, "/v1/report")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type: %q", ct)
	}

	var body struct {
		TargetCount int `json:"target_count"`
		Results     []struct {
			Strategy string `json:"strategy"`
		} `json:"results"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.TargetCount != 1 || len(body.Results) != 1 || body.Results[0].Strategy != "sequential" {
		t.Errorf("unexpected body: %+v", body)
	}
}

func TestHealthz(t *testing.T) {
	router := api.NewRouter(sampleReport(), nil, nil)
	rec := get(t, router, "/healthz")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestSessionsWithoutStore(t *testing.T) {
	router := api.NewRouter(sampleReport(), nil, nil)

	if rec := get(t, router, "/v1/sessions"); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 without a store, got %d", rec.Code)
	}
	if rec := get(t, router, "/v1/sessions/abc/results"); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 without a store, got %d", rec.Code)
	}
}

func TestSessionsWithStore(t *testing.T) {
	ctx := context.Background()
	store, err := history.Open(ctx, filepath.Join(t.TempDir(), "bench.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	report := sampleReport()
	id, err := store.SaveReport(ctx, report)
	if err != nil {
		t.Fatal(err)
	}

	router := api.NewRouter(report, store, nil)

	rec := get(t, router, "/v1/sessions")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var sessions struct {
		Sessions []struct {
			ID          string `json:"id"`
			TargetCount int    `json:"target_count"`
		} `json:"sessions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &sessions); err != nil {
		t.Fatal(err)
	}
	if len(sessions.Sessions) != 1 || sessions.Sessions[0].ID != id {
		t.Errorf("unexpected sessions: %+v", sessions)
	}

	rec = get(t, router, "/v1/sessions/"+id+"/results")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var results struct {
		Results []struct {
			URL     string `json:"url"`
			Success bool   `json:"success"`
		} `json:"results"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &results); err != nil {
		t.Fatal(err)
	}
	if len(results.Results) != 1 || results.Results[0].URL != "https://a.test" || !results.Results[0].Success {
		t.Errorf("unexpected results: %+v", results)
	}
}

func TestSessionsInvalidLimit(t *testing.T) {
	ctx := context.Background()
	store, err := history.Open(ctx, filepath.Join(t.TempDir(), "bench.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	router := api.NewRouter(sampleReport(), store, nil)
	for _, limit := range []string{"abc", "0", "-5"} {
		if rec := get(t, router, "/v1/sessions?limit="+limit); rec.Code != http.StatusBadRequest {
			t.Errorf("limit %q: expected 400, got %d", limit, rec.Code)
		}
	}
}

func TestUnknownSessionReturnsEmptyList(t *testing.T) {
	ctx := context.Background()
	store, err := history.Open(ctx, filepath.Join(t.TempDir(), "bench.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	router := api.NewRouter(sampleReport(), store, nil)
	rec := get(t, router, "/v1/sessions/no-such-id/results")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var results struct {
		Results []any `json:"results"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &results); err != nil {
		t.Fatal(err)
	}
	if results.Results == nil || len(results.Results) != 0 {
		t.Errorf("expected empty results array, got %+v", results.Results)
	}
}
