package output_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/Bubalan0203/crawlbench/internal/bench"
	"github.com/Bubalan0203/crawlbench/internal/fetch"
	"github.com/Bubalan0203/crawlbench/internal/metrics"
	"github.com/Bubalan0203/crawlbench/internal/output"
	"github.com/Bubalan0203/crawlbench/internal/strategy"
	"github.com/Bubalan0203/crawlbench/internal/threshold"
)

func sampleReport() *bench.Report {
	collector := metrics.NewCollector()
	outcomes := []fetch.Outcome{
		{Target: "https://a.test", Succeeded: true, StatusCode: 200, Title: "A", LinkCount: 5,
			Elapsed: 120 * time.Millisecond, ElapsedMs: 120},
		{Target: "https://b.test", Reason: fetch.ReasonTimeout, Retries: 2,
			Elapsed: 400 * time.Millisecond, ElapsedMs: 400},
	}
	for _, o := range outcomes {
		collector.Record(o)
	}
	stats := collector.Stats()

	seqRun := strategy.Run{
		Strategy:  strategy.Sequential,
		Outcomes:  outcomes,
		Elapsed:   520 * time.Millisecond,
		ElapsedMs: 520,
		Successes: 1,
		Failures:  1,
	}
	poolRun := seqRun
	poolRun.Strategy = strategy.Pooled
	poolRun.Elapsed = 260 * time.Millisecond
	poolRun.ElapsedMs = 260

	return &bench.Report{
		StartedAt:   time.Now().UTC(),
		TargetCount: 2,
		Results: []bench.StrategyResult{
			{Strategy: strategy.Sequential, Run: &seqRun, Stats: &stats},
			{Strategy: strategy.Pooled, Run: &poolRun, Stats: &stats},
			{Strategy: strategy.BoundedConcurrent, Error: "could not start"},
		},
		Speedups: map[strategy.Strategy]float64{
			strategy.Sequential: 1.0,
			strategy.Pooled:     2.0,
		},
	}
}

func TestPrintReport(t *testing.T) {
	var buf bytes.Buffer
	output.PrintReport(&buf, sampleReport())
	got := buf.String()

	for _, want := range []string{
		"--- Crawl Benchmark Results ---",
		"Targets:           2",
		"[sequential]",
		"[pooled]",
		"[bounded]",
		"Speedup:         2.00x",
		"Error:           could not start",
		"Failures by reason:",
		"timeout: 1",
		"Status codes:",
		"200: 1",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("report missing %q:\n%s", want, got)
		}
	}
}

func TestPrintJSONReport(t *testing.T) {
	var buf bytes.Buffer
	if err := output.PrintJSONReport(&buf, sampleReport()); err != nil {
		t.Fatal(err)
	}

	var decoded struct {
		TargetCount int `json:"target_count"`
		Results     []struct {
			Strategy string `json:"strategy"`
			Error    string `json:"error"`
			Run      *struct {
				ElapsedMs float64 `json:"elapsed_ms"`
				Outcomes  []struct {
					URL     string `json:"url"`
					Success bool   `json:"success"`
				} `json:"outcomes"`
			} `json:"run"`
		} `json:"results"`
		Speedups map[string]float64 `json:"speedups"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}

	if decoded.TargetCount != 2 || len(decoded.Results) != 3 {
		t.Errorf("decoded: %+v", decoded)
	}
	if decoded.Speedups["pooled"] != 2.0 {
		t.Errorf("speedups: %v", decoded.Speedups)
	}
	if decoded.Results[0].Run == nil || decoded.Results[0].Run.ElapsedMs != 520 {
		t.Errorf("sequential run: %+v", decoded.Results[0].Run)
	}
	if decoded.Results[2].Error != "could not start" {
		t.Errorf("bounded error: %+v", decoded.Results[2])
	}
	if decoded.Results[0].Run.Outcomes[0].URL != "https://a.test" || !decoded.Results[0].Run.Outcomes[0].Success {
		t.Errorf("outcome encoding: %+v", decoded.Results[0].Run.Outcomes)
	}
}

func TestPrintThresholdResults(t *testing.T) {
	var buf bytes.Buffer
	output.PrintThresholdResults(&buf, []threshold.Result{
		{Pass: true, Message: "✓ pooled:speedup >= 2: 2.10 >= 2.00"},
		{Pass: false, Message: "✗ bounded:failures == 0: 1.00 == 0.00"},
	})
	got := buf.String()

	if !strings.Contains(got, "Thresholds:") {
		t.Errorf("missing header:\n%s", got)
	}
	if !strings.Contains(got, "✓ pooled:speedup") || !strings.Contains(got, "✗ bounded:failures") {
		t.Errorf("missing result lines:\n%s", got)
	}

	buf.Reset()
	output.PrintThresholdResults(&buf, nil)
	if buf.Len() != 0 {
		t.Errorf("expected no output for empty results, got %q", buf.String())
	}
}

func TestGenerateHTMLReport(t *testing.T) {
	var buf bytes.Buffer
	err := output.GenerateHTMLReport(&buf, sampleReport(), []threshold.Result{
		{Pass: true, Message: "✓ pooled:speedup >= 2: 2.00 >= 2.00"},
	})
	if err != nil {
		t.Fatal(err)
	}
	got := buf.String()

	for _, want := range []string{
		"<!DOCTYPE html>",
		"Crawl Benchmark Report",
		"sequential",
		"pooled",
		"https://a.test",
		"could not start",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("html missing %q", want)
		}
	}
}
