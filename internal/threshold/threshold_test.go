package threshold_test

import (
	"strings"
	"testing"
	"time"

	"github.com/Bubalan0203/crawlbench/internal/bench"
	"github.com/Bubalan0203/crawlbench/internal/fetch"
	"github.com/Bubalan0203/crawlbench/internal/metrics"
	"github.com/Bubalan0203/crawlbench/internal/strategy"
	"github.com/Bubalan0203/crawlbench/internal/threshold"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input    string
		strategy strategy.Strategy
		metric   string
		operator string
		value    float64
	}{
		{"pooled:speedup >= 2", strategy.Pooled, "speedup", ">=", 2},
		{"sequential:failure_rate < 0.1", strategy.Sequential, "failure_rate", "<", 0.1},
		{"bounded:p99_ms<500", strategy.BoundedConcurrent, "p99_ms", "<", 500},
		{"  POOLED:ELAPSED_MS <= 10000  ", strategy.Pooled, "elapsed_ms", "<=", 10000},
		{"bounded:failures == 0", strategy.BoundedConcurrent, "failures", "==", 0},
	}

	for _, tc := range tests {
		got, err := threshold.Parse(tc.input)
		if err != nil {
			t.Errorf("Parse(%q): %v", tc.input, err)
			continue
		}
		if got.Strategy != tc.strategy || got.Metric != tc.metric ||
			got.Operator != tc.operator || got.Value != tc.value {
			t.Errorf("Parse(%q) = %+v", tc.input, got)
		}
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	invalid := []string{
		"",
		"speedup >= 2",            // missing strategy
		"pooled:speedup",          // missing comparison
		"pooled:speedup => 2",     // bad operator
		"pooled:speedup >= fast",  // non-numeric value
		"threaded:speedup >= 2",   // unknown strategy
		"pooled:throughput >= 2",  // unknown metric
		"pooled:speedup >= -2",    // negative values unsupported
	}
	for _, s := range invalid {
		if _, err := threshold.Parse(s); err == nil {
			t.Errorf("Parse(%q): expected error", s)
		}
	}
}

func TestParseAll(t *testing.T) {
	ts, err := threshold.ParseAll([]string{"pooled:speedup >= 2", "bounded:failures == 0"})
	if err != nil {
		t.Fatal(err)
	}
	if len(ts) != 2 {
		t.Fatalf("expected 2 thresholds, got %d", len(ts))
	}

	if _, err := threshold.ParseAll([]string{"pooled:speedup >= 2", "bogus"}); err == nil {
		t.Error("expected error on first invalid entry")
	}
	if ts, err := threshold.ParseAll(nil); err != nil || ts != nil {
		t.Errorf("empty input: got %v, %v", ts, err)
	}
}

// sampleReport builds a report where pooled is exactly twice as fast as
// sequential and has one failure out of four targets.
func sampleReport() *bench.Report {
	seqRun := run(strategy.Sequential, 400*time.Millisecond, 4, 0)
	poolRun := run(strategy.Pooled, 200*time.Millisecond, 3, 1)
	return &bench.Report{
		TargetCount: 4,
		Results: []bench.StrategyResult{
			{Strategy: strategy.Sequential, Run: &seqRun.run, Stats: &seqRun.stats},
			{Strategy: strategy.Pooled, Run: &poolRun.run, Stats: &poolRun.stats},
			{Strategy: strategy.BoundedConcurrent, Error: "could not start"},
		},
		Speedups: map[strategy.Strategy]float64{
			strategy.Sequential: 1.0,
			strategy.Pooled:     2.0,
		},
	}
}

type builtRun struct {
	run   strategy.Run
	stats metrics.Stats
}

func run(s strategy.Strategy, elapsed time.Duration, successes, failures int) builtRun {
	c := metrics.NewCollector()
	for i := 0; i < successes; i++ {
		c.Record(outcomeFor(true, 50*time.Millisecond))
	}
	for i := 0; i < failures; i++ {
		c.Record(outcomeFor(false, 100*time.Millisecond))
	}
	return builtRun{
		run: strategy.Run{
			Strategy:  s,
			Elapsed:   elapsed,
			ElapsedMs: float64(elapsed) / float64(time.Millisecond),
			Successes: successes,
			Failures:  failures,
		},
		stats: c.Stats(),
	}
}

func TestEvaluate(t *testing.T) {
	report := sampleReport()

	tests := []struct {
		spec string
		pass bool
	}{
		{"pooled:speedup >= 2", true},
		{"pooled:speedup > 2", false},
		{"pooled:speedup == 2", true},
		{"sequential:speedup == 1", true},
		{"pooled:failure_rate <= 0.25", true},
		{"pooled:failure_rate < 0.25", false},
		{"pooled:failures == 1", true},
		{"sequential:failures == 0", true},
		{"sequential:success_rate == 1", true},
		{"pooled:elapsed_ms < 300", true},
		{"sequential:elapsed_ms < 300", false},
	}

	for _, tc := range tests {
		t.Run(tc.spec, func(t *testing.T) {
			th, err := threshold.Parse(tc.spec)
			if err != nil {
				t.Fatal(err)
			}
			results := threshold.NewEvaluator([]threshold.Threshold{th}).Evaluate(report)
			if len(results) != 1 {
				t.Fatalf("expected 1 result, got %d", len(results))
			}
			if results[0].Pass != tc.pass {
				t.Errorf("expected pass=%v, got %v (%s)", tc.pass, results[0].Pass, results[0].Message)
			}
		})
	}
}

func TestEvaluateErrorCases(t *testing.T) {
	report := sampleReport()

	// Threshold against a strategy that failed to run.
	th, err := threshold.Parse("bounded:speedup >= 2")
	if err != nil {
		t.Fatal(err)
	}
	results := threshold.NewEvaluator([]threshold.Threshold{th}).Evaluate(report)
	if results[0].Pass {
		t.Error("threshold on a failed strategy must not pass")
	}
	if !strings.Contains(results[0].Message, "could not start") {
		t.Errorf("expected the strategy error in the message, got %q", results[0].Message)
	}

	// Speedup without a sequential baseline.
	noBaseline := &bench.Report{
		Results:  report.Results[1:2],
		Speedups: nil,
	}
	results = threshold.NewEvaluator([]threshold.Threshold{mustParse(t, "pooled:speedup >= 2")}).Evaluate(noBaseline)
	if results[0].Pass {
		t.Error("speedup threshold must fail without a baseline")
	}
}

func TestAllPassed(t *testing.T) {
	if !threshold.AllPassed([]threshold.Result{{Pass: true}, {Pass: true}}) {
		t.Error("expected all passed")
	}
	if threshold.AllPassed([]threshold.Result{{Pass: true}, {Pass: false}}) {
		t.Error("expected failure detected")
	}
	if !threshold.AllPassed(nil) {
		t.Error("no thresholds means nothing failed")
	}
}

func TestEvaluateEmpty(t *testing.T) {
	if got := threshold.NewEvaluator(nil).Evaluate(sampleReport()); got != nil {
		t.Errorf("expected nil results, got %v", got)
	}
}

func mustParse(t *testing.T, s string) threshold.Threshold {
	t.Helper()
	th, err := threshold.Parse(s)
	if err != nil {
		t.Fatal(err)
	}
	return th
}

func outcomeFor(succeeded bool, elapsed time.Duration) fetch.Outcome {
	o := fetch.Outcome{
		Target:    "https://example.test",
		Succeeded: succeeded,
		Elapsed:   elapsed,
		ElapsedMs: float64(elapsed) / float64(time.Millisecond),
	}
	if succeeded {
		o.StatusCode = 200
	} else {
		o.Reason = fetch.ReasonTimeout
	}
	return o
}
