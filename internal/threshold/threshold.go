// Package threshold evaluates pass/fail assertions against a benchmark
// report, so a run can gate CI on results like "pooled is at least twice as
// fast as sequential" or "bounded failure rate stays under 10%".
package threshold

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/Bubalan0203/crawlbench/internal/bench"
	"github.com/Bubalan0203/crawlbench/internal/strategy"
)

// Threshold represents one benchmark assertion that can pass or fail.
type Threshold struct {
	Strategy strategy.Strategy // which strategy's result to inspect
	Metric   string            // e.g. "speedup", "failure_rate", "p99_ms"
	Operator string            // one of <, <=, >, >=, ==
	Value    float64           // the threshold value to compare against
	Raw      string            // original threshold string for display
}

// Result represents the outcome of evaluating a threshold.
type Result struct {
	Threshold Threshold
	Actual    float64
	Pass      bool
	Message   string
}

// Evaluator evaluates thresholds against a benchmark report.
type Evaluator struct {
	thresholds []Threshold
}

// NewEvaluator creates a new threshold evaluator.
func NewEvaluator(thresholds []Threshold) *Evaluator {
	return &Evaluator{thresholds: thresholds}
}

// Evaluate checks all thresholds against the provided report.
func (e *Evaluator) Evaluate(report *bench.Report) []Result {
	if len(e.thresholds) == 0 {
		return nil
	}
	results := make([]Result, 0, len(e.thresholds))
	for _, t := range e.thresholds {
		results = append(results, evaluateOne(t, report))
	}
	return results
}

// AllPassed reports whether every result passed.
func AllPassed(results []Result) bool {
	for _, r := range results {
		if !r.Pass {
			return false
		}
	}
	return true
}

func evaluateOne(t Threshold, report *bench.Report) Result {
	actual, err := extractMetricValue(t, report)
	if err != nil {
		return Result{
			Threshold: t,
			Pass:      false,
			Message:   fmt.Sprintf("✗ %s: error: %v", t.Raw, err),
		}
	}

	pass := compareValues(actual, t.Operator, t.Value)
	status := "✓"
	if !pass {
		status = "✗"
	}
	return Result{
		Threshold: t,
		Actual:    actual,
		Pass:      pass,
		Message:   fmt.Sprintf("%s %s: %.2f %s %.2f", status, t.Raw, actual, t.Operator, t.Value),
	}
}

var thresholdPattern = regexp.MustCompile(`^\s*([a-z]+):([a-z0-9_]+)\s*(<=|>=|==|<|>)\s*([0-9]+(?:\.[0-9]+)?)\s*$`)

// Parse parses a threshold string into a Threshold struct.
// Supported forms:
//   - "pooled:speedup >= 2"          (relative to sequential)
//   - "sequential:failure_rate < 0.1" (failures as a fraction of targets)
//   - "bounded:p99_ms < 500"          (latency percentile in ms)
//   - "pooled:elapsed_ms < 10000"     (total strategy wall clock in ms)
//   - "bounded:failures == 0"         (absolute failure count)
func Parse(s string) (Threshold, error) {
	matches := thresholdPattern.FindStringSubmatch(strings.ToLower(s))
	if matches == nil {
		return Threshold{}, fmt.Errorf("invalid threshold %q (want '<strategy>:<metric> <op> <value>')", s)
	}

	strat, err := strategy.Parse(matches[1])
	if err != nil {
		return Threshold{}, fmt.Errorf("invalid threshold %q: %w", s, err)
	}

	metric := matches[2]
	switch metric {
	case "speedup", "elapsed_ms", "failure_rate", "success_rate",
		"failures", "successes", "mean_ms", "p50_ms", "p90_ms", "p99_ms":
	default:
		return Threshold{}, fmt.Errorf("invalid threshold %q: unknown metric %q", s, metric)
	}

	value, err := strconv.ParseFloat(matches[4], 64)
	if err != nil {
		return Threshold{}, fmt.Errorf("invalid threshold %q: %w", s, err)
	}

	return Threshold{
		Strategy: strat,
		Metric:   metric,
		Operator: matches[3],
		Value:    value,
		Raw:      strings.TrimSpace(s),
	}, nil
}

// ParseAll parses a list of threshold strings, failing on the first invalid one.
func ParseAll(specs []string) ([]Threshold, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	out := make([]Threshold, 0, len(specs))
	for _, s := range specs {
		t, err := Parse(s)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func extractMetricValue(t Threshold, report *bench.Report) (float64, error) {
	res := report.Result(t.Strategy)
	if res == nil {
		return 0, fmt.Errorf("strategy %s was not run", t.Strategy)
	}
	if res.Error != "" {
		return 0, fmt.Errorf("strategy %s failed: %s", t.Strategy, res.Error)
	}

	if t.Metric == "speedup" {
		speedup, ok := report.Speedups[t.Strategy]
		if !ok {
			return 0, fmt.Errorf("no speedup available for %s (sequential baseline missing)", t.Strategy)
		}
		return speedup, nil
	}

	switch t.Metric {
	case "elapsed_ms":
		return res.Run.ElapsedMs, nil
	case "failure_rate":
		return res.Stats.FailureRate(), nil
	case "success_rate":
		return res.Stats.SuccessRate(), nil
	case "failures":
		return float64(res.Stats.Failures), nil
	case "successes":
		return float64(res.Stats.Successes), nil
	case "mean_ms":
		return res.Stats.MeanLatencyMs, nil
	case "p50_ms":
		return res.Stats.P50LatencyMs, nil
	case "p90_ms":
		return res.Stats.P90LatencyMs, nil
	case "p99_ms":
		return res.Stats.P99LatencyMs, nil
	}
	return 0, fmt.Errorf("unknown metric %q", t.Metric)
}

func compareValues(actual float64, operator string, value float64) bool {
	switch operator {
	case "<":
		return actual < value
	case "<=":
		return actual <= value
	case ">":
		return actual > value
	case ">=":
		return actual >= value
	case "==":
		return math.Abs(actual-value) < 1e-9
	}
	return false
}
