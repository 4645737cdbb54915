package bench

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Bubalan0203/crawlbench/internal/metrics"
	"github.com/Bubalan0203/crawlbench/internal/strategy"
)

// StrategyResult is one strategy's entry in the report: either a completed
// run with its stats, or a strategy-level error when the runner could not
// execute at all.
type StrategyResult struct {
	Strategy strategy.Strategy `json:"strategy"`
	Run      *strategy.Run     `json:"run,omitempty"`
	Stats    *metrics.Stats    `json:"stats,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// Report is the full comparison across all enabled strategies for one
// benchmark invocation. It is the sole contract the presentation and
// persistence layers depend on.
type Report struct {
	StartedAt   time.Time                     `json:"started_at"`
	TargetCount int                           `json:"target_count"`
	Results     []StrategyResult              `json:"results"`
	Speedups    map[strategy.Strategy]float64 `json:"speedups,omitempty"`
}

// Result returns the entry for s, or nil if that strategy was not enabled.
func (r *Report) Result(s strategy.Strategy) *StrategyResult {
	for i := range r.Results {
		if r.Results[i].Strategy == s {
			return &r.Results[i]
		}
	}
	return nil
}

// Options configure the Orchestrator.
type Options struct {
	Runners  []strategy.Runner // enabled strategies, in execution order
	Deadline time.Duration     // overall run deadline (0 means none)
	Logger   *slog.Logger
}

func (o *Options) normalize() {
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

// Orchestrator runs the enabled strategies one after another over the same
// target list and assembles the comparative report. Strategies never
// interleave, so one strategy's network contention cannot skew another's
// timing.
type Orchestrator struct {
	opt Options
}

func New(opt Options) *Orchestrator {
	opt.normalize()
	return &Orchestrator{opt: opt}
}

// Run executes every enabled strategy and builds the report. A strategy that
// fails catastrophically gets an error entry; the rest still run.
func (o *Orchestrator) Run(ctx context.Context, targets []string) Report {
	report := Report{
		StartedAt:   time.Now().UTC(),
		TargetCount: len(targets),
	}

	if o.opt.Deadline > 0 {
		deadlineCtx, cancel := context.WithTimeout(ctx, o.opt.Deadline)
		ctx = deadlineCtx
		defer cancel()
	}

	for _, runner := range o.opt.Runners {
		report.Results = append(report.Results, o.runOne(ctx, runner, targets))
	}

	report.Speedups = speedups(report.Results)
	return report
}

func (o *Orchestrator) runOne(ctx context.Context, runner strategy.Runner, targets []string) (res StrategyResult) {
	res.Strategy = runner.Strategy()
	logger := o.opt.Logger.With(slog.String("strategy", string(res.Strategy)))

	defer func() {
		if r := recover(); r != nil {
			res.Run = nil
			res.Stats = nil
			res.Error = fmt.Sprintf("runner panicked: %v", r)
			logger.ErrorContext(ctx, "strategy aborted", slog.String("error", res.Error))
		}
	}()

	logger.InfoContext(ctx, "starting strategy run", slog.Int("targets", len(targets)))

	run, err := runner.Run(ctx, targets)
	if err != nil {
		res.Error = err.Error()
		logger.ErrorContext(ctx, "strategy failed", slog.Any("error", err))
		return res
	}

	collector := metrics.NewCollector()
	for _, outcome := range run.Outcomes {
		collector.Record(outcome)
	}
	stats := collector.Stats()

	res.Run = &run
	res.Stats = &stats
	logger.InfoContext(ctx, "strategy run completed",
		slog.Duration("elapsed", run.Elapsed),
		slog.Int("successes", run.Successes),
		slog.Int("failures", run.Failures),
	)
	return res
}

// speedups computes each strategy's total elapsed relative to the Sequential
// baseline. Omitted entirely when Sequential is disabled or did not complete;
// never estimated.
func speedups(results []StrategyResult) map[strategy.Strategy]float64 {
	var baseline *strategy.Run
	for i := range results {
		if results[i].Strategy == strategy.Sequential && results[i].Run != nil {
			baseline = results[i].Run
			break
		}
	}
	if baseline == nil || baseline.Elapsed <= 0 {
		return nil
	}

	out := make(map[strategy.Strategy]float64, len(results))
	for i := range results {
		run := results[i].Run
		if run == nil || run.Elapsed <= 0 {
			continue
		}
		out[results[i].Strategy] = float64(baseline.Elapsed) / float64(run.Elapsed)
	}
	return out
}
