package strategy

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/Bubalan0203/crawlbench/internal/fetch"
)

// Strategy identifies one of the three execution models.
type Strategy string

const (
	Sequential        Strategy = "sequential"
	Pooled            Strategy = "pooled"
	BoundedConcurrent Strategy = "bounded"
)

// Parse converts a config string into a Strategy.
func Parse(s string) (Strategy, error) {
	switch Strategy(s) {
	case Sequential, Pooled, BoundedConcurrent:
		return Strategy(s), nil
	default:
		return "", fmt.Errorf("unknown strategy %q (want sequential, pooled or bounded)", s)
	}
}

// Run is one runner's execution over the full target list. Outcomes are in
// input order, one per target, regardless of completion order.
type Run struct {
	Strategy  Strategy        `json:"strategy"`
	Outcomes  []fetch.Outcome `json:"outcomes"`
	Elapsed   time.Duration   `json:"-"`
	ElapsedMs float64         `json:"elapsed_ms"`
	Successes int             `json:"successes"`
	Failures  int             `json:"failures"`
}

// Runner executes one strategy over a target list.
type Runner interface {
	Strategy() Strategy
	Run(ctx context.Context, targets []string) (Run, error)
}

func newRun(s Strategy, outcomes []fetch.Outcome, elapsed time.Duration) Run {
	run := Run{
		Strategy:  s,
		Outcomes:  outcomes,
		Elapsed:   elapsed,
		ElapsedMs: float64(elapsed) / float64(time.Millisecond),
	}
	for _, o := range outcomes {
		if o.Succeeded {
			run.Successes++
		} else {
			run.Failures++
		}
	}
	return run
}

// fetchOne admits one target through the optional pacing limiter and guards
// the fetch so a panic is captured as a terminal Outcome instead of taking
// down sibling workers.
func fetchOne(ctx context.Context, exec *fetch.Executor, limiter *rate.Limiter, target string) (out fetch.Outcome) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			out = fetch.UnknownOutcome(target, time.Since(start), fmt.Sprintf("panic: %v", r))
		}
	}()

	if limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return fetch.CancelledOutcome(target, time.Since(start))
		}
	}
	return exec.Fetch(ctx, target)
}
