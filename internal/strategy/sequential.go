package strategy

import (
	"context"
	"errors"
	"time"

	"golang.org/x/time/rate"

	"github.com/Bubalan0203/crawlbench/internal/fetch"
)

// SequentialRunner fetches targets one at a time in input order. It is the
// performance and correctness baseline: no two fetches overlap in time.
type SequentialRunner struct {
	exec    *fetch.Executor
	limiter *rate.Limiter
}

// NewSequential creates the baseline runner.
func NewSequential(exec *fetch.Executor, limiter *rate.Limiter) (*SequentialRunner, error) {
	if exec == nil {
		return nil, errors.New("sequential runner requires a fetch executor")
	}
	return &SequentialRunner{exec: exec, limiter: limiter}, nil
}

func (r *SequentialRunner) Strategy() Strategy { return Sequential }

func (r *SequentialRunner) Run(ctx context.Context, targets []string) (Run, error) {
	start := time.Now()
	outcomes := make([]fetch.Outcome, len(targets))
	for i, target := range targets {
		outcomes[i] = fetchOne(ctx, r.exec, r.limiter, target)
	}
	return newRun(Sequential, outcomes, time.Since(start)), nil
}
