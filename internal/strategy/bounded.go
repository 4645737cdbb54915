package strategy

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/Bubalan0203/crawlbench/internal/fetch"
)

// BoundedRunner schedules every target at once and bounds the number of
// simultaneously in-flight fetches with a weighted semaphore. The semaphore
// is the only gate: one target's timeout or cancellation never blocks a
// sibling except through that admission limit. The executor's HTTP client
// keeps idle connections per host, so targets sharing a destination reuse
// connections instead of re-handshaking.
type BoundedRunner struct {
	exec    *fetch.Executor
	limit   int64
	limiter *rate.Limiter
}

// NewBounded creates a runner capped at limit in-flight fetches.
func NewBounded(exec *fetch.Executor, limit int, limiter *rate.Limiter) (*BoundedRunner, error) {
	if exec == nil {
		return nil, errors.New("bounded runner requires a fetch executor")
	}
	if limit < 1 {
		return nil, fmt.Errorf("concurrency limit must be >= 1, got %d", limit)
	}
	return &BoundedRunner{exec: exec, limit: int64(limit), limiter: limiter}, nil
}

func (r *BoundedRunner) Strategy() Strategy { return BoundedConcurrent }

func (r *BoundedRunner) Run(ctx context.Context, targets []string) (Run, error) {
	start := time.Now()
	outcomes := make([]fetch.Outcome, len(targets))

	sem := semaphore.NewWeighted(r.limit)
	var wg sync.WaitGroup
	for i, target := range targets {
		wg.Add(1)
		go func(i int, target string) {
			defer wg.Done()
			admitted := time.Now()
			if err := sem.Acquire(ctx, 1); err != nil {
				// Run cancelled while waiting for admission: the target was
				// still pending, record it as such rather than dropping it.
				outcomes[i] = fetch.CancelledOutcome(target, time.Since(admitted))
				return
			}
			defer sem.Release(1)
			outcomes[i] = fetchOne(ctx, r.exec, r.limiter, target)
		}(i, target)
	}
	wg.Wait()

	return newRun(BoundedConcurrent, outcomes, time.Since(start)), nil
}
