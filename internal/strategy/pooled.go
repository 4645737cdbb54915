package strategy

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/Bubalan0203/crawlbench/internal/fetch"
)

// PooledRunner distributes targets across a fixed-size pool of workers.
// Each worker writes into its own slots of the shared outcome slice, so the
// results land in input order without any post-hoc sort and without a lock.
type PooledRunner struct {
	exec    *fetch.Executor
	workers int
	limiter *rate.Limiter
}

// NewPooled creates a runner backed by workers parallel execution units.
func NewPooled(exec *fetch.Executor, workers int, limiter *rate.Limiter) (*PooledRunner, error) {
	if exec == nil {
		return nil, errors.New("pooled runner requires a fetch executor")
	}
	if workers < 1 {
		return nil, fmt.Errorf("worker count must be >= 1, got %d", workers)
	}
	return &PooledRunner{exec: exec, workers: workers, limiter: limiter}, nil
}

func (r *PooledRunner) Strategy() Strategy { return Pooled }

func (r *PooledRunner) Run(ctx context.Context, targets []string) (Run, error) {
	start := time.Now()
	outcomes := make([]fetch.Outcome, len(targets))
	if len(targets) == 0 {
		return newRun(Pooled, outcomes, time.Since(start)), nil
	}

	// No point spinning up more workers than targets.
	workers := r.workers
	if workers > len(targets) {
		workers = len(targets)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range jobs {
				outcomes[i] = fetchOne(ctx, r.exec, r.limiter, targets[i])
			}
		}()
	}

	for i := range targets {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return newRun(Pooled, outcomes, time.Since(start)), nil
}
