package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"github.com/Bubalan0203/crawlbench/internal/api"
	"github.com/Bubalan0203/crawlbench/internal/bench"
	"github.com/Bubalan0203/crawlbench/internal/config"
	"github.com/Bubalan0203/crawlbench/internal/fetch"
	"github.com/Bubalan0203/crawlbench/internal/history"
	"github.com/Bubalan0203/crawlbench/internal/output"
	"github.com/Bubalan0203/crawlbench/internal/strategy"
	"github.com/Bubalan0203/crawlbench/internal/targets"
	"github.com/Bubalan0203/crawlbench/internal/threshold"
)

const maxRetryDelay = 5 * time.Second

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	loader := config.NewLoader()
	cfg, err := loader.Load(args)
	if err != nil {
		if errors.Is(err, config.ErrHelpRequested) {
			return nil
		}
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := newLogger(cfg.Verbose)

	targetList := append([]string(nil), cfg.Targets...)
	if cfg.TargetsFile != "" {
		fromFile, err := targets.LoadFile(cfg.TargetsFile)
		if err != nil {
			return err
		}
		targetList = append(targetList, fromFile...)
	}

	thresholds, err := threshold.ParseAll(cfg.Thresholds)
	if err != nil {
		return err
	}

	runners, err := buildRunners(cfg, logger)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	orch := bench.New(bench.Options{
		Runners:  runners,
		Deadline: cfg.Deadline,
		Logger:   logger,
	})
	report := orch.Run(ctx, targetList)

	results := threshold.NewEvaluator(thresholds).Evaluate(&report)

	if cfg.JSONOutput {
		if err := output.PrintJSONReport(os.Stdout, &report); err != nil {
			return err
		}
	} else {
		output.PrintReport(os.Stdout, &report)
		output.PrintThresholdResults(os.Stdout, results)
	}

	if cfg.HTMLOutput != "" {
		if err := writeHTMLReport(cfg.HTMLOutput, &report, results); err != nil {
			return err
		}
		logger.Info("wrote HTML report", slog.String("path", cfg.HTMLOutput))
	}

	var store *history.Store
	if cfg.HistoryPath != "" {
		store, err = history.Open(ctx, cfg.HistoryPath)
		if err != nil {
			return err
		}
		defer store.Close()

		sessionID, err := store.SaveReport(ctx, &report)
		if err != nil {
			return err
		}
		logger.Info("benchmark session saved",
			slog.String("session_id", sessionID),
			slog.String("path", cfg.HistoryPath),
		)
	}

	if cfg.Serve {
		return serve(ctx, cfg.ListenAddr, &report, store, logger)
	}

	if failed := countFailed(results); failed > 0 {
		return fmt.Errorf("%d threshold(s) failed", failed)
	}
	return nil
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// buildRunners constructs one runner per enabled strategy. Each runner gets
// its own executor, client and pacing limiter so no state is shared across
// strategies. A runner that cannot be constructed is wrapped so the failure
// surfaces as that strategy's report entry instead of aborting the process.
func buildRunners(cfg *config.Config, logger *slog.Logger) ([]strategy.Runner, error) {
	enabled, err := cfg.EnabledStrategies()
	if err != nil {
		return nil, err
	}

	runners := make([]strategy.Runner, 0, len(enabled))
	for _, s := range enabled {
		exec := fetch.NewExecutor(nil, fetch.Options{
			Timeout:    cfg.Timeout,
			MaxRetries: cfg.Retries,
			Backoff:    backoffFor(cfg, s),
			UserAgent:  cfg.UserAgent,
			Logger:     logger,
		})
		limiter := newLimiter(cfg.Rate)

		var (
			runner   strategy.Runner
			buildErr error
		)
		switch s {
		case strategy.Sequential:
			runner, buildErr = strategy.NewSequential(exec, limiter)
		case strategy.Pooled:
			runner, buildErr = strategy.NewPooled(exec, cfg.Workers, limiter)
		case strategy.BoundedConcurrent:
			runner, buildErr = strategy.NewBounded(exec, cfg.ConcurrencyLimit, limiter)
		}
		if buildErr != nil {
			runner = &failedRunner{strategy: s, err: buildErr}
		}
		runners = append(runners, runner)
	}
	return runners, nil
}

// backoffFor returns the retry backoff configured for one strategy; nil
// means retry immediately.
func backoffFor(cfg *config.Config, s strategy.Strategy) fetch.BackoffFunc {
	var base time.Duration
	switch s {
	case strategy.Sequential:
		base = cfg.SequentialBackoff
	case strategy.Pooled:
		base = cfg.PooledBackoff
	case strategy.BoundedConcurrent:
		base = cfg.BoundedBackoff
	}
	if base <= 0 {
		return nil
	}
	return fetch.ExponentialBackoff(base, maxRetryDelay)
}

func newLimiter(rps int) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	// Burst equal to rps to smooth pacing under concurrency.
	return rate.NewLimiter(rate.Limit(rps), rps)
}

// failedRunner stands in for a strategy whose runner could not be allocated;
// its error becomes that strategy's report entry.
type failedRunner struct {
	strategy strategy.Strategy
	err      error
}

func (f *failedRunner) Strategy() strategy.Strategy { return f.strategy }

func (f *failedRunner) Run(ctx context.Context, targetList []string) (strategy.Run, error) {
	return strategy.Run{}, f.err
}

func writeHTMLReport(path string, report *bench.Report, results []threshold.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create HTML report: %w", err)
	}
	defer f.Close()
	return output.GenerateHTMLReport(f, report, results)
}

func serve(ctx context.Context, addr string, report *bench.Report, store *history.Store, logger *slog.Logger) error {
	srv := api.NewServer(addr, report, store, logger)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	return srv.ListenAndServe()
}

func countFailed(results []threshold.Result) int {
	failed := 0
	for _, r := range results {
		if !r.Pass {
			failed++
		}
	}
	return failed
}
