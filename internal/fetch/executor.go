package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"syscall"
	"time"
)

const (
	maxLoggedBodyBytes = 1024
	defaultMaxBodySize = 5 * 1024 * 1024
	defaultUserAgent   = "Mozilla/5.0 (compatible; crawlbench/1.0)"
)

// StatusError represents a response received with a non-success status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// BackoffFunc computes the delay before a retry. attempt is 1-based: the
// delay returned for attempt n is applied before the n-th retry.
type BackoffFunc func(attempt int) time.Duration

// ExponentialBackoff returns a BackoffFunc that doubles the base delay for
// each retry, capped at max.
func ExponentialBackoff(base, max time.Duration) BackoffFunc {
	return func(attempt int) time.Duration {
		delay := base << (attempt - 1)
		if delay > max || delay <= 0 {
			return max
		}
		return delay
	}
}

// Options configure an Executor.
//
// Timeout and MaxRetries must be identical across the runners being compared;
// Backoff is the one knob that may legitimately differ per runner.
type Options struct {
	Timeout     time.Duration // per attempt, not per target
	MaxRetries  int           // additional attempts after the first
	Backoff     BackoffFunc   // nil means retry immediately
	UserAgent   string
	MaxBodySize int64
	Logger      *slog.Logger
}

func (o *Options) normalize() {
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Second
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.UserAgent == "" {
		o.UserAgent = defaultUserAgent
	}
	if o.MaxBodySize <= 0 {
		o.MaxBodySize = defaultMaxBodySize
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

// Executor performs one logical fetch of one target, including retries,
// per-attempt timeout enforcement and result classification. It never returns
// an error: every failure mode is captured into the Outcome.
type Executor struct {
	client Doer
	opt    Options
}

// NewExecutor creates an Executor. A nil client gets a pooled default.
func NewExecutor(client Doer, opt Options) *Executor {
	opt.normalize()
	if client == nil {
		client = NewClient()
	}
	return &Executor{client: client, opt: opt}
}

// Fetch resolves target into exactly one Outcome. Elapsed covers the whole
// attempt sequence, retries and backoff delays included.
func (e *Executor) Fetch(ctx context.Context, target string) Outcome {
	start := time.Now()
	logger := e.opt.Logger.With(slog.String("target", target))

	var last Outcome
	for attempt := 0; attempt <= e.opt.MaxRetries; attempt++ {
		if attempt > 0 && e.opt.Backoff != nil {
			delay := e.opt.Backoff(attempt)
			if delay > 0 {
				select {
				case <-time.After(delay):
				case <-ctx.Done():
					out := CancelledOutcome(target, time.Since(start))
					out.Retries = attempt
					return out
				}
			}
		}
		if ctx.Err() != nil {
			out := CancelledOutcome(target, time.Since(start))
			out.Retries = attempt
			return out
		}

		out, retryable := e.attempt(ctx, target)
		out.Retries = attempt
		out = out.withElapsed(time.Since(start))
		if !retryable {
			if out.Succeeded {
				logger.DebugContext(ctx, "fetch succeeded",
					slog.Int("status_code", out.StatusCode),
					slog.Int("links", out.LinkCount),
					slog.Int("retries", out.Retries),
				)
			} else {
				logger.WarnContext(ctx, "fetch failed",
					slog.String("reason", string(out.Reason)),
					slog.String("detail", out.Detail),
				)
			}
			return out
		}

		logger.WarnContext(ctx, "retryable fetch failure",
			slog.Int("attempt", attempt+1),
			slog.String("reason", string(out.Reason)),
			slog.String("detail", out.Detail),
		)
		last = out
	}

	logger.WarnContext(ctx, "retries exhausted",
		slog.Int("max_retries", e.opt.MaxRetries),
		slog.String("reason", string(last.Reason)),
	)
	return last.withElapsed(time.Since(start))
}

// attempt performs one network round-trip. The second return value reports
// whether the failure kind is retryable.
func (e *Executor) attempt(ctx context.Context, target string) (Outcome, bool) {
	attemptCtx, cancel := context.WithTimeout(ctx, e.opt.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, target, nil)
	if err != nil {
		return Outcome{Target: target, Reason: ReasonUnknown, Detail: err.Error()}, false
	}
	req.Header.Set("User-Agent", e.opt.UserAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		// The run itself being cancelled takes precedence over whatever
		// transport error the abort surfaced as.
		if ctx.Err() != nil {
			return Outcome{Target: target, Reason: ReasonCancelled, Detail: ctx.Err().Error()}, false
		}
		reason, retryable := classify(err)
		if reason == ReasonUnknown {
			e.opt.Logger.ErrorContext(ctx, "uncategorized fetch error",
				slog.String("target", target),
				slog.Any("error", err),
			)
		}
		return Outcome{Target: target, Reason: reason, Detail: err.Error()}, retryable
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxLoggedBodyBytes))
		_, _ = io.Copy(io.Discard, resp.Body)
		statusErr := &StatusError{StatusCode: resp.StatusCode, Body: string(snippet)}
		return Outcome{
			Target:     target,
			StatusCode: resp.StatusCode,
			Reason:     ReasonHTTPStatus,
			Detail:     statusErr.Error(),
		}, false
	}

	out := Outcome{Target: target, Succeeded: true, StatusCode: resp.StatusCode}
	summary, parseErr := parsePage(io.LimitReader(resp.Body, e.opt.MaxBodySize))
	_, _ = io.Copy(io.Discard, resp.Body)
	if parseErr != nil {
		// A parse failure downgrades to success with empty extracted fields.
		e.opt.Logger.WarnContext(ctx, "page parse failed",
			slog.String("target", target),
			slog.String("reason", string(ReasonParse)),
			slog.Any("error", parseErr),
		)
		return out, false
	}
	out.Title = summary.title
	out.LinkCount = summary.linkCount
	return out, false
}

// classify maps a transport error to a failure Reason and whether that kind
// may be retried. The mapping is shared by all runners.
func classify(err error) (Reason, bool) {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return ReasonTimeout, true
	}

	var dnsErr *net.DNSError
	var opErr *net.OpError
	if errors.As(err, &dnsErr) || errors.As(err, &opErr) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) {
		return ReasonConnection, true
	}

	return ReasonUnknown, false
}
