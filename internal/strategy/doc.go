// Package strategy implements the three execution models compared by a
// benchmark run: one-at-a-time ([SequentialRunner]), a fixed-size worker
// pool ([PooledRunner]) and semaphore-bounded fan-out ([BoundedRunner]).
//
// All three drive the same fetch.Executor over the same target list and
// produce a [Run] whose outcome slice is in input order with exactly one
// entry per target, failures included. Retry count and retryable error kinds
// come from the shared executor configuration, so the runners differ only in
// how they schedule work.
package strategy
