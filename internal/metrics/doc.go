// Package metrics aggregates per-target fetch outcomes into per-strategy
// statistics.
//
// A [Collector] is fed every outcome of one strategy run and produces a
// [Stats] value with success/failure counts, latency percentiles backed by
// an HDR histogram, and breakdowns by failure reason and HTTP status code.
// The collector is safe for concurrent use by pooled workers.
package metrics
