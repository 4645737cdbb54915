package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/Bubalan0203/crawlbench/internal/bench"
	"github.com/Bubalan0203/crawlbench/internal/metrics"
	"github.com/Bubalan0203/crawlbench/internal/threshold"
)

// PrintReport outputs a human-readable comparison report.
func PrintReport(w io.Writer, report *bench.Report) {
	fmt.Fprintln(w, "\n--- Crawl Benchmark Results ---")
	fmt.Fprintf(w, "Targets:           %d\n", report.TargetCount)

	for _, res := range report.Results {
		fmt.Fprintf(w, "\n[%s]\n", res.Strategy)
		if res.Error != "" {
			fmt.Fprintf(w, "  Error:           %s\n", res.Error)
			continue
		}

		fmt.Fprintf(w, "  Duration:        %s\n", res.Run.Elapsed)
		fmt.Fprintf(w, "  Successful:      %d\n", res.Run.Successes)
		fmt.Fprintf(w, "  Failed:          %d\n", res.Run.Failures)
		if speedup, ok := report.Speedups[res.Strategy]; ok {
			fmt.Fprintf(w, "  Speedup:         %.2fx\n", speedup)
		}

		stats := res.Stats
		fmt.Fprintln(w, "  Per-target latency:")
		fmt.Fprintf(w, "    Min:           %s\n", stats.MinLatency)
		fmt.Fprintf(w, "    Max:           %s\n", stats.MaxLatency)
		fmt.Fprintf(w, "    Mean:          %s\n", stats.MeanLatency)
		fmt.Fprintf(w, "    P50:           %s\n", stats.P50Latency)
		fmt.Fprintf(w, "    P90:           %s\n", stats.P90Latency)
		fmt.Fprintf(w, "    P99:           %s\n", stats.P99Latency)

		if len(stats.FailuresByReason) > 0 {
			fmt.Fprintln(w, "  Failures by reason:")
			writeBuckets(w, stats.FailuresByReason, "    ")
		}
		if len(stats.StatusCounts) > 0 {
			fmt.Fprintln(w, "  Status codes:")
			writeBuckets(w, stats.StatusCounts, "    ")
		}
	}
}

// PrintJSONReport outputs a JSON-formatted report.
func PrintJSONReport(w io.Writer, report *bench.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// PrintThresholdResults outputs one line per evaluated threshold.
func PrintThresholdResults(w io.Writer, results []threshold.Result) {
	if len(results) == 0 {
		return
	}
	fmt.Fprintln(w, "\nThresholds:")
	for _, r := range results {
		fmt.Fprintf(w, "  %s\n", r.Message)
	}
}

func writeBuckets(w io.Writer, counts map[string]int, indent string) {
	for _, row := range metrics.FlattenBuckets(counts) {
		fmt.Fprintf(w, "%s%s: %d\n", indent, row.Label, row.Count)
	}
}
