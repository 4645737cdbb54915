package config

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// RegisterFlags registers all CLI flags to a cobra command.
func RegisterFlags(cmd *cobra.Command) {
	configureFlags(cmd.Flags())
}

// newFlagCommand creates a cobra command with all flags configured.
func newFlagCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "crawlbench",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.SetOut(os.Stdout)
	configureFlags(cmd.Flags())
	return cmd
}

// configureFlags sets up all CLI flags on the provided flag set.
func configureFlags(flags *pflag.FlagSet) {
	// Target flags
	flags.String("targets-file", "", "Path to a newline-delimited file of target URLs")
	flags.StringSlice("target", nil, "Target URL to fetch (repeatable)")

	// Fetch flags, shared by every strategy
	flags.Duration("timeout", 10*time.Second, "Per-attempt fetch timeout")
	flags.Int("retries", 2, "Retries per target after the first attempt")
	flags.String("user-agent", "", "User-Agent header for all fetches")

	// Strategy flags
	flags.StringSlice("strategy", nil, "Strategy to benchmark: sequential, pooled or bounded (repeatable; default all three)")
	flags.IntP("workers", "w", 10, "Worker count for the pooled strategy")
	flags.IntP("concurrency-limit", "c", 50, "Max in-flight fetches for the bounded strategy")
	flags.IntP("rate", "r", 0, "Fetches per second pacing shared by all strategies (0 means unlimited)")
	flags.DurationP("deadline", "d", 0, "Overall benchmark deadline (0 means none)")
	flags.Duration("sequential-backoff", 0, "Retry backoff base for the sequential strategy (0 means immediate)")
	flags.Duration("pooled-backoff", 0, "Retry backoff base for the pooled strategy (0 means immediate)")
	flags.Duration("bounded-backoff", 500*time.Millisecond, "Retry backoff base for the bounded strategy (0 means immediate)")

	// Output flags
	flags.Bool("json-output", false, "Emit JSON formatted output")
	flags.String("html-output", "", "Generate an HTML comparison report to the specified file path")
	flags.String("history-path", "", "SQLite file for persisting benchmark sessions (empty disables persistence)")
	flags.Bool("serve", false, "Serve report and history over HTTP after the run")
	flags.String("listen-addr", ":8080", "Address for the HTTP server when --serve is set")
	flags.StringSlice("threshold", nil, "Benchmark assertion, e.g. 'pooled:speedup >= 2' (repeatable)")
	flags.BoolP("verbose", "v", false, "Enable debug logging")
	flags.String("config", "", "Path to configuration file (JSON or YAML)")
}

// displayHelp prints the flag usage for the command.
func displayHelp(cmd *cobra.Command) {
	cmd.SetOut(os.Stdout)
	_ = cmd.Usage()
}
