package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/Bubalan0203/crawlbench/internal/strategy"
)

// Config holds every knob for one benchmark invocation. It is populated once
// by the Loader and treated as immutable afterwards.
type Config struct {
	TargetsFile string   `mapstructure:"targets_file"`
	Targets     []string `mapstructure:"targets"`

	Timeout          time.Duration `mapstructure:"timeout"`
	Retries          int           `mapstructure:"retries"`
	Workers          int           `mapstructure:"workers"`
	ConcurrencyLimit int           `mapstructure:"concurrency_limit"`
	Strategies       []string      `mapstructure:"strategies"`
	Rate             int           `mapstructure:"rate"`
	Deadline         time.Duration `mapstructure:"deadline"`

	// Retry backoff base per strategy; 0 means retry immediately. The delay
	// doubles per retry. Retry count and retryable error kinds are shared, so
	// backoff is the only per-strategy retry knob.
	SequentialBackoff time.Duration `mapstructure:"sequential_backoff"`
	PooledBackoff     time.Duration `mapstructure:"pooled_backoff"`
	BoundedBackoff    time.Duration `mapstructure:"bounded_backoff"`

	UserAgent string `mapstructure:"user_agent"`

	JSONOutput  bool   `mapstructure:"json_output"`
	HTMLOutput  string `mapstructure:"html_output"`
	HistoryPath string `mapstructure:"history_path"`
	Serve       bool   `mapstructure:"serve"`
	ListenAddr  string `mapstructure:"listen_addr"`

	Thresholds []string `mapstructure:"thresholds"`
	Verbose    bool     `mapstructure:"verbose"`

	ConfigFile string `mapstructure:"-"`
}

// EnabledStrategies parses the configured strategy names, preserving order
// and dropping duplicates.
func (c Config) EnabledStrategies() ([]strategy.Strategy, error) {
	seen := make(map[strategy.Strategy]bool, len(c.Strategies))
	out := make([]strategy.Strategy, 0, len(c.Strategies))
	for _, name := range c.Strategies {
		s, err := strategy.Parse(strings.ToLower(strings.TrimSpace(name)))
		if err != nil {
			return nil, err
		}
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out, nil
}

// ValidationError collects every configuration issue found during Validate.
type ValidationError struct {
	issues []string
}

func (e ValidationError) Error() string {
	if len(e.issues) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(e.issues, "; "))
}

func (e ValidationError) Issues() []string {
	return append([]string(nil), e.issues...)
}

func (c Config) Validate() error {
	var issues []string

	if strings.TrimSpace(c.TargetsFile) == "" && len(c.Targets) == 0 {
		issues = append(issues, "at least one target or a targets file is required (use --help for usage information)")
	}
	if c.Timeout <= 0 {
		issues = append(issues, "timeout must be > 0")
	}
	if c.Retries < 0 {
		issues = append(issues, "retries must be >= 0")
	}
	if c.Workers < 1 {
		issues = append(issues, "workers must be >= 1")
	}
	if c.ConcurrencyLimit < 1 {
		issues = append(issues, "concurrency-limit must be >= 1")
	}
	if c.Rate < 0 {
		issues = append(issues, "rate must be >= 0")
	}
	if c.Deadline < 0 {
		issues = append(issues, "deadline must be >= 0")
	}
	if c.SequentialBackoff < 0 || c.PooledBackoff < 0 || c.BoundedBackoff < 0 {
		issues = append(issues, "backoff durations must be >= 0")
	}
	if len(c.Strategies) == 0 {
		issues = append(issues, "at least one strategy must be enabled")
	} else if _, err := c.EnabledStrategies(); err != nil {
		issues = append(issues, err.Error())
	}
	if c.Serve && strings.TrimSpace(c.ListenAddr) == "" {
		issues = append(issues, "listen-addr is required when serve is enabled")
	}

	if len(issues) > 0 {
		return ValidationError{issues: issues}
	}
	return nil
}
