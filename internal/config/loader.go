package config

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Loader handles loading configuration from files and command-line arguments.
type Loader struct{}

// ErrHelpRequested is returned when the user requests help via --help flag.
var ErrHelpRequested = errors.New("help requested")

// NewLoader creates a new configuration Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses command-line arguments and an optional configuration file to
// produce a Config. Flags set on the command line win over file settings.
func (Loader) Load(args []string) (*Config, error) {
	cmd := newFlagCommand()
	if err := cmd.Flags().Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
		return nil, err
	}

	flagSet := cmd.Flags()
	if helpFlag := flagSet.Lookup("help"); helpFlag != nil {
		if wantsHelp, err := strconv.ParseBool(helpFlag.Value.String()); err == nil && wantsHelp {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
	}

	configPath := flagSet.Lookup("config").Value.String()
	if len(args) == 0 && configPath == "" {
		displayHelp(cmd)
		return nil, ErrHelpRequested
	}

	cfg := defaultConfig()
	cfg.ConfigFile = configPath

	if configPath != "" {
		cfgViper := viper.New()
		cfgViper.SetConfigFile(configPath)
		if err := cfgViper.ReadInConfig(); err != nil {
			return nil, err
		}
		if err := cfgViper.Unmarshal(cfg); err != nil {
			return nil, err
		}
	}

	applyFlagOverrides(cfg, flagSet)

	cfg.TargetsFile = strings.TrimSpace(cfg.TargetsFile)
	cfg.UserAgent = strings.TrimSpace(cfg.UserAgent)
	if len(cfg.Strategies) == 0 {
		cfg.Strategies = defaultStrategies()
	}

	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Timeout:          10 * time.Second,
		Retries:          2,
		Workers:          10,
		ConcurrencyLimit: 50,
		BoundedBackoff:   500 * time.Millisecond,
		ListenAddr:       ":8080",
	}
}

func defaultStrategies() []string {
	return []string{"sequential", "pooled", "bounded"}
}

// applyFlagOverrides copies explicitly-set flags over the file-derived
// config. Flags the user did not touch leave the file values alone.
func applyFlagOverrides(cfg *Config, flags *pflag.FlagSet) {
	if flags.Changed("targets-file") {
		cfg.TargetsFile, _ = flags.GetString("targets-file")
	}
	if flags.Changed("target") {
		cfg.Targets, _ = flags.GetStringSlice("target")
	}
	if flags.Changed("timeout") {
		cfg.Timeout, _ = flags.GetDuration("timeout")
	}
	if flags.Changed("retries") {
		cfg.Retries, _ = flags.GetInt("retries")
	}
	if flags.Changed("user-agent") {
		cfg.UserAgent, _ = flags.GetString("user-agent")
	}
	if flags.Changed("strategy") {
		cfg.Strategies, _ = flags.GetStringSlice("strategy")
	}
	if flags.Changed("workers") {
		cfg.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("concurrency-limit") {
		cfg.ConcurrencyLimit, _ = flags.GetInt("concurrency-limit")
	}
	if flags.Changed("rate") {
		cfg.Rate, _ = flags.GetInt("rate")
	}
	if flags.Changed("deadline") {
		cfg.Deadline, _ = flags.GetDuration("deadline")
	}
	if flags.Changed("sequential-backoff") {
		cfg.SequentialBackoff, _ = flags.GetDuration("sequential-backoff")
	}
	if flags.Changed("pooled-backoff") {
		cfg.PooledBackoff, _ = flags.GetDuration("pooled-backoff")
	}
	if flags.Changed("bounded-backoff") {
		cfg.BoundedBackoff, _ = flags.GetDuration("bounded-backoff")
	}
	if flags.Changed("json-output") {
		cfg.JSONOutput, _ = flags.GetBool("json-output")
	}
	if flags.Changed("html-output") {
		cfg.HTMLOutput, _ = flags.GetString("html-output")
	}
	if flags.Changed("history-path") {
		cfg.HistoryPath, _ = flags.GetString("history-path")
	}
	if flags.Changed("serve") {
		cfg.Serve, _ = flags.GetBool("serve")
	}
	if flags.Changed("listen-addr") {
		cfg.ListenAddr, _ = flags.GetString("listen-addr")
	}
	if flags.Changed("threshold") {
		cfg.Thresholds, _ = flags.GetStringSlice("threshold")
	}
	if flags.Changed("verbose") {
		cfg.Verbose, _ = flags.GetBool("verbose")
	}
}
