package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"time"

	"github.com/c360/ringbuffer/errors"
)

// CLIConfig holds command-line configuration
type CLIConfig struct {
	ConfigPath      string
	LogLevel        string
	LogFormat       string
	MetricsPort     int
	Producers       int
	Consumers       int
	BatchSize       int
	Duration        time.Duration
	ShutdownTimeout time.Duration
	ShowVersion     bool
	Validate        bool
}

func parseFlags(args []string, stderr io.Writer) (*CLIConfig, error) {
	cfg := &CLIConfig{}
	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&cfg.ConfigPath, "config", getEnv("RINGLOAD_CONFIG", ""),
		"Buffer config file, YAML or JSON; empty uses defaults (env: RINGLOAD_CONFIG)")
	fs.StringVar(&cfg.LogLevel, "log-level", getEnv("RINGLOAD_LOG_LEVEL", "info"),
		"Log level: debug, info, warn, error (env: RINGLOAD_LOG_LEVEL)")
	fs.StringVar(&cfg.LogFormat, "log-format", getEnv("RINGLOAD_LOG_FORMAT", "json"),
		"Log format: json, text (env: RINGLOAD_LOG_FORMAT)")
	fs.IntVar(&cfg.MetricsPort, "metrics-port", getEnvInt("RINGLOAD_METRICS_PORT", 0),
		"Prometheus metrics port, 0 to disable (env: RINGLOAD_METRICS_PORT)")
	fs.IntVar(&cfg.Producers, "producers", 4, "Number of writer goroutines")
	fs.IntVar(&cfg.Consumers, "consumers", 2, "Number of reader goroutines")
	fs.IntVar(&cfg.BatchSize, "batch", 32, "Items per ReadBatch call")
	fs.DurationVar(&cfg.Duration, "duration", getEnvDuration("RINGLOAD_DURATION", 0),
		"How long to generate load, 0 runs until interrupted (env: RINGLOAD_DURATION)")
	fs.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", 10*time.Second, "Time allowed to drain on shutdown")
	fs.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")
	fs.BoolVar(&cfg.Validate, "validate", false, "Validate the buffer config and exit")

	fs.Usage = func() {
		_, _ = fmt.Fprintf(stderr, "%s - load generator for the synchronized ring buffer\n\nUsage: %s [options]\n\nOptions:\n", appName, appName)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateFlags(cfg *CLIConfig) error {
	if cfg.ShowVersion {
		return nil
	}

	if cfg.ConfigPath != "" {
		if _, err := os.Stat(cfg.ConfigPath); err != nil {
			return errors.WrapFatal(fmt.Errorf("%w: %s", errors.ErrMissingConfig, cfg.ConfigPath),
				"ringload", "validateFlags", "stat config")
		}
	}
	if !slices.Contains([]string{"debug", "info", "warn", "error"}, cfg.LogLevel) {
		return fmt.Errorf("invalid log level: %s", cfg.LogLevel)
	}
	if !slices.Contains([]string{"json", "text"}, cfg.LogFormat) {
		return fmt.Errorf("invalid log format: %s", cfg.LogFormat)
	}
	if cfg.MetricsPort < 0 || cfg.MetricsPort > 65535 {
		return fmt.Errorf("invalid metrics port: %d", cfg.MetricsPort)
	}
	if cfg.Producers < 1 || cfg.Consumers < 1 {
		return fmt.Errorf("need at least one producer and one consumer, got %d/%d", cfg.Producers, cfg.Consumers)
	}
	if cfg.BatchSize < 1 {
		return fmt.Errorf("invalid batch size: %d", cfg.BatchSize)
	}
	if cfg.Duration < 0 {
		return fmt.Errorf("invalid duration: %v", cfg.Duration)
	}
	if cfg.ShutdownTimeout <= 0 {
		return fmt.Errorf("invalid shutdown timeout: %v", cfg.ShutdownTimeout)
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
