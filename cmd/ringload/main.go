// Package main implements ringload, a load generator that drives the
// synchronized ring buffer with concurrent producers and consumers and
// exposes its metrics for scraping.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/c360/ringbuffer/metric"
	"github.com/c360/ringbuffer/pkg/buffer"
)

// Build information constants
const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "ringload"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		slog.Error("ringload failed", "error", err, "exit_code", 1)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	cliCfg, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := validateFlags(cliCfg); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	if cliCfg.ShowVersion {
		_, _ = fmt.Fprintf(stdout, "%s version %s (%s)\n", appName, Version, BuildTime)
		return nil
	}

	logger := setupLogger(stdout, cliCfg.LogLevel, cliCfg.LogFormat)
	slog.SetDefault(logger)

	bufCfg, err := loadConfig(cliCfg.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cliCfg.Validate {
		logger.Info("configuration is valid", "capacity", bufCfg.Capacity, "overflow_policy", bufCfg.OverflowPolicy.String())
		return nil
	}

	registry := metric.NewMetricsRegistry()
	if cliCfg.MetricsPort > 0 {
		server := metric.NewServer(cliCfg.MetricsPort, "/metrics", registry)
		ln, err := server.Listen()
		if err != nil {
			return fmt.Errorf("metrics server: %w", err)
		}
		go func() {
			if err := server.Serve(ln); err != nil {
				logger.Error("metrics server stopped", "error", err)
			}
		}()
		defer func() {
			if err := server.Stop(); err != nil {
				logger.Warn("stop metrics server", "error", err)
			}
		}()
	}

	buf, err := buffer.NewFromConfig(bufCfg, registry, buffer.WithLogger[sample](logger))
	if err != nil {
		return fmt.Errorf("create buffer: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	if cliCfg.Duration > 0 {
		var stop context.CancelFunc
		ctx, stop = context.WithTimeout(ctx, cliCfg.Duration)
		defer stop()
	}

	logger.Info("generating load",
		"capacity", bufCfg.Capacity,
		"overflow_policy", bufCfg.OverflowPolicy.String(),
		"producers", cliCfg.Producers,
		"consumers", cliCfg.Consumers)

	result, err := runLoad(ctx, buf, loadOptions{
		producers:       cliCfg.Producers,
		consumers:       cliCfg.Consumers,
		batchSize:       cliCfg.BatchSize,
		shutdownTimeout: cliCfg.ShutdownTimeout,
	})
	if err != nil {
		return err
	}

	logger.Info("load finished",
		"consumed", result.consumed,
		"out_of_order", result.outOfOrder,
		"stats", buf.Stats().Summary())
	return nil
}

// loadConfig reads a buffer config file. An empty path yields the defaults.
func loadConfig(path string) (buffer.Config, error) {
	if path == "" {
		return buffer.DefaultConfig(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return buffer.Config{}, err
	}
	return buffer.ParseConfig(data)
}
