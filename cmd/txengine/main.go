package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/example/txengine/internal/config"
	"github.com/example/txengine/internal/logging"
	"github.com/example/txengine/internal/report"
	"github.com/example/txengine/internal/runner"
	"github.com/example/txengine/pkg/audit"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <transactions.csv>\n", os.Args[0])
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(logging.Config{Environment: cfg.Environment, Level: cfg.LogLevel})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, os.Args[1]); err != nil {
		logger.Error("run failed", zap.Error(err))
		_ = logger.Sync()
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger, path string) error {
	input, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open input: %w", err)
	}
	defer input.Close()

	exporter, err := report.Open(ctx, cfg.ReportSink, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	if exporter != nil {
		defer func() {
			if err := exporter.Close(); err != nil {
				logger.Warn("failed to close report sink", zap.Error(err))
			}
		}()
	}

	var chain *audit.ChainLogger
	if cfg.AuditSink != "" {
		chain = audit.NewChainLogger()
	}

	_, runErr := runner.Run(ctx, runner.Options{
		Input:    input,
		Output:   os.Stdout,
		Logger:   logger,
		Audit:    chain,
		Exporter: exporter,
	})

	if chain != nil {
		if err := writeAudit(cfg.AuditSink, chain); err != nil {
			return errors.Join(runErr, err)
		}
		logger.Info("audit log written", zap.String("path", cfg.AuditSink), zap.String("head", chain.Head()))
	}
	return runErr
}

func writeAudit(path string, chain *audit.ChainLogger) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	if err := chain.WriteJSONLines(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return f.Close()
}
