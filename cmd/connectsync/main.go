// Package main runs contact-flow reconciliation, either once from the command
// line or as a function handler invoked by the deployment pipeline.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/aws-samples/amazon-connect-cicd-workshop/config"
	cerrors "github.com/aws-samples/amazon-connect-cicd-workshop/errors"
	"github.com/aws-samples/amazon-connect-cicd-workshop/metric"
	"github.com/aws-samples/amazon-connect-cicd-workshop/pkg/awsclient"
	"github.com/aws-samples/amazon-connect-cicd-workshop/reconcile"
	"github.com/aws-samples/amazon-connect-cicd-workshop/storage/s3store"
)

// Build information constants
const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "connectsync"
)

// runner performs one reconciliation.
type runner interface {
	Run(ctx context.Context) (*reconcile.Report, error)
}

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(os.Args[1:]); err != nil {
		slog.Error("Application failed", "error", err, "exit_code", 1)
		os.Exit(1)
	}
}

func run(args []string) error {
	cliCfg, logger, shouldExit, err := initializeCLI(args)
	if shouldExit || err != nil {
		return err
	}

	cfg, err := initializeConfiguration()
	if err != nil {
		return err
	}

	if cliCfg.Validate {
		logger.Info("Configuration is valid",
			"instance_id", cfg.InstanceID, "app", cfg.App, "env", cfg.Env, "bucket", cfg.Bucket)
		return nil
	}

	engine, err := newEngine(context.Background(), cfg, logger)
	if err != nil {
		return err
	}

	if cliCfg.Lambda {
		logger.Info("Serving as function handler")
		lambda.Start(newHandler(engine, logger))
		return nil
	}

	return runOnce(engine, cliCfg, logger)
}

// initializeCLI parses flags and sets up logging
func initializeCLI(args []string) (*CLIConfig, *slog.Logger, bool, error) {
	cliCfg, err := parseFlags(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, nil, true, nil
		}
		return nil, nil, false, fmt.Errorf("invalid flags: %w", err)
	}
	if err := validateFlags(cliCfg); err != nil {
		return nil, nil, false, fmt.Errorf("invalid flags: %w", err)
	}

	if cliCfg.ShowVersion {
		fmt.Printf("%s version %s\n", appName, Version)
		return nil, nil, true, nil
	}

	if cliCfg.ShowHelp {
		cliCfg.usage()
		return nil, nil, true, nil
	}

	logger := setupLogger(cliCfg.LogLevel, cliCfg.LogFormat)
	slog.SetDefault(logger)

	return cliCfg, logger, false, nil
}

// initializeConfiguration loads and validates configuration
func initializeConfiguration() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// newEngine wires the AWS clients, metrics and engine.
func newEngine(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*reconcile.Engine, error) {
	awsCfg, err := awsclient.LoadConfig(ctx, cfg.Region, awsclient.DefaultMaxAttempts)
	if err != nil {
		return nil, err
	}
	clients := awsclient.New(awsCfg)

	registry := metric.NewMetricsRegistry()
	pusher := metric.NewPusher(cfg.PushgatewayURL, appName, registry, logger).
		Grouping("app", cfg.App).
		Grouping("env", cfg.Env)

	engine, err := reconcile.NewEngine(cfg, reconcile.Deps{
		Store:     s3store.New(clients.S3, cfg.Bucket, logger),
		Connect:   clients.Connect,
		Lex:       clients.Lex,
		Params:    clients.SSM,
		Functions: clients.Lambda,
	},
		reconcile.WithLogger(logger),
		reconcile.WithMetrics(registry),
		reconcile.WithPusher(pusher),
	)
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}
	return engine, nil
}

// newHandler adapts a runner to a function handler. The invocation payload
// is logged and otherwise ignored; every invocation performs a full run.
func newHandler(r runner, logger *slog.Logger) func(context.Context, json.RawMessage) (*reconcile.Report, error) {
	return func(ctx context.Context, event json.RawMessage) (*reconcile.Report, error) {
		logger.Debug("Invocation received", "bytes", len(event))

		report, err := r.Run(ctx)
		if err != nil {
			logger.Error("Run failed",
				"run_id", report.RunID, "transient", cerrors.IsTransient(err), "error", err)
			return report, err
		}
		return report, nil
	}
}

// runOnce performs a single run, cancelling it on SIGINT or SIGTERM, and
// prints the report to stdout.
func runOnce(r runner, cliCfg *CLIConfig, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithTimeout(ctx, cliCfg.Timeout)
	defer cancel()

	report, runErr := r.Run(ctx)
	if report != nil {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			logger.Warn("Failed to print report", "error", err)
		}
	}
	return runErr
}
