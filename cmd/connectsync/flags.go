package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"time"
)

// CLIConfig holds command-line configuration
type CLIConfig struct {
	LogLevel    string
	LogFormat   string
	Timeout     time.Duration
	Lambda      bool
	ShowVersion bool
	ShowHelp    bool
	Validate    bool

	usage func()
}

func parseFlags(args []string) (*CLIConfig, error) {
	cfg := &CLIConfig{}
	fs := flag.NewFlagSet(appName, flag.ContinueOnError)

	// Define flags with environment variable fallback
	fs.StringVar(&cfg.LogLevel, "log-level",
		getEnv("CONNECTSYNC_LOG_LEVEL", "info"),
		"Log level: debug, info, warn, error (env: CONNECTSYNC_LOG_LEVEL)")

	fs.StringVar(&cfg.LogFormat, "log-format",
		getEnv("CONNECTSYNC_LOG_FORMAT", "json"),
		"Log format: json, text (env: CONNECTSYNC_LOG_FORMAT)")

	fs.DurationVar(&cfg.Timeout, "timeout",
		getEnvDuration("CONNECTSYNC_TIMEOUT", 15*time.Minute),
		"Run timeout for one-shot runs (env: CONNECTSYNC_TIMEOUT)")

	fs.BoolVar(&cfg.Lambda, "lambda",
		getEnvBool("CONNECTSYNC_LAMBDA", os.Getenv("AWS_LAMBDA_RUNTIME_API") != ""),
		"Serve runs as a function handler instead of running once (env: CONNECTSYNC_LAMBDA)")

	fs.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")
	fs.BoolVar(&cfg.ShowVersion, "v", false, "Show version information")
	fs.BoolVar(&cfg.ShowHelp, "help", false, "Show help information")
	fs.BoolVar(&cfg.ShowHelp, "h", false, "Show help information")
	fs.BoolVar(&cfg.Validate, "validate", false, "Validate configuration and exit")

	fs.Usage = func() {
		printDetailedHelp(fs.Output(), fs)
	}
	cfg.usage = fs.Usage

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateFlags(cfg *CLIConfig) error {
	// Skip validation for special flags
	if cfg.ShowVersion || cfg.ShowHelp {
		return nil
	}

	if !slices.Contains([]string{"debug", "info", "warn", "error"}, cfg.LogLevel) {
		return fmt.Errorf("invalid log level: %s", cfg.LogLevel)
	}

	if !slices.Contains([]string{"json", "text"}, cfg.LogFormat) {
		return fmt.Errorf("invalid log format: %s", cfg.LogFormat)
	}

	if cfg.Timeout <= 0 {
		return fmt.Errorf("invalid timeout: %s", cfg.Timeout)
	}

	return nil
}

func printDetailedHelp(w io.Writer, fs *flag.FlagSet) {
	_, _ = fmt.Fprintf(w, `%s - contact flow reconciliation

Usage: %s [options]

Options:
`, appName, appName)
	fs.PrintDefaults()
	_, _ = fmt.Fprintf(w, `
Environment:
  AWS_REGION            region of the instance
  CONNECT_INSTANCEID    contact-center instance id
  BUCKET                bucket holding flow definitions and the mapping archive
  FUNCTION_ACCOUNT      account id used in bot alias ARNs
  FUNCTION_APP          app prefix for flows, bots and parameters
  FUNCTION_ENV          environment name and bot alias name
  CONNECTSYNC_*         engine tunables (flow_prefix, soft_deadline, pushgateway_url, ...)

Examples:
  # Run once with text logs
  %s --log-level=debug --log-format=text

  # Validate the environment only
  %s --validate

Version: %s
Build: %s
`, appName, appName, Version, BuildTime)
}

// Environment variable helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
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
