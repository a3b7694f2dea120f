package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aws-samples/amazon-connect-cicd-workshop/reconcile"
)

type stubRunner struct {
	report *reconcile.Report
	err    error
	calls  int
}

func (s *stubRunner) Run(context.Context) (*reconcile.Report, error) {
	s.calls++
	return s.report, s.err
}

func TestParseFlags_Defaults(t *testing.T) {
	t.Setenv("CONNECTSYNC_LOG_LEVEL", "")
	t.Setenv("CONNECTSYNC_TIMEOUT", "")
	t.Setenv("CONNECTSYNC_LAMBDA", "")
	t.Setenv("AWS_LAMBDA_RUNTIME_API", "")

	cfg, err := parseFlags(nil)
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 15*time.Minute, cfg.Timeout)
	assert.False(t, cfg.Lambda)
	assert.NoError(t, validateFlags(cfg))
}

func TestParseFlags_EnvironmentFallback(t *testing.T) {
	t.Setenv("CONNECTSYNC_LOG_LEVEL", "debug")
	t.Setenv("CONNECTSYNC_TIMEOUT", "90s")
	t.Setenv("AWS_LAMBDA_RUNTIME_API", "127.0.0.1:9001")

	cfg, err := parseFlags([]string{"-log-format", "text"})
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 90*time.Second, cfg.Timeout)
	assert.True(t, cfg.Lambda)
}

func TestParseFlags_Unknown(t *testing.T) {
	_, err := parseFlags([]string{"-nope"})
	assert.Error(t, err)
}

func TestValidateFlags(t *testing.T) {
	tests := []struct {
		name    string
		cfg     CLIConfig
		wantErr bool
	}{
		{"valid", CLIConfig{LogLevel: "warn", LogFormat: "text", Timeout: time.Minute}, false},
		{"bad level", CLIConfig{LogLevel: "trace", LogFormat: "json", Timeout: time.Minute}, true},
		{"bad format", CLIConfig{LogLevel: "info", LogFormat: "xml", Timeout: time.Minute}, true},
		{"zero timeout", CLIConfig{LogLevel: "info", LogFormat: "json"}, true},
		{"version skips checks", CLIConfig{ShowVersion: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateFlags(&tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "warn", "json")

	logger.Info("hidden")
	logger.Warn("shown", "run_id", "r1")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "shown", entry["msg"])
	assert.Equal(t, appName, entry["service"])
	assert.Equal(t, "r1", entry["run_id"])
}

func TestHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	ok := &stubRunner{report: &reconcile.Report{RunID: "r1", Deployed: true}}
	report, err := newHandler(ok, logger)(context.Background(), json.RawMessage(`{}`))
	require.NoError(t, err)
	assert.Equal(t, "r1", report.RunID)
	assert.Equal(t, 1, ok.calls)

	cause := fmt.Errorf("create failed")
	bad := &stubRunner{report: &reconcile.Report{RunID: "r2", Error: cause.Error()}, err: cause}
	report, err = newHandler(bad, logger)(context.Background(), nil)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "r2", report.RunID)
}
