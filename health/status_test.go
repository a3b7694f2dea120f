package health

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStatus_Predicates(t *testing.T) {
	tests := []struct {
		name      string
		status    Status
		healthy   bool
		degraded  bool
		unhealthy bool
	}{
		{name: "healthy", status: Status{Status: StatusHealthy}, healthy: true},
		{name: "degraded", status: Status{Status: StatusDegraded}, degraded: true},
		{name: "unhealthy", status: Status{Status: StatusUnhealthy}, unhealthy: true},
		{name: "empty", status: Status{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.healthy, tt.status.IsHealthy())
			assert.Equal(t, tt.degraded, tt.status.IsDegraded())
			assert.Equal(t, tt.unhealthy, tt.status.IsUnhealthy())
		})
	}
}

func TestStatus_WithDuration(t *testing.T) {
	s := NewHealthy("create", "2 flows").WithDuration(150 * time.Millisecond)
	assert.Equal(t, 150*time.Millisecond, s.Duration)
}

func TestFromError(t *testing.T) {
	ok := FromError("upload", nil)
	assert.True(t, ok.Healthy)
	assert.Equal(t, "upload", ok.Name)

	failed := FromError("deploy", errors.New("update code of arn:aws:lambda:us-east-1:123456789012:function:x failed"))
	assert.True(t, failed.IsUnhealthy())
	assert.False(t, failed.Healthy)
	assert.Equal(t, "update code of arn:aws:lambda:us-east-1:[ACCOUNT]:function:x failed", failed.Message)
}

func TestSanitizeErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty string", input: "", expected: ""},
		{
			name:     "HTTP URL",
			input:    "post https://ssm.us-east-1.amazonaws.com/ failed",
			expected: "post [URL] failed",
		},
		{
			name:     "IP address",
			input:    "dial tcp 10.0.12.7 timeout",
			expected: "dial tcp [IP] timeout",
		},
		{
			name:     "account id",
			input:    "bot-alias arn:aws:lex:us-east-1:123456789012:bot-alias/B/A",
			expected: "bot-alias arn:aws:lex:us-east-1:[ACCOUNT]:bot-alias/B/A",
		},
		{
			name:     "credential",
			input:    "request signature=abc123 rejected",
			expected: "request [REDACTED] rejected",
		},
		{
			name:     "plain message untouched",
			input:    "flow mutation failed: app-Main",
			expected: "flow mutation failed: app-Main",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeErrorMessage(tt.input))
		})
	}
}
