// Package health records the outcome of each stage of a reconciliation run
// and aggregates them into the health of the run.
package health

import (
	"regexp"
	"strings"
	"time"
)

// Status values.
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// Pre-compiled regexes for error message sanitization
var (
	urlRegex        = regexp.MustCompile(`https?://[^\s]+`)
	ipAddrRegex     = regexp.MustCompile(`\b\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}\b`)
	accountRegex    = regexp.MustCompile(`\b\d{12}\b`)
	credentialRegex = regexp.MustCompile(`(?i)(password|token|secret|credential|signature)[^a-zA-Z]*[:=][^,\s}]+`)
)

// Status is the health of one stage, or of a whole run when SubStatuses is set.
type Status struct {
	Name        string        `json:"name"`
	Healthy     bool          `json:"healthy"` // true if status is "healthy"
	Status      string        `json:"status"`  // "healthy", "unhealthy", "degraded"
	Message     string        `json:"message"`
	Timestamp   time.Time     `json:"timestamp"`
	Duration    time.Duration `json:"duration,omitempty"`
	SubStatuses []Status      `json:"sub_statuses,omitempty"`
}

// IsHealthy returns true if the status is healthy
func (s Status) IsHealthy() bool {
	return s.Status == StatusHealthy
}

// IsDegraded returns true if the status is degraded
func (s Status) IsDegraded() bool {
	return s.Status == StatusDegraded
}

// IsUnhealthy returns true if the status is unhealthy
func (s Status) IsUnhealthy() bool {
	return s.Status == StatusUnhealthy
}

// WithDuration returns a copy of the status carrying how long the stage ran.
func (s Status) WithDuration(d time.Duration) Status {
	s.Duration = d
	return s
}

// FromError returns an unhealthy status whose message is the sanitized error,
// or a healthy one when err is nil.
func FromError(name string, err error) Status {
	if err == nil {
		return NewHealthy(name, "ok")
	}
	return NewUnhealthy(name, sanitizeErrorMessage(err.Error()))
}

// sanitizeErrorMessage strips endpoints, account ids and credentials from an
// error message before it is attached to a status that leaves the process.
//
// Sanitization patterns:
//   - URLs (http://, https://) → [URL]
//   - IP addresses → [IP]
//   - 12-digit account ids → [ACCOUNT]
//   - Credentials (password=X, token=X, secret=X, signature=X) → [REDACTED]
func sanitizeErrorMessage(msg string) string {
	if msg == "" {
		return ""
	}

	sanitized := urlRegex.ReplaceAllString(msg, "[URL]")
	sanitized = ipAddrRegex.ReplaceAllString(sanitized, "[IP]")
	sanitized = accountRegex.ReplaceAllString(sanitized, "[ACCOUNT]")

	lower := strings.ToLower(sanitized)
	for _, word := range []string{"password", "token", "secret", "credential", "signature"} {
		if strings.Contains(lower, word) {
			sanitized = credentialRegex.ReplaceAllString(sanitized, "[REDACTED]")
			break
		}
	}

	return sanitized
}
