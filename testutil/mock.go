package testutil

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/aws/smithy-go"
)

// Call is one recorded API call.
type Call struct {
	Service   string
	Operation string
	Target    string
}

// String renders the call as "Operation(Target)".
func (c Call) String() string {
	return fmt.Sprintf("%s(%s)", c.Operation, c.Target)
}

// CallLog records calls across fakes in the order they were made.
// A nil *CallLog is valid and records nothing.
type CallLog struct {
	mu    sync.Mutex
	calls []Call
}

// NewCallLog creates an empty call log.
func NewCallLog() *CallLog {
	return &CallLog{calls: make([]Call, 0)}
}

// Record appends a call.
func (l *CallLog) Record(service, operation, target string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, Call{Service: service, Operation: operation, Target: target})
}

// Calls returns a copy of every recorded call.
func (l *CallLog) Calls() []Call {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	result := make([]Call, len(l.calls))
	copy(result, l.calls)
	return result
}

// Operations returns the recorded calls rendered with Call.String, optionally
// restricted to the named operations.
func (l *CallLog) Operations(only ...string) []string {
	keep := make(map[string]bool, len(only))
	for _, op := range only {
		keep[op] = true
	}

	result := make([]string, 0)
	for _, c := range l.Calls() {
		if len(keep) > 0 && !keep[c.Operation] {
			continue
		}
		result = append(result, c.String())
	}
	return result
}

// Count returns how many times operation was called.
func (l *CallLog) Count(operation string) int {
	n := 0
	for _, c := range l.Calls() {
		if c.Operation == operation {
			n++
		}
	}
	return n
}

// Reset clears the log.
func (l *CallLog) Reset() {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = make([]Call, 0)
}

// Faults maps an operation, or "Operation:target", to the error the fake
// returns for it. The more specific key wins.
type Faults map[string]error

func (f Faults) lookup(operation, target string) error {
	if f == nil {
		return nil
	}
	if err, ok := f[operation+":"+target]; ok {
		return err
	}
	return f[operation]
}

// ThrottleError returns the error the contact-center API raises when a caller
// exceeds its request rate.
func ThrottleError() error {
	return &smithy.GenericAPIError{
		Code:    "TooManyRequestsException",
		Message: "Rate exceeded",
		Fault:   smithy.FaultClient,
	}
}

// APIError returns a client-fault API error with the given code.
func APIError(code, message string) error {
	return &smithy.GenericAPIError{Code: code, Message: message, Fault: smithy.FaultClient}
}

// ServerError returns a server-fault API error.
func ServerError(code string) error {
	return &smithy.GenericAPIError{Code: code, Message: "internal failure", Fault: smithy.FaultServer}
}

// Common test errors
var (
	ErrMockFailed     = errors.New("mock operation failed")
	ErrMockConnection = errors.New("mock connection error")
)

// paginate returns the page of items starting at token, and the token of the
// next page. size <= 0 returns everything on one page.
func paginate[T any](items []T, token *string, size int) ([]T, *string) {
	start := 0
	if token != nil && *token != "" {
		if n, err := strconv.Atoi(*token); err == nil {
			start = n
		}
	}
	if start > len(items) {
		start = len(items)
	}
	if size <= 0 {
		return items[start:], nil
	}

	end := start + size
	if end >= len(items) {
		return items[start:], nil
	}
	next := strconv.Itoa(end)
	return items[start:end], &next
}
