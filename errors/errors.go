// Package errors provides standardized error handling for the reconciliation engine.
// It includes error classification, the run failure taxonomy, and helper functions
// for consistent error wrapping across every stage.
package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/smithy-go"
)

// ErrorClass represents the classification of errors for handling purposes
type ErrorClass int

const (
	// ErrorTransient represents temporary errors that may be retried
	ErrorTransient ErrorClass = iota
	// ErrorInvalid represents errors due to invalid input or configuration
	ErrorInvalid
	// ErrorFatal represents unrecoverable errors that should stop processing
	ErrorFatal
)

// String returns the string representation of ErrorClass
func (ec ErrorClass) String() string {
	switch ec {
	case ErrorTransient:
		return "transient"
	case ErrorInvalid:
		return "invalid"
	case ErrorFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Run taxonomy. Every error returned by the engine matches exactly one of these
// with errors.Is, plus whatever SDK cause it wraps.
var (
	ErrStateFetch              = errors.New("desired state fetch failed")
	ErrLiveState               = errors.New("live state listing failed")
	ErrRateLimitedQueueListing = errors.New("queue listing rate limited")
	ErrFlowMutation            = errors.New("flow mutation failed")
	ErrParameter               = errors.New("parameter store operation failed")
	ErrArtifactBuild           = errors.New("mapping artifact build failed")
	ErrUpload                  = errors.New("artifact upload failed")
	ErrDeploy                  = errors.New("artifact deploy failed")
	ErrDuplicateFlowName       = errors.New("duplicate desired flow name")
	ErrDeadline                = errors.New("soft deadline reached")
)

// Standard error variables for common conditions
var (
	ErrInvalidData    = errors.New("invalid data format")
	ErrParsingFailed  = errors.New("parsing failed")
	ErrInvalidConfig  = errors.New("invalid configuration")
	ErrMissingConfig  = errors.New("missing required configuration")
	ErrKeyNotFound    = errors.New("key not found")
	ErrRateLimited    = errors.New("rate limited")
	ErrConnectionLost = errors.New("connection lost")
)

// throttleCodes are the API error codes AWS services use for request throttling.
var throttleCodes = map[string]bool{
	"ThrottlingException":      true,
	"Throttling":               true,
	"TooManyRequestsException": true,
	"RequestLimitExceeded":     true,
	"SlowDown":                 true,
}

// ClassifiedError wraps an error with its classification
type ClassifiedError struct {
	Class     ErrorClass
	Err       error
	Message   string
	Component string
	Operation string
}

// Error implements the error interface
func (ce *ClassifiedError) Error() string {
	if ce.Message != "" {
		return ce.Message
	}
	if ce.Err == nil {
		return ce.Class.String() + " error"
	}
	return ce.Err.Error()
}

// Unwrap returns the underlying error
func (ce *ClassifiedError) Unwrap() error {
	return ce.Err
}

// StageError tags a failure with the pipeline stage and the resource being
// processed when it happened. Kind is one of the run taxonomy sentinels.
type StageError struct {
	Stage    string
	Resource string
	Kind     error
	Err      error
}

// Error implements the error interface
func (se *StageError) Error() string {
	var b strings.Builder
	b.WriteString(se.Stage)
	if se.Resource != "" {
		b.WriteString(" [")
		b.WriteString(se.Resource)
		b.WriteString("]")
	}
	if se.Kind != nil {
		b.WriteString(": ")
		b.WriteString(se.Kind.Error())
	}
	if se.Err != nil {
		b.WriteString(": ")
		b.WriteString(se.Err.Error())
	}
	return b.String()
}

// Unwrap exposes both the taxonomy sentinel and the cause.
func (se *StageError) Unwrap() []error {
	out := make([]error, 0, 2)
	if se.Kind != nil {
		out = append(out, se.Kind)
	}
	if se.Err != nil {
		out = append(out, se.Err)
	}
	return out
}

// NewStageError builds a StageError. A nil cause still produces an error so that
// validation failures without an underlying error can be reported.
func NewStageError(stage, resource string, kind, err error) error {
	return &StageError{Stage: stage, Resource: resource, Kind: kind, Err: err}
}

// StageOf returns the stage name carried by err, if any.
func StageOf(err error) (string, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return "", false
}

// IsRateLimited reports whether err is a throttling response from an AWS API.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrRateLimited) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		if throttleCodes[apiErr.ErrorCode()] {
			return true
		}
		if apiErr.ErrorMessage() == "Rate exceeded" {
			return true
		}
	}

	return strings.Contains(err.Error(), "Rate exceeded")
}

// IsTransient checks if an error is transient and should be retried
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorTransient
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return false
	}

	if IsRateLimited(err) || errors.Is(err, ErrConnectionLost) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorFault() == smithy.FaultServer
	}

	errStr := strings.ToLower(err.Error())
	transientPatterns := []string{
		"timeout",
		"connection reset",
		"connection refused",
		"temporary",
		"unavailable",
	}

	for _, pattern := range transientPatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}

	return false
}

// IsInvalid checks if an error is due to invalid input
func IsInvalid(err error) bool {
	if err == nil {
		return false
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorInvalid
	}

	return errors.Is(err, ErrInvalidData) ||
		errors.Is(err, ErrParsingFailed) ||
		errors.Is(err, ErrDuplicateFlowName)
}

// Classify returns the error class for an error. Unknown errors are fatal: a
// reconciliation run never continues past an error it cannot explain.
func Classify(err error) ErrorClass {
	if err == nil {
		return ErrorTransient
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class
	}

	if IsInvalid(err) {
		return ErrorInvalid
	}
	if IsTransient(err) {
		return ErrorTransient
	}
	return ErrorFatal
}

func newClassified(class ErrorClass, err error, component, operation, message string) *ClassifiedError {
	return &ClassifiedError{
		Class:     class,
		Err:       err,
		Message:   message,
		Component: component,
		Operation: operation,
	}
}

// Wrap creates a standardized error with context following the pattern:
// "component.method: action failed: %w"
func Wrap(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s.%s: %s failed: %w", component, method, action, err)
}

// WrapTransient wraps an error as transient with context
func WrapTransient(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorTransient, wrappedErr, component, method, wrappedErr.Error())
}

// WrapFatal wraps an error as fatal with context
func WrapFatal(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorFatal, wrappedErr, component, method, wrappedErr.Error())
}

// WrapInvalid wraps an error as invalid with context
func WrapInvalid(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorInvalid, wrappedErr, component, method, wrappedErr.Error())
}

// Is is the standard library errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As is the standard library errors.As.
func As(err error, target any) bool {
	return errors.As(err, target)
}
