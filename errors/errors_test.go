package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorClass_String(t *testing.T) {
	tests := []struct {
		class    ErrorClass
		expected string
	}{
		{ErrorTransient, "transient"},
		{ErrorInvalid, "invalid"},
		{ErrorFatal, "fatal"},
		{ErrorClass(999), "unknown"},
	}

	for _, test := range tests {
		t.Run(test.expected, func(t *testing.T) {
			assert.Equal(t, test.expected, test.class.String())
		})
	}
}

func TestIsRateLimited(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"sentinel", ErrRateLimited, true},
		{"throttling code", &smithy.GenericAPIError{Code: "ThrottlingException", Message: "slow down"}, true},
		{"too many requests", &smithy.GenericAPIError{Code: "TooManyRequestsException"}, true},
		{"rate exceeded message", &smithy.GenericAPIError{Code: "Unknown", Message: "Rate exceeded"}, true},
		{"wrapped rate exceeded", fmt.Errorf("list queues: %w", errors.New("Rate exceeded")), true},
		{"limit exceeded is a quota, not throttling", &smithy.GenericAPIError{Code: "LimitExceededException", Message: "too many flows"}, false},
		{"access denied", &smithy.GenericAPIError{Code: "AccessDeniedException", Message: "no"}, false},
		{"plain error", errors.New("boom"), false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, IsRateLimited(test.err))
		})
	}
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"rate limited", ErrRateLimited, true},
		{"connection lost", ErrConnectionLost, true},
		{"server fault", &smithy.GenericAPIError{Code: "InternalServiceException", Fault: smithy.FaultServer}, true},
		{"client fault", &smithy.GenericAPIError{Code: "ParameterNotFound", Fault: smithy.FaultClient}, false},
		{"deadline exceeded", context.DeadlineExceeded, false},
		{"timeout in message", errors.New("i/o timeout"), true},
		{"classified transient", &ClassifiedError{Class: ErrorTransient, Err: errors.New("x")}, true},
		{"classified fatal", &ClassifiedError{Class: ErrorFatal, Err: errors.New("x")}, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, IsTransient(test.err), "error: %v", test.err)
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorClass
	}{
		{"duplicate flow name", ErrDuplicateFlowName, ErrorInvalid},
		{"parsing failed", ErrParsingFailed, ErrorInvalid},
		{"throttled", ErrRateLimited, ErrorTransient},
		{"unknown defaults to fatal", errors.New("mystery"), ErrorFatal},
		{"classified invalid", WrapInvalid(errors.New("bad"), "c", "m", "a"), ErrorInvalid},
		{"stage error with invalid kind", NewStageError("fetch-desired", "A", ErrDuplicateFlowName, nil), ErrorInvalid},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, Classify(test.err))
		})
	}
}

func TestStageError(t *testing.T) {
	cause := &smithy.GenericAPIError{Code: "ResourceNotFoundException", Message: "gone"}
	err := NewStageError("create", "App-Main", ErrFlowMutation, cause)

	assert.True(t, errors.Is(err, ErrFlowMutation))
	assert.False(t, errors.Is(err, ErrDeploy))

	var apiErr smithy.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "ResourceNotFoundException", apiErr.ErrorCode())

	stage, ok := StageOf(fmt.Errorf("run: %w", err))
	require.True(t, ok)
	assert.Equal(t, "create", stage)

	assert.Contains(t, err.Error(), "create [App-Main]: flow mutation failed")
}

func TestStageError_NoCause(t *testing.T) {
	err := NewStageError("fetch-desired", "dup", ErrDuplicateFlowName, nil)
	assert.Equal(t, "fetch-desired [dup]: duplicate desired flow name", err.Error())
	assert.True(t, errors.Is(err, ErrDuplicateFlowName))
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, "Comp", "Method", "action"))

	err := Wrap(errors.New("root"), "Publisher", "Publish", "put parameter")
	assert.Equal(t, "Publisher.Publish: put parameter failed: root", err.Error())
}

func TestWrapClassified(t *testing.T) {
	base := errors.New("base")

	tests := []struct {
		name  string
		wrap  func(error, string, string, string) error
		class ErrorClass
	}{
		{"transient", WrapTransient, ErrorTransient},
		{"invalid", WrapInvalid, ErrorInvalid},
		{"fatal", WrapFatal, ErrorFatal},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := test.wrap(base, "Comp", "Method", "action")
			var ce *ClassifiedError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, test.class, ce.Class)
			assert.Equal(t, "Comp", ce.Component)
			assert.Equal(t, "Method", ce.Operation)
			assert.True(t, errors.Is(err, base))
			assert.Nil(t, test.wrap(nil, "Comp", "Method", "action"))
		})
	}
}
