package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fastConfig(attempts int) Config {
	return Config{
		MaxAttempts:  attempts,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
		AddJitter:    false,
	}
}

func TestRetry_Success(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), fastConfig(3), func() error {
		attempts++
		if attempts < 3 {
			return errors.New("transient error")
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetry_AllAttemptsFail(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), fastConfig(3), func() error {
		attempts++
		return errors.New("persistent error")
	})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed after 3 attempts")
	assert.Equal(t, 3, attempts)
}

func TestRetry_NonRetryableStopsImmediately(t *testing.T) {
	root := errors.New("not found")
	attempts := 0
	err := Do(context.Background(), fastConfig(5), func() error {
		attempts++
		return NonRetryable(root)
	})

	assert.ErrorIs(t, err, root)
	assert.Equal(t, 1, attempts)
}

func TestRetry_RetryIf(t *testing.T) {
	retryable := errors.New("throttled")
	final := errors.New("access denied")

	attempts := 0
	err := Do(context.Background(), fastConfig(5).WithRetryIf(func(err error) bool {
		return errors.Is(err, retryable)
	}), func() error {
		attempts++
		if attempts < 2 {
			return retryable
		}
		return final
	})

	assert.ErrorIs(t, err, final)
	assert.Equal(t, 2, attempts)
}

func TestRetry_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := Config{
		MaxAttempts:  5,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     time.Second,
		Multiplier:   2.0,
	}

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	attempts := 0
	err := Do(ctx, cfg, func() error {
		attempts++
		return errors.New("error")
	})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "retry cancelled")
	assert.Less(t, attempts, 5)
}

func TestRetry_WithResult(t *testing.T) {
	attempts := 0
	result, err := DoWithResult(context.Background(), fastConfig(3), func() (string, error) {
		attempts++
		if attempts < 2 {
			return "", errors.New("not ready")
		}
		return "arn:aws:lambda:eu-west-2:123:function:mapper", nil
	})

	assert.NoError(t, err)
	assert.Equal(t, "arn:aws:lambda:eu-west-2:123:function:mapper", result)
	assert.Equal(t, 2, attempts)
}

func TestRetry_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"negative initial delay", Config{InitialDelay: -1}},
		{"negative max delay", Config{MaxDelay: -1}},
		{"negative multiplier", Config{Multiplier: -1}},
		{"max below initial", Config{InitialDelay: time.Second, MaxDelay: time.Millisecond}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			err := Do(context.Background(), tt.cfg, func() error {
				called = true
				return nil
			})
			assert.Error(t, err)
			assert.False(t, called)
		})
	}
}

func TestRetry_ZeroAttempts(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), Config{MaxAttempts: 0}, func() error {
		attempts++
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, attempts)
}

func TestRetry_DefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, 100*time.Millisecond, cfg.InitialDelay)
	assert.Equal(t, 5*time.Second, cfg.MaxDelay)
	assert.Equal(t, 2.0, cfg.Multiplier)
	assert.True(t, cfg.AddJitter)
	assert.Nil(t, cfg.RetryIf)
}
