// Package params mirrors resource identifiers into the parameter store and
// reads the parameters the engine depends on.
//
// Parameters live at /{app}/{env}/{name}. Written values embed the name:
// "{name}: {value}". Values written by other tooling, such as the mapping
// function ARN and name, are read back raw.
package params

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"golang.org/x/time/rate"

	"github.com/aws-samples/amazon-connect-cicd-workshop/config"
	"github.com/aws-samples/amazon-connect-cicd-workshop/errors"
	"github.com/aws-samples/amazon-connect-cicd-workshop/pkg/retry"
)

// API is the subset of the parameter store client the publisher uses.
type API interface {
	PutParameter(ctx context.Context, params *ssm.PutParameterInput, optFns ...func(*ssm.Options)) (*ssm.PutParameterOutput, error)
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// Publisher writes and reads parameters scoped to one app and environment.
type Publisher struct {
	client  API
	cfg     *config.Config
	retry   retry.Config
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewPublisher creates a publisher. Reads are retried with retry.DefaultConfig
// on transient errors; writes are attempted once, paced to cfg.PutRate per
// second when it is positive.
func NewPublisher(client API, cfg *config.Config, logger *slog.Logger) (*Publisher, error) {
	if client == nil {
		return nil, errors.WrapInvalid(fmt.Errorf("client cannot be nil"), "params", "NewPublisher", "validate client")
	}
	if cfg == nil {
		return nil, errors.WrapInvalid(errors.ErrMissingConfig, "params", "NewPublisher", "validate config")
	}
	if logger == nil {
		logger = slog.Default()
	}
	p := &Publisher{
		client: client,
		cfg:    cfg,
		retry:  retry.DefaultConfig().WithRetryIf(errors.IsTransient),
		logger: logger.With("component", "params"),
	}
	if cfg.PutRate > 0 {
		p.limiter = rate.NewLimiter(rate.Limit(cfg.PutRate), 1)
	}
	return p, nil
}

// WithRetry replaces the read retry policy. The transient-only filter is kept.
func (p *Publisher) WithRetry(cfg retry.Config) *Publisher {
	p.retry = cfg.WithRetryIf(errors.IsTransient)
	return p
}

// WithLimiter replaces the write limiter. A nil limiter disables pacing.
func (p *Publisher) WithLimiter(l *rate.Limiter) *Publisher {
	p.limiter = l
	return p
}

// FormatValue renders the stored value for a resource.
func FormatValue(name, value string) string {
	return fmt.Sprintf("%s: %s", name, value)
}

// Publish writes the parameter for name, overwriting any previous value.
func (p *Publisher) Publish(ctx context.Context, name, value string) error {
	key := p.cfg.ParameterName(name)

	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return errors.WrapFatal(
				fmt.Errorf("%w: waiting to put %s: %w", errors.ErrParameter, key, err),
				"params", "Publish", "wait for rate limiter")
		}
	}

	_, err := p.client.PutParameter(ctx, &ssm.PutParameterInput{
		Name:      aws.String(key),
		Value:     aws.String(FormatValue(name, value)),
		Type:      ssmtypes.ParameterTypeString,
		Overwrite: aws.Bool(true),
	})
	if err != nil {
		return parameterError(err, "Publish", fmt.Sprintf("put %s", key))
	}

	p.logger.Debug("Parameter published", "parameter", key)
	return nil
}

// Get reads the raw value stored for name. A missing parameter is invalid and
// not retried.
func (p *Publisher) Get(ctx context.Context, name string) (string, error) {
	key := p.cfg.ParameterName(name)

	out, err := retry.DoWithResult(ctx, p.retry, func() (*ssm.GetParameterOutput, error) {
		return p.client.GetParameter(ctx, &ssm.GetParameterInput{Name: aws.String(key)})
	})
	if err != nil {
		var notFound *ssmtypes.ParameterNotFound
		if errors.As(err, &notFound) {
			return "", errors.WrapInvalid(
				fmt.Errorf("%w: %w: %s", errors.ErrParameter, errors.ErrKeyNotFound, key),
				"params", "Get", "get parameter")
		}
		return "", parameterError(err, "Get", fmt.Sprintf("get %s", key))
	}
	if out.Parameter == nil || aws.ToString(out.Parameter.Value) == "" {
		return "", errors.WrapInvalid(
			fmt.Errorf("%w: %s has no value", errors.ErrParameter, key),
			"params", "Get", "read parameter value")
	}

	return aws.ToString(out.Parameter.Value), nil
}

func parameterError(err error, method, action string) error {
	wrapped := fmt.Errorf("%w: %w", errors.ErrParameter, err)
	if errors.IsTransient(err) {
		return errors.WrapTransient(wrapped, "params", method, action)
	}
	return errors.WrapFatal(wrapped, "params", method, action)
}
