// Package awsclient builds the AWS SDK clients a reconciliation run uses.
package awsclient

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/connect"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lexmodelsv2"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// DefaultMaxAttempts is the SDK retry budget per call, first attempt included.
const DefaultMaxAttempts = 5

// Clients bundles one client per service.
type Clients struct {
	Connect *connect.Client
	Lex     *lexmodelsv2.Client
	SSM     *ssm.Client
	S3      *s3.Client
	Lambda  *lambda.Client
}

// LoadConfig resolves credentials from the default chain (environment,
// shared config, execution role) for region.
func LoadConfig(ctx context.Context, region string, maxAttempts int) (aws.Config, error) {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
		config.WithRetryMode(aws.RetryModeStandard),
		config.WithRetryMaxAttempts(maxAttempts),
	)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return cfg, nil
}

// New creates every client from cfg.
func New(cfg aws.Config) *Clients {
	return &Clients{
		Connect: connect.NewFromConfig(cfg),
		Lex:     lexmodelsv2.NewFromConfig(cfg),
		SSM:     ssm.NewFromConfig(cfg),
		S3:      s3.NewFromConfig(cfg),
		Lambda:  lambda.NewFromConfig(cfg),
	}
}
