// Package deploy uploads a packaged mapping artifact and points the mapping
// function at it.
//
// The function code update is the only cutover point: a failed upload or a
// failed update leaves the previously deployed code serving requests.
package deploy

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"

	"github.com/aws-samples/amazon-connect-cicd-workshop/errors"
	"github.com/aws-samples/amazon-connect-cicd-workshop/mapping"
	"github.com/aws-samples/amazon-connect-cicd-workshop/storage"
)

// FunctionAPI is the subset of the function deployment client the deployer uses.
type FunctionAPI interface {
	UpdateFunctionCode(ctx context.Context, params *lambda.UpdateFunctionCodeInput, optFns ...func(*lambda.Options)) (*lambda.UpdateFunctionCodeOutput, error)
}

// Location is where an artifact was uploaded.
type Location struct {
	Bucket string
	Key    string
}

// Result describes a completed deployment.
type Result struct {
	Location     Location
	FunctionName string
	FunctionArn  string
	Version      string
}

// Deployer uploads archives to a blob store and updates function code.
type Deployer struct {
	store     storage.Store
	bucket    string
	functions FunctionAPI
	key       string
	logger    *slog.Logger
}

// NewDeployer creates a deployer writing archives to key in store. The
// store must report its bucket through storage.Locator.
func NewDeployer(store storage.Store, functions FunctionAPI, key string, logger *slog.Logger) (*Deployer, error) {
	if store == nil || functions == nil {
		return nil, errors.WrapInvalid(fmt.Errorf("store and function client are required"), "deploy", "NewDeployer", "validate dependencies")
	}
	loc, ok := store.(storage.Locator)
	if !ok || loc.Bucket() == "" {
		return nil, errors.WrapInvalid(fmt.Errorf("store does not expose a bucket"), "deploy", "NewDeployer", "validate store")
	}
	if key == "" {
		return nil, errors.WrapInvalid(fmt.Errorf("artifact key cannot be empty"), "deploy", "NewDeployer", "validate key")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Deployer{
		store:     store,
		bucket:    loc.Bucket(),
		functions: functions,
		key:       key,
		logger:    logger.With("component", "deploy"),
	}, nil
}

// Upload writes the archive to the artifact key.
func (d *Deployer) Upload(ctx context.Context, artifact *mapping.Artifact) (Location, error) {
	if artifact == nil || len(artifact.Archive) == 0 {
		return Location{}, errors.WrapInvalid(
			fmt.Errorf("%w: empty artifact", errors.ErrUpload), "deploy", "Upload", "validate artifact")
	}

	if err := d.store.Put(ctx, d.key, artifact.Archive); err != nil {
		wrapped := fmt.Errorf("%w: %w", errors.ErrUpload, err)
		if errors.IsTransient(err) {
			return Location{}, errors.WrapTransient(wrapped, "deploy", "Upload", fmt.Sprintf("put %s", d.key))
		}
		return Location{}, errors.WrapFatal(wrapped, "deploy", "Upload", fmt.Sprintf("put %s", d.key))
	}

	loc := Location{Bucket: d.bucket, Key: d.key}
	d.logger.Info("Mapping artifact uploaded", "bucket", loc.Bucket, "key", loc.Key, "bytes", len(artifact.Archive))
	return loc, nil
}

// Activate points functionName at the archive at loc. The new code is not
// published as a version.
func (d *Deployer) Activate(ctx context.Context, functionName string, loc Location) (*Result, error) {
	if functionName == "" {
		return nil, errors.WrapInvalid(
			fmt.Errorf("%w: function name cannot be empty", errors.ErrDeploy), "deploy", "Activate", "validate function")
	}

	out, err := d.functions.UpdateFunctionCode(ctx, &lambda.UpdateFunctionCodeInput{
		FunctionName: aws.String(functionName),
		S3Bucket:     aws.String(loc.Bucket),
		S3Key:        aws.String(loc.Key),
	})
	if err != nil {
		wrapped := fmt.Errorf("%w: %w", errors.ErrDeploy, err)
		if errors.IsTransient(err) {
			return nil, errors.WrapTransient(wrapped, "deploy", "Activate", fmt.Sprintf("update code of %s", functionName))
		}
		return nil, errors.WrapFatal(wrapped, "deploy", "Activate", fmt.Sprintf("update code of %s", functionName))
	}

	res := &Result{
		Location:     loc,
		FunctionName: functionName,
		FunctionArn:  aws.ToString(out.FunctionArn),
		Version:      aws.ToString(out.Version),
	}
	d.logger.Info("Mapping function updated", "function", functionName, "version", res.Version)
	return res, nil
}
