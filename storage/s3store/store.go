// Package s3store implements storage.Store on top of Amazon S3.
package s3store

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/aws-samples/amazon-connect-cicd-workshop/errors"
	"github.com/aws-samples/amazon-connect-cicd-workshop/storage"
)

// API is the subset of the S3 client the store uses.
type API interface {
	s3.ListObjectsV2APIClient
	manager.UploadAPIClient
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Store is an S3-backed storage.Store bound to a single bucket.
type Store struct {
	client   API
	uploader *manager.Uploader
	bucket   string
	logger   *slog.Logger
}

var (
	_ storage.Store   = (*Store)(nil)
	_ storage.Locator = (*Store)(nil)
)

// New creates a store for bucket.
func New(client API, bucket string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   bucket,
		logger:   logger.With("component", "s3store", "bucket", bucket),
	}
}

// Bucket returns the bucket the store reads and writes.
func (s *Store) Bucket() string {
	return s.bucket
}

// Put uploads data to key. Large bodies are split into parts by the uploader.
func (s *Store) Put(ctx context.Context, key string, data []byte) error {
	if key == "" {
		return errors.WrapInvalid(fmt.Errorf("empty key"), "s3store", "Put", "validate key")
	}

	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return classify(err, "Put", fmt.Sprintf("upload %s", key))
	}

	s.logger.Debug("Object uploaded", "key", key, "bytes", len(data))
	return nil
}

// Get downloads the object stored at key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, errors.WrapInvalid(
				fmt.Errorf("%w: %s", errors.ErrKeyNotFound, key), "s3store", "Get", "get object")
		}
		return nil, classify(err, "Get", fmt.Sprintf("get %s", key))
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, errors.WrapTransient(err, "s3store", "Get", fmt.Sprintf("read body of %s", key))
	}
	return data, nil
}

// List returns every key under prefix, following continuation tokens.
// Zero-byte "folder" markers ending in "/" are skipped.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})

	keys := make([]string, 0)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, classify(err, "List", fmt.Sprintf("list prefix %q", prefix))
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if key == "" || strings.HasSuffix(key, "/") {
				continue
			}
			keys = append(keys, key)
		}
	}

	s.logger.Debug("Objects listed", "prefix", prefix, "count", len(keys))
	return keys, nil
}

// Delete removes key. S3 reports success for keys that do not exist.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return classify(err, "Delete", fmt.Sprintf("delete %s", key))
	}
	return nil
}

func classify(err error, method, action string) error {
	if errors.IsTransient(err) {
		return errors.WrapTransient(err, "s3store", method, action)
	}
	return errors.WrapFatal(err, "s3store", method, action)
}
