package testutil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/aws-samples/amazon-connect-cicd-workshop/errors"
)

// MemoryStore is an in-memory storage.Store.
// Thread-safe for concurrent use from multiple goroutines.
type MemoryStore struct {
	mu sync.RWMutex

	Log    *CallLog
	Faults Faults

	bucket string
	data   map[string][]byte
}

// NewMemoryStore creates an empty store that reports bucket as its location.
func NewMemoryStore(log *CallLog, bucket string) *MemoryStore {
	return &MemoryStore{Log: log, bucket: bucket, data: make(map[string][]byte)}
}

// Bucket returns the bucket name given at construction.
func (m *MemoryStore) Bucket() string {
	return m.bucket
}

// Put stores a copy of value.
func (m *MemoryStore) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Log.Record("store", "Put", key)
	if err := m.Faults.lookup("Put", key); err != nil {
		return err
	}
	m.data[key] = bytes.Clone(value)
	return nil
}

// Get returns a copy of the value stored at key.
func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	m.Log.Record("store", "Get", key)
	if err := m.Faults.lookup("Get", key); err != nil {
		return nil, err
	}
	val, ok := m.data[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errors.ErrKeyNotFound, key)
	}
	return bytes.Clone(val), nil
}

// List returns the keys under prefix in lexicographic order.
func (m *MemoryStore) List(_ context.Context, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	m.Log.Record("store", "List", prefix)
	if err := m.Faults.lookup("List", prefix); err != nil {
		return nil, err
	}
	keys := make([]string, 0)
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Delete removes key.
func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Log.Record("store", "Delete", key)
	delete(m.data, key)
	return nil
}

// Set stores value without recording a call.
func (m *MemoryStore) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = bytes.Clone(value)
}

// Value returns the stored value without recording a call.
func (m *MemoryStore) Value(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	val, ok := m.data[key]
	return bytes.Clone(val), ok
}

// FakeS3 is an in-memory single-bucket S3 API. Multipart uploads are not
// supported; bodies below the uploader's part size go through PutObject.
type FakeS3 struct {
	mu sync.Mutex

	Log    *CallLog
	Faults Faults

	Objects  map[string][]byte
	PageSize int
}

// NewFakeS3 creates an empty fake bucket.
func NewFakeS3(log *CallLog) *FakeS3 {
	return &FakeS3{Log: log, Objects: make(map[string][]byte)}
}

// ListObjectsV2 lists keys under the requested prefix.
func (f *FakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	prefix := aws.ToString(in.Prefix)
	f.Log.Record("s3", "ListObjectsV2", prefix)
	if err := f.Faults.lookup("ListObjectsV2", prefix); err != nil {
		return nil, err
	}

	keys := make([]string, 0)
	for k := range f.Objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	page, next := paginate(keys, in.ContinuationToken, f.PageSize)
	contents := make([]s3types.Object, 0, len(page))
	for _, k := range page {
		contents = append(contents, s3types.Object{Key: aws.String(k), Size: aws.Int64(int64(len(f.Objects[k])))})
	}
	return &s3.ListObjectsV2Output{
		Contents:              contents,
		KeyCount:              aws.Int32(int32(len(contents))),
		IsTruncated:           aws.Bool(next != nil),
		NextContinuationToken: next,
	}, nil
}

// GetObject returns the object body.
func (f *FakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := aws.ToString(in.Key)
	f.Log.Record("s3", "GetObject", key)
	if err := f.Faults.lookup("GetObject", key); err != nil {
		return nil, err
	}
	data, ok := f.Objects[key]
	if !ok {
		return nil, &s3types.NoSuchKey{Message: aws.String(key)}
	}
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(bytes.Clone(data))),
		ContentLength: aws.Int64(int64(len(data))),
	}, nil
}

// PutObject stores the request body.
func (f *FakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	key := aws.ToString(in.Key)
	f.Log.Record("s3", "PutObject", key)
	if err := f.Faults.lookup("PutObject", key); err != nil {
		return nil, err
	}

	var data []byte
	if in.Body != nil {
		var err error
		if data, err = io.ReadAll(in.Body); err != nil {
			return nil, err
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.Objects[key] = data
	return &s3.PutObjectOutput{}, nil
}

// DeleteObject removes an object.
func (f *FakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := aws.ToString(in.Key)
	f.Log.Record("s3", "DeleteObject", key)
	if err := f.Faults.lookup("DeleteObject", key); err != nil {
		return nil, err
	}
	delete(f.Objects, key)
	return &s3.DeleteObjectOutput{}, nil
}

// UploadPart is not supported.
func (f *FakeS3) UploadPart(context.Context, *s3.UploadPartInput, ...func(*s3.Options)) (*s3.UploadPartOutput, error) {
	return nil, fmt.Errorf("fake s3: multipart upload not supported")
}

// CreateMultipartUpload is not supported.
func (f *FakeS3) CreateMultipartUpload(context.Context, *s3.CreateMultipartUploadInput, ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error) {
	return nil, fmt.Errorf("fake s3: multipart upload not supported")
}

// CompleteMultipartUpload is not supported.
func (f *FakeS3) CompleteMultipartUpload(context.Context, *s3.CompleteMultipartUploadInput, ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error) {
	return nil, fmt.Errorf("fake s3: multipart upload not supported")
}

// AbortMultipartUpload is a no-op.
func (f *FakeS3) AbortMultipartUpload(context.Context, *s3.AbortMultipartUploadInput, ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error) {
	return &s3.AbortMultipartUploadOutput{}, nil
}
