// Package storage provides pluggable backend interfaces for blob storage.
//
// The Store interface uses a simple key-value pattern where:
//   - Keys are strings (hierarchical paths via "/" separators)
//   - Values are binary data ([]byte)
//   - Operations are context-aware for cancellation and timeouts
//
// Desired-state flow definitions live under a key prefix (for example
// "callflows/") and the packaged mapping archive is written back to the same
// bucket, so one Store serves both directions of a reconciliation run.
//
//	store := s3store.New(s3Client, "callflow-bucket", logger)
//
//	keys, err := store.List(ctx, "callflows/")
//	data, err := store.Get(ctx, keys[0])
//	err = store.Put(ctx, "index.zip", archive)
//
// # Error Handling
//
// Store implementations return errors classified by the errors package:
//   - errors.WrapInvalid: missing keys (also matching errors.ErrKeyNotFound)
//   - errors.WrapTransient: throttling, server faults
//   - errors.WrapFatal: anything else
//
// # Thread Safety
//
// All Store implementations MUST be safe for concurrent use from multiple goroutines.
package storage
