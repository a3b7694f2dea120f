// Package retry provides exponential backoff retry logic for transient failures.
//
// The engine only retries reads that happen before any mutation (the parameter
// lookups that resolve the mapping function). Mutations are never retried here;
// the AWS SDK's own retryer is the only retry layer they see.
//
// Basic retry with defaults:
//
//	err := retry.Do(ctx, retry.DefaultConfig(), func() error {
//	    return client.Ping(ctx)
//	})
//
// Retry only what the caller considers transient:
//
//	cfg := retry.DefaultConfig().WithRetryIf(errors.IsTransient)
//	value, err := retry.DoWithResult(ctx, cfg, func() (string, error) {
//	    return store.Get(ctx, name)
//	})
//
// Errors wrapped with NonRetryable stop the loop immediately regardless of RetryIf.
// All operations respect context cancellation, both while running fn and during backoff.
package retry
