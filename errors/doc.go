// Package errors provides standardized error handling for the reconciliation engine.
//
// # Error Classification
//
// Errors carry one of three classes:
//
//   - Transient: throttling, server faults, dropped connections (retry recommended)
//   - Invalid: malformed desired state, duplicate names, unsafe mapping entries (do not retry)
//   - Fatal: everything else; the run stops
//
// Classify defaults unknown errors to Fatal. A reconciliation run is all-or-nothing at
// the phase level, so an unexplained failure must never be treated as retryable.
//
// # Run Taxonomy
//
// Every failure that ends a run matches one sentinel with errors.Is:
//
//	ErrStateFetch              blob store unreachable or desired object malformed
//	ErrDuplicateFlowName       two desired objects share a Name
//	ErrLiveState               an inventory listing failed
//	ErrRateLimitedQueueListing queue listing throttled (recovered, never returned by a run)
//	ErrFlowMutation            create, content update or rename failed
//	ErrParameter               parameter store read or write failed
//	ErrArtifactBuild           mapping entry rejected or packaging failed
//	ErrUpload                  archive upload failed
//	ErrDeploy                  function code update failed
//	ErrDeadline                not enough time left to start a mutation stage
//
// StageError attaches the stage name and resource name:
//
//	return errors.NewStageError("create", flow.Name, errors.ErrFlowMutation, err)
//
// Both the sentinel and the SDK cause remain reachable through errors.Is and errors.As.
//
// # Error Wrapping Pattern
//
// Component-level wrapping follows the format:
//
//	"component.method: action failed: %w"
//
//	errors.WrapTransient(err, "Component", "Method", "action")
//	errors.WrapInvalid(err, "Component", "Method", "action")
//	errors.WrapFatal(err, "Component", "Method", "action")
//
// # Throttling
//
// IsRateLimited recognizes the AWS throttling error codes and the literal
// "Rate exceeded" message returned by Amazon Connect listing APIs.
package errors
