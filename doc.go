// Package connectsync keeps a contact-center instance's flows in step with the
// flow definitions kept in a blob store, and publishes a name-to-ARN mapping
// of the instance's resources for the flows to read at runtime.
//
// # Architecture
//
// One run reads desired state, inspects live state, mutates flows, then
// rebuilds and deploys the mapping function:
//
//	┌─────────────────────────────────────┐
//	│   flowstore          inventory      │  desired flows, live flows,
//	│   (blob store)       (instance)     │  bots, queues, prompts
//	└─────────────────────────────────────┘
//	           ↓ diffed by
//	┌─────────────────────────────────────┐
//	│            reconcile                │  create, update, rename
//	│   (stage pipeline, soft deadline)   │  halt at first failure
//	└─────────────────────────────────────┘
//	           ↓ publishes through
//	┌─────────────────────────────────────┐
//	│  params     mapping      deploy     │  parameter store, mapping
//	│                                     │  archive, function code
//	└─────────────────────────────────────┘
//
// # Packages
//
//   - config: environment-driven settings and validation
//   - errors: error classes and the run failure taxonomy
//   - storage, storage/s3store: blob store interface and S3 backend
//   - flowstore: desired flow definitions
//   - inventory: live instance and bot listings
//   - params: parameter store reads and writes
//   - mapping: manifest, runtime shim and archive
//   - deploy: artifact upload and function code update
//   - reconcile: the run pipeline
//   - health, metric: per-stage status and Prometheus metrics
//   - pkg/awsclient, pkg/retry: SDK clients and retry policy
//
// The binary in cmd/connectsync runs the pipeline once, or serves it as a
// function handler when started by the function runtime.
package connectsync
