// Package flowstore reads desired-state contact flow definitions.
//
// # Overview
//
// Flow definitions are authored outside the engine and stored as JSON objects
// under a key prefix (by default "callflows") in a storage.Store. Each object
// has the shape:
//
//	{"Name": "app-Main", "ContactFlowType": "CONTACT_FLOW", "Content": "{...}"}
//
// where Content is the flow-language document as a JSON string.
//
// # Placeholder Resolution
//
// Content may reference the mapping function through a placeholder token
// (by default "<<ARNREPLACE>>"). Fetcher.Fetch replaces the first occurrence
// of the token in the raw object body with the resolved value before parsing,
// so the value must be safe to embed inside a JSON string.
//
// # Validation
//
// Each body is checked against a JSON schema (gojsonschema), then
// FlowDefinition.Validate checks:
//   - Name is non-empty
//   - ContactFlowType is a type the contact-center API accepts
//   - Content is a JSON document
//
// Names are the natural key for matching desired flows against live ones, so
// a desired set with two definitions of the same name is rejected with
// errors.ErrDuplicateFlowName.
//
// # Error Handling
//
// Every error returned by Fetch matches errors.ErrStateFetch. A failed fetch
// aborts the run before any mutation is attempted.
package flowstore
