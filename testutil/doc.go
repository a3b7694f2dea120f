// Package testutil provides in-memory fakes of every external API the
// reconciliation engine calls.
//
// # Fakes
//
//   - FakeConnect: contact-center flows, queues and prompts
//   - FakeLex: bots and bot aliases
//   - FakeSSM: parameter store
//   - FakeLambda: function code updates
//   - FakeS3: a single bucket behind the S3 object API
//   - MemoryStore: storage.Store without the S3 layer
//
// Every fake implements the SDK-shaped client interface consumed by the
// production package, so tests inject it exactly where an SDK client would go.
//
// # Call Recording
//
// Fakes share an optional *CallLog. Each API call appends
// Call{Service, Operation, Target} before any fault is returned, so tests can
// assert both what was called and in which order:
//
//	log := testutil.NewCallLog()
//	cc := testutil.NewFakeConnect(log, "app-B", "app-C")
//	// ... run the engine ...
//	assert.Equal(t, []string{"CreateContactFlow(app-A)"},
//	    log.Operations("CreateContactFlow"))
//
// # Fault Injection
//
// Faults maps an operation name, or "Operation:target", to an error:
//
//	cc.Faults = testutil.Faults{"ListQueues": testutil.ThrottleError()}
//	ssm.Faults = testutil.Faults{"PutParameter:/app/dev/app-B": testutil.ErrMockFailed}
//
// # Thread Safety
//
// All fakes are safe for concurrent use from multiple goroutines.
package testutil
