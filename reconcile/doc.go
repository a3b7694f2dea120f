// Package reconcile drives one reconciliation run of a contact-center
// instance against the flow definitions kept in a blob store.
//
// A run is a fixed pipeline of stages:
//
//	resolve-parameters  read the mapping function ARN and name
//	fetch-desired       read and parse every desired flow definition
//	inspect-live        list flows, bots, queues and prompts
//	create              create desired flows that do not exist
//	relist              list flows again
//	update              overwrite the content of every desired flow
//	rename              mark app flows that are no longer desired
//	publish             mirror every discovered resource into the
//	                    parameter store and the mapping manifest
//	build               render and package the mapping function
//	upload              write the archive to the blob store
//	deploy              point the mapping function at the archive
//
// Stages run strictly in order and the run halts at the first failure. Flow
// mutations already made are not rolled back; the next run converges. The
// deployed mapping only changes in the deploy stage, so a failed run leaves
// the previous mapping serving.
//
// Before every stage that changes external state the engine checks the time
// left on the context. If less than the configured soft deadline remains
// the run fails with errors.ErrDeadline instead of starting the stage.
//
// A rate-limited queue listing does not fail the run: queues are left out
// of that run's mapping and the inspect stage is reported as degraded.
//
// Basic usage:
//
//	engine, err := reconcile.NewEngine(cfg, reconcile.Deps{
//		Store:     s3store.New(clients.S3, cfg.Bucket, logger),
//		Connect:   clients.Connect,
//		Lex:       clients.Lex,
//		Params:    clients.SSM,
//		Functions: clients.Lambda,
//	}, reconcile.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	report, err := engine.Run(ctx)
//
// Runs against the same instance must not overlap.
package reconcile
