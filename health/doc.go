// Package health records per-stage outcomes of a reconciliation run.
//
// Each pipeline stage reports one Status to a Monitor: healthy when it
// completed, degraded when it completed with reduced output (a skipped queue
// mapping, for instance), unhealthy when it failed. AggregateHealth folds the
// stage statuses into the status of the run:
//
//	monitor := health.NewMonitor()
//	monitor.Update("fetch-desired", health.NewHealthy("fetch-desired", "3 flows"))
//	monitor.Update("inspect-live", health.NewDegraded("inspect-live", "queue listing rate limited"))
//	run := monitor.AggregateHealth("reconcile") // degraded
//
// Error messages attached through FromError are sanitized: URLs, IP
// addresses, account ids and credential-looking pairs are replaced with
// placeholders.
package health
