// Package metric provides the Prometheus metrics of a reconciliation run.
//
// A MetricsRegistry owns a dedicated prometheus.Registry with the run
// metrics (the Metrics type) registered:
//
//	connectsync_run_total{status}
//	connectsync_run_last_success_timestamp_seconds
//	connectsync_stage_duration_seconds{stage}
//	connectsync_stage_failures_total{stage,class}
//	connectsync_flow_mutations_total{phase,outcome}
//	connectsync_parameter_published_total{kind}
//	connectsync_mapping_entries
//	connectsync_mapping_artifact_bytes
//	connectsync_queue_skips_total
//
// Further collectors can be added through the MetricsRegistrar interface.
//
// # Pushing
//
// A run is a short-lived batch job, so metrics are not scraped. When a
// Pushgateway URL is configured, Pusher.Push sends the registry at the end of
// the run, grouped by job and instance:
//
//	registry := metric.NewMetricsRegistry()
//	pusher := metric.NewPusher(cfg.PushgatewayURL, "connectsync", registry, logger).
//	    Grouping("app", cfg.App).
//	    Grouping("env", cfg.Env)
//	defer pusher.Push(ctx)
//
// An empty URL disables pushing.
package metric
