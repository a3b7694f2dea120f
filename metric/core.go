package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every reconciliation metric.
const Namespace = "connectsync"

// Metrics contains the reconciliation run metrics.
type Metrics struct {
	RunsTotal           *prometheus.CounterVec
	LastSuccess         prometheus.Gauge
	StageDuration       *prometheus.HistogramVec
	StageFailures       *prometheus.CounterVec
	MutationsTotal      *prometheus.CounterVec
	ParametersPublished *prometheus.CounterVec
	MappingEntries      prometheus.Gauge
	ArtifactBytes       prometheus.Gauge
	QueueSkips          prometheus.Counter
}

// NewMetrics creates a new Metrics instance
func NewMetrics() *Metrics {
	return &Metrics{
		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "run",
				Name:      "total",
				Help:      "Reconciliation runs by outcome (success, failure)",
			},
			[]string{"status"},
		),

		LastSuccess: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Subsystem: "run",
				Name:      "last_success_timestamp_seconds",
				Help:      "Unix time of the last successful run",
			},
		),

		StageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Subsystem: "stage",
				Name:      "duration_seconds",
				Help:      "Pipeline stage duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"stage"},
		),

		StageFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "stage",
				Name:      "failures_total",
				Help:      "Pipeline stage failures by error class",
			},
			[]string{"stage", "class"},
		),

		MutationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "flow",
				Name:      "mutations_total",
				Help:      "Flow mutation calls by phase (create, update, rename) and outcome",
			},
			[]string{"phase", "outcome"},
		),

		ParametersPublished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "parameter",
				Name:      "published_total",
				Help:      "Parameters written by resource kind",
			},
			[]string{"kind"},
		),

		MappingEntries: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Subsystem: "mapping",
				Name:      "entries",
				Help:      "Entries in the last built mapping artifact",
			},
		),

		ArtifactBytes: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Subsystem: "mapping",
				Name:      "artifact_bytes",
				Help:      "Size of the last built mapping archive",
			},
		),

		QueueSkips: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "queue",
				Name:      "skips_total",
				Help:      "Runs that left queues out of the mapping after a rate-limited listing",
			},
		),
	}
}

// collectors returns every metric for registration.
func (c *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		c.RunsTotal,
		c.LastSuccess,
		c.StageDuration,
		c.StageFailures,
		c.MutationsTotal,
		c.ParametersPublished,
		c.MappingEntries,
		c.ArtifactBytes,
		c.QueueSkips,
	}
}

// RecordRun counts a finished run and stamps the last success time.
func (c *Metrics) RecordRun(success bool, at time.Time) {
	if success {
		c.RunsTotal.WithLabelValues("success").Inc()
		c.LastSuccess.Set(float64(at.Unix()))
		return
	}
	c.RunsTotal.WithLabelValues("failure").Inc()
}

// RecordStage observes a stage duration
func (c *Metrics) RecordStage(stage string, duration time.Duration) {
	c.StageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// RecordStageFailure counts a failed stage
func (c *Metrics) RecordStageFailure(stage, class string) {
	c.StageFailures.WithLabelValues(stage, class).Inc()
}

// RecordMutation counts one flow mutation call
func (c *Metrics) RecordMutation(phase string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	c.MutationsTotal.WithLabelValues(phase, outcome).Inc()
}

// RecordParameter counts one published parameter
func (c *Metrics) RecordParameter(kind string) {
	c.ParametersPublished.WithLabelValues(kind).Inc()
}

// RecordArtifact records the size of a built mapping
func (c *Metrics) RecordArtifact(entries, bytes int) {
	c.MappingEntries.Set(float64(entries))
	c.ArtifactBytes.Set(float64(bytes))
}

// RecordQueueSkip counts a run that skipped queue mapping
func (c *Metrics) RecordQueueSkip() {
	c.QueueSkips.Inc()
}
