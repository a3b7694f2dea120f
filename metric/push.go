package metric

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/aws-samples/amazon-connect-cicd-workshop/errors"
)

// Pusher sends a registry's metrics to a Prometheus Pushgateway at the end of
// a run.
type Pusher struct {
	url      string
	job      string
	grouping map[string]string
	registry *MetricsRegistry
	logger   *slog.Logger
}

// NewPusher creates a pusher. An empty url yields a pusher whose Push is a
// no-op.
func NewPusher(url, job string, registry *MetricsRegistry, logger *slog.Logger) *Pusher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pusher{
		url:      url,
		job:      job,
		grouping: make(map[string]string),
		registry: registry,
		logger:   logger.With("component", "metric"),
	}
}

// Grouping adds a grouping label to every push.
func (p *Pusher) Grouping(name, value string) *Pusher {
	p.grouping[name] = value
	return p
}

// Enabled reports whether a Pushgateway is configured.
func (p *Pusher) Enabled() bool {
	return p != nil && p.url != "" && p.registry != nil
}

// Push replaces the job's metric group on the gateway.
func (p *Pusher) Push(ctx context.Context) error {
	if !p.Enabled() {
		return nil
	}

	pusher := push.New(p.url, p.job).Gatherer(p.registry.PrometheusRegistry())
	for name, value := range p.grouping {
		pusher = pusher.Grouping(name, value)
	}

	if err := pusher.PushContext(ctx); err != nil {
		if errors.IsTransient(err) {
			return errors.WrapTransient(err, "metric", "Push", "push to gateway")
		}
		return errors.WrapFatal(err, "metric", "Push", "push to gateway")
	}

	p.logger.Debug("Metrics pushed", "job", p.job)
	return nil
}
