package metric

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aws-samples/amazon-connect-cicd-workshop/errors"
)

func TestNewMetricsRegistry(t *testing.T) {
	registry := NewMetricsRegistry()
	require.NotNil(t, registry.PrometheusRegistry())
	require.NotNil(t, registry.CoreMetrics())

	registry.CoreMetrics().RecordRun(true, time.Unix(1700000000, 0))

	families, err := registry.PrometheusRegistry().Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, mf := range families {
		names = append(names, mf.GetName())
	}
	assert.Contains(t, names, "connectsync_run_total")
	assert.Contains(t, names, "connectsync_run_last_success_timestamp_seconds")
}

func TestMetrics_Record(t *testing.T) {
	m := NewMetrics()

	m.RecordRun(true, time.Unix(1700000000, 0))
	m.RecordRun(false, time.Now())
	m.RecordMutation("create", nil)
	m.RecordMutation("create", nil)
	m.RecordMutation("update", fmt.Errorf("boom"))
	m.RecordParameter("flow")
	m.RecordArtifact(7, 512)
	m.RecordQueueSkip()
	m.RecordStageFailure("update", "fatal")
	m.RecordStage("create", 20*time.Millisecond)

	assert.Equal(t, 1.0, promtest.ToFloat64(m.RunsTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.RunsTotal.WithLabelValues("failure")))
	assert.Equal(t, 1700000000.0, promtest.ToFloat64(m.LastSuccess))
	assert.Equal(t, 2.0, promtest.ToFloat64(m.MutationsTotal.WithLabelValues("create", "success")))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.MutationsTotal.WithLabelValues("update", "failure")))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.ParametersPublished.WithLabelValues("flow")))
	assert.Equal(t, 7.0, promtest.ToFloat64(m.MappingEntries))
	assert.Equal(t, 512.0, promtest.ToFloat64(m.ArtifactBytes))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.QueueSkips))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.StageFailures.WithLabelValues("update", "fatal")))
	assert.Equal(t, 1, promtest.CollectAndCount(m.StageDuration))
}

func TestMetricsRegistry_Register(t *testing.T) {
	registry := NewMetricsRegistry()

	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "extra_total", Help: "extra"})
	require.NoError(t, registry.Register("tests", "extra_total", counter))

	err := registry.Register("tests", "extra_total", counter)
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))

	clash := prometheus.NewCounter(prometheus.CounterOpts{Name: "extra_total", Help: "extra"})
	err = registry.Register("other", "extra_total", clash)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prometheus conflict")

	assert.True(t, registry.Unregister("tests", "extra_total"))
	assert.False(t, registry.Unregister("tests", "extra_total"))
}

func TestMetricsRegistry_ThreadSafety(t *testing.T) {
	registry := NewMetricsRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			counter := prometheus.NewCounter(prometheus.CounterOpts{
				Name: fmt.Sprintf("concurrent_counter_%d", id),
				Help: "A concurrent counter",
			})
			assert.NoError(t, registry.Register("concurrent", fmt.Sprintf("c%d", id), counter))
		}(i)
	}
	wg.Wait()

	families, err := registry.PrometheusRegistry().Gather()
	require.NoError(t, err)
	count := 0
	for _, mf := range families {
		if strings.HasPrefix(mf.GetName(), "concurrent_counter_") {
			count++
		}
	}
	assert.Equal(t, 10, count)
}

func TestPusher_Disabled(t *testing.T) {
	p := NewPusher("", "connectsync", NewMetricsRegistry(), nil)
	assert.False(t, p.Enabled())
	assert.NoError(t, p.Push(context.Background()))
}

func TestPusher_Push(t *testing.T) {
	var (
		mu     sync.Mutex
		method string
		path   string
	)
	families := make(map[string]*dto.MetricFamily)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		method, path = r.Method, r.URL.Path
		dec := expfmt.NewDecoder(r.Body, expfmt.ResponseFormat(r.Header))
		for {
			mf := &dto.MetricFamily{}
			if err := dec.Decode(mf); err != nil {
				break
			}
			families[mf.GetName()] = mf
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	registry := NewMetricsRegistry()
	registry.CoreMetrics().RecordRun(true, time.Now())

	p := NewPusher(server.URL, "connectsync", registry, nil).Grouping("env", "dev")
	require.True(t, p.Enabled())
	require.NoError(t, p.Push(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/metrics/job/connectsync/env/dev", path)

	runs, ok := families["connectsync_run_total"]
	require.True(t, ok, "pushed families: %v", families)
	assert.Equal(t, dto.MetricType_COUNTER, runs.GetType())
	require.Len(t, runs.GetMetric(), 1)
	assert.Equal(t, 1.0, runs.GetMetric()[0].GetCounter().GetValue())
}

func TestPusher_GatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	err := NewPusher(server.URL, "connectsync", NewMetricsRegistry(), nil).Push(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.ErrorFatal, errors.Classify(err))
}
