package health

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonitor_OrderAndReplace(t *testing.T) {
	m := NewMonitor()
	m.Update("fetch-desired", NewHealthy("fetch-desired", "2 flows"))
	m.Update("inspect-live", NewDegraded("inspect-live", "queues skipped"))
	m.Update("create", NewHealthy("create", "1 flow"))
	m.Update("fetch-desired", NewUnhealthy("fetch-desired", "replaced"))

	all := m.All()
	require.Len(t, all, 3)
	assert.Equal(t, []string{"fetch-desired", "inspect-live", "create"}, []string{all[0].Name, all[1].Name, all[2].Name})
	assert.True(t, all[0].IsUnhealthy())
	assert.Equal(t, 3, m.Count())

	s, ok := m.Get("inspect-live")
	require.True(t, ok)
	assert.True(t, s.IsDegraded())

	_, ok = m.Get("deploy")
	assert.False(t, ok)
}

func TestMonitor_Update_SetsNameAndTimestamp(t *testing.T) {
	m := NewMonitor()
	m.Update("upload", Status{Status: StatusHealthy, Healthy: true})

	s, ok := m.Get("upload")
	require.True(t, ok)
	assert.Equal(t, "upload", s.Name)
	assert.False(t, s.Timestamp.IsZero())
}

func TestMonitor_AggregateHealth(t *testing.T) {
	m := NewMonitor()
	m.Update("fetch-desired", NewHealthy("fetch-desired", ""))
	m.Update("inspect-live", NewDegraded("inspect-live", "queues skipped"))

	agg := m.AggregateHealth("reconcile")
	assert.True(t, agg.IsDegraded())
	assert.Len(t, agg.SubStatuses, 2)

	m.Clear()
	assert.Equal(t, 0, m.Count())
	assert.True(t, m.AggregateHealth("reconcile").IsHealthy())
}

func TestMonitor_Concurrent(t *testing.T) {
	m := NewMonitor()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("stage-%d", i%5)
			m.Update(name, NewHealthy(name, "ok"))
			_ = m.All()
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 5, m.Count())
}
