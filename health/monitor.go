package health

import (
	"sync"
	"time"
)

// Monitor records stage statuses in the order stages first report.
// Safe for concurrent use.
type Monitor struct {
	mu       sync.RWMutex
	order    []string
	statuses map[string]Status
}

// NewMonitor creates a new health monitor
func NewMonitor() *Monitor {
	return &Monitor{
		order:    make([]string, 0),
		statuses: make(map[string]Status),
	}
}

// Update records the status for a named stage, replacing any earlier one.
func (m *Monitor) Update(name string, status Status) {
	m.mu.Lock()
	defer m.mu.Unlock()

	status.Name = name
	if status.Timestamp.IsZero() {
		status.Timestamp = time.Now()
	}

	if _, seen := m.statuses[name]; !seen {
		m.order = append(m.order, name)
	}
	m.statuses[name] = status
}

// Get retrieves the status of a named stage
func (m *Monitor) Get(name string) (Status, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	status, exists := m.statuses[name]
	return status, exists
}

// All returns every recorded status in first-report order.
func (m *Monitor) All() []Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]Status, 0, len(m.order))
	for _, name := range m.order {
		result = append(result, m.statuses[name])
	}
	return result
}

// AggregateHealth returns the aggregated status of every recorded stage.
func (m *Monitor) AggregateHealth(name string) Status {
	return Aggregate(name, m.All())
}

// Count returns the number of stages recorded
func (m *Monitor) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.statuses)
}

// Clear removes every recorded status
func (m *Monitor) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.order = make([]string, 0)
	m.statuses = make(map[string]Status)
}
