package health

import (
	"fmt"
	"time"
)

// NewHealthy creates a new healthy status
func NewHealthy(name, message string) Status {
	return Status{Name: name, Healthy: true, Status: StatusHealthy, Message: message, Timestamp: time.Now()}
}

// NewUnhealthy creates a new unhealthy status
func NewUnhealthy(name, message string) Status {
	return Status{Name: name, Status: StatusUnhealthy, Message: message, Timestamp: time.Now()}
}

// NewDegraded creates a new degraded status
func NewDegraded(name, message string) Status {
	return Status{Name: name, Status: StatusDegraded, Message: message, Timestamp: time.Now()}
}

// Aggregate combines stage statuses into a run status:
//   - any unhealthy stage makes the run unhealthy
//   - otherwise any degraded stage makes it degraded
//   - otherwise it is healthy
//
// The message names the first stage that set the outcome.
func Aggregate(name string, subStatuses []Status) Status {
	if len(subStatuses) == 0 {
		return NewHealthy(name, "no stages recorded")
	}

	var firstUnhealthy, firstDegraded *Status
	for i := range subStatuses {
		sub := &subStatuses[i]
		switch {
		case sub.IsUnhealthy() && firstUnhealthy == nil:
			firstUnhealthy = sub
		case sub.IsDegraded() && firstDegraded == nil:
			firstDegraded = sub
		}
	}

	var status Status
	switch {
	case firstUnhealthy != nil:
		status = NewUnhealthy(name, fmt.Sprintf("stage %s failed: %s", firstUnhealthy.Name, firstUnhealthy.Message))
	case firstDegraded != nil:
		status = NewDegraded(name, fmt.Sprintf("stage %s degraded: %s", firstDegraded.Name, firstDegraded.Message))
	default:
		status = NewHealthy(name, fmt.Sprintf("%d stages healthy", len(subStatuses)))
	}

	status.SubStatuses = make([]Status, len(subStatuses))
	copy(status.SubStatuses, subStatuses)
	return status
}
