package ports

import "context"

// ServiceStatus aggregates store-wide counters for the status endpoint.
type ServiceStatus struct {
	UserCount           int64  `json:"user_count"`
	TaskCount           int64  `json:"task_count"`
	AverageTasksPerUser string `json:"average_tasks_per_user"`
	SessionDuration     string `json:"session_duration"`
	MaxTasksPerUser     int    `json:"max_tasks_per_user"`
}

// StatusService reports store-wide service statistics.
type StatusService interface {
	Snapshot(ctx context.Context) (*ServiceStatus, error)
}

// StatusCache caches the status aggregate so repeated probes do not rescan
// the whole store. Get reports a miss with ok=false and a nil error.
type StatusCache interface {
	Get(ctx context.Context) (*ServiceStatus, bool, error)
	Set(ctx context.Context, status *ServiceStatus) error
}
