package domain

// TaskStatus is the closed set of task states. Transitions are unrestricted:
// any status may move to any other via update or mark-all-as.
type TaskStatus string

const (
	StatusNotDone    TaskStatus = "not-done"
	StatusInProgress TaskStatus = "in-progress"
	StatusDone       TaskStatus = "done"
)

// TaskStatuses lists the closed set in order; the first element is the
// default applied when a task is created without an explicit status.
var TaskStatuses = []TaskStatus{StatusNotDone, StatusInProgress, StatusDone}

// DefaultTaskStatus returns the status assigned to new tasks.
func DefaultTaskStatus() TaskStatus {
	return TaskStatuses[0]
}

// Valid reports whether s is a member of the closed status set.
func (s TaskStatus) Valid() bool {
	for _, v := range TaskStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// TaskStatusValues returns the closed set as plain strings, shared with the
// enum schema nodes so the set is defined exactly once.
func TaskStatusValues() []string {
	values := make([]string, len(TaskStatuses))
	for i, s := range TaskStatuses {
		values[i] = string(s)
	}
	return values
}

// Task is the sole user-visible resource, always scoped to exactly one user.
// OwnerID never changes after creation.
type Task struct {
	ID          string     `json:"id"`
	OwnerID     string     `json:"owner_id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Status      TaskStatus `json:"status"`
}
