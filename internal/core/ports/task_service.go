package ports

import (
	"context"

	"github.com/byteplug/task-tracker/internal/core/domain"
)

// CreateTaskInput carries the fields for a new task. Description and Status
// are optional; a nil Status falls back to the default.
type CreateTaskInput struct {
	Name        string
	Description *string
	Status      *domain.TaskStatus
}

// TaskInfo is the public view of a task.
type TaskInfo struct {
	Name        string
	Description string
	Status      domain.TaskStatus
}

// TaskService defines the task use cases. Every operation is scoped by the
// authenticated owner's ID.
type TaskService interface {
	// CreateTask creates a task and returns its store-assigned ID.
	CreateTask(ctx context.Context, ownerID string, input CreateTaskInput) (string, error)
	// GetTask returns the task view, or domain.ErrInvalidTaskID.
	GetTask(ctx context.Context, ownerID, taskID string) (*TaskInfo, error)
	// UpdateTask applies a partial update; only non-nil patch fields change.
	UpdateTask(ctx context.Context, ownerID, taskID string, patch TaskPatch) error
	// DeleteTask removes the task, or returns domain.ErrInvalidTaskID when
	// it is absent or owned by someone else.
	DeleteTask(ctx context.Context, ownerID, taskID string) error
	// ListTasks returns the IDs of all tasks owned by ownerID.
	ListTasks(ctx context.Context, ownerID string) ([]string, error)
	// MarkAllTasksAs sets every task owned by ownerID to status. The bulk
	// update is per item, not atomic across items.
	MarkAllTasksAs(ctx context.Context, ownerID string, status domain.TaskStatus) error
}
