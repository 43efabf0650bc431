package ports

import (
	"context"

	"github.com/byteplug/task-tracker/internal/core/domain"
)

// TaskPatch carries a partial update: nil fields are left unchanged.
type TaskPatch struct {
	Name        *string
	Description *string
	Status      *domain.TaskStatus
}

// TaskRepository defines persistence operations for tasks. Every lookup and
// mutation is scoped by the owning user's ID: a task ID alone never resolves
// across owners.
type TaskRepository interface {
	// Create inserts a new task and returns it with its store-assigned ID.
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	// FindByID returns the task with the given ID under ownerID, or
	// domain.ErrTaskNotFound when absent or owned by someone else.
	FindByID(ctx context.Context, ownerID, taskID string) (*domain.Task, error)
	// Update applies the non-nil patch fields to the task under ownerID.
	// Returns domain.ErrTaskNotFound under the same condition as FindByID.
	Update(ctx context.Context, ownerID, taskID string, patch TaskPatch) error
	// Delete removes the task under ownerID, or returns
	// domain.ErrTaskNotFound.
	Delete(ctx context.Context, ownerID, taskID string) error
	// ListByOwner returns all tasks belonging to ownerID.
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.Task, error)
	// CountAll returns the total number of tasks across all owners.
	CountAll(ctx context.Context) (int64, error)
}
