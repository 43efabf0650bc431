package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/byteplug/task-tracker/internal/api/metrics"
	"github.com/byteplug/task-tracker/internal/core/domain"
	"github.com/byteplug/task-tracker/internal/core/ports"
)

// TaskService implements the task use cases. Every operation is scoped by
// the owner ID carried in the caller's token; a task ID alone never resolves
// across owners.
type TaskService struct {
	repo   ports.TaskRepository
	logger zerolog.Logger
}

func NewTaskService(repo ports.TaskRepository, logger zerolog.Logger) *TaskService {
	return &TaskService{repo: repo, logger: logger}
}

// CreateTask creates a task for ownerID and returns its ID. Status defaults
// to the first element of the closed status set when not supplied.
func (s *TaskService) CreateTask(ctx context.Context, ownerID string, input ports.CreateTaskInput) (string, error) {
	task := &domain.Task{
		OwnerID: ownerID,
		Name:    input.Name,
		Status:  domain.DefaultTaskStatus(),
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Status != nil {
		task.Status = *input.Status
	}

	created, err := s.repo.Create(ctx, task)
	if err != nil {
		s.logger.Error().Err(err).Str("owner_id", ownerID).Msg("failed to create task")
		return "", err
	}

	metrics.TasksCreatedTotal.Inc()
	s.logger.Info().Str("task_id", created.ID).Str("owner_id", ownerID).Msg("task created")
	return created.ID, nil
}

// GetTask returns the task view for taskID under ownerID.
func (s *TaskService) GetTask(ctx context.Context, ownerID, taskID string) (*ports.TaskInfo, error) {
	task, err := s.repo.FindByID(ctx, ownerID, taskID)
	if errors.Is(err, domain.ErrTaskNotFound) {
		return nil, domain.ErrInvalidTaskID
	}
	if err != nil {
		return nil, err
	}
	return &ports.TaskInfo{
		Name:        task.Name,
		Description: task.Description,
		Status:      task.Status,
	}, nil
}

// UpdateTask applies a partial update; only non-nil patch fields change.
func (s *TaskService) UpdateTask(ctx context.Context, ownerID, taskID string, patch ports.TaskPatch) error {
	err := s.repo.Update(ctx, ownerID, taskID, patch)
	if errors.Is(err, domain.ErrTaskNotFound) {
		return domain.ErrInvalidTaskID
	}
	return err
}

// DeleteTask removes the task. Deletion is strict: a missing or cross-owner
// task ID yields invalid-task-id rather than silently succeeding.
func (s *TaskService) DeleteTask(ctx context.Context, ownerID, taskID string) error {
	err := s.repo.Delete(ctx, ownerID, taskID)
	if errors.Is(err, domain.ErrTaskNotFound) {
		return domain.ErrInvalidTaskID
	}
	if err != nil {
		return err
	}
	s.logger.Info().Str("task_id", taskID).Str("owner_id", ownerID).Msg("task deleted")
	return nil
}

// ListTasks returns the IDs of all tasks owned by ownerID.
func (s *TaskService) ListTasks(ctx context.Context, ownerID string) ([]string, error) {
	tasks, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.ID)
	}
	return ids, nil
}

// MarkAllTasksAs sets every task owned by ownerID to status. Each item is
// written independently: a failure mid-scan leaves earlier items updated
// (last-writer-wins per item, no cross-item atomicity).
func (s *TaskService) MarkAllTasksAs(ctx context.Context, ownerID string, status domain.TaskStatus) error {
	tasks, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return err
	}
	for _, t := range tasks {
		st := status
		if err := s.repo.Update(ctx, ownerID, t.ID, ports.TaskPatch{Status: &st}); err != nil {
			// A task deleted concurrently is not a failure of the bulk
			// operation; anything else is.
			if errors.Is(err, domain.ErrTaskNotFound) {
				continue
			}
			return err
		}
	}
	return nil
}
