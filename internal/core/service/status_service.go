package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/byteplug/task-tracker/internal/core/ports"
)

// StatusService aggregates store-wide counters for the status endpoint. The
// scan is O(users + tasks); a short-lived cache in front of it keeps
// repeated probes cheap.
type StatusService struct {
	users       ports.UserRepository
	tasks       ports.TaskRepository
	cache       ports.StatusCache // nil disables caching
	sessionTTL  time.Duration
	maxPerUser  int
	logger      zerolog.Logger
}

func NewStatusService(users ports.UserRepository, tasks ports.TaskRepository, cache ports.StatusCache, sessionTTL time.Duration, maxPerUser int, logger zerolog.Logger) *StatusService {
	return &StatusService{
		users:      users,
		tasks:      tasks,
		cache:      cache,
		sessionTTL: sessionTTL,
		maxPerUser: maxPerUser,
		logger:     logger,
	}
}

// Snapshot returns the current service counters, from cache when fresh.
func (s *StatusService) Snapshot(ctx context.Context) (*ports.ServiceStatus, error) {
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx)
		if err != nil {
			// A broken cache degrades to a full scan, it never fails the
			// request.
			s.logger.Warn().Err(err).Msg("status cache read failed")
		} else if ok {
			return cached, nil
		}
	}

	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	taskCount, err := s.tasks.CountAll(ctx)
	if err != nil {
		return nil, err
	}

	status := &ports.ServiceStatus{
		UserCount:           int64(len(users)),
		TaskCount:           taskCount,
		AverageTasksPerUser: averageTasks(taskCount, int64(len(users))),
		SessionDuration:     fmt.Sprintf("%d minutes", int(s.sessionTTL.Minutes())),
		MaxTasksPerUser:     s.maxPerUser,
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, status); err != nil {
			s.logger.Warn().Err(err).Msg("status cache write failed")
		}
	}
	return status, nil
}

// averageTasks formats tasks-per-user as a decimal string. The wire contract
// carries this value as a string.
func averageTasks(tasks, users int64) string {
	if users == 0 {
		return "0"
	}
	return strconv.FormatFloat(float64(tasks)/float64(users), 'f', -1, 64)
}
