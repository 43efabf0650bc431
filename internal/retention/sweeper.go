// Package retention enforces the data-retention TTL: a background sweep
// scans all users and deletes any whose last activity is older than the
// configured window. It runs with no coordination against request handling;
// the stale-identity guard in the dispatcher covers the window between a
// token verifying and its user disappearing.
package retention

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/byteplug/task-tracker/internal/api/metrics"
	"github.com/byteplug/task-tracker/internal/core/ports"
)

// Sweeper deletes users idle longer than TTL. Deletion is irreversible and
// does not cascade to the user's tasks; orphaned tasks stay in the store but
// are unreachable through the API once their owner key no longer resolves.
type Sweeper struct {
	users  ports.UserRepository
	ttl    time.Duration
	logger zerolog.Logger
	now    func() time.Time
}

func NewSweeper(users ports.UserRepository, ttl time.Duration, logger zerolog.Logger) *Sweeper {
	return &Sweeper{users: users, ttl: ttl, logger: logger, now: time.Now}
}

// Run executes a sweep every interval until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.SweepOnce(ctx); err != nil {
				s.logger.Error().Err(err).Msg("retention sweep failed")
			}
		}
	}
}

// SweepOnce scans all users once and deletes the stale ones. It returns the
// number of users deleted. A second run over the same data is a no-op.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	started := s.now()
	defer func() {
		metrics.SweepDuration.Observe(s.now().Sub(started).Seconds())
	}()

	users, err := s.users.List(ctx)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, u := range users {
		if s.now().Sub(u.LastActiveAt) <= s.ttl {
			continue
		}
		if err := s.users.Delete(ctx, u.ID); err != nil {
			s.logger.Error().Err(err).Str("user_id", u.ID).Msg("failed to delete stale user")
			continue
		}
		deleted++
		metrics.UsersSweptTotal.Inc()
		s.logger.Info().
			Str("user_id", u.ID).
			Time("last_active_at", u.LastActiveAt).
			Msg("stale user deleted")
	}

	if deleted > 0 {
		s.logger.Info().Int("deleted", deleted).Int("scanned", len(users)).Msg("retention sweep completed")
	}
	return deleted, nil
}
