package ports

import (
	"context"
	"time"

	"github.com/byteplug/task-tracker/internal/core/domain"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	// Create inserts a new user and returns it with its store-assigned ID.
	// Returns domain.ErrUsernameTaken when the unique username index rejects
	// the insert.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// FindByUsername returns the user with the given username, or
	// domain.ErrUserNotFound.
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	// FindByID returns the user with the given ID, or domain.ErrUserNotFound.
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// TouchLastActive sets last_active_at to ts if ts is later than the
	// stored value, keeping the field monotonically non-decreasing.
	TouchLastActive(ctx context.Context, id string, ts time.Time) error
	// List returns all users.
	List(ctx context.Context) ([]*domain.User, error)
	// Delete removes the user with the given ID. Deleting an already-absent
	// user is not an error.
	Delete(ctx context.Context, id string) error
}
