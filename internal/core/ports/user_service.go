package ports

import (
	"context"
	"time"
)

// UserInfo is the public view of a user. The password hash never leaves the
// service layer.
type UserInfo struct {
	Username   string
	LastActive time.Time
}

// UserService defines the account use cases.
type UserService interface {
	// Login authenticates a user and returns a bearer token. The user is
	// created on first login for a never-seen username; an existing user
	// with a mismatching credential yields domain.ErrInvalidCredential.
	Login(ctx context.Context, username, password string) (string, error)
	// GetUser returns the public view of a user, or
	// domain.ErrInvalidAccountID.
	GetUser(ctx context.Context, id string) (*UserInfo, error)
	// ListUsers returns the IDs of all users.
	ListUsers(ctx context.Context) ([]string, error)
	// Resolve checks that the user a token points at still exists. It
	// returns domain.ErrStaleIdentity when the retention sweep has already
	// removed the account.
	Resolve(ctx context.Context, id string) error
}
