package domain

import "time"

// User is the authenticated principal. A user owns zero or more tasks and is
// created on the first successful login for a never-seen username.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	// LastActiveAt is set at creation and bumped on every successful login.
	// It is monotonically non-decreasing and drives the retention sweep.
	LastActiveAt time.Time `json:"last_active_at"`
}
