package domain

import "errors"

// Error is a named, expected failure outcome. The code is the identifier
// declared per endpoint and returned verbatim to the client, so callers can
// branch on it.
type Error struct {
	Code string
}

func (e *Error) Error() string {
	return e.Code
}

// Domain errors raised by handlers. Each endpoint declares which of these it
// may raise; any undeclared error surfacing from a handler is a server fault.
var (
	ErrInvalidCredential = &Error{Code: "invalid-credential"}
	ErrInvalidAccountID  = &Error{Code: "invalid-account-id"}
	ErrInvalidTaskID     = &Error{Code: "invalid-task-id"}
	// ErrStaleIdentity is raised when a token verifies but the user it
	// references has already been removed by the retention sweep. It is
	// implicitly declared on every authenticated endpoint.
	ErrStaleIdentity = &Error{Code: "stale-identity"}
)

// Repository-level sentinels. Services translate these into the coded
// errors above at the operation boundary.
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrTaskNotFound  = errors.New("task not found")
	ErrUsernameTaken = errors.New("username already taken")
)
