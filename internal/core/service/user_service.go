package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/byteplug/task-tracker/internal/api/metrics"
	"github.com/byteplug/task-tracker/internal/core/domain"
	"github.com/byteplug/task-tracker/internal/core/ports"
)

// TokenIssuer abstracts the signing capability the login flow needs.
type TokenIssuer interface {
	Issue(userKey string) (string, error)
}

// UserService implements login-or-create authentication and the read-only
// user views.
type UserService struct {
	repo   ports.UserRepository
	tokens TokenIssuer
	logger zerolog.Logger
	now    func() time.Time
}

func NewUserService(repo ports.UserRepository, tokens TokenIssuer, logger zerolog.Logger) *UserService {
	return &UserService{repo: repo, tokens: tokens, logger: logger, now: time.Now}
}

// Login authenticates username/password and returns a bearer token. A
// never-seen username creates the user; an existing username must present a
// matching credential. The stored credential is a bcrypt hash; the plain
// password is never persisted.
func (s *UserService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		user, err = s.createUser(ctx, username, password)
		if err != nil {
			return "", err
		}
		metrics.LoginsTotal.WithLabelValues("created").Inc()
		s.logger.Info().Str("user_id", user.ID).Str("username", username).Msg("user created on first login")

	case err != nil:
		return "", err

	default:
		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
			metrics.LoginsTotal.WithLabelValues("rejected").Inc()
			return "", domain.ErrInvalidCredential
		}
		// TouchLastActive is a monotonic max: a login can never move the
		// timestamp backwards.
		if err := s.repo.TouchLastActive(ctx, user.ID, s.now().UTC()); err != nil {
			return "", err
		}
		metrics.LoginsTotal.WithLabelValues("ok").Inc()
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID).Msg("failed to issue token")
		return "", err
	}
	return token, nil
}

// createUser handles the create-if-absent arm of login. Two concurrent first
// logins race on the unique username index; the loser re-reads the winner's
// record and falls back to the credential check.
func (s *UserService) createUser(ctx context.Context, username, password string) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, &domain.User{
		Username:     username,
		PasswordHash: string(hash),
		LastActiveAt: s.now().UTC(),
	})
	if errors.Is(err, domain.ErrUsernameTaken) {
		winner, err := s.repo.FindByUsername(ctx, username)
		if err != nil {
			return nil, err
		}
		if bcrypt.CompareHashAndPassword([]byte(winner.PasswordHash), []byte(password)) != nil {
			metrics.LoginsTotal.WithLabelValues("rejected").Inc()
			return nil, domain.ErrInvalidCredential
		}
		return winner, nil
	}
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetUser returns the public view of a user. The password hash is never part
// of the view.
func (s *UserService) GetUser(ctx context.Context, id string) (*ports.UserInfo, error) {
	user, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrInvalidAccountID
	}
	if err != nil {
		return nil, err
	}
	return &ports.UserInfo{Username: user.Username, LastActive: user.LastActiveAt}, nil
}

// ListUsers returns the IDs of all users.
func (s *UserService) ListUsers(ctx context.Context) ([]string, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return ids, nil
}

// Resolve confirms the user behind a verified token still exists. The sweep
// may have deleted it between token issuance and this request.
func (s *UserService) Resolve(ctx context.Context, id string) error {
	_, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, domain.ErrUserNotFound) {
		return domain.ErrStaleIdentity
	}
	return err
}
