package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/byteplug/task-tracker/internal/core/domain"
)

// ---------------------------------------------------------------------------
// In-memory stub repository
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	users     map[string]*domain.User // by ID
	nextID    int
	createErr error // if set, Create returns this error once
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if r.createErr != nil {
		err := r.createErr
		r.createErr = nil
		return nil, err
	}
	for _, u := range r.users {
		if u.Username == user.Username {
			return nil, domain.ErrUsernameTaken
		}
	}
	r.nextID++
	clone := *user
	clone.ID = fmt.Sprintf("user-%d", r.nextID)
	r.users[clone.ID] = &clone
	copy := clone
	return &copy, nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *stubUserRepo) TouchLastActive(_ context.Context, id string, ts time.Time) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	if ts.After(u.LastActiveAt) {
		u.LastActiveAt = ts
	}
	return nil
}

func (r *stubUserRepo) List(_ context.Context) ([]*domain.User, error) {
	users := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		clone := *u
		users = append(users, &clone)
	}
	return users, nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	delete(r.users, id)
	return nil
}

type stubIssuer struct{}

func (stubIssuer) Issue(userKey string) (string, error) {
	return "token-for-" + userKey, nil
}

func newUserService(repo *stubUserRepo) *UserService {
	return NewUserService(repo, stubIssuer{}, zerolog.Nop())
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestUserService_Login_CreatesOnFirstLogin(t *testing.T) {
	repo := newStubUserRepo()
	svc := newUserService(repo)

	token, err := svc.Login(context.Background(), "alice", "secretpw1")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if token == "" {
		t.Fatalf("expected a token")
	}
	if len(repo.users) != 1 {
		t.Fatalf("expected exactly one user, got %d", len(repo.users))
	}

	created, err := repo.FindByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("user not found after login: %v", err)
	}
	if created.PasswordHash == "secretpw1" {
		t.Fatalf("password stored in plaintext")
	}
	if bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("secretpw1")) != nil {
		t.Fatalf("stored hash does not match password")
	}
	if created.LastActiveAt.IsZero() {
		t.Fatalf("expected last_active_at to be set")
	}
}

func TestUserService_Login_SecondLoginSameUser(t *testing.T) {
	repo := newStubUserRepo()
	svc := newUserService(repo)

	if _, err := svc.Login(context.Background(), "alice", "secretpw1"); err != nil {
		t.Fatalf("first login failed: %v", err)
	}
	token, err := svc.Login(context.Background(), "alice", "secretpw1")
	if err != nil {
		t.Fatalf("second login failed: %v", err)
	}
	if token == "" {
		t.Fatalf("expected a token")
	}
	if len(repo.users) != 1 {
		t.Fatalf("second login created a duplicate user")
	}
}

func TestUserService_Login_LastActiveMonotonic(t *testing.T) {
	repo := newStubUserRepo()
	svc := newUserService(repo)

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }
	if _, err := svc.Login(context.Background(), "alice", "secretpw1"); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	svc.now = func() time.Time { return base.Add(time.Hour) }
	if _, err := svc.Login(context.Background(), "alice", "secretpw1"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	u, _ := repo.FindByUsername(context.Background(), "alice")
	if !u.LastActiveAt.Equal(base.Add(time.Hour)) {
		t.Fatalf("expected last_active_at bumped to %v, got %v", base.Add(time.Hour), u.LastActiveAt)
	}

	// A login observed with an earlier clock must not move the timestamp
	// backwards.
	svc.now = func() time.Time { return base.Add(30 * time.Minute) }
	if _, err := svc.Login(context.Background(), "alice", "secretpw1"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	u, _ = repo.FindByUsername(context.Background(), "alice")
	if !u.LastActiveAt.Equal(base.Add(time.Hour)) {
		t.Fatalf("last_active_at moved backwards to %v", u.LastActiveAt)
	}
}

func TestUserService_Login_WrongPassword(t *testing.T) {
	repo := newStubUserRepo()
	svc := newUserService(repo)

	if _, err := svc.Login(context.Background(), "alice", "secretpw1"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	before, _ := repo.FindByUsername(context.Background(), "alice")

	if _, err := svc.Login(context.Background(), "alice", "wrongpw99"); !errors.Is(err, domain.ErrInvalidCredential) {
		t.Fatalf("expected ErrInvalidCredential, got %v", err)
	}

	after, _ := repo.FindByUsername(context.Background(), "alice")
	if !after.LastActiveAt.Equal(before.LastActiveAt) {
		t.Fatalf("rejected login mutated last_active_at")
	}
}

func TestUserService_Login_CreateRaceConverges(t *testing.T) {
	repo := newStubUserRepo()
	svc := newUserService(repo)

	// The winner of the race already exists in the store; this caller's
	// insert hits the unique index and must converge on the winner.
	if _, err := svc.Login(context.Background(), "alice", "secretpw1"); err != nil {
		t.Fatalf("seed login failed: %v", err)
	}

	repo.createErr = domain.ErrUsernameTaken
	user, err := svc.createUser(context.Background(), "alice", "secretpw1")
	if err != nil {
		t.Fatalf("expected race to converge on winner, got %v", err)
	}
	if user.Username != "alice" {
		t.Fatalf("unexpected user: %+v", user)
	}

	repo.createErr = domain.ErrUsernameTaken
	if _, err := svc.createUser(context.Background(), "alice", "wrongpw99"); !errors.Is(err, domain.ErrInvalidCredential) {
		t.Fatalf("expected ErrInvalidCredential on race with wrong password, got %v", err)
	}
}

func TestUserService_GetUser(t *testing.T) {
	repo := newStubUserRepo()
	svc := newUserService(repo)

	if _, err := svc.Login(context.Background(), "alice", "secretpw1"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	u, _ := repo.FindByUsername(context.Background(), "alice")

	info, err := svc.GetUser(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("get user failed: %v", err)
	}
	if info.Username != "alice" {
		t.Fatalf("unexpected username: %s", info.Username)
	}

	if _, err := svc.GetUser(context.Background(), "missing"); !errors.Is(err, domain.ErrInvalidAccountID) {
		t.Fatalf("expected ErrInvalidAccountID, got %v", err)
	}
}

func TestUserService_ListUsers(t *testing.T) {
	repo := newStubUserRepo()
	svc := newUserService(repo)

	_, _ = svc.Login(context.Background(), "alice", "secretpw1")
	_, _ = svc.Login(context.Background(), "bob12", "secretpw2")

	ids, err := svc.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("list users failed: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 users, got %d", len(ids))
	}
}

func TestUserService_Resolve_StaleIdentity(t *testing.T) {
	repo := newStubUserRepo()
	svc := newUserService(repo)

	if _, err := svc.Login(context.Background(), "alice", "secretpw1"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	u, _ := repo.FindByUsername(context.Background(), "alice")

	if err := svc.Resolve(context.Background(), u.ID); err != nil {
		t.Fatalf("expected live identity, got %v", err)
	}

	// The sweep removes the account; the token still verifies but the
	// identity is gone.
	_ = repo.Delete(context.Background(), u.ID)
	if err := svc.Resolve(context.Background(), u.ID); !errors.Is(err, domain.ErrStaleIdentity) {
		t.Fatalf("expected ErrStaleIdentity, got %v", err)
	}
}
