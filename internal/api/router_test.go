package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/byteplug/task-tracker/internal/core/domain"
	"github.com/byteplug/task-tracker/internal/core/ports"
	"github.com/byteplug/task-tracker/internal/core/service"
	"github.com/byteplug/task-tracker/internal/core/token"
)

// ---------------------------------------------------------------------------
// In-memory repositories backing the end-to-end tests
// ---------------------------------------------------------------------------

type memUserRepo struct {
	users  map[string]*domain.User
	nextID int
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*domain.User)}
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, u := range r.users {
		if u.Username == user.Username {
			return nil, domain.ErrUsernameTaken
		}
	}
	r.nextID++
	clone := *user
	clone.ID = fmt.Sprintf("u%d", r.nextID)
	r.users[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *memUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *memUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *memUserRepo) TouchLastActive(_ context.Context, id string, ts time.Time) error {
	if u, ok := r.users[id]; ok && ts.After(u.LastActiveAt) {
		u.LastActiveAt = ts
	}
	return nil
}

func (r *memUserRepo) List(_ context.Context) ([]*domain.User, error) {
	users := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		clone := *u
		users = append(users, &clone)
	}
	return users, nil
}

func (r *memUserRepo) Delete(_ context.Context, id string) error {
	delete(r.users, id)
	return nil
}

type memTaskRepo struct {
	tasks  map[string]*domain.Task
	nextID int
}

func newMemTaskRepo() *memTaskRepo {
	return &memTaskRepo{tasks: make(map[string]*domain.Task)}
}

func (r *memTaskRepo) Create(_ context.Context, task *domain.Task) (*domain.Task, error) {
	r.nextID++
	clone := *task
	clone.ID = fmt.Sprintf("t%d", r.nextID)
	r.tasks[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *memTaskRepo) FindByID(_ context.Context, ownerID, taskID string) (*domain.Task, error) {
	t, ok := r.tasks[taskID]
	if !ok || t.OwnerID != ownerID {
		return nil, domain.ErrTaskNotFound
	}
	clone := *t
	return &clone, nil
}

func (r *memTaskRepo) Update(_ context.Context, ownerID, taskID string, patch ports.TaskPatch) error {
	t, ok := r.tasks[taskID]
	if !ok || t.OwnerID != ownerID {
		return domain.ErrTaskNotFound
	}
	if patch.Name != nil {
		t.Name = *patch.Name
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	return nil
}

func (r *memTaskRepo) Delete(_ context.Context, ownerID, taskID string) error {
	t, ok := r.tasks[taskID]
	if !ok || t.OwnerID != ownerID {
		return domain.ErrTaskNotFound
	}
	delete(r.tasks, taskID)
	return nil
}

func (r *memTaskRepo) ListByOwner(_ context.Context, ownerID string) ([]*domain.Task, error) {
	var tasks []*domain.Task
	for _, t := range r.tasks {
		if t.OwnerID == ownerID {
			clone := *t
			tasks = append(tasks, &clone)
		}
	}
	return tasks, nil
}

func (r *memTaskRepo) CountAll(_ context.Context) (int64, error) {
	return int64(len(r.tasks)), nil
}

// ---------------------------------------------------------------------------
// Test harness
// ---------------------------------------------------------------------------

func newTestRouter(t *testing.T) *echo.Echo {
	t.Helper()
	log := zerolog.Nop()
	tokens := token.NewService("test-secret-key")

	userRepo := newMemUserRepo()
	taskRepo := newMemTaskRepo()
	users := service.NewUserService(userRepo, tokens, log)
	tasks := service.NewTaskService(taskRepo, log)
	status := service.NewStatusService(userRepo, taskRepo, nil, time.Hour, 100, log)

	return NewRouter(Deps{
		Users:  users,
		Tasks:  tasks,
		Status: status,
		Tokens: tokens,
		Logger: log,
	})
}

func doPost(e *echo.Echo, path, tok, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func doGet(e *echo.Echo, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

func login(t *testing.T, e *echo.Echo, username, password string) string {
	t.Helper()
	rec := doPost(e, "/login", "", fmt.Sprintf(`{"username":%q,"password":%q}`, username, password))
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	return decodeJSON[string](t, rec)
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestRouter_TaskLifecycle(t *testing.T) {
	e := newTestRouter(t)
	tok := login(t, e, "alice", "secretpw1")

	rec := doPost(e, "/tasks/create", tok, `{"name":"Buy milk"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("create: %d %s", rec.Code, rec.Body.String())
	}
	taskID := decodeJSON[string](t, rec)
	if taskID == "" {
		t.Fatal("create returned an empty task id")
	}

	rec = doPost(e, "/tasks/"+taskID+"/get", tok, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get: %d %s", rec.Code, rec.Body.String())
	}
	task := decodeJSON[map[string]any](t, rec)
	if task["name"] != "Buy milk" || task["status"] != "not-done" {
		t.Fatalf("unexpected task document: %v", task)
	}
	if _, ok := task["description"]; ok {
		t.Fatalf("empty description must be omitted, got %v", task)
	}

	rec = doPost(e, "/tasks/"+taskID+"/update", tok, `{"status":"done"}`)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("update: %d %s", rec.Code, rec.Body.String())
	}

	rec = doPost(e, "/tasks/"+taskID+"/get", tok, "")
	task = decodeJSON[map[string]any](t, rec)
	if task["status"] != "done" || task["name"] != "Buy milk" {
		t.Fatalf("partial update must leave the name alone: %v", task)
	}

	rec = doPost(e, "/tasks/"+taskID+"/delete", tok, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: %d %s", rec.Code, rec.Body.String())
	}

	rec = doPost(e, "/tasks/"+taskID+"/get", tok, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("get after delete: %d %s", rec.Code, rec.Body.String())
	}
	if errBody := decodeJSON[map[string]string](t, rec); errBody["error"] != "invalid-task-id" {
		t.Fatalf("expected invalid-task-id, got %v", errBody)
	}
}

func TestRouter_LoginRejectsWrongPassword(t *testing.T) {
	e := newTestRouter(t)
	login(t, e, "alice", "secretpw1")

	rec := doPost(e, "/login", "", `{"username":"alice","password":"wrongpw99"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d %s", rec.Code, rec.Body.String())
	}
	if errBody := decodeJSON[map[string]string](t, rec); errBody["error"] != "invalid-credential" {
		t.Fatalf("expected invalid-credential, got %v", errBody)
	}
}

func TestRouter_LoginValidatesDocument(t *testing.T) {
	e := newTestRouter(t)

	// Password without a digit fails the schema before any handler runs.
	rec := doPost(e, "/login", "", `{"username":"alice","password":"onlyletters"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d %s", rec.Code, rec.Body.String())
	}

	rec = doPost(e, "/login", "", `{"username":"a","password":"secretpw1"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("one-character username must be rejected, got %d", rec.Code)
	}
}

func TestRouter_UserEndpoints(t *testing.T) {
	e := newTestRouter(t)
	login(t, e, "alice", "secretpw1")
	login(t, e, "bob12", "secretpw2")

	rec := doPost(e, "/users/list", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("users.list: %d %s", rec.Code, rec.Body.String())
	}
	ids := decodeJSON[[]string](t, rec)
	if len(ids) != 2 {
		t.Fatalf("expected 2 user ids, got %v", ids)
	}

	rec = doPost(e, "/users/"+ids[0]+"/get", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("users.get: %d %s", rec.Code, rec.Body.String())
	}
	user := decodeJSON[map[string]any](t, rec)
	if _, ok := user["username"]; !ok {
		t.Fatalf("missing username: %v", user)
	}
	if _, ok := user["last-updated"]; !ok {
		t.Fatalf("missing last-updated: %v", user)
	}
	if _, ok := user["password"]; ok {
		t.Fatal("credentials must never appear in a user document")
	}

	rec = doPost(e, "/users/unknown/get", "", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for an unknown user, got %d", rec.Code)
	}
	if errBody := decodeJSON[map[string]string](t, rec); errBody["error"] != "invalid-account-id" {
		t.Fatalf("expected invalid-account-id, got %v", errBody)
	}
}

func TestRouter_TasksAreOwnerScoped(t *testing.T) {
	e := newTestRouter(t)
	aliceTok := login(t, e, "alice", "secretpw1")
	bobTok := login(t, e, "bob12", "secretpw2")

	rec := doPost(e, "/tasks/create", aliceTok, `{"name":"Alice's task"}`)
	taskID := decodeJSON[string](t, rec)

	rec = doPost(e, "/tasks/"+taskID+"/get", bobTok, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("foreign task must be invisible, got %d", rec.Code)
	}

	rec = doPost(e, "/tasks/list", bobTok, "")
	if ids := decodeJSON[[]string](t, rec); len(ids) != 0 {
		t.Fatalf("bob must not see alice's tasks: %v", ids)
	}
}

func TestRouter_MarkAllAs(t *testing.T) {
	e := newTestRouter(t)
	tok := login(t, e, "alice", "secretpw1")

	var taskIDs []string
	for _, name := range []string{"First", "Second", "Third"} {
		rec := doPost(e, "/tasks/create", tok, fmt.Sprintf(`{"name":%q}`, name))
		taskIDs = append(taskIDs, decodeJSON[string](t, rec))
	}

	rec := doPost(e, "/tasks/mark-all-as", tok, `"done"`)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("mark-all-as: %d %s", rec.Code, rec.Body.String())
	}

	for _, id := range taskIDs {
		rec := doPost(e, "/tasks/"+id+"/get", tok, "")
		if task := decodeJSON[map[string]any](t, rec); task["status"] != "done" {
			t.Fatalf("task %s not marked done: %v", id, task)
		}
	}

	rec = doPost(e, "/tasks/mark-all-as", tok, `"archived"`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown status must be rejected by the schema, got %d", rec.Code)
	}
}

func TestRouter_AuthRequired(t *testing.T) {
	e := newTestRouter(t)

	rec := doPost(e, "/tasks/create", "", `{"name":"x"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a token, got %d", rec.Code)
	}

	rec = doPost(e, "/tasks/create", "not-a-jwt", `{"name":"x"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with a garbage token, got %d", rec.Code)
	}
}

func TestRouter_Status(t *testing.T) {
	e := newTestRouter(t)
	tok := login(t, e, "alice", "secretpw1")
	doPost(e, "/tasks/create", tok, `{"name":"Only task"}`)

	rec := doPost(e, "/status", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: %d %s", rec.Code, rec.Body.String())
	}
	status := decodeJSON[map[string]any](t, rec)
	if status["user-count"] != float64(1) {
		t.Fatalf("unexpected user-count: %v", status)
	}
	if status["task-count"] != float64(1) {
		t.Fatalf("unexpected task-count: %v", status)
	}
	if status["average-task-per-user"] != "1" {
		t.Fatalf("average must be a string: %v", status["average-task-per-user"])
	}
	if status["session-duration"] != "60 minutes" {
		t.Fatalf("unexpected session-duration: %v", status["session-duration"])
	}
}

func TestRouter_Specs(t *testing.T) {
	e := newTestRouter(t)

	rec := doGet(e, "/specs")
	if rec.Code != http.StatusOK {
		t.Fatalf("specs: %d %s", rec.Code, rec.Body.String())
	}
	specs := decodeJSON[[]map[string]any](t, rec)
	if len(specs) != 10 {
		t.Fatalf("expected 10 endpoint specs, got %d", len(specs))
	}
	for _, s := range specs {
		if s["name"] == "" || s["path"] == "" {
			t.Fatalf("incomplete spec entry: %v", s)
		}
	}
}

func TestRouter_Health(t *testing.T) {
	e := newTestRouter(t)

	if rec := doGet(e, "/health"); rec.Code != http.StatusOK {
		t.Fatalf("liveness: %d", rec.Code)
	}
	if rec := doGet(e, "/health/ready"); rec.Code != http.StatusOK {
		t.Fatalf("readiness with no backends configured: %d", rec.Code)
	}
}
