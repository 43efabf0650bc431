package api

import (
	"context"

	"github.com/byteplug/task-tracker/internal/api/endpoint"
	"github.com/byteplug/task-tracker/internal/core/domain"
	"github.com/byteplug/task-tracker/internal/core/ports"
)

// Endpoints returns the full declarative registration table. This is the
// single place where operation names, schemas, declared errors and handlers
// are bound together.
func Endpoints(users ports.UserService, tasks ports.TaskService, status ports.StatusService) []endpoint.Endpoint {
	return []endpoint.Endpoint{
		{
			Name:     "login",
			Request:  loginRequestSchema(),
			Response: idSchema(),
			Errors:   []string{domain.ErrInvalidCredential.Code},
			Handle: func(ctx context.Context, call endpoint.Call) (any, error) {
				doc := call.Document.(map[string]any)
				token, err := users.Login(ctx, doc["username"].(string), doc["password"].(string))
				if err != nil {
					return nil, err
				}
				return token, nil
			},
		},
		{
			Name:     "status",
			Response: statusResponseSchema(),
			Handle: func(ctx context.Context, _ endpoint.Call) (any, error) {
				st, err := status.Snapshot(ctx)
				if err != nil {
					return nil, err
				}
				return map[string]any{
					"user-count":            st.UserCount,
					"task-count":            st.TaskCount,
					"average-task-per-user": st.AverageTasksPerUser,
					"session-duration":      st.SessionDuration,
					"max-task-per-user":     st.MaxTasksPerUser,
				}, nil
			},
		},
		{
			Name:           "users.get",
			Collection:     "users",
			Response:       userResponseSchema(),
			Errors:         []string{domain.ErrInvalidAccountID.Code},
			OperatesOnItem: true,
			Handle: func(ctx context.Context, call endpoint.Call) (any, error) {
				info, err := users.GetUser(ctx, call.ItemID)
				if err != nil {
					return nil, err
				}
				return map[string]any{
					"username":     info.Username,
					"last-updated": info.LastActive.Unix(),
				}, nil
			},
		},
		{
			Name:       "users.list",
			Collection: "users",
			Response:   idListResponseSchema(),
			Handle: func(ctx context.Context, _ endpoint.Call) (any, error) {
				ids, err := users.ListUsers(ctx)
				if err != nil {
					return nil, err
				}
				return asDocument(ids), nil
			},
		},
		{
			Name:         "tasks.create",
			Collection:   "tasks",
			Request:      createTaskRequestSchema(),
			Response:     idSchema(),
			RequiresAuth: true,
			Handle: func(ctx context.Context, call endpoint.Call) (any, error) {
				doc := call.Document.(map[string]any)
				id, err := tasks.CreateTask(ctx, call.UserKey, ports.CreateTaskInput{
					Name:        doc["name"].(string),
					Description: optionalString(doc, "description"),
					Status:      optionalStatus(doc),
				})
				if err != nil {
					return nil, err
				}
				return id, nil
			},
		},
		{
			Name:           "tasks.get",
			Collection:     "tasks",
			Response:       taskResponseSchema(),
			Errors:         []string{domain.ErrInvalidTaskID.Code},
			RequiresAuth:   true,
			OperatesOnItem: true,
			Handle: func(ctx context.Context, call endpoint.Call) (any, error) {
				info, err := tasks.GetTask(ctx, call.UserKey, call.ItemID)
				if err != nil {
					return nil, err
				}
				doc := map[string]any{
					"name":   info.Name,
					"status": string(info.Status),
				}
				if info.Description != "" {
					doc["description"] = info.Description
				}
				return doc, nil
			},
		},
		{
			Name:           "tasks.update",
			Collection:     "tasks",
			Request:        updateTaskRequestSchema(),
			Errors:         []string{domain.ErrInvalidTaskID.Code},
			RequiresAuth:   true,
			OperatesOnItem: true,
			Handle: func(ctx context.Context, call endpoint.Call) (any, error) {
				doc := call.Document.(map[string]any)
				return nil, tasks.UpdateTask(ctx, call.UserKey, call.ItemID, ports.TaskPatch{
					Name:        optionalString(doc, "name"),
					Description: optionalString(doc, "description"),
					Status:      optionalStatus(doc),
				})
			},
		},
		{
			Name:           "tasks.delete",
			Collection:     "tasks",
			Errors:         []string{domain.ErrInvalidTaskID.Code},
			RequiresAuth:   true,
			OperatesOnItem: true,
			Handle: func(ctx context.Context, call endpoint.Call) (any, error) {
				return nil, tasks.DeleteTask(ctx, call.UserKey, call.ItemID)
			},
		},
		{
			Name:         "tasks.list",
			Collection:   "tasks",
			Response:     idListResponseSchema(),
			RequiresAuth: true,
			Handle: func(ctx context.Context, call endpoint.Call) (any, error) {
				ids, err := tasks.ListTasks(ctx, call.UserKey)
				if err != nil {
					return nil, err
				}
				return asDocument(ids), nil
			},
		},
		{
			Name:         "tasks.mark-all-as",
			Collection:   "tasks",
			Request:      taskStatusNode(),
			RequiresAuth: true,
			Handle: func(ctx context.Context, call endpoint.Call) (any, error) {
				status := domain.TaskStatus(call.Document.(string))
				return nil, tasks.MarkAllTasksAs(ctx, call.UserKey, status)
			},
		},
	}
}

// asDocument converts an ID slice to the generic array form response
// schemas validate against.
func asDocument(ids []string) []any {
	doc := make([]any, len(ids))
	for i, id := range ids {
		doc[i] = id
	}
	return doc
}

// optionalString returns the named field as *string, nil when absent. The
// schema already guaranteed the type.
func optionalString(doc map[string]any, name string) *string {
	v, ok := doc[name]
	if !ok {
		return nil
	}
	s := v.(string)
	return &s
}

// optionalStatus returns the status field as *TaskStatus, nil when absent.
func optionalStatus(doc map[string]any) *domain.TaskStatus {
	v, ok := doc["status"]
	if !ok {
		return nil
	}
	s := domain.TaskStatus(v.(string))
	return &s
}
