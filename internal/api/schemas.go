package api

import (
	"regexp"

	"github.com/byteplug/task-tracker/internal/core/domain"
	"github.com/byteplug/task-tracker/internal/schema"
)

// Wire-contract constants. Lengths are inclusive rune counts.
var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]*$`)
	usernameLength  = schema.Length{Min: 2, Max: 16}

	// Alphanumeric with at least one letter and at least one digit. RE2 has
	// no lookahead, so the rule is spelled out: a letter somewhere before a
	// digit, or a digit somewhere before a letter.
	passwordPattern = regexp.MustCompile(`^[A-Za-z0-9]*(?:[A-Za-z][A-Za-z0-9]*[0-9]|[0-9][A-Za-z0-9]*[A-Za-z])[A-Za-z0-9]*$`)
	passwordLength  = schema.Length{Min: 8, Max: 16}

	taskNameLength        = schema.Length{Min: 2, Max: 40}
	taskDescriptionLength = schema.Length{Min: 0, Max: 120}
)

func taskStatusNode() schema.Node {
	return schema.Enum{Values: domain.TaskStatusValues()}
}

func loginRequestSchema() schema.Node {
	return schema.Map{Fields: []schema.Field{
		{Name: "username", Node: schema.String{Pattern: usernamePattern, Length: &usernameLength}},
		{Name: "password", Node: schema.String{Pattern: passwordPattern, Length: &passwordLength}},
	}}
}

func userResponseSchema() schema.Node {
	return schema.Map{Fields: []schema.Field{
		{Name: "username", Node: schema.String{Pattern: usernamePattern, Length: &usernameLength}},
		{Name: "last-updated", Node: schema.Number{}},
	}}
}

func createTaskRequestSchema() schema.Node {
	return schema.Map{Fields: []schema.Field{
		{Name: "name", Node: schema.String{Length: &taskNameLength}},
		{Name: "description", Node: schema.String{Length: &taskDescriptionLength}, Optional: true},
		{Name: "status", Node: taskStatusNode(), Optional: true},
	}}
}

func updateTaskRequestSchema() schema.Node {
	return schema.Map{Fields: []schema.Field{
		{Name: "name", Node: schema.String{Length: &taskNameLength}, Optional: true},
		{Name: "description", Node: schema.String{Length: &taskDescriptionLength}, Optional: true},
		{Name: "status", Node: taskStatusNode(), Optional: true},
	}}
}

func taskResponseSchema() schema.Node {
	return schema.Map{Fields: []schema.Field{
		{Name: "name", Node: schema.String{Length: &taskNameLength}},
		{Name: "description", Node: schema.String{Length: &taskDescriptionLength}, Optional: true},
		{Name: "status", Node: taskStatusNode()},
	}}
}

// idSchema covers the bare-string responses: the login token and the id of
// a newly created task.
func idSchema() schema.Node {
	return schema.String{}
}

func idListResponseSchema() schema.Node {
	return schema.Array{Elem: schema.String{}}
}

func statusResponseSchema() schema.Node {
	return schema.Map{Fields: []schema.Field{
		{Name: "user-count", Node: schema.Number{}},
		{Name: "task-count", Node: schema.Number{}},
		{Name: "average-task-per-user", Node: schema.String{}},
		{Name: "session-duration", Node: schema.String{}},
		{Name: "max-task-per-user", Node: schema.Number{}},
	}}
}
