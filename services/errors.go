package services

import (
	"fmt"
	"strings"

	"taskboard/model"
)

// ValidationError reports caller data that breaks a task invariant. The message
// is safe to show to the client.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalidStatus(status string) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf("Invalid status value: %s. Must be one of: %s", status, model.StatusList())}
}

// UpstreamError reports a failed record store call. Error returns a generic
// message; the cause stays in Err.
type UpstreamError struct {
	Op     string // "list", "get", "create", "update"
	TaskID string
	Err    error
}

func (e *UpstreamError) Error() string {
	switch e.Op {
	case "list":
		return "Failed to fetch tasks"
	case "get":
		return "Failed to fetch task"
	default:
		return fmt.Sprintf("Failed to %s task", e.Op)
	}
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// NotFoundError reports an identifier the store does not know.
type NotFoundError struct {
	TaskID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Task not found: %s", e.TaskID)
}

// SchemaError reports a database whose properties do not match the mapping table.
type SchemaError struct {
	Problems []string
}

func (e *SchemaError) Error() string {
	return "database schema mismatch: " + strings.Join(e.Problems, "; ")
}
