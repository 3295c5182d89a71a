package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"taskboard/model"
)

// RecordStore is the generic interface of the external record store.
// Implementations return model.ErrRecordNotFound for unknown identifiers.
type RecordStore interface {
	Query(ctx context.Context, databaseID string, sorts []model.Sort) ([]model.Record, error)
	Retrieve(ctx context.Context, id string) (model.Record, error)
	Create(ctx context.Context, databaseID string, properties model.Properties) (model.Record, error)
	Update(ctx context.Context, id string, properties model.Properties) (model.Record, error)
}

// SchemaReader is implemented by stores that can describe a database's
// properties as a name to type map.
type SchemaReader interface {
	Schema(ctx context.Context, databaseID string) (map[string]string, error)
}

// CredentialChecker is implemented by stores that can verify their credential.
type CredentialChecker interface {
	WhoAmI(ctx context.Context) (string, error)
}

var errReferenceOnly = errors.New("store returned a reference-only record")

// TaskService is the only component that talks to the record store.
type TaskService struct {
	store      RecordStore
	databaseID string
	timeout    time.Duration
	logger     *slog.Logger
}

// NewTaskService creates a service bound to one database. A zero timeout
// leaves store calls bounded only by the caller's context.
func NewTaskService(store RecordStore, databaseID string, timeout time.Duration, logger *slog.Logger) *TaskService {
	return &TaskService{
		store:      store,
		databaseID: databaseID,
		timeout:    timeout,
		logger:     logger,
	}
}

func (s *TaskService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// storeError classifies a failed store call and logs its cause.
func (s *TaskService) storeError(op, id string, err error) error {
	if id != "" && errors.Is(err, model.ErrRecordNotFound) {
		s.logger.Warn("task not found", "op", op, "id", id)
		return &NotFoundError{TaskID: id}
	}
	s.logger.Error("record store call failed", "op", op, "id", id, "error", err)
	return &UpstreamError{Op: op, TaskID: id, Err: err}
}

// List returns every task, most recently edited first. Reference-only
// results are dropped.
func (s *TaskService) List(ctx context.Context) ([]model.Task, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	records, err := s.store.Query(ctx, s.databaseID, []model.Sort{
		{Timestamp: model.TimestampLastEdited, Direction: model.SortDescending},
	})
	if err != nil {
		return nil, s.storeError("list", "", err)
	}

	tasks := make([]model.Task, 0, len(records))
	for _, record := range records {
		if !record.HasProperties() {
			continue
		}
		tasks = append(tasks, RecordToTask(record))
	}
	s.logger.Debug("listed tasks", "count", len(tasks), "records", len(records))
	return tasks, nil
}

func (s *TaskService) Get(ctx context.Context, id string) (model.Task, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	record, err := s.store.Retrieve(ctx, id)
	if err != nil {
		return model.Task{}, s.storeError("get", id, err)
	}
	if !record.HasProperties() {
		return model.Task{}, s.storeError("get", id, errReferenceOnly)
	}
	return RecordToTask(record), nil
}

// Create validates the input and writes a new record. Status defaults to
// model.DefaultStatus.
func (s *TaskService) Create(ctx context.Context, input model.CreateInput) (model.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return model.Task{}, &ValidationError{Message: "Title is required and must be a non-empty string"}
	}
	status := input.Status
	if status == "" {
		status = model.DefaultStatus
	}
	if !model.IsValidStatus(status) {
		return model.Task{}, invalidStatus(status)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	properties := TaskUpdateToRecordPatch(model.TaskUpdate{Title: &title, Status: &status})
	record, err := s.store.Create(ctx, s.databaseID, properties)
	if err != nil {
		return model.Task{}, s.storeError("create", "", err)
	}
	if !record.HasProperties() {
		return model.Task{}, s.storeError("create", record.ID, errReferenceOnly)
	}

	s.logger.Info("task created", "id", record.ID, "status", status)
	return RecordToTask(record), nil
}

// Update applies a partial update. Only the fields present in update are written.
func (s *TaskService) Update(ctx context.Context, id string, update model.TaskUpdate) (model.Task, error) {
	if update.IsEmpty() {
		return model.Task{}, &ValidationError{Message: "At least one field (title or status) must be provided"}
	}
	if update.Title != nil {
		title := strings.TrimSpace(*update.Title)
		if title == "" {
			return model.Task{}, &ValidationError{Message: "Title must be a non-empty string"}
		}
		update.Title = &title
	}
	if update.Status != nil && !model.IsValidStatus(*update.Status) {
		return model.Task{}, invalidStatus(*update.Status)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	record, err := s.store.Update(ctx, id, TaskUpdateToRecordPatch(update))
	if err != nil {
		return model.Task{}, s.storeError("update", id, err)
	}
	if !record.HasProperties() {
		return model.Task{}, s.storeError("update", id, errReferenceOnly)
	}

	s.logger.Info("task updated", "id", id)
	return RecordToTask(record), nil
}

// CheckSchema verifies that the database exposes the mapped properties with
// the expected types. Stores that cannot describe their schema pass.
func (s *TaskService) CheckSchema(ctx context.Context) error {
	reader, ok := s.store.(SchemaReader)
	if !ok {
		s.logger.Info("record store does not describe its schema, skipping check")
		return nil
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	schema, err := reader.Schema(ctx, s.databaseID)
	if err != nil {
		return fmt.Errorf("failed to read database schema: %w", err)
	}

	var problems []string
	expected := []struct{ name, kind string }{
		{model.TitleProperty, model.TitlePropertyType},
		{model.StatusProperty, model.StatusPropertyType},
	}
	for _, want := range expected {
		got, ok := schema[want.name]
		switch {
		case !ok:
			problems = append(problems, fmt.Sprintf("property %q is missing", want.name))
		case got != want.kind:
			problems = append(problems, fmt.Sprintf("property %q has type %q, want %q", want.name, got, want.kind))
		}
	}
	if len(problems) > 0 {
		return &SchemaError{Problems: problems}
	}

	s.logger.Info("database schema matches", "database", s.databaseID)
	return nil
}

// VerifyCredentials asks the store who the configured credential belongs to.
// It returns errors.ErrUnsupported when the store cannot tell.
func (s *TaskService) VerifyCredentials(ctx context.Context) (string, error) {
	checker, ok := s.store.(CredentialChecker)
	if !ok {
		return "", errors.ErrUnsupported
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	identity, err := checker.WhoAmI(ctx)
	if err != nil {
		s.logger.Error("credential check failed", "error", err)
		return "", err
	}
	return identity, nil
}
