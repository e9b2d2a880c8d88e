package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/example/campshare/internal/model"
	"github.com/example/campshare/internal/state"
)

// CleaningService orchestrates cleaning area mutations. Cleaning has no feed
// entries; the board itself is the signal.
type CleaningService struct {
	store  *state.Store
	logger *slog.Logger
}

// NewCleaningService wires dependencies for cleaning operations.
func NewCleaningService(store *state.Store, logger *slog.Logger) *CleaningService {
	return &CleaningService{
		store:  store,
		logger: defaultLogger(logger),
	}
}

func canManageCleaning(actor model.User) bool {
	return actor.IsAdmin() || actor.HasPermission(model.PermissionCleaning)
}

// AddArea validates and stores a cleaning area.
func (s *CleaningService) AddArea(ctx context.Context, actor model.User, task model.CleaningTask) (model.CleaningTask, error) {
	if s == nil {
		return model.CleaningTask{}, fmt.Errorf("CleaningService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "cleaning", "add_area", "actor", actor.ID)

	if !canManageCleaning(actor) {
		logger.WarnContext(ctx, "area creation denied", "error_kind", ErrorKind(ErrUnauthorized))
		return model.CleaningTask{}, ErrUnauthorized
	}
	if err := validateCleaningTask(task); err != nil {
		return model.CleaningTask{}, err
	}

	created, err := s.store.AddCleaningTask(ctx, task)
	if err != nil {
		return model.CleaningTask{}, err
	}
	logger.InfoContext(ctx, "area created", "task_id", created.ID)
	return created, nil
}

// UpdateArea replaces a stored cleaning area.
func (s *CleaningService) UpdateArea(ctx context.Context, actor model.User, task model.CleaningTask) (model.CleaningTask, error) {
	if s == nil {
		return model.CleaningTask{}, fmt.Errorf("CleaningService is nil")
	}
	if !canManageCleaning(actor) {
		return model.CleaningTask{}, ErrUnauthorized
	}
	if err := validateCleaningTask(task); err != nil {
		return model.CleaningTask{}, err
	}

	updated, ok, err := s.store.UpdateCleaningTask(ctx, task)
	if err != nil {
		return model.CleaningTask{}, err
	}
	if !ok {
		return model.CleaningTask{}, ErrNotFound
	}
	return updated, nil
}

// ToggleStatus flips an area between clean and unclean. Anyone with the
// cleaning role can flip; the store stamps LastCleaned.
func (s *CleaningService) ToggleStatus(ctx context.Context, actor model.User, id string) (model.CleaningTask, error) {
	if s == nil {
		return model.CleaningTask{}, fmt.Errorf("CleaningService is nil")
	}
	if !canManageCleaning(actor) {
		return model.CleaningTask{}, ErrUnauthorized
	}

	task, ok, err := s.store.ToggleCleanStatus(ctx, id)
	if err != nil {
		return model.CleaningTask{}, err
	}
	if !ok {
		return model.CleaningTask{}, ErrNotFound
	}
	return task, nil
}

// AssignArea sets the area's assignee.
func (s *CleaningService) AssignArea(ctx context.Context, actor model.User, id, userID string) (model.CleaningTask, error) {
	if s == nil {
		return model.CleaningTask{}, fmt.Errorf("CleaningService is nil")
	}
	if !canManageCleaning(actor) {
		return model.CleaningTask{}, ErrUnauthorized
	}
	if _, ok := s.store.UserByID(userID); !ok {
		return model.CleaningTask{}, ErrNotFound
	}

	task, ok, err := s.store.AssignCleaningTask(ctx, id, userID)
	if err != nil {
		return model.CleaningTask{}, err
	}
	if !ok {
		return model.CleaningTask{}, ErrNotFound
	}
	return task, nil
}

// DeleteArea removes a cleaning area.
func (s *CleaningService) DeleteArea(ctx context.Context, actor model.User, id string) error {
	if s == nil {
		return fmt.Errorf("CleaningService is nil")
	}
	if !canManageCleaning(actor) {
		return ErrUnauthorized
	}

	removed, err := s.store.DeleteCleaningTask(ctx, id)
	if err != nil {
		return err
	}
	if !removed {
		return ErrNotFound
	}
	return nil
}

// Areas returns a snapshot of the cleaning board.
func (s *CleaningService) Areas() []model.CleaningTask {
	return s.store.CleaningTasks()
}

func validateCleaningTask(task model.CleaningTask) error {
	vErr := &ValidationError{}
	if strings.TrimSpace(task.Area) == "" {
		vErr.add("area", "area is required")
	}
	if vErr.HasErrors() {
		return vErr
	}
	return nil
}
