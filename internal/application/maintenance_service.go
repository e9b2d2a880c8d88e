package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/example/campshare/internal/model"
	"github.com/example/campshare/internal/notify"
	"github.com/example/campshare/internal/state"
)

// MaintenanceService orchestrates maintenance task mutations and the feed
// entries that accompany them.
type MaintenanceService struct {
	store         *state.Store
	notifications *notify.Store
	logger        *slog.Logger
}

// NewMaintenanceService wires dependencies for maintenance operations.
func NewMaintenanceService(store *state.Store, notifications *notify.Store, logger *slog.Logger) *MaintenanceService {
	return &MaintenanceService{
		store:         store,
		notifications: notifications,
		logger:        defaultLogger(logger),
	}
}

func canManageMaintenance(actor model.User) bool {
	return actor.IsAdmin() || actor.HasPermission(model.PermissionMaintenance)
}

// AddTask validates and stores a task. High priority tasks raise a warning in
// the shared feed; everything else announces itself as info.
func (s *MaintenanceService) AddTask(ctx context.Context, actor model.User, task model.MaintenanceTask) (model.MaintenanceTask, error) {
	if s == nil {
		return model.MaintenanceTask{}, fmt.Errorf("MaintenanceService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "maintenance", "add_task", "actor", actor.ID)

	if !canManageMaintenance(actor) {
		logger.WarnContext(ctx, "task creation denied", "error_kind", ErrorKind(ErrUnauthorized))
		return model.MaintenanceTask{}, ErrUnauthorized
	}
	if err := validateMaintenanceTask(task); err != nil {
		return model.MaintenanceTask{}, err
	}

	created, err := s.store.AddMaintenanceTask(ctx, task)
	if err != nil {
		return model.MaintenanceTask{}, err
	}

	if created.Priority == model.PriorityHigh {
		s.announce(ctx, notify.Input{
			Title:   "High Priority Task Added",
			Message: fmt.Sprintf("%s needs attention soon.", created.Title),
			Type:    model.NotificationWarning,
		})
	} else {
		s.announce(ctx, notify.Input{
			Title:   "Maintenance Task Added",
			Message: created.Title,
			Type:    model.NotificationInfo,
		})
	}

	logger.InfoContext(ctx, "task created", "task_id", created.ID, "priority", created.Priority)
	return created, nil
}

// UpdateTask replaces a stored task. Completing a task posts a success entry
// to the feed; other edits post an info entry.
func (s *MaintenanceService) UpdateTask(ctx context.Context, actor model.User, task model.MaintenanceTask) (model.MaintenanceTask, error) {
	if s == nil {
		return model.MaintenanceTask{}, fmt.Errorf("MaintenanceService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "maintenance", "update_task", "actor", actor.ID, "task_id", task.ID)

	if !canManageMaintenance(actor) {
		return model.MaintenanceTask{}, ErrUnauthorized
	}
	if err := validateMaintenanceTask(task); err != nil {
		return model.MaintenanceTask{}, err
	}

	previous, ok := s.store.MaintenanceTaskByID(task.ID)
	if !ok {
		return model.MaintenanceTask{}, ErrNotFound
	}

	updated, ok, err := s.store.UpdateMaintenanceTask(ctx, task)
	if err != nil {
		return model.MaintenanceTask{}, err
	}
	if !ok {
		return model.MaintenanceTask{}, ErrNotFound
	}

	if updated.Status == model.TaskCompleted && previous.Status != model.TaskCompleted {
		s.announce(ctx, notify.Input{
			Title:   "Task Completed",
			Message: fmt.Sprintf("%s has been completed.", updated.Title),
			Type:    model.NotificationSuccess,
		})
	} else {
		s.announce(ctx, notify.Input{
			Title:   "Maintenance Task Updated",
			Message: updated.Title,
			Type:    model.NotificationInfo,
		})
	}

	logger.InfoContext(ctx, "task updated", "status", updated.Status)
	return updated, nil
}

// AssignTask sets the task's assignee and posts an info entry.
func (s *MaintenanceService) AssignTask(ctx context.Context, actor model.User, taskID, userID string) (model.MaintenanceTask, error) {
	if s == nil {
		return model.MaintenanceTask{}, fmt.Errorf("MaintenanceService is nil")
	}
	if !canManageMaintenance(actor) {
		return model.MaintenanceTask{}, ErrUnauthorized
	}

	task, ok := s.store.MaintenanceTaskByID(taskID)
	if !ok {
		return model.MaintenanceTask{}, ErrNotFound
	}
	assignee, ok := s.store.UserByID(userID)
	if !ok {
		return model.MaintenanceTask{}, ErrNotFound
	}

	task.AssignedTo = assignee.ID
	updated, ok, err := s.store.UpdateMaintenanceTask(ctx, task)
	if err != nil {
		return model.MaintenanceTask{}, err
	}
	if !ok {
		return model.MaintenanceTask{}, ErrNotFound
	}

	s.announce(ctx, notify.Input{
		Title:   "Task Assigned",
		Message: fmt.Sprintf("%s has been assigned to %s.", updated.Title, assignee.Name),
		Type:    model.NotificationInfo,
	})
	return updated, nil
}

// DeleteTask removes a task.
func (s *MaintenanceService) DeleteTask(ctx context.Context, actor model.User, id string) error {
	if s == nil {
		return fmt.Errorf("MaintenanceService is nil")
	}
	if !canManageMaintenance(actor) {
		return ErrUnauthorized
	}

	removed, err := s.store.DeleteMaintenanceTask(ctx, id)
	if err != nil {
		return err
	}
	if !removed {
		return ErrNotFound
	}
	return nil
}

// Tasks returns a snapshot of the maintenance list.
func (s *MaintenanceService) Tasks() []model.MaintenanceTask {
	return s.store.MaintenanceTasks()
}

func (s *MaintenanceService) announce(ctx context.Context, input notify.Input) {
	if s.notifications == nil {
		return
	}
	if _, err := s.notifications.Add(ctx, input); err != nil {
		s.logger.WarnContext(ctx, "feed entry failed", "title", input.Title, "error", err)
	}
}

func validateMaintenanceTask(task model.MaintenanceTask) error {
	vErr := &ValidationError{}
	if strings.TrimSpace(task.Title) == "" {
		vErr.add("title", "title is required")
	}
	if len(task.Photos) > model.MaxTaskPhotos {
		vErr.add("photos", fmt.Sprintf("at most %d photos are allowed", model.MaxTaskPhotos))
	}
	if vErr.HasErrors() {
		return vErr
	}
	return nil
}
