package application

import (
	"context"
	"errors"
	"testing"

	"github.com/example/campshare/internal/model"
)

func TestAddTaskRequiresMaintenanceRole(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	svc := NewMaintenanceService(env.store, env.feed, nil)

	_, err := svc.AddTask(context.Background(), env.regular, model.MaintenanceTask{Title: "Fix roof"})
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("read-only user created a task: err = %v", err)
	}
}

func TestHighPriorityTaskRaisesWarning(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	svc := NewMaintenanceService(env.store, env.feed, nil)
	ctx := context.Background()

	_, err := svc.AddTask(ctx, env.admin, model.MaintenanceTask{
		Title:    "Broken water heater",
		Priority: model.PriorityHigh,
	})
	if err != nil {
		t.Fatalf("AddTask: %v", err)
	}

	entries := env.feed.All()
	if len(entries) != 1 {
		t.Fatalf("feed = %+v, want exactly one entry", entries)
	}
	if entries[0].Title != "High Priority Task Added" || entries[0].Type != model.NotificationWarning {
		t.Errorf("entry = %+v", entries[0])
	}
	if entries[0].ForPermission != "" {
		t.Errorf("warning restricted to %q, want everyone", entries[0].ForPermission)
	}
}

func TestLowPriorityTaskAnnouncesAsInfo(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	svc := NewMaintenanceService(env.store, env.feed, nil)

	_, err := svc.AddTask(context.Background(), env.admin, model.MaintenanceTask{
		Title:    "Repaint sign",
		Priority: model.PriorityLow,
	})
	if err != nil {
		t.Fatalf("AddTask: %v", err)
	}

	entries := env.feed.All()
	if len(entries) != 1 || entries[0].Type != model.NotificationInfo {
		t.Errorf("feed = %+v", entries)
	}
}

func TestCompletingTaskPostsSuccess(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	svc := NewMaintenanceService(env.store, env.feed, nil)
	ctx := context.Background()

	task, err := svc.AddTask(ctx, env.admin, model.MaintenanceTask{Title: "Clear gutters"})
	if err != nil {
		t.Fatalf("AddTask: %v", err)
	}

	task.Status = model.TaskCompleted
	if _, err := svc.UpdateTask(ctx, env.admin, task); err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}

	entries := env.feed.All()
	if entries[0].Title != "Task Completed" || entries[0].Type != model.NotificationSuccess {
		t.Errorf("latest entry = %+v", entries[0])
	}

	// A further edit of the already completed task is a plain update.
	task.Description = "done early"
	if _, err := svc.UpdateTask(ctx, env.admin, task); err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if got := env.feed.All()[0]; got.Title != "Maintenance Task Updated" {
		t.Errorf("latest entry = %+v", got)
	}
}

func TestAssignTask(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	svc := NewMaintenanceService(env.store, env.feed, nil)
	ctx := context.Background()

	task, err := svc.AddTask(ctx, env.admin, model.MaintenanceTask{Title: "Stack firewood"})
	if err != nil {
		t.Fatalf("AddTask: %v", err)
	}

	assigned, err := svc.AssignTask(ctx, env.admin, task.ID, env.regular.ID)
	if err != nil {
		t.Fatalf("AssignTask: %v", err)
	}
	if assigned.AssignedTo != env.regular.ID {
		t.Errorf("AssignedTo = %q", assigned.AssignedTo)
	}
	if got := env.feed.All()[0]; got.Title != "Task Assigned" {
		t.Errorf("latest entry = %+v", got)
	}

	if _, err := svc.AssignTask(ctx, env.admin, task.ID, "no-such-user"); !errors.Is(err, ErrNotFound) {
		t.Errorf("assignment to unknown user: err = %v", err)
	}
}

func TestDeleteTask(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	svc := NewMaintenanceService(env.store, env.feed, nil)
	ctx := context.Background()

	task, err := svc.AddTask(ctx, env.admin, model.MaintenanceTask{Title: "Temporary"})
	if err != nil {
		t.Fatalf("AddTask: %v", err)
	}

	if err := svc.DeleteTask(ctx, env.regular, task.ID); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("read-only delete: err = %v", err)
	}
	if err := svc.DeleteTask(ctx, env.admin, task.ID); err != nil {
		t.Errorf("admin delete: %v", err)
	}
	if err := svc.DeleteTask(ctx, env.admin, task.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("repeat delete: err = %v", err)
	}
}

func TestMaintenanceRoleCanManage(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	svc := NewMaintenanceService(env.store, env.feed, nil)

	worker := model.User{ID: "u-w", Name: "Pat", Permissions: []model.Permission{model.PermissionMaintenance}}
	if _, err := svc.AddTask(context.Background(), worker, model.MaintenanceTask{Title: "Grease hinges"}); err != nil {
		t.Errorf("maintenance role AddTask: %v", err)
	}
}
