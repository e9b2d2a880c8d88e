package application

import (
	"context"
	"errors"
	"testing"

	"github.com/example/campshare/internal/model"
)

func TestAddAreaRequiresCleaningRole(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	svc := NewCleaningService(env.store, nil)

	if _, err := svc.AddArea(context.Background(), env.regular, model.CleaningTask{Area: "Kitchen"}); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("read-only user created an area: err = %v", err)
	}

	cleaner := model.User{ID: "u-c", Permissions: []model.Permission{model.PermissionCleaning}}
	if _, err := svc.AddArea(context.Background(), cleaner, model.CleaningTask{Area: "Kitchen"}); err != nil {
		t.Errorf("cleaning role AddArea: %v", err)
	}
}

func TestAddAreaValidation(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	svc := NewCleaningService(env.store, nil)

	_, err := svc.AddArea(context.Background(), env.admin, model.CleaningTask{})
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("err = %v, want validation error", err)
	}
	if _, ok := vErr.FieldErrors["area"]; !ok {
		t.Errorf("FieldErrors = %v", vErr.FieldErrors)
	}
}

func TestToggleStatusAndFeedSilence(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	svc := NewCleaningService(env.store, nil)
	ctx := context.Background()

	area, err := svc.AddArea(ctx, env.admin, model.CleaningTask{Area: "Bathhouse"})
	if err != nil {
		t.Fatalf("AddArea: %v", err)
	}

	toggled, err := svc.ToggleStatus(ctx, env.admin, area.ID)
	if err != nil {
		t.Fatalf("ToggleStatus: %v", err)
	}
	if toggled.Status != model.StatusClean || toggled.LastCleaned == nil {
		t.Errorf("toggled = %+v", toggled)
	}

	// Cleaning never writes to the shared feed.
	if entries := env.feed.All(); len(entries) != 0 {
		t.Errorf("feed = %+v, want empty", entries)
	}

	if _, err := svc.ToggleStatus(ctx, env.regular, area.ID); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("read-only toggle: err = %v", err)
	}
	if _, err := svc.ToggleStatus(ctx, env.admin, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown area toggle: err = %v", err)
	}
}

func TestAssignArea(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	svc := NewCleaningService(env.store, nil)
	ctx := context.Background()

	area, err := svc.AddArea(ctx, env.admin, model.CleaningTask{Area: "Mess hall"})
	if err != nil {
		t.Fatalf("AddArea: %v", err)
	}

	assigned, err := svc.AssignArea(ctx, env.admin, area.ID, env.regular.ID)
	if err != nil {
		t.Fatalf("AssignArea: %v", err)
	}
	if assigned.AssignedTo != env.regular.ID {
		t.Errorf("AssignedTo = %q", assigned.AssignedTo)
	}

	if _, err := svc.AssignArea(ctx, env.admin, area.ID, "no-such-user"); !errors.Is(err, ErrNotFound) {
		t.Errorf("assignment to unknown user: err = %v", err)
	}
}

func TestDeleteArea(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	svc := NewCleaningService(env.store, nil)
	ctx := context.Background()

	area, err := svc.AddArea(ctx, env.admin, model.CleaningTask{Area: "Chapel"})
	if err != nil {
		t.Fatalf("AddArea: %v", err)
	}

	if err := svc.DeleteArea(ctx, env.admin, area.ID); err != nil {
		t.Errorf("DeleteArea: %v", err)
	}
	if err := svc.DeleteArea(ctx, env.admin, area.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("repeat delete: err = %v", err)
	}
}
