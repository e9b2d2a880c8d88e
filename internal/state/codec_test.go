package state

import (
	"testing"
	"time"

	"github.com/example/campshare/internal/model"
)

func TestDecodeEventsMigratesLegacyShapes(t *testing.T) {
	t.Parallel()

	t.Run("single date field fills both boundaries", func(t *testing.T) {
		t.Parallel()
		events, err := decodeEvents([]byte(`[{"id":"ev-1","title":"Old entry","date":"2023-06-15"}]`))
		if err != nil {
			t.Fatalf("decodeEvents: %v", err)
		}
		want := time.Date(2023, time.June, 15, 0, 0, 0, 0, time.UTC)
		if !events[0].StartDate.Equal(want) || !events[0].EndDate.Equal(want) {
			t.Errorf("dates = %v..%v, want both %v", events[0].StartDate, events[0].EndDate, want)
		}
	})

	t.Run("missing category and color are backfilled", func(t *testing.T) {
		t.Parallel()
		events, err := decodeEvents([]byte(`[{"id":"ev-2","title":"Untyped","startDate":"2024-01-05","endDate":"2024-01-06"}]`))
		if err != nil {
			t.Fatalf("decodeEvents: %v", err)
		}
		if events[0].Category != model.CategoryOther {
			t.Errorf("Category = %q", events[0].Category)
		}
		if events[0].Color != model.CategoryColor(model.CategoryOther) {
			t.Errorf("Color = %q", events[0].Color)
		}
	})

	t.Run("explicit color survives", func(t *testing.T) {
		t.Parallel()
		events, err := decodeEvents([]byte(`[{"id":"ev-3","title":"Custom","startDate":"2024-01-05","endDate":"2024-01-06","category":"retreat","color":"#abcdef"}]`))
		if err != nil {
			t.Fatalf("decodeEvents: %v", err)
		}
		if events[0].Color != "#abcdef" {
			t.Errorf("Color = %q", events[0].Color)
		}
	})

	t.Run("timestamps normalize to midnight", func(t *testing.T) {
		t.Parallel()
		events, err := decodeEvents([]byte(`[{"id":"ev-4","title":"Stamped","startDate":"2024-08-10T14:30:00Z","endDate":"2024-08-13T09:00:00Z"}]`))
		if err != nil {
			t.Fatalf("decodeEvents: %v", err)
		}
		if !events[0].StartDate.Equal(time.Date(2024, time.August, 10, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("StartDate = %v", events[0].StartDate)
		}
	})

	t.Run("unparseable date is an error", func(t *testing.T) {
		t.Parallel()
		if _, err := decodeEvents([]byte(`[{"id":"ev-5","startDate":"not-a-date"}]`)); err == nil {
			t.Error("decodeEvents accepted a bad date")
		}
	})
}

func TestDecodeMaintenanceTasksDefaults(t *testing.T) {
	t.Parallel()

	tasks, err := decodeMaintenanceTasks([]byte(`[{"id":"t-1","title":"No metadata","createdAt":"2024-03-01T08:00:00Z"}]`))
	if err != nil {
		t.Fatalf("decodeMaintenanceTasks: %v", err)
	}
	if tasks[0].Priority != model.PriorityMedium || tasks[0].Status != model.TaskPending {
		t.Errorf("defaults = %q/%q", tasks[0].Priority, tasks[0].Status)
	}
	if tasks[0].DueDate != nil {
		t.Errorf("DueDate = %v, want nil", tasks[0].DueDate)
	}
}

func TestDecodeCleaningTasksDefaults(t *testing.T) {
	t.Parallel()

	tasks, err := decodeCleaningTasks([]byte(`[{"id":"c-1","area":"Chapel"}]`))
	if err != nil {
		t.Fatalf("decodeCleaningTasks: %v", err)
	}
	if tasks[0].Status != model.StatusUnclean {
		t.Errorf("Status = %q, want unclean", tasks[0].Status)
	}
	if tasks[0].LastCleaned != nil {
		t.Errorf("LastCleaned = %v, want nil", tasks[0].LastCleaned)
	}
}

func TestDecodeUsersDefaultsPermissions(t *testing.T) {
	t.Parallel()

	users, err := decodeUsers([]byte(`[{"id":"u-1","name":"Dana","phoneNumber":"+15550002222"}]`))
	if err != nil {
		t.Fatalf("decodeUsers: %v", err)
	}
	if !users[0].HasPermission(model.PermissionReadOnly) {
		t.Errorf("permissions = %v, want read-only default", users[0].Permissions)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	t.Parallel()

	original := []model.Event{{
		ID:        "ev-rt",
		Title:     "Round trip",
		StartDate: time.Date(2024, time.August, 10, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, time.August, 13, 0, 0, 0, 0, time.UTC),
		Category:  model.CategoryRetreat,
		Color:     model.CategoryColor(model.CategoryRetreat),
		CreatedBy: "Alice",
	}}

	data, err := encode(original)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := decodeEvents(data)
	if err != nil {
		t.Fatalf("decodeEvents: %v", err)
	}

	if len(decoded) != 1 {
		t.Fatalf("decoded %d events", len(decoded))
	}
	got := decoded[0]
	if got.ID != original[0].ID || got.Title != original[0].Title || got.Category != original[0].Category {
		t.Errorf("round trip changed fields: %+v", got)
	}
	if !model.SameDay(got.StartDate, original[0].StartDate) || !model.SameDay(got.EndDate, original[0].EndDate) {
		t.Errorf("round trip changed dates: %v..%v", got.StartDate, got.EndDate)
	}
}
