package state

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/example/campshare/internal/model"
)

// The decode path accepts every shape the collections have ever been
// persisted in: date fields may be RFC3339 timestamps or bare dates, events
// may carry the legacy single "date" field, and records written before the
// category/colour fields existed are backfilled. Each legacy shape is handled
// by its own migrate function so new shapes slot in beside them.

type rawEvent struct {
	ID             string              `json:"id"`
	Title          string              `json:"title"`
	StartDate      string              `json:"startDate"`
	EndDate        string              `json:"endDate"`
	Date           string              `json:"date"` // legacy single-date shape
	ArrivalTime    string              `json:"arrivalTime"`
	DepartureTime  string              `json:"departureTime"`
	Description    string              `json:"description"`
	CreatedBy      string              `json:"createdBy"`
	Color          string              `json:"color"`
	Category       model.EventCategory `json:"category"`
	CateringNeeded bool                `json:"cateringNeeded"`
	CateringNotes  string              `json:"cateringNotes"`
}

type rawMaintenanceTask struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Priority    model.Priority   `json:"priority"`
	Status      model.TaskStatus `json:"status"`
	AssignedTo  string           `json:"assignedTo"`
	CreatedAt   string           `json:"createdAt"`
	DueDate     string           `json:"dueDate"`
	Photos      []string         `json:"photos"`
}

type rawCleaningTask struct {
	ID          string            `json:"id"`
	Area        string            `json:"area"`
	Description string            `json:"description"`
	Status      model.CleanStatus `json:"status"`
	AssignedTo  string            `json:"assignedTo"`
	LastCleaned string            `json:"lastCleaned"`
}

func decodeEvents(data []byte) ([]model.Event, error) {
	var raws []rawEvent
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("state: decode events: %w", err)
	}

	events := make([]model.Event, 0, len(raws))
	for _, raw := range raws {
		event, err := migrateEvent(raw)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, nil
}

// migrateEvent produces a fully-defaulted event from any persisted shape.
func migrateEvent(raw rawEvent) (model.Event, error) {
	startStr := raw.StartDate
	if startStr == "" {
		startStr = raw.Date
	}
	endStr := raw.EndDate
	if endStr == "" {
		endStr = raw.Date
	}

	start, err := parseDate(startStr)
	if err != nil {
		return model.Event{}, fmt.Errorf("state: event %s start date: %w", raw.ID, err)
	}
	end, err := parseDate(endStr)
	if err != nil {
		return model.Event{}, fmt.Errorf("state: event %s end date: %w", raw.ID, err)
	}

	category := raw.Category
	if category == "" {
		category = model.CategoryOther
	}
	color := raw.Color
	if color == "" {
		color = model.CategoryColor(category)
	}

	return model.Event{
		ID:             raw.ID,
		Title:          raw.Title,
		StartDate:      start,
		EndDate:        end,
		ArrivalTime:    raw.ArrivalTime,
		DepartureTime:  raw.DepartureTime,
		Description:    raw.Description,
		CreatedBy:      raw.CreatedBy,
		Color:          color,
		Category:       category,
		CateringNeeded: raw.CateringNeeded,
		CateringNotes:  raw.CateringNotes,
	}, nil
}

func decodeMaintenanceTasks(data []byte) ([]model.MaintenanceTask, error) {
	var raws []rawMaintenanceTask
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("state: decode maintenance tasks: %w", err)
	}

	tasks := make([]model.MaintenanceTask, 0, len(raws))
	for _, raw := range raws {
		task, err := migrateMaintenanceTask(raw)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func migrateMaintenanceTask(raw rawMaintenanceTask) (model.MaintenanceTask, error) {
	createdAt, err := parseTimestamp(raw.CreatedAt)
	if err != nil {
		return model.MaintenanceTask{}, fmt.Errorf("state: task %s createdAt: %w", raw.ID, err)
	}

	var dueDate *time.Time
	if raw.DueDate != "" {
		due, err := parseDate(raw.DueDate)
		if err != nil {
			return model.MaintenanceTask{}, fmt.Errorf("state: task %s dueDate: %w", raw.ID, err)
		}
		dueDate = &due
	}

	priority := raw.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}
	status := raw.Status
	if status == "" {
		status = model.TaskPending
	}

	return model.MaintenanceTask{
		ID:          raw.ID,
		Title:       raw.Title,
		Description: raw.Description,
		Priority:    priority,
		Status:      status,
		AssignedTo:  raw.AssignedTo,
		CreatedAt:   createdAt,
		DueDate:     dueDate,
		Photos:      raw.Photos,
	}, nil
}

func decodeCleaningTasks(data []byte) ([]model.CleaningTask, error) {
	var raws []rawCleaningTask
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("state: decode cleaning tasks: %w", err)
	}

	tasks := make([]model.CleaningTask, 0, len(raws))
	for _, raw := range raws {
		task, err := migrateCleaningTask(raw)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func migrateCleaningTask(raw rawCleaningTask) (model.CleaningTask, error) {
	var lastCleaned *time.Time
	if raw.LastCleaned != "" {
		cleaned, err := parseTimestamp(raw.LastCleaned)
		if err != nil {
			return model.CleaningTask{}, fmt.Errorf("state: cleaning task %s lastCleaned: %w", raw.ID, err)
		}
		lastCleaned = &cleaned
	}

	status := raw.Status
	if status == "" {
		status = model.StatusUnclean
	}

	return model.CleaningTask{
		ID:          raw.ID,
		Area:        raw.Area,
		Description: raw.Description,
		Status:      status,
		AssignedTo:  raw.AssignedTo,
		LastCleaned: lastCleaned,
	}, nil
}

func decodeUsers(data []byte) ([]model.User, error) {
	var users []model.User
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("state: decode users: %w", err)
	}
	for i := range users {
		if len(users[i].Permissions) == 0 {
			users[i].Permissions = []model.Permission{model.PermissionReadOnly}
		}
	}
	return users, nil
}

func encode(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("state: encode: %w", err)
	}
	return data, nil
}

// parseDate accepts RFC3339 timestamps or bare dates and normalizes to
// midnight UTC.
func parseDate(s string) (time.Time, error) {
	t, err := parseTimestamp(s)
	if err != nil {
		return time.Time{}, err
	}
	return model.DateOnly(t), nil
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
