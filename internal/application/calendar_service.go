package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/example/campshare/internal/model"
	"github.com/example/campshare/internal/notify"
	"github.com/example/campshare/internal/recurrence"
	"github.com/example/campshare/internal/state"
)

// CalendarService orchestrates event mutations, permission checks, catering
// notifications, and the yearly retreat recommendations.
type CalendarService struct {
	store         *state.Store
	notifications *notify.Store
	projector     *recurrence.Projector
	now           func() time.Time
	logger        *slog.Logger

	mu        sync.Mutex
	dismissed map[string]bool
}

// NewCalendarService wires dependencies for calendar operations.
func NewCalendarService(store *state.Store, notifications *notify.Store, projector *recurrence.Projector, now func() time.Time, logger *slog.Logger) *CalendarService {
	if projector == nil {
		projector = recurrence.NewProjector(nil)
	}
	if now == nil {
		now = time.Now
	}
	return &CalendarService{
		store:         store,
		notifications: notifications,
		projector:     projector,
		now:           now,
		logger:        defaultLogger(logger),
		dismissed:     make(map[string]bool),
	}
}

// AddEvent validates and stores a new event. Retreats may only be created by
// admins; a retreat with catering requested notifies the chefs.
func (s *CalendarService) AddEvent(ctx context.Context, actor model.User, event model.Event) (model.Event, error) {
	if s == nil {
		return model.Event{}, fmt.Errorf("CalendarService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "calendar", "add_event", "actor", actor.ID)

	if err := validateEvent(event); err != nil {
		return model.Event{}, err
	}
	if event.Category == model.CategoryRetreat && !actor.IsAdmin() {
		logger.WarnContext(ctx, "retreat creation denied", "error_kind", ErrorKind(ErrUnauthorized))
		return model.Event{}, ErrUnauthorized
	}

	event.CreatedBy = actor.Name
	created, err := s.store.AddEvent(ctx, event)
	if err != nil {
		return model.Event{}, err
	}

	if created.Category == model.CategoryRetreat && created.CateringNeeded {
		s.notifyChefs(ctx, created)
	}

	logger.InfoContext(ctx, "event created", "event_id", created.ID, "category", created.Category)
	return created, nil
}

// UpdateEvent replaces an existing event. Newly requested catering on a
// retreat notifies the chefs once.
func (s *CalendarService) UpdateEvent(ctx context.Context, actor model.User, event model.Event) (model.Event, error) {
	if s == nil {
		return model.Event{}, fmt.Errorf("CalendarService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "calendar", "update_event", "actor", actor.ID, "event_id", event.ID)

	previous, ok := s.store.EventByID(event.ID)
	if !ok {
		return model.Event{}, ErrNotFound
	}
	if err := validateEvent(event); err != nil {
		return model.Event{}, err
	}
	if (event.Category == model.CategoryRetreat || previous.Category == model.CategoryRetreat) && !actor.IsAdmin() {
		return model.Event{}, ErrUnauthorized
	}

	updated, ok, err := s.store.UpdateEvent(ctx, event)
	if err != nil {
		return model.Event{}, err
	}
	if !ok {
		return model.Event{}, ErrNotFound
	}

	cateringTurnedOn := updated.Category == model.CategoryRetreat && updated.CateringNeeded && !previous.CateringNeeded
	if cateringTurnedOn {
		s.notifyChefs(ctx, updated)
	}

	logger.InfoContext(ctx, "event updated")
	return updated, nil
}

// DeleteEvent removes an event. Admins may delete any event; other users may
// delete only events they created.
func (s *CalendarService) DeleteEvent(ctx context.Context, actor model.User, id string) error {
	if s == nil {
		return fmt.Errorf("CalendarService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "calendar", "delete_event", "actor", actor.ID, "event_id", id)

	actingName := actor.Name
	if actor.IsAdmin() {
		actingName = ""
	}

	removed, err := s.store.DeleteEvent(ctx, id, actingName)
	if err != nil {
		return err
	}
	if !removed {
		if _, ok := s.store.EventByID(id); ok {
			logger.WarnContext(ctx, "delete denied", "error_kind", ErrorKind(ErrUnauthorized))
			return ErrUnauthorized
		}
		return ErrNotFound
	}

	logger.InfoContext(ctx, "event deleted")
	return nil
}

// Events returns a snapshot of the calendar.
func (s *CalendarService) Events() []model.Event {
	return s.store.Events()
}

// EventByID returns one event.
func (s *CalendarService) EventByID(id string) (model.Event, error) {
	event, ok := s.store.EventByID(id)
	if !ok {
		return model.Event{}, ErrNotFound
	}
	return event, nil
}

// Recommendations projects this month's past retreats onto next year,
// skipping suggestions the user has already accepted or declined.
func (s *CalendarService) Recommendations(ctx context.Context) []recurrence.Suggestion {
	suggestions := s.projector.Project(s.store.Events(), s.now())

	s.mu.Lock()
	defer s.mu.Unlock()

	out := suggestions[:0]
	for _, suggestion := range suggestions {
		if !s.dismissed[suggestion.ID] {
			out = append(out, suggestion)
		}
	}
	return out
}

// AcceptRecommendation turns a suggestion into a real retreat event and
// dismisses it. Retreats are admin territory, so acceptance is too. Catering
// can be requested at acceptance time; the chefs are notified through the
// usual AddEvent path.
func (s *CalendarService) AcceptRecommendation(ctx context.Context, actor model.User, suggestion recurrence.Suggestion, cateringNeeded bool, cateringNotes string) (model.Event, error) {
	if !actor.IsAdmin() {
		return model.Event{}, ErrUnauthorized
	}

	created, err := s.AddEvent(ctx, actor, model.Event{
		Title:          suggestion.Title,
		Description:    suggestion.Description,
		StartDate:      suggestion.StartDate,
		EndDate:        suggestion.EndDate,
		Category:       suggestion.Category,
		CateringNeeded: cateringNeeded,
		CateringNotes:  cateringNotes,
	})
	if err != nil {
		return model.Event{}, err
	}

	s.mu.Lock()
	s.dismissed[suggestion.ID] = true
	s.mu.Unlock()

	return created, nil
}

// DeclineRecommendation hides a suggestion for the rest of the session.
func (s *CalendarService) DeclineRecommendation(id string) {
	s.mu.Lock()
	s.dismissed[id] = true
	s.mu.Unlock()
}

func (s *CalendarService) notifyChefs(ctx context.Context, event model.Event) {
	if s.notifications == nil {
		return
	}
	_, err := s.notifications.AddForPermission(ctx, notify.Input{
		Title:   "Catering Needed",
		Message: fmt.Sprintf("Catering requested for %q (%s).", event.Title, event.StartDate.Format("2006-01-02")),
		Type:    model.NotificationInfo,
	}, model.PermissionChef)
	if err != nil {
		s.logger.WarnContext(ctx, "catering notification failed", "event_id", event.ID, "error", err)
	}
}

func validateEvent(event model.Event) error {
	vErr := &ValidationError{}
	if strings.TrimSpace(event.Title) == "" {
		vErr.add("title", "title is required")
	}
	if event.StartDate.IsZero() {
		vErr.add("startDate", "start date is required")
	}
	if vErr.HasErrors() {
		return vErr
	}
	return nil
}
