// Package notify maintains the shared notification feed. The feed is
// persisted under its own key and is not part of the reconciliation poll;
// each session keeps its own view once loaded.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/campshare/internal/model"
	"github.com/example/campshare/internal/storage"
)

// Input carries the caller-controlled fields of a new notification.
type Input struct {
	Title   string
	Message string
	Type    model.NotificationType
	Link    string
}

// Store owns the notification feed, newest first.
type Store struct {
	storage     storage.Store
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger

	mu      sync.Mutex
	entries []model.Notification
}

// NewStore wires a feed over the given storage port. Nil idGenerator, now,
// and logger get working defaults.
func NewStore(st storage.Store, idGenerator func() string, now func() time.Time, logger *slog.Logger) *Store {
	if idGenerator == nil {
		idGenerator = uuid.NewString
	}
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		storage:     st,
		idGenerator: idGenerator,
		now:         now,
		logger:      logger,
	}
}

// Load reads the persisted feed. An absent or unparseable feed seeds a few
// sample entries so the panel is not empty on first run.
func (s *Store) Load(ctx context.Context) error {
	if s == nil || s.storage == nil {
		return fmt.Errorf("notify: store not configured")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok, err := s.storage.Get(ctx, storage.KeyNotifications)
	if err != nil {
		return fmt.Errorf("notify: load feed: %w", err)
	}
	if ok {
		var entries []model.Notification
		if err := json.Unmarshal(data, &entries); err != nil {
			s.logger.WarnContext(ctx, "discarding unparseable feed", "error", err)
		} else {
			s.entries = entries
			return nil
		}
	}

	s.entries = s.seed()
	return s.persistLocked(ctx)
}

func (s *Store) seed() []model.Notification {
	now := s.now()
	return []model.Notification{
		{
			ID:        s.idGenerator(),
			Title:     "Maintenance Required",
			Message:   "The water pump in cabin 3 needs attention.",
			Timestamp: now,
			Type:      model.NotificationWarning,
		},
		{
			ID:        s.idGenerator(),
			Title:     "Water System Check",
			Message:   "Seasonal water system inspection is due this week.",
			Timestamp: now.Add(-24 * time.Hour),
			Type:      model.NotificationInfo,
		},
		{
			ID:        s.idGenerator(),
			Title:     "Cleaning Schedule Updated",
			Message:   "The cleaning rotation for next month has been published.",
			Timestamp: now.Add(-48 * time.Hour),
			Type:      model.NotificationSuccess,
		},
	}
}

// Add prepends a notification visible to everyone.
func (s *Store) Add(ctx context.Context, input Input) (model.Notification, error) {
	return s.add(ctx, input, "")
}

// AddForPermission prepends a notification visible only to users holding the
// given permission.
func (s *Store) AddForPermission(ctx context.Context, input Input, permission model.Permission) (model.Notification, error) {
	return s.add(ctx, input, permission)
}

func (s *Store) add(ctx context.Context, input Input, permission model.Permission) (model.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if input.Type == "" {
		input.Type = model.NotificationInfo
	}
	entry := model.Notification{
		ID:            s.idGenerator(),
		Title:         input.Title,
		Message:       input.Message,
		Timestamp:     s.now(),
		Type:          input.Type,
		Link:          input.Link,
		ForPermission: permission,
	}

	s.entries = append([]model.Notification{entry}, s.entries...)
	if err := s.persistLocked(ctx); err != nil {
		return model.Notification{}, err
	}
	return entry, nil
}

// MarkRead flags one entry as read. Unknown ids are a no-op.
func (s *Store) MarkRead(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.entries {
		if s.entries[i].ID == id {
			if s.entries[i].Read {
				return nil
			}
			s.entries[i].Read = true
			return s.persistLocked(ctx)
		}
	}
	return nil
}

// MarkAllRead flags every entry as read.
func (s *Store) MarkAllRead(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := false
	for i := range s.entries {
		if !s.entries[i].Read {
			s.entries[i].Read = true
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return s.persistLocked(ctx)
}

// Remove deletes one entry. Unknown ids are a no-op.
func (s *Store) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.entries {
		if s.entries[i].ID == id {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return s.persistLocked(ctx)
		}
	}
	return nil
}

// Clear empties the feed.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = nil
	return s.persistLocked(ctx)
}

// All returns a copy of the feed, newest first.
func (s *Store) All() []model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Notification, len(s.entries))
	copy(out, s.entries)
	return out
}

// VisibleTo filters the feed for one user: unrestricted entries plus those
// targeted at a permission the user holds. Admins see everything.
func (s *Store) VisibleTo(user model.User) []model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Notification, 0, len(s.entries))
	for _, entry := range s.entries {
		if entry.ForPermission == "" || user.IsAdmin() || user.HasPermission(entry.ForPermission) {
			out = append(out, entry)
		}
	}
	return out
}

// UnreadCount reports how many entries visible to the user are unread.
func (s *Store) UnreadCount(user model.User) int {
	count := 0
	for _, entry := range s.VisibleTo(user) {
		if !entry.Read {
			count++
		}
	}
	return count
}

func (s *Store) persistLocked(ctx context.Context) error {
	data, err := json.Marshal(s.entries)
	if err != nil {
		return fmt.Errorf("notify: encode feed: %w", err)
	}
	if err := s.storage.Set(ctx, storage.KeyNotifications, data); err != nil {
		return fmt.Errorf("notify: persist feed: %w", err)
	}
	return nil
}
