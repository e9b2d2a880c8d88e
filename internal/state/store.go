// Package state implements the synchronizer that owns the canonical in-memory
// copy of events, maintenance tasks, cleaning tasks, and users. Every
// mutation rewrites the whole collection to durable storage; a periodic poll
// re-reads storage so edits from other sessions become visible.
package state

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/example/campshare/internal/model"
	"github.com/example/campshare/internal/storage"
)

// DefaultPollSpec reloads persisted collections once a minute, matching the
// reference sync interval.
const DefaultPollSpec = "@every 1m"

// Store owns the four primary collections. All access goes through its
// methods; snapshots return copies.
type Store struct {
	storage     storage.Store
	pollSpec    string
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger

	cron *cron.Cron

	mu          sync.Mutex
	events      []model.Event
	maintenance []model.MaintenanceTask
	cleaning    []model.CleaningTask
	users       []model.User
}

// NewStore wires a synchronizer over the given storage port. pollSpec is a
// cron schedule for the reconciliation poll; empty means DefaultPollSpec.
// Nil idGenerator, now, and logger get working defaults.
func NewStore(st storage.Store, pollSpec string, idGenerator func() string, now func() time.Time, logger *slog.Logger) *Store {
	if pollSpec == "" {
		pollSpec = DefaultPollSpec
	}
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
		pollSpec:    pollSpec,
		idGenerator: idGenerator,
		now:         now,
		logger:      logger,
	}
}

// Load bootstraps every collection from storage. Absent or unparseable
// content initializes the collection empty, except users, which seed two
// default accounts so a fresh installation is usable.
func (s *Store) Load(ctx context.Context) error {
	if s == nil || s.storage == nil {
		return fmt.Errorf("state: store not configured")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = s.loadEvents(ctx)
	s.maintenance = s.loadMaintenance(ctx)
	s.cleaning = s.loadCleaning(ctx)
	s.users = s.loadUsers(ctx)

	if len(s.users) == 0 {
		s.users = s.seedUsers()
		if err := s.persistUsersLocked(ctx); err != nil {
			return err
		}
	}

	return nil
}

func (s *Store) loadEvents(ctx context.Context) []model.Event {
	data, ok, err := s.storage.Get(ctx, storage.KeyEvents)
	if err != nil || !ok {
		s.logLoadMiss(ctx, storage.KeyEvents, err)
		return nil
	}
	events, err := decodeEvents(data)
	if err != nil {
		s.logger.WarnContext(ctx, "discarding unparseable collection", "key", storage.KeyEvents, "error", err)
		return nil
	}
	return events
}

func (s *Store) loadMaintenance(ctx context.Context) []model.MaintenanceTask {
	data, ok, err := s.storage.Get(ctx, storage.KeyMaintenance)
	if err != nil || !ok {
		s.logLoadMiss(ctx, storage.KeyMaintenance, err)
		return nil
	}
	tasks, err := decodeMaintenanceTasks(data)
	if err != nil {
		s.logger.WarnContext(ctx, "discarding unparseable collection", "key", storage.KeyMaintenance, "error", err)
		return nil
	}
	return tasks
}

func (s *Store) loadCleaning(ctx context.Context) []model.CleaningTask {
	data, ok, err := s.storage.Get(ctx, storage.KeyCleaning)
	if err != nil || !ok {
		s.logLoadMiss(ctx, storage.KeyCleaning, err)
		return nil
	}
	tasks, err := decodeCleaningTasks(data)
	if err != nil {
		s.logger.WarnContext(ctx, "discarding unparseable collection", "key", storage.KeyCleaning, "error", err)
		return nil
	}
	return tasks
}

func (s *Store) loadUsers(ctx context.Context) []model.User {
	data, ok, err := s.storage.Get(ctx, storage.KeyUsers)
	if err != nil || !ok {
		s.logLoadMiss(ctx, storage.KeyUsers, err)
		return nil
	}
	users, err := decodeUsers(data)
	if err != nil {
		s.logger.WarnContext(ctx, "discarding unparseable collection", "key", storage.KeyUsers, "error", err)
		return nil
	}
	return users
}

func (s *Store) logLoadMiss(ctx context.Context, key string, err error) {
	if err != nil {
		s.logger.WarnContext(ctx, "storage read failed", "key", key, "error", err)
	}
}

func (s *Store) seedUsers() []model.User {
	return []model.User{
		{
			ID:          s.idGenerator(),
			Name:        "Admin User",
			PhoneNumber: "+15551234567",
			Permissions: []model.Permission{model.PermissionAdmin},
		},
		{
			ID:          s.idGenerator(),
			Name:        "Regular User",
			PhoneNumber: "+15559876543",
			Permissions: []model.Permission{model.PermissionReadOnly},
		},
	}
}

// --- Events ---

// AddEvent assigns an id, normalizes dates, and appends the event. An end
// date before the start date is clamped to the start date.
func (s *Store) AddEvent(ctx context.Context, event model.Event) (model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	event.ID = s.idGenerator()
	normalizeEvent(&event, s.now)

	s.events = append(s.events, event)
	if err := s.persistEventsLocked(ctx); err != nil {
		return model.Event{}, err
	}
	return event, nil
}

// UpdateEvent replaces the stored event with the same id. Unknown ids are a
// no-op; ok reports whether a record was replaced.
func (s *Store) UpdateEvent(ctx context.Context, event model.Event) (model.Event, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.events {
		if s.events[i].ID == event.ID {
			normalizeEvent(&event, s.now)
			s.events[i] = event
			if err := s.persistEventsLocked(ctx); err != nil {
				return model.Event{}, false, err
			}
			return event, true, nil
		}
	}
	return model.Event{}, false, nil
}

// DeleteEvent removes the event by id. When actingName is non-empty, the
// deletion only applies if it matches the event's creator; a mismatch leaves
// the collection unchanged. removed reports whether a record went away.
func (s *Store) DeleteEvent(ctx context.Context, id, actingName string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.events {
		if s.events[i].ID != id {
			continue
		}
		if actingName != "" && s.events[i].CreatedBy != actingName {
			return false, nil
		}
		s.events = append(s.events[:i], s.events[i+1:]...)
		if err := s.persistEventsLocked(ctx); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

// EventByID returns a copy of the event with the given id.
func (s *Store) EventByID(id string) (model.Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, event := range s.events {
		if event.ID == id {
			return event, true
		}
	}
	return model.Event{}, false
}

// Events returns a copy of the event collection.
func (s *Store) Events() []model.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Event, len(s.events))
	copy(out, s.events)
	return out
}

func normalizeEvent(event *model.Event, now func() time.Time) {
	if event.StartDate.IsZero() {
		event.StartDate = now()
	}
	event.StartDate = model.DateOnly(event.StartDate)
	if event.EndDate.IsZero() || event.EndDate.Before(event.StartDate) {
		event.EndDate = event.StartDate
	} else {
		event.EndDate = model.DateOnly(event.EndDate)
	}
	if event.Category == "" {
		event.Category = model.CategoryOther
	}
	if event.Color == "" {
		event.Color = model.CategoryColor(event.Category)
	}
	if event.Category != model.CategoryRetreat {
		event.CateringNeeded = false
		event.CateringNotes = ""
	}
}

// --- Maintenance tasks ---

// AddMaintenanceTask assigns an id and creation time and appends the task.
// Photos beyond the cap are dropped.
func (s *Store) AddMaintenanceTask(ctx context.Context, task model.MaintenanceTask) (model.MaintenanceTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task.ID = s.idGenerator()
	task.CreatedAt = s.now()
	if task.Priority == "" {
		task.Priority = model.PriorityMedium
	}
	if task.Status == "" {
		task.Status = model.TaskPending
	}
	if len(task.Photos) > model.MaxTaskPhotos {
		task.Photos = task.Photos[:model.MaxTaskPhotos]
	}

	s.maintenance = append(s.maintenance, task)
	if err := s.persistMaintenanceLocked(ctx); err != nil {
		return model.MaintenanceTask{}, err
	}
	return task, nil
}

// UpdateMaintenanceTask replaces the task with the same id, preserving the
// original creation time.
func (s *Store) UpdateMaintenanceTask(ctx context.Context, task model.MaintenanceTask) (model.MaintenanceTask, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.maintenance {
		if s.maintenance[i].ID == task.ID {
			task.CreatedAt = s.maintenance[i].CreatedAt
			if len(task.Photos) > model.MaxTaskPhotos {
				task.Photos = task.Photos[:model.MaxTaskPhotos]
			}
			s.maintenance[i] = task
			if err := s.persistMaintenanceLocked(ctx); err != nil {
				return model.MaintenanceTask{}, false, err
			}
			return task, true, nil
		}
	}
	return model.MaintenanceTask{}, false, nil
}

// DeleteMaintenanceTask removes the task by id.
func (s *Store) DeleteMaintenanceTask(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.maintenance {
		if s.maintenance[i].ID == id {
			s.maintenance = append(s.maintenance[:i], s.maintenance[i+1:]...)
			if err := s.persistMaintenanceLocked(ctx); err != nil {
				return false, err
			}
			return true, nil
		}
	}
	return false, nil
}

// MaintenanceTaskByID returns a copy of the task with the given id.
func (s *Store) MaintenanceTaskByID(id string) (model.MaintenanceTask, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, task := range s.maintenance {
		if task.ID == id {
			return task, true
		}
	}
	return model.MaintenanceTask{}, false
}

// MaintenanceTasks returns a copy of the maintenance collection.
func (s *Store) MaintenanceTasks() []model.MaintenanceTask {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.MaintenanceTask, len(s.maintenance))
	copy(out, s.maintenance)
	return out
}

// --- Cleaning tasks ---

// AddCleaningTask assigns an id and appends the task.
func (s *Store) AddCleaningTask(ctx context.Context, task model.CleaningTask) (model.CleaningTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task.ID = s.idGenerator()
	if task.Status == "" {
		task.Status = model.StatusUnclean
	}

	s.cleaning = append(s.cleaning, task)
	if err := s.persistCleaningLocked(ctx); err != nil {
		return model.CleaningTask{}, err
	}
	return task, nil
}

// UpdateCleaningTask replaces the task with the same id.
func (s *Store) UpdateCleaningTask(ctx context.Context, task model.CleaningTask) (model.CleaningTask, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.cleaning {
		if s.cleaning[i].ID == task.ID {
			s.cleaning[i] = task
			if err := s.persistCleaningLocked(ctx); err != nil {
				return model.CleaningTask{}, false, err
			}
			return task, true, nil
		}
	}
	return model.CleaningTask{}, false, nil
}

// DeleteCleaningTask removes the task by id.
func (s *Store) DeleteCleaningTask(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.cleaning {
		if s.cleaning[i].ID == id {
			s.cleaning = append(s.cleaning[:i], s.cleaning[i+1:]...)
			if err := s.persistCleaningLocked(ctx); err != nil {
				return false, err
			}
			return true, nil
		}
	}
	return false, nil
}

// ToggleCleanStatus flips a task between clean and unclean. LastCleaned is
// stamped only on the transition to clean.
func (s *Store) ToggleCleanStatus(ctx context.Context, id string) (model.CleaningTask, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.cleaning {
		if s.cleaning[i].ID != id {
			continue
		}
		if s.cleaning[i].Status == model.StatusClean {
			s.cleaning[i].Status = model.StatusUnclean
		} else {
			s.cleaning[i].Status = model.StatusClean
			cleaned := s.now()
			s.cleaning[i].LastCleaned = &cleaned
		}
		if err := s.persistCleaningLocked(ctx); err != nil {
			return model.CleaningTask{}, false, err
		}
		return s.cleaning[i], true, nil
	}
	return model.CleaningTask{}, false, nil
}

// AssignCleaningTask sets the task's assignee.
func (s *Store) AssignCleaningTask(ctx context.Context, id, userID string) (model.CleaningTask, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.cleaning {
		if s.cleaning[i].ID == id {
			s.cleaning[i].AssignedTo = userID
			if err := s.persistCleaningLocked(ctx); err != nil {
				return model.CleaningTask{}, false, err
			}
			return s.cleaning[i], true, nil
		}
	}
	return model.CleaningTask{}, false, nil
}

// CleaningTasks returns a copy of the cleaning collection.
func (s *Store) CleaningTasks() []model.CleaningTask {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.CleaningTask, len(s.cleaning))
	copy(out, s.cleaning)
	return out
}

// --- Users ---

// AddUser assigns an id, defaults permissions to read-only, and appends the
// user with PasswordSet false.
func (s *Store) AddUser(ctx context.Context, user model.User) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user.ID = s.idGenerator()
	user.PasswordSet = false
	if len(user.Permissions) == 0 {
		user.Permissions = []model.Permission{model.PermissionReadOnly}
	}

	s.users = append(s.users, user)
	if err := s.persistUsersLocked(ctx); err != nil {
		return model.User{}, err
	}
	return user, nil
}

// UpdateUser replaces the user with the same id.
func (s *Store) UpdateUser(ctx context.Context, user model.User) (model.User, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.users {
		if s.users[i].ID == user.ID {
			s.users[i] = user
			if err := s.persistUsersLocked(ctx); err != nil {
				return model.User{}, false, err
			}
			return user, true, nil
		}
	}
	return model.User{}, false, nil
}

// UpdateUserPermissions replaces a user's permission set.
func (s *Store) UpdateUserPermissions(ctx context.Context, userID string, permissions []model.Permission) (model.User, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.users {
		if s.users[i].ID == userID {
			s.users[i].Permissions = append([]model.Permission(nil), permissions...)
			if err := s.persistUsersLocked(ctx); err != nil {
				return model.User{}, false, err
			}
			return s.users[i], true, nil
		}
	}
	return model.User{}, false, nil
}

// SetTemporaryCode stores a fresh one-time login code on the user.
func (s *Store) SetTemporaryCode(ctx context.Context, userID, code string) (model.User, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.users {
		if s.users[i].ID == userID {
			s.users[i].TemporaryCode = code
			if err := s.persistUsersLocked(ctx); err != nil {
				return model.User{}, false, err
			}
			return s.users[i], true, nil
		}
	}
	return model.User{}, false, nil
}

// MarkPasswordSet records that the user has consumed their temporary code.
func (s *Store) MarkPasswordSet(ctx context.Context, userID string) (model.User, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.users {
		if s.users[i].ID == userID {
			s.users[i].PasswordSet = true
			if err := s.persistUsersLocked(ctx); err != nil {
				return model.User{}, false, err
			}
			return s.users[i], true, nil
		}
	}
	return model.User{}, false, nil
}

// DeleteUser removes the user by id.
func (s *Store) DeleteUser(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.users {
		if s.users[i].ID == id {
			s.users = append(s.users[:i], s.users[i+1:]...)
			if err := s.persistUsersLocked(ctx); err != nil {
				return false, err
			}
			return true, nil
		}
	}
	return false, nil
}

// UserByPhone looks up a user by phone number, the login identity.
func (s *Store) UserByPhone(phoneNumber string) (model.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.PhoneNumber == phoneNumber {
			return user, true
		}
	}
	return model.User{}, false
}

// UserByID returns a copy of the user with the given id.
func (s *Store) UserByID(id string) (model.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.ID == id {
			return user, true
		}
	}
	return model.User{}, false
}

// Users returns a copy of the user collection.
func (s *Store) Users() []model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.User, len(s.users))
	copy(out, s.users)
	return out
}

// --- Persistence ---

func (s *Store) persistEventsLocked(ctx context.Context) error {
	return s.persistLocked(ctx, storage.KeyEvents, s.events)
}

func (s *Store) persistMaintenanceLocked(ctx context.Context) error {
	return s.persistLocked(ctx, storage.KeyMaintenance, s.maintenance)
}

func (s *Store) persistCleaningLocked(ctx context.Context) error {
	return s.persistLocked(ctx, storage.KeyCleaning, s.cleaning)
}

func (s *Store) persistUsersLocked(ctx context.Context) error {
	return s.persistLocked(ctx, storage.KeyUsers, s.users)
}

// persistLocked rewrites a full collection; callers hold the mutex.
func (s *Store) persistLocked(ctx context.Context, key string, collection any) error {
	data, err := encode(collection)
	if err != nil {
		return err
	}
	if err := s.storage.Set(ctx, key, data); err != nil {
		return fmt.Errorf("state: persist %s: %w", key, err)
	}
	return nil
}
