package state

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/example/campshare/internal/storage"
)

// reconcileCollection applies one poll cycle to a single collection.
// Storage is authoritative: whatever it holds replaces the in-memory copy,
// so the last persisted write wins. An absent key empties the collection.
// Unreadable or unparseable content keeps the current copy instead, so one
// corrupt writer cannot wipe everyone else's view.
func reconcileCollection[T any](current []T, data []byte, present bool, readErr error, decode func([]byte) ([]T, error)) ([]T, error) {
	if readErr != nil {
		return current, readErr
	}
	if !present {
		return nil, nil
	}
	decoded, err := decode(data)
	if err != nil {
		return current, err
	}
	return decoded, nil
}

// Sync runs one reconciliation pass over every collection. Per-collection
// failures are logged and skipped; the other collections still reconcile.
func (s *Store) Sync(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok, err := s.storage.Get(ctx, storage.KeyEvents)
	if next, rerr := reconcileCollection(s.events, data, ok, err, decodeEvents); rerr != nil {
		s.logger.WarnContext(ctx, "sync skipped collection", "key", storage.KeyEvents, "error", rerr)
	} else {
		s.events = next
	}

	data, ok, err = s.storage.Get(ctx, storage.KeyMaintenance)
	if next, rerr := reconcileCollection(s.maintenance, data, ok, err, decodeMaintenanceTasks); rerr != nil {
		s.logger.WarnContext(ctx, "sync skipped collection", "key", storage.KeyMaintenance, "error", rerr)
	} else {
		s.maintenance = next
	}

	data, ok, err = s.storage.Get(ctx, storage.KeyCleaning)
	if next, rerr := reconcileCollection(s.cleaning, data, ok, err, decodeCleaningTasks); rerr != nil {
		s.logger.WarnContext(ctx, "sync skipped collection", "key", storage.KeyCleaning, "error", rerr)
	} else {
		s.cleaning = next
	}

	data, ok, err = s.storage.Get(ctx, storage.KeyUsers)
	if next, rerr := reconcileCollection(s.users, data, ok, err, decodeUsers); rerr != nil {
		s.logger.WarnContext(ctx, "sync skipped collection", "key", storage.KeyUsers, "error", rerr)
	} else {
		s.users = next
	}
}

// Start launches the background poll on the store's schedule. It is an error
// to start a store twice without stopping it first.
func (s *Store) Start(ctx context.Context) error {
	if s.cron != nil {
		return fmt.Errorf("state: poll already running")
	}

	c := cron.New()
	if _, err := c.AddFunc(s.pollSpec, func() { s.Sync(ctx) }); err != nil {
		return fmt.Errorf("state: schedule poll %q: %w", s.pollSpec, err)
	}
	c.Start()
	s.cron = c
	s.logger.InfoContext(ctx, "reconciliation poll started", "schedule", s.pollSpec)
	return nil
}

// Stop halts the background poll and waits for an in-flight pass to finish.
func (s *Store) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	s.cron = nil
}
