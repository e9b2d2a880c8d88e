// Package storage defines the durable key/value port the state and
// notification stores persist through, with file, SQLite, and in-memory
// backends. Each key holds one serialized collection.
package storage

import "context"

// Store is the persistence port. Implementations must be safe for use from
// multiple goroutines.
type Store interface {
	// Get returns the value stored under key. ok is false when the key is
	// absent; that is not an error.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error
	// Remove deletes key. Removing an absent key is a no-op.
	Remove(ctx context.Context, key string) error
}

// Keys under which the collections are persisted. The names match the
// original browser localStorage layout so exported data stays portable.
const (
	KeyEvents        = "campshare-events"
	KeyMaintenance   = "campshare-maintenance"
	KeyCleaning      = "campshare-cleaning"
	KeyUsers         = "campshare-users"
	KeyCurrentUser   = "campshare-current-user"
	KeyNotifications = "notifications"
)
