package domain

import (
	"context"
	"time"
)

// PresenceEntry is a durable record of one logged-in (username, session)
// pair. The same username may appear under several session IDs (a second
// tab, a re-login); every such entry counts as present.
type PresenceEntry struct {
	Username     string
	SessionID    string
	LoginTime    time.Time
	LastActivity time.Time
}

// PresenceRepository defines the port for the presence registry.
//
// Implementations must treat every mutation as a single
// read-transform-write unit under one exclusive lock per backing store, so
// concurrent mutations cannot silently drop each other's updates.
type PresenceRepository interface {
	// List returns a snapshot of the registry in stored order.
	List(ctx context.Context) ([]PresenceEntry, error)
	// Upsert updates LastActivity of the entry matching (username,
	// sessionID), or appends a new entry with LoginTime = LastActivity =
	// now. At most one entry per pair ever exists.
	Upsert(ctx context.Context, username, sessionID string, now time.Time) error
	// Remove deletes the entry matching (username, sessionID). Removing a
	// pair that is not present is not an error.
	Remove(ctx context.Context, username, sessionID string) error
	// SweepExpired drops entries idle for timeout or longer, measured
	// against now, and returns how many were dropped. An entry idle for
	// exactly timeout is expired.
	SweepExpired(ctx context.Context, timeout time.Duration, now time.Time) (int, error)
}
