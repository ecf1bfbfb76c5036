// Package domain contains the core business entities and interfaces.
package domain

import (
	"context"
	"time"
)

// Session represents one client's ephemeral state, keyed by the opaque
// identifier held in the session cookie.
//
// State machine: anonymous (no flags) -> password verified (Authenticated,
// Username empty) -> named and active (Authenticated, Username set). Only the
// last state counts as logged in for presence and message purposes.
type Session struct {
	ID            string
	Authenticated bool
	// Username is set only when Authenticated is true. It is stored
	// already HTML-escaped.
	Username     string
	CSRFToken    string
	LastRotation time.Time
	LastActivity time.Time
}

// Named reports whether the session has reached the named-and-active state.
func (s *Session) Named() bool {
	return s != nil && s.Authenticated && s.Username != ""
}

// SessionRepository defines the port for session persistence operations.
type SessionRepository interface {
	// Get returns the session for id, or nil when no such session exists.
	Get(ctx context.Context, id string) (*Session, error)
	// Save stores the session under its current ID, replacing any previous
	// state for that ID.
	Save(ctx context.Context, s *Session) error
	// Rename re-keys a session from oldID to newID in one step, so an
	// identifier rotation is never observable half-applied.
	Rename(ctx context.Context, oldID, newID string) error
	Delete(ctx context.Context, id string) error
}
