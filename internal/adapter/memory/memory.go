// Package memory implements in-memory repositories for development and
// testing. Sessions live here in production too: the board runs as one
// process and a session is worth nothing across a restart.
package memory

import (
	"context"
	"sync"
	"time"

	"chatboard/internal/domain"
)

// DB implements in-memory storage for presence, messages, and sessions.
type DB struct {
	mu       sync.Mutex
	presence []domain.PresenceEntry
	messages []domain.Message
	sessions map[string]*domain.Session
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{
		sessions: make(map[string]*domain.Session),
	}
}

// Ensure interfaces are met.
var _ domain.PresenceRepository = (*DB)(nil)
var _ domain.MessageRepository = (*MessageRepo)(nil)
var _ domain.SessionRepository = (*DB)(nil)

// --- PresenceRepository ---

// List returns a snapshot of the presence registry.
func (db *DB) List(ctx context.Context) ([]domain.PresenceEntry, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	out := make([]domain.PresenceEntry, len(db.presence))
	copy(out, db.presence)
	return out, nil
}

// Upsert refreshes or appends the entry for (username, sessionID).
func (db *DB) Upsert(ctx context.Context, username, sessionID string, now time.Time) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for i := range db.presence {
		if db.presence[i].Username == username && db.presence[i].SessionID == sessionID {
			db.presence[i].LastActivity = now
			return nil
		}
	}
	db.presence = append(db.presence, domain.PresenceEntry{
		Username:     username,
		SessionID:    sessionID,
		LoginTime:    now,
		LastActivity: now,
	})
	return nil
}

// Remove drops the entry for (username, sessionID), if any.
func (db *DB) Remove(ctx context.Context, username, sessionID string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for i, e := range db.presence {
		if e.Username == username && e.SessionID == sessionID {
			db.presence = append(db.presence[:i], db.presence[i+1:]...)
			return nil
		}
	}
	return nil
}

// SweepExpired drops entries idle for timeout or longer.
func (db *DB) SweepExpired(ctx context.Context, timeout time.Duration, now time.Time) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	kept := db.presence[:0]
	dropped := 0
	for _, e := range db.presence {
		if now.Sub(e.LastActivity) < timeout {
			kept = append(kept, e)
		} else {
			dropped++
		}
	}
	db.presence = kept
	return dropped, nil
}

// --- MessageRepository ---

// MessageRepo exposes the message log half of the store. It is a separate
// view because the presence registry already claims List on DB.
type MessageRepo struct {
	db *DB
}

// Messages returns the message repository view of the store.
func (db *DB) Messages() *MessageRepo {
	return &MessageRepo{db: db}
}

// List returns the log in insertion order.
func (r *MessageRepo) List(ctx context.Context) ([]domain.Message, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	out := make([]domain.Message, len(r.db.messages))
	copy(out, r.db.messages)
	return out, nil
}

// Append adds msg, evicting from the front past limit.
func (r *MessageRepo) Append(ctx context.Context, msg domain.Message, limit int) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.messages = append(r.db.messages, msg)
	if len(r.db.messages) > limit {
		r.db.messages = r.db.messages[len(r.db.messages)-limit:]
	}
	return nil
}

// --- SessionRepository ---

// Get returns a copy of the session for id, or nil when unknown.
func (db *DB) Get(ctx context.Context, id string) (*domain.Session, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if s, ok := db.sessions[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, nil
}

// Save stores the session under its current ID, replacing prior state.
func (db *DB) Save(ctx context.Context, s *domain.Session) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	cp := *s
	db.sessions[s.ID] = &cp
	return nil
}

// Rename re-keys a session in one step under the store mutex, so a rotation
// is never observable half-applied.
func (db *DB) Rename(ctx context.Context, oldID, newID string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	s, ok := db.sessions[oldID]
	if !ok {
		return nil
	}
	delete(db.sessions, oldID)
	s.ID = newID
	db.sessions[newID] = s
	return nil
}

// Delete removes the session for id.
func (db *DB) Delete(ctx context.Context, id string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	delete(db.sessions, id)
	return nil
}
