package file

import (
	"context"
	"time"

	"chatboard/internal/domain"
)

// presenceRecord is the on-disk shape of one presence entry. Timestamps are
// epoch seconds, as the file has always stored them.
type presenceRecord struct {
	Username     string `json:"username"`
	SessionID    string `json:"session_id"`
	LoginTime    int64  `json:"login_time"`
	LastActivity int64  `json:"last_activity"`
}

// PresenceRepo implements domain.PresenceRepository on one JSON file.
type PresenceRepo struct {
	f *jsonFile
}

var _ domain.PresenceRepository = (*PresenceRepo)(nil)

// NewPresenceRepo creates a presence registry persisted at path.
func NewPresenceRepo(path string) *PresenceRepo {
	return &PresenceRepo{f: newJSONFile(path)}
}

// List returns a snapshot of the registry in stored order.
func (r *PresenceRepo) List(ctx context.Context) ([]domain.PresenceEntry, error) {
	var records []presenceRecord
	err := r.f.withLock(ctx, func() error {
		var err error
		records, err = loadArray[presenceRecord](r.f)
		return err
	})
	if err != nil {
		return nil, err
	}

	entries := make([]domain.PresenceEntry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, domain.PresenceEntry{
			Username:     rec.Username,
			SessionID:    rec.SessionID,
			LoginTime:    time.Unix(rec.LoginTime, 0),
			LastActivity: time.Unix(rec.LastActivity, 0),
		})
	}
	return entries, nil
}

// Upsert refreshes the entry matching (username, sessionID) or appends a new
// one. The whole load-transform-persist runs under the file lock.
func (r *PresenceRepo) Upsert(ctx context.Context, username, sessionID string, now time.Time) error {
	return r.f.withLock(ctx, func() error {
		records, err := loadArray[presenceRecord](r.f)
		if err != nil {
			return err
		}

		found := false
		for i := range records {
			if records[i].Username == username && records[i].SessionID == sessionID {
				records[i].LastActivity = now.Unix()
				found = true
				break
			}
		}
		if !found {
			records = append(records, presenceRecord{
				Username:     username,
				SessionID:    sessionID,
				LoginTime:    now.Unix(),
				LastActivity: now.Unix(),
			})
		}
		return r.f.persist(records)
	})
}

// Remove drops the entry matching (username, sessionID), persisting only
// when something actually changed.
func (r *PresenceRepo) Remove(ctx context.Context, username, sessionID string) error {
	return r.f.withLock(ctx, func() error {
		records, err := loadArray[presenceRecord](r.f)
		if err != nil {
			return err
		}

		kept := records[:0]
		removed := false
		for _, rec := range records {
			if rec.Username == username && rec.SessionID == sessionID {
				removed = true
				continue
			}
			kept = append(kept, rec)
		}
		if !removed {
			return nil
		}
		return r.f.persist(kept)
	})
}

// SweepExpired drops entries whose last activity is timeout or more in the
// past. An entry idle for exactly timeout is expired. Persists only when the
// set shrank.
func (r *PresenceRepo) SweepExpired(ctx context.Context, timeout time.Duration, now time.Time) (int, error) {
	dropped := 0
	err := r.f.withLock(ctx, func() error {
		records, err := loadArray[presenceRecord](r.f)
		if err != nil {
			return err
		}

		cutoff := now.Add(-timeout).Unix()
		kept := records[:0]
		for _, rec := range records {
			if rec.LastActivity > cutoff {
				kept = append(kept, rec)
			} else {
				dropped++
			}
		}
		if dropped == 0 {
			return nil
		}
		return r.f.persist(kept)
	})
	if err != nil {
		return 0, err
	}
	return dropped, nil
}
