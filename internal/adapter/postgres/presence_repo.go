package postgres

import (
	"context"
	"time"

	"chatboard/internal/domain"
)

var _ domain.PresenceRepository = (*DB)(nil)

// List returns the presence registry ordered by login time.
func (d *DB) List(ctx context.Context) ([]domain.PresenceEntry, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT username, session_id, login_time, last_activity FROM presence ORDER BY login_time, username")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.PresenceEntry
	for rows.Next() {
		var e domain.PresenceEntry
		if err := rows.Scan(&e.Username, &e.SessionID, &e.LoginTime, &e.LastActivity); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Upsert refreshes or inserts the entry for (username, sessionID). The
// primary key makes the operation atomic; no separate lock is needed here.
func (d *DB) Upsert(ctx context.Context, username, sessionID string, now time.Time) error {
	_, err := d.sql.ExecContext(ctx,
		`INSERT INTO presence (username, session_id, login_time, last_activity)
		 VALUES ($1, $2, $3, $3)
		 ON CONFLICT (username, session_id) DO UPDATE SET last_activity = EXCLUDED.last_activity`,
		username, sessionID, now)
	return err
}

// Remove drops the entry for (username, sessionID).
func (d *DB) Remove(ctx context.Context, username, sessionID string) error {
	_, err := d.sql.ExecContext(ctx,
		"DELETE FROM presence WHERE username = $1 AND session_id = $2",
		username, sessionID)
	return err
}

// SweepExpired drops entries idle for timeout or longer.
func (d *DB) SweepExpired(ctx context.Context, timeout time.Duration, now time.Time) (int, error) {
	res, err := d.sql.ExecContext(ctx,
		"DELETE FROM presence WHERE last_activity <= $1",
		now.Add(-timeout))
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}
