package sqlite

import (
	"context"
	"time"

	"gorm.io/gorm/clause"

	"chatboard/internal/domain"
)

var _ domain.PresenceRepository = (*DB)(nil)

// List returns the presence registry ordered by login time.
func (d *DB) List(ctx context.Context) ([]domain.PresenceEntry, error) {
	var rows []presenceRow
	if err := d.orm.WithContext(ctx).Order("login_time, username").Find(&rows).Error; err != nil {
		return nil, err
	}

	entries := make([]domain.PresenceEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, domain.PresenceEntry{
			Username:     r.Username,
			SessionID:    r.SessionID,
			LoginTime:    r.LoginTime,
			LastActivity: r.LastActivity,
		})
	}
	return entries, nil
}

// Upsert refreshes or inserts the entry for (username, sessionID).
func (d *DB) Upsert(ctx context.Context, username, sessionID string, now time.Time) error {
	row := presenceRow{
		Username:     username,
		SessionID:    sessionID,
		LoginTime:    now,
		LastActivity: now,
	}
	return d.orm.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "username"}, {Name: "session_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_activity"}),
	}).Create(&row).Error
}

// Remove drops the entry for (username, sessionID).
func (d *DB) Remove(ctx context.Context, username, sessionID string) error {
	return d.orm.WithContext(ctx).
		Where("username = ? AND session_id = ?", username, sessionID).
		Delete(&presenceRow{}).Error
}

// SweepExpired drops entries idle for timeout or longer.
func (d *DB) SweepExpired(ctx context.Context, timeout time.Duration, now time.Time) (int, error) {
	res := d.orm.WithContext(ctx).
		Where("last_activity <= ?", now.Add(-timeout)).
		Delete(&presenceRow{})
	if res.Error != nil {
		return 0, res.Error
	}
	return int(res.RowsAffected), nil
}
