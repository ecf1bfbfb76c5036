package sqlite

import (
	"context"

	"gorm.io/gorm"

	"chatboard/internal/domain"
)

// MessageRepo exposes the message log stored in SQLite.
type MessageRepo struct {
	db *DB
}

var _ domain.MessageRepository = (*MessageRepo)(nil)

// Messages returns the message repository view of the store.
func (d *DB) Messages() *MessageRepo {
	return &MessageRepo{db: d}
}

// List returns the log in insertion order.
func (r *MessageRepo) List(ctx context.Context) ([]domain.Message, error) {
	var rows []messageRow
	if err := r.db.orm.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}

	var msgs []domain.Message
	for _, row := range rows {
		msgs = append(msgs, domain.Message{
			Username:  row.Username,
			Trip:      row.Trip,
			Body:      row.Body,
			Timestamp: row.Stamp,
		})
	}
	return msgs, nil
}

// Append inserts msg and trims the log back to limit entries, oldest first,
// in one transaction.
func (r *MessageRepo) Append(ctx context.Context, msg domain.Message, limit int) error {
	return r.db.orm.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := messageRow{
			Username: msg.Username,
			Trip:     msg.Trip,
			Body:     msg.Body,
			Stamp:    msg.Timestamp,
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		return tx.Exec(
			"DELETE FROM messages WHERE id NOT IN (SELECT id FROM messages ORDER BY id DESC LIMIT ?)",
			limit,
		).Error
	})
}
