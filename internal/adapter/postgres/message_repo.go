package postgres

import (
	"context"

	"chatboard/internal/domain"
)

// MessageRepo exposes the message log stored in PostgreSQL.
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
	rows, err := r.db.sql.QueryContext(ctx,
		"SELECT username, trip, body, stamp FROM messages ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []domain.Message
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.Username, &m.Trip, &m.Body, &m.Timestamp); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// Append inserts msg and trims the log back to limit entries, oldest first,
// in one transaction.
func (r *MessageRepo) Append(ctx context.Context, msg domain.Message, limit int) error {
	tx, err := r.db.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO messages (username, trip, body, stamp) VALUES ($1, $2, $3, $4)",
		msg.Username, msg.Trip, msg.Body, msg.Timestamp); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM messages WHERE id NOT IN (SELECT id FROM messages ORDER BY id DESC LIMIT $1)",
		limit); err != nil {
		return err
	}
	return tx.Commit()
}
