package file

import (
	"context"

	"chatboard/internal/domain"
)

// MessageRepo implements domain.MessageRepository on one JSON file. Messages
// already carry the on-disk field names in their JSON tags.
type MessageRepo struct {
	f *jsonFile
}

var _ domain.MessageRepository = (*MessageRepo)(nil)

// NewMessageRepo creates a message log persisted at path.
func NewMessageRepo(path string) *MessageRepo {
	return &MessageRepo{f: newJSONFile(path)}
}

// List returns the log in insertion order.
func (r *MessageRepo) List(ctx context.Context) ([]domain.Message, error) {
	var msgs []domain.Message
	err := r.f.withLock(ctx, func() error {
		var err error
		msgs, err = loadArray[domain.Message](r.f)
		return err
	})
	if err != nil {
		return nil, err
	}
	return msgs, nil
}

// Append adds msg, dropping entries from the front once the log exceeds
// limit. The whole load-transform-persist runs under the file lock.
func (r *MessageRepo) Append(ctx context.Context, msg domain.Message, limit int) error {
	return r.f.withLock(ctx, func() error {
		msgs, err := loadArray[domain.Message](r.f)
		if err != nil {
			return err
		}

		msgs = append(msgs, msg)
		if len(msgs) > limit {
			msgs = msgs[len(msgs)-limit:]
		}
		return r.f.persist(msgs)
	})
}
