package domain

import "context"

// MessageTimeLayout is the on-disk timestamp format of a chat message.
const MessageTimeLayout = "2006-01-02 15:04:05"

// Message is one chat entry. Immutable once written; eventually evicted by
// the retention cap. Username and Body are stored already HTML-escaped, so
// stored content is safe to render verbatim. Trip is the pseudonymous badge
// derived from an optional per-post secret; it is empty when no secret was
// supplied and never carries the secret itself.
//
// The JSON field names are the wire and on-disk contract.
type Message struct {
	Username  string `json:"username"`
	Trip      string `json:"trip"`
	Body      string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// MessageRepository defines the port for the bounded message log.
//
// The same single-lock read-transform-write contract as PresenceRepository
// applies to Append.
type MessageRepository interface {
	// List returns the log in insertion (chronological) order.
	List(ctx context.Context) ([]Message, error)
	// Append adds msg to the end of the log. When the log would exceed
	// limit entries, the oldest entries are dropped first.
	Append(ctx context.Context, msg Message, limit int) error
}
