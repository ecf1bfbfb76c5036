package app

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"chatboard/internal/domain"
)

const (
	// MessageCap is the retention limit of the log; the oldest entries are
	// evicted first once an append would exceed it.
	MessageCap = 50
	// MaxMessageRunes caps the message body length, counted by codepoint.
	MaxMessageRunes = 500
)

// MessageService encapsulates the bounded chat log use cases.
type MessageService struct {
	repo   domain.MessageRepository
	tokens *TokenService
}

// NewMessageService creates a MessageService backed by the given repository,
// using tokens to derive trip badges.
func NewMessageService(repo domain.MessageRepository, tokens *TokenService) *MessageService {
	return &MessageService{repo: repo, tokens: tokens}
}

// List returns the log in chronological order. Absent or corrupt storage
// degrades to an empty board on this read path.
func (s *MessageService) List(ctx context.Context) []domain.Message {
	msgs, err := s.repo.List(ctx)
	if err != nil {
		log.Printf("message list failed, treating as empty: %v", err)
		return []domain.Message{}
	}
	if msgs == nil {
		msgs = []domain.Message{}
	}
	return msgs
}

// Append validates, sanitizes, and stores one message from displayName. An
// optional tripSecret yields a pseudonymous badge; the secret itself is
// never stored. A write that did not persist is reported as an error, never
// as a silent success.
func (s *MessageService) Append(ctx context.Context, displayName, tripSecret, body string) error {
	body = strings.TrimSpace(body)
	if body == "" {
		return ErrEmptyMessage
	}
	if utf8.RuneCountInString(body) > MaxMessageRunes {
		return ErrMessageTooLong
	}

	msg := domain.Message{
		Username:  domain.Sanitize(displayName),
		Trip:      s.tokens.DeriveTrip(strings.TrimSpace(tripSecret)),
		Body:      domain.Sanitize(body),
		Timestamp: time.Now().Format(domain.MessageTimeLayout),
	}
	if err := s.repo.Append(ctx, msg, MessageCap); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}
