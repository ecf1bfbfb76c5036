package app

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"log"
	"time"
	"unicode/utf8"

	"chatboard/internal/domain"

	"golang.org/x/crypto/bcrypt"
)

const (
	// RotationInterval is how long a session keeps one opaque identifier
	// before it is replaced, limiting the exposure window of a stolen
	// cookie.
	RotationInterval = 300 * time.Second
	// IdleTimeout is how long a presence entry may sit without activity
	// before the sweep evicts it. Twice the rotation interval, matching
	// the polling client's worst-case cadence.
	IdleTimeout = 2 * RotationInterval
	// MaxUsernameRunes caps the display name length, counted by codepoint.
	MaxUsernameRunes = 50
)

// SessionService owns the authenticated-principal concept: session creation,
// periodic identifier rotation, the password gate, display-name entry, and
// logout.
type SessionService struct {
	sessions domain.SessionRepository
	presence *PresenceService
	tokens   *TokenService

	// Exactly one of these is consulted: when passwordHash is set the
	// shared secret is checked with bcrypt, otherwise password is compared
	// in constant time.
	password     string
	passwordHash string
}

// NewSessionService creates a SessionService backed by the given session
// store and presence service. password is the shared board secret in plain
// text; passwordHash, when non-empty, is its bcrypt hash and takes
// precedence.
func NewSessionService(sessions domain.SessionRepository, presence *PresenceService, tokens *TokenService, password, passwordHash string) *SessionService {
	return &SessionService{
		sessions:     sessions,
		presence:     presence,
		tokens:       tokens,
		password:     password,
		passwordHash: passwordHash,
	}
}

// IssueCSRF returns the session's anti-forgery token, generating and
// persisting one on first use.
func (s *SessionService) IssueCSRF(ctx context.Context, sess *domain.Session) (string, error) {
	tok, err := s.tokens.IssueCSRF(sess)
	if err != nil {
		return "", err
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}
	return tok, nil
}

// VerifyCSRF checks a submitted anti-forgery token against the session's.
func (s *SessionService) VerifyCSRF(sess *domain.Session, submitted string) bool {
	return s.tokens.VerifyCSRF(sess, submitted)
}

// Ensure returns the session for id, creating a fresh anonymous session when
// id is empty or unknown. When the rotation interval has elapsed since the
// last rotation the opaque identifier is replaced while all other state is
// preserved; a rotation is applied atomically or not at all. LastActivity is
// always stamped.
func (s *SessionService) Ensure(ctx context.Context, id string) (*domain.Session, error) {
	now := time.Now()

	var sess *domain.Session
	if id != "" {
		var err error
		sess, err = s.sessions.Get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("load session: %w", err)
		}
	}

	if sess == nil {
		newID, err := newSessionID()
		if err != nil {
			return nil, err
		}
		sess = &domain.Session{
			ID:           newID,
			LastRotation: now,
			LastActivity: now,
		}
		if err := s.sessions.Save(ctx, sess); err != nil {
			return nil, fmt.Errorf("create session: %w", err)
		}
		return sess, nil
	}

	if now.Sub(sess.LastRotation) > RotationInterval {
		newID, err := newSessionID()
		if err == nil {
			err = s.sessions.Rename(ctx, sess.ID, newID)
		}
		if err != nil {
			// Non-fatal: the caller keeps the old identifier and
			// rotation is retried on the next request.
			log.Printf("session rotation failed for %s: %v", sess.ID, err)
		} else {
			sess.ID = newID
			sess.LastRotation = now
		}
	}

	sess.LastActivity = now
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return sess, nil
}

// VerifyPassword checks the shared board secret and, on success, moves the
// session to the password-verified state.
func (s *SessionService) VerifyPassword(ctx context.Context, sess *domain.Session, submitted string) error {
	if s.passwordHash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(submitted)); err != nil {
			return ErrInvalidPassword
		}
	} else if subtle.ConstantTimeCompare([]byte(s.password), []byte(submitted)) != 1 {
		return ErrInvalidPassword
	}

	sess.Authenticated = true
	if err := s.sessions.Save(ctx, sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// SetUsername records the caller's display name and registers them in the
// presence registry, completing the transition to named-and-active. The name
// is sanitized before it is stored anywhere.
func (s *SessionService) SetUsername(ctx context.Context, sess *domain.Session, raw string) error {
	if sess == nil || !sess.Authenticated {
		return ErrAuthRequired
	}

	name := domain.Sanitize(raw)
	if name == "" {
		return ErrEmptyUsername
	}
	if utf8.RuneCountInString(name) > MaxUsernameRunes {
		return ErrUsernameTooLong
	}

	sess.Username = name
	if err := s.sessions.Save(ctx, sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	if err := s.presence.Upsert(ctx, name, sess.ID); err != nil {
		log.Printf("presence upsert failed for %s: %v", name, err)
		return err
	}
	return nil
}

// IsActive reports whether the session is in the named-and-active state, the
// only state that counts as logged in.
func (s *SessionService) IsActive(sess *domain.Session) bool {
	return sess.Named()
}

// Touch refreshes the caller's presence entry. Called by presence-observing
// request paths for named sessions.
func (s *SessionService) Touch(ctx context.Context, sess *domain.Session) {
	if !sess.Named() {
		return
	}
	if err := s.presence.Upsert(ctx, sess.Username, sess.ID); err != nil {
		log.Printf("presence touch failed for %s: %v", sess.Username, err)
	}
}

// Logout removes the caller from the presence registry and discards all
// session state. The presence removal is best-effort; the session is
// destroyed regardless.
func (s *SessionService) Logout(ctx context.Context, sess *domain.Session) error {
	if sess == nil {
		return nil
	}
	if sess.Named() {
		if err := s.presence.Remove(ctx, sess.Username, sess.ID); err != nil {
			log.Printf("presence remove failed for %s: %v", sess.Username, err)
		}
	}
	if err := s.sessions.Delete(ctx, sess.ID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	*sess = domain.Session{}
	return nil
}

func newSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
