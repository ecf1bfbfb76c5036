package app

import (
	"crypto/rand"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"chatboard/internal/domain"
)

// tripMarker prefixes every derived badge so it cannot be confused with a
// typed name.
const tripMarker = "◆"

// tripHexLen is how many hex digits of the digest make up a badge.
const tripHexLen = 8

// TokenService issues per-session anti-forgery tokens and derives
// pseudonymous trip badges from a server-side salt.
type TokenService struct {
	tripSalt string
}

// NewTokenService creates a TokenService with the given trip salt.
func NewTokenService(tripSalt string) *TokenService {
	return &TokenService{tripSalt: tripSalt}
}

// IssueCSRF returns the session's anti-forgery token, generating and storing
// one on first use. Idempotent per session.
func (t *TokenService) IssueCSRF(s *domain.Session) (string, error) {
	if s.CSRFToken != "" {
		return s.CSRFToken, nil
	}
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate csrf token: %w", err)
	}
	s.CSRFToken = hex.EncodeToString(b)
	return s.CSRFToken, nil
}

// VerifyCSRF reports whether submitted matches the session's stored token.
// The comparison is constant-time; a missing session token or empty
// submission always fails.
func (t *TokenService) VerifyCSRF(s *domain.Session, submitted string) bool {
	if s == nil || s.CSRFToken == "" || submitted == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(s.CSRFToken), []byte(submitted)) == 1
}

// DeriveTrip derives a trip badge from an optional per-post secret. An empty
// secret yields an empty badge. The badge is a weak pseudonym in the
// tripcode tradition: the same secret always produces the same badge on the
// same server, and the secret itself is never stored or displayed. It is
// deliberately short and offers no meaningful brute-force resistance; it is
// an identity marker, not authentication.
func (t *TokenService) DeriveTrip(secret string) string {
	if secret == "" {
		return ""
	}
	sum := sha1.Sum([]byte(secret + t.tripSalt))
	return tripMarker + hex.EncodeToString(sum[:])[:tripHexLen]
}
