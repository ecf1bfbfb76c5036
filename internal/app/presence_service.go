package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"chatboard/internal/domain"
)

// PresenceService encapsulates the who-is-online use cases over the
// presence registry.
type PresenceService struct {
	repo domain.PresenceRepository
}

// NewPresenceService creates a PresenceService backed by the given
// repository.
func NewPresenceService(repo domain.PresenceRepository) *PresenceService {
	return &PresenceService{repo: repo}
}

// ActiveUsers sweeps idle entries and returns the deduplicated display names
// of everyone still present, in first-seen order. There is no background
// scheduler; expiry is driven by whichever read happens to land here, so
// expiry latency equals the client polling interval. A storage failure on
// this read path degrades to an empty board rather than an error.
func (s *PresenceService) ActiveUsers(ctx context.Context) []string {
	if _, err := s.repo.SweepExpired(ctx, IdleTimeout, time.Now()); err != nil {
		log.Printf("presence sweep failed: %v", err)
	}

	entries, err := s.repo.List(ctx)
	if err != nil {
		log.Printf("presence list failed, treating as empty: %v", err)
		return []string{}
	}

	seen := make(map[string]bool, len(entries))
	users := make([]string, 0, len(entries))
	for _, e := range entries {
		if !seen[e.Username] {
			seen[e.Username] = true
			users = append(users, e.Username)
		}
	}
	return users
}

// Upsert records (username, sessionID) as present, refreshing LastActivity
// when the pair is already registered.
func (s *PresenceService) Upsert(ctx context.Context, username, sessionID string) error {
	if err := s.repo.Upsert(ctx, username, sessionID, time.Now()); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

// Remove unregisters (username, sessionID). Removing an absent pair
// succeeds.
func (s *PresenceService) Remove(ctx context.Context, username, sessionID string) error {
	if err := s.repo.Remove(ctx, username, sessionID); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}
