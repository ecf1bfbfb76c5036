package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"chatboard/internal/adapter/memory"
	"chatboard/internal/app"
	"chatboard/internal/domain"

	"golang.org/x/crypto/bcrypt"
)

// mockPresenceRepo uses the function-fields pattern so individual tests can
// observe or fail specific calls.
type mockPresenceRepo struct {
	listFn   func(ctx context.Context) ([]domain.PresenceEntry, error)
	upsertFn func(ctx context.Context, username, sessionID string, now time.Time) error
	removeFn func(ctx context.Context, username, sessionID string) error
	sweepFn  func(ctx context.Context, timeout time.Duration, now time.Time) (int, error)
}

func (m *mockPresenceRepo) List(ctx context.Context) ([]domain.PresenceEntry, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockPresenceRepo) Upsert(ctx context.Context, username, sessionID string, now time.Time) error {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, username, sessionID, now)
	}
	return nil
}

func (m *mockPresenceRepo) Remove(ctx context.Context, username, sessionID string) error {
	if m.removeFn != nil {
		return m.removeFn(ctx, username, sessionID)
	}
	return nil
}

func (m *mockPresenceRepo) SweepExpired(ctx context.Context, timeout time.Duration, now time.Time) (int, error) {
	if m.sweepFn != nil {
		return m.sweepFn(ctx, timeout, now)
	}
	return 0, nil
}

func newSessionService(presence domain.PresenceRepository) *app.SessionService {
	return app.NewSessionService(memory.New(), app.NewPresenceService(presence), app.NewTokenService("salt"), "open-sesame", "")
}

func TestEnsureCreatesSession(t *testing.T) {
	svc := newSessionService(&mockPresenceRepo{})

	sess, err := svc.Ensure(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.ID == "" {
		t.Fatal("expected a fresh session ID")
	}
	if sess.Authenticated || sess.Username != "" {
		t.Fatal("fresh session must be anonymous")
	}
}

func TestEnsureUnknownIDCreatesFreshSession(t *testing.T) {
	svc := newSessionService(&mockPresenceRepo{})

	sess, err := svc.Ensure(context.Background(), "no-such-session")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.ID == "no-such-session" {
		t.Fatal("unknown ID must not be adopted")
	}
}

func TestEnsureRotatesStaleIdentifier(t *testing.T) {
	store := memory.New()
	svc := app.NewSessionService(store, app.NewPresenceService(&mockPresenceRepo{}), app.NewTokenService("salt"), "pw", "")

	stale := &domain.Session{
		ID:            "stale-id",
		Authenticated: true,
		Username:      "Alice",
		CSRFToken:     "tok",
		LastRotation:  time.Now().Add(-10 * time.Minute),
		LastActivity:  time.Now().Add(-10 * time.Minute),
	}
	if err := store.Save(context.Background(), stale); err != nil {
		t.Fatalf("seed session: %v", err)
	}

	sess, err := svc.Ensure(context.Background(), "stale-id")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.ID == "stale-id" {
		t.Fatal("identifier should have rotated")
	}
	if !sess.Authenticated || sess.Username != "Alice" || sess.CSRFToken != "tok" {
		t.Fatal("rotation must preserve session state")
	}

	// The old identifier must be gone.
	if old, _ := store.Get(context.Background(), "stale-id"); old != nil {
		t.Fatal("old identifier still resolves after rotation")
	}
	if cur, _ := store.Get(context.Background(), sess.ID); cur == nil {
		t.Fatal("new identifier does not resolve")
	}
}

func TestEnsureKeepsFreshIdentifier(t *testing.T) {
	svc := newSessionService(&mockPresenceRepo{})

	sess, err := svc.Ensure(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	again, err := svc.Ensure(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again.ID != sess.ID {
		t.Fatal("identifier rotated before the interval elapsed")
	}
}

func TestVerifyPassword(t *testing.T) {
	tests := []struct {
		name      string
		submitted string
		wantErr   error
	}{
		{"correct password", "open-sesame", nil},
		{"wrong password", "guess", app.ErrInvalidPassword},
		{"empty password", "", app.ErrInvalidPassword},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := newSessionService(&mockPresenceRepo{})
			sess, _ := svc.Ensure(context.Background(), "")

			err := svc.VerifyPassword(context.Background(), sess, tc.submitted)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("VerifyPassword = %v; want %v", err, tc.wantErr)
			}
			if wantAuth := tc.wantErr == nil; sess.Authenticated != wantAuth {
				t.Fatalf("Authenticated = %v; want %v", sess.Authenticated, wantAuth)
			}
		})
	}
}

func TestSetUsername(t *testing.T) {
	t.Run("requires password verification", func(t *testing.T) {
		svc := newSessionService(&mockPresenceRepo{})
		sess, _ := svc.Ensure(context.Background(), "")

		if err := svc.SetUsername(context.Background(), sess, "Alice"); !errors.Is(err, app.ErrAuthRequired) {
			t.Fatalf("expected ErrAuthRequired, got %v", err)
		}
	})

	t.Run("registers presence with sanitized name", func(t *testing.T) {
		var gotName, gotSession string
		presence := &mockPresenceRepo{
			upsertFn: func(_ context.Context, username, sessionID string, _ time.Time) error {
				gotName, gotSession = username, sessionID
				return nil
			},
		}
		svc := newSessionService(presence)
		sess, _ := svc.Ensure(context.Background(), "")
		if err := svc.VerifyPassword(context.Background(), sess, "open-sesame"); err != nil {
			t.Fatalf("login: %v", err)
		}

		if err := svc.SetUsername(context.Background(), sess, "  <b>Alice</b> "); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := "&lt;b&gt;Alice&lt;/b&gt;"
		if sess.Username != want {
			t.Fatalf("Username = %q; want %q", sess.Username, want)
		}
		if gotName != want || gotSession != sess.ID {
			t.Fatalf("presence upsert got (%q, %q); want (%q, %q)", gotName, gotSession, want, sess.ID)
		}
		if !svc.IsActive(sess) {
			t.Fatal("session should now be named and active")
		}
	})

	t.Run("validation", func(t *testing.T) {
		tests := []struct {
			name    string
			input   string
			wantErr error
		}{
			{"empty", "", app.ErrEmptyUsername},
			{"whitespace only", "   ", app.ErrEmptyUsername},
			{"too long", repeatRune('x', 51), app.ErrUsernameTooLong},
		}
		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				svc := newSessionService(&mockPresenceRepo{})
				sess, _ := svc.Ensure(context.Background(), "")
				_ = svc.VerifyPassword(context.Background(), sess, "open-sesame")

				if err := svc.SetUsername(context.Background(), sess, tc.input); !errors.Is(err, tc.wantErr) {
					t.Fatalf("SetUsername(%q) = %v; want %v", tc.input, err, tc.wantErr)
				}
			})
		}
	})

	t.Run("storage failure is surfaced", func(t *testing.T) {
		presence := &mockPresenceRepo{
			upsertFn: func(context.Context, string, string, time.Time) error {
				return errors.New("disk full")
			},
		}
		svc := newSessionService(presence)
		sess, _ := svc.Ensure(context.Background(), "")
		_ = svc.VerifyPassword(context.Background(), sess, "open-sesame")

		if err := svc.SetUsername(context.Background(), sess, "Alice"); !errors.Is(err, app.ErrStorageUnavailable) {
			t.Fatalf("expected ErrStorageUnavailable, got %v", err)
		}
	})
}

func TestVerifyPasswordBcrypt(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("open-sesame"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("generate hash: %v", err)
	}
	svc := app.NewSessionService(memory.New(), app.NewPresenceService(&mockPresenceRepo{}), app.NewTokenService("salt"), "", string(hash))
	sess, _ := svc.Ensure(context.Background(), "")

	if err := svc.VerifyPassword(context.Background(), sess, "open-sesame"); err != nil {
		t.Fatalf("expected bcrypt match, got %v", err)
	}
	if err := svc.VerifyPassword(context.Background(), sess, "guess"); !errors.Is(err, app.ErrInvalidPassword) {
		t.Fatalf("expected ErrInvalidPassword, got %v", err)
	}
}

func TestLogout(t *testing.T) {
	var removedName, removedSession string
	presence := &mockPresenceRepo{
		removeFn: func(_ context.Context, username, sessionID string) error {
			removedName, removedSession = username, sessionID
			return nil
		},
	}
	store := memory.New()
	svc := app.NewSessionService(store, app.NewPresenceService(presence), app.NewTokenService("salt"), "open-sesame", "")

	sess, _ := svc.Ensure(context.Background(), "")
	_ = svc.VerifyPassword(context.Background(), sess, "open-sesame")
	if err := svc.SetUsername(context.Background(), sess, "Alice"); err != nil {
		t.Fatalf("set username: %v", err)
	}
	id := sess.ID

	if err := svc.Logout(context.Background(), sess); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if removedName != "Alice" || removedSession != id {
		t.Fatalf("presence remove got (%q, %q); want (%q, %q)", removedName, removedSession, "Alice", id)
	}
	if sess.Authenticated || sess.Username != "" || sess.ID != "" {
		t.Fatal("logout must clear all session state")
	}
	if s, _ := store.Get(context.Background(), id); s != nil {
		t.Fatal("session still resolves after logout")
	}
}

func repeatRune(r rune, n int) string {
	out := make([]rune, n)
	for i := range out {
		out[i] = r
	}
	return string(out)
}
