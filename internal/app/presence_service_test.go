package app_test

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"chatboard/internal/app"
	"chatboard/internal/domain"
)

func TestActiveUsersSweepsThenLists(t *testing.T) {
	swept := false
	repo := &mockPresenceRepo{
		sweepFn: func(_ context.Context, timeout time.Duration, _ time.Time) (int, error) {
			swept = true
			if timeout != app.IdleTimeout {
				t.Fatalf("sweep timeout = %v; want %v", timeout, app.IdleTimeout)
			}
			return 1, nil
		},
		listFn: func(context.Context) ([]domain.PresenceEntry, error) {
			return []domain.PresenceEntry{
				{Username: "Alice", SessionID: "s1"},
				{Username: "Bob", SessionID: "s2"},
				{Username: "Alice", SessionID: "s3"}, // second tab
			}, nil
		},
	}
	svc := app.NewPresenceService(repo)

	users := svc.ActiveUsers(context.Background())
	if !swept {
		t.Fatal("ActiveUsers must sweep expired entries first")
	}
	if want := []string{"Alice", "Bob"}; !reflect.DeepEqual(users, want) {
		t.Fatalf("users = %v; want %v", users, want)
	}
}

func TestActiveUsersDegradesToEmpty(t *testing.T) {
	repo := &mockPresenceRepo{
		listFn: func(context.Context) ([]domain.PresenceEntry, error) {
			return nil, errors.New("corrupt file")
		},
	}
	svc := app.NewPresenceService(repo)

	users := svc.ActiveUsers(context.Background())
	if users == nil || len(users) != 0 {
		t.Fatalf("expected empty (non-nil) user list, got %#v", users)
	}
}

func TestPresenceWriteFailuresSurface(t *testing.T) {
	repo := &mockPresenceRepo{
		upsertFn: func(context.Context, string, string, time.Time) error {
			return errors.New("disk full")
		},
		removeFn: func(context.Context, string, string) error {
			return errors.New("disk full")
		},
	}
	svc := app.NewPresenceService(repo)

	if err := svc.Upsert(context.Background(), "Alice", "s1"); !errors.Is(err, app.ErrStorageUnavailable) {
		t.Fatalf("Upsert error = %v; want ErrStorageUnavailable", err)
	}
	if err := svc.Remove(context.Background(), "Alice", "s1"); !errors.Is(err, app.ErrStorageUnavailable) {
		t.Fatalf("Remove error = %v; want ErrStorageUnavailable", err)
	}
}
