package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"calassist/internal"
)

func newStorage(t *testing.T) *Storage {
	t.Helper()
	db, err := sql.Open(DriverName, ":memory:")
	if err != nil {
		t.Fatal("opening database:", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewStorage(db)
}

func TestAccountRoundTrip(t *testing.T) {
	ctx := context.Background()
	storage := newStorage(t)

	acc := &internal.Account{Platform: "google", Name: "me@example.com", Auth: "token-1"}
	if err := storage.AddAccount(ctx, acc); err != nil {
		t.Fatal("unexpected error:", err)
	}

	got, err := storage.Account(ctx, "google/me@example.com")
	if err != nil {
		t.Fatal("unexpected error:", err)
	}
	if got.Platform != "google" || got.Name != "me@example.com" || got.Auth != "token-1" {
		t.Errorf("unexpected account: %+v", got)
	}
}

func TestAddAccountReplacesAuth(t *testing.T) {
	ctx := context.Background()
	storage := newStorage(t)

	acc := &internal.Account{Platform: "google", Name: "me@example.com", Auth: "token-1"}
	if err := storage.AddAccount(ctx, acc); err != nil {
		t.Fatal("unexpected error:", err)
	}
	acc.Auth = "token-2"
	if err := storage.AddAccount(ctx, acc); err != nil {
		t.Fatal("unexpected error:", err)
	}

	got, err := storage.Account(ctx, acc.ID())
	if err != nil {
		t.Fatal("unexpected error:", err)
	}
	if got.Auth != "token-2" {
		t.Error("expected refreshed auth, got:", got.Auth)
	}
}

func TestAccountIDs(t *testing.T) {
	ctx := context.Background()
	storage := newStorage(t)

	ids, err := storage.AccountIDs(ctx)
	if err != nil {
		t.Fatal("unexpected error:", err)
	}
	if len(ids) != 0 {
		t.Fatal("expected no accounts, got", ids)
	}

	for _, name := range []string{"b@example.com", "a@example.com"} {
		acc := &internal.Account{Platform: "google", Name: name, Auth: "t"}
		if err := storage.AddAccount(ctx, acc); err != nil {
			t.Fatal("unexpected error:", err)
		}
	}

	ids, err = storage.AccountIDs(ctx)
	if err != nil {
		t.Fatal("unexpected error:", err)
	}
	if len(ids) != 2 || ids[0] != "google/a@example.com" {
		t.Errorf("unexpected ids: %v", ids)
	}
}

func TestAccountNotFound(t *testing.T) {
	storage := newStorage(t)

	_, err := storage.Account(context.Background(), "google/nobody@example.com")
	if !errors.Is(err, internal.ErrNotFound) {
		t.Fatal("expected ErrNotFound, got:", err)
	}
}

func TestHistoryNewestFirst(t *testing.T) {
	ctx := context.Background()
	storage := newStorage(t)

	for _, action := range []string{"create", "create", "undo"} {
		if err := storage.RecordHistory(ctx, "me@example.com", action, "{}"); err != nil {
			t.Fatal("unexpected error:", err)
		}
	}
	if err := storage.RecordHistory(ctx, "other@example.com", "create", "{}"); err != nil {
		t.Fatal("unexpected error:", err)
	}

	entries, err := storage.History(ctx, "me@example.com", 2)
	if err != nil {
		t.Fatal("unexpected error:", err)
	}
	if len(entries) != 2 {
		t.Fatal("expected 2 entries, got", len(entries))
	}
	if entries[0].Action != "undo" || entries[1].Action != "create" {
		t.Errorf("unexpected order: %q %q", entries[0].Action, entries[1].Action)
	}
}
