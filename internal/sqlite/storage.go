package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"calassist/internal"
)

const DriverName = "sqlite3"

type Storage struct {
	db *sqlx.DB
}

func NewStorage(db *sql.DB) *Storage {
	s := &Storage{
		db: sqlx.NewDb(db, DriverName),
	}
	err := s.RunMigrations()
	if err != nil {
		panic(fmt.Sprintf("sqlite: running migrations: %v", err))
	}
	return s
}

func (s Storage) AddAccount(ctx context.Context, account *internal.Account) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (id, auth) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET auth=?;
	`, account.ID(), account.Auth, account.Auth)
	return err
}

// Account loads stored credentials by "platform/name" id. A missing
// account is reported as internal.ErrNotFound.
func (s Storage) Account(ctx context.Context, id string) (*internal.Account, error) {
	var auth string
	err := s.db.GetContext(ctx, &auth, `
		SELECT auth FROM accounts WHERE id = ?
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("account %q: %w", id, internal.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	var acc internal.Account
	acc.Platform, acc.Name, _ = strings.Cut(id, "/")
	acc.Auth = auth
	return &acc, nil
}

// AccountIDs lists every stored account id ("platform/name").
func (s Storage) AccountIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := s.db.SelectContext(ctx, &ids, `
		SELECT id FROM accounts ORDER BY id
	`)
	return ids, err
}

func (s Storage) RecordHistory(ctx context.Context, owner, action, payload string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO history (owner, action, payload) VALUES (?, ?, ?)
	`, owner, action, payload)
	return err
}

// History returns the most recent actions for an owner, newest first.
func (s Storage) History(ctx context.Context, owner string, limit int) ([]internal.HistoryEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	var entries []internal.HistoryEntry
	err := s.db.SelectContext(ctx, &entries, `
		SELECT action, payload, created_at
		FROM history
		WHERE owner = ?
		ORDER BY id DESC
		LIMIT ?
	`, owner, limit)
	return entries, err
}
