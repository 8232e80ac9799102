package repository

import (
	"context"
	"database/sql"
	"errors"
)

const lastEmailKey = "last_email"

// PrefsRepo handles small key/value UI prefs.
type PrefsRepo struct {
	db *sql.DB
}

func NewPrefsRepo(db *sql.DB) *PrefsRepo {
	return &PrefsRepo{db: db}
}

func (r *PrefsRepo) set(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO prefs(key, value) VALUES (?, ?)
	ON CONFLICT(key) DO UPDATE SET value=excluded.value;
	`, key, value)
	return err
}

func (r *PrefsRepo) get(ctx context.Context, key string) (string, error) {
	var v string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM prefs WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotCached
	}
	return v, err
}

// SetLastEmail remembers the most recently used sign-in email.
func (r *PrefsRepo) SetLastEmail(ctx context.Context, email string) error {
	return r.set(ctx, lastEmailKey, email)
}

// LastEmail returns the remembered sign-in email, ErrNotCached when none.
func (r *PrefsRepo) LastEmail(ctx context.Context) (string, error) {
	return r.get(ctx, lastEmailKey)
}
