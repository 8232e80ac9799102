package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

var ErrNotCached = errors.New("repository: not cached")

// CachedProfile mirrors the backend profile row plus the member's email.
type CachedProfile struct {
	UserID         string
	Email          string
	FullName       string
	MembershipTier string
	HomeGym        string
	UpdatedAt      time.Time
}

// ProfileRepo handles the local profile cache.
type ProfileRepo struct {
	db *sql.DB
}

func NewProfileRepo(db *sql.DB) *ProfileRepo {
	return &ProfileRepo{db: db}
}

func (r *ProfileRepo) Upsert(ctx context.Context, p CachedProfile) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO profiles(user_id, email, full_name, membership_tier, home_gym, updated_at)
	VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(user_id) DO UPDATE SET
	 email=excluded.email,
	 full_name=excluded.full_name,
	 membership_tier=excluded.membership_tier,
	 home_gym=excluded.home_gym,
	 updated_at=CURRENT_TIMESTAMP;
	`, p.UserID, p.Email, p.FullName, p.MembershipTier, p.HomeGym)
	return err
}

func (r *ProfileRepo) Get(ctx context.Context, userID string) (CachedProfile, error) {
	var p CachedProfile
	err := r.db.QueryRowContext(ctx, `
	SELECT user_id, email, full_name, membership_tier, home_gym, updated_at
	FROM profiles WHERE user_id = ?`, userID).
		Scan(&p.UserID, &p.Email, &p.FullName, &p.MembershipTier, &p.HomeGym, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return CachedProfile{}, ErrNotCached
	}
	return p, err
}
