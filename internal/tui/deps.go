// Package tui binds the screen view-models to bubbletea. Each screen owns
// one coordinator; user input becomes Intent values, coordinator state and
// events flow back as tea messages.
package tui

import (
	"context"

	"github.com/kalev/gymdesk/internal/backend"
	"github.com/kalev/gymdesk/internal/cache/repository"
	"github.com/kalev/gymdesk/internal/session"
)

// Backend is the slice of the service client the screens use.
type Backend interface {
	SignUp(ctx context.Context, email, password string) (backend.Session, error)
	SignInWithPassword(ctx context.Context, email, password string) (backend.Session, error)
	RefreshSession(ctx context.Context, refreshToken string) (backend.Session, error)
	SignOut(ctx context.Context, accessToken string) error
	FetchProfile(ctx context.Context, s backend.Session) (backend.Profile, error)
	UpsertProfile(ctx context.Context, s backend.Session, p backend.Profile) error
}

// TokenStore persists the refresh token between runs.
type TokenStore interface {
	Save(refreshToken string) error
	Load() (string, error)
	Clear() error
}

// ProfileCache is the local profile table.
type ProfileCache interface {
	Upsert(ctx context.Context, p repository.CachedProfile) error
	Get(ctx context.Context, userID string) (repository.CachedProfile, error)
}

// PrefStore remembers small UI prefs.
type PrefStore interface {
	SetLastEmail(ctx context.Context, email string) error
	LastEmail(ctx context.Context) (string, error)
}

// Deps carries everything a view-model needs. Wired once in main.
type Deps struct {
	Backend  Backend
	Sessions *session.Holder
	Tokens   TokenStore
	Profiles ProfileCache
	Prefs    PrefStore
}
