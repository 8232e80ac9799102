package tui

import (
	"context"
	"errors"

	"github.com/kalev/gymdesk/internal/backend"
	"github.com/kalev/gymdesk/internal/cache/repository"
	"github.com/kalev/gymdesk/internal/mvi"
	"github.com/kalev/gymdesk/internal/result"
)

// HomeState is the landing screen's full render state.
type HomeState struct {
	Email          string
	FullName       string
	MembershipTier string
	HomeGym        string
	FromCache      bool // profile shown is the local copy, refresh pending
	Loading        bool
	ErrText        string
}

// HomeEvent values are one-shot signals out of the home screen.
type HomeEvent interface{ isHomeEvent() }

// SignedOut fires once the session is gone and login should be shown.
type SignedOut struct{}

func (SignedOut) isHomeEvent() {}

// HomeIntent values are the user actions the home screen understands.
type HomeIntent interface{ isHomeIntent() }

type RefreshPressed struct{}
type SignOutPressed struct{}

func (RefreshPressed) isHomeIntent() {}
func (SignOutPressed) isHomeIntent() {}

const (
	taskLoadProfile = "load profile"
	taskSignOut     = "sign out"
)

// HomeViewModel drives the post-login landing screen.
type HomeViewModel struct {
	co   *mvi.Coordinator[HomeState, HomeEvent]
	deps Deps
}

func NewHomeViewModel(deps Deps) *HomeViewModel {
	vm := &HomeViewModel{deps: deps}
	vm.co = mvi.New[HomeState, HomeEvent](vm.initialState)
	// FIFO dispatcher: this runs after the initial state is in place
	vm.co.RunTask(taskLoadProfile, mvi.MainDispatcher, vm.loadProfile)
	return vm
}

// initialState renders the cached profile immediately; the refresh task
// replaces it with the live row.
func (vm *HomeViewModel) initialState(ctx context.Context) HomeState {
	sess, ok := vm.deps.Sessions.Get()
	if !ok {
		return HomeState{Loading: false}
	}
	s := HomeState{Email: sess.User.Email, Loading: true}
	if cached, err := vm.deps.Profiles.Get(ctx, sess.User.ID); err == nil {
		s.FullName = cached.FullName
		s.MembershipTier = cached.MembershipTier
		s.HomeGym = cached.HomeGym
		s.FromCache = true
	}
	return s
}

// loadProfile fetches the live profile row and refreshes the local cache.
func (vm *HomeViewModel) loadProfile(ctx context.Context) {
	sess, ok := vm.deps.Sessions.Get()
	if !ok {
		vm.co.EmitEvent(SignedOut{})
		return
	}

	var res result.Result[backend.Profile, error]
	if p, err := vm.deps.Backend.FetchProfile(ctx, sess); err != nil {
		res = result.Failure[backend.Profile](err)
	} else {
		res = result.Success[backend.Profile, error](p)
	}

	res.OnSuccess(func(p backend.Profile) {
		_ = vm.deps.Profiles.Upsert(ctx, repository.CachedProfile{
			UserID:         p.UserID,
			Email:          sess.User.Email,
			FullName:       p.FullName,
			MembershipTier: p.MembershipTier,
			HomeGym:        p.HomeGym,
		})
		vm.co.MutateState(func(s HomeState) HomeState {
			s.FullName = p.FullName
			s.MembershipTier = p.MembershipTier
			s.HomeGym = p.HomeGym
			s.FromCache = false
			s.Loading = false
			s.ErrText = ""
			return s
		})
	}).OnError(func(err error) {
		if errors.Is(err, context.Canceled) {
			return
		}
		if errors.Is(err, backend.ErrUnauthorized) {
			vm.co.EmitEvent(SignedOut{})
			return
		}
		vm.co.MutateState(func(s HomeState) HomeState {
			s.Loading = false
			if errors.Is(err, backend.ErrNotFound) {
				s.ErrText = "No profile on file yet"
			} else if s.FromCache {
				s.ErrText = "Offline, showing the cached profile"
			} else {
				s.ErrText = authErrText(err)
			}
			return s
		})
	})
}

// Dispatch routes one user intent.
func (vm *HomeViewModel) Dispatch(intent HomeIntent) {
	switch intent.(type) {
	case RefreshPressed:
		vm.co.MutateState(func(s HomeState) HomeState { s.Loading = true; s.ErrText = ""; return s })
		vm.co.RunTask(taskLoadProfile, mvi.BackgroundPool, vm.loadProfile)
	case SignOutPressed:
		vm.signOut()
	}
}

func (vm *HomeViewModel) signOut() {
	vm.co.RunTask(taskSignOut, mvi.BackgroundPool, func(ctx context.Context) {
		if sess, ok := vm.deps.Sessions.Get(); ok {
			// revoking server-side is best effort
			_ = vm.deps.Backend.SignOut(ctx, sess.AccessToken)
		}
		vm.deps.Sessions.Clear()
		_ = vm.deps.Tokens.Clear()
		vm.co.EmitEvent(SignedOut{})
	})
}

func (vm *HomeViewModel) State() (HomeState, bool) { return vm.co.CurrentState() }
func (vm *HomeViewModel) Changes() <-chan struct{} { return vm.co.Changes() }
func (vm *HomeViewModel) Events() <-chan HomeEvent { return vm.co.Events() }
func (vm *HomeViewModel) Close()                   { vm.co.Close() }
