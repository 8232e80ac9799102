package tui

import (
	"context"
	"errors"

	"github.com/kalev/gymdesk/internal/backend"
	"github.com/kalev/gymdesk/internal/emails"
	"github.com/kalev/gymdesk/internal/mvi"
	"github.com/kalev/gymdesk/internal/result"
)

// LoginState is the login screen's full render state.
type LoginState struct {
	Email      string
	Password   string
	Suggestion string // corrected address when the domain looks mistyped
	Busy       bool
	ErrText    string
	Restoring  bool // silent session restore in flight
}

// LoginEvent values are one-shot signals out of the login screen.
type LoginEvent interface{ isLoginEvent() }

// LoggedIn fires once a session is established (typed or restored).
type LoggedIn struct{}

// GoToRegister asks the app to show the registration screen.
type GoToRegister struct{}

func (LoggedIn) isLoginEvent()     {}
func (GoToRegister) isLoginEvent() {}

// LoginIntent values are the user actions the login screen understands.
type LoginIntent interface{ isLoginIntent() }

type EmailChanged struct{ Value string }
type PasswordChanged struct{ Value string }
type AcceptSuggestion struct{}
type SubmitPressed struct{}
type RegisterPressed struct{}

func (EmailChanged) isLoginIntent()     {}
func (PasswordChanged) isLoginIntent()  {}
func (AcceptSuggestion) isLoginIntent() {}
func (SubmitPressed) isLoginIntent()    {}
func (RegisterPressed) isLoginIntent()  {}

const (
	taskRestoreSession = "restore session"
	taskSignIn         = "sign in"
)

// LoginViewModel drives the login screen.
type LoginViewModel struct {
	co   *mvi.Coordinator[LoginState, LoginEvent]
	deps Deps
}

func NewLoginViewModel(deps Deps) *LoginViewModel {
	vm := &LoginViewModel{deps: deps}
	vm.co = mvi.New[LoginState, LoginEvent](vm.initialState)
	// FIFO dispatcher: this runs after the initial state is in place
	vm.co.RunTask(taskRestoreSession, mvi.MainDispatcher, vm.restoreSession)
	return vm
}

// initialState prefills the remembered email and flags the silent session
// restore that follows.
func (vm *LoginViewModel) initialState(ctx context.Context) LoginState {
	s := LoginState{}
	if email, err := vm.deps.Prefs.LastEmail(ctx); err == nil {
		s.Email = email
	}
	if _, err := vm.deps.Tokens.Load(); err == nil {
		s.Restoring = true
	}
	return s
}

// restoreSession turns a stored refresh token into a live session without
// user interaction.
func (vm *LoginViewModel) restoreSession(ctx context.Context) {
	var tokRes result.Result[string, error]
	if tok, err := vm.deps.Tokens.Load(); err != nil {
		tokRes = result.Failure[string](err)
	} else {
		tokRes = result.Success[string, error](tok)
	}

	sessRes, ok := result.AndThenIfSuccess(tokRes, func(tok string) result.Result[backend.Session, error] {
		sess, err := vm.deps.Backend.RefreshSession(ctx, tok)
		if err != nil {
			return result.Failure[backend.Session](err)
		}
		return result.Success[backend.Session, error](sess)
	})
	if !ok {
		// nothing stored, stay on the form
		return
	}

	sessRes.OnSuccess(func(sess backend.Session) {
		vm.deps.Sessions.Set(sess)
		_ = vm.deps.Tokens.Save(sess.RefreshToken)
		vm.co.MutateState(func(s LoginState) LoginState { s.Restoring = false; return s })
		vm.co.EmitEvent(LoggedIn{})
	}).OnError(func(err error) {
		// stale token, require a fresh login
		_ = vm.deps.Tokens.Clear()
		vm.co.MutateState(func(s LoginState) LoginState { s.Restoring = false; return s })
	})
}

// Dispatch routes one user intent.
func (vm *LoginViewModel) Dispatch(intent LoginIntent) {
	switch it := intent.(type) {
	case EmailChanged:
		vm.co.MutateState(func(s LoginState) LoginState {
			s.Email = it.Value
			s.ErrText = ""
			s.Suggestion = ""
			if sug, ok := emails.SuggestDomain(it.Value); ok {
				s.Suggestion = sug
			}
			return s
		})
	case PasswordChanged:
		vm.co.MutateState(func(s LoginState) LoginState {
			s.Password = it.Value
			s.ErrText = ""
			return s
		})
	case AcceptSuggestion:
		vm.co.MutateState(func(s LoginState) LoginState {
			if s.Suggestion != "" {
				s.Email = s.Suggestion
				s.Suggestion = ""
			}
			return s
		})
	case SubmitPressed:
		vm.submit()
	case RegisterPressed:
		vm.co.EmitEvent(GoToRegister{})
	}
}

func (vm *LoginViewModel) submit() {
	s, ok := vm.co.CurrentState()
	if !ok || s.Busy {
		return
	}
	if !emails.Valid(s.Email) {
		vm.co.MutateState(func(s LoginState) LoginState { s.ErrText = "Enter a valid email address"; return s })
		return
	}
	if s.Password == "" {
		vm.co.MutateState(func(s LoginState) LoginState { s.ErrText = "Enter your password"; return s })
		return
	}

	email, password := s.Email, s.Password
	vm.co.MutateState(func(s LoginState) LoginState { s.Busy = true; s.ErrText = ""; return s })
	vm.co.RunTask(taskSignIn, mvi.BackgroundPool, func(ctx context.Context) {
		var res result.Result[backend.Session, error]
		if sess, err := vm.deps.Backend.SignInWithPassword(ctx, email, password); err != nil {
			res = result.Failure[backend.Session](err)
		} else {
			res = result.Success[backend.Session, error](sess)
		}

		res.OnSuccess(func(sess backend.Session) {
			vm.deps.Sessions.Set(sess)
			_ = vm.deps.Tokens.Save(sess.RefreshToken)
			_ = vm.deps.Prefs.SetLastEmail(ctx, email)
			vm.co.MutateState(func(s LoginState) LoginState { s.Busy = false; s.Password = ""; return s })
			vm.co.EmitEvent(LoggedIn{})
		}).OnError(func(err error) {
			if errors.Is(err, context.Canceled) {
				return
			}
			vm.co.MutateState(func(s LoginState) LoginState {
				s.Busy = false
				s.ErrText = authErrText(err)
				return s
			})
		})
	})
}

func (vm *LoginViewModel) State() (LoginState, bool) { return vm.co.CurrentState() }
func (vm *LoginViewModel) Changes() <-chan struct{}  { return vm.co.Changes() }
func (vm *LoginViewModel) Events() <-chan LoginEvent { return vm.co.Events() }
func (vm *LoginViewModel) Close()                    { vm.co.Close() }

func authErrText(err error) string {
	switch {
	case errors.Is(err, backend.ErrInvalidCredentials):
		return "Wrong email or password"
	case errors.Is(err, backend.ErrEmailTaken):
		return "That email is already registered"
	case errors.Is(err, backend.ErrUnauthorized):
		return "Session expired, sign in again"
	default:
		return "Could not reach the service, try again"
	}
}
