package tui

import (
	"context"
	"errors"

	"github.com/kalev/gymdesk/internal/backend"
	"github.com/kalev/gymdesk/internal/emails"
	"github.com/kalev/gymdesk/internal/mvi"
	"github.com/kalev/gymdesk/internal/result"
)

const minPasswordLen = 8

// RegisterState is the registration screen's full render state.
type RegisterState struct {
	FullName   string
	Email      string
	Password   string
	Confirm    string
	Suggestion string
	Busy       bool
	ErrText    string
}

// RegisterEvent values are one-shot signals out of the registration screen.
type RegisterEvent interface{ isRegisterEvent() }

// Registered fires once the account exists and a session is live.
type Registered struct{}

// BackToLogin asks the app to show the login screen again.
type BackToLogin struct{}

func (Registered) isRegisterEvent()  {}
func (BackToLogin) isRegisterEvent() {}

// RegisterIntent values are the user actions the registration screen
// understands.
type RegisterIntent interface{ isRegisterIntent() }

type RegFullNameChanged struct{ Value string }
type RegEmailChanged struct{ Value string }
type RegPasswordChanged struct{ Value string }
type RegConfirmChanged struct{ Value string }
type RegAcceptSuggestion struct{}
type RegSubmitPressed struct{}
type RegCancelPressed struct{}

func (RegFullNameChanged) isRegisterIntent()  {}
func (RegEmailChanged) isRegisterIntent()     {}
func (RegPasswordChanged) isRegisterIntent()  {}
func (RegConfirmChanged) isRegisterIntent()   {}
func (RegAcceptSuggestion) isRegisterIntent() {}
func (RegSubmitPressed) isRegisterIntent()    {}
func (RegCancelPressed) isRegisterIntent()    {}

const taskSignUp = "sign up"

// RegisterViewModel drives the registration screen.
type RegisterViewModel struct {
	co   *mvi.Coordinator[RegisterState, RegisterEvent]
	deps Deps
}

func NewRegisterViewModel(deps Deps) *RegisterViewModel {
	vm := &RegisterViewModel{deps: deps}
	vm.co = mvi.New[RegisterState, RegisterEvent](func(ctx context.Context) RegisterState {
		return RegisterState{}
	})
	return vm
}

// Dispatch routes one user intent.
func (vm *RegisterViewModel) Dispatch(intent RegisterIntent) {
	switch it := intent.(type) {
	case RegFullNameChanged:
		vm.co.MutateState(func(s RegisterState) RegisterState {
			s.FullName = it.Value
			s.ErrText = ""
			return s
		})
	case RegEmailChanged:
		vm.co.MutateState(func(s RegisterState) RegisterState {
			s.Email = it.Value
			s.ErrText = ""
			s.Suggestion = ""
			if sug, ok := emails.SuggestDomain(it.Value); ok {
				s.Suggestion = sug
			}
			return s
		})
	case RegPasswordChanged:
		vm.co.MutateState(func(s RegisterState) RegisterState {
			s.Password = it.Value
			s.ErrText = ""
			return s
		})
	case RegConfirmChanged:
		vm.co.MutateState(func(s RegisterState) RegisterState {
			s.Confirm = it.Value
			s.ErrText = ""
			return s
		})
	case RegAcceptSuggestion:
		vm.co.MutateState(func(s RegisterState) RegisterState {
			if s.Suggestion != "" {
				s.Email = s.Suggestion
				s.Suggestion = ""
			}
			return s
		})
	case RegSubmitPressed:
		vm.submit()
	case RegCancelPressed:
		vm.co.EmitEvent(BackToLogin{})
	}
}

func validateRegistration(s RegisterState) string {
	switch {
	case s.FullName == "":
		return "Enter your name"
	case !emails.Valid(s.Email):
		return "Enter a valid email address"
	case len(s.Password) < minPasswordLen:
		return "Password needs at least 8 characters"
	case s.Password != s.Confirm:
		return "Passwords do not match"
	}
	return ""
}

func (vm *RegisterViewModel) submit() {
	s, ok := vm.co.CurrentState()
	if !ok || s.Busy {
		return
	}
	if msg := validateRegistration(s); msg != "" {
		vm.co.MutateState(func(s RegisterState) RegisterState { s.ErrText = msg; return s })
		return
	}

	fullName, email, password := s.FullName, s.Email, s.Password
	vm.co.MutateState(func(s RegisterState) RegisterState { s.Busy = true; s.ErrText = ""; return s })
	vm.co.RunTask(taskSignUp, mvi.BackgroundPool, func(ctx context.Context) {
		var res result.Result[backend.Session, error]
		if sess, err := vm.deps.Backend.SignUp(ctx, email, password); err != nil {
			res = result.Failure[backend.Session](err)
		} else {
			res = result.Success[backend.Session, error](sess)
		}

		res.OnSuccess(func(sess backend.Session) {
			vm.deps.Sessions.Set(sess)
			_ = vm.deps.Tokens.Save(sess.RefreshToken)
			_ = vm.deps.Prefs.SetLastEmail(ctx, email)
			// best effort: the profile row can be fixed up from Home later
			_ = vm.deps.Backend.UpsertProfile(ctx, sess, backend.Profile{
				UserID:   sess.User.ID,
				FullName: fullName,
			})
			vm.co.MutateState(func(s RegisterState) RegisterState { s.Busy = false; return s })
			vm.co.EmitEvent(Registered{})
		}).OnError(func(err error) {
			if errors.Is(err, context.Canceled) {
				return
			}
			vm.co.MutateState(func(s RegisterState) RegisterState {
				s.Busy = false
				s.ErrText = authErrText(err)
				return s
			})
		})
	})
}

func (vm *RegisterViewModel) State() (RegisterState, bool) { return vm.co.CurrentState() }
func (vm *RegisterViewModel) Changes() <-chan struct{}     { return vm.co.Changes() }
func (vm *RegisterViewModel) Events() <-chan RegisterEvent { return vm.co.Events() }
func (vm *RegisterViewModel) Close()                       { vm.co.Close() }
