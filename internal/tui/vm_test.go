package tui

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/kalev/gymdesk/internal/backend"
	"github.com/kalev/gymdesk/internal/cache/repository"
	"github.com/kalev/gymdesk/internal/session"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeBackend scripts the service responses per call.
type fakeBackend struct {
	mu sync.Mutex

	signInSession backend.Session
	signInErr     error
	signUpSession backend.Session
	signUpErr     error
	refreshSess   backend.Session
	refreshErr    error
	profile       backend.Profile
	profileErr    error
	upsertErr     error

	signOutCalls int
	upserted     []backend.Profile
}

func (f *fakeBackend) SignUp(ctx context.Context, email, password string) (backend.Session, error) {
	return f.signUpSession, f.signUpErr
}

func (f *fakeBackend) SignInWithPassword(ctx context.Context, email, password string) (backend.Session, error) {
	return f.signInSession, f.signInErr
}

func (f *fakeBackend) RefreshSession(ctx context.Context, refreshToken string) (backend.Session, error) {
	return f.refreshSess, f.refreshErr
}

func (f *fakeBackend) SignOut(ctx context.Context, accessToken string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signOutCalls++
	return nil
}

func (f *fakeBackend) FetchProfile(ctx context.Context, s backend.Session) (backend.Profile, error) {
	return f.profile, f.profileErr
}

func (f *fakeBackend) UpsertProfile(ctx context.Context, s backend.Session, p backend.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserted = append(f.upserted, p)
	return f.upsertErr
}

// fakeTokens is an in-memory TokenStore.
type fakeTokens struct {
	mu    sync.Mutex
	token string
}

func (f *fakeTokens) Save(refreshToken string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = refreshToken
	return nil
}

func (f *fakeTokens) Load() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.token == "" {
		return "", session.ErrNotFound
	}
	return f.token, nil
}

func (f *fakeTokens) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = ""
	return nil
}

func (f *fakeTokens) current() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

// fakeProfiles is an in-memory ProfileCache.
type fakeProfiles struct {
	mu   sync.Mutex
	rows map[string]repository.CachedProfile
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{rows: make(map[string]repository.CachedProfile)}
}

func (f *fakeProfiles) Upsert(ctx context.Context, p repository.CachedProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[p.UserID] = p
	return nil
}

func (f *fakeProfiles) Get(ctx context.Context, userID string) (repository.CachedProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.rows[userID]
	if !ok {
		return repository.CachedProfile{}, repository.ErrNotCached
	}
	return p, nil
}

// fakePrefs is an in-memory PrefStore.
type fakePrefs struct {
	mu    sync.Mutex
	email string
}

func (f *fakePrefs) SetLastEmail(ctx context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.email = email
	return nil
}

func (f *fakePrefs) LastEmail(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.email, nil
}

func testDeps(b *fakeBackend) (Deps, *fakeTokens, *fakeProfiles, *fakePrefs) {
	tokens := &fakeTokens{}
	profiles := newFakeProfiles()
	prefs := &fakePrefs{}
	return Deps{
		Backend:  b,
		Sessions: session.NewHolder(),
		Tokens:   tokens,
		Profiles: profiles,
		Prefs:    prefs,
	}, tokens, profiles, prefs
}

func testSession(id, email string) backend.Session {
	return backend.Session{
		AccessToken:  "access-" + id,
		RefreshToken: "refresh-" + id,
		TokenType:    "bearer",
		User:         backend.User{ID: id, Email: email},
		ExpiresAt:    time.Now().Add(time.Hour),
	}
}

// waitReady blocks until the view-model's initial state has been applied,
// so subsequent Dispatch calls are not dropped by the pre-init no-op rule.
func waitReady[S any](t *testing.T, state func() (S, bool)) {
	t.Helper()
	require.Eventually(t, func() bool {
		_, ok := state()
		return ok
	}, 2*time.Second, 5*time.Millisecond)
}

func waitFor[E any](t *testing.T, ch <-chan E) E {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		panic("unreachable")
	}
}

func TestLoginPrefillsRememberedEmail(t *testing.T) {
	deps, _, _, prefs := testDeps(&fakeBackend{})
	require.NoError(t, prefs.SetLastEmail(context.Background(), "kaisa@gmail.com"))

	vm := NewLoginViewModel(deps)
	defer vm.Close()

	require.Eventually(t, func() bool {
		s, ok := vm.State()
		return ok && s.Email == "kaisa@gmail.com"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestLoginSubmitHappyPath(t *testing.T) {
	b := &fakeBackend{signInSession: testSession("u1", "kaisa@gmail.com")}
	deps, tokens, _, prefs := testDeps(b)

	vm := NewLoginViewModel(deps)
	defer vm.Close()
	waitReady(t, vm.State)

	vm.Dispatch(EmailChanged{Value: "kaisa@gmail.com"})
	vm.Dispatch(PasswordChanged{Value: "hunter22"})
	vm.Dispatch(SubmitPressed{})

	_, isLoggedIn := waitFor(t, vm.Events()).(LoggedIn)
	require.True(t, isLoggedIn)

	sess, ok := deps.Sessions.Get()
	require.True(t, ok)
	require.Equal(t, "u1", sess.User.ID)
	require.Equal(t, "refresh-u1", tokens.current())

	last, err := prefs.LastEmail(context.Background())
	require.NoError(t, err)
	require.Equal(t, "kaisa@gmail.com", last)

	require.Eventually(t, func() bool {
		s, ok := vm.State()
		return ok && !s.Busy && s.Password == ""
	}, 2*time.Second, 10*time.Millisecond)
}

func TestLoginSubmitRejectsBadInput(t *testing.T) {
	deps, _, _, _ := testDeps(&fakeBackend{})
	vm := NewLoginViewModel(deps)
	defer vm.Close()
	waitReady(t, vm.State)

	vm.Dispatch(EmailChanged{Value: "not-an-email"})
	vm.Dispatch(PasswordChanged{Value: "pw"})
	vm.Dispatch(SubmitPressed{})

	require.Eventually(t, func() bool {
		s, ok := vm.State()
		return ok && s.ErrText == "Enter a valid email address"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestLoginWrongPasswordShowsError(t *testing.T) {
	b := &fakeBackend{signInErr: backend.ErrInvalidCredentials}
	deps, _, _, _ := testDeps(b)
	vm := NewLoginViewModel(deps)
	defer vm.Close()
	waitReady(t, vm.State)

	vm.Dispatch(EmailChanged{Value: "kaisa@gmail.com"})
	vm.Dispatch(PasswordChanged{Value: "wrong"})
	vm.Dispatch(SubmitPressed{})

	require.Eventually(t, func() bool {
		s, ok := vm.State()
		return ok && !s.Busy && s.ErrText == "Wrong email or password"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestLoginSuggestsCorrectedDomain(t *testing.T) {
	deps, _, _, _ := testDeps(&fakeBackend{})
	vm := NewLoginViewModel(deps)
	defer vm.Close()
	waitReady(t, vm.State)

	vm.Dispatch(EmailChanged{Value: "kaisa@gmial.com"})
	require.Eventually(t, func() bool {
		s, ok := vm.State()
		return ok && s.Suggestion == "kaisa@gmail.com"
	}, 2*time.Second, 10*time.Millisecond)

	vm.Dispatch(AcceptSuggestion{})
	require.Eventually(t, func() bool {
		s, ok := vm.State()
		return ok && s.Email == "kaisa@gmail.com" && s.Suggestion == ""
	}, 2*time.Second, 10*time.Millisecond)
}

func TestLoginRestoresStoredSession(t *testing.T) {
	b := &fakeBackend{refreshSess: testSession("u1", "kaisa@gmail.com")}
	deps, tokens, _, _ := testDeps(b)
	require.NoError(t, tokens.Save("refresh-old"))

	vm := NewLoginViewModel(deps)
	defer vm.Close()

	_, isLoggedIn := waitFor(t, vm.Events()).(LoggedIn)
	require.True(t, isLoggedIn)

	// rotated token is persisted
	require.Equal(t, "refresh-u1", tokens.current())
	_, ok := deps.Sessions.Get()
	require.True(t, ok)
}

func TestLoginStaleTokenClearedOnRestoreFailure(t *testing.T) {
	b := &fakeBackend{refreshErr: backend.ErrUnauthorized}
	deps, tokens, _, _ := testDeps(b)
	require.NoError(t, tokens.Save("refresh-stale"))

	vm := NewLoginViewModel(deps)
	defer vm.Close()

	require.Eventually(t, func() bool {
		s, ok := vm.State()
		return ok && !s.Restoring && tokens.current() == ""
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRegisterValidation(t *testing.T) {
	deps, _, _, _ := testDeps(&fakeBackend{})
	vm := NewRegisterViewModel(deps)
	defer vm.Close()
	waitReady(t, vm.State)

	vm.Dispatch(RegFullNameChanged{Value: "Kaisa K"})
	vm.Dispatch(RegEmailChanged{Value: "kaisa@gmail.com"})
	vm.Dispatch(RegPasswordChanged{Value: "longenough"})
	vm.Dispatch(RegConfirmChanged{Value: "different"})
	vm.Dispatch(RegSubmitPressed{})

	require.Eventually(t, func() bool {
		s, ok := vm.State()
		return ok && s.ErrText == "Passwords do not match"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRegisterHappyPathWritesProfile(t *testing.T) {
	b := &fakeBackend{signUpSession: testSession("u2", "new@gmail.com")}
	deps, tokens, _, _ := testDeps(b)
	vm := NewRegisterViewModel(deps)
	defer vm.Close()
	waitReady(t, vm.State)

	vm.Dispatch(RegFullNameChanged{Value: "New Member"})
	vm.Dispatch(RegEmailChanged{Value: "new@gmail.com"})
	vm.Dispatch(RegPasswordChanged{Value: "longenough"})
	vm.Dispatch(RegConfirmChanged{Value: "longenough"})
	vm.Dispatch(RegSubmitPressed{})

	_, isRegistered := waitFor(t, vm.Events()).(Registered)
	require.True(t, isRegistered)

	require.Equal(t, "refresh-u2", tokens.current())
	b.mu.Lock()
	defer b.mu.Unlock()
	require.Len(t, b.upserted, 1)
	require.Equal(t, "New Member", b.upserted[0].FullName)
	require.Equal(t, "u2", b.upserted[0].UserID)
}

func TestRegisterEmailTaken(t *testing.T) {
	b := &fakeBackend{signUpErr: backend.ErrEmailTaken}
	deps, _, _, _ := testDeps(b)
	vm := NewRegisterViewModel(deps)
	defer vm.Close()
	waitReady(t, vm.State)

	vm.Dispatch(RegFullNameChanged{Value: "New Member"})
	vm.Dispatch(RegEmailChanged{Value: "taken@gmail.com"})
	vm.Dispatch(RegPasswordChanged{Value: "longenough"})
	vm.Dispatch(RegConfirmChanged{Value: "longenough"})
	vm.Dispatch(RegSubmitPressed{})

	require.Eventually(t, func() bool {
		s, ok := vm.State()
		return ok && !s.Busy && s.ErrText == "That email is already registered"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRegisterCancelEmitsBackToLogin(t *testing.T) {
	deps, _, _, _ := testDeps(&fakeBackend{})
	vm := NewRegisterViewModel(deps)
	defer vm.Close()
	waitReady(t, vm.State)

	vm.Dispatch(RegCancelPressed{})
	_, isBack := waitFor(t, vm.Events()).(BackToLogin)
	require.True(t, isBack)
}

func TestHomeShowsCachedThenLiveProfile(t *testing.T) {
	live := backend.Profile{UserID: "u1", FullName: "Kaisa K", MembershipTier: "gold", HomeGym: "Downtown"}
	b := &fakeBackend{profile: live}
	deps, _, profiles, _ := testDeps(b)
	deps.Sessions.Set(testSession("u1", "kaisa@gmail.com"))
	require.NoError(t, profiles.Upsert(context.Background(), repository.CachedProfile{
		UserID: "u1", Email: "kaisa@gmail.com", FullName: "Kaisa K", MembershipTier: "silver",
	}))

	vm := NewHomeViewModel(deps)
	defer vm.Close()

	require.Eventually(t, func() bool {
		s, ok := vm.State()
		return ok && !s.Loading && !s.FromCache && s.MembershipTier == "gold"
	}, 2*time.Second, 10*time.Millisecond)

	// the cache row was refreshed from the live fetch
	cached, err := profiles.Get(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, "gold", cached.MembershipTier)
}

func TestHomeOfflineKeepsCachedProfile(t *testing.T) {
	b := &fakeBackend{profileErr: errors.New("dial tcp: no route to host")}
	deps, _, profiles, _ := testDeps(b)
	deps.Sessions.Set(testSession("u1", "kaisa@gmail.com"))
	require.NoError(t, profiles.Upsert(context.Background(), repository.CachedProfile{
		UserID: "u1", FullName: "Kaisa K", MembershipTier: "silver",
	}))

	vm := NewHomeViewModel(deps)
	defer vm.Close()

	require.Eventually(t, func() bool {
		s, ok := vm.State()
		return ok && !s.Loading && s.FromCache &&
			s.ErrText == "Offline, showing the cached profile"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHomeUnauthorizedSignsOut(t *testing.T) {
	b := &fakeBackend{profileErr: backend.ErrUnauthorized}
	deps, _, _, _ := testDeps(b)
	deps.Sessions.Set(testSession("u1", "kaisa@gmail.com"))

	vm := NewHomeViewModel(deps)
	defer vm.Close()

	_, isSignedOut := waitFor(t, vm.Events()).(SignedOut)
	require.True(t, isSignedOut)
}

func TestHomeSignOutClearsEverything(t *testing.T) {
	b := &fakeBackend{profile: backend.Profile{UserID: "u1"}}
	deps, tokens, _, _ := testDeps(b)
	deps.Sessions.Set(testSession("u1", "kaisa@gmail.com"))
	require.NoError(t, tokens.Save("refresh-u1"))

	vm := NewHomeViewModel(deps)
	defer vm.Close()

	require.Eventually(t, func() bool {
		s, ok := vm.State()
		return ok && !s.Loading
	}, 2*time.Second, 10*time.Millisecond)

	vm.Dispatch(SignOutPressed{})
	_, isSignedOut := waitFor(t, vm.Events()).(SignedOut)
	require.True(t, isSignedOut)

	_, ok := deps.Sessions.Get()
	require.False(t, ok)
	require.Empty(t, tokens.current())
	b.mu.Lock()
	defer b.mu.Unlock()
	require.Equal(t, 1, b.signOutCalls)
}
