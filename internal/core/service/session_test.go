package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/billio/invoicing-api/internal/core/domain"
	"github.com/billio/invoicing-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Stub identity provider
// ---------------------------------------------------------------------------

type stubIdentityProvider struct {
	refreshCalls int32
	refreshGate  chan struct{} // if set, RefreshSession blocks until closed
	refreshErr   error
	signInErr    error
	signOutErr   error
	signOutCalls int32
	role         string
	roleErr      error
	session      *domain.Session
}

func (p *stubIdentityProvider) SignIn(_ context.Context, creds ports.Credentials) (*domain.Session, error) {
	if p.signInErr != nil {
		return nil, p.signInErr
	}
	clone := *p.session
	return &clone, nil
}

func (p *stubIdentityProvider) SignUp(_ context.Context, email, password string) (*domain.Session, error) {
	clone := *p.session
	clone.Email = email
	return &clone, nil
}

func (p *stubIdentityProvider) SignOut(_ context.Context, accessToken string) error {
	atomic.AddInt32(&p.signOutCalls, 1)
	return p.signOutErr
}

func (p *stubIdentityProvider) RefreshSession(_ context.Context, refreshToken string) (*domain.Session, error) {
	atomic.AddInt32(&p.refreshCalls, 1)
	if p.refreshGate != nil {
		<-p.refreshGate
	}
	if p.refreshErr != nil {
		return nil, p.refreshErr
	}
	clone := *p.session
	return &clone, nil
}

func (p *stubIdentityProvider) UpdateUser(_ context.Context, accessToken string, update ports.UserUpdate) error {
	return nil
}

func (p *stubIdentityProvider) GetUserRole(_ context.Context, accessToken string) (string, error) {
	if p.roleErr != nil {
		return "", p.roleErr
	}
	return p.role, nil
}

func (p *stubIdentityProvider) GetUserProfile(_ context.Context, accessToken string) (*domain.UserProfile, error) {
	return &domain.UserProfile{UserID: p.session.UserID}, nil
}

func (p *stubIdentityProvider) UpdateUserProfile(_ context.Context, accessToken string, profile domain.UserProfile) error {
	return nil
}

func testSession() *domain.Session {
	return &domain.Session{
		UserID: "user-1",
		Email:  "alice@example.test",
		Tokens: domain.TokenPair{
			AccessToken:  "access-1",
			RefreshToken: "refresh-1",
			ExpiresAt:    time.Now().Add(time.Hour),
		},
	}
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestSessionStore_ConcurrentInitializeCoalesces(t *testing.T) {
	provider := &stubIdentityProvider{
		session:     testSession(),
		refreshGate: make(chan struct{}),
	}
	store := NewSessionStore(provider, zerolog.Nop())

	const n = 16
	var started, done sync.WaitGroup
	started.Add(n)
	done.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			started.Done()
			started.Wait()
			if _, err := store.Initialize(context.Background(), "refresh-1"); err != nil {
				t.Errorf("initialize: %v", err)
			}
			done.Done()
		}()
	}

	// Let every caller pile up on the in-flight refresh, then release it.
	started.Wait()
	time.Sleep(20 * time.Millisecond)
	close(provider.refreshGate)
	done.Wait()

	if calls := atomic.LoadInt32(&provider.refreshCalls); calls != 1 {
		t.Fatalf("expected 1 remote refresh, got %d", calls)
	}
	if !store.Initialized() {
		t.Fatalf("store must be initialized")
	}
}

func TestSessionStore_InitializeWithoutTokenCompletes(t *testing.T) {
	provider := &stubIdentityProvider{session: testSession()}
	store := NewSessionStore(provider, zerolog.Nop())

	sess, err := store.Initialize(context.Background(), "")
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if sess != nil {
		t.Fatalf("expected no session without a stored token")
	}
	if !store.Initialized() {
		t.Fatalf("initialization must complete even without a token")
	}
	if atomic.LoadInt32(&provider.refreshCalls) != 0 {
		t.Fatalf("no remote call expected without a token")
	}
}

func TestSessionStore_EnsureInitializedRunsProbeOnce(t *testing.T) {
	provider := &stubIdentityProvider{session: testSession()}
	store := NewSessionStore(provider, zerolog.Nop())

	if store.Initialized() {
		t.Fatalf("fresh store must start uninitialized")
	}
	for i := 0; i < 5; i++ {
		if !store.EnsureInitialized(context.Background()) {
			t.Fatalf("call %d: probe must leave the store initialized", i)
		}
	}
	if !store.Initialized() {
		t.Fatalf("store must be initialized after the probe")
	}
	// No stored refresh token means no remote call.
	if atomic.LoadInt32(&provider.refreshCalls) != 0 {
		t.Fatalf("no remote refresh expected from the probe")
	}
}

func TestSessionStore_InitializeFailureStillMarksInitialized(t *testing.T) {
	provider := &stubIdentityProvider{
		session:    testSession(),
		refreshErr: domain.ErrSessionExpired,
	}
	store := NewSessionStore(provider, zerolog.Nop())

	if _, err := store.Initialize(context.Background(), "stale"); !errors.Is(err, domain.ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
	if !store.Initialized() {
		t.Fatalf("initialization must complete on error too")
	}
}

func TestSessionStore_LogoutClearsStateDespiteRemoteFailure(t *testing.T) {
	provider := &stubIdentityProvider{
		session:    testSession(),
		signOutErr: errors.New("provider unreachable"),
	}
	store := NewSessionStore(provider, zerolog.Nop())

	if _, err := store.Login(context.Background(), "alice@example.test", "secret", false); err != nil {
		t.Fatalf("login: %v", err)
	}
	if store.Current("user-1") == nil {
		t.Fatalf("session must be mirrored after login")
	}

	redirect := store.Logout(context.Background(), "user-1", "access-1")
	if redirect != PathLogin {
		t.Fatalf("expected redirect to %s, got %s", PathLogin, redirect)
	}
	if store.Current("user-1") != nil {
		t.Fatalf("local session must clear even when remote sign-out fails")
	}
	if atomic.LoadInt32(&provider.signOutCalls) != 1 {
		t.Fatalf("remote sign-out must still be attempted")
	}
}

func TestSessionStore_LoginToleratesRoleFetchFailure(t *testing.T) {
	provider := &stubIdentityProvider{
		session: testSession(),
		roleErr: errors.New("rpc down"),
	}
	store := NewSessionStore(provider, zerolog.Nop())

	result, err := store.Login(context.Background(), "alice@example.test", "secret", true)
	if err != nil {
		t.Fatalf("login must not fail on role fetch: %v", err)
	}
	if result.RedirectTo != PathDashboard {
		t.Fatalf("expected redirect to %s, got %s", PathDashboard, result.RedirectTo)
	}

	// The role stays empty (unknown), never an error state.
	time.Sleep(20 * time.Millisecond)
	if sess := store.Current("user-1"); sess == nil || sess.Role != "" {
		t.Fatalf("expected empty role, got %+v", sess)
	}
}

func TestSessionStore_RoleArrivesInBackground(t *testing.T) {
	provider := &stubIdentityProvider{
		session: testSession(),
		role:    domain.RoleAdmin,
	}
	store := NewSessionStore(provider, zerolog.Nop())

	if _, err := store.Login(context.Background(), "alice@example.test", "secret", false); err != nil {
		t.Fatalf("login: %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if sess := store.Current("user-1"); sess != nil && sess.Role == domain.RoleAdmin {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("role never resolved in background")
}

func TestSessionStore_EmptyRoleDefaultsToUser(t *testing.T) {
	provider := &stubIdentityProvider{session: testSession()}
	store := NewSessionStore(provider, zerolog.Nop())

	if _, err := store.Login(context.Background(), "alice@example.test", "secret", false); err != nil {
		t.Fatalf("login: %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if sess := store.Current("user-1"); sess != nil && sess.Role == domain.RoleUser {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("empty provider role must resolve to %q", domain.RoleUser)
}

func TestSessionStore_ApplyLastWriteWins(t *testing.T) {
	provider := &stubIdentityProvider{session: testSession()}
	store := NewSessionStore(provider, zerolog.Nop())

	first := testSession()
	first.Tokens.AccessToken = "access-old"
	second := testSession()
	second.Tokens.AccessToken = "access-new"

	store.Apply(domain.SessionChange{Type: domain.SessionSignedIn, UserID: "user-1", Session: first})
	store.Apply(domain.SessionChange{Type: domain.SessionTokenRefresh, UserID: "user-1", Session: second})

	if sess := store.Current("user-1"); sess == nil || sess.Tokens.AccessToken != "access-new" {
		t.Fatalf("last write must win, got %+v", sess)
	}

	store.Apply(domain.SessionChange{Type: domain.SessionSignedOut, UserID: "user-1"})
	if store.Current("user-1") != nil {
		t.Fatalf("signed_out must clear the session")
	}
}
