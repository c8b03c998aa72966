package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/billio/invoicing-api/internal/core/domain"
	"github.com/billio/invoicing-api/internal/core/ports"
)

const roleFetchTimeout = 10 * time.Second

// SessionStore mirrors authentication state from the identity provider.
//
// Concurrent Initialize/Refresh calls on the same refresh token are
// coalesced through singleflight so exactly one remote session fetch is in
// flight at a time. Provider push notifications are reconciled
// last-write-wins via Apply.
type SessionStore struct {
	provider ports.IdentityProvider
	log      zerolog.Logger

	group singleflight.Group

	mu          sync.RWMutex
	sessions    map[string]*domain.Session
	initialized bool
}

func NewSessionStore(provider ports.IdentityProvider, log zerolog.Logger) *SessionStore {
	return &SessionStore{
		provider: provider,
		log:      log,
		sessions: make(map[string]*domain.Session),
	}
}

// Initialize exchanges a stored refresh token for the current session.
// An empty token means no stored session: the store still completes
// initialization (unauthenticated) so route guarding is never blocked.
// Always ends with the initialized flag set, even on error.
func (s *SessionStore) Initialize(ctx context.Context, refreshToken string) (*domain.Session, error) {
	defer s.markInitialized()

	if refreshToken == "" {
		return nil, nil
	}

	v, err, _ := s.group.Do("refresh:"+refreshToken, func() (any, error) {
		return s.provider.RefreshSession(ctx, refreshToken)
	})
	if err != nil {
		s.log.Warn().Err(err).Msg("session initialization failed, continuing unauthenticated")
		return nil, err
	}

	sess := v.(*domain.Session)
	s.put(sess)
	go s.fetchRole(sess.UserID, sess.Tokens.AccessToken)

	return cloneSession(sess), nil
}

// Initialized reports whether the first initialization has completed.
// Route-guard decisions are only trusted afterwards.
func (s *SessionStore) Initialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initialized
}

// EnsureInitialized runs the one-time initialization probe when it has not
// happened yet, and reports whether the store is initialized afterwards.
// The probe always completes, success or failure, so a caller blocking on
// this can never block forever.
func (s *SessionStore) EnsureInitialized(ctx context.Context) bool {
	if s.Initialized() {
		return true
	}
	_, _ = s.Initialize(ctx, "")
	return s.Initialized()
}

// Login exchanges credentials for a session. The role fetch happens in the
// background; its failure does not fail the login. Errors are re-raised to
// the caller, unlike the entity stores.
func (s *SessionStore) Login(ctx context.Context, email, password string, remember bool) (*ports.LoginResult, error) {
	sess, err := s.provider.SignIn(ctx, ports.Credentials{Email: email, Password: password, Remember: remember})
	if err != nil {
		return nil, err
	}

	s.put(sess)
	go s.fetchRole(sess.UserID, sess.Tokens.AccessToken)

	s.log.Info().Str("user_id", sess.UserID).Msg("user logged in")
	return &ports.LoginResult{Session: cloneSession(sess), RedirectTo: PathDashboard}, nil
}

// Logout performs a best-effort remote sign-out and clears local state
// unconditionally. The user can always leave the authenticated state
// locally even when the provider is unreachable.
func (s *SessionStore) Logout(ctx context.Context, userID, accessToken string) string {
	if err := s.provider.SignOut(ctx, accessToken); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("remote sign-out failed, clearing local session anyway")
	}

	s.mu.Lock()
	delete(s.sessions, userID)
	s.mu.Unlock()

	s.log.Info().Str("user_id", userID).Msg("user logged out")
	return PathLogin
}

// SignUp registers a new account with the provider. Errors re-raise.
func (s *SessionStore) SignUp(ctx context.Context, email, password string) (*domain.Session, error) {
	sess, err := s.provider.SignUp(ctx, email, password)
	if err != nil {
		return nil, err
	}
	s.put(sess)
	return cloneSession(sess), nil
}

// ChangePassword updates the account password. Errors re-raise.
func (s *SessionStore) ChangePassword(ctx context.Context, accessToken, newPassword string) error {
	return s.provider.UpdateUser(ctx, accessToken, ports.UserUpdate{Password: &newPassword})
}

// Profile fetches the extended profile via the provider RPC.
func (s *SessionStore) Profile(ctx context.Context, accessToken string) (*domain.UserProfile, error) {
	return s.provider.GetUserProfile(ctx, accessToken)
}

// UpdateProfile stores the extended profile via the provider RPC. Errors
// re-raise.
func (s *SessionStore) UpdateProfile(ctx context.Context, accessToken string, profile domain.UserProfile) error {
	return s.provider.UpdateUserProfile(ctx, accessToken, profile)
}

// Current returns the mirrored session for a user, or nil when anonymous.
func (s *SessionStore) Current(userID string) *domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSession(s.sessions[userID])
}

// Apply reconciles one provider push notification into local state.
// Notifications arrive ordered, so last write wins and no queuing is
// needed here.
func (s *SessionStore) Apply(change domain.SessionChange) {
	switch change.Type {
	case domain.SessionSignedOut:
		s.mu.Lock()
		delete(s.sessions, change.UserID)
		s.mu.Unlock()
		s.log.Debug().Str("user_id", change.UserID).Msg("session removed by provider notification")
	default:
		if change.Session == nil {
			s.log.Debug().Str("type", change.Type).Str("user_id", change.UserID).Msg("session notification without payload ignored")
			return
		}
		s.put(change.Session)
		s.log.Debug().Str("type", change.Type).Str("user_id", change.UserID).Msg("session reconciled from provider notification")
	}
}

func (s *SessionStore) put(sess *domain.Session) {
	clone := cloneSession(sess)
	clone.UpdatedAt = time.Now().UTC()
	s.mu.Lock()
	s.sessions[clone.UserID] = clone
	s.mu.Unlock()
}

func (s *SessionStore) markInitialized() {
	s.mu.Lock()
	s.initialized = true
	s.mu.Unlock()
}

// fetchRole resolves the coarse role in the background. A failure leaves
// the role empty; it never fails the surrounding login/initialize.
func (s *SessionStore) fetchRole(userID, accessToken string) {
	ctx, cancel := context.WithTimeout(context.Background(), roleFetchTimeout)
	defer cancel()

	role, err := s.provider.GetUserRole(ctx, accessToken)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("role fetch failed")
		return
	}
	if role == "" {
		// Accounts without an explicit role entry are regular users.
		role = domain.RoleUser
	}

	s.mu.Lock()
	if sess, ok := s.sessions[userID]; ok {
		sess.Role = role
	}
	s.mu.Unlock()
}

func cloneSession(sess *domain.Session) *domain.Session {
	if sess == nil {
		return nil
	}
	clone := *sess
	return &clone
}
