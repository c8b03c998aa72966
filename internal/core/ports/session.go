package ports

import (
	"context"

	"github.com/billio/invoicing-api/internal/core/domain"
)

// LoginResult carries the established session and the client-side redirect
// target for the default authenticated view.
type LoginResult struct {
	Session    *domain.Session
	RedirectTo string
}

// SessionStore manages authentication state against the identity provider.
//
// Initialize and Refresh coalesce concurrent callers on the same token: a
// second caller while one is in flight observes the in-flight result rather
// than issuing a duplicate remote call. Logout clears local state
// unconditionally, even when the remote sign-out fails.
type SessionStore interface {
	Initialize(ctx context.Context, refreshToken string) (*domain.Session, error)
	Initialized() bool
	Login(ctx context.Context, email, password string, remember bool) (*LoginResult, error)
	Logout(ctx context.Context, userID, accessToken string) string
	SignUp(ctx context.Context, email, password string) (*domain.Session, error)
	ChangePassword(ctx context.Context, accessToken, newPassword string) error
	Profile(ctx context.Context, accessToken string) (*domain.UserProfile, error)
	UpdateProfile(ctx context.Context, accessToken string, profile domain.UserProfile) error
	Current(userID string) *domain.Session
	Apply(change domain.SessionChange)
}
