package ports

import (
	"context"

	"github.com/billio/invoicing-api/internal/core/domain"
)

// Credentials are exchanged for a session via the password grant.
type Credentials struct {
	Email    string
	Password string
	Remember bool
}

// UserUpdate is a partial update applied through the provider's
// update-user endpoint. Nil fields are left untouched.
type UserUpdate struct {
	Email    *string
	Password *string
	Data     map[string]any
}

// IdentityProvider abstracts the hosted identity/session service: session
// exchange, sign-out, user updates, and the server-side RPCs for role and
// profile data.
type IdentityProvider interface {
	SignIn(ctx context.Context, creds Credentials) (*domain.Session, error)
	SignUp(ctx context.Context, email, password string) (*domain.Session, error)
	SignOut(ctx context.Context, accessToken string) error
	RefreshSession(ctx context.Context, refreshToken string) (*domain.Session, error)
	UpdateUser(ctx context.Context, accessToken string, update UserUpdate) error

	GetUserRole(ctx context.Context, accessToken string) (string, error)
	GetUserProfile(ctx context.Context, accessToken string) (*domain.UserProfile, error)
	UpdateUserProfile(ctx context.Context, accessToken string, profile domain.UserProfile) error
}
