package domain

import "time"

// Coarse roles reported by the identity provider's get_user_role RPC.
// An empty role means the background fetch has not completed (or failed);
// callers treat it as "unknown", never as a denial.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// TokenPair carries the provider-issued tokens for one session.
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Session is the authenticated state mirrored from the identity provider.
type Session struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Role      string    `json:"role,omitempty"`
	Tokens    TokenPair `json:"tokens"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Session change notification types pushed by the identity provider.
const (
	SessionSignedIn     = "signed_in"
	SessionSignedOut    = "signed_out"
	SessionTokenRefresh = "token_refreshed"
	SessionUserUpdated  = "user_updated"
)

// SessionChange is one push notification from the identity provider.
// Notifications are already ordered by the provider; reconciliation is
// last-write-wins.
type SessionChange struct {
	Type       string    `json:"type"`
	UserID     string    `json:"user_id"`
	Session    *Session  `json:"session,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// UserProfile is the extended profile stored behind the provider's
// get_user_profile / update_user_profile RPCs.
type UserProfile struct {
	UserID    string `json:"user_id"`
	FullName  string `json:"full_name,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Locale    string `json:"locale,omitempty"`
}
