package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/billio/invoicing-api/internal/core/domain"
	"github.com/billio/invoicing-api/internal/core/ports"
)

const serviceName = "identity"

// Config holds the hosted identity provider settings. BaseURL is the
// project root; auth endpoints live under /auth/v1 and RPCs under
// /rest/v1/rpc.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client talks to the hosted identity provider over its REST surface.
type Client struct {
	http   *resty.Client
	apiKey string
}

// NewClient builds an identity client. A nil return never happens; an
// unconfigured client reports domain.ErrNotConfigured on use.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	http := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader("apikey", cfg.APIKey)

	return &Client{http: http, apiKey: cfg.APIKey}
}

func (c *Client) configured() bool {
	return c.http.BaseURL != "" && c.apiKey != ""
}

type sessionPayload struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	User         struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

type errorPayload struct {
	Message          string `json:"message"`
	Msg              string `json:"msg"`
	ErrorDescription string `json:"error_description"`
}

func (p *errorPayload) text() string {
	switch {
	case p.Message != "":
		return p.Message
	case p.Msg != "":
		return p.Msg
	default:
		return p.ErrorDescription
	}
}

func (p *sessionPayload) toSession() *domain.Session {
	return &domain.Session{
		UserID: p.User.ID,
		Email:  p.User.Email,
		Tokens: domain.TokenPair{
			AccessToken:  p.AccessToken,
			RefreshToken: p.RefreshToken,
			ExpiresAt:    time.Now().Add(time.Duration(p.ExpiresIn) * time.Second),
		},
		UpdatedAt: time.Now(),
	}
}

// SignIn exchanges email/password credentials for a session via the
// password grant.
func (c *Client) SignIn(ctx context.Context, creds ports.Credentials) (*domain.Session, error) {
	if !c.configured() {
		return nil, domain.ErrNotConfigured
	}

	var payload sessionPayload
	var apiErr errorPayload
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("grant_type", "password").
		SetBody(map[string]string{"email": creds.Email, "password": creds.Password}).
		SetResult(&payload).
		SetError(&apiErr).
		Post("/auth/v1/token")
	if err != nil {
		return nil, c.transportErr(err)
	}
	if resp.IsError() {
		if resp.StatusCode() == 400 || resp.StatusCode() == 401 {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, c.remoteErr(resp.StatusCode(), apiErr.text())
	}
	return payload.toSession(), nil
}

// SignUp registers a new account. Depending on provider settings the
// returned session may be immediately usable or pending confirmation.
func (c *Client) SignUp(ctx context.Context, email, password string) (*domain.Session, error) {
	if !c.configured() {
		return nil, domain.ErrNotConfigured
	}

	var payload sessionPayload
	var apiErr errorPayload
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"email": email, "password": password}).
		SetResult(&payload).
		SetError(&apiErr).
		Post("/auth/v1/signup")
	if err != nil {
		return nil, c.transportErr(err)
	}
	if resp.IsError() {
		return nil, c.remoteErr(resp.StatusCode(), apiErr.text())
	}
	return payload.toSession(), nil
}

// SignOut revokes the session on the provider side.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	if !c.configured() {
		return domain.ErrNotConfigured
	}

	var apiErr errorPayload
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetError(&apiErr).
		Post("/auth/v1/logout")
	if err != nil {
		return c.transportErr(err)
	}
	if resp.IsError() {
		return c.remoteErr(resp.StatusCode(), apiErr.text())
	}
	return nil
}

// RefreshSession exchanges a refresh token for a fresh token pair.
func (c *Client) RefreshSession(ctx context.Context, refreshToken string) (*domain.Session, error) {
	if !c.configured() {
		return nil, domain.ErrNotConfigured
	}

	var payload sessionPayload
	var apiErr errorPayload
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("grant_type", "refresh_token").
		SetBody(map[string]string{"refresh_token": refreshToken}).
		SetResult(&payload).
		SetError(&apiErr).
		Post("/auth/v1/token")
	if err != nil {
		return nil, c.transportErr(err)
	}
	if resp.IsError() {
		if resp.StatusCode() == 400 || resp.StatusCode() == 401 {
			return nil, domain.ErrSessionExpired
		}
		return nil, c.remoteErr(resp.StatusCode(), apiErr.text())
	}
	return payload.toSession(), nil
}

// UpdateUser applies a partial update (email, password, metadata) to the
// authenticated user.
func (c *Client) UpdateUser(ctx context.Context, accessToken string, update ports.UserUpdate) error {
	if !c.configured() {
		return domain.ErrNotConfigured
	}

	body := map[string]any{}
	if update.Email != nil {
		body["email"] = *update.Email
	}
	if update.Password != nil {
		body["password"] = *update.Password
	}
	if update.Data != nil {
		body["data"] = update.Data
	}

	var apiErr errorPayload
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetBody(body).
		SetError(&apiErr).
		Put("/auth/v1/user")
	if err != nil {
		return c.transportErr(err)
	}
	if resp.IsError() {
		if resp.StatusCode() == 401 {
			return domain.ErrSessionExpired
		}
		return c.remoteErr(resp.StatusCode(), apiErr.text())
	}
	return nil
}

// GetUserRole calls the get_user_role RPC with the caller's token; the
// provider resolves the user from the token.
func (c *Client) GetUserRole(ctx context.Context, accessToken string) (string, error) {
	if !c.configured() {
		return "", domain.ErrNotConfigured
	}

	var role string
	var apiErr errorPayload
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetBody(map[string]any{}).
		SetResult(&role).
		SetError(&apiErr).
		Post("/rest/v1/rpc/get_user_role")
	if err != nil {
		return "", c.transportErr(err)
	}
	if resp.IsError() {
		if resp.StatusCode() == 401 {
			return "", domain.ErrSessionExpired
		}
		return "", c.remoteErr(resp.StatusCode(), apiErr.text())
	}
	return role, nil
}

// GetUserProfile calls the get_user_profile RPC.
func (c *Client) GetUserProfile(ctx context.Context, accessToken string) (*domain.UserProfile, error) {
	if !c.configured() {
		return nil, domain.ErrNotConfigured
	}

	var profile domain.UserProfile
	var apiErr errorPayload
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetBody(map[string]any{}).
		SetResult(&profile).
		SetError(&apiErr).
		Post("/rest/v1/rpc/get_user_profile")
	if err != nil {
		return nil, c.transportErr(err)
	}
	if resp.IsError() {
		if resp.StatusCode() == 401 {
			return nil, domain.ErrSessionExpired
		}
		return nil, c.remoteErr(resp.StatusCode(), apiErr.text())
	}
	return &profile, nil
}

// UpdateUserProfile calls the update_user_profile RPC.
func (c *Client) UpdateUserProfile(ctx context.Context, accessToken string, profile domain.UserProfile) error {
	if !c.configured() {
		return domain.ErrNotConfigured
	}

	var apiErr errorPayload
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetBody(map[string]any{
			"full_name":  profile.FullName,
			"avatar_url": profile.AvatarURL,
			"locale":     profile.Locale,
		}).
		SetError(&apiErr).
		Post("/rest/v1/rpc/update_user_profile")
	if err != nil {
		return c.transportErr(err)
	}
	if resp.IsError() {
		if resp.StatusCode() == 401 {
			return domain.ErrSessionExpired
		}
		return c.remoteErr(resp.StatusCode(), apiErr.text())
	}
	return nil
}

func (c *Client) transportErr(err error) error {
	return &domain.RemoteError{Service: serviceName, Message: fmt.Sprintf("request failed: %v", err)}
}

func (c *Client) remoteErr(status int, message string) error {
	if message == "" {
		message = "unexpected response"
	}
	return &domain.RemoteError{Service: serviceName, Status: status, Message: message}
}

var _ ports.IdentityProvider = (*Client)(nil)
