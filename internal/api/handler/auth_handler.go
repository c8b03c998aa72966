package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/billio/invoicing-api/internal/api/metrics"
	"github.com/billio/invoicing-api/internal/core/domain"
	"github.com/billio/invoicing-api/internal/core/ports"
)

// ChangeDispatcher is the slice of the queue dispatcher the webhook
// endpoint needs.
type ChangeDispatcher interface {
	EnqueueBatch(changes []domain.SessionChange)
}

type AuthHandler struct {
	sessions      ports.SessionStore
	dispatcher    ChangeDispatcher
	webhookSecret string
}

func NewAuthHandler(sessions ports.SessionStore, dispatcher ChangeDispatcher, webhookSecret string) *AuthHandler {
	return &AuthHandler{sessions: sessions, dispatcher: dispatcher, webhookSecret: webhookSecret}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Remember bool   `json:"remember"`
}

type loginResponse struct {
	Session    *domain.Session `json:"session"`
	RedirectTo string          `json:"redirect_to"`
}

type signupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type passwordRequest struct {
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

type sessionResponse struct {
	Authenticated bool            `json:"authenticated"`
	Session       *domain.Session `json:"session,omitempty"`
}

type changeBatch struct {
	Changes []domain.SessionChange `json:"changes"`
}

// Login exchanges credentials for a session and the post-login redirect.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.sessions.Login(c.Request().Context(), req.Email, req.Password, req.Remember)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, loginResponse{Session: result.Session, RedirectTo: result.RedirectTo})
}

// Logout signs the caller out. Local state clears even when the provider
// call fails, so this always succeeds.
func (h *AuthHandler) Logout(c echo.Context) error {
	userID, token, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	redirect := h.sessions.Logout(c.Request().Context(), userID, token)
	return c.JSON(http.StatusOK, map[string]string{"redirect_to": redirect})
}

// SignUp registers a new account.
func (h *AuthHandler) SignUp(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	sess, err := h.sessions.SignUp(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, sessionResponse{Authenticated: sess != nil, Session: sess})
}

// ChangePassword updates the caller's password through the provider.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	_, token, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req passwordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.sessions.ChangePassword(c.Request().Context(), token, req.NewPassword); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Session returns the mirrored session for the caller. An anonymous caller
// may present a stored refresh token in X-Refresh-Token to restore the
// session; concurrent restores on the same token coalesce to one remote
// call.
func (h *AuthHandler) Session(c echo.Context) error {
	if userID, _ := c.Get("user_id").(string); userID != "" {
		return c.JSON(http.StatusOK, sessionResponse{Authenticated: true, Session: h.sessions.Current(userID)})
	}

	refreshToken := c.Request().Header.Get("X-Refresh-Token")
	sess, err := h.sessions.Initialize(c.Request().Context(), refreshToken)
	if err != nil {
		metrics.SessionRefreshTotal.WithLabelValues("error").Inc()
		return c.JSON(http.StatusOK, sessionResponse{Authenticated: false})
	}
	if sess == nil {
		return c.JSON(http.StatusOK, sessionResponse{Authenticated: false})
	}

	metrics.SessionRefreshTotal.WithLabelValues("ok").Inc()
	return c.JSON(http.StatusOK, sessionResponse{Authenticated: true, Session: sess})
}

// Profile returns the caller's extended profile from the provider RPC.
func (h *AuthHandler) Profile(c echo.Context) error {
	_, token, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	profile, err := h.sessions.Profile(c.Request().Context(), token)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profile)
}

// UpdateProfile stores the caller's extended profile.
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	_, token, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var profile domain.UserProfile
	if err := c.Bind(&profile); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	if err := h.sessions.UpdateProfile(c.Request().Context(), token, profile); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profile)
}

// Events receives session-change notifications pushed by the identity
// provider. Accepts a single change or a batch; changes are queued and
// applied asynchronously in per-user order.
func (h *AuthHandler) Events(c echo.Context) error {
	if h.webhookSecret == "" || c.Request().Header.Get("X-Webhook-Secret") != h.webhookSecret {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid webhook secret")
	}

	var batch changeBatch
	if err := c.Bind(&batch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if len(batch.Changes) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "no changes in payload")
	}

	for _, change := range batch.Changes {
		metrics.SessionChangesTotal.WithLabelValues(change.Type).Inc()
	}
	h.dispatcher.EnqueueBatch(batch.Changes)

	return c.NoContent(http.StatusAccepted)
}
