package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/billio/invoicing-api/internal/core/domain"
	"github.com/billio/invoicing-api/internal/core/ports"
	"github.com/billio/invoicing-api/internal/core/service"
)

type stubIdentityProvider struct {
	refreshCalls int
}

func (p *stubIdentityProvider) SignIn(context.Context, ports.Credentials) (*domain.Session, error) {
	return nil, domain.ErrInvalidCredentials
}

func (p *stubIdentityProvider) SignUp(context.Context, string, string) (*domain.Session, error) {
	return nil, nil
}

func (p *stubIdentityProvider) SignOut(context.Context, string) error { return nil }

func (p *stubIdentityProvider) RefreshSession(context.Context, string) (*domain.Session, error) {
	p.refreshCalls++
	return nil, domain.ErrSessionExpired
}

func (p *stubIdentityProvider) UpdateUser(context.Context, string, ports.UserUpdate) error {
	return nil
}

func (p *stubIdentityProvider) GetUserRole(context.Context, string) (string, error) {
	return "", nil
}

func (p *stubIdentityProvider) GetUserProfile(context.Context, string) (*domain.UserProfile, error) {
	return nil, nil
}

func (p *stubIdentityProvider) UpdateUserProfile(context.Context, string, domain.UserProfile) error {
	return nil
}

func guardContext(t *testing.T, userID, accept string) (echo.Context, *httptest.ResponseRecorder, *echo.Echo) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != "" {
		c.Set("user_id", userID)
	}
	return c, rec, e
}

func ready(context.Context) bool { return true }

func TestGuard_AllowsAuthenticated(t *testing.T) {
	c, rec, _ := guardContext(t, "user-1", "")

	called := false
	handler := Guard(service.PolicyProtected, ready)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestGuard_RedirectsAnonymousPageRequest(t *testing.T) {
	c, rec, _ := guardContext(t, "", "text/html")

	handler := Guard(service.PolicyProtected, ready)(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != service.PathLogin {
		t.Fatalf("expected redirect to %s, got %s", service.PathLogin, loc)
	}
}

func TestGuard_RejectsAnonymousAPIRequest(t *testing.T) {
	c, rec, e := guardContext(t, "", "application/json")

	handler := Guard(service.PolicyProtected, ready)(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestGuard_FailsClosedWhenProbeLeavesStoreUninitialized(t *testing.T) {
	c, rec, e := guardContext(t, "user-1", "")

	broken := func(context.Context) bool { return false }
	handler := Guard(service.PolicyProtected, broken)(func(c echo.Context) error {
		t.Fatalf("should not reach next before initialization")
		return nil
	})

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

// A fresh session store must not leave guarded routes unreachable: the
// first request runs the initialization probe itself and proceeds.
func TestGuard_FreshStoreInitializesOnFirstRequest(t *testing.T) {
	provider := &stubIdentityProvider{}
	sessions := service.NewSessionStore(provider, zerolog.Nop())

	handler := Guard(service.PolicyProtected, sessions.EnsureInitialized)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	for i := 0; i < 3; i++ {
		c, rec, _ := guardContext(t, "user-1", "")
		if err := handler(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, rec.Code)
		}
	}

	if !sessions.Initialized() {
		t.Fatalf("first guarded request must complete initialization")
	}

	// Anonymous page requests redirect instead of being served 503.
	c, rec, _ := guardContext(t, "", "text/html")
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303 after initialization, got %d", rec.Code)
	}
}
