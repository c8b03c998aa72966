package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/billio/invoicing-api/internal/core/service"
)

// authenticated reports whether the Auth middleware populated the user_id
// key for this request.
func authenticated(c echo.Context) bool {
	id, _ := c.Get("user_id").(string)
	return id != ""
}

// Guard enforces the route policy for page-style routes. Page requests get
// 303 redirects mirroring client navigation; API requests get a bare 401.
// The first guarded request triggers the session store's one-time
// initialization probe through ensureReady and waits for it, so a stale
// "unauthenticated" state never causes a wrong redirect. The probe always
// completes; 503 is only returned when it somehow leaves the store
// uninitialized.
func Guard(policy service.RoutePolicy, ensureReady func(ctx context.Context) bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if ensureReady != nil && !ensureReady(c.Request().Context()) {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "session state initializing")
			}

			decision := service.DecideRoute(policy, authenticated(c))
			if decision.Allow {
				return next(c)
			}

			if wantsJSON(c) {
				return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
			}
			return c.Redirect(http.StatusSeeOther, decision.RedirectTo)
		}
	}
}

func wantsJSON(c echo.Context) bool {
	accept := c.Request().Header.Get("Accept")
	return accept == "" || accept == "application/json" || c.Request().Header.Get("X-Requested-With") != ""
}
