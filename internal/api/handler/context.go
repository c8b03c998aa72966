package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ctxIdentity extracts the auth claims injected by the Auth middleware and
// performs a fast-fail check before any service call: a non-empty user id
// proves the middleware ran and the token carried a subject.
func ctxIdentity(c echo.Context) (userID, accessToken string, err error) {
	userID, _ = c.Get("user_id").(string)
	if userID == "" {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	accessToken, _ = c.Get("access_token").(string)
	return userID, accessToken, nil
}
