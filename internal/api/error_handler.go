package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/billio/invoicing-api/internal/api/metrics"
	"github.com/billio/invoicing-api/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrNotAuthenticated):
		return http.StatusUnauthorized, "not authenticated"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, domain.ErrSessionExpired):
		return http.StatusUnauthorized, "session expired"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "access forbidden"
	case errors.Is(err, domain.ErrCustomerNotFound):
		return http.StatusNotFound, "customer not found"
	case errors.Is(err, domain.ErrInvoiceNotFound):
		return http.StatusNotFound, "invoice not found"
	case errors.Is(err, domain.ErrTemplateNotFound):
		return http.StatusNotFound, "email template not found"
	case errors.Is(err, domain.ErrCompanyNotFound):
		return http.StatusNotFound, "company info not found"
	case errors.Is(err, domain.ErrLogoNotFound):
		return http.StatusNotFound, "no logo uploaded"
	case errors.Is(err, domain.ErrDuplicateInvoiceNumber):
		return http.StatusConflict, "invoice number already exists"
	case errors.Is(err, domain.ErrLastMessageNotUser):
		return http.StatusUnprocessableEntity, "last message must be from the user"
	case errors.Is(err, domain.ErrRateUnavailable):
		return http.StatusNotFound, "no exchange rate available"
	case errors.Is(err, domain.ErrNotConfigured):
		return http.StatusServiceUnavailable, "feature not configured"
	}

	// Partial writes surface their own message so the client knows the
	// parent row was stored.
	var pw *domain.PartialWriteError
	if errors.As(err, &pw) {
		metrics.InvoicePartialWritesTotal.Inc()
		log.Error().Err(pw).Str("invoice_id", pw.InvoiceID).Msg("partial invoice write")
		return http.StatusInternalServerError, pw.Error()
	}

	// Upstream failures pass the remote message through with 502.
	var re *domain.RemoteError
	if errors.As(err, &re) {
		log.Error().Err(re).Str("service", re.Service).Int("status", re.Status).Msg("upstream error")
		return http.StatusBadGateway, re.Error()
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
