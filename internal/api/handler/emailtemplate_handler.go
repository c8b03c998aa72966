package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/billio/invoicing-api/internal/core/ports"
)

// TemplateHandler handles HTTP requests for per-customer email templates.
type TemplateHandler struct {
	service ports.TemplateService
}

func NewTemplateHandler(service ports.TemplateService) *TemplateHandler {
	return &TemplateHandler{service: service}
}

type templateRequest struct {
	Subject    string   `json:"subject" validate:"required"`
	Body       string   `json:"body" validate:"required"`
	Recipients []string `json:"recipients" validate:"dive,email"`
}

// Get handles GET /v1/customers/:id/email-template.
func (h *TemplateHandler) Get(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	tmpl, err := h.service.Get(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tmpl)
}

// Save handles PUT /v1/customers/:id/email-template. Creates the template
// on first save, replaces it afterwards.
func (h *TemplateHandler) Save(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req templateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	tmpl, err := h.service.Save(c.Request().Context(), userID, ports.TemplateInput{
		CustomerID: c.Param("id"),
		Subject:    req.Subject,
		Body:       req.Body,
		Recipients: req.Recipients,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tmpl)
}
