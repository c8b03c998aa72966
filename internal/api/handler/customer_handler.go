package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/billio/invoicing-api/internal/core/ports"
)

// CustomerHandler handles HTTP requests for customer operations.
type CustomerHandler struct {
	service ports.CustomerService
}

func NewCustomerHandler(service ports.CustomerService) *CustomerHandler {
	return &CustomerHandler{service: service}
}

type customerRequest struct {
	Name           string `json:"name" validate:"required"`
	Email          string `json:"email" validate:"omitempty,email"`
	Phone          string `json:"phone"`
	Company        string `json:"company"`
	Street         string `json:"street"`
	HouseNumber    string `json:"house_number"`
	PostalCode     string `json:"postal_code"`
	City           string `json:"city"`
	Country        string `json:"country"`
	Address        string `json:"address"`
	VATID          string `json:"vat_id"`
	Currency       string `json:"currency"`
	IncludeVAT     bool   `json:"include_vat"`
	IncludeEnglish bool   `json:"include_english_translation"`
	IncludeBarcode bool   `json:"include_bar_code"`
}

func (r customerRequest) toInput() ports.CustomerInput {
	return ports.CustomerInput{
		Name:           r.Name,
		Email:          r.Email,
		Phone:          r.Phone,
		Company:        r.Company,
		Street:         r.Street,
		HouseNumber:    r.HouseNumber,
		PostalCode:     r.PostalCode,
		City:           r.City,
		Country:        r.Country,
		Address:        r.Address,
		VATID:          r.VATID,
		Currency:       r.Currency,
		IncludeVAT:     r.IncludeVAT,
		IncludeEnglish: r.IncludeEnglish,
		IncludeBarcode: r.IncludeBarcode,
	}
}

// List handles GET /v1/customers.
func (h *CustomerHandler) List(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	customers, err := h.service.FetchAll(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, customers)
}

// Get handles GET /v1/customers/:id.
func (h *CustomerHandler) Get(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	customer, err := h.service.GetByID(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, customer)
}

// Create handles POST /v1/customers.
func (h *CustomerHandler) Create(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req customerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	customer, err := h.service.Add(c.Request().Context(), userID, req.toInput())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, customer)
}

// Update handles PUT /v1/customers/:id.
func (h *CustomerHandler) Update(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req customerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	customer, err := h.service.Update(c.Request().Context(), userID, c.Param("id"), req.toInput())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, customer)
}

// Delete handles DELETE /v1/customers/:id.
func (h *CustomerHandler) Delete(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), userID, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
