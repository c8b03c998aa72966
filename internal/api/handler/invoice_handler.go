package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/billio/invoicing-api/internal/api/metrics"
	"github.com/billio/invoicing-api/internal/core/ports"
)

// InvoiceHandler handles HTTP requests for invoice operations.
type InvoiceHandler struct {
	service ports.InvoiceService
}

func NewInvoiceHandler(service ports.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{service: service}
}

type invoiceItemRequest struct {
	Description string  `json:"description" validate:"required"`
	Quantity    float64 `json:"quantity" validate:"gt=0"`
	Price       float64 `json:"price"`
}

// invoiceRequest deliberately has no subtotal/vat/total fields: totals are
// derived server-side and anything the caller sends is ignored.
type invoiceRequest struct {
	CustomerID   string               `json:"customer_id" validate:"required"`
	Number       string               `json:"number" validate:"required"`
	Date         string               `json:"date" validate:"required"`
	DeliveryDate string               `json:"delivery_date"`
	DueDate      string               `json:"due_date"`
	Items        []invoiceItemRequest `json:"items" validate:"min=1,dive"`
	Paid         bool                 `json:"paid"`
	ExchangeRate *float64             `json:"exchange_rate"`
}

func (r invoiceRequest) toInput() ports.InvoiceInput {
	items := make([]ports.InvoiceItemInput, len(r.Items))
	for i, item := range r.Items {
		items[i] = ports.InvoiceItemInput{
			Description: item.Description,
			Quantity:    item.Quantity,
			Price:       item.Price,
		}
	}
	return ports.InvoiceInput{
		CustomerID:   r.CustomerID,
		Number:       r.Number,
		Date:         r.Date,
		DeliveryDate: r.DeliveryDate,
		DueDate:      r.DueDate,
		Items:        items,
		Paid:         r.Paid,
		ExchangeRate: r.ExchangeRate,
	}
}

// List handles GET /v1/invoices.
func (h *InvoiceHandler) List(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	invoices, err := h.service.FetchAll(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, invoices)
}

// Get handles GET /v1/invoices/:id.
func (h *InvoiceHandler) Get(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	invoice, err := h.service.GetByID(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, invoice)
}

// Create handles POST /v1/invoices.
func (h *InvoiceHandler) Create(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req invoiceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	invoice, err := h.service.Add(c.Request().Context(), userID, req.toInput())
	if err != nil {
		return err
	}

	metrics.InvoicesCreatedTotal.Inc()
	return c.JSON(http.StatusCreated, invoice)
}

// Update handles PUT /v1/invoices/:id.
func (h *InvoiceHandler) Update(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req invoiceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	invoice, err := h.service.Update(c.Request().Context(), userID, c.Param("id"), req.toInput())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, invoice)
}

// Delete handles DELETE /v1/invoices/:id.
func (h *InvoiceHandler) Delete(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), userID, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// LatestNumber handles GET /v1/invoices/latest-number. Returns the most
// recently created invoice's number to seed the next one; empty when none
// exist.
func (h *InvoiceHandler) LatestNumber(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	number, err := h.service.LatestNumber(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"number": number})
}

// ListByCustomer handles GET /v1/customers/:id/invoices.
func (h *InvoiceHandler) ListByCustomer(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	invoices, err := h.service.ListByCustomer(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, invoices)
}
