package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/billio/invoicing-api/internal/api/metrics"
	"github.com/billio/invoicing-api/internal/core/ports"
)

// RateResolver is the slice of the exchange-rate service the handler needs.
type RateResolver interface {
	Rate(ctx context.Context, accessToken, date, currency string) (rate float64, ok bool, err error)
}

// DocumentsHandler handles barcode and exchange-rate requests backed by the
// external documents API.
type DocumentsHandler struct {
	invoices ports.InvoiceService
	company  ports.CompanyService
	barcodes ports.BarcodeGenerator
	rates    RateResolver
}

func NewDocumentsHandler(invoices ports.InvoiceService, company ports.CompanyService, barcodes ports.BarcodeGenerator, rates RateResolver) *DocumentsHandler {
	return &DocumentsHandler{invoices: invoices, company: company, barcodes: barcodes, rates: rates}
}

// Barcode handles GET and POST /v1/invoices/:id/barcode. The payment
// descriptor is assembled server-side from the invoice and the issuer's
// company info; the upstream call reuses an already-rendered barcode when
// one exists.
func (h *DocumentsHandler) Barcode(c echo.Context) error {
	userID, token, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	invoice, err := h.invoices.GetByID(ctx, userID, c.Param("id"))
	if err != nil {
		return err
	}
	info, err := h.company.Get(ctx, userID)
	if err != nil {
		return err
	}

	payment := ports.PaymentDescriptor{
		Amount:        invoice.Total,
		RecipientName: info.Name,
		RecipientAddress: ports.PaymentAddress{
			Street:      info.Street,
			HouseNumber: info.HouseNumber,
			City: ports.PaymentCity{
				Name:       info.City,
				PostalCode: info.PostalCode,
			},
		},
		IBAN:        info.IBAN,
		Model:       info.PinID,
		CallNumber:  invoice.Number,
		Description: fmt.Sprintf("Invoice %s", invoice.Number),
	}

	img, err := h.barcodes.FetchBarcode(ctx, token, invoice.ID, payment)
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "image/png", img)
}

type rateResponse struct {
	Rate      *float64 `json:"rate"`
	Available bool     `json:"available"`
}

// ExchangeRate handles GET /v1/exchange-rates?date=&currency=. EUR and
// missing parameters yield an empty result rather than an error.
func (h *DocumentsHandler) ExchangeRate(c echo.Context) error {
	_, token, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	date := c.QueryParam("date")
	currency := c.QueryParam("currency")

	rate, ok, err := h.rates.Rate(c.Request().Context(), token, date, currency)
	if err != nil {
		metrics.RateLookupsTotal.WithLabelValues("error").Inc()
		return err
	}
	if !ok {
		metrics.RateLookupsTotal.WithLabelValues("unavailable").Inc()
		return c.JSON(http.StatusOK, rateResponse{Available: false})
	}

	metrics.RateLookupsTotal.WithLabelValues("ok").Inc()
	return c.JSON(http.StatusOK, rateResponse{Rate: &rate, Available: true})
}
