package documents

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/billio/invoicing-api/internal/core/domain"
	"github.com/billio/invoicing-api/internal/core/ports"
)

const serviceName = "documents"

// Config holds the settings for the external documents API that renders
// payment barcodes and serves daily exchange rates.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client talks to the documents API. Calls authenticate with the caller's
// session token, not a service key.
type Client struct {
	http    *resty.Client
	baseURL string
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}

	http := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout)

	return &Client{http: http, baseURL: cfg.BaseURL}
}

// FetchBarcode returns the 2D payment barcode image for an invoice. An
// already-rendered barcode is fetched with GET; when none exists the
// payment descriptor is POSTed to render one.
func (c *Client) FetchBarcode(ctx context.Context, accessToken, invoiceID string, payment ports.PaymentDescriptor) ([]byte, error) {
	if c.baseURL == "" {
		return nil, domain.ErrNotConfigured
	}

	path := fmt.Sprintf("/invoices/%s/2d-barcode.png", invoiceID)

	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		Get(path)
	if err == nil && resp.IsSuccess() {
		return resp.Body(), nil
	}

	resp, err = c.http.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetHeader("Content-Type", "application/json").
		SetBody(payment).
		Post(path)
	if err != nil {
		return nil, &domain.RemoteError{Service: serviceName, Message: fmt.Sprintf("barcode request failed: %v", err)}
	}
	if resp.IsError() {
		return nil, &domain.RemoteError{Service: serviceName, Status: resp.StatusCode(), Message: string(resp.Body())}
	}
	return resp.Body(), nil
}

// FetchRate returns the raw exchange-rate value for a currency on a date,
// exactly as the API sent it. The value may use a comma as the decimal
// separator; parsing is the caller's concern.
func (c *Client) FetchRate(ctx context.Context, accessToken, date, currency string) (string, error) {
	if c.baseURL == "" {
		return "", domain.ErrNotConfigured
	}

	var payload struct {
		ExchangeRate any `json:"exchange_rate"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetQueryParam("date", date).
		SetQueryParam("currency", currency).
		SetResult(&payload).
		Get("/api/currency-exchange-rates")
	if err != nil {
		return "", &domain.RemoteError{Service: serviceName, Message: fmt.Sprintf("rate request failed: %v", err)}
	}
	if resp.IsError() {
		return "", &domain.RemoteError{Service: serviceName, Status: resp.StatusCode(), Message: string(resp.Body())}
	}
	raw := rateText(payload.ExchangeRate)
	if raw == "" {
		return "", domain.ErrRateUnavailable
	}
	return raw, nil
}

// rateText normalizes the exchange_rate field, which the API serves either
// as a string ("1,0735") or a bare number depending on its version.
func rateText(v any) string {
	switch value := v.(type) {
	case string:
		return value
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	}
	return ""
}

var (
	_ ports.BarcodeGenerator   = (*Client)(nil)
	_ ports.ExchangeRateSource = (*Client)(nil)
)
