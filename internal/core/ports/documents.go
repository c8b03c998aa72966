package ports

import "context"

// PaymentCity is the city block of a payment descriptor.
type PaymentCity struct {
	Name       string `json:"name"`
	PostalCode string `json:"postalCode"`
}

// PaymentAddress is the recipient address of a payment descriptor.
type PaymentAddress struct {
	Street      string      `json:"street"`
	HouseNumber string      `json:"houseNumber"`
	City        PaymentCity `json:"city"`
}

// PaymentDescriptor is the POST body sent to the barcode endpoint. Field
// names follow the documents API contract.
type PaymentDescriptor struct {
	Amount           float64        `json:"amount"`
	RecipientName    string         `json:"recipientName"`
	RecipientAddress PaymentAddress `json:"recipientAddress"`
	IBAN             string         `json:"iban"`
	Model            string         `json:"model"`
	CallNumber       string         `json:"callNumber"`
	Description      string         `json:"description"`
}

// BarcodeGenerator fetches the 2D payment barcode image for an invoice,
// authenticated with the caller's session token.
type BarcodeGenerator interface {
	FetchBarcode(ctx context.Context, accessToken, invoiceID string, payment PaymentDescriptor) ([]byte, error)
}

// ExchangeRateSource returns the raw exchange-rate value for a currency on
// a date. The value is returned as the API sent it; it may use a comma as
// the decimal separator.
type ExchangeRateSource interface {
	FetchRate(ctx context.Context, accessToken, date, currency string) (string, error)
}

// RateCache caches parsed exchange rates by (currency, date).
type RateCache interface {
	Get(ctx context.Context, currency, date string) (float64, bool, error)
	Set(ctx context.Context, currency, date string, rate float64) error
}
