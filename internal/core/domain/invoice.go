package domain

import "time"

// VATRate is the value-added tax rate applied when the owning customer's
// include-VAT flag is set.
const VATRate = 0.25

// InvoiceItem is a line on an invoice. Items are a child collection fully
// owned by the invoice; replacing an invoice's item list is all-or-nothing.
type InvoiceItem struct {
	ID          string  `json:"id" bson:"_id,omitempty"`
	InvoiceID   string  `json:"invoice_id" bson:"invoice_id"`
	Position    int     `json:"position" bson:"position"`
	Description string  `json:"description" bson:"description"`
	Quantity    float64 `json:"quantity" bson:"quantity"`
	Price       float64 `json:"price" bson:"price"`
}

// Invoice is owner-scoped like Customer. Date fields are date-only values
// stored in ISO form (YYYY-MM-DD), as the provider returns them.
//
// Subtotal, VAT and Total are derived fields recomputed by the store on
// every create and update; caller-supplied values are never trusted.
type Invoice struct {
	ID           string        `json:"id" bson:"_id,omitempty"`
	OwnerID      string        `json:"owner_id" bson:"owner_id"`
	CustomerID   string        `json:"customer_id" bson:"customer_id"`
	Number       string        `json:"number" bson:"number"`
	Date         string        `json:"date" bson:"date"`
	DeliveryDate string        `json:"delivery_date,omitempty" bson:"delivery_date,omitempty"`
	DueDate      string        `json:"due_date,omitempty" bson:"due_date,omitempty"`
	Items        []InvoiceItem `json:"items" bson:"-"`
	Subtotal     float64       `json:"subtotal" bson:"subtotal"`
	VAT          float64       `json:"vat" bson:"vat"`
	Total        float64       `json:"total" bson:"total"`
	Paid         bool          `json:"paid" bson:"paid"`
	ExchangeRate *float64      `json:"exchange_rate,omitempty" bson:"exchange_rate,omitempty"`
	CreatedAt    time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at" bson:"updated_at"`
}

// ComputeTotals derives subtotal, VAT and total from a line item list.
// VAT applies only when the owning customer opted in.
func ComputeTotals(items []InvoiceItem, includeVAT bool) (subtotal, vat, total float64) {
	for _, item := range items {
		subtotal += item.Quantity * item.Price
	}
	if includeVAT {
		vat = subtotal * VATRate
	}
	total = subtotal + vat
	return subtotal, vat, total
}
