package domain

import "time"

// Customer is owned by exactly one user; every read and write is scoped by
// OwnerID at the query layer (row-level security is additionally enforced
// server-side).
type Customer struct {
	ID      string `json:"id" bson:"_id,omitempty"`
	OwnerID string `json:"owner_id" bson:"owner_id"`
	Name    string `json:"name" bson:"name"`
	Email   string `json:"email,omitempty" bson:"email,omitempty"`
	Phone   string `json:"phone,omitempty" bson:"phone,omitempty"`
	Company string `json:"company,omitempty" bson:"company,omitempty"`

	// Structured address.
	Street      string `json:"street,omitempty" bson:"street,omitempty"`
	HouseNumber string `json:"house_number,omitempty" bson:"house_number,omitempty"`
	PostalCode  string `json:"postal_code,omitempty" bson:"postal_code,omitempty"`
	City        string `json:"city,omitempty" bson:"city,omitempty"`
	Country     string `json:"country,omitempty" bson:"country,omitempty"`

	// Address is the legacy free-text field, kept for rows created before
	// the structured fields existed.
	Address string `json:"address,omitempty" bson:"address,omitempty"`

	VATID    string `json:"vat_id,omitempty" bson:"vat_id,omitempty"`
	Currency string `json:"currency" bson:"currency"`

	IncludeVAT     bool `json:"include_vat" bson:"include_vat"`
	IncludeEnglish bool `json:"include_english_translation" bson:"include_english_translation"`
	IncludeBarcode bool `json:"include_bar_code" bson:"include_bar_code"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}
