package domain

import "time"

// CompanyInfo is a per-tenant singleton holding the issuer details printed
// on invoices. It is lazily created with placeholder defaults on first
// access when absent.
type CompanyInfo struct {
	OwnerID     string    `json:"owner_id" bson:"owner_id"`
	Name        string    `json:"name" bson:"name"`
	Address     string    `json:"address,omitempty" bson:"address,omitempty"`
	Street      string    `json:"street,omitempty" bson:"street,omitempty"`
	HouseNumber string    `json:"house_number,omitempty" bson:"house_number,omitempty"`
	PostalCode  string    `json:"postal_code,omitempty" bson:"postal_code,omitempty"`
	City        string    `json:"city,omitempty" bson:"city,omitempty"`
	VATID       string    `json:"vat_id,omitempty" bson:"vat_id,omitempty"`
	IBAN        string    `json:"iban,omitempty" bson:"iban,omitempty"`
	LogoURL     string    `json:"logo_url,omitempty" bson:"logo_url,omitempty"`
	LogoPath    string    `json:"-" bson:"logo_path,omitempty"`
	PinID       string    `json:"pin_id,omitempty" bson:"pin_id,omitempty"`
	Web         string    `json:"web,omitempty" bson:"web,omitempty"`
	Email       string    `json:"email,omitempty" bson:"email,omitempty"`
	Phone       string    `json:"phone,omitempty" bson:"phone,omitempty"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

// DefaultCompanyInfo returns the placeholder row written on first access.
func DefaultCompanyInfo(ownerID string) *CompanyInfo {
	now := time.Now().UTC()
	return &CompanyInfo{
		OwnerID:   ownerID,
		Name:      "My Company",
		CreatedAt: now,
		UpdatedAt: now,
	}
}
