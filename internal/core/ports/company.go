package ports

import (
	"context"

	"github.com/billio/invoicing-api/internal/core/domain"
)

// CompanyInput carries caller-supplied company fields.
type CompanyInput struct {
	Name        string
	Address     string
	Street      string
	HouseNumber string
	PostalCode  string
	City        string
	VATID       string
	IBAN        string
	PinID       string
	Web         string
	Email       string
	Phone       string
}

// CompanyRepository persists the per-owner company singleton.
type CompanyRepository interface {
	FindByOwner(ctx context.Context, ownerID string) (*domain.CompanyInfo, error)
	Upsert(ctx context.Context, info *domain.CompanyInfo) error
}

// CompanyService defines the company store. Get lazily creates the
// placeholder row; Save always reloads after writing so server-computed
// fields are normalized.
type CompanyService interface {
	Get(ctx context.Context, ownerID string) (*domain.CompanyInfo, error)
	Save(ctx context.Context, ownerID string, in CompanyInput) (*domain.CompanyInfo, error)
	UploadLogo(ctx context.Context, ownerID, filename, contentType string, data []byte) (string, error)
	LogoLink(ctx context.Context, ownerID string) (string, error)
}
