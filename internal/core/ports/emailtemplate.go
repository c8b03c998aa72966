package ports

import (
	"context"

	"github.com/billio/invoicing-api/internal/core/domain"
)

// TemplateInput carries caller-supplied template fields.
type TemplateInput struct {
	CustomerID string
	Subject    string
	Body       string
	Recipients []string
}

// TemplateRepository persists the at-most-one-per-customer email template.
type TemplateRepository interface {
	FindByCustomer(ctx context.Context, ownerID, customerID string) (*domain.EmailTemplate, error)
	// Upsert creates or updates the single row for (owner, customer) and
	// returns the stored row.
	Upsert(ctx context.Context, t *domain.EmailTemplate) (*domain.EmailTemplate, error)
}

// TemplateService defines the email-template store.
type TemplateService interface {
	Get(ctx context.Context, ownerID, customerID string) (*domain.EmailTemplate, error)
	Save(ctx context.Context, ownerID string, in TemplateInput) (*domain.EmailTemplate, error)
}
