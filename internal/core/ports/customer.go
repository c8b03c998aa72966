package ports

import (
	"context"

	"github.com/billio/invoicing-api/internal/core/domain"
)

// CustomerInput carries caller-supplied customer fields. Identity and
// ownership are never taken from the caller.
type CustomerInput struct {
	Name           string
	Email          string
	Phone          string
	Company        string
	Street         string
	HouseNumber    string
	PostalCode     string
	City           string
	Country        string
	Address        string
	VATID          string
	Currency       string
	IncludeVAT     bool
	IncludeEnglish bool
	IncludeBarcode bool
}

// CustomerRepository defines persistence operations for customers.
// Every operation is filtered by owner id.
type CustomerRepository interface {
	Insert(ctx context.Context, c *domain.Customer) error
	Update(ctx context.Context, c *domain.Customer) error
	Delete(ctx context.Context, id, ownerID string) error
	FindByID(ctx context.Context, id, ownerID string) (*domain.Customer, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Customer, error)
}

// CustomerService defines the owner-scoped customer store operations.
type CustomerService interface {
	FetchAll(ctx context.Context, ownerID string) ([]domain.Customer, error)
	Add(ctx context.Context, ownerID string, in CustomerInput) (*domain.Customer, error)
	Update(ctx context.Context, ownerID, id string, in CustomerInput) (*domain.Customer, error)
	Delete(ctx context.Context, ownerID, id string) error
	GetByID(ctx context.Context, ownerID, id string) (*domain.Customer, error)
}
