package ports

import (
	"context"

	"github.com/billio/invoicing-api/internal/core/domain"
)

// InvoiceItemInput is one caller-supplied line item.
type InvoiceItemInput struct {
	Description string
	Quantity    float64
	Price       float64
}

// InvoiceInput carries caller-supplied invoice fields. Subtotal, VAT and
// total are intentionally absent: the store recomputes them and ignores
// anything the caller sends.
type InvoiceInput struct {
	CustomerID   string
	Number       string
	Date         string
	DeliveryDate string
	DueDate      string
	Items        []InvoiceItemInput
	Paid         bool
	ExchangeRate *float64
}

// InvoiceRepository defines persistence for invoices and their items.
// Parent rows and the item child collection are written separately;
// ReplaceItems is delete-all-then-insert.
type InvoiceRepository interface {
	Insert(ctx context.Context, inv *domain.Invoice) error
	Update(ctx context.Context, inv *domain.Invoice) error
	Delete(ctx context.Context, id, ownerID string) error
	FindByID(ctx context.Context, id, ownerID string) (*domain.Invoice, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Invoice, error)
	ListByCustomer(ctx context.Context, ownerID, customerID string) ([]domain.Invoice, error)
	// LatestByOwner returns the most recently created invoice for the owner.
	LatestByOwner(ctx context.Context, ownerID string) (*domain.Invoice, error)
	ReplaceItems(ctx context.Context, invoiceID string, items []domain.InvoiceItem) error
}

// InvoiceService defines the owner-scoped invoice store operations.
type InvoiceService interface {
	FetchAll(ctx context.Context, ownerID string) ([]domain.Invoice, error)
	Add(ctx context.Context, ownerID string, in InvoiceInput) (*domain.Invoice, error)
	Update(ctx context.Context, ownerID, id string, in InvoiceInput) (*domain.Invoice, error)
	Delete(ctx context.Context, ownerID, id string) error
	GetByID(ctx context.Context, ownerID, id string) (*domain.Invoice, error)
	ListByCustomer(ctx context.Context, ownerID, customerID string) ([]domain.Invoice, error)
	// LatestNumber returns the most recently created invoice's number to
	// seed the next manually entered one; empty when no invoices exist.
	LatestNumber(ctx context.Context, ownerID string) (string, error)
}
