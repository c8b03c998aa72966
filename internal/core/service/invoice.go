package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/billio/invoicing-api/internal/core/domain"
	"github.com/billio/invoicing-api/internal/core/ports"
)

// InvoiceStore is the owner-scoped invoice collection. Derived fields
// (subtotal, VAT, total) are recomputed on every create and update from
// the owning customer's VAT setting; caller-supplied totals are ignored.
type InvoiceStore struct {
	repo      ports.InvoiceRepository
	customers ports.CustomerRepository
	log       zerolog.Logger

	mu    sync.RWMutex
	cache map[string][]domain.Invoice
}

func NewInvoiceStore(repo ports.InvoiceRepository, customers ports.CustomerRepository, log zerolog.Logger) *InvoiceStore {
	return &InvoiceStore{
		repo:      repo,
		customers: customers,
		log:       log,
		cache:     make(map[string][]domain.Invoice),
	}
}

// FetchAll loads the owner's invoices (with items) and refreshes the
// in-memory mirror.
func (s *InvoiceStore) FetchAll(ctx context.Context, ownerID string) ([]domain.Invoice, error) {
	if ownerID == "" {
		return nil, domain.ErrNotAuthenticated
	}

	invoices, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		s.log.Error().Err(err).Str("owner_id", ownerID).Msg("failed to fetch invoices")
		return nil, err
	}

	s.mu.Lock()
	s.cache[ownerID] = cloneInvoices(invoices)
	s.mu.Unlock()

	return invoices, nil
}

// GetByID reads through the mirror before issuing a remote read.
func (s *InvoiceStore) GetByID(ctx context.Context, ownerID, id string) (*domain.Invoice, error) {
	if ownerID == "" {
		return nil, domain.ErrNotAuthenticated
	}

	s.mu.RLock()
	for i := range s.cache[ownerID] {
		if s.cache[ownerID][i].ID == id {
			clone := cloneInvoice(&s.cache[ownerID][i])
			s.mu.RUnlock()
			return clone, nil
		}
	}
	s.mu.RUnlock()

	return s.repo.FindByID(ctx, id, ownerID)
}

// ListByCustomer returns the owner's invoices for one customer.
func (s *InvoiceStore) ListByCustomer(ctx context.Context, ownerID, customerID string) ([]domain.Invoice, error) {
	if ownerID == "" {
		return nil, domain.ErrNotAuthenticated
	}
	return s.repo.ListByCustomer(ctx, ownerID, customerID)
}

// LatestNumber returns the most recently created invoice's number, used to
// seed the next manually entered one. Empty when no invoices exist;
// uniqueness stays with the remote constraint.
func (s *InvoiceStore) LatestNumber(ctx context.Context, ownerID string) (string, error) {
	if ownerID == "" {
		return "", domain.ErrNotAuthenticated
	}

	latest, err := s.repo.LatestByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, domain.ErrInvoiceNotFound) {
			return "", nil
		}
		return "", err
	}
	return latest.Number, nil
}

// Add persists a new invoice with recomputed totals and its item list,
// then appends it to the mirror.
func (s *InvoiceStore) Add(ctx context.Context, ownerID string, in ports.InvoiceInput) (*domain.Invoice, error) {
	if ownerID == "" {
		return nil, domain.ErrNotAuthenticated
	}

	invoice, err := s.build(ctx, ownerID, uuid.NewString(), in)
	if err != nil {
		return nil, err
	}
	invoice.CreatedAt = time.Now().UTC()
	invoice.UpdatedAt = invoice.CreatedAt

	if err := s.repo.Insert(ctx, invoice); err != nil {
		s.log.Error().Err(err).Str("owner_id", ownerID).Msg("failed to add invoice")
		return nil, err
	}
	if err := s.repo.ReplaceItems(ctx, invoice.ID, invoice.Items); err != nil {
		s.log.Error().Err(err).Str("invoice_id", invoice.ID).Msg("item write failed after invoice insert")
		s.dropCache(ownerID)
		return nil, &domain.PartialWriteError{InvoiceID: invoice.ID, Err: err}
	}

	s.mu.Lock()
	if list, ok := s.cache[ownerID]; ok {
		s.cache[ownerID] = append(list, *cloneInvoice(invoice))
	}
	s.mu.Unlock()

	s.log.Info().Str("invoice_id", invoice.ID).Str("number", invoice.Number).Str("owner_id", ownerID).Msg("invoice created")
	return cloneInvoice(invoice), nil
}

// Update rewrites the parent row and replaces the full item list
// (delete-all-then-insert). When the item replacement fails after the
// parent row committed, the error surfaces as a PartialWriteError and the
// parent row is not rolled back; the mirror entry is dropped so the next
// read reflects the server.
func (s *InvoiceStore) Update(ctx context.Context, ownerID, id string, in ports.InvoiceInput) (*domain.Invoice, error) {
	if ownerID == "" {
		return nil, domain.ErrNotAuthenticated
	}

	existing, err := s.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	invoice, err := s.build(ctx, ownerID, id, in)
	if err != nil {
		return nil, err
	}
	invoice.CreatedAt = existing.CreatedAt
	invoice.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, invoice); err != nil {
		s.log.Error().Err(err).Str("invoice_id", id).Msg("failed to update invoice")
		return nil, err
	}
	if err := s.repo.ReplaceItems(ctx, id, invoice.Items); err != nil {
		s.log.Error().Err(err).Str("invoice_id", id).Msg("item replacement failed after parent update")
		s.dropCache(ownerID)
		return nil, &domain.PartialWriteError{InvoiceID: id, Err: err}
	}

	s.mu.Lock()
	if list, ok := s.cache[ownerID]; ok {
		for i := range list {
			if list[i].ID == id {
				list[i] = *cloneInvoice(invoice)
				break
			}
		}
	}
	s.mu.Unlock()

	return cloneInvoice(invoice), nil
}

// Delete removes the invoice and its items remotely and from the mirror.
func (s *InvoiceStore) Delete(ctx context.Context, ownerID, id string) error {
	if ownerID == "" {
		return domain.ErrNotAuthenticated
	}

	if err := s.repo.Delete(ctx, id, ownerID); err != nil {
		s.log.Error().Err(err).Str("invoice_id", id).Msg("failed to delete invoice")
		return err
	}

	s.mu.Lock()
	if list, ok := s.cache[ownerID]; ok {
		kept := list[:0]
		for _, inv := range list {
			if inv.ID != id {
				kept = append(kept, inv)
			}
		}
		s.cache[ownerID] = kept
	}
	s.mu.Unlock()

	s.log.Info().Str("invoice_id", id).Str("owner_id", ownerID).Msg("invoice deleted")
	return nil
}

// build assembles the invoice from caller input, resolving the owning
// customer for the VAT flag and recomputing all derived fields.
func (s *InvoiceStore) build(ctx context.Context, ownerID, id string, in ports.InvoiceInput) (*domain.Invoice, error) {
	customer, err := s.customers.FindByID(ctx, in.CustomerID, ownerID)
	if err != nil {
		return nil, err
	}

	items := make([]domain.InvoiceItem, 0, len(in.Items))
	for i, item := range in.Items {
		items = append(items, domain.InvoiceItem{
			ID:          uuid.NewString(),
			InvoiceID:   id,
			Position:    i,
			Description: item.Description,
			Quantity:    item.Quantity,
			Price:       item.Price,
		})
	}

	subtotal, vat, total := domain.ComputeTotals(items, customer.IncludeVAT)

	return &domain.Invoice{
		ID:           id,
		OwnerID:      ownerID,
		CustomerID:   in.CustomerID,
		Number:       in.Number,
		Date:         in.Date,
		DeliveryDate: in.DeliveryDate,
		DueDate:      in.DueDate,
		Items:        items,
		Subtotal:     subtotal,
		VAT:          vat,
		Total:        total,
		Paid:         in.Paid,
		ExchangeRate: in.ExchangeRate,
	}, nil
}

func (s *InvoiceStore) dropCache(ownerID string) {
	s.mu.Lock()
	delete(s.cache, ownerID)
	s.mu.Unlock()
}

func cloneInvoice(inv *domain.Invoice) *domain.Invoice {
	if inv == nil {
		return nil
	}
	clone := *inv
	clone.Items = append([]domain.InvoiceItem(nil), inv.Items...)
	if inv.ExchangeRate != nil {
		rate := *inv.ExchangeRate
		clone.ExchangeRate = &rate
	}
	return &clone
}

func cloneInvoices(invoices []domain.Invoice) []domain.Invoice {
	clones := make([]domain.Invoice, len(invoices))
	for i := range invoices {
		clones[i] = *cloneInvoice(&invoices[i])
	}
	return clones
}
