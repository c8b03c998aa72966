package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/billio/invoicing-api/internal/core/domain"
	"github.com/billio/invoicing-api/internal/core/ports"
)

// CustomerStore is the owner-scoped customer collection. It mirrors the
// remote table in memory per owner: reads go through the mirror, and
// successful writes mutate it synchronously so callers see consistent
// state without an extra round trip.
type CustomerStore struct {
	repo ports.CustomerRepository
	log  zerolog.Logger

	mu    sync.RWMutex
	cache map[string][]domain.Customer
}

func NewCustomerStore(repo ports.CustomerRepository, log zerolog.Logger) *CustomerStore {
	return &CustomerStore{
		repo:  repo,
		log:   log,
		cache: make(map[string][]domain.Customer),
	}
}

// FetchAll loads the owner's customers from the remote table and refreshes
// the in-memory mirror.
func (s *CustomerStore) FetchAll(ctx context.Context, ownerID string) ([]domain.Customer, error) {
	if ownerID == "" {
		return nil, domain.ErrNotAuthenticated
	}

	customers, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		s.log.Error().Err(err).Str("owner_id", ownerID).Msg("failed to fetch customers")
		return nil, err
	}

	s.mu.Lock()
	s.cache[ownerID] = append([]domain.Customer(nil), customers...)
	s.mu.Unlock()

	return customers, nil
}

// GetByID reads through the in-memory mirror before issuing a remote read.
func (s *CustomerStore) GetByID(ctx context.Context, ownerID, id string) (*domain.Customer, error) {
	if ownerID == "" {
		return nil, domain.ErrNotAuthenticated
	}

	s.mu.RLock()
	for i := range s.cache[ownerID] {
		if s.cache[ownerID][i].ID == id {
			clone := s.cache[ownerID][i]
			s.mu.RUnlock()
			return &clone, nil
		}
	}
	s.mu.RUnlock()

	return s.repo.FindByID(ctx, id, ownerID)
}

// Add persists a new customer and appends it to the mirror.
func (s *CustomerStore) Add(ctx context.Context, ownerID string, in ports.CustomerInput) (*domain.Customer, error) {
	if ownerID == "" {
		return nil, domain.ErrNotAuthenticated
	}

	now := time.Now().UTC()
	customer := &domain.Customer{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyCustomerInput(customer, in)

	if err := s.repo.Insert(ctx, customer); err != nil {
		s.log.Error().Err(err).Str("owner_id", ownerID).Msg("failed to add customer")
		return nil, err
	}

	s.mu.Lock()
	if list, ok := s.cache[ownerID]; ok {
		s.cache[ownerID] = append(list, *customer)
	}
	s.mu.Unlock()

	s.log.Info().Str("customer_id", customer.ID).Str("owner_id", ownerID).Msg("customer added")
	clone := *customer
	return &clone, nil
}

// Update persists new field values and replaces the mirror entry. Racing
// updates are not serialized: the last write wins.
func (s *CustomerStore) Update(ctx context.Context, ownerID, id string, in ports.CustomerInput) (*domain.Customer, error) {
	if ownerID == "" {
		return nil, domain.ErrNotAuthenticated
	}

	existing, err := s.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	customer := *existing
	applyCustomerInput(&customer, in)
	customer.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, &customer); err != nil {
		s.log.Error().Err(err).Str("customer_id", id).Msg("failed to update customer")
		return nil, err
	}

	s.mu.Lock()
	if list, ok := s.cache[ownerID]; ok {
		for i := range list {
			if list[i].ID == id {
				list[i] = customer
				break
			}
		}
	}
	s.mu.Unlock()

	clone := customer
	return &clone, nil
}

// Delete removes the customer remotely and from the mirror.
func (s *CustomerStore) Delete(ctx context.Context, ownerID, id string) error {
	if ownerID == "" {
		return domain.ErrNotAuthenticated
	}

	if err := s.repo.Delete(ctx, id, ownerID); err != nil {
		s.log.Error().Err(err).Str("customer_id", id).Msg("failed to delete customer")
		return err
	}

	s.mu.Lock()
	if list, ok := s.cache[ownerID]; ok {
		kept := list[:0]
		for _, c := range list {
			if c.ID != id {
				kept = append(kept, c)
			}
		}
		s.cache[ownerID] = kept
	}
	s.mu.Unlock()

	s.log.Info().Str("customer_id", id).Str("owner_id", ownerID).Msg("customer deleted")
	return nil
}

func applyCustomerInput(c *domain.Customer, in ports.CustomerInput) {
	c.Name = in.Name
	c.Email = in.Email
	c.Phone = in.Phone
	c.Company = in.Company
	c.Street = in.Street
	c.HouseNumber = in.HouseNumber
	c.PostalCode = in.PostalCode
	c.City = in.City
	c.Country = in.Country
	c.Address = in.Address
	c.VATID = in.VATID
	c.Currency = in.Currency
	c.IncludeVAT = in.IncludeVAT
	c.IncludeEnglish = in.IncludeEnglish
	c.IncludeBarcode = in.IncludeBarcode
}
