package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/billio/invoicing-api/internal/core/domain"
	"github.com/billio/invoicing-api/internal/core/ports"
)

// TemplateStore holds at most one email template per customer. Save is an
// upsert: it creates or updates the single row for that customer.
type TemplateStore struct {
	repo ports.TemplateRepository
	log  zerolog.Logger
}

func NewTemplateStore(repo ports.TemplateRepository, log zerolog.Logger) *TemplateStore {
	return &TemplateStore{repo: repo, log: log}
}

// Get returns the customer's template, or ErrTemplateNotFound.
func (s *TemplateStore) Get(ctx context.Context, ownerID, customerID string) (*domain.EmailTemplate, error) {
	if ownerID == "" {
		return nil, domain.ErrNotAuthenticated
	}
	return s.repo.FindByCustomer(ctx, ownerID, customerID)
}

// Save creates or updates the single row for the customer.
func (s *TemplateStore) Save(ctx context.Context, ownerID string, in ports.TemplateInput) (*domain.EmailTemplate, error) {
	if ownerID == "" {
		return nil, domain.ErrNotAuthenticated
	}

	now := time.Now().UTC()
	template := &domain.EmailTemplate{
		OwnerID:    ownerID,
		CustomerID: in.CustomerID,
		Subject:    in.Subject,
		Body:       in.Body,
		Recipients: append([]string(nil), in.Recipients...),
		UpdatedAt:  now,
	}

	existing, err := s.repo.FindByCustomer(ctx, ownerID, in.CustomerID)
	switch {
	case err == nil:
		template.ID = existing.ID
		template.CreatedAt = existing.CreatedAt
	case errors.Is(err, domain.ErrTemplateNotFound):
		template.ID = uuid.NewString()
		template.CreatedAt = now
	default:
		return nil, err
	}

	saved, err := s.repo.Upsert(ctx, template)
	if err != nil {
		s.log.Error().Err(err).Str("customer_id", in.CustomerID).Msg("failed to save email template")
		return nil, err
	}

	s.log.Info().Str("customer_id", in.CustomerID).Str("owner_id", ownerID).Msg("email template saved")
	return saved, nil
}
