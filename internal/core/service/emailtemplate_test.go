package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/billio/invoicing-api/internal/core/domain"
	"github.com/billio/invoicing-api/internal/core/ports"
)

type stubTemplateRepo struct {
	byKey map[string]*domain.EmailTemplate
}

func newStubTemplateRepo() *stubTemplateRepo {
	return &stubTemplateRepo{byKey: make(map[string]*domain.EmailTemplate)}
}

func (r *stubTemplateRepo) key(ownerID, customerID string) string {
	return ownerID + ":" + customerID
}

func (r *stubTemplateRepo) FindByCustomer(_ context.Context, ownerID, customerID string) (*domain.EmailTemplate, error) {
	t, ok := r.byKey[r.key(ownerID, customerID)]
	if !ok {
		return nil, domain.ErrTemplateNotFound
	}
	clone := *t
	return &clone, nil
}

func (r *stubTemplateRepo) Upsert(_ context.Context, t *domain.EmailTemplate) (*domain.EmailTemplate, error) {
	clone := *t
	r.byKey[r.key(t.OwnerID, t.CustomerID)] = &clone
	stored := clone
	return &stored, nil
}

func TestTemplateStore_SaveCreatesThenUpdates(t *testing.T) {
	repo := newStubTemplateRepo()
	store := NewTemplateStore(repo, zerolog.Nop())
	ctx := context.Background()

	created, err := store.Save(ctx, "owner-1", ports.TemplateInput{
		CustomerID: "cust-1",
		Subject:    "Invoice attached",
		Body:       "Hello,\nplease find your invoice attached.",
		Recipients: []string{"billing@acme.test"},
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("id must be assigned on create")
	}

	updated, err := store.Save(ctx, "owner-1", ports.TemplateInput{
		CustomerID: "cust-1",
		Subject:    "Updated subject",
		Body:       "New body",
		Recipients: []string{"billing@acme.test", "cc@acme.test"},
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	// Still the same single row.
	if updated.ID != created.ID {
		t.Fatalf("update must keep the row identity: %q vs %q", updated.ID, created.ID)
	}
	if updated.CreatedAt != created.CreatedAt {
		t.Fatalf("update must keep created_at")
	}
	if updated.Subject != "Updated subject" {
		t.Fatalf("subject not updated: %q", updated.Subject)
	}
	if len(repo.byKey) != 1 {
		t.Fatalf("expected exactly one row per customer, got %d", len(repo.byKey))
	}
}

func TestTemplateStore_GetMissing(t *testing.T) {
	store := NewTemplateStore(newStubTemplateRepo(), zerolog.Nop())

	if _, err := store.Get(context.Background(), "owner-1", "cust-1"); !errors.Is(err, domain.ErrTemplateNotFound) {
		t.Fatalf("expected ErrTemplateNotFound, got %v", err)
	}
}

func TestTemplateStore_TemplatesAreOwnerScoped(t *testing.T) {
	repo := newStubTemplateRepo()
	store := NewTemplateStore(repo, zerolog.Nop())
	ctx := context.Background()

	if _, err := store.Save(ctx, "owner-1", ports.TemplateInput{CustomerID: "cust-1", Subject: "s", Body: "b"}); err != nil {
		t.Fatalf("save: %v", err)
	}

	if _, err := store.Get(ctx, "owner-2", "cust-1"); !errors.Is(err, domain.ErrTemplateNotFound) {
		t.Fatalf("foreign owner must not see the template, got %v", err)
	}
}

func TestTemplateStore_UnauthenticatedRejected(t *testing.T) {
	store := NewTemplateStore(newStubTemplateRepo(), zerolog.Nop())

	if _, err := store.Save(context.Background(), "", ports.TemplateInput{CustomerID: "c"}); !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
}
