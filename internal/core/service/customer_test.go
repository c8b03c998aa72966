package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/billio/invoicing-api/internal/core/domain"
	"github.com/billio/invoicing-api/internal/core/ports"
)

func TestCustomerStore_AddAssignsIdentityAndOwnership(t *testing.T) {
	repo := newStubCustomerRepo()
	store := NewCustomerStore(repo, zerolog.Nop())

	c, err := store.Add(context.Background(), "owner-1", ports.CustomerInput{
		Name:       "Acme GmbH",
		Email:      "billing@acme.test",
		Currency:   "EUR",
		IncludeVAT: true,
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if c.ID == "" {
		t.Fatalf("id must be assigned server-side")
	}
	if c.OwnerID != "owner-1" {
		t.Fatalf("expected owner-1, got %q", c.OwnerID)
	}
	if !c.IncludeVAT {
		t.Fatalf("include_vat flag lost")
	}
}

func TestCustomerStore_MirrorMutatesSynchronously(t *testing.T) {
	repo := newStubCustomerRepo()
	store := NewCustomerStore(repo, zerolog.Nop())
	ctx := context.Background()

	if _, err := store.FetchAll(ctx, "owner-1"); err != nil {
		t.Fatalf("fetch: %v", err)
	}

	added, err := store.Add(ctx, "owner-1", ports.CustomerInput{Name: "Acme", Currency: "EUR"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	// The mirror reflects the write without another remote list.
	listCallsBefore := repo.listCalls
	got, err := store.GetByID(ctx, "owner-1", added.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Acme" {
		t.Fatalf("expected Acme, got %q", got.Name)
	}
	if repo.listCalls != listCallsBefore {
		t.Fatalf("read must come from the mirror")
	}

	if _, err := store.Update(ctx, "owner-1", added.ID, ports.CustomerInput{Name: "Acme 2", Currency: "EUR"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err = store.GetByID(ctx, "owner-1", added.ID)
	if err != nil {
		t.Fatalf("get after update: %v", err)
	}
	if got.Name != "Acme 2" {
		t.Fatalf("mirror not updated, got %q", got.Name)
	}

	if err := store.Delete(ctx, "owner-1", added.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.GetByID(ctx, "owner-1", added.ID); !errors.Is(err, domain.ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound after delete, got %v", err)
	}
}

func TestCustomerStore_GetByIDFallsBackToRepo(t *testing.T) {
	repo := newStubCustomerRepo()
	seedCustomer(repo, "cust-1", "owner-1", false)
	store := NewCustomerStore(repo, zerolog.Nop())

	// Cold mirror: the read must still succeed.
	c, err := store.GetByID(context.Background(), "owner-1", "cust-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if c.Name != "Acme GmbH" {
		t.Fatalf("unexpected customer: %+v", c)
	}
}

func TestCustomerStore_OwnerScopingOnReads(t *testing.T) {
	repo := newStubCustomerRepo()
	seedCustomer(repo, "cust-1", "owner-1", false)
	store := NewCustomerStore(repo, zerolog.Nop())

	if _, err := store.GetByID(context.Background(), "owner-2", "cust-1"); !errors.Is(err, domain.ErrCustomerNotFound) {
		t.Fatalf("foreign owner must not see the row, got %v", err)
	}
}

func TestCustomerStore_UnauthenticatedRejected(t *testing.T) {
	store := NewCustomerStore(newStubCustomerRepo(), zerolog.Nop())

	if _, err := store.FetchAll(context.Background(), ""); !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
	if _, err := store.Add(context.Background(), "", ports.CustomerInput{Name: "x"}); !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
}
