package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/billio/invoicing-api/internal/core/domain"
)

const (
	collectionInvoices     = "invoices"
	collectionInvoiceItems = "invoice_items"
)

// InvoiceRepository persists invoice parent rows and their item child
// collection. Items are keyed by invoice_id and replaced wholesale;
// partial item updates do not exist.
type InvoiceRepository struct {
	invoices *mongo.Collection
	items    *mongo.Collection
}

func NewInvoiceRepository(db *mongo.Database) *InvoiceRepository {
	return &InvoiceRepository{
		invoices: db.Collection(collectionInvoices),
		items:    db.Collection(collectionInvoiceItems),
	}
}

func (r *InvoiceRepository) Insert(ctx context.Context, inv *domain.Invoice) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.invoices.InsertOne(ctx, inv)
	if mongo.IsDuplicateKeyError(err) {
		return domain.ErrDuplicateInvoiceNumber
	}
	return err
}

func (r *InvoiceRepository) Update(ctx context.Context, inv *domain.Invoice) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.invoices.ReplaceOne(ctx, bson.M{"_id": inv.ID, "owner_id": inv.OwnerID}, inv)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateInvoiceNumber
		}
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrInvoiceNotFound
	}
	return nil
}

func (r *InvoiceRepository) Delete(ctx context.Context, id, ownerID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.invoices.DeleteOne(ctx, bson.M{"_id": id, "owner_id": ownerID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrInvoiceNotFound
	}
	_, err = r.items.DeleteMany(ctx, bson.M{"invoice_id": id})
	return err
}

func (r *InvoiceRepository) FindByID(ctx context.Context, id, ownerID string) (*domain.Invoice, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var inv domain.Invoice
	err := r.invoices.FindOne(ctx, bson.M{"_id": id, "owner_id": ownerID}).Decode(&inv)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrInvoiceNotFound
		}
		return nil, err
	}

	items, err := r.loadItems(ctx, []string{inv.ID})
	if err != nil {
		return nil, err
	}
	inv.Items = items[inv.ID]
	return &inv, nil
}

func (r *InvoiceRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Invoice, error) {
	return r.list(ctx, bson.M{"owner_id": ownerID})
}

func (r *InvoiceRepository) ListByCustomer(ctx context.Context, ownerID, customerID string) ([]domain.Invoice, error) {
	return r.list(ctx, bson.M{"owner_id": ownerID, "customer_id": customerID})
}

func (r *InvoiceRepository) list(ctx context.Context, filter bson.M) ([]domain.Invoice, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.invoices.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var invoices []domain.Invoice
	if err := cursor.All(ctx, &invoices); err != nil {
		return nil, err
	}
	if len(invoices) == 0 {
		return invoices, nil
	}

	ids := make([]string, len(invoices))
	for i := range invoices {
		ids[i] = invoices[i].ID
	}
	items, err := r.loadItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range invoices {
		invoices[i].Items = items[invoices[i].ID]
	}
	return invoices, nil
}

// LatestByOwner returns the most recently created invoice for the owner.
func (r *InvoiceRepository) LatestByOwner(ctx context.Context, ownerID string) (*domain.Invoice, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})
	var inv domain.Invoice
	err := r.invoices.FindOne(ctx, bson.M{"owner_id": ownerID}, opts).Decode(&inv)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrInvoiceNotFound
		}
		return nil, err
	}
	return &inv, nil
}

// ReplaceItems swaps the invoice's full item list: old items deleted, new
// items inserted. All-or-nothing from the caller's point of view; a
// failure here after a parent write is the documented inconsistency
// window.
func (r *InvoiceRepository) ReplaceItems(ctx context.Context, invoiceID string, items []domain.InvoiceItem) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.items.DeleteMany(ctx, bson.M{"invoice_id": invoiceID}); err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}

	docs := make([]any, len(items))
	for i := range items {
		docs[i] = items[i]
	}
	_, err := r.items.InsertMany(ctx, docs)
	return err
}

func (r *InvoiceRepository) loadItems(ctx context.Context, invoiceIDs []string) (map[string][]domain.InvoiceItem, error) {
	opts := options.Find().SetSort(bson.D{{Key: "position", Value: 1}})
	cursor, err := r.items.Find(ctx, bson.M{"invoice_id": bson.M{"$in": invoiceIDs}}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var items []domain.InvoiceItem
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}

	byInvoice := make(map[string][]domain.InvoiceItem, len(invoiceIDs))
	for _, item := range items {
		byInvoice[item.InvoiceID] = append(byInvoice[item.InvoiceID], item)
	}
	return byInvoice, nil
}

// EnsureIndexes creates the owner index, the remote uniqueness constraint
// on (owner_id, number) and the item foreign-key index.
func (r *InvoiceRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.invoices.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{
			Keys:    bson.D{{Key: "owner_id", Value: 1}, {Key: "number", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	if err != nil {
		return err
	}
	_, err = r.items.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "invoice_id", Value: 1}},
	})
	return err
}
