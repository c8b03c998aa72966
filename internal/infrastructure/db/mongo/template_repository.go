package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/billio/invoicing-api/internal/core/domain"
)

const collectionEmailTemplates = "email_templates"

// TemplateRepository persists email templates, at most one per
// (owner, customer) pair.
type TemplateRepository struct {
	col *mongo.Collection
}

func NewTemplateRepository(db *mongo.Database) *TemplateRepository {
	return &TemplateRepository{col: db.Collection(collectionEmailTemplates)}
}

func (r *TemplateRepository) FindByCustomer(ctx context.Context, ownerID, customerID string) (*domain.EmailTemplate, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var t domain.EmailTemplate
	err := r.col.FindOne(ctx, bson.M{"owner_id": ownerID, "customer_id": customerID}).Decode(&t)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTemplateNotFound
		}
		return nil, err
	}
	return &t, nil
}

// Upsert creates or updates the single row for (owner, customer) and
// returns the stored row.
func (r *TemplateRepository) Upsert(ctx context.Context, t *domain.EmailTemplate) (*domain.EmailTemplate, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Replace().SetUpsert(true)
	filter := bson.M{"owner_id": t.OwnerID, "customer_id": t.CustomerID}
	if _, err := r.col.ReplaceOne(ctx, filter, t, opts); err != nil {
		return nil, err
	}
	return r.FindByCustomer(ctx, t.OwnerID, t.CustomerID)
}

// EnsureIndexes creates the at-most-one-per-customer constraint.
func (r *TemplateRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "owner_id", Value: 1}, {Key: "customer_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
