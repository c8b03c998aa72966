package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/billio/invoicing-api/internal/core/domain"
)

const collectionCompanyInfo = "company_info"

// CompanyRepository persists the per-owner company singleton.
type CompanyRepository struct {
	col *mongo.Collection
}

func NewCompanyRepository(db *mongo.Database) *CompanyRepository {
	return &CompanyRepository{col: db.Collection(collectionCompanyInfo)}
}

func (r *CompanyRepository) FindByOwner(ctx context.Context, ownerID string) (*domain.CompanyInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var info domain.CompanyInfo
	err := r.col.FindOne(ctx, bson.M{"owner_id": ownerID}).Decode(&info)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCompanyNotFound
		}
		return nil, err
	}
	return &info, nil
}

func (r *CompanyRepository) Upsert(ctx context.Context, info *domain.CompanyInfo) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Replace().SetUpsert(true)
	_, err := r.col.ReplaceOne(ctx, bson.M{"owner_id": info.OwnerID}, info, opts)
	return err
}

// EnsureIndexes creates the singleton-per-owner constraint.
func (r *CompanyRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "owner_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
