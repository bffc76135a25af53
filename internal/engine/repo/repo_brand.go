package repo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/scenecast/scenecast/internal/engine/model"
	"github.com/scenecast/scenecast/pkg/database"
)

type IBrandRepository interface {
	Create(ctx context.Context, brand *model.Brand) error
	ListByOrg(ctx context.Context, orgId string) ([]model.Brand, error)
	DeleteByOrg(ctx context.Context, orgId string) (int64, error)
}

type BrandRepo struct {
	collection *mongo.Collection
}

func NewBrandRepo(mongoClient *database.MongoClient) *BrandRepo {
	return &BrandRepo{
		collection: mongoClient.GetCollection(model.Brand{}.CollectionName()),
	}
}

func (r *BrandRepo) Create(ctx context.Context, brand *model.Brand) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	brand.CreatedAt = time.Now()
	brand.UpdatedAt = time.Now()

	if _, err := r.collection.InsertOne(ctx, brand); err != nil {
		return fmt.Errorf("failed to insert brand: %w", err)
	}
	return nil
}

func (r *BrandRepo) ListByOrg(ctx context.Context, orgId string) ([]model.Brand, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{"org_id": orgId})
	if err != nil {
		return nil, fmt.Errorf("failed to list brands: %w", err)
	}
	var brands []model.Brand
	if err := cursor.All(ctx, &brands); err != nil {
		return nil, fmt.Errorf("failed to decode brands: %w", err)
	}
	return brands, nil
}

func (r *BrandRepo) DeleteByOrg(ctx context.Context, orgId string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	res, err := r.collection.DeleteMany(ctx, bson.M{"org_id": orgId})
	if err != nil {
		return 0, fmt.Errorf("failed to delete brands by org: %w", err)
	}
	return res.DeletedCount, nil
}
