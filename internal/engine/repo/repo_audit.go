package repo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/scenecast/scenecast/internal/engine/model"
	"github.com/scenecast/scenecast/pkg/database"
)

type IAuditRepository interface {
	Upsert(ctx context.Context, audit *model.DeletedOrganizationAudit) error
	GetByRequestId(ctx context.Context, requestId string) (*model.DeletedOrganizationAudit, error)
}

// AuditRepo writes the independent deletion audit records. Upsert is
// keyed by the originating request id so a re-run of the sweep over a
// partially cleaned tenant cannot produce a duplicate record.
type AuditRepo struct {
	collection *mongo.Collection
}

func NewAuditRepo(mongoClient *database.MongoClient) *AuditRepo {
	return &AuditRepo{
		collection: mongoClient.GetCollection(model.DeletedOrganizationAudit{}.CollectionName()),
	}
}

func (r *AuditRepo) Upsert(ctx context.Context, audit *model.DeletedOrganizationAudit) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"request_id": audit.RequestId},
		bson.M{"$setOnInsert": audit},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert deletion audit: %w", err)
	}
	return nil
}

func (r *AuditRepo) GetByRequestId(ctx context.Context, requestId string) (*model.DeletedOrganizationAudit, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var audit model.DeletedOrganizationAudit
	err := r.collection.FindOne(ctx, bson.M{"request_id": requestId}).Decode(&audit)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNoMatch
		}
		return nil, fmt.Errorf("failed to get deletion audit: %w", err)
	}
	return &audit, nil
}
