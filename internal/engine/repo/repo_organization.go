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

type IOrganizationRepository interface {
	Create(ctx context.Context, org *model.Organization) error
	GetByOrgId(ctx context.Context, orgId string) (*model.Organization, error)
	SetSoftDeleted(ctx context.Context, orgId string, at time.Time, requestId string) error
	ClearSoftDeleted(ctx context.Context, orgId string) error
	ListSoftDeletedBefore(ctx context.Context, cutoff time.Time) ([]model.Organization, error)
	Delete(ctx context.Context, orgId string) error
}

type OrganizationRepo struct {
	collection *mongo.Collection
}

func NewOrganizationRepo(mongoClient *database.MongoClient) *OrganizationRepo {
	return &OrganizationRepo{
		collection: mongoClient.GetCollection(model.Organization{}.CollectionName()),
	}
}

func (r *OrganizationRepo) Create(ctx context.Context, org *model.Organization) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	org.CreatedAt = time.Now()
	org.UpdatedAt = time.Now()

	if _, err := r.collection.InsertOne(ctx, org); err != nil {
		return fmt.Errorf("failed to insert organization: %w", err)
	}
	return nil
}

func (r *OrganizationRepo) GetByOrgId(ctx context.Context, orgId string) (*model.Organization, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var org model.Organization
	err := r.collection.FindOne(ctx, bson.M{"org_id": orgId}).Decode(&org)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNoMatch
		}
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}
	return &org, nil
}

// SetSoftDeleted suspends the tenant. All further access is gated on
// soft_deleted_at until undo or permanent removal.
func (r *OrganizationRepo) SetSoftDeleted(ctx context.Context, orgId string, at time.Time, requestId string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.collection.UpdateOne(
		ctx,
		bson.M{"org_id": orgId},
		bson.M{"$set": bson.M{
			"soft_deleted_at":     at,
			"deletion_request_id": requestId,
			"status":              model.OrgStatusSuspended,
			"updated_at":          time.Now(),
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to soft delete organization: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNoMatch
	}
	return nil
}

func (r *OrganizationRepo) ClearSoftDeleted(ctx context.Context, orgId string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.collection.UpdateOne(
		ctx,
		bson.M{"org_id": orgId},
		bson.M{
			"$unset": bson.M{"soft_deleted_at": "", "deletion_request_id": ""},
			"$set":   bson.M{"status": model.OrgStatusActive, "updated_at": time.Now()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to clear soft delete: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNoMatch
	}
	return nil
}

// ListSoftDeletedBefore returns organizations whose soft delete
// timestamp is at or before the cutoff. The sweep feeds on this.
func (r *OrganizationRepo) ListSoftDeletedBefore(ctx context.Context, cutoff time.Time) ([]model.Organization, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{
		"soft_deleted_at": bson.M{"$lte": cutoff},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list soft-deleted organizations: %w", err)
	}
	var orgs []model.Organization
	if err := cursor.All(ctx, &orgs); err != nil {
		return nil, fmt.Errorf("failed to decode organizations: %w", err)
	}
	return orgs, nil
}

func (r *OrganizationRepo) Delete(ctx context.Context, orgId string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.collection.DeleteOne(ctx, bson.M{"org_id": orgId}); err != nil {
		return fmt.Errorf("failed to delete organization: %w", err)
	}
	return nil
}
