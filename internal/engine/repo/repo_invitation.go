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

type IInvitationRepository interface {
	Create(ctx context.Context, invitation *model.OrganizationInvitation) error
	Accept(ctx context.Context, invitationId, token string, now time.Time) (*model.OrganizationInvitation, error)
	DeleteByOrg(ctx context.Context, orgId string) (int64, error)
}

type InvitationRepo struct {
	collection *mongo.Collection
}

func NewInvitationRepo(mongoClient *database.MongoClient) *InvitationRepo {
	return &InvitationRepo{
		collection: mongoClient.GetCollection(model.OrganizationInvitation{}.CollectionName()),
	}
}

func (r *InvitationRepo) Create(ctx context.Context, invitation *model.OrganizationInvitation) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	invitation.CreatedAt = time.Now()

	if _, err := r.collection.InsertOne(ctx, invitation); err != nil {
		return fmt.Errorf("failed to insert invitation: %w", err)
	}
	return nil
}

// Accept consumes the invitation token in one conditional update so
// two concurrent accepts cannot both pass validation.
func (r *InvitationRepo) Accept(ctx context.Context, invitationId, token string, now time.Time) (*model.OrganizationInvitation, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var invitation model.OrganizationInvitation
	err := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{
			"invitation_id": invitationId,
			"token":         token,
			"status":        model.InvitationStatusPending,
			"expires_at":    bson.M{"$gt": now},
		},
		bson.M{"$set": bson.M{"status": model.InvitationStatusAccepted, "token": ""}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&invitation)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNoMatch
		}
		return nil, fmt.Errorf("failed to accept invitation: %w", err)
	}
	return &invitation, nil
}

func (r *InvitationRepo) DeleteByOrg(ctx context.Context, orgId string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	res, err := r.collection.DeleteMany(ctx, bson.M{"org_id": orgId})
	if err != nil {
		return 0, fmt.Errorf("failed to delete invitations by org: %w", err)
	}
	return res.DeletedCount, nil
}
