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

type IDeletionRequestRepository interface {
	Create(ctx context.Context, request *model.DeletionRequest) error
	GetByRequestId(ctx context.Context, requestId string) (*model.DeletionRequest, error)
	ConfirmRequested(ctx context.Context, requestId, token string, now time.Time, scheduledDeletionAt time.Time, undoToken string, undoExpiresAt time.Time, event model.AuditEvent) (*model.DeletionRequest, error)
	UndoConfirmed(ctx context.Context, requestId, token string, now time.Time, windowStart time.Time, event model.AuditEvent) (*model.DeletionRequest, error)
	MarkCompleted(ctx context.Context, requestId string, at time.Time, event model.AuditEvent) error
	AppendEvent(ctx context.Context, requestId string, event model.AuditEvent) error
}

type DeletionRequestRepo struct {
	collection *mongo.Collection
}

func NewDeletionRequestRepo(mongoClient *database.MongoClient) *DeletionRequestRepo {
	return &DeletionRequestRepo{
		collection: mongoClient.GetCollection(model.DeletionRequest{}.CollectionName()),
	}
}

func (r *DeletionRequestRepo) Create(ctx context.Context, request *model.DeletionRequest) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.collection.InsertOne(ctx, request); err != nil {
		return fmt.Errorf("failed to insert deletion request: %w", err)
	}
	return nil
}

func (r *DeletionRequestRepo) GetByRequestId(ctx context.Context, requestId string) (*model.DeletionRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var request model.DeletionRequest
	err := r.collection.FindOne(ctx, bson.M{"request_id": requestId}).Decode(&request)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNoMatch
		}
		return nil, fmt.Errorf("failed to get deletion request: %w", err)
	}
	return &request, nil
}

// ConfirmRequested consumes the confirmation token. Filter and
// mutation run as one conditional update, so a second concurrent
// confirm sees ErrNoMatch rather than a second success.
func (r *DeletionRequestRepo) ConfirmRequested(ctx context.Context, requestId, token string, now time.Time, scheduledDeletionAt time.Time, undoToken string, undoExpiresAt time.Time, event model.AuditEvent) (*model.DeletionRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var request model.DeletionRequest
	err := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{
			"request_id":       requestId,
			"token":            token,
			"status":           model.DeletionStatusRequested,
			"token_expires_at": bson.M{"$gt": now},
		},
		bson.M{
			"$set": bson.M{
				"status":                model.DeletionStatusConfirmed,
				"confirmed_at":          now,
				"scheduled_deletion_at": scheduledDeletionAt,
				"undo_token":            undoToken,
				"undo_expires_at":       undoExpiresAt,
			},
			"$unset": bson.M{"token": "", "token_expires_at": ""},
			"$push":  bson.M{"audit_log": event},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&request)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNoMatch
		}
		return nil, fmt.Errorf("failed to confirm deletion request: %w", err)
	}
	return &request, nil
}

// UndoConfirmed consumes the undo token. The filter checks the undo
// window against both confirmed_at and the stored undo_expires_at as
// well as the token itself; a structurally valid token outside the
// window does not match.
func (r *DeletionRequestRepo) UndoConfirmed(ctx context.Context, requestId, token string, now time.Time, windowStart time.Time, event model.AuditEvent) (*model.DeletionRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var request model.DeletionRequest
	err := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{
			"request_id":      requestId,
			"undo_token":      token,
			"status":          model.DeletionStatusConfirmed,
			"confirmed_at":    bson.M{"$gt": windowStart},
			"undo_expires_at": bson.M{"$gt": now},
		},
		bson.M{
			"$set":   bson.M{"status": model.DeletionStatusUndone},
			"$unset": bson.M{"undo_token": "", "undo_expires_at": ""},
			"$push":  bson.M{"audit_log": event},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&request)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNoMatch
		}
		return nil, fmt.Errorf("failed to undo deletion request: %w", err)
	}
	return &request, nil
}

// MarkCompleted is performed only by the cleanup sweep.
func (r *DeletionRequestRepo) MarkCompleted(ctx context.Context, requestId string, at time.Time, event model.AuditEvent) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"request_id": requestId, "status": model.DeletionStatusConfirmed},
		bson.M{
			"$set":  bson.M{"status": model.DeletionStatusCompleted, "completed_at": at},
			"$push": bson.M{"audit_log": event},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to mark deletion request completed: %w", err)
	}
	return nil
}

func (r *DeletionRequestRepo) AppendEvent(ctx context.Context, requestId string, event model.AuditEvent) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"request_id": requestId},
		bson.M{"$push": bson.M{"audit_log": event}},
	)
	if err != nil {
		return fmt.Errorf("failed to append audit event: %w", err)
	}
	return nil
}
