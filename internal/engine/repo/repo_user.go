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

type IUserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByUserId(ctx context.Context, userId string) (*model.User, error)
	GetClaimsVersion(ctx context.Context, userId string) (int64, error)
	WriteAuthClaims(ctx context.Context, userId string, claims *model.AuthorizationToken, signed string) error
	IncClaimsVersion(ctx context.Context, userId string) error
	Delete(ctx context.Context, userId string) error
}

type UserRepo struct {
	collection *mongo.Collection
}

func NewUserRepo(mongoClient *database.MongoClient) *UserRepo {
	return &UserRepo{
		collection: mongoClient.GetCollection(model.User{}.CollectionName()),
	}
}

func (r *UserRepo) Create(ctx context.Context, user *model.User) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()

	if _, err := r.collection.InsertOne(ctx, user); err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (r *UserRepo) GetByUserId(ctx context.Context, userId string) (*model.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var user model.User
	err := r.collection.FindOne(ctx, bson.M{"user_id": userId}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("user not found: %s", userId)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// GetClaimsVersion reads the current claims version counter. A
// missing user or a read failure both come back as version 0; the
// materializer treats them the same way.
func (r *UserRepo) GetClaimsVersion(ctx context.Context, userId string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var user model.User
	err := r.collection.FindOne(
		ctx,
		bson.M{"user_id": userId},
		options.FindOne().SetProjection(bson.M{"claims_version": 1}),
	).Decode(&user)
	if err != nil {
		return 0, nil
	}
	return user.ClaimsVersion, nil
}

// WriteAuthClaims rewrites the materialized claims and the signed
// token. The version counter is bumped by IncClaimsVersion in a
// separate write.
func (r *UserRepo) WriteAuthClaims(ctx context.Context, userId string, claims *model.AuthorizationToken, signed string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"user_id": userId},
		bson.M{"$set": bson.M{
			"auth_claims": claims,
			"auth_token":  signed,
			"updated_at":  time.Now(),
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to write auth claims: %w", err)
	}
	return nil
}

// IncClaimsVersion bumps the claims version counter. $inc keeps the
// counter strictly increasing under concurrent rebuilds regardless of
// interleaving.
func (r *UserRepo) IncClaimsVersion(ctx context.Context, userId string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"user_id": userId},
		bson.M{"$inc": bson.M{"claims_version": 1}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to bump claims version: %w", err)
	}
	return nil
}

func (r *UserRepo) Delete(ctx context.Context, userId string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.collection.DeleteOne(ctx, bson.M{"user_id": userId}); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}
