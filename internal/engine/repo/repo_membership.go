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

// MembershipWriteHook is called after every successful membership
// write with the affected user id. The asynchronous trigger path
// hangs off it, so it fires regardless of which actor performed the
// write (request handler, sweep, tooling).
type MembershipWriteHook func(userId string)

type IMembershipRepository interface {
	Create(ctx context.Context, membership *model.Membership) error
	Get(ctx context.Context, orgId, userId string) (*model.Membership, error)
	ListByUser(ctx context.Context, userId string) ([]model.Membership, error)
	ListByOrg(ctx context.Context, orgId string) ([]model.Membership, error)
	UpdateRole(ctx context.Context, orgId, userId, role string) error
	UpdateBrandAccess(ctx context.Context, orgId, userId string, brands []string, autoGrant bool) error
	Delete(ctx context.Context, orgId, userId string) error
	DeleteByOrg(ctx context.Context, orgId string) (int64, error)
	CountByUserExcludingOrg(ctx context.Context, userId, orgId string) (int64, error)
	GrantBrandToAutoGrantMembers(ctx context.Context, orgId, brandId string) ([]string, error)
	SetWriteHook(hook MembershipWriteHook)
}

type MembershipRepo struct {
	collection *mongo.Collection
	hook       MembershipWriteHook
}

func NewMembershipRepo(mongoClient *database.MongoClient) *MembershipRepo {
	return &MembershipRepo{
		collection: mongoClient.GetCollection(model.Membership{}.CollectionName()),
	}
}

func (r *MembershipRepo) SetWriteHook(hook MembershipWriteHook) {
	r.hook = hook
}

func (r *MembershipRepo) notify(userIds ...string) {
	if r.hook == nil {
		return
	}
	for _, userId := range userIds {
		r.hook(userId)
	}
}

func (r *MembershipRepo) Create(ctx context.Context, membership *model.Membership) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	membership.CreatedAt = time.Now()
	membership.UpdatedAt = time.Now()

	if _, err := r.collection.InsertOne(ctx, membership); err != nil {
		return fmt.Errorf("failed to insert membership: %w", err)
	}
	r.notify(membership.UserId)
	return nil
}

func (r *MembershipRepo) Get(ctx context.Context, orgId, userId string) (*model.Membership, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var membership model.Membership
	err := r.collection.FindOne(ctx, bson.M{"org_id": orgId, "user_id": userId}).Decode(&membership)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNoMatch
		}
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	return &membership, nil
}

func (r *MembershipRepo) ListByUser(ctx context.Context, userId string) ([]model.Membership, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userId})
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships by user: %w", err)
	}
	var memberships []model.Membership
	if err := cursor.All(ctx, &memberships); err != nil {
		return nil, fmt.Errorf("failed to decode memberships: %w", err)
	}
	return memberships, nil
}

func (r *MembershipRepo) ListByOrg(ctx context.Context, orgId string) ([]model.Membership, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{"org_id": orgId})
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships by org: %w", err)
	}
	var memberships []model.Membership
	if err := cursor.All(ctx, &memberships); err != nil {
		return nil, fmt.Errorf("failed to decode memberships: %w", err)
	}
	return memberships, nil
}

func (r *MembershipRepo) UpdateRole(ctx context.Context, orgId, userId, role string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.collection.UpdateOne(
		ctx,
		bson.M{"org_id": orgId, "user_id": userId},
		bson.M{"$set": bson.M{"role": role, "updated_at": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to update membership role: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNoMatch
	}
	r.notify(userId)
	return nil
}

func (r *MembershipRepo) UpdateBrandAccess(ctx context.Context, orgId, userId string, brands []string, autoGrant bool) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.collection.UpdateOne(
		ctx,
		bson.M{"org_id": orgId, "user_id": userId},
		bson.M{"$set": bson.M{
			"brand_access":          brands,
			"auto_grant_new_brands": autoGrant,
			"updated_at":            time.Now(),
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to update brand access: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNoMatch
	}
	r.notify(userId)
	return nil
}

func (r *MembershipRepo) Delete(ctx context.Context, orgId, userId string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.collection.DeleteOne(ctx, bson.M{"org_id": orgId, "user_id": userId}); err != nil {
		return fmt.Errorf("failed to delete membership: %w", err)
	}
	r.notify(userId)
	return nil
}

// DeleteByOrg removes every membership of an organization and
// returns the number removed. Used by the cleanup sweep; deleting an
// already-cleaned org is a zero-count success, not an error. The
// write hook fires for each removed member so surviving users get
// their claims rebuilt.
func (r *MembershipRepo) DeleteByOrg(ctx context.Context, orgId string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{"org_id": orgId})
	if err != nil {
		return 0, fmt.Errorf("failed to list memberships by org: %w", err)
	}
	var memberships []model.Membership
	if err := cursor.All(ctx, &memberships); err != nil {
		return 0, fmt.Errorf("failed to decode memberships: %w", err)
	}

	res, err := r.collection.DeleteMany(ctx, bson.M{"org_id": orgId})
	if err != nil {
		return 0, fmt.Errorf("failed to delete memberships by org: %w", err)
	}
	for _, m := range memberships {
		r.notify(m.UserId)
	}
	return res.DeletedCount, nil
}

// CountByUserExcludingOrg counts a user's memberships in any other
// organization. The sweep uses it to decide whether a user profile
// must survive the tenant's removal.
func (r *MembershipRepo) CountByUserExcludingOrg(ctx context.Context, userId, orgId string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{
		"user_id": userId,
		"org_id":  bson.M{"$ne": orgId},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count memberships: %w", err)
	}
	return count, nil
}

// GrantBrandToAutoGrantMembers pushes a new brand id onto every
// membership of the org that opted into auto-grant, and returns the
// affected user ids so their claims can be rebuilt.
func (r *MembershipRepo) GrantBrandToAutoGrantMembers(ctx context.Context, orgId, brandId string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{"org_id": orgId, "auto_grant_new_brands": true}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list auto-grant memberships: %w", err)
	}
	var memberships []model.Membership
	if err := cursor.All(ctx, &memberships); err != nil {
		return nil, fmt.Errorf("failed to decode auto-grant memberships: %w", err)
	}
	if len(memberships) == 0 {
		return nil, nil
	}

	if _, err := r.collection.UpdateMany(
		ctx,
		filter,
		bson.M{
			"$addToSet": bson.M{"brand_access": brandId},
			"$set":      bson.M{"updated_at": time.Now()},
		},
	); err != nil {
		return nil, fmt.Errorf("failed to grant brand to members: %w", err)
	}

	userIds := make([]string, 0, len(memberships))
	for _, m := range memberships {
		userIds = append(userIds, m.UserId)
	}
	r.notify(userIds...)
	return userIds, nil
}
