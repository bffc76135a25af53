package service

import (
	"context"

	"github.com/scenecast/scenecast/internal/engine/model"
	"github.com/scenecast/scenecast/internal/engine/repo"
	"github.com/scenecast/scenecast/pkg/id"
)

// BrandService creates brands and propagates auto-granted brand
// access. Brand creation mutates memberships, so it carries the same
// synchronous rebuild obligation as the membership handlers.
type BrandService struct {
	brandRepo      repo.IBrandRepository
	membershipRepo repo.IMembershipRepository
	claims         *ClaimsService
}

func NewBrandService(brandRepo repo.IBrandRepository, membershipRepo repo.IMembershipRepository, claims *ClaimsService) *BrandService {
	return &BrandService{
		brandRepo:      brandRepo,
		membershipRepo: membershipRepo,
		claims:         claims,
	}
}

// CreateBrand inserts the brand, grants it to every auto-grant
// membership of the org and rebuilds affected users' claims before
// returning.
func (s *BrandService) CreateBrand(ctx context.Context, orgId, name string) (*model.Brand, error) {
	brand := &model.Brand{
		BrandId: id.GetUlid(),
		OrgId:   orgId,
		Name:    name,
	}
	if err := s.brandRepo.Create(ctx, brand); err != nil {
		return nil, err
	}

	userIds, err := s.membershipRepo.GrantBrandToAutoGrantMembers(ctx, orgId, brand.BrandId)
	if err != nil {
		return nil, err
	}
	for _, userId := range userIds {
		if _, err := s.claims.Rebuild(ctx, userId, TriggerSync); err != nil {
			return nil, err
		}
	}
	return brand, nil
}
