// Copyright 2025 Scenecast Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package service

import (
	"context"
	"errors"

	"github.com/scenecast/scenecast/internal/engine/model"
	"github.com/scenecast/scenecast/internal/engine/perm"
	"github.com/scenecast/scenecast/internal/engine/repo"
	"github.com/scenecast/scenecast/pkg/id"
)

// ErrOrgSuspended is returned for operations on a tenant that is
// suspended pending deletion.
var ErrOrgSuspended = errors.New("organization is suspended pending deletion")

type OrganizationService struct {
	orgRepo        repo.IOrganizationRepository
	membershipRepo repo.IMembershipRepository
	claims         *ClaimsService
}

func NewOrganizationService(orgRepo repo.IOrganizationRepository, membershipRepo repo.IMembershipRepository, claims *ClaimsService) *OrganizationService {
	return &OrganizationService{
		orgRepo:        orgRepo,
		membershipRepo: membershipRepo,
		claims:         claims,
	}
}

// CreateOrganization creates the tenant with its owner membership and
// rebuilds the owner's claims before returning.
func (s *OrganizationService) CreateOrganization(ctx context.Context, name, displayName, description, ownerUserId string) (*model.Organization, error) {
	org := &model.Organization{
		OrgId:       id.GetUlid(),
		Name:        name,
		DisplayName: displayName,
		Description: description,
		OwnerUserId: ownerUserId,
		Status:      model.OrgStatusActive,
	}
	if err := s.orgRepo.Create(ctx, org); err != nil {
		return nil, err
	}

	if err := s.membershipRepo.Create(ctx, &model.Membership{
		OrgId:              org.OrgId,
		UserId:             ownerUserId,
		Role:               perm.RoleOwner,
		BrandAccess:        []string{},
		AutoGrantNewBrands: true,
		Status:             model.MemberStatusActive,
	}); err != nil {
		return nil, err
	}

	if _, err := s.claims.Rebuild(ctx, ownerUserId, TriggerSync); err != nil {
		return nil, err
	}
	return org, nil
}

func (s *OrganizationService) GetOrganization(ctx context.Context, orgId string) (*model.Organization, error) {
	return s.orgRepo.GetByOrgId(ctx, orgId)
}

// EnsureActive gates tenant-scoped operations: a soft-deleted
// organization rejects everything except the deletion lifecycle
// endpoints until undo or permanent removal.
func (s *OrganizationService) EnsureActive(ctx context.Context, orgId string) (*model.Organization, error) {
	org, err := s.orgRepo.GetByOrgId(ctx, orgId)
	if err != nil {
		return nil, err
	}
	if org.SoftDeletedAt != nil {
		return nil, ErrOrgSuspended
	}
	return org, nil
}
