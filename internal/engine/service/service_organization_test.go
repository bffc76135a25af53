package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scenecast/scenecast/internal/engine/model"
	"github.com/scenecast/scenecast/internal/engine/perm"
	"github.com/scenecast/scenecast/internal/engine/repo"
)

func newOrganizationService() (*OrganizationService, *fakeOrganizationRepo, *fakeMembershipRepo, *fakeUserRepo) {
	orgRepo := newFakeOrganizationRepo()
	membershipRepo := newFakeMembershipRepo()
	userRepo := newFakeUserRepo()
	claims := NewClaimsService(userRepo, membershipRepo, []byte(testSecret), time.Hour)
	return NewOrganizationService(orgRepo, membershipRepo, claims), orgRepo, membershipRepo, userRepo
}

func TestCreateOrganizationGrantsOwner(t *testing.T) {
	svc, _, membershipRepo, userRepo := newOrganizationService()
	ctx := context.Background()

	org, err := svc.CreateOrganization(ctx, "acme", "Acme Events", "", "u1")
	require.NoError(t, err)
	require.NotEmpty(t, org.OrgId)
	assert.Equal(t, model.OrgStatusActive, org.Status)

	membership, err := membershipRepo.Get(ctx, org.OrgId, "u1")
	require.NoError(t, err)
	assert.Equal(t, perm.RoleOwner, membership.Role)
	assert.True(t, membership.AutoGrantNewBrands)

	user, err := userRepo.GetByUserId(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, user.AuthClaims)
	assert.Equal(t, []string{"*"}, user.AuthClaims.Orgs[org.OrgId].Permissions)
}

func TestEnsureActiveRejectsSuspendedOrg(t *testing.T) {
	svc, orgRepo, _, _ := newOrganizationService()
	ctx := context.Background()

	org, err := svc.CreateOrganization(ctx, "acme", "Acme Events", "", "u1")
	require.NoError(t, err)

	_, err = svc.EnsureActive(ctx, org.OrgId)
	require.NoError(t, err)

	require.NoError(t, orgRepo.SetSoftDeleted(ctx, org.OrgId, time.Now(), "req-1"))
	_, err = svc.EnsureActive(ctx, org.OrgId)
	assert.ErrorIs(t, err, ErrOrgSuspended)

	_, err = svc.EnsureActive(ctx, "no-such-org")
	assert.ErrorIs(t, err, repo.ErrNoMatch)
}
