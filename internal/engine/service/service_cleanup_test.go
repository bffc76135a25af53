package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scenecast/scenecast/internal/engine/model"
	"github.com/scenecast/scenecast/internal/engine/perm"
	"github.com/scenecast/scenecast/internal/engine/repo"
)

type cleanupFixture struct {
	orgRepo        *fakeOrganizationRepo
	membershipRepo *fakeMembershipRepo
	brandRepo      *fakeBrandRepo
	invitationRepo *fakeInvitationRepo
	userRepo       *fakeUserRepo
	deletionRepo   *fakeDeletionRequestRepo
	auditRepo      *fakeAuditRepo
	notifier       *fakeNotifier
	lock           *fakeLock
	svc            *CleanupService
}

func newCleanupFixture() *cleanupFixture {
	fix := &cleanupFixture{
		orgRepo:        newFakeOrganizationRepo(),
		membershipRepo: newFakeMembershipRepo(),
		brandRepo:      newFakeBrandRepo(),
		invitationRepo: newFakeInvitationRepo(),
		userRepo:       newFakeUserRepo(),
		deletionRepo:   newFakeDeletionRequestRepo(),
		auditRepo:      newFakeAuditRepo(),
		notifier:       &fakeNotifier{},
		lock:           newFakeLock(),
	}
	fix.svc = NewCleanupService(
		fix.orgRepo, fix.membershipRepo, fix.brandRepo, fix.invitationRepo,
		fix.userRepo, fix.deletionRepo, fix.auditRepo, fix.notifier, fix.lock,
	)
	return fix
}

// seedDeletedOrg plants a soft-deleted tenant with a confirmed
// deletion request, two members (one also belonging to another org),
// two brands and one pending invitation.
func (fix *cleanupFixture) seedDeletedOrg(t *testing.T, orgId string, age time.Duration) {
	t.Helper()
	ctx := context.Background()

	softDeletedAt := time.Now().Add(-age)
	confirmedAt := softDeletedAt
	requestId := "req-" + orgId

	require.NoError(t, fix.orgRepo.Create(ctx, &model.Organization{
		OrgId:             orgId,
		Name:              orgId + " events",
		Status:            model.OrgStatusSuspended,
		SoftDeletedAt:     &softDeletedAt,
		DeletionRequestId: requestId,
	}))
	require.NoError(t, fix.deletionRepo.Create(ctx, &model.DeletionRequest{
		RequestId:   requestId,
		OrgId:       orgId,
		RequestedBy: "owner-" + orgId,
		RequestedAt: softDeletedAt.Add(-time.Hour),
		Status:      model.DeletionStatusConfirmed,
		ConfirmedAt: &confirmedAt,
		AuditLog: []model.AuditEvent{
			{At: softDeletedAt.Add(-time.Hour), Event: "requested", Actor: "owner-" + orgId},
			{At: softDeletedAt, Event: "confirmed"},
		},
	}))

	require.NoError(t, fix.userRepo.Create(ctx, &model.User{
		UserId: "owner-" + orgId, Email: "owner-" + orgId + "@example.com",
	}))
	require.NoError(t, fix.userRepo.Create(ctx, &model.User{
		UserId: "shared-" + orgId, Email: "shared-" + orgId + "@example.com",
	}))
	require.NoError(t, fix.membershipRepo.Create(ctx, &model.Membership{
		OrgId: orgId, UserId: "owner-" + orgId, Role: perm.RoleOwner, Status: model.MemberStatusActive,
	}))
	require.NoError(t, fix.membershipRepo.Create(ctx, &model.Membership{
		OrgId: orgId, UserId: "shared-" + orgId, Role: perm.RoleEditor, Status: model.MemberStatusActive,
	}))
	require.NoError(t, fix.membershipRepo.Create(ctx, &model.Membership{
		OrgId: "other-org", UserId: "shared-" + orgId, Role: perm.RoleViewer, Status: model.MemberStatusActive,
	}))

	require.NoError(t, fix.brandRepo.Create(ctx, &model.Brand{BrandId: orgId + "-b1", OrgId: orgId, Name: "main"}))
	require.NoError(t, fix.brandRepo.Create(ctx, &model.Brand{BrandId: orgId + "-b2", OrgId: orgId, Name: "side"}))
	require.NoError(t, fix.invitationRepo.Create(ctx, &model.OrganizationInvitation{
		InvitationId: orgId + "-i1", OrgId: orgId, Email: "new@example.com",
		Status: model.InvitationStatusPending, ExpiresAt: time.Now().Add(time.Hour),
	}))
}

func TestSweepSkipsOrgsInsideHorizon(t *testing.T) {
	fix := newCleanupFixture()
	fix.seedDeletedOrg(t, "org-young", time.Hour)

	require.NoError(t, fix.svc.Sweep(context.Background()))

	_, err := fix.orgRepo.GetByOrgId(context.Background(), "org-young")
	assert.NoError(t, err)
	assert.Empty(t, fix.auditRepo.records)
	assert.Empty(t, fix.notifier.sent)
}

func TestSweepCascadesAfterHorizon(t *testing.T) {
	fix := newCleanupFixture()
	fix.seedDeletedOrg(t, "org-old", DeletionHorizon+time.Hour)
	ctx := context.Background()

	require.NoError(t, fix.svc.Sweep(ctx))

	_, err := fix.orgRepo.GetByOrgId(ctx, "org-old")
	assert.ErrorIs(t, err, repo.ErrNoMatch)

	members, err := fix.membershipRepo.ListByOrg(ctx, "org-old")
	require.NoError(t, err)
	assert.Empty(t, members)

	brands, err := fix.brandRepo.ListByOrg(ctx, "org-old")
	require.NoError(t, err)
	assert.Empty(t, brands)
	assert.Empty(t, fix.invitationRepo.invitations)

	// a user with no other tenant is removed, one with another survives
	_, err = fix.userRepo.GetByUserId(ctx, "owner-org-old")
	assert.ErrorIs(t, err, repo.ErrNoMatch)
	_, err = fix.userRepo.GetByUserId(ctx, "shared-org-old")
	assert.NoError(t, err)
	otherMemberships, err := fix.membershipRepo.ListByUser(ctx, "shared-org-old")
	require.NoError(t, err)
	assert.Len(t, otherMemberships, 1)

	request, err := fix.deletionRepo.GetByRequestId(ctx, "req-org-old")
	require.NoError(t, err)
	assert.Equal(t, model.DeletionStatusCompleted, request.Status)
	assert.NotNil(t, request.CompletedAt)

	require.Len(t, fix.auditRepo.records, 1)
	audit := fix.auditRepo.records["req-org-old"]
	require.NotNil(t, audit)
	assert.Equal(t, "org-old", audit.OrgId)
	assert.Equal(t, "owner-org-old", audit.RequestedBy)
	assert.Equal(t, 2, audit.MemberCount)
	assert.Equal(t, 2, audit.BrandCount)
	assert.Equal(t, 1, audit.InvitationCount)
	assert.Equal(t, 1, audit.DeletedUserCount)
	require.NotEmpty(t, audit.AuditLog)
	assert.Equal(t, "completed", audit.AuditLog[len(audit.AuditLog)-1].Event)

	assert.ElementsMatch(t, []string{
		"owner-org-old@example.com",
		"shared-org-old@example.com",
	}, fix.notifier.sentTo())
}

func TestSweepRerunAfterPartialFailure(t *testing.T) {
	fix := newCleanupFixture()
	fix.seedDeletedOrg(t, "org-old", DeletionHorizon+time.Hour)
	ctx := context.Background()

	fix.auditRepo.upsertErr = errors.New("audit store down")
	require.NoError(t, fix.svc.Sweep(ctx))

	// the tenant survives a failure past the cascade but before the
	// audit write, and the re-run finishes the job
	_, err := fix.orgRepo.GetByOrgId(ctx, "org-old")
	assert.NoError(t, err)
	assert.Empty(t, fix.auditRepo.records)

	fix.auditRepo.upsertErr = nil
	require.NoError(t, fix.svc.Sweep(ctx))

	_, err = fix.orgRepo.GetByOrgId(ctx, "org-old")
	assert.ErrorIs(t, err, repo.ErrNoMatch)
	assert.Len(t, fix.auditRepo.records, 1)
	assert.Equal(t, 1, fix.auditRepo.inserts)
}

func TestSweepIsolatesPerOrgFailures(t *testing.T) {
	fix := newCleanupFixture()
	fix.seedDeletedOrg(t, "org-bad", DeletionHorizon+time.Hour)
	fix.seedDeletedOrg(t, "org-good", DeletionHorizon+time.Hour)
	fix.membershipRepo.failOrg = "org-bad"
	ctx := context.Background()

	require.NoError(t, fix.svc.Sweep(ctx))

	_, err := fix.orgRepo.GetByOrgId(ctx, "org-bad")
	assert.NoError(t, err)
	_, err = fix.orgRepo.GetByOrgId(ctx, "org-good")
	assert.ErrorIs(t, err, repo.ErrNoMatch)
}

func TestSweepSkipsWhenLockHeld(t *testing.T) {
	fix := newCleanupFixture()
	fix.seedDeletedOrg(t, "org-old", DeletionHorizon+time.Hour)
	fix.lock.values[sweepLockKey] = "another instance"

	require.NoError(t, fix.svc.Sweep(context.Background()))

	_, err := fix.orgRepo.GetByOrgId(context.Background(), "org-old")
	assert.NoError(t, err)
}

func TestSweepReleasesLock(t *testing.T) {
	fix := newCleanupFixture()
	fix.seedDeletedOrg(t, "org-old", DeletionHorizon+time.Hour)

	require.NoError(t, fix.svc.Sweep(context.Background()))

	_, held := fix.lock.values[sweepLockKey]
	assert.False(t, held)
}

func TestSweepNotificationFailureDoesNotBlockDeletion(t *testing.T) {
	fix := newCleanupFixture()
	fix.seedDeletedOrg(t, "org-old", DeletionHorizon+time.Hour)
	fix.notifier.err = errors.New("smtp down")
	ctx := context.Background()

	require.NoError(t, fix.svc.Sweep(ctx))

	_, err := fix.orgRepo.GetByOrgId(ctx, "org-old")
	assert.ErrorIs(t, err, repo.ErrNoMatch)
	assert.Len(t, fix.auditRepo.records, 1)
}

func TestSweepWithoutRequestKeysAuditByOrgId(t *testing.T) {
	fix := newCleanupFixture()
	ctx := context.Background()

	softDeletedAt := time.Now().Add(-DeletionHorizon - time.Hour)
	require.NoError(t, fix.orgRepo.Create(ctx, &model.Organization{
		OrgId:             "org-lost",
		Name:              "lost events",
		Status:            model.OrgStatusSuspended,
		SoftDeletedAt:     &softDeletedAt,
		DeletionRequestId: "req-missing",
	}))

	require.NoError(t, fix.svc.Sweep(ctx))

	_, err := fix.orgRepo.GetByOrgId(ctx, "org-lost")
	assert.ErrorIs(t, err, repo.ErrNoMatch)
	audit, err := fix.auditRepo.GetByRequestId(ctx, "org-lost")
	require.NoError(t, err)
	assert.Equal(t, "lost events", audit.OrgName)
}
