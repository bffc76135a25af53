package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/scenecast/scenecast/internal/engine/model"
	"github.com/scenecast/scenecast/internal/engine/repo"
	"github.com/scenecast/scenecast/internal/pkg/queue"
)

// In-memory repositories replicating the conditional-update semantics
// of the mongo-backed ones, so the single-use token and idempotence
// behavior can be exercised without a database.

type fakeUserRepo struct {
	mu       sync.Mutex
	users    map[string]*model.User
	writeErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*model.User{}}
}

func (f *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *user
	f.users[user.UserId] = &cp
	return nil
}

func (f *fakeUserRepo) GetByUserId(_ context.Context, userId string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[userId]
	if !ok {
		return nil, repo.ErrNoMatch
	}
	cp := *user
	return &cp, nil
}

func (f *fakeUserRepo) GetClaimsVersion(_ context.Context, userId string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user, ok := f.users[userId]; ok {
		return user.ClaimsVersion, nil
	}
	return 0, nil
}

func (f *fakeUserRepo) WriteAuthClaims(_ context.Context, userId string, claims *model.AuthorizationToken, signed string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	user, ok := f.users[userId]
	if !ok {
		user = &model.User{UserId: userId}
		f.users[userId] = user
	}
	cp := *claims
	user.AuthClaims = &cp
	user.AuthToken = signed
	return nil
}

func (f *fakeUserRepo) IncClaimsVersion(_ context.Context, userId string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[userId]
	if !ok {
		user = &model.User{UserId: userId}
		f.users[userId] = user
	}
	user.ClaimsVersion++
	return nil
}

func (f *fakeUserRepo) Delete(_ context.Context, userId string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.users, userId)
	return nil
}

type fakeMembershipRepo struct {
	mu          sync.Mutex
	memberships map[string]*model.Membership
	hook        repo.MembershipWriteHook
	listErr     error
	failOrg     string
}

func newFakeMembershipRepo() *fakeMembershipRepo {
	return &fakeMembershipRepo{memberships: map[string]*model.Membership{}}
}

func membershipKey(orgId, userId string) string {
	return orgId + "/" + userId
}

func (f *fakeMembershipRepo) SetWriteHook(hook repo.MembershipWriteHook) {
	f.hook = hook
}

func (f *fakeMembershipRepo) notify(userIds ...string) {
	if f.hook == nil {
		return
	}
	for _, userId := range userIds {
		f.hook(userId)
	}
}

func (f *fakeMembershipRepo) Create(_ context.Context, membership *model.Membership) error {
	f.mu.Lock()
	cp := *membership
	f.memberships[membershipKey(membership.OrgId, membership.UserId)] = &cp
	f.mu.Unlock()
	f.notify(membership.UserId)
	return nil
}

func (f *fakeMembershipRepo) Get(_ context.Context, orgId, userId string) (*model.Membership, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	membership, ok := f.memberships[membershipKey(orgId, userId)]
	if !ok {
		return nil, repo.ErrNoMatch
	}
	cp := *membership
	return &cp, nil
}

func (f *fakeMembershipRepo) ListByUser(_ context.Context, userId string) ([]model.Membership, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var memberships []model.Membership
	for _, m := range f.memberships {
		if m.UserId == userId {
			memberships = append(memberships, *m)
		}
	}
	return memberships, nil
}

func (f *fakeMembershipRepo) ListByOrg(_ context.Context, orgId string) ([]model.Membership, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	if f.failOrg != "" && f.failOrg == orgId {
		return nil, errors.New("induced list failure")
	}
	var memberships []model.Membership
	for _, m := range f.memberships {
		if m.OrgId == orgId {
			memberships = append(memberships, *m)
		}
	}
	return memberships, nil
}

func (f *fakeMembershipRepo) UpdateRole(_ context.Context, orgId, userId, role string) error {
	f.mu.Lock()
	membership, ok := f.memberships[membershipKey(orgId, userId)]
	if !ok {
		f.mu.Unlock()
		return repo.ErrNoMatch
	}
	membership.Role = role
	f.mu.Unlock()
	f.notify(userId)
	return nil
}

func (f *fakeMembershipRepo) UpdateBrandAccess(_ context.Context, orgId, userId string, brands []string, autoGrant bool) error {
	f.mu.Lock()
	membership, ok := f.memberships[membershipKey(orgId, userId)]
	if !ok {
		f.mu.Unlock()
		return repo.ErrNoMatch
	}
	membership.BrandAccess = append([]string{}, brands...)
	membership.AutoGrantNewBrands = autoGrant
	f.mu.Unlock()
	f.notify(userId)
	return nil
}

func (f *fakeMembershipRepo) Delete(_ context.Context, orgId, userId string) error {
	f.mu.Lock()
	delete(f.memberships, membershipKey(orgId, userId))
	f.mu.Unlock()
	f.notify(userId)
	return nil
}

func (f *fakeMembershipRepo) DeleteByOrg(_ context.Context, orgId string) (int64, error) {
	f.mu.Lock()
	var removed []string
	for key, m := range f.memberships {
		if m.OrgId == orgId {
			removed = append(removed, m.UserId)
			delete(f.memberships, key)
		}
	}
	f.mu.Unlock()
	f.notify(removed...)
	return int64(len(removed)), nil
}

func (f *fakeMembershipRepo) CountByUserExcludingOrg(_ context.Context, userId, orgId string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, m := range f.memberships {
		if m.UserId == userId && m.OrgId != orgId {
			count++
		}
	}
	return count, nil
}

func (f *fakeMembershipRepo) GrantBrandToAutoGrantMembers(_ context.Context, orgId, brandId string) ([]string, error) {
	f.mu.Lock()
	var userIds []string
	for _, m := range f.memberships {
		if m.OrgId != orgId || !m.AutoGrantNewBrands {
			continue
		}
		granted := false
		for _, b := range m.BrandAccess {
			if b == brandId {
				granted = true
				break
			}
		}
		if !granted {
			m.BrandAccess = append(m.BrandAccess, brandId)
		}
		userIds = append(userIds, m.UserId)
	}
	f.mu.Unlock()
	f.notify(userIds...)
	return userIds, nil
}

type fakeOrganizationRepo struct {
	mu   sync.Mutex
	orgs map[string]*model.Organization
}

func newFakeOrganizationRepo() *fakeOrganizationRepo {
	return &fakeOrganizationRepo{orgs: map[string]*model.Organization{}}
}

func (f *fakeOrganizationRepo) Create(_ context.Context, org *model.Organization) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *org
	f.orgs[org.OrgId] = &cp
	return nil
}

func (f *fakeOrganizationRepo) GetByOrgId(_ context.Context, orgId string) (*model.Organization, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	org, ok := f.orgs[orgId]
	if !ok {
		return nil, repo.ErrNoMatch
	}
	cp := *org
	return &cp, nil
}

func (f *fakeOrganizationRepo) SetSoftDeleted(_ context.Context, orgId string, at time.Time, requestId string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	org, ok := f.orgs[orgId]
	if !ok {
		return repo.ErrNoMatch
	}
	t := at
	org.SoftDeletedAt = &t
	org.DeletionRequestId = requestId
	org.Status = model.OrgStatusSuspended
	return nil
}

func (f *fakeOrganizationRepo) ClearSoftDeleted(_ context.Context, orgId string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	org, ok := f.orgs[orgId]
	if !ok {
		return repo.ErrNoMatch
	}
	org.SoftDeletedAt = nil
	org.DeletionRequestId = ""
	org.Status = model.OrgStatusActive
	return nil
}

func (f *fakeOrganizationRepo) ListSoftDeletedBefore(_ context.Context, cutoff time.Time) ([]model.Organization, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var orgs []model.Organization
	for _, org := range f.orgs {
		if org.SoftDeletedAt != nil && !org.SoftDeletedAt.After(cutoff) {
			orgs = append(orgs, *org)
		}
	}
	return orgs, nil
}

func (f *fakeOrganizationRepo) Delete(_ context.Context, orgId string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.orgs, orgId)
	return nil
}

type fakeBrandRepo struct {
	mu     sync.Mutex
	brands map[string]*model.Brand
}

func newFakeBrandRepo() *fakeBrandRepo {
	return &fakeBrandRepo{brands: map[string]*model.Brand{}}
}

func (f *fakeBrandRepo) Create(_ context.Context, brand *model.Brand) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *brand
	f.brands[brand.BrandId] = &cp
	return nil
}

func (f *fakeBrandRepo) ListByOrg(_ context.Context, orgId string) ([]model.Brand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var brands []model.Brand
	for _, b := range f.brands {
		if b.OrgId == orgId {
			brands = append(brands, *b)
		}
	}
	return brands, nil
}

func (f *fakeBrandRepo) DeleteByOrg(_ context.Context, orgId string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for key, b := range f.brands {
		if b.OrgId == orgId {
			delete(f.brands, key)
			count++
		}
	}
	return count, nil
}

type fakeInvitationRepo struct {
	mu          sync.Mutex
	invitations map[string]*model.OrganizationInvitation
}

func newFakeInvitationRepo() *fakeInvitationRepo {
	return &fakeInvitationRepo{invitations: map[string]*model.OrganizationInvitation{}}
}

func (f *fakeInvitationRepo) Create(_ context.Context, invitation *model.OrganizationInvitation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *invitation
	f.invitations[invitation.InvitationId] = &cp
	return nil
}

func (f *fakeInvitationRepo) Accept(_ context.Context, invitationId, token string, now time.Time) (*model.OrganizationInvitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	invitation, ok := f.invitations[invitationId]
	if !ok || invitation.Token != token || invitation.Status != model.InvitationStatusPending || !invitation.ExpiresAt.After(now) {
		return nil, repo.ErrNoMatch
	}
	invitation.Status = model.InvitationStatusAccepted
	cp := *invitation
	return &cp, nil
}

func (f *fakeInvitationRepo) DeleteByOrg(_ context.Context, orgId string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for key, invitation := range f.invitations {
		if invitation.OrgId == orgId {
			delete(f.invitations, key)
			count++
		}
	}
	return count, nil
}

type fakeDeletionRequestRepo struct {
	mu       sync.Mutex
	requests map[string]*model.DeletionRequest
}

func newFakeDeletionRequestRepo() *fakeDeletionRequestRepo {
	return &fakeDeletionRequestRepo{requests: map[string]*model.DeletionRequest{}}
}

func (f *fakeDeletionRequestRepo) Create(_ context.Context, request *model.DeletionRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *request
	cp.AuditLog = append([]model.AuditEvent{}, request.AuditLog...)
	f.requests[request.RequestId] = &cp
	return nil
}

func (f *fakeDeletionRequestRepo) GetByRequestId(_ context.Context, requestId string) (*model.DeletionRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	request, ok := f.requests[requestId]
	if !ok {
		return nil, repo.ErrNoMatch
	}
	cp := *request
	cp.AuditLog = append([]model.AuditEvent{}, request.AuditLog...)
	return &cp, nil
}

func (f *fakeDeletionRequestRepo) ConfirmRequested(_ context.Context, requestId, token string, now time.Time, scheduledDeletionAt time.Time, undoToken string, undoExpiresAt time.Time, event model.AuditEvent) (*model.DeletionRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	request, ok := f.requests[requestId]
	if !ok || request.Status != model.DeletionStatusRequested || request.Token != token || !request.TokenExpiresAt.After(now) {
		return nil, repo.ErrNoMatch
	}
	confirmedAt := now
	scheduled := scheduledDeletionAt
	request.Status = model.DeletionStatusConfirmed
	request.ConfirmedAt = &confirmedAt
	request.ScheduledDeletionAt = &scheduled
	request.UndoToken = undoToken
	request.UndoExpiresAt = undoExpiresAt
	request.Token = ""
	request.TokenExpiresAt = time.Time{}
	request.AuditLog = append(request.AuditLog, event)
	cp := *request
	cp.AuditLog = append([]model.AuditEvent{}, request.AuditLog...)
	return &cp, nil
}

func (f *fakeDeletionRequestRepo) UndoConfirmed(_ context.Context, requestId, token string, now time.Time, windowStart time.Time, event model.AuditEvent) (*model.DeletionRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	request, ok := f.requests[requestId]
	if !ok || request.Status != model.DeletionStatusConfirmed || request.UndoToken != token {
		return nil, repo.ErrNoMatch
	}
	if request.ConfirmedAt == nil || !request.ConfirmedAt.After(windowStart) {
		return nil, repo.ErrNoMatch
	}
	if !request.UndoExpiresAt.After(now) {
		return nil, repo.ErrNoMatch
	}
	request.Status = model.DeletionStatusUndone
	request.UndoToken = ""
	request.UndoExpiresAt = time.Time{}
	request.AuditLog = append(request.AuditLog, event)
	cp := *request
	cp.AuditLog = append([]model.AuditEvent{}, request.AuditLog...)
	return &cp, nil
}

func (f *fakeDeletionRequestRepo) MarkCompleted(_ context.Context, requestId string, at time.Time, event model.AuditEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	request, ok := f.requests[requestId]
	if !ok || request.Status != model.DeletionStatusConfirmed {
		return nil
	}
	completedAt := at
	request.Status = model.DeletionStatusCompleted
	request.CompletedAt = &completedAt
	request.AuditLog = append(request.AuditLog, event)
	return nil
}

func (f *fakeDeletionRequestRepo) AppendEvent(_ context.Context, requestId string, event model.AuditEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if request, ok := f.requests[requestId]; ok {
		request.AuditLog = append(request.AuditLog, event)
	}
	return nil
}

type fakeAuditRepo struct {
	mu        sync.Mutex
	records   map[string]*model.DeletedOrganizationAudit
	upsertErr error
	inserts   int
}

func newFakeAuditRepo() *fakeAuditRepo {
	return &fakeAuditRepo{records: map[string]*model.DeletedOrganizationAudit{}}
}

func (f *fakeAuditRepo) Upsert(_ context.Context, audit *model.DeletedOrganizationAudit) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return f.upsertErr
	}
	if _, ok := f.records[audit.RequestId]; ok {
		return nil
	}
	cp := *audit
	cp.AuditLog = append([]model.AuditEvent{}, audit.AuditLog...)
	f.records[audit.RequestId] = &cp
	f.inserts++
	return nil
}

func (f *fakeAuditRepo) GetByRequestId(_ context.Context, requestId string) (*model.DeletedOrganizationAudit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	audit, ok := f.records[requestId]
	if !ok {
		return nil, repo.ErrNoMatch
	}
	cp := *audit
	return &cp, nil
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []*queue.NotifyPayload
	err  error
}

func (f *fakeNotifier) EnqueueNotify(_ context.Context, payload *queue.NotifyPayload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	cp := *payload
	f.sent = append(f.sent, &cp)
	return nil
}

func (f *fakeNotifier) sentTo() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var to []string
	for _, payload := range f.sent {
		to = append(to, payload.To)
	}
	return to
}

type fakeLock struct {
	mu     sync.Mutex
	values map[string]string
}

func newFakeLock() *fakeLock {
	return &fakeLock{values: map[string]string{}}
}

func (f *fakeLock) Get(ctx context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	cmd := redis.NewStringCmd(ctx)
	if value, ok := f.values[key]; ok {
		cmd.SetVal(value)
	} else {
		cmd.SetErr(redis.Nil)
	}
	return cmd
}

func (f *fakeLock) Set(ctx context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[key] = value.(string)
	cmd := redis.NewStatusCmd(ctx)
	cmd.SetVal("OK")
	return cmd
}

func (f *fakeLock) SetNX(ctx context.Context, key string, value any, _ time.Duration) *redis.BoolCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	cmd := redis.NewBoolCmd(ctx)
	if _, ok := f.values[key]; ok {
		cmd.SetVal(false)
		return cmd
	}
	f.values[key] = value.(string)
	cmd.SetVal(true)
	return cmd
}

func (f *fakeLock) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	cmd := redis.NewIntCmd(ctx)
	var count int64
	for _, key := range keys {
		if _, ok := f.values[key]; ok {
			delete(f.values, key)
			count++
		}
	}
	cmd.SetVal(count)
	return cmd
}

func (f *fakeLock) Expire(ctx context.Context, key string, _ time.Duration) *redis.BoolCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	cmd := redis.NewBoolCmd(ctx)
	_, ok := f.values[key]
	cmd.SetVal(ok)
	return cmd
}
