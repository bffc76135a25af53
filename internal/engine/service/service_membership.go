package service

import (
	"context"
	"fmt"
	"time"

	"github.com/scenecast/scenecast/internal/engine/model"
	"github.com/scenecast/scenecast/internal/engine/repo"
	"github.com/scenecast/scenecast/internal/pkg/queue"
	"github.com/scenecast/scenecast/pkg/id"
	"github.com/scenecast/scenecast/pkg/log"
)

const invitationTTL = 7 * 24 * time.Hour

// Notifier enqueues outbound lifecycle emails.
type Notifier interface {
	EnqueueNotify(ctx context.Context, payload *queue.NotifyPayload) error
}

// MembershipService hosts the synchronous trigger path: every
// membership-mutating operation ends with a blocking claims rebuild
// whose failure propagates to the caller, so an immediately-following
// read observes correct authorization.
type MembershipService struct {
	membershipRepo repo.IMembershipRepository
	invitationRepo repo.IInvitationRepository
	claims         *ClaimsService
	notifier       Notifier
	baseUrl        string
}

func NewMembershipService(membershipRepo repo.IMembershipRepository, invitationRepo repo.IInvitationRepository, claims *ClaimsService, notifier Notifier, baseUrl string) *MembershipService {
	return &MembershipService{
		membershipRepo: membershipRepo,
		invitationRepo: invitationRepo,
		claims:         claims,
		notifier:       notifier,
		baseUrl:        baseUrl,
	}
}

// Invite creates a pending invitation and mails the invite link.
func (s *MembershipService) Invite(ctx context.Context, orgId, email, role, invitedBy string) (*model.OrganizationInvitation, error) {
	invitation := &model.OrganizationInvitation{
		InvitationId: id.GetUlid(),
		OrgId:        orgId,
		Email:        email,
		Role:         role,
		Token:        id.GetUUIDWithoutDashes(),
		InvitedBy:    invitedBy,
		Status:       model.InvitationStatusPending,
		ExpiresAt:    time.Now().Add(invitationTTL),
	}
	if err := s.invitationRepo.Create(ctx, invitation); err != nil {
		return nil, err
	}

	link := fmt.Sprintf("%s/invitations/accept?token=%s&invitationId=%s", s.baseUrl, invitation.Token, invitation.InvitationId)
	if err := s.notifier.EnqueueNotify(ctx, &queue.NotifyPayload{
		To:      email,
		Subject: "You have been invited",
		Body:    fmt.Sprintf("You have been invited to join an organization. Accept here: %s", link),
	}); err != nil {
		log.Warnw("failed to enqueue invitation email", "invitationId", invitation.InvitationId, "error", err)
	}
	return invitation, nil
}

// AcceptInvitation consumes the invitation token, creates the
// membership and rebuilds the user's claims before returning.
func (s *MembershipService) AcceptInvitation(ctx context.Context, invitationId, token, userId string) (*model.Membership, error) {
	invitation, err := s.invitationRepo.Accept(ctx, invitationId, token, time.Now())
	if err != nil {
		if err == repo.ErrNoMatch {
			return nil, ErrLinkInvalid
		}
		return nil, err
	}

	membership := &model.Membership{
		OrgId:       invitation.OrgId,
		UserId:      userId,
		Role:        invitation.Role,
		BrandAccess: []string{},
		InvitedBy:   invitation.InvitedBy,
		Status:      model.MemberStatusActive,
	}
	if err := s.membershipRepo.Create(ctx, membership); err != nil {
		return nil, err
	}

	if _, err := s.claims.Rebuild(ctx, userId, TriggerSync); err != nil {
		return nil, err
	}
	return membership, nil
}

// AddMember creates a membership directly (tooling/admin path).
func (s *MembershipService) AddMember(ctx context.Context, membership *model.Membership) error {
	membership.Status = model.MemberStatusActive
	if err := s.membershipRepo.Create(ctx, membership); err != nil {
		return err
	}
	_, err := s.claims.Rebuild(ctx, membership.UserId, TriggerSync)
	return err
}

// UpdateRole changes a member's role.
func (s *MembershipService) UpdateRole(ctx context.Context, orgId, userId, role string) error {
	if err := s.membershipRepo.UpdateRole(ctx, orgId, userId, role); err != nil {
		return err
	}
	_, err := s.claims.Rebuild(ctx, userId, TriggerSync)
	return err
}

// UpdateBrandAccess replaces a member's brand grants.
func (s *MembershipService) UpdateBrandAccess(ctx context.Context, orgId, userId string, brands []string, autoGrant bool) error {
	if err := s.membershipRepo.UpdateBrandAccess(ctx, orgId, userId, brands, autoGrant); err != nil {
		return err
	}
	_, err := s.claims.Rebuild(ctx, userId, TriggerSync)
	return err
}

// RemoveMember deletes the membership.
func (s *MembershipService) RemoveMember(ctx context.Context, orgId, userId string) error {
	if err := s.membershipRepo.Delete(ctx, orgId, userId); err != nil {
		return err
	}
	_, err := s.claims.Rebuild(ctx, userId, TriggerSync)
	return err
}
