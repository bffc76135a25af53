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
	"time"

	"github.com/scenecast/scenecast/internal/engine/model"
	"github.com/scenecast/scenecast/internal/engine/repo"
	"github.com/scenecast/scenecast/internal/pkg/queue"
	"github.com/scenecast/scenecast/pkg/cache"
	"github.com/scenecast/scenecast/pkg/log"
	"github.com/scenecast/scenecast/pkg/metrics"
)

const (
	sweepLockKey = "lifecycle:sweep:lock"
	sweepLockTTL = time.Hour
)

// CleanupService is the scheduled cleanup sweep. It permanently
// removes tenants whose undo horizon has elapsed. Strictly
// single-instance: the multi-step cascading delete is not safe under
// concurrent execution on the same tenant, so a redis lock backs the
// serialized cron entry.
type CleanupService struct {
	orgRepo        repo.IOrganizationRepository
	membershipRepo repo.IMembershipRepository
	brandRepo      repo.IBrandRepository
	invitationRepo repo.IInvitationRepository
	userRepo       repo.IUserRepository
	deletionRepo   repo.IDeletionRequestRepository
	auditRepo      repo.IAuditRepository
	notifier       Notifier
	lock           cache.ICache
}

func NewCleanupService(
	orgRepo repo.IOrganizationRepository,
	membershipRepo repo.IMembershipRepository,
	brandRepo repo.IBrandRepository,
	invitationRepo repo.IInvitationRepository,
	userRepo repo.IUserRepository,
	deletionRepo repo.IDeletionRequestRepository,
	auditRepo repo.IAuditRepository,
	notifier Notifier,
	lock cache.ICache,
) *CleanupService {
	return &CleanupService{
		orgRepo:        orgRepo,
		membershipRepo: membershipRepo,
		brandRepo:      brandRepo,
		invitationRepo: invitationRepo,
		userRepo:       userRepo,
		deletionRepo:   deletionRepo,
		auditRepo:      auditRepo,
		notifier:       notifier,
		lock:           lock,
	}
}

// Sweep processes every organization whose soft delete timestamp is
// at least the deletion horizon old. A failure in one tenant's
// cleanup is logged and isolated; the batch continues.
func (s *CleanupService) Sweep(ctx context.Context) error {
	if s.lock != nil {
		acquired, err := s.lock.SetNX(ctx, sweepLockKey, time.Now().Format(time.RFC3339), sweepLockTTL).Result()
		if err != nil {
			return err
		}
		if !acquired {
			log.Warn("cleanup sweep already running elsewhere, skipping")
			return nil
		}
		defer s.lock.Del(ctx, sweepLockKey)
	}

	start := time.Now()
	defer func() {
		metrics.SweepRunDurationSeconds.Observe(time.Since(start).Seconds())
	}()

	cutoff := time.Now().Add(-DeletionHorizon)
	orgs, err := s.orgRepo.ListSoftDeletedBefore(ctx, cutoff)
	if err != nil {
		return err
	}

	for _, org := range orgs {
		if err := s.cleanupOrganization(ctx, &org); err != nil {
			log.Errorw("failed to clean up organization, continuing with next",
				"orgId", org.OrgId,
				"error", err,
			)
			metrics.SweepOrganizationsTotal.WithLabelValues("error").Inc()
			continue
		}
		metrics.SweepOrganizationsTotal.WithLabelValues("deleted").Inc()
	}

	log.Infow("cleanup sweep finished",
		"candidates", len(orgs),
		"elapsed", time.Since(start).String(),
	)
	return nil
}

// cleanupOrganization performs the cascading delete for one tenant.
// Every step tolerates "already deleted" so a crash-and-restart
// re-run completes the remaining steps without erroring. The audit
// record is written before the organization document is removed; its
// purpose is to survive the tenant.
func (s *CleanupService) cleanupOrganization(ctx context.Context, org *model.Organization) error {
	now := time.Now()

	members, err := s.membershipRepo.ListByOrg(ctx, org.OrgId)
	if err != nil {
		return err
	}

	emails := make([]string, 0, len(members))
	deletedUsers := 0
	for _, member := range members {
		if user, err := s.userRepo.GetByUserId(ctx, member.UserId); err == nil && user.Email != "" {
			emails = append(emails, user.Email)
		}

		other, err := s.membershipRepo.CountByUserExcludingOrg(ctx, member.UserId, org.OrgId)
		if err != nil {
			return err
		}
		// a user who belongs to any other tenant must survive
		if other == 0 {
			if err := s.userRepo.Delete(ctx, member.UserId); err != nil {
				return err
			}
			deletedUsers++
		}
	}

	if _, err := s.membershipRepo.DeleteByOrg(ctx, org.OrgId); err != nil {
		return err
	}
	brandCount, err := s.brandRepo.DeleteByOrg(ctx, org.OrgId)
	if err != nil {
		return err
	}
	invitationCount, err := s.invitationRepo.DeleteByOrg(ctx, org.OrgId)
	if err != nil {
		return err
	}

	audit := &model.DeletedOrganizationAudit{
		RequestId:        org.DeletionRequestId,
		OrgId:            org.OrgId,
		OrgName:          org.Name,
		CompletedAt:      now,
		MemberCount:      len(members),
		BrandCount:       int(brandCount),
		InvitationCount:  int(invitationCount),
		DeletedUserCount: deletedUsers,
	}

	request, err := s.deletionRepo.GetByRequestId(ctx, org.DeletionRequestId)
	if err == nil {
		audit.RequestedBy = request.RequestedBy
		audit.RequestedAt = request.RequestedAt
		audit.ConfirmedAt = request.ConfirmedAt
		audit.AuditLog = append(request.AuditLog, model.AuditEvent{At: now, Event: "completed"})
	} else {
		// org soft-deleted without a reachable request document; the
		// org id still keys a unique audit record
		log.Warnw("deletion request not found during sweep", "orgId", org.OrgId, "requestId", org.DeletionRequestId)
		audit.RequestId = org.OrgId
		audit.AuditLog = []model.AuditEvent{{At: now, Event: "completed"}}
	}

	// the audit record must exist before the organization document
	// is removed
	if err := s.auditRepo.Upsert(ctx, audit); err != nil {
		return err
	}

	if err := s.deletionRepo.MarkCompleted(ctx, org.DeletionRequestId, now, model.AuditEvent{At: now, Event: "completed"}); err != nil {
		return err
	}

	if err := s.orgRepo.Delete(ctx, org.OrgId); err != nil {
		return err
	}

	// best effort: notification failure never rolls back or blocks
	// the deletion it follows
	for _, email := range emails {
		if err := s.notifier.EnqueueNotify(ctx, &queue.NotifyPayload{
			To:      email,
			Subject: "Organization deleted",
			Body:    "The organization " + org.Name + " has been permanently deleted.",
		}); err != nil {
			log.Warnw("failed to enqueue completion email", "orgId", org.OrgId, "to", email, "error", err)
		}
	}

	log.Infow("organization permanently deleted",
		"orgId", org.OrgId,
		"members", len(members),
		"brands", brandCount,
		"invitations", invitationCount,
		"deletedUsers", deletedUsers,
	)
	return nil
}
