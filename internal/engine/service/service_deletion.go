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
	"fmt"
	"time"

	"github.com/scenecast/scenecast/internal/engine/model"
	"github.com/scenecast/scenecast/internal/engine/perm"
	"github.com/scenecast/scenecast/internal/engine/repo"
	"github.com/scenecast/scenecast/internal/pkg/queue"
	"github.com/scenecast/scenecast/pkg/id"
	"github.com/scenecast/scenecast/pkg/log"
)

// Lifecycle windows. The short undo window makes "I changed my mind
// on day one" cheap; the long horizon catches delayed discovery
// without an indefinite open liability window.
const (
	UndoWindow      = 24 * time.Hour
	DeletionHorizon = 28 * 24 * time.Hour
	ConfirmTokenTTL = 24 * time.Hour
)

var (
	// ErrLinkInvalid covers unknown requests, token mismatch and
	// already-consumed tokens.
	ErrLinkInvalid = errors.New("link is invalid")
	// ErrLinkExpired covers structurally valid tokens past their
	// expiry or outside their window.
	ErrLinkExpired = errors.New("link has expired")
	// ErrNotOwner is returned when the requester lacks the owner role.
	ErrNotOwner = errors.New("only an organization owner may request deletion")
)

// DeletionService drives the deletion request state machine:
// requested -> confirmed -> {undone | completed}. Completed is
// entered only by the cleanup sweep.
type DeletionService struct {
	deletionRepo repo.IDeletionRequestRepository
	orgRepo      repo.IOrganizationRepository
	memberRepo   repo.IMembershipRepository
	userRepo     repo.IUserRepository
	notifier     Notifier
	baseUrl      string
}

func NewDeletionService(deletionRepo repo.IDeletionRequestRepository, orgRepo repo.IOrganizationRepository, memberRepo repo.IMembershipRepository, userRepo repo.IUserRepository, notifier Notifier, baseUrl string) *DeletionService {
	return &DeletionService{
		deletionRepo: deletionRepo,
		orgRepo:      orgRepo,
		memberRepo:   memberRepo,
		userRepo:     userRepo,
		notifier:     notifier,
		baseUrl:      baseUrl,
	}
}

// Request creates a deletion request and mails the single-use
// confirmation link to the requester. The tenant is untouched until
// the request is confirmed.
func (s *DeletionService) Request(ctx context.Context, orgId, requestedBy string) (*model.DeletionRequest, error) {
	if _, err := s.orgRepo.GetByOrgId(ctx, orgId); err != nil {
		return nil, err
	}
	membership, err := s.memberRepo.Get(ctx, orgId, requestedBy)
	if err != nil {
		if err == repo.ErrNoMatch {
			return nil, ErrNotOwner
		}
		return nil, err
	}
	if membership.Role != perm.RoleOwner {
		return nil, ErrNotOwner
	}

	now := time.Now()
	request := &model.DeletionRequest{
		RequestId:      id.GetUlid(),
		OrgId:          orgId,
		RequestedBy:    requestedBy,
		RequestedAt:    now,
		Status:         model.DeletionStatusRequested,
		Token:          id.GetUUIDWithoutDashes(),
		TokenExpiresAt: now.Add(ConfirmTokenTTL),
		AuditLog: []model.AuditEvent{
			{At: now, Event: "requested", Actor: requestedBy},
		},
	}
	if err := s.deletionRepo.Create(ctx, request); err != nil {
		return nil, err
	}

	s.sendLink(ctx, requestedBy, request, "confirm", request.Token,
		"Confirm organization deletion",
		"Follow this link to confirm deletion of your organization: %s\nThe link is valid for 24 hours.")

	return request, nil
}

// Confirm consumes the confirmation token, suspends the tenant and
// opens the 24-hour undo window. Token reuse or mismatch reports
// invalid; a lapsed token reports expired, so the UI can distinguish
// a bad link from a server error.
func (s *DeletionService) Confirm(ctx context.Context, requestId, token string) (*model.DeletionRequest, error) {
	now := time.Now()
	undoToken := id.GetUUIDWithoutDashes()
	request, err := s.deletionRepo.ConfirmRequested(
		ctx, requestId, token, now,
		now.Add(DeletionHorizon),
		undoToken, now.Add(UndoWindow),
		model.AuditEvent{At: now, Event: "confirmed"},
	)
	if err != nil {
		if err == repo.ErrNoMatch {
			return nil, s.classifyConfirmFailure(ctx, requestId, token, now)
		}
		return nil, err
	}

	if err := s.orgRepo.SetSoftDeleted(ctx, request.OrgId, now, request.RequestId); err != nil {
		return nil, fmt.Errorf("confirmed deletion request %s but failed to suspend organization: %w", requestId, err)
	}

	s.sendLink(ctx, request.RequestedBy, request, "undo", undoToken,
		"Organization deletion confirmed",
		"Your organization is scheduled for permanent deletion in 28 days. To undo within 24 hours, follow: %s")

	return request, nil
}

// Undo consumes the undo token. The window check gates the
// transition as well as token validity: past 24 hours from
// confirmation the call is rejected as expired even with a
// structurally valid token.
func (s *DeletionService) Undo(ctx context.Context, requestId, token string) (*model.DeletionRequest, error) {
	now := time.Now()
	request, err := s.deletionRepo.UndoConfirmed(
		ctx, requestId, token, now,
		now.Add(-UndoWindow),
		model.AuditEvent{At: now, Event: "undone"},
	)
	if err != nil {
		if err == repo.ErrNoMatch {
			return nil, s.classifyUndoFailure(ctx, requestId, token, now)
		}
		return nil, err
	}

	if err := s.orgRepo.ClearSoftDeleted(ctx, request.OrgId); err != nil {
		return nil, fmt.Errorf("undid deletion request %s but failed to reactivate organization: %w", requestId, err)
	}
	return request, nil
}

// classifyConfirmFailure turns a non-matching conditional update into
// the precise rejection the caller must see.
func (s *DeletionService) classifyConfirmFailure(ctx context.Context, requestId, token string, now time.Time) error {
	request, err := s.deletionRepo.GetByRequestId(ctx, requestId)
	if err != nil {
		return ErrLinkInvalid
	}
	if request.Status != model.DeletionStatusRequested || request.Token != token {
		return ErrLinkInvalid
	}
	if !request.TokenExpiresAt.After(now) {
		return ErrLinkExpired
	}
	return ErrLinkInvalid
}

func (s *DeletionService) classifyUndoFailure(ctx context.Context, requestId, token string, now time.Time) error {
	request, err := s.deletionRepo.GetByRequestId(ctx, requestId)
	if err != nil {
		return ErrLinkInvalid
	}
	if request.Status != model.DeletionStatusConfirmed || request.UndoToken != token {
		return ErrLinkInvalid
	}
	if request.ConfirmedAt != nil && now.Sub(*request.ConfirmedAt) > UndoWindow {
		return ErrLinkExpired
	}
	if !request.UndoExpiresAt.IsZero() && !request.UndoExpiresAt.After(now) {
		return ErrLinkExpired
	}
	return ErrLinkInvalid
}

func (s *DeletionService) sendLink(ctx context.Context, userId string, request *model.DeletionRequest, action, token, subject, bodyFormat string) {
	user, err := s.userRepo.GetByUserId(ctx, userId)
	if err != nil || user.Email == "" {
		log.Warnw("no address for deletion lifecycle email", "userId", userId, "requestId", request.RequestId)
		return
	}
	link := fmt.Sprintf("%s/delete-organization/%s?token=%s&requestId=%s", s.baseUrl, action, token, request.RequestId)
	if err := s.notifier.EnqueueNotify(ctx, &queue.NotifyPayload{
		To:      user.Email,
		Subject: subject,
		Body:    fmt.Sprintf(bodyFormat, link),
	}); err != nil {
		log.Warnw("failed to enqueue deletion lifecycle email",
			"requestId", request.RequestId,
			"action", action,
			"error", err,
		)
	}
}
