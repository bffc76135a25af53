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
	"fmt"
	"time"

	"github.com/bytedance/sonic"

	"github.com/scenecast/scenecast/internal/engine/model"
	"github.com/scenecast/scenecast/internal/engine/perm"
	"github.com/scenecast/scenecast/internal/engine/repo"
	"github.com/scenecast/scenecast/pkg/http/jwt"
	"github.com/scenecast/scenecast/pkg/log"
	"github.com/scenecast/scenecast/pkg/metrics"
)

// Trigger labels for rebuild invocations.
const (
	TriggerSync  = "sync"
	TriggerAsync = "async"
)

// ClaimsService is the claims materializer. Both trigger paths (the
// synchronous call inside membership-mutating handlers and the
// asynchronous task fired on membership writes) call the same
// Rebuild; no business logic may exist in only one path.
type ClaimsService struct {
	userRepo       repo.IUserRepository
	membershipRepo repo.IMembershipRepository
	secretKey      []byte
	tokenExpire    time.Duration
}

func NewClaimsService(userRepo repo.IUserRepository, membershipRepo repo.IMembershipRepository, secretKey []byte, tokenExpire time.Duration) *ClaimsService {
	return &ClaimsService{
		userRepo:       userRepo,
		membershipRepo: membershipRepo,
		secretKey:      secretKey,
		tokenExpire:    tokenExpire,
	}
}

// Rebuild re-derives the full authorization payload for a user from
// their current memberships, persists it, then bumps the version
// counter as a separate write. Running it twice with no intervening
// membership change is safe: the version is bumped again but the
// token content is unchanged.
func (s *ClaimsService) Rebuild(ctx context.Context, userId, trigger string) (*model.AuthorizationToken, error) {
	memberships, err := s.membershipRepo.ListByUser(ctx, userId)
	if err != nil {
		// a partial view must never produce a partial token
		metrics.ClaimsRebuildsTotal.WithLabelValues(trigger, "error").Inc()
		return nil, fmt.Errorf("failed to list memberships for %s: %w", userId, err)
	}

	// a missing user record is not a materialization fault
	oldVersion, _ := s.userRepo.GetClaimsVersion(ctx, userId)

	orgs := make(map[string]model.OrgGrant, len(memberships))
	for _, m := range memberships {
		if m.Status != model.MemberStatusActive {
			continue
		}
		brands := m.BrandAccess
		if brands == nil {
			brands = []string{}
		}
		orgs[m.OrgId] = model.OrgGrant{
			Permissions: perm.EncodeRole(m.Role),
			Brands:      brands,
		}
	}

	claims := &model.AuthorizationToken{
		Orgs: orgs,
		CV:   oldVersion + 1,
	}

	serialized, err := sonic.Marshal(claims)
	if err != nil {
		metrics.ClaimsRebuildsTotal.WithLabelValues(trigger, "error").Inc()
		return nil, fmt.Errorf("failed to serialize claims for %s: %w", userId, err)
	}

	outcome := "ok"
	switch {
	case len(serialized) > model.MaxClaimsBytes:
		// correctness of "token exists and is fresh" outranks
		// completeness of its content
		log.Errorw("claims payload exceeds size budget, degrading to empty orgs",
			"userId", userId,
			"size", len(serialized),
			"budget", model.MaxClaimsBytes,
			"orgCount", len(orgs),
		)
		metrics.ClaimsOverflowsTotal.Inc()
		claims = &model.AuthorizationToken{
			Orgs: map[string]model.OrgGrant{},
			CV:   oldVersion + 1,
		}
		outcome = "degraded"
	case len(serialized) > model.WarnClaimsBytes:
		log.Warnw("claims payload approaching size budget",
			"userId", userId,
			"size", len(serialized),
			"budget", model.MaxClaimsBytes,
		)
	}

	signed, err := s.sign(userId, claims)
	if err != nil {
		metrics.ClaimsRebuildsTotal.WithLabelValues(trigger, "error").Inc()
		return nil, fmt.Errorf("failed to sign claims for %s: %w", userId, err)
	}

	if err := s.userRepo.WriteAuthClaims(ctx, userId, claims, signed); err != nil {
		metrics.ClaimsRebuildsTotal.WithLabelValues(trigger, "error").Inc()
		return nil, err
	}

	// separate write: a reader may briefly observe the new token with
	// the old version; the watcher self-corrects on the next increase
	if err := s.userRepo.IncClaimsVersion(ctx, userId); err != nil {
		metrics.ClaimsRebuildsTotal.WithLabelValues(trigger, "error").Inc()
		return nil, err
	}

	metrics.ClaimsRebuildsTotal.WithLabelValues(trigger, outcome).Inc()
	log.Debugw("claims rebuilt",
		"userId", userId,
		"trigger", trigger,
		"cv", claims.CV,
		"orgCount", len(claims.Orgs),
	)
	return claims, nil
}

func (s *ClaimsService) sign(userId string, claims *model.AuthorizationToken) (string, error) {
	orgs := make(map[string]jwt.OrgClaims, len(claims.Orgs))
	for orgId, grant := range claims.Orgs {
		orgs[orgId] = jwt.OrgClaims{
			Permissions: grant.Permissions,
			Brands:      grant.Brands,
		}
	}
	return jwt.GenClaimsToken(userId, orgs, claims.CV, s.secretKey, s.tokenExpire)
}
