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

package router

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/scenecast/scenecast/internal/engine/model"
	"github.com/scenecast/scenecast/internal/engine/repo"
	"github.com/scenecast/scenecast/internal/engine/service"
	"github.com/scenecast/scenecast/pkg/http"
	"github.com/scenecast/scenecast/pkg/log"
)

func (rt *Router) organizationRouter(r fiber.Router) {
	orgGroup := r.Group("/org")
	{
		orgGroup.Post("/create", rt.createOrganization)

		// tenant-scoped routes are gated on the suspension state
		orgGroup.Get("/:orgId", rt.orgGate, rt.getOrganization)
		orgGroup.Post("/:orgId/brand/create", rt.orgGate, rt.createBrand)
	}
}

// orgGate rejects requests against a tenant that is suspended
// pending deletion. The deletion lifecycle endpoints do not pass
// through here; undo must stay reachable while the tenant is
// suspended.
func (rt *Router) orgGate(c *fiber.Ctx) error {
	orgId := c.Params("orgId")
	if orgId == "" {
		return http.WithRepErrMsg(c, http.OrgIdIsEmpty.Code, http.OrgIdIsEmpty.Msg, c.Path())
	}
	if _, err := rt.orgService.EnsureActive(c.Context(), orgId); err != nil {
		if errors.Is(err, service.ErrOrgSuspended) {
			c.Status(fiber.StatusForbidden)
			return http.WithRepErrMsg(c, http.OrgSuspended.Code, http.OrgSuspended.Msg, c.Path())
		}
		if errors.Is(err, repo.ErrNoMatch) {
			c.Status(fiber.StatusNotFound)
			return http.WithRepErrMsg(c, http.OrgNotExist.Code, http.OrgNotExist.Msg, c.Path())
		}
		log.Errorf("org gate failed: %v", err)
		return http.WithRepErrMsg(c, http.Failed.Code, http.Failed.Msg, c.Path())
	}
	return c.Next()
}

func (rt *Router) createOrganization(c *fiber.Ctx) error {
	var req model.CreateOrganizationReq
	if err := c.BodyParser(&req); err != nil {
		log.Errorf("create organization failed: %v", err)
		return http.WithRepErrMsg(c, http.RequestParameterParsingFailed.Code, http.RequestParameterParsingFailed.Msg, c.Path())
	}

	userId, err := rt.currentUserId(c)
	if err != nil {
		return http.WithRepErrMsg(c, http.AuthenticationFailed.Code, http.AuthenticationFailed.Msg, c.Path())
	}

	org, err := rt.orgService.CreateOrganization(c.Context(), req.Name, req.DisplayName, req.Description, userId)
	if err != nil {
		log.Errorf("create organization failed: %v", err)
		return http.WithRepErrMsg(c, http.Failed.Code, http.Failed.Msg, c.Path())
	}
	return http.WithRepJSON(c, org)
}

func (rt *Router) getOrganization(c *fiber.Ctx) error {
	org, err := rt.orgService.GetOrganization(c.Context(), c.Params("orgId"))
	if err != nil {
		if errors.Is(err, repo.ErrNoMatch) {
			c.Status(fiber.StatusNotFound)
			return http.WithRepErrMsg(c, http.OrgNotExist.Code, http.OrgNotExist.Msg, c.Path())
		}
		log.Errorf("get organization failed: %v", err)
		return http.WithRepErrMsg(c, http.Failed.Code, http.Failed.Msg, c.Path())
	}
	return http.WithRepJSON(c, org)
}

func (rt *Router) createBrand(c *fiber.Ctx) error {
	var req model.CreateBrandReq
	if err := c.BodyParser(&req); err != nil {
		log.Errorf("create brand failed: %v", err)
		return http.WithRepErrMsg(c, http.RequestParameterParsingFailed.Code, http.RequestParameterParsingFailed.Msg, c.Path())
	}

	brand, err := rt.brandService.CreateBrand(c.Context(), c.Params("orgId"), req.Name)
	if err != nil {
		log.Errorf("create brand failed: %v", err)
		return http.WithRepErrMsg(c, http.Failed.Code, http.Failed.Msg, c.Path())
	}
	return http.WithRepJSON(c, brand)
}
