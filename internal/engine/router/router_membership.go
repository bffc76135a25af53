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

func (rt *Router) membershipRouter(r fiber.Router) {
	memberGroup := r.Group("/org/:orgId/member", rt.orgGate)
	{
		memberGroup.Post("/invite", rt.inviteMember)
		memberGroup.Post("/add", rt.addMember)
		memberGroup.Put("/:userId/role", rt.updateRole)
		memberGroup.Put("/:userId/brands", rt.updateBrandAccess)
		memberGroup.Delete("/:userId", rt.removeMember)
	}

	// invitation links arrive from email, outside any tenant session
	r.Get("/invitations/accept", rt.acceptInvitation)
}

func (rt *Router) inviteMember(c *fiber.Ctx) error {
	var req model.InviteMemberReq
	if err := c.BodyParser(&req); err != nil {
		log.Errorf("invite member failed: %v", err)
		return http.WithRepErrMsg(c, http.RequestParameterParsingFailed.Code, http.RequestParameterParsingFailed.Msg, c.Path())
	}

	invitedBy, err := rt.currentUserId(c)
	if err != nil {
		return http.WithRepErrMsg(c, http.AuthenticationFailed.Code, http.AuthenticationFailed.Msg, c.Path())
	}

	invitation, err := rt.membershipService.Invite(c.Context(), c.Params("orgId"), req.Email, req.Role, invitedBy)
	if err != nil {
		log.Errorf("invite member failed: %v", err)
		return http.WithRepErrMsg(c, http.Failed.Code, http.Failed.Msg, c.Path())
	}
	return http.WithRepJSON(c, invitation)
}

func (rt *Router) acceptInvitation(c *fiber.Ctx) error {
	invitationId := c.Query("invitationId")
	token := c.Query("token")
	if invitationId == "" || token == "" {
		return http.WithRepErrMsg(c, http.BadRequest.Code, http.BadRequest.Msg, c.Path())
	}

	userId, err := rt.currentUserId(c)
	if err != nil {
		return http.WithRepErrMsg(c, http.AuthenticationFailed.Code, http.AuthenticationFailed.Msg, c.Path())
	}

	membership, err := rt.membershipService.AcceptInvitation(c.Context(), invitationId, token, userId)
	if err != nil {
		if errors.Is(err, service.ErrLinkInvalid) {
			c.Status(fiber.StatusGone)
			return http.WithRepErrMsg(c, http.LinkInvalid.Code, http.LinkInvalid.Msg, c.Path())
		}
		log.Errorf("accept invitation failed: %v", err)
		return http.WithRepErrMsg(c, http.Failed.Code, http.Failed.Msg, c.Path())
	}
	return http.WithRepJSON(c, membership)
}

func (rt *Router) addMember(c *fiber.Ctx) error {
	var req model.AddMemberReq
	if err := c.BodyParser(&req); err != nil {
		log.Errorf("add member failed: %v", err)
		return http.WithRepErrMsg(c, http.RequestParameterParsingFailed.Code, http.RequestParameterParsingFailed.Msg, c.Path())
	}
	if req.UserId == "" {
		return http.WithRepErrMsg(c, http.UserIdIsEmpty.Code, http.UserIdIsEmpty.Msg, c.Path())
	}

	membership := &model.Membership{
		OrgId:              c.Params("orgId"),
		UserId:             req.UserId,
		Role:               req.Role,
		BrandAccess:        req.BrandAccess,
		AutoGrantNewBrands: req.AutoGrantNewBrands,
	}
	if membership.BrandAccess == nil {
		membership.BrandAccess = []string{}
	}
	if err := rt.membershipService.AddMember(c.Context(), membership); err != nil {
		log.Errorf("add member failed: %v", err)
		return http.WithRepErrMsg(c, http.Failed.Code, http.Failed.Msg, c.Path())
	}
	return http.WithRepJSON(c, membership)
}

func (rt *Router) updateRole(c *fiber.Ctx) error {
	var req model.UpdateRoleReq
	if err := c.BodyParser(&req); err != nil {
		log.Errorf("update role failed: %v", err)
		return http.WithRepErrMsg(c, http.RequestParameterParsingFailed.Code, http.RequestParameterParsingFailed.Msg, c.Path())
	}

	err := rt.membershipService.UpdateRole(c.Context(), c.Params("orgId"), c.Params("userId"), req.Role)
	if err != nil {
		if errors.Is(err, repo.ErrNoMatch) {
			c.Status(fiber.StatusNotFound)
			return http.WithRepErrMsg(c, http.MembershipNotExist.Code, http.MembershipNotExist.Msg, c.Path())
		}
		log.Errorf("update role failed: %v", err)
		return http.WithRepErrMsg(c, http.Failed.Code, http.Failed.Msg, c.Path())
	}
	return http.WithRepNotDetail(c)
}

func (rt *Router) updateBrandAccess(c *fiber.Ctx) error {
	var req model.UpdateBrandAccessReq
	if err := c.BodyParser(&req); err != nil {
		log.Errorf("update brand access failed: %v", err)
		return http.WithRepErrMsg(c, http.RequestParameterParsingFailed.Code, http.RequestParameterParsingFailed.Msg, c.Path())
	}

	err := rt.membershipService.UpdateBrandAccess(c.Context(), c.Params("orgId"), c.Params("userId"), req.BrandAccess, req.AutoGrantNewBrands)
	if err != nil {
		if errors.Is(err, repo.ErrNoMatch) {
			c.Status(fiber.StatusNotFound)
			return http.WithRepErrMsg(c, http.MembershipNotExist.Code, http.MembershipNotExist.Msg, c.Path())
		}
		log.Errorf("update brand access failed: %v", err)
		return http.WithRepErrMsg(c, http.Failed.Code, http.Failed.Msg, c.Path())
	}
	return http.WithRepNotDetail(c)
}

func (rt *Router) removeMember(c *fiber.Ctx) error {
	userId := c.Params("userId")
	if userId == "" {
		return http.WithRepErrMsg(c, http.UserIdIsEmpty.Code, http.UserIdIsEmpty.Msg, c.Path())
	}

	if err := rt.membershipService.RemoveMember(c.Context(), c.Params("orgId"), userId); err != nil {
		log.Errorf("remove member failed: %v", err)
		return http.WithRepErrMsg(c, http.Failed.Code, http.Failed.Msg, c.Path())
	}
	return http.WithRepNotDetail(c)
}
