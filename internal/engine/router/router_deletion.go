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

	"github.com/scenecast/scenecast/internal/engine/repo"
	"github.com/scenecast/scenecast/internal/engine/service"
	"github.com/scenecast/scenecast/pkg/http"
	"github.com/scenecast/scenecast/pkg/log"
)

func (rt *Router) deletionRouter(r fiber.Router) {
	// requesting deletion is a tenant operation; confirm and undo are
	// emailed links that must work while the tenant is suspended
	r.Post("/org/:orgId/deletion/request", rt.orgGate, rt.requestDeletion)

	deletionGroup := r.Group("/delete-organization")
	{
		deletionGroup.Get("/confirm", rt.confirmDeletion)
		deletionGroup.Get("/undo", rt.undoDeletion)
	}
}

func (rt *Router) requestDeletion(c *fiber.Ctx) error {
	userId, err := rt.currentUserId(c)
	if err != nil {
		return http.WithRepErrMsg(c, http.AuthenticationFailed.Code, http.AuthenticationFailed.Msg, c.Path())
	}

	request, err := rt.deletionService.Request(c.Context(), c.Params("orgId"), userId)
	if err != nil {
		if errors.Is(err, service.ErrNotOwner) {
			c.Status(fiber.StatusForbidden)
			return http.WithRepErrMsg(c, http.PermissionDenied.Code, http.PermissionDenied.Msg, c.Path())
		}
		if errors.Is(err, repo.ErrNoMatch) {
			c.Status(fiber.StatusNotFound)
			return http.WithRepErrMsg(c, http.OrgNotExist.Code, http.OrgNotExist.Msg, c.Path())
		}
		log.Errorf("request deletion failed: %v", err)
		return http.WithRepErrMsg(c, http.Failed.Code, http.Failed.Msg, c.Path())
	}
	return http.WithRepJSON(c, request)
}

func (rt *Router) confirmDeletion(c *fiber.Ctx) error {
	requestId := c.Query("requestId")
	token := c.Query("token")
	if requestId == "" || token == "" {
		return http.WithRepErrMsg(c, http.BadRequest.Code, http.BadRequest.Msg, c.Path())
	}

	request, err := rt.deletionService.Confirm(c.Context(), requestId, token)
	if err != nil {
		return rt.deletionLinkError(c, err, "confirm deletion")
	}
	return http.WithRepJSON(c, request)
}

func (rt *Router) undoDeletion(c *fiber.Ctx) error {
	requestId := c.Query("requestId")
	token := c.Query("token")
	if requestId == "" || token == "" {
		return http.WithRepErrMsg(c, http.BadRequest.Code, http.BadRequest.Msg, c.Path())
	}

	request, err := rt.deletionService.Undo(c.Context(), requestId, token)
	if err != nil {
		return rt.deletionLinkError(c, err, "undo deletion")
	}
	return http.WithRepJSON(c, request)
}

// deletionLinkError maps lifecycle link failures onto the envelope
// codes; both invalid and lapsed links answer 410 so crawlers and
// mail scanners stop retrying them.
func (rt *Router) deletionLinkError(c *fiber.Ctx, err error, op string) error {
	switch {
	case errors.Is(err, service.ErrLinkExpired):
		c.Status(fiber.StatusGone)
		return http.WithRepErrMsg(c, http.LinkExpired.Code, http.LinkExpired.Msg, c.Path())
	case errors.Is(err, service.ErrLinkInvalid):
		c.Status(fiber.StatusGone)
		return http.WithRepErrMsg(c, http.LinkInvalid.Code, http.LinkInvalid.Msg, c.Path())
	default:
		log.Errorf("%s failed: %v", op, err)
		return http.WithRepErrMsg(c, http.Failed.Code, http.Failed.Msg, c.Path())
	}
}
