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
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/scenecast/scenecast/internal/engine/service"
	httpx "github.com/scenecast/scenecast/pkg/http"
	"github.com/scenecast/scenecast/pkg/http/jwt"
	"github.com/scenecast/scenecast/pkg/http/middleware"
	"github.com/scenecast/scenecast/pkg/version"
)

type Router struct {
	Http              *httpx.Http
	orgService        *service.OrganizationService
	membershipService *service.MembershipService
	brandService      *service.BrandService
	deletionService   *service.DeletionService
	claimsService     *service.ClaimsService
}

func NewRouter(
	httpConf *httpx.Http,
	orgService *service.OrganizationService,
	membershipService *service.MembershipService,
	brandService *service.BrandService,
	deletionService *service.DeletionService,
	claimsService *service.ClaimsService,
) *Router {
	return &Router{
		Http:              httpConf,
		orgService:        orgService,
		membershipService: membershipService,
		brandService:      brandService,
		deletionService:   deletionService,
		claimsService:     claimsService,
	}
}

func (rt *Router) Router() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ReadTimeout:           time.Duration(rt.Http.ReadTimeout) * time.Second,
		WriteTimeout:          time.Duration(rt.Http.WriteTimeout) * time.Second,
		IdleTimeout:           time.Duration(rt.Http.IdleTimeout) * time.Second,
	})

	app.Use(middleware.ExceptionMiddleware)
	app.Use(middleware.AccessLogMiddleware(rt.Http))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	app.Get("/version", func(c *fiber.Ctx) error {
		return c.JSON(version.GetVersion())
	})

	contextPath := rt.Http.ContextPath
	if contextPath == "" {
		contextPath = "/api/v1"
	}
	api := app.Group(contextPath)
	{
		rt.organizationRouter(api)
		rt.membershipRouter(api)
		rt.deletionRouter(api)
	}

	return app
}

// currentUserId resolves the acting user from the bearer token.
func (rt *Router) currentUserId(c *fiber.Ctx) (string, error) {
	header := c.Get(fiber.HeaderAuthorization)
	if !strings.HasPrefix(header, "Bearer ") {
		return "", jwt.ErrInvalidToken
	}
	claims, err := jwt.ParseClaimsToken(strings.TrimPrefix(header, "Bearer "), rt.Http.Auth.SecretKey)
	if err != nil {
		return "", err
	}
	return claims.UserId, nil
}
