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

package main

import (
	"context"

	"github.com/google/wire"
	"github.com/redis/go-redis/v9"

	"github.com/scenecast/scenecast/internal/engine/conf"
	"github.com/scenecast/scenecast/internal/engine/repo"
	"github.com/scenecast/scenecast/internal/engine/router"
	"github.com/scenecast/scenecast/internal/engine/service"
	"github.com/scenecast/scenecast/internal/pkg/queue"
	"github.com/scenecast/scenecast/pkg/cache"
	"github.com/scenecast/scenecast/pkg/database"
)

// storeProviderSet provides the storage clients.
var storeProviderSet = wire.NewSet(
	provideRedisConf,
	provideMongo,
)

func provideRedisConf(appConf conf.AppConfig) cache.Redis {
	return appConf.Redis
}

func provideMongo(appConf conf.AppConfig) (*database.MongoClient, error) {
	return database.NewMongo(appConf.Mongo, context.Background())
}

// queueProviderSet provides the asynq task queue.
var queueProviderSet = wire.NewSet(
	provideTaskQueue,
)

func provideTaskQueue(appConf conf.AppConfig, redisClient redis.UniversalClient) (*queue.TaskQueue, error) {
	return queue.NewTaskQueue(&queue.Config{
		RedisClient:    redisClient,
		Concurrency:    appConf.Queue.Concurrency,
		StrictPriority: appConf.Queue.StrictPriority,
		LogLevel:       appConf.Queue.LogLevel,
	})
}

// repoProviderSet provides the repositories.
var repoProviderSet = wire.NewSet(
	repo.NewRepositories,
	provideUserRepo,
	provideOrganizationRepo,
	provideBrandRepo,
	provideMembershipRepo,
	provideInvitationRepo,
	provideDeletionRequestRepo,
	provideAuditRepo,
)

func provideUserRepo(repos *repo.Repositories) repo.IUserRepository {
	return repos.User
}

func provideOrganizationRepo(repos *repo.Repositories) repo.IOrganizationRepository {
	return repos.Organization
}

func provideBrandRepo(repos *repo.Repositories) repo.IBrandRepository {
	return repos.Brand
}

func provideMembershipRepo(repos *repo.Repositories) repo.IMembershipRepository {
	return repos.Membership
}

func provideInvitationRepo(repos *repo.Repositories) repo.IInvitationRepository {
	return repos.Invitation
}

func provideDeletionRequestRepo(repos *repo.Repositories) repo.IDeletionRequestRepository {
	return repos.DeletionRequest
}

func provideAuditRepo(repos *repo.Repositories) repo.IAuditRepository {
	return repos.Audit
}

// serviceProviderSet provides the domain services.
var serviceProviderSet = wire.NewSet(
	provideClaimsService,
	service.NewOrganizationService,
	provideMembershipService,
	service.NewBrandService,
	provideDeletionService,
	provideCleanupService,
)

func provideClaimsService(appConf conf.AppConfig, userRepo repo.IUserRepository, membershipRepo repo.IMembershipRepository) *service.ClaimsService {
	return service.NewClaimsService(
		userRepo, membershipRepo,
		[]byte(appConf.Http.Auth.SecretKey), appConf.Http.Auth.AccessExpire,
	)
}

func provideMembershipService(appConf conf.AppConfig, membershipRepo repo.IMembershipRepository, invitationRepo repo.IInvitationRepository, claims *service.ClaimsService, taskQueue *queue.TaskQueue) *service.MembershipService {
	return service.NewMembershipService(membershipRepo, invitationRepo, claims, taskQueue, lifecycleBaseUrl(appConf))
}

func provideDeletionService(appConf conf.AppConfig, deletionRepo repo.IDeletionRequestRepository, orgRepo repo.IOrganizationRepository, membershipRepo repo.IMembershipRepository, userRepo repo.IUserRepository, taskQueue *queue.TaskQueue) *service.DeletionService {
	return service.NewDeletionService(deletionRepo, orgRepo, membershipRepo, userRepo, taskQueue, lifecycleBaseUrl(appConf))
}

func provideCleanupService(
	orgRepo repo.IOrganizationRepository,
	membershipRepo repo.IMembershipRepository,
	brandRepo repo.IBrandRepository,
	invitationRepo repo.IInvitationRepository,
	userRepo repo.IUserRepository,
	deletionRepo repo.IDeletionRequestRepository,
	auditRepo repo.IAuditRepository,
	taskQueue *queue.TaskQueue,
	redisCache cache.ICache,
) *service.CleanupService {
	return service.NewCleanupService(
		orgRepo, membershipRepo, brandRepo, invitationRepo,
		userRepo, deletionRepo, auditRepo,
		taskQueue, redisCache,
	)
}

// lifecycleBaseUrl prefers the lifecycle override over the server
// base url for confirm/undo/invitation links.
func lifecycleBaseUrl(appConf conf.AppConfig) string {
	if appConf.Lifecycle.BaseUrl != "" {
		return appConf.Lifecycle.BaseUrl
	}
	return appConf.Http.BaseUrl
}

// routerProviderSet provides the route table.
var routerProviderSet = wire.NewSet(
	provideRouter,
)

func provideRouter(appConf conf.AppConfig, orgService *service.OrganizationService, membershipService *service.MembershipService, brandService *service.BrandService, deletionService *service.DeletionService, claimsService *service.ClaimsService) *router.Router {
	return router.NewRouter(&appConf.Http, orgService, membershipService, brandService, deletionService, claimsService)
}
