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

package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/scenecast/scenecast/internal/engine/conf"
	"github.com/scenecast/scenecast/internal/engine/repo"
	"github.com/scenecast/scenecast/internal/engine/router"
	"github.com/scenecast/scenecast/internal/engine/service"
	"github.com/scenecast/scenecast/internal/pkg/notify"
	"github.com/scenecast/scenecast/internal/pkg/queue"
	"github.com/scenecast/scenecast/pkg/cache"
	"github.com/scenecast/scenecast/pkg/cron"
	"github.com/scenecast/scenecast/pkg/database"
	"github.com/scenecast/scenecast/pkg/log"
	"github.com/scenecast/scenecast/pkg/metrics"
	"github.com/scenecast/scenecast/pkg/safe"
)

// Engine is the dependency graph built by the Wire injector in
// cmd/scenecast: storage clients, repositories, services and the
// route table.
type Engine struct {
	Mongo        *database.MongoClient
	Redis        redis.UniversalClient
	Cache        cache.ICache
	Repos        *repo.Repositories
	Queue        *queue.TaskQueue
	Claims       *service.ClaimsService
	Organization *service.OrganizationService
	Membership   *service.MembershipService
	Brand        *service.BrandService
	Deletion     *service.DeletionService
	Cleanup      *service.CleanupService
	Router       *router.Router
}

// InitEngineFunc is implemented by the generated injector.
type InitEngineFunc func(appConf conf.AppConfig) (*Engine, error)

// App bundles everything Run needs to start and stop the daemon.
type App struct {
	HttpApp *fiber.App
	Queue   *queue.TaskQueue
	Metrics *metrics.Server
	AppConf conf.AppConfig
}

// Bootstrap builds the whole engine from a config file: the Wire
// graph, the task handlers, the scheduled sweep and the metrics
// server. Returns the app and a cleanup function releasing resources
// in reverse construction order.
func Bootstrap(configFile string, initEngine InitEngineFunc) (*App, func(), error) {
	appConf := conf.NewConf(configFile)

	if err := log.Init(&appConf.Log); err != nil {
		return nil, nil, err
	}

	engine, err := initEngine(appConf)
	if err != nil {
		return nil, nil, err
	}

	emailChannel := notify.NewEmailChannel(
		appConf.Smtp.Host, appConf.Smtp.Port,
		appConf.Smtp.Username, appConf.Smtp.Password, appConf.Smtp.FromEmail,
	)
	if err := emailChannel.Validate(); err != nil {
		log.Warnw("email channel not configured, lifecycle emails will fail", "error", err)
	}

	// asynchronous trigger path: every membership document write
	// enqueues a rebuild, regardless of which code path wrote it
	engine.Repos.Membership.SetWriteHook(func(userId string) {
		safe.Go(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := engine.Queue.EnqueueRebuild(ctx, userId, "membership write"); err != nil {
				log.Warnw("failed to enqueue claims rebuild", "userId", userId, "error", err)
			}
		})
	})

	engine.Queue.HandleFunc(queue.TaskClaimsRebuild, func(ctx context.Context, payload []byte) error {
		var p queue.RebuildPayload
		if err := sonic.Unmarshal(payload, &p); err != nil {
			return err
		}
		_, err := engine.Claims.Rebuild(ctx, p.UserId, service.TriggerAsync)
		return err
	})
	engine.Queue.HandleFunc(queue.TaskLifecycleNotify, func(ctx context.Context, payload []byte) error {
		var p queue.NotifyPayload
		if err := sonic.Unmarshal(payload, &p); err != nil {
			return err
		}
		return emailChannel.Send(ctx, p.To, p.Subject, p.Body)
	})

	httpApp := engine.Router.Router()

	cron.Init()
	sweepSpec := appConf.Lifecycle.SweepSpec
	if sweepSpec == "" {
		sweepSpec = "0 3 * * *"
	}
	if err := cron.AddFunc("lifecycle-sweep", sweepSpec, func() {
		if err := engine.Cleanup.Sweep(context.Background()); err != nil {
			log.Errorw("cleanup sweep failed", "error", err)
		}
	}); err != nil {
		return nil, nil, err
	}

	metricsServer := metrics.NewServer(appConf.Metrics)
	for _, collector := range metrics.LifecycleCollectors() {
		if err := metricsServer.RegisterCollector(collector); err != nil {
			return nil, nil, err
		}
	}

	cleanup := func() {
		cron.Stop()
		engine.Queue.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := metricsServer.Stop(shutdownCtx); err != nil {
			log.Warnw("metrics server shutdown error", "error", err)
		}
		if err := engine.Mongo.Close(shutdownCtx); err != nil {
			log.Warnw("mongo shutdown error", "error", err)
		}
		if err := engine.Redis.Close(); err != nil {
			log.Warnw("redis shutdown error", "error", err)
		}
	}

	app := &App{
		HttpApp: httpApp,
		Queue:   engine.Queue,
		Metrics: metricsServer,
		AppConf: appConf,
	}
	return app, cleanup, nil
}

// Run starts the app and waits for an exit signal, then gracefully
// shuts down.
func Run(app *App, cleanup func()) {
	if err := app.Queue.Start(); err != nil {
		log.Fatalf("failed to start task queue: %v", err)
	}
	cron.Start()

	if err := app.Metrics.Start(); err != nil {
		log.Errorw("failed to start metrics server", "error", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	safe.Go(func() {
		addr := fmt.Sprintf("%s:%d", app.AppConf.Http.Host, app.AppConf.Http.Port)
		log.Infow("HTTP listener started", "address", addr)

		tlsConf := app.AppConf.Http.TLS
		var err error
		if tlsConf.CertFile != "" && tlsConf.KeyFile != "" {
			err = app.HttpApp.ListenTLS(addr, tlsConf.CertFile, tlsConf.KeyFile)
		} else {
			err = app.HttpApp.Listen(addr)
		}
		if err != nil {
			log.Errorw("HTTP listener failed", "address", addr, "error", err)
		}
	})

	sig := <-quit
	log.Infof("received signal: %v, shutting down gracefully...", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := app.HttpApp.ShutdownWithContext(shutdownCtx); err != nil {
		log.Errorf("HTTP server shutdown error: %v", err)
	}

	cleanup()
	log.Info("server shutdown complete")
}
