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

package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/scenecast/scenecast/pkg/log"
)

// Task types.
const (
	// TaskClaimsRebuild is enqueued on every membership document
	// write; its handler is the asynchronous trigger path of the
	// claims materializer.
	TaskClaimsRebuild = "claims:rebuild"
	// TaskLifecycleNotify delivers deletion lifecycle emails.
	// Fire-and-forget relative to the deletion itself.
	TaskLifecycleNotify = "lifecycle:notify"
)

// Queue names.
const (
	Critical = "critical"
	Default  = "default"
	Low      = "low"
)

// RebuildPayload is the claims:rebuild task payload.
type RebuildPayload struct {
	UserId string `json:"user_id"`
	Reason string `json:"reason"`
}

// NotifyPayload is the lifecycle:notify task payload.
type NotifyPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Config holds queue configuration.
type Config struct {
	RedisClient     redis.UniversalClient
	Concurrency     int
	StrictPriority  bool
	Queues          map[string]int
	LogLevel        string
	ShutdownTimeout int
}

// TaskHandler handles one task type.
type TaskHandler func(ctx context.Context, payload []byte) error

// TaskQueue is the asynq-backed distributed task queue.
type TaskQueue struct {
	client *asynq.Client
	server *asynq.Server
	mux    *asynq.ServeMux
}

// redisConnOptWrapper reuses an existing redis client for asynq.
type redisConnOptWrapper struct {
	client redis.UniversalClient
}

func (w *redisConnOptWrapper) MakeRedisClient() interface{} {
	return w.client
}

func NewTaskQueue(cfg *Config) (*TaskQueue, error) {
	if cfg == nil {
		return nil, fmt.Errorf("queue config is required")
	}
	if cfg.RedisClient == nil {
		return nil, fmt.Errorf("redis client is required")
	}

	redisOpt := &redisConnOptWrapper{client: cfg.RedisClient}

	queues := cfg.Queues
	if len(queues) == 0 {
		queues = map[string]int{
			Critical: 6,
			Default:  3,
			Low:      1,
		}
	}

	var logLevel asynq.LogLevel
	if cfg.LogLevel != "" {
		if err := logLevel.Set(cfg.LogLevel); err != nil {
			log.Warnw("invalid log level, using default info", "logLevel", cfg.LogLevel, "error", err)
			logLevel = asynq.InfoLevel
		}
	} else {
		logLevel = asynq.InfoLevel
	}

	shutdownTimeout := 10 * time.Second
	if cfg.ShutdownTimeout > 0 {
		shutdownTimeout = time.Duration(cfg.ShutdownTimeout) * time.Second
	}

	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 10
	}

	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency:     concurrency,
		StrictPriority:  cfg.StrictPriority,
		Queues:          queues,
		ShutdownTimeout: shutdownTimeout,
		LogLevel:        logLevel,
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			log.Errorw("task failed",
				"type", task.Type(),
				"error", err,
			)
		}),
	})

	return &TaskQueue{
		client: asynq.NewClient(redisOpt),
		server: server,
		mux:    asynq.NewServeMux(),
	}, nil
}

// EnqueueRebuild schedules an asynchronous claims rebuild for a user.
// Safe to enqueue redundantly; rebuilding twice with no intervening
// membership change is a harmless no-op content-wise.
func (q *TaskQueue) EnqueueRebuild(ctx context.Context, userId, reason string) error {
	data, err := sonic.Marshal(&RebuildPayload{UserId: userId, Reason: reason})
	if err != nil {
		return fmt.Errorf("failed to marshal rebuild payload: %w", err)
	}

	task := asynq.NewTask(TaskClaimsRebuild, data)
	_, err = q.client.EnqueueContext(ctx, task,
		asynq.Queue(Critical),
		asynq.MaxRetry(5),
		asynq.Timeout(30*time.Second),
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue rebuild task: %w", err)
	}
	return nil
}

// EnqueueNotify schedules an outbound lifecycle email.
func (q *TaskQueue) EnqueueNotify(ctx context.Context, payload *NotifyPayload) error {
	data, err := sonic.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal notify payload: %w", err)
	}

	task := asynq.NewTask(TaskLifecycleNotify, data)
	_, err = q.client.EnqueueContext(ctx, task,
		asynq.Queue(Low),
		asynq.MaxRetry(10),
		asynq.Timeout(time.Minute),
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue notify task: %w", err)
	}
	return nil
}

// HandleFunc registers a handler for a task type.
func (q *TaskQueue) HandleFunc(taskType string, handler TaskHandler) {
	q.mux.HandleFunc(taskType, func(ctx context.Context, task *asynq.Task) error {
		return handler(ctx, task.Payload())
	})
}

// Start runs the worker server in a background goroutine.
func (q *TaskQueue) Start() error {
	if err := q.server.Start(q.mux); err != nil {
		return fmt.Errorf("failed to start queue server: %w", err)
	}
	log.Info("task queue started")
	return nil
}

// Stop shuts the queue down, waiting for in-flight tasks.
func (q *TaskQueue) Stop() {
	q.server.Shutdown()
	if err := q.client.Close(); err != nil {
		log.Warnw("failed to close queue client", "error", err)
	}
}
