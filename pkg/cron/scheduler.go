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

package cron

import (
	"errors"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/scenecast/scenecast/pkg/log"
)

var (
	// ErrNotInitialized is returned when the global scheduler is used before Init.
	ErrNotInitialized = errors.New("global cron instance is not initialized")
	// ErrEntryExists is returned when a named entry is registered twice.
	ErrEntryExists = errors.New("cron entry with this name already exists")
	// ErrEntryNotFound is returned when a named entry does not exist.
	ErrEntryNotFound = errors.New("cron entry not found")
)

// Scheduler wraps robfig/cron with named entries. Every job is wrapped
// with SkipIfStillRunning so an entry never overlaps itself.
type Scheduler struct {
	cron    *cron.Cron
	mu      sync.Mutex
	entries map[string]cron.EntryID
}

func New() *Scheduler {
	logger := cron.PrintfLogger(zapPrintf{})
	c := cron.New(
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	return &Scheduler{
		cron:    c,
		entries: make(map[string]cron.EntryID),
	}
}

// AddFunc registers a named job with a cron spec.
func (s *Scheduler) AddFunc(name, spec string, cmd func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[name]; ok {
		return ErrEntryExists
	}

	id, err := s.cron.AddFunc(spec, func() {
		start := time.Now()
		cmd()
		log.Debugw("cron job finished",
			"job", name,
			"elapsed", time.Since(start).String(),
		)
	})
	if err != nil {
		return err
	}
	s.entries[name] = id
	return nil
}

// Remove unregisters a named job.
func (s *Scheduler) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.entries[name]
	if !ok {
		return ErrEntryNotFound
	}
	s.cron.Remove(id)
	delete(s.entries, name)
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// zapPrintf adapts the cron printf logger to zap.
type zapPrintf struct{}

func (zapPrintf) Printf(format string, args ...interface{}) {
	log.Infof(format, args...)
}

var (
	globalCron *Scheduler
	globalMu   sync.RWMutex
	once       sync.Once
)

// Init initializes the global scheduler instance.
func Init() {
	once.Do(func() {
		globalMu.Lock()
		defer globalMu.Unlock()
		globalCron = New()
	})
}

// Get returns the global scheduler, nil if not initialized.
func Get() *Scheduler {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalCron
}

// AddFunc adds a named job to the global scheduler.
func AddFunc(name, spec string, cmd func()) error {
	s := Get()
	if s == nil {
		return ErrNotInitialized
	}
	return s.AddFunc(name, spec, cmd)
}

// Start starts the global scheduler.
func Start() {
	if s := Get(); s != nil {
		s.Start()
	}
}

// Stop stops the global scheduler.
func Stop() {
	if s := Get(); s != nil {
		s.Stop()
	}
}
