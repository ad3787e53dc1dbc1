/*
 * MIT License
 *
 * Copyright (c) 2022-2025  Arsene Tochemey Gandote
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

// Package schedule stacks messages to be delivered to actors at a future
// time or on a recurring cron schedule. This is a supplemental feature:
// the original synchronous timer API only ever arms a timer relative to
// "now", with no wall-clock cron notion. Grounded on the teacher's
// actor/scheduler.go, which wraps the identical go-quartz/uuid stack the
// same way, generalized here from proto.Message envelopes to Send[T].
package schedule

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/reugn/go-quartz/job"
	quartzlogger "github.com/reugn/go-quartz/logger"
	"github.com/reugn/go-quartz/quartz"
	"go.uber.org/atomic"

	activeobject "github.com/lightful/activeobject"
	"github.com/lightful/activeobject/log"
)

// ErrNotStarted is returned by Once/Every/Cron when the Scheduler has not been
// started yet.
var ErrNotStarted = errors.New("scheduler has not started")

// Scheduler wraps a go-quartz scheduler, logging through the same Logger
// interface the rest of the runtime uses.
type Scheduler struct {
	mu          sync.Mutex
	quartz      quartz.Scheduler
	started     *atomic.Bool
	logger      log.Logger
	stopTimeout time.Duration
}

// New builds a Scheduler. Call Start before scheduling any job.
func New(logger log.Logger, stopTimeout time.Duration) *Scheduler {
	qs, _ := quartz.NewStdScheduler(quartz.WithLogger(quartzlogger.NewSimpleLogger(nil, quartzlogger.LevelOff)))
	return &Scheduler{
		quartz:      qs,
		started:     atomic.NewBool(false),
		logger:      logger,
		stopTimeout: stopTimeout,
	}
}

// Start starts the underlying quartz scheduler.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger.Info("starting message scheduler...")
	s.quartz.Start(ctx)
	s.started.Store(s.quartz.IsStarted())
}

// Stop drains and stops the scheduler, waiting up to stopTimeout.
func (s *Scheduler) Stop(ctx context.Context) {
	if !s.started.Load() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger.Info("stopping message scheduler...")
	_ = s.quartz.Clear()
	s.quartz.Stop()
	s.started.Store(s.quartz.IsStarted())

	waitCtx, cancel := context.WithTimeout(ctx, s.stopTimeout)
	defer cancel()
	s.quartz.Wait(waitCtx)
}

// Once delivers value to target once, after interval elapses.
func Once[T any](s *Scheduler, target *activeobject.Ref, value T, interval time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started.Load() {
		return ErrNotStarted
	}
	fn := job.NewFunctionJob[bool](func(context.Context) (bool, error) {
		err := activeobject.Send(target, value)
		return err == nil, err
	})
	detail := quartz.NewJobDetail(fn, quartz.NewJobKey(uuid.NewString()))
	return s.quartz.ScheduleJob(detail, quartz.NewRunOnceTrigger(interval))
}

// Every delivers value to target repeatedly, every interval.
func Every[T any](s *Scheduler, target *activeobject.Ref, value T, interval time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started.Load() {
		return ErrNotStarted
	}
	fn := job.NewFunctionJob[bool](func(context.Context) (bool, error) {
		err := activeobject.Send(target, value)
		return err == nil, err
	})
	detail := quartz.NewJobDetail(fn, quartz.NewJobKey(uuid.NewString()))
	return s.quartz.ScheduleJob(detail, quartz.NewSimpleTrigger(interval))
}

// Cron delivers value to target every time cronExpression matches.
func Cron[T any](s *Scheduler, target *activeobject.Ref, value T, cronExpression string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started.Load() {
		return ErrNotStarted
	}
	fn := job.NewFunctionJob[bool](func(context.Context) (bool, error) {
		err := activeobject.Send(target, value)
		return err == nil, err
	})
	trigger, err := quartz.NewCronTriggerWithLoc(cronExpression, time.Now().Location())
	if err != nil {
		s.logger.Errorf("failed to build cron trigger: %v", err)
		return err
	}
	detail := quartz.NewJobDetail(fn, quartz.NewJobKey(uuid.NewString()))
	return s.quartz.ScheduleJob(detail, trigger)
}
