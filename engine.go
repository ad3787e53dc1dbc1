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

package activeobject

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/flowchartsman/retry"

	"github.com/lightful/activeobject/internal/telemetry"
	"github.com/lightful/activeobject/log"
)

// engine is the internal state backing every actor: the dispatch loop,
// mailbox, timer set, and pub/sub slot table. It is never exposed
// directly; callers only ever see it through a Ref, a WeakRef, or a
// Context. Renamed away from the more obvious "runtime" to avoid
// colliding with the stdlib runtime package this package imports (in
// ref.go) for AddCleanup.
type engine struct {
	actor    Actor
	handlers *Handlers
	mailbox  Mailbox
	timers   *timerSet

	// callbacks is the pub/sub slot table: reflect.Type -> subscriber
	// invocation, written only via bindParcel (always High priority),
	// read only from this actor's own dispatch loop goroutine.
	callbacks map[reflect.Type]func(any)

	logger log.Logger
	self   *WeakRef

	refcount atomic.Int32
	// detached becomes true at the end of teardown, after PostStop, and
	// stays true; Send, postBind and WeakRef.Strong (and so Channel and
	// Gateway) check it to refuse work after death.
	detached atomic.Bool
	// epoch increments twice per handler invocation (once to mint a
	// live Context, once immediately after the handler returns to
	// invalidate it) — see Context.checkAlive.
	epoch         atomic.Uint64
	exitCode      atomic.Int32
	selfStopFlag  atomic.Bool
	stopRequested sync.Once
	shutdownOnce  sync.Once
	// stopping is set at every stop-request site — requestSelfStop,
	// foreignStop, and the last release() — the instant a stop is known
	// to be pending, well before detached becomes true at the end of S4.
	// Context.Exiting and Ref.Exiting read this so a long-running handler
	// can observe a pending stop cooperatively (§7).
	stopping atomic.Bool

	wakeCh chan struct{}
	doneCh chan struct{}

	external  bool
	telemetry *telemetry.Telemetry
	initRetry *initRetryConfig

	// waitingOnTimer is set whenever pump last reported a timer wait via
	// OnWaitingTimer, so the next call can tell the foreign loop to drop
	// that pending delayed call before reporting a fresh one. Touched only
	// from pump, which the foreign loop calls serially — never concurrently
	// with itself — so it needs no atomic.
	waitingOnTimer bool
}

// initRetryConfig bounds retried attempts at PreStart, grounded on the
// teacher's use of flowchartsman/retry around PreStart in actor/pid.go's
// init method.
type initRetryConfig struct {
	maxRetries             int
	minBackoff, maxBackoff time.Duration
}

func (e *engine) wake() {
	select {
	case e.wakeCh <- struct{}{}:
	default:
	}
}

// invoke mints a Context valid only for the duration of fn, then
// invalidates it. Panics escaping fn are recovered here except for
// ProgrammingError, which is a hard fault and is re-raised so it
// terminates the process — per §7's taxonomy, a programming error is
// never silently swallowed. Any other panic stops the actor with a
// non-zero exit code instead of crashing the process.
func (e *engine) invoke(fn func(ctx *Context)) {
	ep := e.epoch.Add(1)
	ctx := &Context{eng: e, epoch: ep}
	defer func() {
		e.epoch.Add(1)
		if r := recover(); r != nil {
			if pe, ok := r.(*ProgrammingError); ok {
				panic(pe)
			}
			e.logger.Errorf("actor panic recovered: %v", r)
			e.exitCode.Store(-1)
			e.selfStopFlag.Store(true)
		}
	}()
	fn(ctx)
}

func (e *engine) requestSelfStop(code ...int) {
	if len(code) > 0 {
		e.exitCode.Store(int32(code[0]))
	}
	e.stopping.Store(true)
	e.selfStopFlag.Store(true)
}

// foreignStop is Ref.Stop's implementation: signal the dispatch loop from
// any goroutine other than the actor's own, then wait for it to finish
// tearing down or for ctx to be done.
func (e *engine) foreignStop(ctx context.Context, code int) error {
	e.stopRequested.Do(func() {
		e.stopping.Store(true)
		e.exitCode.Store(int32(code))
		e.mailbox.Enqueue(High, controlParcel{stop: true, exitCode: code})
		e.wake()
	})
	select {
	case <-e.doneCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// release is called when a Ref's refcount backing this engine reaches
// zero, whether via explicit Release or the AddCleanup GC backstop. It
// requests teardown but does not block the releasing goroutine.
func (e *engine) release() {
	if e.refcount.Add(-1) <= 0 {
		e.stopRequested.Do(func() {
			e.stopping.Store(true)
			e.mailbox.Enqueue(High, controlParcel{stop: true})
			e.wake()
		})
	}
}

// start is S0: run PreStart, wrapped in a retrier if WithInitRetry was
// given. Shared by run's owning-goroutine loop and Create's
// external-dispatcher branch, which never calls run at all.
func (e *engine) start() {
	e.invoke(func(ctx *Context) {
		var err error
		if e.initRetry != nil {
			retrier := retry.NewRetrier(e.initRetry.maxRetries, e.initRetry.minBackoff, e.initRetry.maxBackoff)
			err = retrier.RunContext(context.Background(), func(context.Context) error {
				return e.actor.PreStart(ctx)
			})
		} else {
			err = e.actor.PreStart(ctx)
		}
		if err != nil {
			e.logger.Errorf("preStart failed: %v", err)
			e.exitCode.Store(-1)
			e.selfStopFlag.Store(true)
		}
	})
}

// shutdown is S4: run PostStop, detach, and dispose of the mailbox.
// Idempotent, since both run's owning-goroutine loop and pump's
// external-dispatcher path can reach it.
func (e *engine) shutdown() {
	e.shutdownOnce.Do(func() {
		e.invoke(func(ctx *Context) {
			if err := e.actor.PostStop(ctx); err != nil {
				e.logger.Errorf("postStop failed: %v", err)
			}
		})
		e.detached.Store(true)
		e.mailbox.Dispose()
		close(e.doneCh)
	})
}

// run is the S0-S4 dispatch loop for an actor that owns a dedicated
// goroutine, invoked by Create or on the calling goroutine by Run. It is
// never used in external-dispatcher mode — pump is that mode's loop body.
func (e *engine) run() {
	e.start()

	for !e.selfStopFlag.Load() {
		// S1/S2: fire any due timers, then drain the mailbox.
		e.fireDueTimers()
		if e.selfStopFlag.Load() {
			break
		}
		if e.deliverBatch() {
			break
		}
		if e.selfStopFlag.Load() {
			break
		}
		// S3: wait for new mailbox activity or the next timer deadline.
		e.waitForWork()
	}

	e.shutdown()
}

// pump is the HandleActorEvents primitive of §4.5: a single non-blocking
// S1/S2 pass — fire due timers, drain up to dispatchBatchSize parcels —
// followed by a report of how soon it should be called again. Handed to
// the actor via AcquireDispatcher in external-dispatcher mode in place of
// a dedicated goroutine; the foreign loop that owns the actor's execution
// calls it whenever convenient, and the runtime returns control to that
// loop after every batch instead of blocking it.
func (e *engine) pump() (rearm time.Duration, ok bool) {
	da, aware := e.actor.(DispatcherAware)
	if aware {
		// This call supersedes whatever wait pump last reported: either the
		// foreign loop is calling in early because new work arrived, or it
		// is calling because the timer it was told to arm just fired. Drop
		// that pending delayed call before doing anything else.
		if e.waitingOnTimer {
			da.OnWaitingTimerCancel()
			e.waitingOnTimer = false
		}
		da.OnDispatching()
	}

	e.fireDueTimers()
	stopped := false
	if !e.selfStopFlag.Load() {
		stopped = e.deliverBatch()
	}
	if stopped || e.selfStopFlag.Load() {
		e.shutdown()
		return 0, false
	}

	deadline, has := e.timers.nextDeadline()
	if !has {
		if aware {
			da.OnWaitingEvents()
		}
		return 0, true
	}
	d := time.Until(deadline)
	if d < 0 {
		d = 0
	}
	if aware {
		da.OnWaitingTimer(d)
		e.waitingOnTimer = true
	}
	return d, true
}

func (e *engine) fireDueTimers() {
	due := e.timers.popDue(time.Now())
	for _, entry := range due {
		if entry.event != nil {
			payload, event := entry.payload, entry.event
			e.invoke(func(*Context) { event(payload) })
		} else if fn, ok := e.handlers.timers[entry.typ]; ok {
			payload := entry.payload
			e.invoke(func(ctx *Context) { fn(e.actor, ctx, payload) })
		}
		e.telemetry.RecordTimerFired(context.Background())
		if e.selfStopFlag.Load() {
			return
		}
	}
}

// retryClear is the internal timer payload identifying the auto-resume
// timer installed by a DispatchRetry result, mirroring the original's
// anonymous retryTimer Channel<DispatchRetry> lambda. Its identity is a
// singleton per actor: a new Retry while one is already pending re-arms
// the same timer rather than accumulating one per retried message.
type retryClear struct{}

// armRetryTimer installs a one-shot timer that clears the Normal-lane
// pause after wait, the runtime-owned half of §4.4's DispatchRetry: the
// handler signals it cannot make progress, and the dispatcher — not the
// handler — is responsible for eventually resuming delivery.
func (e *engine) armRetryTimer(wait time.Duration) {
	if wait <= 0 {
		wait = DefaultRetryInterval
	}
	_ = e.timers.start(retryClear{}, wait, TimerOnce, time.Now(), func(any) { e.mailbox.Resume() })
}

// deliverBatch drains the mailbox, High lane first, until both lanes are
// empty (or Normal is paused and holds no High work either). It returns
// true if a control stop parcel was processed. In external-dispatcher
// mode it caps itself at dispatchBatchSize parcels per call so one
// actor's flood cannot starve the host event loop.
func (e *engine) deliverBatch() (stopped bool) {
	delivered := 0
	for {
		if p := e.mailbox.Dequeue(High); p != nil {
			if e.handleParcel(p) {
				return true
			}
			delivered++
		} else if !e.mailbox.Paused() {
			p := e.mailbox.Dequeue(Normal)
			if p == nil {
				return false
			}
			if e.handleParcel(p) {
				return true
			}
			delivered++
		} else {
			return false
		}

		if e.selfStopFlag.Load() {
			return false
		}
		if e.external && delivered >= dispatchBatchSize {
			return false
		}
	}
}

func (e *engine) handleParcel(p parcel) (stopNow bool) {
	switch v := p.(type) {
	case controlParcel:
		if v.stop {
			e.exitCode.Store(int32(v.exitCode))
			return true
		}
		return false

	case bindParcel:
		e.callbacks[v.typ] = v.callback
		return false

	case messageParcel:
		fn, ok := e.handlers.messages[v.typ]
		if !ok {
			e.logger.Warnf("unhandled message type %s", v.typ)
			return false
		}
		if e.telemetry != nil {
			e.telemetry.RecordMailboxDepth(context.Background(), e.mailbox.Len(Normal)+e.mailbox.Len(High))
		}
		var result Result
		e.invoke(func(ctx *Context) { result = fn(e.actor, ctx, v.value) })
		e.telemetry.RecordDispatch(context.Background())
		if result.Retry {
			// DispatchRetry (§4.4/§7): the handler could not make
			// progress. Pause the Normal lane, requeue the message at
			// the tail, and arm the timer that clears the pause — the
			// dispatcher, not the handler, owns resuming delivery.
			e.mailbox.Pause()
			e.requeueRetry(v)
			e.armRetryTimer(result.RetryAfter)
			e.telemetry.RecordRetry(context.Background())
		}
		return false

	default:
		return false
	}
}

// retryRequeuer is implemented by mailboxes that can report admission
// failure back to the caller instead of dropping silently, such as
// BoundedMailbox's ring buffer at capacity.
type retryRequeuer interface {
	TryEnqueue(pr Priority, p parcel) error
}

// requeueRetry re-enqueues a DispatchRetry'd message at the tail of the
// Normal lane. Against a bounded mailbox at capacity, Enqueue's ring
// buffer would otherwise drop the parcel without a trace; TryEnqueue
// surfaces the failure so the drop is logged. The parcel is still lost.
func (e *engine) requeueRetry(v messageParcel) {
	tr, ok := e.mailbox.(retryRequeuer)
	if !ok {
		e.mailbox.Enqueue(Normal, v)
		return
	}
	if err := tr.TryEnqueue(Normal, v); err != nil {
		e.logger.Errorf("retry requeue dropped for %s: %v", v.typ, err)
	}
}

// waitForWork is S3 for an actor running on its own dedicated goroutine
// (run). External-dispatcher mode never calls it: pump always returns
// control to the foreign loop instead of blocking a goroutine.
func (e *engine) waitForWork() {
	deadline, ok := e.timers.nextDeadline()
	if !ok {
		<-e.wakeCh
		return
	}
	d := time.Until(deadline)
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-e.wakeCh:
	case <-t.C:
	}
}

var errNotDispatcherAware = errors.New("WithExternalDispatcher requires an actor implementing DispatcherAware")
