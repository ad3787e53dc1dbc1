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

import "time"

// Actor is the interface every active object implements. PreStart and
// PostStop bracket every message the actor ever receives; both run on the
// actor's own dispatch-loop goroutine, except in external-dispatcher mode,
// where PreStart runs on the goroutine calling Create and PostStop on the
// goroutine calling the pump.
type Actor interface {
	// PreStart runs once before the dispatch loop begins delivering
	// messages. Returning an error stops the actor: the error is logged,
	// the exit code is set to -1, no message is delivered, and PostStop
	// still runs. The error is not returned to the caller: Create has
	// already returned the Ref with a nil error, and Run returns -1 with a
	// nil error.
	PreStart(ctx *Context) error
	// PostStop runs once after the dispatch loop stops accepting new
	// work, whether that stop was self-requested or foreign.
	PostStop(ctx *Context) error
}

// HandleActorEvents is the non-blocking primitive of §4.5 that a foreign
// event loop calls to drive an actor created with WithExternalDispatcher:
// each call fires due timers, drains up to dispatchBatchSize parcels, and
// returns either the duration until it should be called again (ok=true)
// or ok=false once the actor has torn itself down. The runtime, not the
// actor, implements this function; AcquireDispatcher hands it to the
// actor rather than requiring the actor to reimplement mailbox and timer
// draining itself.
type HandleActorEvents func() (rearm time.Duration, ok bool)

// DispatcherAware is optionally implemented by actors that want to
// interleave their dispatch loop with an externally driven event loop
// (§4.5) instead of owning a dedicated goroutine outright.
type DispatcherAware interface {
	// AcquireDispatcher is called once, in place of spawning a dedicated
	// goroutine, when the actor is created with WithExternalDispatcher.
	// pump is the HandleActorEvents primitive; the actor's own foreign
	// loop calls it whenever convenient, and the runtime returns control
	// to that loop after every batch instead of blocking it.
	AcquireDispatcher(pump HandleActorEvents)
	// OnDispatching is called by pump at the start of every batch, before
	// any due timer or parcel is delivered.
	OnDispatching()
	// OnWaitingEvents is called by pump when it found no armed timer:
	// there is nothing to schedule, call pump again once new mailbox
	// activity is expected.
	OnWaitingEvents()
	// OnWaitingTimer is called by pump when its next call should be
	// scheduled after d, the time remaining until the next timer
	// deadline.
	OnWaitingTimer(d time.Duration)
	// OnWaitingTimerCancel is called at the start of a pump call that
	// supersedes a wait it previously reported through OnWaitingTimer —
	// drop any pending delayed call scheduled on its account before this
	// batch is processed.
	OnWaitingTimerCancel()
}

// dispatchBatchSize bounds how many parcels HandleActorEvents drains per
// call in external-dispatcher mode before voluntarily yielding, so one
// actor's flood cannot starve the host event loop's fairness (§4.5).
const dispatchBatchSize = 64
