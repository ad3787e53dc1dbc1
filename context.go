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
	"reflect"
	"time"

	"github.com/lightful/activeobject/log"
)

// Context is the single-use handle passed into every actor hook and
// handler invocation. It is valid only for the duration of that call: the
// dispatch loop invalidates it the instant the call returns, and any
// timer/publish/control operation attempted afterward — whether by
// stashing a stale Context past its handler's return or smuggling it into
// another goroutine — panics with ErrOffOwningThread. This is the Go
// stand-in for the OS-thread-id comparison the original C++ runtime uses
// to hard-fault on off-thread timer/pub-sub misuse (SPEC_FULL.md §9).
type Context struct {
	eng   *engine
	epoch uint64
}

func (c *Context) checkAlive() {
	if c == nil || c.eng == nil || c.epoch != c.eng.epoch.Load() {
		panic(NewProgrammingError(ErrOffOwningThread))
	}
}

// TimerStart arms a timer identified by payload's (type, value); firing
// invokes event with the payload directly, bypassing the OnTimer handler
// registry — the primary form of §4.2, grounded on the original's
// TimerEvent<Any>. Starting a timer whose (type, value) is already armed
// re-arms it in place.
func (c *Context) TimerStart(payload any, lapse time.Duration, event func(any), cycle TimerCycle) error {
	c.checkAlive()
	return c.eng.timers.start(payload, lapse, cycle, time.Now(), event)
}

// TimerStartHandler arms a timer identified by payload's (type, value);
// firing invokes the OnTimer handler registered for payload's type. This
// is the convenience form of §4.2 for actors that keep all their timer
// dispatch inside RegisterHandlers rather than a closure captured at the
// call site.
func (c *Context) TimerStartHandler(payload any, lapse time.Duration, cycle TimerCycle) error {
	c.checkAlive()
	return c.eng.timers.start(payload, lapse, cycle, time.Now(), nil)
}

// TimerReset re-arms an existing timer for another full lapse from now.
// No-op if no timer is currently armed for payload's (type, value).
func (c *Context) TimerReset(payload any) {
	c.checkAlive()
	c.eng.timers.reset(payload, time.Now())
}

// TimerStop cancels a pending timer. No-op if it is not armed.
func (c *Context) TimerStop(payload any) {
	c.checkAlive()
	c.eng.timers.stop(payload)
}

// Publish delivers value to the callback slot bound, via Connect, for its
// concrete type on this actor. Silently dropped if no subscriber is bound
// — an unbound publish is not an error per §7's error taxonomy.
func Publish[T any](ctx *Context, value T) {
	ctx.checkAlive()
	typ := reflect.TypeOf((*T)(nil)).Elem()
	cb, ok := ctx.eng.callbacks[typ]
	if !ok {
		return
	}
	cb(value)
}

// Stop requests self-termination. The current handler invocation is
// allowed to return normally; the dispatch loop then tears itself down
// without attempting to join its own goroutine — the Go analogue of the
// original's self-detach path, since a goroutine can never be joined by
// itself in the first place.
func (c *Context) Stop(exitCode ...int) {
	c.checkAlive()
	c.eng.requestSelfStop(exitCode...)
}

// PendingMessages reports the current depth of each mailbox lane.
func (c *Context) PendingMessages() (normal, high int64) {
	c.checkAlive()
	return c.eng.mailbox.Len(Normal), c.eng.mailbox.Len(High)
}

// Pause suspends delivery from the Normal lane, the building block for the
// mixed-with-backpressure scenario of §8: an actor falling behind pauses
// itself and Resumes once PendingMessages drops back under its own
// threshold. High-priority traffic is never paused.
func (c *Context) Pause() { c.checkAlive(); c.eng.mailbox.Pause() }

// Resume lifts a self-imposed Pause.
func (c *Context) Resume() { c.checkAlive(); c.eng.mailbox.Resume() }

// Exiting reports whether a stop has already been requested — self,
// foreign, or via the last Ref release — matching the original's
// !dispatching. A long-running handler polls this to honor a pending
// stop cooperatively (§7) instead of waiting for detachment, which is
// only observable after the actor has already stopped delivering.
func (c *Context) Exiting() bool {
	c.checkAlive()
	return c.eng.stopping.Load() || c.eng.detached.Load()
}

// Logger returns the logger the actor was created with (WithLogger, or
// log.DefaultLogger otherwise), without any per-actor annotation.
func (c *Context) Logger() log.Logger {
	c.checkAlive()
	return c.eng.logger
}

// Self returns a strong Ref to the actor owning this Context, letting a
// handler pass its own identity to collaborators (e.g. as a reply
// address).
func (c *Context) Self() *Ref {
	c.checkAlive()
	return c.eng.self.Strong()
}
