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
	"reflect"
	goruntime "runtime"
	"sync/atomic"
	"time"
	"weak"
)

// refState is the shared, idempotent-release backing for a Ref. It exists
// separately from Ref so that both an explicit Release() call and a
// runtime.AddCleanup-triggered GC backstop funnel through the same
// compare-and-swap guard without double-decrementing the engine's
// refcount.
type refState struct {
	eng      *engine
	released atomic.Bool
}

func (s *refState) release() {
	if s.released.CompareAndSwap(false, true) {
		s.eng.release()
	}
}

// Ref is a strong, reference-counted handle to a running actor. The actor
// stays alive as long as at least one Ref is held; Release is the
// primary, deterministic teardown trigger. As a backstop for a Ref
// dropped without an explicit Release — mirroring a C++ shared_ptr's
// custom deleter, which fires no matter how the last copy goes out of
// scope — a runtime.AddCleanup callback also releases the underlying
// engine if the Ref itself is first reclaimed by the garbage collector.
// Tests should not rely on cleanup timing; call Release explicitly and
// use WaitIdle for synchronization, exactly as the C++ examples call
// reset() before stop().
type Ref struct {
	state *refState
}

func newRef(eng *engine) *Ref {
	eng.refcount.Add(1)
	return wrapRef(eng)
}

func wrapRef(eng *engine) *Ref {
	state := &refState{eng: eng}
	r := &Ref{state: state}
	goruntime.AddCleanup(r, func(s *refState) { s.release() }, state)
	return r
}

// Acquire returns a new strong Ref sharing the same underlying actor,
// incrementing its refcount.
func (r *Ref) Acquire() *Ref {
	if r == nil {
		return nil
	}
	return newRef(r.state.eng)
}

// Release decrements the refcount; when it reaches zero the actor is
// stopped, if it has not already stopped itself, and torn down.
// Idempotent per Ref value.
func (r *Ref) Release() {
	if r == nil {
		return
	}
	r.state.release()
}

// Weak returns a weak handle to the same actor that does not keep it
// alive and does not count toward its refcount.
func (r *Ref) Weak() *WeakRef {
	if r == nil {
		return &WeakRef{}
	}
	return &WeakRef{w: weak.Make(r.state.eng)}
}

// WeakRef is a non-owning handle, built on Go's stdlib weak.Pointer, used
// by Channel and Gateway so a subscriber does not keep a publisher alive
// (and vice versa) purely by virtue of being connected.
type WeakRef struct {
	w weak.Pointer[engine]
}

// Strong upgrades the weak handle to a strong Ref, or returns nil if the
// target has already stopped or been garbage collected.
func (wr *WeakRef) Strong() *Ref {
	if wr == nil {
		return nil
	}
	eng := wr.w.Value()
	if eng == nil || eng.detached.Load() {
		return nil
	}
	for {
		cur := eng.refcount.Load()
		if cur <= 0 {
			return nil
		}
		if eng.refcount.CompareAndSwap(cur, cur+1) {
			return wrapRef(eng)
		}
	}
}

func (r *Ref) postBind(typ reflect.Type, cb func(any)) error {
	if r == nil || r.state.eng.detached.Load() {
		return ErrDead
	}
	r.state.eng.mailbox.Enqueue(High, bindParcel{typ: typ, callback: cb})
	r.state.eng.wake()
	return nil
}

// PendingMessages reports the current depth of each mailbox lane.
func (r *Ref) PendingMessages() (normal, high int64) {
	if r == nil {
		return 0, 0
	}
	return r.state.eng.mailbox.Len(Normal), r.state.eng.mailbox.Len(High)
}

// WaitIdle polls until both mailbox lanes drain to zero or maxWait
// elapses, returning whether the mailbox was observed idle.
func (r *Ref) WaitIdle(maxWait time.Duration) bool {
	if r == nil {
		return true
	}
	deadline := time.Now().Add(maxWait)
	for {
		n, h := r.PendingMessages()
		if n == 0 && h == 0 {
			return true
		}
		if !time.Now().Before(deadline) {
			return false
		}
		time.Sleep(time.Millisecond)
	}
}

// Exiting reports whether a stop has already been requested for the
// actor, whether self-initiated, foreign, or via the last Ref release.
func (r *Ref) Exiting() bool {
	if r == nil {
		return true
	}
	return r.state.eng.stopping.Load() || r.state.eng.detached.Load()
}

// Stop requests a foreign stop of the actor: called from any goroutine
// other than the actor's own, it signals the dispatch loop, waits for
// teardown to finish (PostStop, mailbox disposal), and returns once the
// loop's goroutine has exited or ctx is done.
func (r *Ref) Stop(ctx context.Context, code ...int) error {
	if r == nil {
		return ErrDead
	}
	exitCode := 0
	if len(code) > 0 {
		exitCode = code[0]
	}
	return r.state.eng.foreignStop(ctx, exitCode)
}
