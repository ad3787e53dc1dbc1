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

package activeobject_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	activeobject "github.com/lightful/activeobject"
	"github.com/lightful/activeobject/log"
)

type embeddedTask struct{ id int }

// foreignLoop stands in for a host event loop (e.g. an epoll reactor or a
// GUI's own message pump) that owns the calling goroutine and drives an
// external-dispatcher actor by calling the pump handed to it via
// AcquireDispatcher, instead of the actor owning a dedicated goroutine.
type foreignLoop struct {
	mu                 sync.Mutex
	pump               activeobject.HandleActorEvents
	dispatching        int
	waitingEvts        int
	waitingTimer       int
	waitingTimerCancel int
	stopped            chan struct{}
}

func (f *foreignLoop) AcquireDispatcher(pump activeobject.HandleActorEvents) {
	f.pump = pump
	go f.drive()
}

func (f *foreignLoop) drive() {
	for {
		rearm, ok := f.pump()
		if !ok {
			close(f.stopped)
			return
		}
		if rearm > 0 {
			time.Sleep(rearm)
		} else {
			time.Sleep(time.Millisecond)
		}
	}
}

func (f *foreignLoop) OnDispatching() {
	f.mu.Lock()
	f.dispatching++
	f.mu.Unlock()
}

func (f *foreignLoop) OnWaitingEvents() {
	f.mu.Lock()
	f.waitingEvts++
	f.mu.Unlock()
}

func (f *foreignLoop) OnWaitingTimer(time.Duration) {
	f.mu.Lock()
	f.waitingTimer++
	f.mu.Unlock()
}

func (f *foreignLoop) OnWaitingTimerCancel() {
	f.mu.Lock()
	f.waitingTimerCancel++
	f.mu.Unlock()
}

type embedder struct {
	foreignLoop
	received chan embeddedTask
}

func newEmbedder() *embedder {
	return &embedder{foreignLoop: foreignLoop{stopped: make(chan struct{})}, received: make(chan embeddedTask, 8)}
}

func (e *embedder) RegisterHandlers(h *activeobject.Handlers) {
	activeobject.On(h, (*embedder).onTask)
}

func (e *embedder) PreStart(*activeobject.Context) error { return nil }
func (e *embedder) PostStop(*activeobject.Context) error { return nil }

func (e *embedder) onTask(_ *activeobject.Context, msg embeddedTask) activeobject.Result {
	e.received <- msg
	return activeobject.Done
}

// TestExternalDispatcherPumpsWithoutOwningGoroutine exercises §4.5: an
// actor created with WithExternalDispatcher never gets a dedicated
// goroutine from the runtime. Instead its own foreign loop drives it by
// repeatedly calling the pump handed to AcquireDispatcher, which returns
// control after each batch instead of blocking.
func TestExternalDispatcherPumpsWithoutOwningGoroutine(t *testing.T) {
	e := newEmbedder()
	ref, err := activeobject.Create(func() *embedder { return e },
		activeobject.WithLogger(log.DiscardLogger), activeobject.WithExternalDispatcher())
	require.NoError(t, err)
	defer ref.Release()

	require.NoError(t, activeobject.Send(ref, embeddedTask{id: 1}))

	select {
	case got := <-e.received:
		assert.Equal(t, 1, got.id)
	case <-time.After(time.Second):
		t.Fatal("external-dispatcher actor never delivered its message")
	}

	assert.Eventually(t, func() bool {
		e.mu.Lock()
		defer e.mu.Unlock()
		return e.dispatching > 0
	}, time.Second, time.Millisecond, "OnDispatching was never called by pump")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, ref.Stop(ctx))

	select {
	case <-e.stopped:
	case <-time.After(time.Second):
		t.Fatal("pump never reported ok=false after Stop")
	}
}

type tickingPayload struct{}

// tickingEmbedder arms a periodic timer at PreStart so pump reports an
// OnWaitingTimer wait on every idle call, letting
// TestExternalDispatcherCancelsSupersededTimerWait observe
// OnWaitingTimerCancel firing on the loop's next call.
type tickingEmbedder struct {
	foreignLoop
}

func newTickingEmbedder() *tickingEmbedder {
	return &tickingEmbedder{foreignLoop: foreignLoop{stopped: make(chan struct{})}}
}

func (e *tickingEmbedder) RegisterHandlers(*activeobject.Handlers) {}

func (e *tickingEmbedder) PreStart(ctx *activeobject.Context) error {
	return ctx.TimerStartHandler(tickingPayload{}, 10*time.Millisecond, activeobject.TimerPeriodic)
}

func (e *tickingEmbedder) PostStop(*activeobject.Context) error { return nil }

// TestExternalDispatcherCancelsSupersededTimerWait exercises §4.5's
// cancellation half of the handleActorEvents contract: once pump has
// reported a timer wait via OnWaitingTimer, the next call it makes —
// whether driven early by new work or by the foreign loop's own polling —
// must drop that pending delayed call via OnWaitingTimerCancel before
// reporting anything else.
func TestExternalDispatcherCancelsSupersededTimerWait(t *testing.T) {
	e := newTickingEmbedder()
	ref, err := activeobject.Create(func() *tickingEmbedder { return e },
		activeobject.WithLogger(log.DiscardLogger), activeobject.WithExternalDispatcher())
	require.NoError(t, err)
	defer ref.Release()

	assert.Eventually(t, func() bool {
		e.mu.Lock()
		defer e.mu.Unlock()
		return e.waitingTimer > 0 && e.waitingTimerCancel > 0
	}, time.Second, time.Millisecond, "OnWaitingTimerCancel was never called to supersede a reported wait")
}

// TestCreateRejectsExternalDispatcherWithoutDispatcherAware exercises the
// hard fault §4.5 requires when WithExternalDispatcher is combined with
// an actor that does not implement DispatcherAware.
func TestCreateRejectsExternalDispatcherWithoutDispatcherAware(t *testing.T) {
	_, err := activeobject.Create(func() *chimer { return &chimer{chimes: make(chan int, 1)} },
		activeobject.WithLogger(log.DiscardLogger), activeobject.WithExternalDispatcher())
	require.Error(t, err)
	var pe *activeobject.ProgrammingError
	assert.ErrorAs(t, err, &pe)
}
