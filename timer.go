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
	"container/heap"
	"reflect"
	"time"
)

// TimerCycle selects whether an armed timer fires once or repeats every
// lapse.
type TimerCycle int

const (
	// TimerOnce fires a single time and then removes itself.
	TimerOnce TimerCycle = iota
	// TimerPeriodic re-arms itself for another lapse after each firing.
	TimerPeriodic
)

// timerEntry is one armed timer, ordered in the owning timerSet's heap by
// (deadline, seq) — seq is the Go restatement of the C++ original's
// pointer-identity tie-break for two timers sharing a deadline.
type timerEntry struct {
	typ      reflect.Type
	payload  any
	lapse    time.Duration
	cycle    TimerCycle
	deadline time.Time
	seq      uint64
	index    int
	// event is the callback armed by the primary TimerStart form (§4.2),
	// the direct descendant of the original's TimerEvent<Any>::event
	// member. Nil for timers armed through TimerStartHandler, which
	// dispatch through the actor's OnTimer-registered handler instead.
	event func(any)
}

type timerHeap []*timerEntry

func (h timerHeap) Len() int { return len(h) }

func (h timerHeap) Less(i, j int) bool {
	if h[i].deadline.Equal(h[j].deadline) {
		return h[i].seq < h[j].seq
	}
	return h[i].deadline.Before(h[j].deadline)
}

func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *timerHeap) Push(x any) {
	e := x.(*timerEntry)
	e.index = len(*h)
	*h = append(*h, e)
}

func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*h = old[:n-1]
	return e
}

// timerSet is the per-actor, owning-goroutine-affine ordered set of
// pending timers, keyed by (payload type, payload value) per §4.2. It is
// never touched concurrently; every method is called from the dispatch
// loop goroutine only, guarded upstream by Context.checkAlive.
type timerSet struct {
	h     timerHeap
	byKey map[reflect.Type]map[any]*timerEntry
	seq   uint64
}

func newTimerSet() *timerSet {
	return &timerSet{byKey: make(map[reflect.Type]map[any]*timerEntry)}
}

func (ts *timerSet) slot(typ reflect.Type) map[any]*timerEntry {
	m, ok := ts.byKey[typ]
	if !ok {
		m = make(map[any]*timerEntry)
		ts.byKey[typ] = m
	}
	return m
}

// start installs the timer identified by payload's (type, value),
// replacing any timer already armed for that identity. event, if non-nil,
// is invoked directly on firing instead of the type's OnTimer handler.
func (ts *timerSet) start(payload any, lapse time.Duration, cycle TimerCycle, now time.Time, event func(any)) error {
	if lapse <= 0 {
		return ErrInvalidTimerLapse
	}
	typ := reflect.TypeOf(payload)
	slot := ts.slot(typ)
	if existing, ok := slot[payload]; ok {
		ts.remove(existing)
	}
	ts.seq++
	e := &timerEntry{typ: typ, payload: payload, lapse: lapse, cycle: cycle, deadline: now.Add(lapse), seq: ts.seq, event: event}
	slot[payload] = e
	heap.Push(&ts.h, e)
	return nil
}

// reset re-arms an existing timer for another full lapse from now.
func (ts *timerSet) reset(payload any, now time.Time) bool {
	typ := reflect.TypeOf(payload)
	slot, ok := ts.byKey[typ]
	if !ok {
		return false
	}
	e, ok := slot[payload]
	if !ok {
		return false
	}
	e.deadline = now.Add(e.lapse)
	heap.Fix(&ts.h, e.index)
	return true
}

// stop cancels a pending timer, returning false if none was armed.
func (ts *timerSet) stop(payload any) bool {
	typ := reflect.TypeOf(payload)
	slot, ok := ts.byKey[typ]
	if !ok {
		return false
	}
	e, ok := slot[payload]
	if !ok {
		return false
	}
	delete(slot, payload)
	ts.remove(e)
	return true
}

func (ts *timerSet) remove(e *timerEntry) {
	if e.index >= 0 && e.index < len(ts.h) && ts.h[e.index] == e {
		heap.Remove(&ts.h, e.index)
	}
}

func (ts *timerSet) empty() bool { return ts.h.Len() == 0 }

// nextDeadline returns the earliest pending deadline, or ok=false if no
// timer is armed — used by the dispatch loop's S3 wait state to decide
// between an unconditional wait and a deadline-bounded one.
func (ts *timerSet) nextDeadline() (time.Time, bool) {
	if ts.h.Len() == 0 {
		return time.Time{}, false
	}
	return ts.h[0].deadline, true
}

// popDue removes and returns every timer entry whose deadline has passed
// as of now. A periodic entry is re-armed for lapse from its prior
// deadline, snapped forward to now+lapse if it has fallen more than one
// lapse behind — the deadline-catch-up-prevention rule of §4.2, so a
// timer that oversleeps (GC pause, busy dispatcher) does not fire a burst
// of make-up events.
func (ts *timerSet) popDue(now time.Time) []*timerEntry {
	var due []*timerEntry
	for ts.h.Len() > 0 && !ts.h[0].deadline.After(now) {
		e := heap.Pop(&ts.h).(*timerEntry)
		due = append(due, e)
		switch e.cycle {
		case TimerPeriodic:
			e.deadline = e.deadline.Add(e.lapse)
			if !e.deadline.After(now) {
				e.deadline = now.Add(e.lapse)
			}
			ts.seq++
			e.seq = ts.seq
			heap.Push(&ts.h, e)
		case TimerOnce:
			delete(ts.slot(e.typ), e.payload)
		}
	}
	return due
}
