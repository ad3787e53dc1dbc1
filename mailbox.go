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
	"sync"
	"sync/atomic"
	"unsafe"
)

// Priority selects which of the mailbox's two lanes a parcel travels on.
// High-priority parcels are used internally for callback binds and
// lifecycle control; user Send traffic defaults to Normal.
type Priority int

const (
	Normal Priority = iota
	High
)

// Mailbox is the two-lane inbox an actor's dispatch loop drains. Producers
// enqueue concurrently from any goroutine; only the owning dispatch loop
// goroutine dequeues.
type Mailbox interface {
	Enqueue(pr Priority, p parcel)
	Dequeue(pr Priority) parcel
	Len(pr Priority) int64
	Empty(pr Priority) bool
	Pause()
	Resume()
	Paused() bool
	Dispose()
}

// MailboxFactory builds a fresh Mailbox for a newly spawned actor. Supplied
// via WithMailboxFactory; defaults to an unboundedMailbox.
type MailboxFactory func() Mailbox

func defaultMailboxFactory() Mailbox { return newUnboundedMailbox() }

type cacheLinePad [64]byte

// queueNode is one link of a lock-free MPSC list.
type queueNode struct {
	value parcel
	next  unsafe.Pointer // *queueNode
}

var queueNodePool = sync.Pool{New: func() any { return new(queueNode) }}

// queue is a lock-free multi-producer, single-consumer FIFO used for one
// mailbox lane. It is safe for many concurrent Enqueue callers and exactly
// one Dequeue caller. Adapted from the teacher's UnboundedMailbox, which
// carries *ReceiveContext instead of a boxed parcel interface.
//
// Reference: https://concurrencyfreaks.blogspot.com/2014/04/multi-producer-single-consumer-queue.html
type queue struct {
	head unsafe.Pointer // *queueNode
	_    cacheLinePad
	tail unsafe.Pointer // *queueNode
	_    cacheLinePad
}

func newQueue() *queue {
	n := new(queueNode)
	return &queue{head: unsafe.Pointer(n), tail: unsafe.Pointer(n)}
}

func (q *queue) enqueue(p parcel) {
	n := queueNodePool.Get().(*queueNode)
	n.value = p
	atomic.StorePointer(&n.next, nil)
	prev := (*queueNode)(atomic.SwapPointer(&q.tail, unsafe.Pointer(n)))
	atomic.StorePointer(&prev.next, unsafe.Pointer(n))
}

func (q *queue) dequeue() parcel {
	head := (*queueNode)(atomic.LoadPointer(&q.head))
	next := (*queueNode)(atomic.LoadPointer(&head.next))
	if next == nil {
		return nil
	}
	atomic.StorePointer(&q.head, unsafe.Pointer(next))
	value := next.value
	next.value = nil
	queueNodePool.Put(head)
	return value
}

func (q *queue) empty() bool {
	head := (*queueNode)(atomic.LoadPointer(&q.head))
	return atomic.LoadPointer(&head.next) == nil
}

func (q *queue) len() int64 {
	var n int64
	head := (*queueNode)(atomic.LoadPointer(&q.head))
	cur := (*queueNode)(atomic.LoadPointer(&head.next))
	for cur != nil {
		n++
		cur = (*queueNode)(atomic.LoadPointer(&cur.next))
	}
	return n
}

// unboundedMailbox is the default Mailbox: two independent lock-free queues,
// one per Priority, plus a paused flag consulted by the dispatch loop's
// backpressure handling (§4.4/§7 DispatchRetry protocol).
type unboundedMailbox struct {
	lanes  [2]*queue
	paused atomic.Bool
}

var _ Mailbox = (*unboundedMailbox)(nil)

func newUnboundedMailbox() *unboundedMailbox {
	return &unboundedMailbox{lanes: [2]*queue{newQueue(), newQueue()}}
}

func (m *unboundedMailbox) Enqueue(pr Priority, p parcel) {
	m.lanes[pr].enqueue(p)
	if pr == High {
		// A high-priority arrival (callback bind, stop request) always
		// clears backpressure so lifecycle/control traffic is never
		// starved by a paused Normal lane.
		m.paused.Store(false)
	}
}

func (m *unboundedMailbox) Dequeue(pr Priority) parcel { return m.lanes[pr].dequeue() }
func (m *unboundedMailbox) Len(pr Priority) int64      { return m.lanes[pr].len() }
func (m *unboundedMailbox) Empty(pr Priority) bool     { return m.lanes[pr].empty() }
func (m *unboundedMailbox) Pause()                     { m.paused.Store(true) }
func (m *unboundedMailbox) Resume()                    { m.paused.Store(false) }
func (m *unboundedMailbox) Paused() bool               { return m.paused.Load() }
func (m *unboundedMailbox) Dispose()                   {}
