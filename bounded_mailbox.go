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
	"sync/atomic"

	gods "github.com/Workiva/go-datastructures/queue"
)

// BoundedMailbox is an admission-controlled Mailbox variant backed by a
// fixed-capacity ring buffer per lane, grounded on the teacher's
// BoundedMailbox. Unlike the teacher's blocking Put, Enqueue and TryEnqueue
// here use the ring buffer's non-blocking Offer so producers never block on
// a full mailbox, preserving the runtime's "producers never block"
// concurrency invariant: TryEnqueue (used by Send) returns ErrMailboxFull,
// while Enqueue drops the parcel without reporting it. Not the default; opt in
// with WithMailboxFactory(NewBoundedMailboxFactory(capacity)).
type BoundedMailbox struct {
	lanes  [2]*gods.RingBuffer
	paused atomic.Bool
}

var _ Mailbox = (*BoundedMailbox)(nil)

// NewBoundedMailbox creates a BoundedMailbox with the given per-lane
// capacity. Capacity must be positive.
func NewBoundedMailbox(capacity int) *BoundedMailbox {
	return &BoundedMailbox{
		lanes: [2]*gods.RingBuffer{
			gods.NewRingBuffer(uint64(capacity)),
			gods.NewRingBuffer(uint64(capacity)),
		},
	}
}

// NewBoundedMailboxFactory returns a MailboxFactory suitable for
// WithMailboxFactory, producing a fresh BoundedMailbox of the given
// capacity for every spawned actor.
func NewBoundedMailboxFactory(capacity int) MailboxFactory {
	return func() Mailbox { return NewBoundedMailbox(capacity) }
}

func (m *BoundedMailbox) Enqueue(pr Priority, p parcel) {
	ok, _ := m.lanes[pr].Offer(p)
	if !ok {
		// The ring buffer is full: the parcel is dropped rather than
		// blocking the producer goroutine, and the caller is not told.
		return
	}
	if pr == High {
		m.paused.Store(false)
	}
}

// TryEnqueue is the explicit, error-returning counterpart of Enqueue used
// by Send/SendHighPriority when the caller wants ErrMailboxFull surfaced
// rather than silently dropped.
func (m *BoundedMailbox) TryEnqueue(pr Priority, p parcel) error {
	ok, err := m.lanes[pr].Offer(p)
	if err != nil {
		return err
	}
	if !ok {
		return ErrMailboxFull
	}
	if pr == High {
		m.paused.Store(false)
	}
	return nil
}

func (m *BoundedMailbox) Dequeue(pr Priority) parcel {
	if m.lanes[pr].Len() == 0 {
		return nil
	}
	item, err := m.lanes[pr].Get()
	if err != nil || item == nil {
		return nil
	}
	p, _ := item.(parcel)
	return p
}

func (m *BoundedMailbox) Len(pr Priority) int64  { return int64(m.lanes[pr].Len()) }
func (m *BoundedMailbox) Empty(pr Priority) bool { return m.lanes[pr].Len() == 0 }
func (m *BoundedMailbox) Pause()                 { m.paused.Store(true) }
func (m *BoundedMailbox) Resume()                { m.paused.Store(false) }
func (m *BoundedMailbox) Paused() bool           { return m.paused.Load() }

func (m *BoundedMailbox) Dispose() {
	m.lanes[Normal].Dispose()
	m.lanes[High].Dispose()
}
