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

import "reflect"

// Send delivers value to ref's Normal-priority lane. Returns ErrDead if
// the target has already stopped, or ErrMailboxFull if ref uses a
// BoundedMailbox at capacity. Never blocks the caller.
func Send[T any](ref *Ref, value T) error {
	return send[T](ref, Normal, value)
}

// SendHighPriority delivers value to ref's High-priority lane, ahead of
// any pending Normal-priority traffic. Used internally for lifecycle
// control and callback binds; available to callers that need to jump the
// queue for genuinely urgent messages.
func SendHighPriority[T any](ref *Ref, value T) error {
	return send[T](ref, High, value)
}

func send[T any](ref *Ref, pr Priority, value T) error {
	if ref == nil {
		return ErrDead
	}
	eng := ref.state.eng
	if eng.detached.Load() {
		return ErrDead
	}
	typ := reflect.TypeOf((*T)(nil)).Elem()
	p := messageParcel{typ: typ, value: value}
	var err error
	if tryQ, ok := eng.mailbox.(interface {
		TryEnqueue(Priority, parcel) error
	}); ok {
		err = tryQ.TryEnqueue(pr, p)
	} else {
		eng.mailbox.Enqueue(pr, p)
	}
	eng.wake()
	return err
}
