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

// Channel is a weakly-bound invocable pointing at one subscriber actor,
// the Go realization of getChannel<T>() from the original C++ API
// (grounded on _examples/original_source/examples/ActorThread/MyLibClient).
// Sending through a Channel whose target has already stopped is a no-op,
// matching Gateway's dead-target semantics.
type Channel[T any] struct {
	target *WeakRef
}

// GetChannel returns a Channel bound weakly to ref, suitable for handing
// to Connect from another actor without granting it a strong Ref.
func GetChannel[T any](ref *Ref) Channel[T] {
	if ref == nil {
		return Channel[T]{}
	}
	return Channel[T]{target: ref.Weak()}
}

// Send delivers value to the channel's target, or does nothing if the
// target has already stopped.
func (c Channel[T]) Send(value T) {
	if c.target == nil {
		return
	}
	r := c.target.Strong()
	if r == nil {
		return
	}
	defer r.Release()
	_ = Send(r, value)
}

// Gateway is a weak handle plus a no-op-after-death Send, used when
// external, non-actor code wants to talk to an actor without keeping it
// alive by holding a strong Ref.
type Gateway[T any] struct {
	weak *WeakRef
}

// NewGateway returns a Gateway bound weakly to ref.
func NewGateway[T any](ref *Ref) Gateway[T] {
	if ref == nil {
		return Gateway[T]{}
	}
	return Gateway[T]{weak: ref.Weak()}
}

// Send delivers value to the gateway's target. Returns ErrDead if the
// target has already stopped.
func (g Gateway[T]) Send(value T) error {
	if g.weak == nil {
		return ErrDead
	}
	r := g.weak.Strong()
	if r == nil {
		return ErrDead
	}
	defer r.Release()
	return Send(r, value)
}

// Connect binds ch as target's callback for messages of type T published
// via Publish[T] on target. The bind is delivered as a high-priority
// parcel so it lands, relative to target's own subsequent Publish calls,
// in the order Connect was called — the ordering guarantee of §4.3.
func Connect[T any](target *Ref, ch Channel[T]) error {
	if target == nil {
		return ErrDead
	}
	typ := reflect.TypeOf((*T)(nil)).Elem()
	cb := func(v any) { ch.Send(v.(T)) }
	return target.postBind(typ, cb)
}

// Connect2 is sugar for Connect(target, GetChannel[T](source)): source
// starts receiving target's Publish[T] traffic.
func Connect2[T any](target, source *Ref) error {
	return Connect[T](target, GetChannel[T](source))
}
