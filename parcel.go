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

// parcel is the internal envelope type carried by the mailbox. Every
// producer-to-consumer transfer — a user Send, a callback bind, or a
// lifecycle stop request — travels as one of these three concrete kinds.
// Timers do not travel through the mailbox; the dispatch loop fires them
// directly.
type parcel interface {
	isParcel()
}

// messageParcel carries a user-sent value of type T, type-erased to any so
// the mailbox can hold a single homogeneous queue regardless of message
// type. The runtime recovers T via the reflect.Type-keyed handler registry.
type messageParcel struct {
	typ   reflect.Type
	value any
}

func (messageParcel) isParcel() {}

// bindParcel installs a callback for typ into the owning actor's pub/sub
// slot table. Always posted at High priority so a Connect issued before a
// Publish call lands in the slot table before that Publish executes.
type bindParcel struct {
	typ      reflect.Type
	callback func(any)
}

func (bindParcel) isParcel() {}

// controlParcel carries lifecycle control messages (foreign stop request)
// that must be observed by the dispatch loop itself rather than routed to
// a user handler.
type controlParcel struct {
	stop     bool
	exitCode int
}

func (controlParcel) isParcel() {}
