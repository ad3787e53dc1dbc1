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

// Handlers is a reflect.Type-keyed registry mapping a message or timer
// payload type to the function that handles it for one actor type — the
// Go realization of Design Notes option (b): rather than one template
// instantiation per message type, a single map indexed by reflect.Type.
type Handlers struct {
	messages map[reflect.Type]func(a Actor, ctx *Context, msg any) Result
	timers   map[reflect.Type]func(a Actor, ctx *Context, payload any)
}

// NewHandlers returns an empty registry. An actor implementing
// HandlerRegistrar populates one via On/OnTimer from its RegisterHandlers
// method.
func NewHandlers() *Handlers {
	return &Handlers{
		messages: make(map[reflect.Type]func(a Actor, ctx *Context, msg any) Result),
		timers:   make(map[reflect.Type]func(a Actor, ctx *Context, payload any)),
	}
}

// HandlerRegistrar is implemented by actors that want typed message and
// timer dispatch. RegisterHandlers is called exactly once, before
// PreStart.
type HandlerRegistrar interface {
	RegisterHandlers(h *Handlers)
}

// On registers fn as the handler for messages of type T sent to actors of
// type A. fn's Result lets it signal DispatchRetry-style backpressure
// (§7) back to the dispatch loop.
func On[A Actor, T any](h *Handlers, fn func(a A, ctx *Context, msg T) Result) {
	typ := reflect.TypeOf((*T)(nil)).Elem()
	h.messages[typ] = func(a Actor, ctx *Context, msg any) Result {
		return fn(a.(A), ctx, msg.(T))
	}
}

// OnTimer registers fn as the handler invoked when a timer armed with a
// payload of type T fires.
func OnTimer[A Actor, T any](h *Handlers, fn func(a A, ctx *Context, payload T)) {
	typ := reflect.TypeOf((*T)(nil)).Elem()
	h.timers[typ] = func(a Actor, ctx *Context, payload any) {
		fn(a.(A), ctx, payload.(T))
	}
}
