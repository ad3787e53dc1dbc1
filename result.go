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

import "time"

// DefaultRetryInterval is the wait duration used for a Retry result that
// does not specify RetryAfter, matching the original's
// DispatchRetry(waitToRetry = std::chrono::seconds(1)) default.
const DefaultRetryInterval = time.Second

// Result is returned by a message handler wired through On when the
// handler wants to signal something to the dispatch loop beyond "done".
// The zero value means "handled, continue normally".
//
// DispatchRetry is the in-band realization of the original's
// DispatchRetry backpressure signal (§7): a handler that cannot make
// progress right now (e.g. a downstream Channel's target is saturated)
// returns Result{Retry: true} instead of the C++ original's thrown
// exception, since exceptions are not this codebase's default control-flow
// tool (Design Notes, spec.md §9). The dispatch loop itself arms the timer
// that clears the pause, carrying RetryAfter as the wait (§4.4) — the
// handler is not responsible for calling Context.Resume itself.
type Result struct {
	Retry bool

	// RetryAfter is how long the dispatch loop waits before automatically
	// resuming the Normal lane. Ignored unless Retry is true; zero means
	// DefaultRetryInterval.
	RetryAfter time.Duration
}

// Retry is a convenience Result value for handlers requesting redelivery
// after DefaultRetryInterval.
var Retry = Result{Retry: true, RetryAfter: DefaultRetryInterval}

// Done is the zero Result, returned by handlers with nothing further to
// signal.
var Done = Result{}
