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
	"errors"
	"fmt"
)

var (
	// ErrDead is returned when an operation targets an actor that has
	// already stopped.
	ErrDead = errors.New("actor is not alive")

	// ErrMailboxFull is returned by BoundedMailbox when its ring buffer
	// has reached capacity.
	ErrMailboxFull = errors.New("mailbox is full")

	// ErrOffOwningThread is the hard fault raised when a timer or
	// pub/sub operation is attempted through a Context that is no
	// longer valid because the handler that received it has already
	// returned, whether the call comes from the same goroutine or from
	// another one the Context was passed to.
	ErrOffOwningThread = errors.New("operation attempted off the actor's owning goroutine")

	// ErrInvalidTimerLapse is returned when a timer is started with a
	// non-positive lapse.
	ErrInvalidTimerLapse = errors.New("timer lapse must be positive")
)

// ProgrammingError marks a hard fault raised by misuse of the API from
// inside a handler (as opposed to a transient backpressure signal or a
// shutdown race, both of which are ordinary control flow). When one
// escapes a handler, the dispatch loop re-raises it instead of recovering
// it, so it is never silently swallowed.
type ProgrammingError struct {
	err error
}

// NewProgrammingError wraps err as a ProgrammingError.
func NewProgrammingError(err error) *ProgrammingError {
	return &ProgrammingError{err: err}
}

func (e *ProgrammingError) Error() string {
	return fmt.Sprintf("programming error: %v", e.err)
}

func (e *ProgrammingError) Unwrap() error {
	return e.err
}

// InitError wraps a failure returned from an actor's PreStart hook or
// factory, mirroring the teacher's ErrInitFailure wrapping idiom.
type InitError struct {
	err error
}

// NewInitError wraps err as an InitError.
func NewInitError(err error) *InitError {
	return &InitError{err: err}
}

func (e *InitError) Error() string { return fmt.Sprintf("preStart failed: %v", e.err) }
func (e *InitError) Unwrap() error { return e.err }
