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
	"time"

	"github.com/lightful/activeobject/internal/telemetry"
	"github.com/lightful/activeobject/log"
)

// config accumulates the functional options applied to Create/Run,
// grounded on the teacher's Option/Apply functional-options idiom
// (actor/option.go).
type config struct {
	logger         log.Logger
	mailboxFactory MailboxFactory
	external       bool
	telemetry      *telemetry.Telemetry
	initRetry      *initRetryConfig
}

func defaultConfig() *config {
	return &config{
		logger:         log.DefaultLogger,
		mailboxFactory: defaultMailboxFactory,
	}
}

// Option configures a Create or Run call.
type Option interface {
	apply(*config)
}

type optionFunc func(*config)

func (f optionFunc) apply(c *config) { f(c) }

// WithLogger overrides the default logger for the spawned actor.
func WithLogger(l log.Logger) Option {
	return optionFunc(func(c *config) { c.logger = l })
}

// WithMailboxFactory overrides the default unbounded mailbox, e.g. with
// NewBoundedMailboxFactory for admission-controlled deployments.
func WithMailboxFactory(f MailboxFactory) Option {
	return optionFunc(func(c *config) { c.mailboxFactory = f })
}

// WithExternalDispatcher spawns the actor in external-dispatcher mode
// (§4.5): instead of a dedicated goroutine, Create calls the actor's
// AcquireDispatcher with a pump function the host event loop is
// responsible for invoking. The actor must implement DispatcherAware.
func WithExternalDispatcher() Option {
	return optionFunc(func(c *config) { c.external = true })
}

// WithTelemetry instruments the spawned actor's dispatch loop with the
// given Telemetry: mailbox depth, dispatch counts, timer fires, and
// DispatchRetry backpressure events. Not excluded by any Non-goal — only
// fair-scheduling and strict starvation guarantees are out of scope, not
// observability.
func WithTelemetry(t *telemetry.Telemetry) Option {
	return optionFunc(func(c *config) { c.telemetry = t })
}

// WithInitRetry retries a failing PreStart up to maxRetries times, with
// backoff bounded between minBackoff and maxBackoff. A PreStart that still
// fails stops the actor as described on Actor.PreStart; the error is not
// returned from Create or Run. Grounded on the teacher's use of
// flowchartsman/retry around PreStart (actor/pid.go's init method).
func WithInitRetry(maxRetries int, minBackoff, maxBackoff time.Duration) Option {
	return optionFunc(func(c *config) {
		c.initRetry = &initRetryConfig{maxRetries: maxRetries, minBackoff: minBackoff, maxBackoff: maxBackoff}
	})
}
