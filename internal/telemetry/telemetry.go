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

// Package telemetry wires the runtime's dispatch loop to OpenTelemetry
// metrics: mailbox depth, dispatch counts, and retry/backpressure events.
// Grounded on the teacher's telemetry/telemetry.go MeterProvider/Meter
// wiring, generalized from actor-system-wide counters to per-actor
// instruments recorded from the dispatch loop.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/lightful/activeobject"

// Telemetry holds the meter and the instruments the dispatch loop
// records against.
type Telemetry struct {
	Meter metric.Meter

	Dispatched metric.Int64Counter
	Retries    metric.Int64Counter
	TimersFired metric.Int64Counter
	MailboxDepth metric.Int64Histogram
}

// New builds a Telemetry using the given MeterProvider, or the global
// provider (otel.GetMeterProvider) if none is given via options.
func New(options ...Option) (*Telemetry, error) {
	t := &Telemetry{}
	cfg := &config{provider: otel.GetMeterProvider()}
	for _, opt := range options {
		opt.apply(cfg)
	}
	t.Meter = cfg.provider.Meter(instrumentationName)

	var err error
	if t.Dispatched, err = t.Meter.Int64Counter(
		"activeobject.dispatched",
		metric.WithDescription("messages delivered to actor handlers"),
	); err != nil {
		return nil, err
	}
	if t.Retries, err = t.Meter.Int64Counter(
		"activeobject.retries",
		metric.WithDescription("DispatchRetry backpressure signals returned by handlers"),
	); err != nil {
		return nil, err
	}
	if t.TimersFired, err = t.Meter.Int64Counter(
		"activeobject.timers_fired",
		metric.WithDescription("armed timers that reached their deadline"),
	); err != nil {
		return nil, err
	}
	if t.MailboxDepth, err = t.Meter.Int64Histogram(
		"activeobject.mailbox_depth",
		metric.WithDescription("mailbox depth observed at delivery time"),
	); err != nil {
		return nil, err
	}
	return t, nil
}

// RecordDispatch is a convenience no-alloc-on-nil helper: a nil *Telemetry
// (the default, when WithTelemetry is not used) makes every call here a
// no-op instead of requiring nil checks at every call site.
func (t *Telemetry) RecordDispatch(ctx context.Context) {
	if t == nil {
		return
	}
	t.Dispatched.Add(ctx, 1)
}

func (t *Telemetry) RecordRetry(ctx context.Context) {
	if t == nil {
		return
	}
	t.Retries.Add(ctx, 1)
}

func (t *Telemetry) RecordTimerFired(ctx context.Context) {
	if t == nil {
		return
	}
	t.TimersFired.Add(ctx, 1)
}

func (t *Telemetry) RecordMailboxDepth(ctx context.Context, depth int64) {
	if t == nil {
		return
	}
	t.MailboxDepth.Record(ctx, depth)
}

type config struct {
	provider metric.MeterProvider
}

// Option configures New.
type Option interface{ apply(*config) }

type optionFunc func(*config)

func (f optionFunc) apply(c *config) { f(c) }

// WithMeterProvider overrides the global OTel MeterProvider.
func WithMeterProvider(p metric.MeterProvider) Option {
	return optionFunc(func(c *config) { c.provider = p })
}
