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

// Create spawns an actor of type A on a dedicated goroutine (or, with
// WithExternalDispatcher, hands its pump to the actor's own
// AcquireDispatcher) and returns a strong Ref to it. If factory's actor
// implements HandlerRegistrar, RegisterHandlers is called once, before
// PreStart, to populate its typed message/timer handlers.
func Create[A Actor](factory func() A, opts ...Option) (*Ref, error) {
	eng, err := newEngine(factory, opts...)
	if err != nil {
		return nil, err
	}
	r := newRef(eng)
	eng.self = r.Weak()

	if eng.external {
		da, ok := eng.actor.(DispatcherAware)
		if !ok {
			return nil, NewProgrammingError(errNotDispatcherAware)
		}
		eng.start()
		da.AcquireDispatcher(eng.pump)
		return r, nil
	}

	go eng.run()
	return r, nil
}

// Run spawns an actor of type A on the calling goroutine and blocks until
// it stops, returning its exit code.
func Run[A Actor](factory func() A, opts ...Option) (int, error) {
	eng, err := newEngine(factory, opts...)
	if err != nil {
		return -1, err
	}
	r := newRef(eng)
	eng.self = r.Weak()
	eng.run()
	return int(eng.exitCode.Load()), nil
}

func newEngine[A Actor](factory func() A, opts ...Option) (*engine, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o.apply(cfg)
	}

	a := factory()
	handlers := NewHandlers()
	if hr, ok := any(a).(HandlerRegistrar); ok {
		hr.RegisterHandlers(handlers)
	}

	eng := &engine{
		actor:     a,
		handlers:  handlers,
		mailbox:   cfg.mailboxFactory(),
		timers:    newTimerSet(),
		callbacks: make(map[reflect.Type]func(any)),
		logger:    cfg.logger,
		wakeCh:    make(chan struct{}, 1),
		doneCh:    make(chan struct{}),
		external:  cfg.external,
		telemetry: cfg.telemetry,
		initRetry: cfg.initRetry,
	}
	eng.refcount.Store(0)
	return eng, nil
}
