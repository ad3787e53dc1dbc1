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

package schedule_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	activeobject "github.com/lightful/activeobject"
	"github.com/lightful/activeobject/log"
	"github.com/lightful/activeobject/schedule"
)

type tick struct{ n int }

type receiver struct {
	received chan tick
}

func (r *receiver) RegisterHandlers(h *activeobject.Handlers) {
	activeobject.On(h, (*receiver).onTick)
}

func (r *receiver) PreStart(*activeobject.Context) error { return nil }
func (r *receiver) PostStop(*activeobject.Context) error { return nil }

func (r *receiver) onTick(_ *activeobject.Context, msg tick) activeobject.Result {
	r.received <- msg
	return activeobject.Done
}

func TestSchedulerRejectsBeforeStart(t *testing.T) {
	s := schedule.New(log.DiscardLogger, time.Second)
	ref, err := activeobject.Create(func() *receiver { return &receiver{received: make(chan tick, 1)} })
	require.NoError(t, err)
	defer ref.Release()

	err = schedule.Once(s, ref, tick{n: 1}, time.Millisecond)
	assert.ErrorIs(t, err, schedule.ErrNotStarted)
}

func TestSchedulerOnceDeliversAfterInterval(t *testing.T) {
	r := &receiver{received: make(chan tick, 1)}
	ref, err := activeobject.Create(func() *receiver { return r }, activeobject.WithLogger(log.DiscardLogger))
	require.NoError(t, err)
	defer ref.Release()

	s := schedule.New(log.DiscardLogger, time.Second)
	s.Start(context.TODO())
	defer s.Stop(context.TODO())

	require.NoError(t, schedule.Once(s, ref, tick{n: 42}, 10*time.Millisecond))

	select {
	case got := <-r.received:
		assert.Equal(t, 42, got.n)
	case <-time.After(time.Second):
		t.Fatal("scheduled message was never delivered")
	}
}
