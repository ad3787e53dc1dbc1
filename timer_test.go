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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tickPayload struct{ id int }

func TestTimerSetOrdersByDeadlineThenSeq(t *testing.T) {
	ts := newTimerSet()
	now := time.Now()

	require.NoError(t, ts.start(tickPayload{id: 1}, 10*time.Millisecond, TimerOnce, now, nil))
	require.NoError(t, ts.start(tickPayload{id: 2}, 5*time.Millisecond, TimerOnce, now, nil))
	require.NoError(t, ts.start(tickPayload{id: 3}, 5*time.Millisecond, TimerOnce, now, nil))

	due := ts.popDue(now.Add(20 * time.Millisecond))
	require.Len(t, due, 3)
	// id 2 and 3 share a deadline; seq (insertion order) breaks the tie.
	assert.Equal(t, tickPayload{id: 2}, due[0].payload)
	assert.Equal(t, tickPayload{id: 3}, due[1].payload)
	assert.Equal(t, tickPayload{id: 1}, due[2].payload)
	assert.True(t, ts.empty())
}

func TestTimerSetStartReplacesByIdentity(t *testing.T) {
	ts := newTimerSet()
	now := time.Now()

	require.NoError(t, ts.start(tickPayload{id: 1}, time.Second, TimerOnce, now, nil))
	require.NoError(t, ts.start(tickPayload{id: 1}, 5*time.Millisecond, TimerOnce, now, nil))

	deadline, ok := ts.nextDeadline()
	require.True(t, ok)
	assert.WithinDuration(t, now.Add(5*time.Millisecond), deadline, time.Millisecond)

	due := ts.popDue(now.Add(10 * time.Millisecond))
	require.Len(t, due, 1)
	assert.True(t, ts.empty())
}

func TestTimerSetResetAndStop(t *testing.T) {
	ts := newTimerSet()
	now := time.Now()

	require.NoError(t, ts.start(tickPayload{id: 7}, 5*time.Millisecond, TimerOnce, now, nil))
	assert.True(t, ts.reset(tickPayload{id: 7}, now.Add(2*time.Millisecond)))
	assert.False(t, ts.reset(tickPayload{id: 99}, now))

	deadline, ok := ts.nextDeadline()
	require.True(t, ok)
	assert.WithinDuration(t, now.Add(2*time.Millisecond).Add(5*time.Millisecond), deadline, time.Millisecond)

	assert.True(t, ts.stop(tickPayload{id: 7}))
	assert.False(t, ts.stop(tickPayload{id: 7}))
	assert.True(t, ts.empty())
}

func TestTimerSetPeriodicCatchUpPrevention(t *testing.T) {
	ts := newTimerSet()
	now := time.Now()

	require.NoError(t, ts.start(tickPayload{id: 1}, 10*time.Millisecond, TimerPeriodic, now, nil))

	// Simulate a dispatcher that oversleeps by several lapses: popDue is
	// called far past several would-be firings. Only one due entry should
	// come back, re-armed relative to "now" rather than bursting through
	// every missed interval.
	farFuture := now.Add(1 * time.Second)
	due := ts.popDue(farFuture)
	require.Len(t, due, 1)

	deadline, ok := ts.nextDeadline()
	require.True(t, ok)
	assert.WithinDuration(t, farFuture.Add(10*time.Millisecond), deadline, time.Millisecond)
}

func TestInvalidTimerLapseRejected(t *testing.T) {
	ts := newTimerSet()
	err := ts.start(tickPayload{id: 1}, 0, TimerOnce, time.Now(), nil)
	assert.ErrorIs(t, err, ErrInvalidTimerLapse)
}

func TestTimerSetEventFiresDirectlyWithoutHandlerRegistry(t *testing.T) {
	ts := newTimerSet()
	now := time.Now()

	var got tickPayload
	require.NoError(t, ts.start(tickPayload{id: 5}, 5*time.Millisecond, TimerOnce, now, func(p any) {
		got = p.(tickPayload)
	}))

	due := ts.popDue(now.Add(10 * time.Millisecond))
	require.Len(t, due, 1)
	require.NotNil(t, due[0].event)
	due[0].event(due[0].payload)
	assert.Equal(t, tickPayload{id: 5}, got)
}
