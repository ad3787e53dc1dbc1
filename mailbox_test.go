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
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testParcel struct{ n int }

func (testParcel) isParcel() {}

func TestQueueFIFOSingleProducer(t *testing.T) {
	q := newQueue()
	assert.True(t, q.empty())

	for i := 0; i < 5; i++ {
		q.enqueue(testParcel{n: i})
	}
	assert.Equal(t, int64(5), q.len())

	for i := 0; i < 5; i++ {
		p := q.dequeue()
		require.NotNil(t, p)
		assert.Equal(t, testParcel{n: i}, p)
	}
	assert.True(t, q.empty())
	assert.Nil(t, q.dequeue())
}

func TestQueueManyProducersNoLoss(t *testing.T) {
	q := newQueue()
	const producers, perProducer = 16, 500

	var wg sync.WaitGroup
	wg.Add(producers)
	for p := 0; p < producers; p++ {
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.enqueue(testParcel{n: p*perProducer + i})
			}
		}(p)
	}
	wg.Wait()

	seen := make(map[int]bool)
	for {
		p := q.dequeue()
		if p == nil {
			break
		}
		seen[p.(testParcel).n] = true
	}
	assert.Len(t, seen, producers*perProducer)
}

func TestUnboundedMailboxHighPriorityClearsPause(t *testing.T) {
	m := newUnboundedMailbox()
	m.Pause()
	assert.True(t, m.Paused())

	m.Enqueue(Normal, testParcel{n: 1})
	assert.True(t, m.Paused(), "Normal-priority arrival must not clear pause")

	m.Enqueue(High, testParcel{n: 2})
	assert.False(t, m.Paused(), "High-priority arrival must clear pause")
}

func TestBoundedMailboxRejectsWhenFull(t *testing.T) {
	m := NewBoundedMailbox(2)
	require.NoError(t, m.TryEnqueue(Normal, testParcel{n: 1}))
	require.NoError(t, m.TryEnqueue(Normal, testParcel{n: 2}))
	err := m.TryEnqueue(Normal, testParcel{n: 3})
	assert.ErrorIs(t, err, ErrMailboxFull)

	p := m.Dequeue(Normal)
	require.NotNil(t, p)
	assert.Equal(t, testParcel{n: 1}, p)
	require.NoError(t, m.TryEnqueue(Normal, testParcel{n: 3}))
}
