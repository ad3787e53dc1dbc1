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

package activeobject_test

import (
	"context"
	"testing"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	activeobject "github.com/lightful/activeobject"
	"github.com/lightful/activeobject/log"
)

// childDone is reported by a child task back to its parent once it has
// finished its (trivial, simulated) work, identified by the id the parent
// assigned it at spawn time — mirroring the original C++ breeding-tree
// example's completion callback into Application's pendingChilds set.
type childDone struct {
	id int
}

type childTask struct {
	id     int
	parent *activeobject.Ref
}

func (c *childTask) PreStart(ctx *activeobject.Context) error {
	_ = activeobject.Send(c.parent, childDone{id: c.id})
	ctx.Stop()
	return nil
}

func (c *childTask) PostStop(*activeobject.Context) error { return nil }

// application is grounded on the original's Application, which keeps a
// std::set<Task::ptr> of children still running and self-terminates once
// the set is empty. golang-set/v2 stands in for std::set here, keyed by
// the integer id assigned to each child since a *Ref reacquired via
// Context.Self() is a distinct pointer from the Ref the parent holds.
type application struct {
	children        map[int]*activeobject.Ref
	pendingChildren mapset.Set[int]
	allSpawned      chan struct{}
	allDone         chan struct{}
}

func newApplication() *application {
	return &application{
		children:        make(map[int]*activeobject.Ref),
		pendingChildren: mapset.NewSet[int](),
		allSpawned:      make(chan struct{}),
		allDone:         make(chan struct{}),
	}
}

func (a *application) RegisterHandlers(h *activeobject.Handlers) {
	activeobject.On(h, (*application).onChildDone)
}

func (a *application) PreStart(ctx *activeobject.Context) error {
	const breed = 8
	for i := 0; i < breed; i++ {
		id := i
		ref, err := activeobject.Create(func() *childTask {
			return &childTask{id: id, parent: ctx.Self()}
		}, activeobject.WithLogger(log.DiscardLogger))
		if err != nil {
			return err
		}
		a.children[id] = ref
		a.pendingChildren.Add(id)
	}
	close(a.allSpawned)
	return nil
}

func (a *application) PostStop(*activeobject.Context) error {
	close(a.allDone)
	return nil
}

func (a *application) onChildDone(ctx *activeobject.Context, msg childDone) activeobject.Result {
	a.pendingChildren.Remove(msg.id)
	if ref, ok := a.children[msg.id]; ok {
		delete(a.children, msg.id)
		ref.Release()
	}
	if a.pendingChildren.Cardinality() == 0 {
		ctx.Stop()
	}
	return activeobject.Done
}

// TestBreedingTreeConvergesToEmpty spawns a batch of short-lived child
// actors from within PreStart and verifies the parent tracks every one to
// completion before self-stopping, mirroring the original breeding-tree
// example's termination condition.
func TestBreedingTreeConvergesToEmpty(t *testing.T) {
	app := newApplication()
	ref, err := activeobject.Create(func() *application { return app }, activeobject.WithLogger(log.DiscardLogger))
	require.NoError(t, err)
	defer ref.Release()

	select {
	case <-app.allSpawned:
	case <-time.After(time.Second):
		t.Fatal("application never finished spawning children")
	}

	select {
	case <-app.allDone:
	case <-time.After(2 * time.Second):
		t.Fatal("application never converged to zero pending children")
	}

	assert.Equal(t, 0, app.pendingChildren.Cardinality())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, ref.Stop(ctx))
}
