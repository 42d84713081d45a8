// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package results

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/internscout/pkg/types"
)

func rec(name string) types.CompanyResult { return types.CompanyResult{Name: name} }

func TestListAppendOrder(t *testing.T) {
	l := New()
	for _, n := range []string{"A", "B", "C"} {
		l.Append(rec(n))
	}
	require.Equal(t, 3, l.Len())

	snap := l.Snapshot()
	assert.Equal(t, "A", snap[0].Name)
	assert.Equal(t, "C", snap[2].Name)

	since := l.Since(1)
	require.Len(t, since, 2)
	assert.Equal(t, "B", since[0].Name)
	assert.Nil(t, l.Since(3))
	assert.Nil(t, l.Since(10))
	assert.Len(t, l.Since(-1), 3)
}

func TestListSnapshotIsACopy(t *testing.T) {
	l := New()
	l.Append(rec("A"))
	snap := l.Snapshot()
	snap[0].Name = "mutated"
	assert.Equal(t, "A", l.Snapshot()[0].Name)
}

func TestListChangedWakesWaiters(t *testing.T) {
	l := New()
	ch := l.Changed()

	select {
	case <-ch:
		t.Fatal("changed before append")
	default:
	}

	l.Append(rec("A"))
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("waiter not woken")
	}

	// A fresh channel waits for the next append.
	select {
	case <-l.Changed():
		t.Fatal("new channel already closed")
	default:
	}
}

func TestListConcurrentReaders(t *testing.T) {
	l := New()
	var view View = l.View()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seen := 0
			for seen < 100 {
				ch := view.Changed()
				seen += len(view.Since(seen))
				if seen < 100 {
					<-ch
				}
			}
		}()
	}

	for i := 0; i < 100; i++ {
		l.Append(rec(fmt.Sprintf("c%d", i)))
	}
	wg.Wait()
	assert.Equal(t, 100, view.Len())
}
