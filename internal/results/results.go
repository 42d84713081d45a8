// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package results holds the append-only list of company records produced by
// a search session.
package results

import (
	"sync"

	"github.com/pdiddy/internscout/pkg/types"
)

// View is the read-only side of a List handed to renderers.
type View interface {
	Len() int
	Snapshot() []types.CompanyResult
	Since(n int) []types.CompanyResult
	Changed() <-chan struct{}
}

// List is an ordered, append-only sequence of records. Only the search task
// that owns the list calls Append; any number of readers may use the View
// methods concurrently.
type List struct {
	mu      sync.RWMutex
	items   []types.CompanyResult
	changed chan struct{}
}

// New returns an empty List.
func New() *List {
	return &List{changed: make(chan struct{})}
}

// Append adds rec to the end of the list and wakes every Changed waiter.
func (l *List) Append(rec types.CompanyResult) {
	l.mu.Lock()
	l.items = append(l.items, rec)
	close(l.changed)
	l.changed = make(chan struct{})
	l.mu.Unlock()
}

// Len returns the number of records.
func (l *List) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}

// Snapshot returns a copy of all records.
func (l *List) Snapshot() []types.CompanyResult {
	return l.Since(0)
}

// Since returns a copy of the records after the first n.
func (l *List) Since(n int) []types.CompanyResult {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if n < 0 {
		n = 0
	}
	if n >= len(l.items) {
		return nil
	}
	out := make([]types.CompanyResult, len(l.items)-n)
	copy(out, l.items[n:])
	return out
}

// Changed returns a channel that is closed on the next Append. Callers must
// fetch a new channel after each wake-up.
func (l *List) Changed() <-chan struct{} {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.changed
}

// View returns the read-only side of l.
func (l *List) View() View { return l }
