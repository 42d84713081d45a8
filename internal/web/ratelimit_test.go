// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package web

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIPLimiterPrunesIdleEntries(t *testing.T) {
	l := newIPLimiter(1, 2)
	for i := 0; i < 50; i++ {
		assert.True(t, l.allow(fmt.Sprintf("10.0.0.%d", i)))
	}
	assert.Equal(t, 50, l.size())

	l.prune(time.Now())
	assert.Equal(t, 50, l.size(), "recently seen clients are kept")

	l.prune(time.Now().Add(3 * time.Second))
	assert.Zero(t, l.size())
}

func TestIPLimiterPruneKeepsThrottledClient(t *testing.T) {
	l := newIPLimiter(0.001, 1)
	assert.True(t, l.allow("192.0.2.1"))
	assert.False(t, l.allow("192.0.2.1"))

	l.prune(time.Now().Add(time.Minute))
	assert.Equal(t, 1, l.size())
	assert.False(t, l.allow("192.0.2.1"), "pruning must not reset a throttled client")
}

func TestIPLimiterDisabled(t *testing.T) {
	l := newIPLimiter(0, 0)
	for i := 0; i < 10; i++ {
		assert.True(t, l.allow("192.0.2.1"))
	}
	assert.Zero(t, l.size())
	l.prune(time.Now())
}
