package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiter_BurstThenRefill(t *testing.T) {
	now := time.Unix(1000, 0)
	l := New(2, 1)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("pairs"))
	assert.True(t, l.Allow("pairs"))
	assert.False(t, l.Allow("pairs"))

	now = now.Add(500 * time.Millisecond)
	assert.False(t, l.Allow("pairs"))

	now = now.Add(500 * time.Millisecond)
	assert.True(t, l.Allow("pairs"))
}

func TestLimiter_KeysAreIndependent(t *testing.T) {
	l := New(1, 0)
	assert.True(t, l.Allow("tokens"))
	assert.False(t, l.Allow("tokens"))
	assert.True(t, l.Allow("pairs"))
}

func TestLimiter_CapacityFloor(t *testing.T) {
	l := New(0, 0)
	assert.True(t, l.Allow("k"))
	assert.False(t, l.Allow("k"))
}
