package signal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterWindow(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, time.Second)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("a"))
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"))

	now = now.Add(1100 * time.Millisecond)
	assert.True(t, rl.Allow("a"))
}

func TestRateLimiterForget(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))

	rl.Forget("a")
	assert.Zero(t, rl.Len())
	assert.True(t, rl.Allow("a"))
}

func TestRateLimiterDisabled(t *testing.T) {
	rl := NewRateLimiter(0, time.Second)
	for i := 0; i < 100; i++ {
		assert.True(t, rl.Allow("a"))
	}
	assert.Zero(t, rl.Len())
}
