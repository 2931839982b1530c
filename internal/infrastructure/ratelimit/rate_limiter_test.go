package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTokenBucketDrainsAndReportsWait(t *testing.T) {
	bucket := NewTokenBucket(2, 1, time.Minute)

	allowed, _ := bucket.Allow()
	assert.True(t, allowed)
	allowed, _ = bucket.Allow()
	assert.True(t, allowed)

	allowed, wait := bucket.Allow()
	assert.False(t, allowed)
	assert.Greater(t, wait, time.Duration(0))
}

func TestRateLimiterIsolatesUsersAndActions(t *testing.T) {
	rl := NewRateLimiter()

	for i := 0; i < 5; i++ {
		allowed, _ := rl.Allow("user-1", "create_room")
		assert.True(t, allowed)
	}
	allowed, _ := rl.Allow("user-1", "create_room")
	assert.False(t, allowed)

	// Another user and another action still have their own buckets.
	allowed, _ = rl.Allow("user-2", "create_room")
	assert.True(t, allowed)
	allowed, _ = rl.Allow("user-1", "send_message")
	assert.True(t, allowed)
}

func TestTypingBucketAllowsBursts(t *testing.T) {
	rl := NewRateLimiter()

	for i := 0; i < 30; i++ {
		allowed, _ := rl.Allow("user-1", "typing")
		assert.True(t, allowed)
	}
	allowed, _ := rl.Allow("user-1", "typing")
	assert.False(t, allowed)
}

func TestCleanupDropsIdleBuckets(t *testing.T) {
	rl := NewRateLimiter()
	rl.Allow("user-1", "send_message")

	rl.mutex.Lock()
	for _, bucket := range rl.buckets {
		bucket.lastRefill = time.Now().Add(-2 * time.Hour)
	}
	rl.mutex.Unlock()

	rl.Cleanup()

	rl.mutex.RLock()
	defer rl.mutex.RUnlock()
	assert.Empty(t, rl.buckets)
}
