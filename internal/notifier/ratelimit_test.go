package notifier

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeClock drives a RateLimiter without sleeping.
type fakeClock struct {
	t time.Time
}

func (fc *fakeClock) Now() time.Time          { return fc.t }
func (fc *fakeClock) Advance(d time.Duration) { fc.t = fc.t.Add(d) }

func newTestLimiter() (*RateLimiter, *fakeClock) {
	fc := &fakeClock{t: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)}
	rl := NewRateLimiter()
	rl.now = fc.Now
	return rl, fc
}

func TestRateLimiterUnknownChannel(t *testing.T) {
	rl, _ := newTestLimiter()
	limited, secs := rl.IsLimited("#deployments")
	assert.False(t, limited)
	assert.Zero(t, secs)
}

func TestRateLimiterWindowLifecycle(t *testing.T) {
	rl, fc := newTestLimiter()
	rl.RecordLimited("#deployments", 30*time.Second)

	limited, secs := rl.IsLimited("#deployments")
	assert.True(t, limited)
	assert.Equal(t, 30, secs)

	// Other channels are unaffected.
	limited, _ = rl.IsLimited("#build")
	assert.False(t, limited)

	fc.Advance(10 * time.Second)
	limited, secs = rl.IsLimited("#deployments")
	assert.True(t, limited)
	assert.Equal(t, 20, secs)

	fc.Advance(21 * time.Second)
	limited, secs = rl.IsLimited("#deployments")
	assert.False(t, limited)
	assert.Zero(t, secs)
}

func TestRateLimiterRemainingRoundsUp(t *testing.T) {
	rl, fc := newTestLimiter()
	rl.RecordLimited("#x", 10*time.Second)
	fc.Advance(9500 * time.Millisecond)
	limited, secs := rl.IsLimited("#x")
	assert.True(t, limited)
	assert.Equal(t, 1, secs)
}

func TestRateLimiterIgnoresNonPositive(t *testing.T) {
	rl, _ := newTestLimiter()
	rl.RecordLimited("#x", 0)
	rl.RecordLimited("#x", -5*time.Second)
	limited, _ := rl.IsLimited("#x")
	assert.False(t, limited)
}

func TestRateLimiterDoesNotShrinkWindow(t *testing.T) {
	rl, _ := newTestLimiter()
	rl.RecordLimited("#x", 60*time.Second)
	rl.RecordLimited("#x", 5*time.Second)
	_, secs := rl.IsLimited("#x")
	assert.Equal(t, 60, secs)
}

func TestRateLimiterClearIdempotent(t *testing.T) {
	rl, _ := newTestLimiter()
	rl.RecordLimited("#x", time.Minute)
	rl.Clear("#x")
	limited, _ := rl.IsLimited("#x")
	assert.False(t, limited)

	// Clearing again, or clearing an unknown channel, is harmless.
	rl.Clear("#x")
	rl.Clear("#never-seen")
}

func TestRateLimiterEvict(t *testing.T) {
	rl, fc := newTestLimiter()
	rl.RecordLimited("#old", 10*time.Second)
	fc.Advance(2 * time.Hour)
	rl.RecordLimited("#fresh", 10*time.Second)

	rl.Evict(time.Hour)

	rl.mu.Lock()
	_, oldKept := rl.blockedUntil["#old"]
	_, freshKept := rl.blockedUntil["#fresh"]
	rl.mu.Unlock()
	assert.False(t, oldKept)
	assert.True(t, freshKept)
}

func TestChannelThrottleBurst(t *testing.T) {
	ct := newChannelThrottle(600)
	// 10% burst allows the first sends straight through.
	assert.Equal(t, time.Duration(0), ct.Reserve("#a"))
	// A different channel has its own bucket.
	assert.Equal(t, time.Duration(0), ct.Reserve("#b"))
}

func TestChannelThrottleDelaysAfterBurst(t *testing.T) {
	ct := newChannelThrottle(60)
	// Burst of 6; the seventh reservation must wait.
	for i := 0; i < 6; i++ {
		ct.Reserve("#a")
	}
	assert.Greater(t, ct.Reserve("#a"), time.Duration(0))
}

func TestChannelThrottleEvict(t *testing.T) {
	ct := newChannelThrottle(60)
	ct.Reserve("#a")
	ct.Evict(0)
	ct.mu.Lock()
	defer ct.mu.Unlock()
	assert.Empty(t, ct.limiters)
}
