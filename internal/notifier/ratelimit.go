package notifier

import (
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter tracks remote retry-after windows per channel. A channel
// enters the limited state when the remote API rejects a send with 429 and
// leaves it when the window expires or the next send succeeds.
type RateLimiter struct {
	mu           sync.Mutex
	blockedUntil map[string]time.Time
	now          func() time.Time
}

// NewRateLimiter creates an empty RateLimiter.
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		blockedUntil: make(map[string]time.Time),
		now:          time.Now,
	}
}

// IsLimited reports whether the channel is inside a retry-after window and,
// if so, the whole seconds remaining (at least 1). Expired windows are
// removed on the way out, so the map only holds channels that are actually
// blocked.
func (rl *RateLimiter) IsLimited(channel string) (bool, int) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	until, ok := rl.blockedUntil[channel]
	if !ok {
		return false, 0
	}
	remaining := until.Sub(rl.now())
	if remaining <= 0 {
		delete(rl.blockedUntil, channel)
		return false, 0
	}
	return true, int(math.Ceil(remaining.Seconds()))
}

// RecordLimited starts (or extends) a channel's retry-after window.
// Non-positive durations are ignored.
func (rl *RateLimiter) RecordLimited(channel string, retryAfter time.Duration) {
	if retryAfter <= 0 {
		return
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()
	until := rl.now().Add(retryAfter)
	if existing, ok := rl.blockedUntil[channel]; ok && existing.After(until) {
		return
	}
	rl.blockedUntil[channel] = until
}

// Clear removes the channel's window. Idempotent; clearing an unknown
// channel is a no-op.
func (rl *RateLimiter) Clear(channel string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.blockedUntil, channel)
}

// Evict removes windows that expired more than maxAge ago. IsLimited already
// prunes on read; Evict bounds the map for channels never asked about again.
func (rl *RateLimiter) Evict(maxAge time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	cutoff := rl.now().Add(-maxAge)
	for ch, until := range rl.blockedUntil {
		if until.Before(cutoff) {
			delete(rl.blockedUntil, ch)
		}
	}
}

// channelThrottle spreads outbound sends per channel with a local token
// bucket, so the remote per-channel limit is rarely hit in the first place.
type channelThrottle struct {
	mu         sync.Mutex
	limiters   map[string]*rate.Limiter
	lastAccess map[string]time.Time
	rate       rate.Limit
	burst      int
}

func newChannelThrottle(perMinute int) *channelThrottle {
	return &channelThrottle{
		limiters:   make(map[string]*rate.Limiter),
		lastAccess: make(map[string]time.Time),
		rate:       rate.Limit(float64(perMinute) / 60.0),
		burst:      max(1, perMinute/10), // 10% burst, minimum 1
	}
}

// Reserve returns how long the caller should wait before sending to the
// channel. Zero means send now.
func (ct *channelThrottle) Reserve(channel string) time.Duration {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	limiter, exists := ct.limiters[channel]
	if !exists {
		limiter = rate.NewLimiter(ct.rate, ct.burst)
		ct.limiters[channel] = limiter
	}
	ct.lastAccess[channel] = time.Now()
	return limiter.Reserve().Delay()
}

// Evict removes channel limiters that haven't been accessed within maxAge.
func (ct *channelThrottle) Evict(maxAge time.Duration) {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	cutoff := time.Now().Add(-maxAge)
	for ch, last := range ct.lastAccess {
		if last.Before(cutoff) {
			delete(ct.limiters, ch)
			delete(ct.lastAccess, ch)
		}
	}
}
