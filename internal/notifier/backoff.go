package notifier

import (
	"math/rand"
	"time"

	"github.com/K-Le-PaaS/backend-hybrid-sub002/internal/types"
)

// Backoff returns how long to wait before retry number attempt (0-based).
// With exponential backoff enabled the delay doubles per attempt, clamped
// to MaxDelay; otherwise it stays at BaseDelay. Jitter adds up to 25% so
// concurrent retries do not align.
func Backoff(attempt int, rl types.RateLimitTuning, rt types.RetryTuning) time.Duration {
	delay := rl.BaseDelay
	if rt.ExponentialBackoff {
		for i := 0; i < attempt; i++ {
			delay *= 2
			if delay >= rl.MaxDelay {
				delay = rl.MaxDelay
				break
			}
		}
	}
	if delay > rl.MaxDelay {
		delay = rl.MaxDelay
	}
	if rt.Jitter && delay > 0 {
		delay += time.Duration(rand.Int63n(int64(delay) / 4))
	}
	return delay
}
