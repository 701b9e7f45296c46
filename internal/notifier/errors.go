package notifier

import (
	"errors"
	"fmt"
)

// ErrNoTransport means neither a webhook URL nor a bot token is configured.
var ErrNoTransport = errors.New("no transport configured: set a webhook URL or a bot token")

// defaultRetryAfterSeconds applies when the remote API rejects a send for
// rate limiting but does not say how long to wait.
const defaultRetryAfterSeconds = 60

// RateLimitedError reports a rate-limit rejection from the remote API.
type RateLimitedError struct {
	// RetryAfter is the wait the remote API asked for, in seconds.
	// Always positive.
	RetryAfter int
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited, retry after %ds", e.RetryAfter)
}

// NewRateLimitedError normalizes a reported retry-after value, substituting
// the default when the remote API omitted it.
func NewRateLimitedError(retryAfter int) *RateLimitedError {
	if retryAfter <= 0 {
		retryAfter = defaultRetryAfterSeconds
	}
	return &RateLimitedError{RetryAfter: retryAfter}
}

// TransportError wraps a delivery failure with a retryable flag.
type TransportError struct {
	Err        error
	StatusCode int
	Retryable  bool
}

func (e *TransportError) Error() string { return e.Err.Error() }
func (e *TransportError) Unwrap() error { return e.Err }

// IsRetryable reports whether err is a transient failure worth retrying.
// Rate-limit rejections are retryable after their window; unknown errors
// (connection refused, DNS) are assumed transient.
func IsRetryable(err error) bool {
	var rle *RateLimitedError
	if errors.As(err, &rle) {
		return true
	}
	var te *TransportError
	if errors.As(err, &te) {
		return te.Retryable
	}
	return true
}
