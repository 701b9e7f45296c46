package config

// DefaultConfig returns the built-in defaults. A config file and NOTIFYD_*
// environment variables overlay these.
func DefaultConfig() *Config {
	return &Config{
		Listen:         ":8085",
		Transport:      "auto",
		DefaultChannel: "#general",
		TimeoutSeconds: 10,
		SendsPerMinute: 60,
		RateLimit: RateLimitConfig{
			MaxRetries:       3,
			BaseDelaySeconds: 1.0,
			MaxDelaySeconds:  60.0,
		},
		Retry: RetryConfig{
			ExponentialBackoff: true,
			Jitter:             true,
		},
	}
}
