package config

// Config is the top-level notifyd configuration, corresponding to
// notifyd.yml. Environment variables prefixed NOTIFYD_ override file values.
type Config struct {
	// Listen is the HTTP API bind address.
	Listen string `yaml:"listen" koanf:"listen"`

	// WebhookURL and BotToken are the transport credentials. Transport
	// picks between them: "auto" (default), "webhook", or "bot".
	WebhookURL string `yaml:"webhook_url" koanf:"webhook_url"`
	BotToken   string `yaml:"bot_token" koanf:"bot_token"`
	Transport  string `yaml:"transport" koanf:"transport"`

	// DefaultChannel receives notifications that no mapping routes
	// anywhere else.
	DefaultChannel string `yaml:"default_channel" koanf:"default_channel"`

	TimeoutSeconds int `yaml:"timeout_seconds" koanf:"timeout_seconds"`
	SendsPerMinute int `yaml:"sends_per_minute" koanf:"sends_per_minute"`

	// Channels maps event kind names to routing rules.
	Channels map[string]ChannelRule `yaml:"channels" koanf:"channels"`

	// Templates maps event kind names to message templates.
	Templates map[string]TemplateRule `yaml:"templates" koanf:"templates"`

	RateLimit RateLimitConfig `yaml:"rate_limit" koanf:"rate_limit"`
	Retry     RetryConfig     `yaml:"retry" koanf:"retry"`
}

// ChannelRule routes one event kind.
type ChannelRule struct {
	Channel  string `yaml:"channel" koanf:"channel"`
	Kind     string `yaml:"kind" koanf:"kind"`
	Template string `yaml:"template" koanf:"template"`
	Priority string `yaml:"priority" koanf:"priority"`
}

// TemplateRule declares a message template and the context variables it
// needs.
type TemplateRule struct {
	Name      string   `yaml:"name" koanf:"name"`
	Content   string   `yaml:"content" koanf:"content"`
	Variables []string `yaml:"variables" koanf:"variables"`
}

// RateLimitConfig tunes the retry window for rate-limited sends. Delays are
// in seconds.
type RateLimitConfig struct {
	MaxRetries       int     `yaml:"max_retries" koanf:"max_retries"`
	BaseDelaySeconds float64 `yaml:"base_delay" koanf:"base_delay"`
	MaxDelaySeconds  float64 `yaml:"max_delay" koanf:"max_delay"`
}

// RetryConfig shapes the backoff between retries.
type RetryConfig struct {
	ExponentialBackoff bool `yaml:"exponential_backoff" koanf:"exponential_backoff"`
	Jitter             bool `yaml:"jitter" koanf:"jitter"`
}
