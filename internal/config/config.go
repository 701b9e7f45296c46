package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/K-Le-PaaS/backend-hybrid-sub002/internal/types"
)

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (NOTIFYD_*). A missing file is not an
// error; defaults plus environment apply.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	cfg := DefaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	// Overlay environment variables: NOTIFYD_BOT_TOKEN -> bot_token, etc.
	if err := k.Load(env.Provider("NOTIFYD_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "NOTIFYD_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration contains valid values. It does not
// require a transport; NewSender reports that at startup with a clearer
// message.
func (c *Config) Validate() error {
	switch c.Transport {
	case "", "auto", "webhook", "bot":
	default:
		return fmt.Errorf("invalid transport %q: must be one of auto, webhook, bot", c.Transport)
	}
	if c.DefaultChannel == "" {
		return fmt.Errorf("default_channel is required")
	}
	if c.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout_seconds must be non-negative")
	}
	if c.SendsPerMinute < 0 {
		return fmt.Errorf("sends_per_minute must be non-negative")
	}
	if c.RateLimit.MaxRetries < 0 {
		return fmt.Errorf("rate_limit.max_retries must be non-negative")
	}
	if c.RateLimit.BaseDelaySeconds < 0 || c.RateLimit.MaxDelaySeconds < 0 {
		return fmt.Errorf("rate_limit delays must be non-negative")
	}

	for name, rule := range c.Channels {
		if _, err := types.ParseEventKind(name); err != nil {
			return fmt.Errorf("channels: %w", err)
		}
		if rule.Kind != "" {
			if _, err := types.ParseChannelKind(rule.Kind); err != nil {
				return fmt.Errorf("channels[%s]: %w", name, err)
			}
		}
		if rule.Priority != "" {
			if _, err := types.ParsePriority(rule.Priority); err != nil {
				return fmt.Errorf("channels[%s]: %w", name, err)
			}
		}
	}
	for name := range c.Templates {
		if _, err := types.ParseEventKind(name); err != nil {
			return fmt.Errorf("templates: %w", err)
		}
	}
	return nil
}

// Routes builds the immutable routing table the engine consumes. Call after
// Validate.
func (c *Config) Routes() (*types.RoutingTable, error) {
	table := &types.RoutingTable{
		DefaultChannel: c.DefaultChannel,
		Mappings:       make(map[types.EventKind]types.ChannelMapping, len(c.Channels)),
		Templates:      make(map[types.EventKind]types.Template, len(c.Templates)),
		RateLimit: types.RateLimitTuning{
			MaxRetries: c.RateLimit.MaxRetries,
			BaseDelay:  secondsToDuration(c.RateLimit.BaseDelaySeconds),
			MaxDelay:   secondsToDuration(c.RateLimit.MaxDelaySeconds),
		},
		Retry: types.RetryTuning{
			ExponentialBackoff: c.Retry.ExponentialBackoff,
			Jitter:             c.Retry.Jitter,
		},
	}

	for name, rule := range c.Channels {
		kind, err := types.ParseEventKind(name)
		if err != nil {
			return nil, fmt.Errorf("channels: %w", err)
		}
		mapping := types.ChannelMapping{
			EventKind: kind,
			Channel:   rule.Channel,
			Template:  rule.Template,
		}
		if rule.Kind != "" {
			ck, err := types.ParseChannelKind(rule.Kind)
			if err != nil {
				return nil, fmt.Errorf("channels[%s]: %w", name, err)
			}
			mapping.ChannelKind = ck
		}
		if rule.Priority != "" {
			p, err := types.ParsePriority(rule.Priority)
			if err != nil {
				return nil, fmt.Errorf("channels[%s]: %w", name, err)
			}
			mapping.Priority = p
		} else {
			mapping.Priority = types.DefaultPriority(kind)
		}
		table.Mappings[kind] = mapping
	}

	for name, rule := range c.Templates {
		kind, err := types.ParseEventKind(name)
		if err != nil {
			return nil, fmt.Errorf("templates: %w", err)
		}
		table.Templates[kind] = types.Template{
			EventKind: kind,
			Name:      rule.Name,
			Content:   rule.Content,
			Variables: rule.Variables,
		}
	}

	return table, nil
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
