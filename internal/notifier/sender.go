package notifier

import (
	"context"

	"go.uber.org/zap"
)

// Message is the transport-level payload handed to a Sender. The text is
// always populated; blocks and attachments are optional structured
// fragments for clients that render them.
type Message struct {
	Channel     string
	Text        string
	Blocks      []map[string]any
	Attachments []map[string]any
	ThreadTS    string
}

// SendResult carries transport metadata from a successful send.
type SendResult struct {
	// MessageTS is the timestamp identifier of the posted message, when
	// the transport reports one. Webhooks do not.
	MessageTS string
}

// Sender delivers a message over one transport. Implementations are safe
// for concurrent use.
type Sender interface {
	// Name returns the transport identifier ("webhook" or "bot").
	Name() string

	// Send delivers one message synchronously. Rate-limit rejections are
	// reported as *RateLimitedError, other transport failures as
	// *TransportError.
	Send(ctx context.Context, msg Message) (SendResult, error)
}

// TransportMode selects which transport NewSender builds.
type TransportMode string

const (
	// TransportAuto prefers the webhook when a URL is configured and
	// falls back to the bot token.
	TransportAuto    TransportMode = "auto"
	TransportWebhook TransportMode = "webhook"
	TransportBot     TransportMode = "bot"
)

// SenderConfig holds the transport credentials and tuning.
type SenderConfig struct {
	Mode           TransportMode
	WebhookURL     string
	BotToken       string
	TimeoutSeconds int
}

// NewSender builds the transport for the given configuration. The choice is
// made once at startup; it never changes per request.
func NewSender(logger *zap.Logger, cfg SenderConfig) (Sender, error) {
	mode := cfg.Mode
	if mode == "" {
		mode = TransportAuto
	}
	switch mode {
	case TransportWebhook:
		return NewWebhookSender(logger, WebhookSenderConfig{
			URL:            cfg.WebhookURL,
			TimeoutSeconds: cfg.TimeoutSeconds,
		})
	case TransportBot:
		return NewBotSender(logger, BotSenderConfig{
			Token:          cfg.BotToken,
			TimeoutSeconds: cfg.TimeoutSeconds,
		})
	case TransportAuto:
		if cfg.WebhookURL != "" {
			return NewWebhookSender(logger, WebhookSenderConfig{
				URL:            cfg.WebhookURL,
				TimeoutSeconds: cfg.TimeoutSeconds,
			})
		}
		if cfg.BotToken != "" {
			return NewBotSender(logger, BotSenderConfig{
				Token:          cfg.BotToken,
				TimeoutSeconds: cfg.TimeoutSeconds,
			})
		}
		return nil, ErrNoTransport
	}
	return nil, ErrNoTransport
}
