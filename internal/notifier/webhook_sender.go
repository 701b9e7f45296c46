package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
)

const (
	defaultSendTimeout = 10 * time.Second
	userAgent          = "k-le-paas-notifyd/v1"
)

// webhookPayload is the JSON body POSTed to the incoming webhook.
type webhookPayload struct {
	Text        string           `json:"text"`
	Channel     string           `json:"channel,omitempty"`
	Blocks      []map[string]any `json:"blocks,omitempty"`
	Attachments []map[string]any `json:"attachments,omitempty"`
	ThreadTS    string           `json:"thread_ts,omitempty"`
}

// WebhookSender delivers messages through a Slack incoming webhook.
type WebhookSender struct {
	httpClient *http.Client
	logger     *zap.Logger
	url        string
}

// WebhookSenderConfig holds the configuration for creating a WebhookSender.
type WebhookSenderConfig struct {
	URL            string
	TimeoutSeconds int
}

// NewWebhookSender creates a WebhookSender. Returns an error if the URL is
// missing or invalid.
func NewWebhookSender(logger *zap.Logger, cfg WebhookSenderConfig) (*WebhookSender, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("webhook URL is required")
	}
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid webhook URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("webhook URL must use http or https scheme, got %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("webhook URL must include a host")
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout == 0 {
		timeout = defaultSendTimeout
	}

	return &WebhookSender{
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.Named("webhook-sender"),
		url:        cfg.URL,
	}, nil
}

// Name implements Sender.
func (ws *WebhookSender) Name() string { return "webhook" }

// Send implements Sender. Webhooks carry no message identifier, so the
// result's MessageTS is always empty.
func (ws *WebhookSender) Send(ctx context.Context, msg Message) (SendResult, error) {
	body, err := json.Marshal(webhookPayload{
		Text:        msg.Text,
		Channel:     msg.Channel,
		Blocks:      msg.Blocks,
		Attachments: msg.Attachments,
		ThreadTS:    msg.ThreadTS,
	})
	if err != nil {
		return SendResult{}, fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ws.url, bytes.NewReader(body))
	if err != nil {
		return SendResult{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := ws.httpClient.Do(req)
	if err != nil {
		return SendResult{}, &TransportError{Err: err, Retryable: true}
	}
	defer func() {
		// Drain and close body to reuse connections.
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		ws.logger.Warn("Webhook rate limited",
			zap.String("url", RedactURL(ws.url)),
			zap.Int("retry_after", retryAfter),
		)
		return SendResult{}, NewRateLimitedError(retryAfter)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return SendResult{}, nil
	}

	return SendResult{}, &TransportError{
		Err:        fmt.Errorf("webhook returned HTTP %d", resp.StatusCode),
		StatusCode: resp.StatusCode,
		Retryable:  resp.StatusCode >= 500,
	}
}

// RedactURL masks credentials in a URL for safe logging.
// It redacts userinfo passwords and query parameter values.
func RedactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<invalid-url>"
	}
	redacted := u.Redacted()
	// Also redact query parameter values (e.g., ?token=secret).
	if u.RawQuery != "" {
		q := u.Query()
		for key := range q {
			q.Set(key, "REDACTED")
		}
		r, err := url.Parse(redacted)
		if err != nil {
			return redacted
		}
		r.RawQuery = q.Encode()
		return r.String()
	}
	return redacted
}
