package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
)

const defaultChatPostURL = "https://slack.com/api/chat.postMessage"

// chatPostRequest is the JSON body for the chat.postMessage API.
type chatPostRequest struct {
	Channel     string           `json:"channel"`
	Text        string           `json:"text"`
	Blocks      []map[string]any `json:"blocks,omitempty"`
	Attachments []map[string]any `json:"attachments,omitempty"`
	ThreadTS    string           `json:"thread_ts,omitempty"`
}

// chatPostResponse is the subset of the API response the sender consumes.
type chatPostResponse struct {
	OK         bool    `json:"ok"`
	TS         string  `json:"ts"`
	Error      string  `json:"error"`
	RetryAfter float64 `json:"retry_after"`
}

// BotSender delivers messages through the bot-token Web API. Unlike the
// webhook it returns the posted message's timestamp, which callers need for
// threading.
type BotSender struct {
	httpClient *http.Client
	logger     *zap.Logger
	token      string
	apiURL     string
}

// BotSenderConfig holds the configuration for creating a BotSender.
type BotSenderConfig struct {
	Token          string
	TimeoutSeconds int
	// APIURL overrides the chat.postMessage endpoint. Tests only.
	APIURL string
}

// NewBotSender creates a BotSender. Returns an error if the token is missing.
func NewBotSender(logger *zap.Logger, cfg BotSenderConfig) (*BotSender, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("bot token is required")
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout == 0 {
		timeout = defaultSendTimeout
	}
	apiURL := cfg.APIURL
	if apiURL == "" {
		apiURL = defaultChatPostURL
	}
	return &BotSender{
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.Named("bot-sender"),
		token:      cfg.Token,
		apiURL:     apiURL,
	}, nil
}

// Name implements Sender.
func (bs *BotSender) Name() string { return "bot" }

// Send implements Sender.
func (bs *BotSender) Send(ctx context.Context, msg Message) (SendResult, error) {
	body, err := json.Marshal(chatPostRequest{
		Channel:     msg.Channel,
		Text:        msg.Text,
		Blocks:      msg.Blocks,
		Attachments: msg.Attachments,
		ThreadTS:    msg.ThreadTS,
	})
	if err != nil {
		return SendResult{}, fmt.Errorf("marshal chat payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, bs.apiURL, bytes.NewReader(body))
	if err != nil {
		return SendResult{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+bs.token)
	req.Header.Set("User-Agent", userAgent)

	resp, err := bs.httpClient.Do(req)
	if err != nil {
		return SendResult{}, &TransportError{Err: err, Retryable: true}
	}
	defer func() {
		resp.Body.Close()
	}()

	// The API reports rate limits both as HTTP 429 and as an error field
	// in an otherwise-200 body. Handle the header form before decoding.
	if resp.StatusCode == http.StatusTooManyRequests {
		_, _ = io.Copy(io.Discard, resp.Body)
		retryAfter, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		bs.logger.Warn("Bot API rate limited",
			zap.String("channel", msg.Channel),
			zap.Int("retry_after", retryAfter),
		)
		return SendResult{}, NewRateLimitedError(retryAfter)
	}

	var apiResp chatPostResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return SendResult{}, &TransportError{
			Err:        fmt.Errorf("decode chat response: %w", err),
			StatusCode: resp.StatusCode,
			Retryable:  true,
		}
	}

	if !apiResp.OK {
		if apiResp.Error == "rate_limited" || apiResp.Error == "ratelimited" {
			return SendResult{}, NewRateLimitedError(int(apiResp.RetryAfter))
		}
		return SendResult{}, &TransportError{
			Err:        fmt.Errorf("chat API error: %s", apiResp.Error),
			StatusCode: resp.StatusCode,
			Retryable:  resp.StatusCode >= 500,
		}
	}

	return SendResult{MessageTS: apiResp.TS}, nil
}
