package notifier

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/K-Le-PaaS/backend-hybrid-sub002/internal/render"
	"github.com/K-Le-PaaS/backend-hybrid-sub002/internal/types"
)

// countingSender records sends and returns scripted results.
type countingSender struct {
	calls atomic.Int32
	err   error
	ts    string
}

func (cs *countingSender) Name() string { return "fake" }

func (cs *countingSender) Send(_ context.Context, _ Message) (SendResult, error) {
	cs.calls.Add(1)
	if cs.err != nil {
		return SendResult{}, cs.err
	}
	return SendResult{MessageTS: cs.ts}, nil
}

// panickingSender proves Deliver contains panics from downstream layers.
type panickingSender struct{}

func (panickingSender) Name() string { return "panic" }
func (panickingSender) Send(context.Context, Message) (SendResult, error) {
	panic("transport blew up")
}

func newTestEngine(sender Sender) *Engine {
	routes := testRoutes()
	return &Engine{
		logger:   zap.NewNop(),
		routes:   routes,
		renderer: render.NewRenderer(zap.NewNop(), routes.Templates),
		sender:   sender,
		limiter:  NewRateLimiter(),
		throttle: newChannelThrottle(6000),
	}
}

func successRequest() types.NotificationRequest {
	return types.NotificationRequest{
		EventKind: types.EventDeploymentSuccess,
		Title:     "Deployed",
		Message:   "v1.2.3 live",
	}
}

func TestDeliverSuccess(t *testing.T) {
	sender := &countingSender{ts: "1724900002.000300"}
	e := newTestEngine(sender)

	resp := e.Deliver(context.Background(), successRequest())
	assert.True(t, resp.Success)
	assert.Equal(t, "1724900002.000300", resp.MessageTS)
	assert.Equal(t, "#deployments", resp.Channel)
	assert.Empty(t, resp.Error)
	assert.Equal(t, int32(1), sender.calls.Load())
}

func TestDeliverTransportFailure(t *testing.T) {
	sender := &countingSender{err: &TransportError{Err: assert.AnError, Retryable: true}}
	e := newTestEngine(sender)

	resp := e.Deliver(context.Background(), successRequest())
	assert.False(t, resp.Success)
	assert.Equal(t, "#deployments", resp.Channel)
	assert.NotEmpty(t, resp.Error)
	assert.Zero(t, resp.RetryAfter)

	// A plain transport failure must not open a rate-limit window.
	limited, _ := e.limiter.IsLimited("#deployments")
	assert.False(t, limited)
}

// capturingSender records the last message handed to the transport.
type capturingSender struct {
	last Message
}

func (cs *capturingSender) Name() string { return "capture" }

func (cs *capturingSender) Send(_ context.Context, msg Message) (SendResult, error) {
	cs.last = msg
	return SendResult{MessageTS: "1.1"}, nil
}

func TestDeliverDeploymentSuccessPayload(t *testing.T) {
	sender := &capturingSender{}
	e := newTestEngine(sender)

	req := types.NotificationRequest{
		EventKind: types.EventDeploymentSuccess,
		Title:     "Deployment succeeded",
		Message:   "fix: routing",
		Channel:   "", // resolved via mapping
		Context: map[string]string{
			"repo":             "org/app",
			"branch":           "main",
			"commit_sha":       "9b0b867abc",
			"author":           "alice",
			"deployment_id":    "42",
			"duration_seconds": "154",
		},
	}
	resp := e.Deliver(context.Background(), req)
	require.True(t, resp.Success)

	var all string
	for _, block := range sender.last.Blocks {
		if text, ok := block["text"].(map[string]any); ok {
			if s, ok := text["text"].(string); ok {
				all += s
			}
		}
	}
	assert.Contains(t, all, "9b0b867")
	assert.Contains(t, all, "02:34")
	assert.Contains(t, all, "org/app")
}

func TestDeliverUnmappedEventUsesDefaultChannel(t *testing.T) {
	sender := &countingSender{ts: "1.3"}
	e := newTestEngine(sender)

	resp := e.Deliver(context.Background(), types.NotificationRequest{
		EventKind: types.EventSystemError,
		Title:     "Boom",
		Message:   "stack trace",
	})
	assert.True(t, resp.Success)
	assert.Equal(t, "#general", resp.Channel)
}

func TestDeliverRemoteRateLimitOpensWindow(t *testing.T) {
	sender := &countingSender{err: NewRateLimitedError(25)}
	e := newTestEngine(sender)

	resp := e.Deliver(context.Background(), successRequest())
	assert.False(t, resp.Success)
	assert.Equal(t, "rate_limited", resp.Error)
	assert.Equal(t, 25, resp.RetryAfter)

	// The next delivery to the same channel never reaches the transport.
	resp = e.Deliver(context.Background(), successRequest())
	assert.False(t, resp.Success)
	assert.Equal(t, "rate_limited", resp.Error)
	assert.Positive(t, resp.RetryAfter)
	assert.Equal(t, int32(1), sender.calls.Load())

	// A different channel is unaffected.
	req := successRequest()
	req.Channel = "#other"
	_ = e.Deliver(context.Background(), req)
	assert.Equal(t, int32(2), sender.calls.Load())
}

func TestDeliverGateBlocksBeforeTransport(t *testing.T) {
	sender := &countingSender{ts: "1.2"}
	e := newTestEngine(sender)
	e.limiter.RecordLimited("#deployments", 30*time.Second)

	resp := e.Deliver(context.Background(), successRequest())
	assert.False(t, resp.Success)
	assert.Equal(t, "rate_limited", resp.Error)
	assert.Positive(t, resp.RetryAfter)
	assert.Zero(t, sender.calls.Load(), "transport must not be touched while limited")
}

func TestDeliverNeverPanics(t *testing.T) {
	e := newTestEngine(panickingSender{})
	resp := e.Deliver(context.Background(), successRequest())
	assert.False(t, resp.Success)
	assert.Equal(t, "#deployments", resp.Channel)
	assert.Equal(t, "internal error", resp.Error)
}

func TestDeliverThroughWebhook(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	logger := zap.NewNop()
	e, err := NewEngine(logger, EngineOptions{
		Routes: testRoutes(),
		Sender: SenderConfig{
			Mode:       TransportAuto,
			WebhookURL: srv.URL,
		},
		SendsPerMinute: 6000,
	})
	require.NoError(t, err)
	assert.Equal(t, "webhook", e.Transport())

	resp := e.Deliver(context.Background(), successRequest())
	assert.True(t, resp.Success)
	assert.Equal(t, int32(1), calls.Load())
}

func TestNewEngineNoTransport(t *testing.T) {
	_, err := NewEngine(zap.NewNop(), EngineOptions{
		Routes: testRoutes(),
		Sender: SenderConfig{Mode: TransportAuto},
	})
	assert.ErrorIs(t, err, ErrNoTransport)
}

func TestNewSenderPrefersWebhook(t *testing.T) {
	s, err := NewSender(zap.NewNop(), SenderConfig{
		Mode:       TransportAuto,
		WebhookURL: "https://hooks.example.com/services/T/B",
		BotToken:   "xoxb-abc",
	})
	require.NoError(t, err)
	assert.Equal(t, "webhook", s.Name())
}

func TestNewSenderBotFallback(t *testing.T) {
	s, err := NewSender(zap.NewNop(), SenderConfig{
		Mode:     TransportAuto,
		BotToken: "xoxb-abc",
	})
	require.NoError(t, err)
	assert.Equal(t, "bot", s.Name())
}

func TestNewSenderExplicitMode(t *testing.T) {
	// Explicit bot mode ignores the webhook URL.
	s, err := NewSender(zap.NewNop(), SenderConfig{
		Mode:       TransportBot,
		WebhookURL: "https://hooks.example.com/services/T/B",
		BotToken:   "xoxb-abc",
	})
	require.NoError(t, err)
	assert.Equal(t, "bot", s.Name())
}
