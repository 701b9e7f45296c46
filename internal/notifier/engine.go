package notifier

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/K-Le-PaaS/backend-hybrid-sub002/internal/render"
	"github.com/K-Le-PaaS/backend-hybrid-sub002/internal/types"
)

const limiterEvictInterval = 10 * time.Minute

// EngineOptions configures an Engine.
type EngineOptions struct {
	Routes         *types.RoutingTable
	Sender         SenderConfig
	SendsPerMinute int
}

// DefaultEngineOptions returns options with the tuning defaults filled in.
// Routes and Sender still need to be set by the caller.
func DefaultEngineOptions() EngineOptions {
	return EngineOptions{SendsPerMinute: 60}
}

// Engine is the delivery orchestrator: it resolves the channel, enforces
// rate limits, renders the payload, and sends it. Safe for concurrent use.
type Engine struct {
	logger   *zap.Logger
	routes   *types.RoutingTable
	renderer *render.Renderer
	sender   Sender
	limiter  *RateLimiter
	throttle *channelThrottle
}

// NewEngine creates an Engine. Fails only when no transport can be built
// from the options.
func NewEngine(logger *zap.Logger, opts EngineOptions) (*Engine, error) {
	sender, err := NewSender(logger, opts.Sender)
	if err != nil {
		return nil, err
	}
	perMinute := opts.SendsPerMinute
	if perMinute <= 0 {
		perMinute = DefaultEngineOptions().SendsPerMinute
	}
	return &Engine{
		logger:   logger.Named("engine"),
		routes:   opts.Routes,
		renderer: render.NewRenderer(logger, opts.Routes.Templates),
		sender:   sender,
		limiter:  NewRateLimiter(),
		throttle: newChannelThrottle(perMinute),
	}, nil
}

// Transport returns the name of the configured transport.
func (e *Engine) Transport() string { return e.sender.Name() }

// Routes returns the engine's routing table.
func (e *Engine) Routes() *types.RoutingTable { return e.routes }

// Start launches the background limiter eviction loop. Non-blocking;
// returns when ctx is cancelled.
func (e *Engine) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(limiterEvictInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				e.limiter.Evict(time.Hour)
				e.throttle.Evict(time.Hour)
			}
		}
	}()
}

// Deliver processes one notification end to end. It never returns an error
// and never panics: every failure is folded into the response.
func (e *Engine) Deliver(ctx context.Context, req types.NotificationRequest) (resp types.NotificationResponse) {
	deliveryID := uuid.NewString()
	channel := ResolveChannel(req, e.routes)
	log := e.logger.With(
		zap.String("delivery_id", deliveryID),
		zap.String("event_kind", string(req.EventKind)),
		zap.String("channel", channel),
	)

	defer func() {
		if r := recover(); r != nil {
			log.Error("Delivery panicked", zap.Any("panic", r))
			resp = types.NotificationResponse{
				Success: false,
				Channel: channel,
				Error:   "internal error",
			}
		}
	}()

	if limited, secs := e.limiter.IsLimited(channel); limited {
		rateLimitedTotal.WithLabelValues(channel).Inc()
		log.Warn("Channel rate limited, skipping send", zap.Int("retry_after", secs))
		return types.NotificationResponse{
			Success:    false,
			Channel:    channel,
			Error:      "rate_limited",
			RetryAfter: secs,
		}
	}

	// Local pacing: wait out the token bucket rather than fail.
	if delay := e.throttle.Reserve(channel); delay > 0 {
		log.Debug("Throttling send", zap.Duration("delay", delay))
		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return types.NotificationResponse{
				Success: false,
				Channel: channel,
				Error:   ctx.Err().Error(),
			}
		}
	}

	rendered := e.renderer.Render(req)
	blocks := req.Blocks
	if blocks == nil {
		blocks = rendered.Blocks
	}

	start := time.Now()
	result, err := e.sender.Send(ctx, Message{
		Channel:     channel,
		Text:        rendered.Text,
		Blocks:      blocks,
		Attachments: req.Attachments,
		ThreadTS:    req.ThreadTS,
	})
	duration := time.Since(start).Seconds()

	if err != nil {
		var rle *RateLimitedError
		if errors.As(err, &rle) {
			e.limiter.RecordLimited(channel, time.Duration(rle.RetryAfter)*time.Second)
			sendTotal.WithLabelValues(e.sender.Name(), "rate_limited").Inc()
			sendDuration.WithLabelValues(e.sender.Name(), "error").Observe(duration)
			log.Warn("Remote rate limit hit", zap.Int("retry_after", rle.RetryAfter))
			return types.NotificationResponse{
				Success:    false,
				Channel:    channel,
				Error:      "rate_limited",
				RetryAfter: rle.RetryAfter,
			}
		}
		sendTotal.WithLabelValues(e.sender.Name(), "error").Inc()
		sendDuration.WithLabelValues(e.sender.Name(), "error").Observe(duration)
		log.Error("Send failed", zap.Error(err))
		return types.NotificationResponse{
			Success: false,
			Channel: channel,
			Error:   err.Error(),
		}
	}

	e.limiter.Clear(channel)
	sendTotal.WithLabelValues(e.sender.Name(), "success").Inc()
	sendDuration.WithLabelValues(e.sender.Name(), "success").Observe(duration)
	log.Info("Notification delivered",
		zap.String("transport", e.sender.Name()),
		zap.String("message_ts", result.MessageTS),
	)
	return types.NotificationResponse{
		Success:   true,
		MessageTS: result.MessageTS,
		Channel:   channel,
	}
}
