// Package notifier resolves, renders, rate-limits, and delivers
// notifications to Slack.
//
// # Contract
//
// The Engine:
//  1. Resolves the destination channel: explicit channel, then channel kind,
//     then event-kind mapping, then the configured default.
//  2. Checks the per-channel rate-limit state; a channel still inside a
//     retry-after window short-circuits without touching the transport.
//  3. Renders the payload (see the render package).
//  4. Sends via the configured transport: incoming webhook when a webhook
//     URL is set, bot token otherwise.
//
// Deliver never returns an error and never panics outward: every failure
// mode, including a panic in a downstream layer, is folded into the
// NotificationResponse.
//
// # Rate Limiting
//
// Two mechanisms stack. The RateLimiter records retry-after windows reported
// by the remote API (HTTP 429) per channel, cleared on the next successful
// send. The channelThrottle is a local token bucket that spreads outbound
// sends per channel so the remote limit is rarely hit in the first place.
//
// # Types
//
//	type Engine struct { ... }
//	func NewEngine(logger *zap.Logger, opts EngineOptions) (*Engine, error)
//	func (e *Engine) Deliver(ctx context.Context, req types.NotificationRequest) types.NotificationResponse
//
//	type Sender interface {
//	    Name() string
//	    Send(ctx context.Context, msg Message) (SendResult, error)
//	}
package notifier
