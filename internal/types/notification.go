package types

import (
	"fmt"
	"time"
)

// EventKind categorizes what triggered a notification. It is the key for
// channel routing and template lookup.
type EventKind string

const (
	// Deployment lifecycle
	EventDeploymentStarted  EventKind = "deployment_started"
	EventDeploymentSuccess  EventKind = "deployment_success"
	EventDeploymentFailed   EventKind = "deployment_failed"
	EventDeploymentRollback EventKind = "deployment_rollback"

	// Build lifecycle
	EventBuildStarted EventKind = "build_started"
	EventBuildSuccess EventKind = "build_success"
	EventBuildFailed  EventKind = "build_failed"

	// Releases
	EventReleaseCreated  EventKind = "release_created"
	EventReleaseDeployed EventKind = "release_deployed"

	// Errors
	EventRateLimited  EventKind = "rate_limited"
	EventUnauthorized EventKind = "unauthorized"
	EventAPIError     EventKind = "api_error"
	EventSystemError  EventKind = "system_error"

	// Health checks
	EventHealthDown      EventKind = "health_down"
	EventHealthRecovered EventKind = "health_recovered"

	// MCP integration
	EventMCPConnectionFailed EventKind = "mcp_connection_failed"
	EventMCPToolFailed       EventKind = "mcp_tool_failed"
	EventMCPRateLimited      EventKind = "mcp_rate_limited"
)

// EventKinds lists every known kind. Used for configuration validation.
func EventKinds() []EventKind {
	return []EventKind{
		EventDeploymentStarted, EventDeploymentSuccess, EventDeploymentFailed, EventDeploymentRollback,
		EventBuildStarted, EventBuildSuccess, EventBuildFailed,
		EventReleaseCreated, EventReleaseDeployed,
		EventRateLimited, EventUnauthorized, EventAPIError, EventSystemError,
		EventHealthDown, EventHealthRecovered,
		EventMCPConnectionFailed, EventMCPToolFailed, EventMCPRateLimited,
	}
}

// ParseEventKind validates a raw string against the closed set of kinds.
func ParseEventKind(s string) (EventKind, error) {
	for _, k := range EventKinds() {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown event kind %q", s)
}

// ChannelKind is a coarse destination category, independent of EventKind.
type ChannelKind string

const (
	ChannelDefault     ChannelKind = "default"
	ChannelDeployments ChannelKind = "deployments"
	ChannelBuild       ChannelKind = "build"
	ChannelReleases    ChannelKind = "releases"
	ChannelErrors      ChannelKind = "errors"
	ChannelSecurity    ChannelKind = "security"
	ChannelHealth      ChannelKind = "health"
	ChannelMCP         ChannelKind = "mcp"
)

// ParseChannelKind validates a raw string against the closed set of kinds.
func ParseChannelKind(s string) (ChannelKind, error) {
	switch ChannelKind(s) {
	case ChannelDefault, ChannelDeployments, ChannelBuild, ChannelReleases,
		ChannelErrors, ChannelSecurity, ChannelHealth, ChannelMCP:
		return ChannelKind(s), nil
	}
	return "", fmt.Errorf("unknown channel kind %q", s)
}

// Priority indicates how urgently a notification needs attention.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// ParsePriority validates a raw string against the closed set of priorities.
func ParsePriority(s string) (Priority, error) {
	switch Priority(s) {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return Priority(s), nil
	}
	return "", fmt.Errorf("unknown priority %q", s)
}

// DefaultPriority returns the priority implied by an event kind when the
// request does not carry one.
func DefaultPriority(kind EventKind) Priority {
	switch kind {
	case EventUnauthorized, EventSystemError:
		return PriorityUrgent
	case EventDeploymentFailed, EventBuildFailed, EventHealthDown:
		return PriorityHigh
	default:
		return PriorityNormal
	}
}

// NotificationRequest describes one notification to deliver. It is
// constructed fresh per call and never mutated by the engine.
//
// Context carries string key/value pairs consumed by templates and the
// canned deployment layouts. Numeric values (deployment id, durations) are
// formatted by the caller; multi-line values (log tails) are
// newline-separated.
type NotificationRequest struct {
	EventKind   EventKind         `json:"event_kind"`
	Title       string            `json:"title"`
	Message     string            `json:"message"`
	Channel     string            `json:"channel,omitempty"`
	ChannelKind ChannelKind       `json:"channel_kind,omitempty"`
	Context     map[string]string `json:"context,omitempty"`

	// Blocks and Attachments are pre-built structured payload fragments
	// passed through to the transport untouched. When Blocks is set the
	// renderer's own block output is not used.
	Blocks      []map[string]any `json:"blocks,omitempty"`
	Attachments []map[string]any `json:"attachments,omitempty"`

	// ThreadTS threads the message under an existing conversation.
	ThreadTS string   `json:"thread_ts,omitempty"`
	Priority Priority `json:"priority,omitempty"`
}

// NotificationResponse is the normalized delivery outcome. Exactly one of
// the success and error shapes is populated; the engine never returns an
// empty Channel.
type NotificationResponse struct {
	Success    bool   `json:"success"`
	MessageTS  string `json:"message_ts,omitempty"`
	Channel    string `json:"channel"`
	Error      string `json:"error,omitempty"`
	RetryAfter int    `json:"retry_after,omitempty"`
}

// ChannelMapping routes one event kind to a destination channel.
type ChannelMapping struct {
	EventKind   EventKind
	Channel     string
	ChannelKind ChannelKind
	Template    string
	Priority    Priority
}

// Template is a named message template for one event kind. Variables lists
// the context keys the template references; they are validated before
// substitution.
type Template struct {
	EventKind EventKind
	Name      string
	Content   string
	Variables []string
}

// RateLimitTuning carries the retry-window tuning read from configuration.
type RateLimitTuning struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// RetryTuning carries the backoff-shape flags read from configuration.
type RetryTuning struct {
	ExponentialBackoff bool
	Jitter             bool
}

// RoutingTable is the process-wide routing configuration: loaded once at
// startup, immutable afterwards, shared read-only by concurrent deliveries.
// Map keys are unique by construction, so no event kind ever has two
// mappings or two templates.
type RoutingTable struct {
	DefaultChannel string
	Mappings       map[EventKind]ChannelMapping
	Templates      map[EventKind]Template
	RateLimit      RateLimitTuning
	Retry          RetryTuning
}
