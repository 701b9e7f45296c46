package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/K-Le-PaaS/backend-hybrid-sub002/internal/config"
	"github.com/K-Le-PaaS/backend-hybrid-sub002/internal/notifier"
	"github.com/K-Le-PaaS/backend-hybrid-sub002/internal/types"
)

// sendFlags holds the one-shot send parameters.
type sendFlags struct {
	event       string
	title       string
	message     string
	channel     string
	channelKind string
	contextKVs  map[string]string
}

func sendCmd() *cobra.Command {
	flags := sendFlags{}
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Deliver a single notification and exit",
		Long: `send delivers one notification using the configured transport,
retrying rate-limited sends with backoff, and prints the delivery
result as JSON. Exits non-zero when delivery fails.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger()
			if err != nil {
				return err
			}
			defer logger.Sync()
			return runSend(cmd.Context(), logger, flags)
		},
	}
	cmd.Flags().StringVar(&flags.event, "event", "", "Event kind (required)")
	cmd.Flags().StringVar(&flags.title, "title", "", "Notification title")
	cmd.Flags().StringVar(&flags.message, "message", "", "Notification message")
	cmd.Flags().StringVar(&flags.channel, "channel", "", "Explicit destination channel")
	cmd.Flags().StringVar(&flags.channelKind, "channel-kind", "", "Destination channel kind")
	cmd.Flags().StringToStringVar(&flags.contextKVs, "context", nil, "Context key=value pairs for templates")
	_ = cmd.MarkFlagRequired("event")
	return cmd
}

func runSend(ctx context.Context, logger *zap.Logger, flags sendFlags) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	routes, err := cfg.Routes()
	if err != nil {
		return fmt.Errorf("building routing table: %w", err)
	}

	kind, err := types.ParseEventKind(flags.event)
	if err != nil {
		return err
	}
	req := types.NotificationRequest{
		EventKind: kind,
		Title:     flags.title,
		Message:   flags.message,
		Channel:   flags.channel,
		Context:   flags.contextKVs,
		Priority:  types.DefaultPriority(kind),
	}
	if flags.channelKind != "" {
		ck, err := types.ParseChannelKind(flags.channelKind)
		if err != nil {
			return err
		}
		req.ChannelKind = ck
	}

	engine, err := notifier.NewEngine(logger, notifier.EngineOptions{
		Routes: routes,
		Sender: notifier.SenderConfig{
			Mode:           notifier.TransportMode(cfg.Transport),
			WebhookURL:     cfg.WebhookURL,
			BotToken:       cfg.BotToken,
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		SendsPerMinute: cfg.SendsPerMinute,
	})
	if err != nil {
		return err
	}

	resp := engine.Deliver(ctx, req)
	for attempt := 0; !resp.Success && resp.RetryAfter > 0 && attempt < routes.RateLimit.MaxRetries; attempt++ {
		wait := time.Duration(resp.RetryAfter) * time.Second
		if backoff := notifier.Backoff(attempt, routes.RateLimit, routes.Retry); backoff > wait {
			wait = backoff
		}
		logger.Warn("Rate limited, waiting before retry",
			zap.Duration("wait", wait),
			zap.Int("attempt", attempt+1),
		)
		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
		resp = engine.Deliver(ctx, req)
	}

	out, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, string(out))
	if !resp.Success {
		return fmt.Errorf("delivery failed: %s", resp.Error)
	}
	return nil
}
