package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/K-Le-PaaS/backend-hybrid-sub002/internal/api"
	"github.com/K-Le-PaaS/backend-hybrid-sub002/internal/config"
	"github.com/K-Le-PaaS/backend-hybrid-sub002/internal/notifier"
)

const shutdownTimeout = 15 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the notification HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger()
			if err != nil {
				return err
			}
			defer logger.Sync()
			return runServe(logger)
		},
	}
}

func newLogger() (*zap.Logger, error) {
	logConfig := zap.NewProductionConfig()
	logConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, err := logConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return logger, nil
}

func runServe(logger *zap.Logger) error {
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine.Start(ctx)

	server := api.New(logger, engine, cfg.Listen)
	logger.Info("Starting notifyd",
		zap.String("listen", cfg.Listen),
		zap.String("transport", engine.Transport()),
		zap.String("default_channel", routes.DefaultChannel),
	)

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Received shutdown signal, draining")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
