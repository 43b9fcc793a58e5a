// Package bot wires the long-running components of the moderation bot and
// manages their lifecycle.
package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

const metricsShutdownTimeout = 5 * time.Second

// Listener receives platform updates until ctx is cancelled. *bot.Bot from
// go-telegram satisfies it.
type Listener interface {
	Start(ctx context.Context)
}

// Bot represents the main bot application and manages its components' lifecycle.
type Bot struct {
	logger      *slog.Logger
	listener    Listener
	scheduler   *Scheduler
	metricsAddr string
	closers     []io.Closer
}

// NewBot creates the orchestrator. metricsAddr may be empty to disable the
// metrics endpoint. closers are closed once every component has stopped.
func NewBot(logger *slog.Logger, listener Listener, scheduler *Scheduler, metricsAddr string, closers ...io.Closer) *Bot {
	return &Bot{
		logger:      logger.With("component", "bot_orchestrator"),
		listener:    listener,
		scheduler:   scheduler,
		metricsAddr: metricsAddr,
		closers:     closers,
	}
}

// MetricsHandler serves the Prometheus registry.
func MetricsHandler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// Run starts the bot and all its components, handling graceful shutdown on context cancellation.
// It returns an error if any component fails during startup or execution.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("Starting bot orchestrator...")
	defer b.close()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		b.logger.Info("Starting Telegram bot listener...")
		b.listener.Start(gCtx)
		b.logger.Info("Telegram bot listener stopped.")

		if gCtx.Err() == nil {
			b.logger.Warn("Telegram bot listener stopped unexpectedly without context cancellation.")
			return fmt.Errorf("telegram listener stopped unexpectedly")
		}
		return nil
	})

	if b.scheduler != nil {
		g.Go(func() error {
			b.logger.Info("Starting scheduler...")
			if err := b.scheduler.Start(); err != nil {
				b.logger.Error("Failed to start scheduler", "error", err)
				return fmt.Errorf("failed to start scheduler: %w", err)
			}

			<-gCtx.Done()
			b.logger.Info("Shutdown signal received, stopping scheduler...")
			if err := b.scheduler.Stop(); err != nil {
				b.logger.Error("Error stopping scheduler", "error", err)
			}
			return nil
		})
	}

	if b.metricsAddr != "" {
		srv := &http.Server{
			Addr:              b.metricsAddr,
			Handler:           MetricsHandler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			b.logger.Info("Starting metrics server...", "addr", b.metricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gCtx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				b.logger.Error("Error stopping metrics server", "error", err)
			}
			return nil
		})
	}

	b.logger.Info("Bot orchestrator running. Waiting for shutdown signal or error...")
	err := g.Wait()

	if err != nil && !errors.Is(err, context.Canceled) {
		b.logger.Error("Bot orchestrator stopped due to error", "error", err)
		return err
	}

	b.logger.Info("Bot orchestrator stopped gracefully.")
	return nil
}

func (b *Bot) close() {
	for _, c := range b.closers {
		if err := c.Close(); err != nil {
			b.logger.Error("Error closing component", "error", err)
		}
	}
}
