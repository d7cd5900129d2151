package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"skillpath/internal/api/v1/router"
	"skillpath/internal/config"
	"skillpath/internal/logger"
	"skillpath/internal/mailer"
	"skillpath/internal/metrics"
	"skillpath/internal/pgmq"

	"github.com/joho/godotenv"
)

func main() {
	logger := logger.New()

	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg("Warning: no .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Msgf("Error loading config: %v", err)
	}
	if err := config.ResolveSecrets(context.Background(), cfg); err != nil {
		logger.Fatal().Msgf("Error resolving secrets: %v", err)
	}

	// Set up context with graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	pool, err := router.OpenPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Msgf("Failed to connect to DB: %v", err)
	}
	defer pool.Close()
	logger.Info().Msg("Database connection established")

	var sender mailer.Sender
	if cfg.SendGridAPIKey != "" {
		sender = mailer.NewSendGridSender(cfg.SendGridAPIKey, cfg.MailFromName, cfg.MailFromAddress)
	} else {
		logger.Warn().Msg("SENDGRID_API_KEY not set, emails will only be logged")
		sender = mailer.NewLogSender(logger)
	}

	m := metrics.New()
	metricsSrv := &http.Server{Addr: ":" + cfg.Port, Handler: m.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("Metrics server stopped")
		}
	}()

	worker := mailer.NewWorker(pgmq.New(pool), sender, mailer.WorkerConfig{
		Queue:           cfg.EmailQueueName,
		DeadLetterQueue: cfg.EmailDeadLetterQueueName,
		PollTimeoutSec:  cfg.EmailPollTimeoutSec,
		MaxMessages:     cfg.EmailPollMaxMsg,
		MaxRetries:      cfg.EmailMaxRetries,
		BackoffInitial:  time.Duration(cfg.EmailBackoffInitialSec) * time.Second,
		BackoffMax:      time.Duration(cfg.EmailBackoffMaxSec) * time.Second,
	}, logger, m)

	runErr := worker.Run(ctx)

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	_ = metricsSrv.Shutdown(shutdownCtx)

	if runErr != nil {
		logger.Fatal().Msgf("email worker failed: %v", runErr)
	}
	logger.Info().Msg("email worker stopped gracefully")
}
