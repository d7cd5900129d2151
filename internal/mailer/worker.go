package mailer

import (
	"context"
	"encoding/json"
	"time"

	"skillpath/internal/metrics"
	"skillpath/internal/pgmq"

	"github.com/rs/zerolog"
)

type queueClient interface {
	ReadWithPoll(ctx context.Context, queue string, vtSec, maxMessages, pollSec int) ([]*pgmq.Message, error)
	Delete(ctx context.Context, queue string, msgIDs []int64) error
	Send(ctx context.Context, queue string, payload []byte) error
}

type WorkerConfig struct {
	Queue           string
	DeadLetterQueue string
	PollTimeoutSec  int
	MaxMessages     int
	MaxRetries      int
	BackoffInitial  time.Duration
	BackoffMax      time.Duration
}

// Worker drains the email queue. A message that still fails after MaxRetries
// attempts is moved to the dead-letter queue.
type Worker struct {
	client  queueClient
	sender  Sender
	cfg     WorkerConfig
	logger  zerolog.Logger
	metrics *metrics.Collector
	sleep   func(ctx context.Context, d time.Duration)
}

func NewWorker(client queueClient, sender Sender, cfg WorkerConfig, logger zerolog.Logger, m *metrics.Collector) *Worker {
	return &Worker{
		client:  client,
		sender:  sender,
		cfg:     cfg,
		logger:  logger.With().Str("service", "EmailWorker").Logger(),
		metrics: m,
		sleep:   sleepCtx,
	}
}

func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info().Str("queue", w.cfg.Queue).Msg("Starting email worker")
	// Messages stay invisible a little longer than a full retry cycle could take.
	vt := w.cfg.PollTimeoutSec + int(w.cfg.BackoffMax.Seconds())*w.cfg.MaxRetries
	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("Shutting down email worker")
			return nil
		default:
		}

		msgs, err := w.client.ReadWithPoll(ctx, w.cfg.Queue, vt, w.cfg.MaxMessages, w.cfg.PollTimeoutSec)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			w.logger.Error().Err(err).Msg("Error reading email queue")
			w.sleep(ctx, time.Second)
			continue
		}
		for _, msg := range msgs {
			w.handle(ctx, msg)
		}
	}
}

func (w *Worker) handle(ctx context.Context, msg *pgmq.Message) {
	logger := w.logger.With().Int64("msg_id", msg.ID).Logger()

	var email Message
	if err := json.Unmarshal(msg.Data, &email); err != nil || email.To == "" {
		logger.Error().Err(err).Msg("Failed to unmarshal email payload; deleting message")
		w.ack(ctx, msg.ID)
		return
	}

	backoff := w.cfg.BackoffInitial
	var sendErr error
	for attempt := 1; attempt <= w.cfg.MaxRetries; attempt++ {
		if sendErr = w.sender.Send(ctx, email); sendErr == nil {
			break
		}
		logger.Error().Err(sendErr).Int("attempt", attempt).Msg("Email delivery failed, retrying")
		if attempt == w.cfg.MaxRetries {
			break
		}
		w.sleep(ctx, backoff)
		backoff *= 2
		if backoff > w.cfg.BackoffMax {
			backoff = w.cfg.BackoffMax
		}
	}

	if sendErr != nil {
		w.observe("failed")
		if err := w.client.Send(ctx, w.cfg.DeadLetterQueue, msg.Data); err != nil {
			logger.Error().Err(err).Str("dlq", w.cfg.DeadLetterQueue).Msg("Failed to send message to dead-letter queue")
			// Leave the message; it becomes visible again after the timeout.
			return
		}
		logger.Warn().Int("attempts", w.cfg.MaxRetries).Err(sendErr).Msg("Exhausted all email retries; moving job to DLQ")
		w.ack(ctx, msg.ID)
		return
	}

	w.observe("sent")
	w.ack(ctx, msg.ID)
}

func (w *Worker) ack(ctx context.Context, id int64) {
	if err := w.client.Delete(ctx, w.cfg.Queue, []int64{id}); err != nil {
		w.logger.Error().Err(err).Int64("msg_id", id).Msg("Error deleting email message")
	}
}

func (w *Worker) observe(status string) {
	if w.metrics != nil {
		w.metrics.EmailsSent.WithLabelValues(status).Inc()
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
