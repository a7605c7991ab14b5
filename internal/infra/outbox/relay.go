// Package outbox relays queued notification jobs to Kafka.
package outbox

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"techpoints/internal/pkg/clock"
	"techpoints/internal/pkg/config"
	"techpoints/internal/pkg/errs"
	"techpoints/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const producerName = "techpoints"

// Writer is the part of *kafka.Writer the relay needs.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Envelope struct {
	EventID    string          `json:"event_id"`
	EventType  string          `json:"event_type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Producer   string          `json:"producer"`
	Payload    json.RawMessage `json:"payload"`
}

func NewKafkaWriter(cfg config.KafkaConfig) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
	}
}

type Relay struct {
	uow          shared.UnitOfWork
	writer       Writer
	clock        clock.Clock
	pollInterval time.Duration
	batchSize    int
	maxAttempts  int
}

func NewRelay(uow shared.UnitOfWork, writer Writer, clk clock.Clock, cfg config.KafkaConfig) *Relay {
	return &Relay{
		uow:          uow,
		writer:       writer,
		clock:        clk,
		pollInterval: cfg.PollInterval,
		batchSize:    cfg.BatchSize,
		maxAttempts:  cfg.MaxAttempts,
	}
}

// Run polls until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) {
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		if n, err := r.RunOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			slog.Warn("outbox relay pass failed", "error", err.Error())
		} else if n > 0 {
			slog.Debug("outbox relay pass", "processed", n)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RunOnce claims one batch of due jobs and publishes them. Jobs that fail to
// publish are requeued with backoff until maxAttempts, then marked failed.
func (r *Relay) RunOnce(ctx context.Context) (int, error) {
	processed := 0
	err := r.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		processed = 0
		now := r.clock.Now()

		jobs, err := tx.Notifications().ClaimDue(ctx, now, r.batchSize)
		if err != nil {
			return err
		}

		for _, job := range jobs {
			if err := r.deliver(ctx, tx.Notifications(), job, now); err != nil {
				return err
			}
			processed++
		}
		return nil
	})
	return processed, err
}

func (r *Relay) deliver(ctx context.Context, repo shared.NotificationRepository, job shared.NotificationJob, now time.Time) error {
	msg, err := r.message(job, now)
	if err == nil {
		err = r.writer.WriteMessages(ctx, msg)
	}
	if err == nil {
		return repo.UpdateJobStatus(ctx, job.ID, shared.NotificationStatusSent, nil, job.RunAt)
	}

	lastError := err.Error()
	attempts := job.Attempts + 1
	if attempts >= r.maxAttempts {
		slog.Error("outbox job failed permanently", "job_id", job.ID, "topic", job.Topic, "attempts", attempts, "error", lastError)
		return repo.UpdateJobStatus(ctx, job.ID, shared.NotificationStatusFailed, &lastError, job.RunAt)
	}

	slog.Warn("outbox job publish failed, requeued", "job_id", job.ID, "topic", job.Topic, "attempts", attempts, "error", lastError)
	return repo.UpdateJobStatus(ctx, job.ID, shared.NotificationStatusQueued, &lastError, now.Add(r.backoff(attempts)))
}

func (r *Relay) message(job shared.NotificationJob, now time.Time) (kafka.Message, error) {
	env := Envelope{
		EventID:    uuid.NewString(),
		EventType:  job.Topic,
		OccurredAt: now,
		Producer:   producerName,
		Payload:    json.RawMessage(job.Payload),
	}
	b, err := json.Marshal(env)
	if err != nil {
		return kafka.Message{}, errs.Wrap(err, "marshal outbox envelope")
	}
	return kafka.Message{
		Key:   []byte(job.Topic),
		Value: b,
		Time:  now,
		Headers: []kafka.Header{
			{Key: "x-event-type", Value: []byte(job.Topic)},
			{Key: "x-job-kind", Value: []byte(job.Kind)},
		},
	}, nil
}

func (r *Relay) backoff(attempts int) time.Duration {
	return time.Duration(1<<min(attempts, 10)) * r.pollInterval
}
