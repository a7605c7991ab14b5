//go:build unit

package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"techpoints/internal/infra/fallback"
	"techpoints/internal/infra/localcache"
	"techpoints/internal/pkg/clock"
	"techpoints/internal/pkg/config"
	"techpoints/internal/usecase/shared"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type fakeWriter struct {
	mu   sync.Mutex
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

type RelayTestSuite struct {
	suite.Suite
	clock  *clock.MockClock
	uow    *fallback.UoW
	writer *fakeWriter
	relay  *Relay
}

func (s *RelayTestSuite) SetupTest() {
	s.clock = clock.NewMockClock(time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC))
	s.uow = fallback.NewUoW(localcache.NewMemoryCache(s.clock), s.clock, 0)
	s.writer = &fakeWriter{}
	s.relay = NewRelay(s.uow, s.writer, s.clock, config.KafkaConfig{
		Topic:        "techpoints.events",
		PollInterval: time.Second,
		BatchSize:    10,
		MaxAttempts:  2,
	})
}

func (s *RelayTestSuite) enqueue(topic string, payload any, runAt time.Time) {
	b, err := json.Marshal(payload)
	s.Require().NoError(err)
	err = s.uow.Within(context.Background(), func(ctx context.Context, tx shared.Tx) error {
		return tx.Notifications().CreateJob(ctx, "event", topic, b, runAt)
	})
	s.Require().NoError(err)
}

func (s *RelayTestSuite) jobs() []shared.NotificationJob {
	var out []shared.NotificationJob
	err := s.uow.WithinReadOnly(context.Background(), func(ctx context.Context, tx shared.Tx) error {
		var err error
		out, err = tx.Notifications().ClaimDue(ctx, s.clock.Now().Add(24*time.Hour), 100)
		return err
	})
	s.Require().NoError(err)
	return out
}

func (s *RelayTestSuite) TestPublishesDueJobsInEnvelope() {
	s.enqueue(shared.TopicProductRedeemed, map[string]string{"product_id": "p1"}, s.clock.Now())
	s.enqueue(shared.TopicPointsAdjusted, map[string]int{"amount": 5}, s.clock.Now().Add(time.Hour))

	n, err := s.relay.RunOnce(context.Background())
	s.Require().NoError(err)
	s.Equal(1, n)

	s.Require().Len(s.writer.msgs, 1)
	msg := s.writer.msgs[0]
	s.Equal(shared.TopicProductRedeemed, string(msg.Key))

	var env Envelope
	s.Require().NoError(json.Unmarshal(msg.Value, &env))
	s.Equal(shared.TopicProductRedeemed, env.EventType)
	s.Equal(producerName, env.Producer)
	s.NotEmpty(env.EventID)
	s.JSONEq(`{"product_id":"p1"}`, string(env.Payload))

	remaining := s.jobs()
	s.Require().Len(remaining, 1, "only the future job stays queued")
	s.Equal(shared.TopicPointsAdjusted, remaining[0].Topic)
}

func (s *RelayTestSuite) TestFailedPublishRequeuesThenFails() {
	s.enqueue(shared.TopicCatalogChanged, map[string]string{"action": "created"}, s.clock.Now())
	s.writer.err = errors.New("broker down")

	_, err := s.relay.RunOnce(context.Background())
	s.Require().NoError(err)

	queued := s.jobs()
	s.Require().Len(queued, 1)
	s.Equal(1, queued[0].Attempts)
	s.True(queued[0].RunAt.After(s.clock.Now()), "requeued with backoff")

	n, err := s.relay.RunOnce(context.Background())
	s.Require().NoError(err)
	s.Zero(n, "backoff not yet elapsed")

	s.clock.Add(time.Minute)
	_, err = s.relay.RunOnce(context.Background())
	s.Require().NoError(err)
	s.Empty(s.jobs(), "job marked failed after max attempts")
}

func TestRelayTestSuite(t *testing.T) {
	suite.Run(t, new(RelayTestSuite))
}

func TestBackoffGrows(t *testing.T) {
	r := &Relay{pollInterval: time.Second}
	assert.Equal(t, 2*time.Second, r.backoff(1))
	assert.Equal(t, 8*time.Second, r.backoff(3))
	require.Equal(t, r.backoff(10), r.backoff(50))
}
