//go:build integration

package publisher

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"

	"verdict/internal/audit"
	"verdict/internal/policy/models"
	"verdict/pkg/domain"
	"verdict/pkg/testutil/containers"
)

const testTopic = "verdict.policy.decisions.test"

type KafkaPublisherSuite struct {
	suite.Suite
	ctx      context.Context
	redpanda *containers.RedpandaContainer
	producer *kgo.Client
	consumer *kgo.Client
}

func TestKafkaPublisherSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(KafkaPublisherSuite))
}

func (s *KafkaPublisherSuite) SetupSuite() {
	s.ctx = context.Background()
	s.redpanda = containers.NewRedpandaContainer(s.T())

	s.producer = s.redpanda.NewClient(s.T())

	admin := kadm.NewClient(s.producer)
	_, err := admin.CreateTopic(s.ctx, 1, 1, nil, testTopic)
	s.Require().NoError(err)

	s.consumer = s.redpanda.NewClient(s.T(),
		kgo.ConsumeTopics(testTopic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
}

func (s *KafkaPublisherSuite) newRecord(userID domain.UserID) audit.DecisionRecord {
	return audit.DecisionRecord{
		ID:            uuid.New(),
		CorrelationID: "corr-1",
		UserID:        userID,
		Endpoint:      "/api/orders",
		Operation:     domain.OperationWrite,
		Allowed:       true,
		Reason:        models.ReasonRoleDefaultAllowed,
		PolicyVersion: "v1",
		DecidedAt:     time.Now().UTC(),
	}
}

func (s *KafkaPublisherSuite) TestPublishRoundTrip() {
	buffer := NewRingBuffer(64)
	pub, err := NewKafka(s.producer, buffer, nil,
		WithTopic(testTopic),
		WithFlushInterval(50*time.Millisecond),
	)
	s.Require().NoError(err)

	runCtx, cancel := context.WithCancel(s.ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = pub.Run(runCtx)
	}()

	userID := domain.UserID(uuid.New())
	record := s.newRecord(userID)
	pub.Publish(record)

	fetchCtx, fetchCancel := context.WithTimeout(s.ctx, 30*time.Second)
	defer fetchCancel()

	fetches := s.consumer.PollFetches(fetchCtx)
	s.Require().NoError(fetches.Err())

	records := fetches.Records()
	s.Require().Len(records, 1)
	s.Equal(userID.String(), string(records[0].Key), "messages are keyed by user")

	var payload map[string]any
	s.Require().NoError(json.Unmarshal(records[0].Value, &payload))
	s.Equal(record.ID.String(), payload["id"])
	s.Equal("corr-1", payload["correlation_id"])
	s.Equal("/api/orders", payload["endpoint"])
	s.Equal(true, payload["allowed"])
	s.Equal(models.ReasonRoleDefaultAllowed, payload["reason"])

	cancel()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		s.Fail("publisher did not shut down")
	}
}

func (s *KafkaPublisherSuite) TestShutdownDrainsBuffer() {
	buffer := NewRingBuffer(64)
	pub, err := NewKafka(s.producer, buffer, nil,
		WithTopic(testTopic),
		// Long interval: nothing drains before the shutdown path runs.
		WithFlushInterval(time.Hour),
	)
	s.Require().NoError(err)

	runCtx, cancel := context.WithCancel(s.ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = pub.Run(runCtx)
	}()

	for range 3 {
		pub.Publish(s.newRecord(domain.UserID(uuid.New())))
	}
	cancel()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		s.Fail("publisher did not shut down")
	}
	s.Equal(0, buffer.Len(), "final drain empties the buffer")

	fetchCtx, fetchCancel := context.WithTimeout(s.ctx, 30*time.Second)
	defer fetchCancel()

	consumed := 0
	for consumed < 3 {
		fetches := s.consumer.PollFetches(fetchCtx)
		s.Require().NoError(fetches.Err())
		consumed += len(fetches.Records())
	}
	s.Equal(3, consumed)
}
