package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"verdict/internal/audit"
	"verdict/internal/audit/metrics"
)

const (
	// DefaultTopic is the decision stream downstream analytics consume.
	DefaultTopic = "verdict.policy.decisions"

	defaultBatchSize     = 200
	defaultFlushInterval = time.Second
)

// kafkaPayload is the JSON published per record. Field names are part of the
// consumer contract; change them only with a topic version bump.
type kafkaPayload struct {
	ID            string   `json:"id"`
	CorrelationID string   `json:"correlation_id"`
	RequestID     string   `json:"request_id,omitempty"`
	UserID        string   `json:"user_id"`
	CompanyID     string   `json:"company_id,omitempty"`
	CompanyType   string   `json:"company_type,omitempty"`
	Roles         []string `json:"roles,omitempty"`
	Endpoint      string   `json:"endpoint"`
	Method        string   `json:"method,omitempty"`
	Operation     string   `json:"operation"`
	Scope         string   `json:"scope,omitempty"`
	Allowed       bool     `json:"allowed"`
	Reason        string   `json:"reason"`
	PolicyVersion string   `json:"policy_version"`
	LatencyMs     int64    `json:"latency_ms"`
	RequestIP     string   `json:"request_ip,omitempty"`
	Device        string   `json:"device,omitempty"`
	DecidedAt     string   `json:"decided_at"`
}

// Kafka publishes buffered decision records to a Kafka topic. Enqueueing is
// non-blocking; a background Run loop drains the buffer in batches.
type Kafka struct {
	client  *kgo.Client
	buffer  *RingBuffer
	topic   string
	logger  *slog.Logger
	metrics *metrics.Metrics

	batchSize     int
	flushInterval time.Duration
}

// Option configures a Kafka publisher.
type Option func(*Kafka)

// WithTopic overrides the destination topic.
func WithTopic(topic string) Option {
	return func(p *Kafka) {
		if topic != "" {
			p.topic = topic
		}
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Kafka) { p.metrics = m }
}

// WithBatchSize overrides how many records a drain cycle publishes at most.
func WithBatchSize(n int) Option {
	return func(p *Kafka) {
		if n > 0 {
			p.batchSize = n
		}
	}
}

// WithFlushInterval overrides the drain cadence.
func WithFlushInterval(d time.Duration) Option {
	return func(p *Kafka) {
		if d > 0 {
			p.flushInterval = d
		}
	}
}

// NewKafka constructs a publisher around an existing client and buffer.
func NewKafka(client *kgo.Client, buffer *RingBuffer, logger *slog.Logger, opts ...Option) (*Kafka, error) {
	if client == nil {
		return nil, fmt.Errorf("kafka client is required")
	}
	if buffer == nil {
		return nil, fmt.Errorf("buffer is required")
	}

	p := &Kafka{
		client:        client,
		buffer:        buffer,
		topic:         DefaultTopic,
		logger:        logger,
		batchSize:     defaultBatchSize,
		flushInterval: defaultFlushInterval,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Publish enqueues a record for async delivery. Never blocks; a full buffer
// drops the oldest record and counts it.
func (p *Kafka) Publish(record audit.DecisionRecord) {
	if !p.buffer.Enqueue(record) {
		p.metrics.IncrementDropped()
		if p.logger != nil {
			p.logger.Warn("audit publish buffer full, dropped oldest record")
		}
	}
	p.metrics.IncrementPublished()
}

// Run drains the buffer until the context is cancelled, then performs one
// final drain and flushes the client so a graceful shutdown loses nothing
// that was buffered.
func (p *Kafka) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			drainCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			p.drain(drainCtx)
			if err := p.client.Flush(drainCtx); err != nil && p.logger != nil {
				p.logger.Error("audit publisher flush on shutdown failed", "error", err)
			}
			return ctx.Err()
		case <-ticker.C:
			p.drain(ctx)
		}
	}
}

func (p *Kafka) drain(ctx context.Context) {
	for {
		batch := p.buffer.DequeueBatch(p.batchSize)
		if len(batch) == 0 {
			return
		}
		for _, record := range batch {
			p.produce(ctx, record)
		}
		if len(batch) < p.batchSize {
			return
		}
	}
}

func (p *Kafka) produce(ctx context.Context, record audit.DecisionRecord) {
	payload := kafkaPayload{
		ID:            record.ID.String(),
		CorrelationID: record.CorrelationID,
		RequestID:     record.RequestID,
		UserID:        record.UserID.String(),
		Roles:         record.Roles,
		Endpoint:      record.Endpoint,
		Method:        record.Method,
		Operation:     record.Operation.String(),
		Scope:         string(record.Scope),
		Allowed:       record.Allowed,
		Reason:        record.Reason,
		PolicyVersion: record.PolicyVersion,
		LatencyMs:     record.LatencyMs,
		RequestIP:     record.RequestIP,
		Device:        record.Device,
		DecidedAt:     record.DecidedAt.UTC().Format(time.RFC3339Nano),
	}
	if !record.CompanyID.IsNil() {
		payload.CompanyID = record.CompanyID.String()
	}
	if record.CompanyType != "" {
		payload.CompanyType = record.CompanyType.String()
	}

	value, err := json.Marshal(payload)
	if err != nil {
		p.metrics.IncrementPublishFailure()
		if p.logger != nil {
			p.logger.ErrorContext(ctx, "marshal audit payload failed", "error", err, "record_id", record.ID.String())
		}
		return
	}

	// Keyed by user so one subject's decisions stay ordered per partition.
	msg := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(record.UserID.String()),
		Value: value,
	}
	p.client.Produce(ctx, msg, func(_ *kgo.Record, err error) {
		if err != nil {
			p.metrics.IncrementPublishFailure()
			if p.logger != nil {
				p.logger.Error("audit publish failed", "error", err, "record_id", record.ID.String())
			}
		}
	})
}
