// Package redpanda provides Redpanda/Kafka queue integration.
//
// It handles message publishing and consumption for ingest jobs. Producing
// and consuming both run under Kafka transactions for exactly-once handoff.
package redpanda

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/plugin/kotel"
	"go.opentelemetry.io/otel"

	"github.com/hiresight/resume-ingest/internal/adapter/observability"
	"github.com/hiresight/resume-ingest/internal/domain"
)

// TopicIngest is the Kafka topic for ingest jobs.
const TopicIngest = "ingest-jobs"

// Producer wraps a transactional Kafka producer and implements domain.Queue.
type Producer struct {
	client *kgo.Client
	// serializes transactions; one in flight at a time
	txn chan struct{}
}

// NewProducer constructs a Producer with exactly-once semantics.
func NewProducer(brokers []string) (*Producer, error) {
	return NewProducerWithTransactionalID(brokers, "resume-ingest-producer")
}

// NewProducerWithTransactionalID constructs a Producer with a custom
// transactional ID, letting tests avoid conflicts between producers.
func NewProducerWithTransactionalID(brokers []string, transactionalID string) (*Producer, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("no seed brokers provided")
	}

	kotelService := kotel.NewKotel(kotel.WithTracer(
		kotel.NewTracer(kotel.TracerProvider(otel.GetTracerProvider())),
	))
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.TransactionalID(transactionalID),
		kgo.RequestRetries(10),
		kgo.WithHooks(kotelService.Hooks()...),
	)
	if err != nil {
		return nil, fmt.Errorf("redpanda client: %w", err)
	}

	if err := createTopicIfNotExists(context.Background(), client, TopicIngest, 1, 1); err != nil {
		slog.Warn("failed to create topic, it may already exist",
			slog.String("topic", TopicIngest), slog.Any("error", err))
	}

	return &Producer{
		client: client,
		txn:    make(chan struct{}, 1),
	}, nil
}

// EnqueueIngest enqueues an ingest task and returns its task id.
func (p *Producer) EnqueueIngest(ctx domain.Context, payload domain.IngestTaskPayload) (string, error) {
	return p.enqueueToTopic(ctx, payload, TopicIngest)
}

func (p *Producer) enqueueToTopic(ctx domain.Context, payload domain.IngestTaskPayload, topic string) (string, error) {
	select {
	case p.txn <- struct{}{}:
		defer func() { <-p.txn }()
	case <-ctx.Done():
		return "", ctx.Err()
	}

	if err := p.client.BeginTransaction(); err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}

	b, err := json.Marshal(payload)
	if err != nil {
		p.abort(ctx)
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	record := &kgo.Record{
		Topic: topic,
		Key:   []byte(payload.JobID), // job id as key for ordering
		Value: b,
		Headers: []kgo.RecordHeader{
			{Key: "job_id", Value: []byte(payload.JobID)},
			{Key: "file_key", Value: []byte(payload.FileKey)},
		},
	}
	e := kgo.AbortingFirstErrPromise(p.client)
	p.client.Produce(ctx, record, e.Promise())
	if err := e.Err(); err != nil {
		p.abort(ctx)
		return "", fmt.Errorf("produce: %w", err)
	}

	if err := p.client.EndTransaction(ctx, kgo.TryCommit); err != nil {
		return "", fmt.Errorf("commit transaction: %w", err)
	}

	observability.JobsEnqueuedTotal.WithLabelValues("ingest").Inc()
	slog.Info("ingest task enqueued", slog.String("topic", topic), slog.String("job_id", payload.JobID))
	return payload.JobID, nil
}

func (p *Producer) abort(ctx context.Context) {
	if err := p.client.EndTransaction(ctx, kgo.TryAbort); err != nil {
		slog.Error("failed to abort transaction", slog.Any("error", err))
	}
}

// Close closes the producer.
func (p *Producer) Close() error {
	if p.client != nil {
		p.client.Close()
	}
	return nil
}
