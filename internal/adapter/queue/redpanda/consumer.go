package redpanda

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/plugin/kotel"
	"go.opentelemetry.io/otel"

	"github.com/hiresight/resume-ingest/internal/domain"
)

// ProcessFunc handles one ingest task. A returned error marks the task
// failed; the offset commits either way since the job row records the
// failure.
type ProcessFunc func(ctx context.Context, payload domain.IngestTaskPayload) error

// Consumer pulls ingest tasks from Kafka inside a transactional group
// session and dispatches them to a bounded worker pool.
type Consumer struct {
	session *kgo.GroupTransactSession
	process ProcessFunc
	workers int
}

// NewConsumer constructs a Consumer with exactly-once semantics.
func NewConsumer(brokers []string, groupID string, workers int, process ProcessFunc) (*Consumer, error) {
	return NewConsumerWithTopic(brokers, groupID, "resume-ingest-consumer", TopicIngest, workers, process)
}

// NewConsumerWithTopic constructs a Consumer on a custom topic and
// transactional ID, letting tests isolate themselves.
func NewConsumerWithTopic(brokers []string, groupID, transactionalID, topic string, workers int, process ProcessFunc) (*Consumer, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("no seed brokers provided")
	}
	if groupID == "" {
		return nil, fmt.Errorf("missing required group ID")
	}
	if workers < 1 {
		workers = 1
	}

	tempClient, err := kgo.NewClient(kgo.SeedBrokers(brokers...))
	if err != nil {
		return nil, fmt.Errorf("temp client: %w", err)
	}
	if err := createTopicIfNotExists(context.Background(), tempClient, topic, 1, 1); err != nil {
		slog.Warn("failed to create topic, it may already exist",
			slog.String("topic", topic), slog.Any("error", err))
	}
	tempClient.Close()

	kotelService := kotel.NewKotel(kotel.WithTracer(
		kotel.NewTracer(kotel.TracerProvider(otel.GetTracerProvider())),
	))
	session, err := kgo.NewGroupTransactSession(
		kgo.SeedBrokers(brokers...),
		kgo.TransactionalID(transactionalID),
		kgo.ConsumerGroup(groupID),
		kgo.ConsumeTopics(topic),
		kgo.FetchIsolationLevel(kgo.ReadCommitted()),
		kgo.RequireStableFetchOffsets(),
		kgo.WithHooks(kotelService.Hooks()...),
	)
	if err != nil {
		return nil, fmt.Errorf("transact session: %w", err)
	}

	return &Consumer{session: session, process: process, workers: workers}, nil
}

// Run polls until ctx is cancelled. Each fetched batch is handled inside one
// transaction; records within a batch process concurrently up to the worker
// bound.
func (c *Consumer) Run(ctx context.Context) error {
	slog.Info("consumer started", slog.Int("workers", c.workers))
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		fetches := c.session.PollFetches(ctx)
		if fetches.IsClientClosed() {
			return nil
		}
		if errs := fetches.Errors(); len(errs) > 0 {
			for _, e := range errs {
				if e.Err == context.Canceled {
					return ctx.Err()
				}
				slog.Error("fetch error", slog.String("topic", e.Topic), slog.Any("error", e.Err))
			}
			continue
		}
		if fetches.Empty() {
			continue
		}

		if err := c.session.Begin(); err != nil {
			slog.Error("begin transaction failed", slog.Any("error", err))
			continue
		}

		c.handleBatch(ctx, fetches)

		if _, err := c.session.End(ctx, kgo.TryCommit); err != nil {
			slog.Error("commit failed", slog.Any("error", err))
		}
	}
}

func (c *Consumer) handleBatch(ctx context.Context, fetches kgo.Fetches) {
	sem := make(chan struct{}, c.workers)
	var wg sync.WaitGroup
	fetches.EachRecord(func(rec *kgo.Record) {
		wg.Add(1)
		sem <- struct{}{}
		go func(rec *kgo.Record) {
			defer wg.Done()
			defer func() { <-sem }()
			c.handleRecord(ctx, rec)
		}(rec)
	})
	wg.Wait()
}

func (c *Consumer) handleRecord(ctx context.Context, rec *kgo.Record) {
	var payload domain.IngestTaskPayload
	if err := json.Unmarshal(rec.Value, &payload); err != nil {
		slog.Error("malformed task payload dropped",
			slog.String("topic", rec.Topic), slog.Any("error", err))
		return
	}
	if err := c.process(ctx, payload); err != nil {
		slog.Error("ingest task failed",
			slog.String("job_id", payload.JobID), slog.Any("error", err))
		return
	}
	slog.Info("ingest task processed", slog.String("job_id", payload.JobID))
}

// Close closes the underlying session.
func (c *Consumer) Close() {
	if c.session != nil {
		c.session.Close()
	}
}
