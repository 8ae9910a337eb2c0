package stream

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

// Consumer is a durable pull consumer over the raw-document subject.
// Messages are acknowledged by the caller only after the document
// reaches a terminal pipeline phase, so a crash mid-document means
// redelivery, not loss.
type Consumer struct {
	consumer  jetstream.Consumer
	batchSize int
}

func (c *Conn) NewConsumer(ctx context.Context) (*Consumer, error) {
	consumer, err := c.js.CreateOrUpdateConsumer(ctx, c.cfg.Stream, jetstream.ConsumerConfig{
		Durable:       c.cfg.ConsumerGroup,
		FilterSubject: c.cfg.SubjectRaw,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       2 * time.Minute,
		MaxDeliver:    3,
	})
	if err != nil {
		return nil, fmt.Errorf("creating consumer %s: %w", c.cfg.ConsumerGroup, err)
	}

	batch := c.cfg.BatchSize
	if batch <= 0 {
		batch = 1
	}
	return &Consumer{consumer: consumer, batchSize: batch}, nil
}

// Fetch pulls up to one batch of messages, waiting briefly when the
// subject is idle. A context cancellation surfaces as an error once
// the current wait expires.
func (c *Consumer) Fetch(ctx context.Context) ([]jetstream.Msg, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	batch, err := c.consumer.Fetch(c.batchSize, jetstream.FetchMaxWait(5*time.Second))
	if err != nil {
		return nil, fmt.Errorf("fetching batch: %w", err)
	}

	var out []jetstream.Msg
	for msg := range batch.Messages() {
		out = append(out, msg)
	}
	if err := batch.Error(); err != nil && len(out) == 0 {
		return nil, fmt.Errorf("fetching batch: %w", err)
	}
	return out, nil
}
