package kafkastream

import (
	"context"
	"fmt"
	"strconv"

	"github.com/segmentio/kafka-go"

	"ordersim/internal/transport"
)

// messageFetcher abstracts kafka.Reader for testability.
type messageFetcher interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Consumer reads a topic through a consumer group. Offsets are never
// committed, so each run starts at the configured position.
type Consumer struct {
	reader messageFetcher
}

func NewConsumer(ep Endpoint, topic, groupID string, start transport.StartPosition) *Consumer {
	startOffset := kafka.LastOffset
	if start == transport.StartEarliest {
		startOffset = kafka.FirstOffset
	}
	return &Consumer{reader: kafka.NewReader(kafka.ReaderConfig{
		Brokers:     ep.Brokers,
		Topic:       topic,
		GroupID:     groupID,
		StartOffset: startOffset,
		MinBytes:    1,
		MaxBytes:    10e6,
		Dialer:      ep.dialer(),
	})}
}

// NewConsumerWith is only for tests to inject a fake reader.
func NewConsumerWith(r messageFetcher) *Consumer {
	return &Consumer{reader: r}
}

func (c *Consumer) Receive(ctx context.Context) (transport.Event, error) {
	m, err := c.reader.FetchMessage(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return transport.Event{}, ctx.Err()
		}
		return transport.Event{}, fmt.Errorf("fetch message: %w", err)
	}
	return transport.Event{
		PartitionID:    strconv.Itoa(m.Partition),
		SequenceNumber: m.Offset,
		EnqueuedTime:   m.Time,
		Body:           m.Value,
	}, nil
}

func (c *Consumer) Close(context.Context) error { return c.reader.Close() }
