package kafkastream

import (
	"context"
	"fmt"

	"github.com/segmentio/kafka-go"
)

// kafkaMessageWriter abstracts kafka.Writer for testability.
type kafkaMessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer writes one message per order, synchronously.
type Producer struct {
	writer kafkaMessageWriter
}

func NewProducer(ep Endpoint, topic string) *Producer {
	return &Producer{writer: &kafka.Writer{
		Addr:         kafka.TCP(ep.Brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Async:        false,
		Transport:    ep.transport(),
	}}
}

// NewProducerWith is only for tests to inject a fake writer.
func NewProducerWith(w kafkaMessageWriter) *Producer {
	return &Producer{writer: w}
}

func (p *Producer) Publish(ctx context.Context, key string, body []byte) error {
	msg := kafka.Message{Value: body}
	if key != "" {
		msg.Key = []byte(key)
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	return nil
}

func (p *Producer) Close(context.Context) error { return p.writer.Close() }
