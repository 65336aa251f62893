package eventhub

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azeventhubs/v2"
)

// Producer publishes each payload as a single-event batch.
type Producer struct {
	client *azeventhubs.ProducerClient
}

func NewProducer(connStr, eventHub string) (*Producer, error) {
	c, err := azeventhubs.NewProducerClientFromConnectionString(connStr, eventHub, nil)
	if err != nil {
		return nil, fmt.Errorf("producer client: %w", err)
	}
	return &Producer{client: c}, nil
}

// Publish ignores key: the service picks the partition.
func (p *Producer) Publish(ctx context.Context, _ string, body []byte) error {
	batch, err := p.client.NewEventDataBatch(ctx, nil)
	if err != nil {
		return fmt.Errorf("new batch: %w", err)
	}
	if err := batch.AddEventData(&azeventhubs.EventData{Body: body}, nil); err != nil {
		return fmt.Errorf("add event: %w", err)
	}
	if err := p.client.SendEventDataBatch(ctx, batch, nil); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

func (p *Producer) Close(ctx context.Context) error { return p.client.Close(ctx) }
