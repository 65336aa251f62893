package eventhub

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azeventhubs/v2"
	"golang.org/x/sync/errgroup"

	"ordersim/internal/transport"
)

const (
	maxEventsPerReceive   = 50
	defaultReceiveTimeout = 10 * time.Second
)

// ErrClosed is returned by Receive after Close.
var ErrClosed = errors.New("eventhub: consumer closed")

// partitionReceiver abstracts azeventhubs.PartitionClient for testability.
type partitionReceiver interface {
	ReceiveEvents(ctx context.Context, count int, options *azeventhubs.ReceiveEventsOptions) ([]*azeventhubs.ReceivedEventData, error)
	Close(ctx context.Context) error
}

type closer interface {
	Close(ctx context.Context) error
}

// Consumer reads every partition of a hub and hands events out one at a time.
// Nothing is checkpointed; every run starts fresh at the chosen position.
type Consumer struct {
	client         closer
	partitions     map[string]partitionReceiver
	receiveTimeout time.Duration

	events chan transport.Event
	done   chan struct{}
	err    error

	startOnce sync.Once
	started   bool
	cancel    context.CancelFunc

	closeOnce sync.Once
	closeErr  error
}

// NewConsumer connects, lists partitions and opens one partition client each.
func NewConsumer(ctx context.Context, connStr, eventHub, consumerGroup string, start transport.StartPosition) (*Consumer, error) {
	client, err := azeventhubs.NewConsumerClientFromConnectionString(connStr, eventHub, consumerGroup, nil)
	if err != nil {
		return nil, fmt.Errorf("consumer client: %w", err)
	}
	props, err := client.GetEventHubProperties(ctx, nil)
	if err != nil {
		_ = client.Close(ctx)
		return nil, fmt.Errorf("hub properties: %w", err)
	}

	parts := make(map[string]partitionReceiver, len(props.PartitionIDs))
	for _, id := range props.PartitionIDs {
		pc, err := client.NewPartitionClient(id, &azeventhubs.PartitionClientOptions{
			StartPosition: startPosition(start),
		})
		if err != nil {
			for _, opened := range parts {
				_ = opened.Close(ctx)
			}
			_ = client.Close(ctx)
			return nil, fmt.Errorf("partition %s: %w", id, err)
		}
		parts[id] = pc
	}
	return newConsumer(client, parts, defaultReceiveTimeout), nil
}

// NewConsumerWith is only for tests to inject fake partitions.
func NewConsumerWith(parts map[string]partitionReceiver, receiveTimeout time.Duration) *Consumer {
	return newConsumer(nil, parts, receiveTimeout)
}

func newConsumer(client closer, parts map[string]partitionReceiver, receiveTimeout time.Duration) *Consumer {
	return &Consumer{
		client:         client,
		partitions:     parts,
		receiveTimeout: receiveTimeout,
		events:         make(chan transport.Event),
		done:           make(chan struct{}),
	}
}

func startPosition(p transport.StartPosition) azeventhubs.StartPosition {
	yes := true
	if p == transport.StartEarliest {
		return azeventhubs.StartPosition{Earliest: &yes}
	}
	return azeventhubs.StartPosition{Latest: &yes}
}

func (c *Consumer) start() {
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.started = true

	g, gctx := errgroup.WithContext(ctx)
	for id, pc := range c.partitions {
		id, pc := id, pc
		g.Go(func() error { return c.pump(gctx, id, pc) })
	}
	go func() {
		c.err = g.Wait()
		close(c.done)
	}()
}

func (c *Consumer) pump(ctx context.Context, id string, pc partitionReceiver) error {
	for {
		rctx, cancel := context.WithTimeout(ctx, c.receiveTimeout)
		events, err := pc.ReceiveEvents(rctx, maxEventsPerReceive, nil)
		cancel()

		if ctx.Err() != nil {
			return nil
		}
		if err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("partition %s: receive: %w", id, err)
		}

		for _, e := range events {
			ev := transport.Event{PartitionID: id, SequenceNumber: e.SequenceNumber, Body: e.Body}
			if e.EnqueuedTime != nil {
				ev.EnqueuedTime = *e.EnqueuedTime
			}
			select {
			case c.events <- ev:
			case <-ctx.Done():
				return nil
			}
		}
	}
}

// Receive starts the partition pumps on first use.
func (c *Consumer) Receive(ctx context.Context) (transport.Event, error) {
	c.startOnce.Do(c.start)
	select {
	case ev := <-c.events:
		return ev, nil
	case <-c.done:
		if c.err != nil {
			return transport.Event{}, c.err
		}
		return transport.Event{}, ErrClosed
	case <-ctx.Done():
		return transport.Event{}, ctx.Err()
	}
}

// Close stops the pumps and releases every partition client and the client.
func (c *Consumer) Close(ctx context.Context) error {
	c.closeOnce.Do(func() { c.closeErr = c.close(ctx) })
	return c.closeErr
}

func (c *Consumer) close(ctx context.Context) error {
	c.startOnce.Do(func() {})
	if c.started {
		c.cancel()
		<-c.done
	} else {
		close(c.done)
	}

	var errs []error
	for id, pc := range c.partitions {
		if err := pc.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("close partition %s: %w", id, err))
		}
	}
	if c.client != nil {
		if err := c.client.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("close client: %w", err))
		}
	}
	return errors.Join(errs...)
}
