// Package transport defines the publish-one / receive-next contract the send
// and receive loops drive. Implementations live in the eventhub and kafka
// subpackages.
package transport

import (
	"context"
	"time"
)

// Publisher sends one event per call. Retries, if any, belong to the client.
type Publisher interface {
	Publish(ctx context.Context, key string, body []byte) error
	Close(ctx context.Context) error
}

// Event is one record received from the stream.
type Event struct {
	PartitionID    string
	SequenceNumber int64
	EnqueuedTime   time.Time
	Body           []byte
}

// Stream yields events one at a time. Receive blocks until an event arrives,
// the stream fails, or ctx is done.
type Stream interface {
	Receive(ctx context.Context) (Event, error)
	Close(ctx context.Context) error
}

// StartPosition selects where a new subscription begins.
type StartPosition string

const (
	StartLatest   StartPosition = "latest"
	StartEarliest StartPosition = "earliest"
)

// ParseStartPosition accepts "latest" or "earliest".
func ParseStartPosition(s string) (StartPosition, bool) {
	switch StartPosition(s) {
	case StartLatest, StartEarliest:
		return StartPosition(s), true
	}
	return "", false
}
