package messaging

import (
	"context"
)

// Queue represents an abstract message queue for any payload type
type Queue[T any] interface {
	// Publish adds a new message with payload to the queue
	Publish(ctx context.Context, t *T) error

	// Consume retrieves a single message from the queue, blocking until one is available
	Consume(ctx context.Context) (Message[T], error)
}

// Buffer is a queue that can be polled without blocking
type Buffer[T any] interface {
	Queue[T]

	// TryConsume retrieves the head message if any
	TryConsume() (Message[T], bool)

	// Size returns the number of queued messages
	Size() int

	// Drain removes and returns all queued payloads in order
	Drain() []T
}

// Message represents a message retrieved from a queue
type Message[T any] interface {
	// T returns the payload of this message
	T() *T

	// Ack acknowledges successful processing of this message
	Ack() error

	// Nack indicates failure in processing this message
	Nack(err error) error
}
