package event

import (
	"context"

	"github.com/viant/fluxmesh/internal/clock"
	"github.com/viant/fluxmesh/service/messaging"
	"github.com/viant/fluxmesh/service/messaging/memory"
)

// Publisher publishes events to a queue
type Publisher[T any] struct {
	queue messaging.Queue[Event[T]]
}

// NewPublisher creates a publisher; a nil queue uses an in-memory queue
func NewPublisher[T any](queue messaging.Queue[Event[T]]) *Publisher[T] {
	if queue == nil {
		queue = memory.NewQueue[Event[T]](memory.DefaultConfig())
	}
	return &Publisher[T]{queue: queue}
}

// Publish publishes an event; nil publisher is a no-op
func (p *Publisher[T]) Publish(ctx context.Context, event *Event[T]) error {
	if p == nil {
		return nil
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = clock.Now()
	}
	return p.queue.Publish(ctx, event)
}

// Consume blocks until the next event or ctx is done
func (p *Publisher[T]) Consume(ctx context.Context) (*Event[T], error) {
	msg, err := p.queue.Consume(ctx)
	if err != nil || msg == nil {
		return nil, err
	}
	if err = msg.Ack(); err != nil {
		return nil, err
	}
	return msg.T(), nil
}
