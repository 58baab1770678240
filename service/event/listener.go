package event

import (
	"context"
	"sync"
)

// Listener passes published events to handler in publication order
type Listener[T any] struct {
	publisher *Publisher[T]
	handler   func(*Event[T])
	mux       sync.Mutex
	cancel    context.CancelFunc
	done      chan struct{}
}

func NewListener[T any](publisher *Publisher[T], handler func(*Event[T])) *Listener[T] {
	return &Listener[T]{
		publisher: publisher,
		handler:   handler,
	}
}

// Stop stops consuming and waits for the running handler to return
func (l *Listener[T]) Stop() {
	l.mux.Lock()
	cancel, done := l.cancel, l.done
	l.cancel, l.done = nil, nil
	l.mux.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Start consumes events in the background; it is a no-op when already started
func (l *Listener[T]) Start(ctx context.Context) {
	l.mux.Lock()
	defer l.mux.Unlock()
	if l.cancel != nil {
		return
	}
	ctx, l.cancel = context.WithCancel(ctx)
	l.done = make(chan struct{})
	go func(done chan struct{}) {
		defer close(done)
		for {
			event, err := l.publisher.Consume(ctx)
			if err != nil {
				return
			}
			if event != nil {
				l.handler(event)
			}
		}
	}(l.done)
}
