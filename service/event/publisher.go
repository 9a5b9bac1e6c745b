package event

import (
	"context"

	"github.com/viant/powerflux/internal/clock"
	"github.com/viant/powerflux/service/messaging"
)

// Publisher publishes typed events to a queue
type Publisher[T any] struct {
	queue messaging.Queue[Event[T]]
}

// NewPublisher creates a publisher
func NewPublisher[T any](queue messaging.Queue[Event[T]]) *Publisher[T] {
	return &Publisher[T]{queue: queue}
}

// Publish stamps and publishes the event
func (p *Publisher[T]) Publish(ctx context.Context, event *Event[T]) error {
	event.CreatedAt = clock.Now()
	return p.queue.Publish(ctx, event)
}

// Consume takes the next event message off the queue; the caller must Ack or Nack it
func (p *Publisher[T]) Consume(ctx context.Context) (messaging.Message[Event[T]], error) {
	return p.queue.Consume(ctx)
}

// DeadLetters returns the number of events that exhausted their delivery retries
func (p *Publisher[T]) DeadLetters() int {
	if counter, ok := p.queue.(interface{ DLQSize() int }); ok {
		return counter.DLQSize()
	}
	return 0
}
