package event

import (
	"context"
	"log"

	"github.com/viant/powerflux/service/messaging"
)

// Handler processes an event; an error makes the event eligible for redelivery
type Handler[T any] func(*Event[T]) error

// Listener consumes events in a background goroutine and hands them to a handler
type Listener[T any] struct {
	publisher *Publisher[T]
	handler   Handler[T]
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewListener creates a listener
func NewListener[T any](publisher *Publisher[T], handler Handler[T]) *Listener[T] {
	ctx, cancel := context.WithCancel(context.Background())
	return &Listener[T]{
		publisher: publisher,
		handler:   handler,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Stop stops consuming; an event already taken off the queue is still handled
func (l *Listener[T]) Stop() {
	l.cancel()
}

// Start starts consuming events
func (l *Listener[T]) Start() {
	go func() {
		for l.ctx.Err() == nil {
			msg, err := l.publisher.Consume(l.ctx)
			if err != nil {
				if l.ctx.Err() != nil {
					return
				}
				log.Printf("failed to consume event: %v", err)
				continue
			}
			if msg != nil {
				l.dispatch(msg)
			}
		}
	}()
}

func (l *Listener[T]) dispatch(msg messaging.Message[Event[T]]) {
	if err := l.handler(msg.T()); err != nil {
		if nackErr := msg.Nack(err); nackErr != nil {
			log.Printf("failed to nack event %v: %v", msg.ID(), nackErr)
		}
		return
	}
	if err := msg.Ack(); err != nil {
		log.Printf("failed to ack event %v: %v", msg.ID(), err)
	}
}
