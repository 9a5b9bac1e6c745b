package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/viant/powerflux/model"
	"github.com/viant/powerflux/service/messaging"
)

func TestQueue(t *testing.T) {
	config := DefaultConfig()
	config.RetryDelay = 10 * time.Millisecond
	queue := NewQueue[model.Change](config)

	ctx := context.Background()
	change := model.Change{Kind: model.ChangeAdded, DeviceID: "A", Applied: 40, Total: 40, Remaining: 52}

	err := queue.Publish(ctx, &change)
	assert.NoError(t, err)
	assert.Equal(t, 1, queue.Size())

	message, err := queue.Consume(ctx)
	assert.NoError(t, err)
	assert.NotNil(t, message)
	assert.NotEmpty(t, message.ID())
	assert.Equal(t, 0, queue.Size())
	assert.Equal(t, change, *message.T())

	assert.NoError(t, message.Ack())
	assert.Error(t, message.Ack())
}

func TestQueueRetries(t *testing.T) {
	config := DefaultConfig()
	config.MaxRetries = 2
	config.RetryDelay = 10 * time.Millisecond
	queue := NewQueue[model.Change](config)

	ctx := context.Background()
	change := model.Change{Kind: model.ChangeUpdated, DeviceID: "C"}
	assert.NoError(t, queue.Publish(ctx, &change))

	var id string
	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		timeoutCtx, cancel := context.WithTimeout(ctx, time.Second)
		message, err := queue.Consume(timeoutCtx)
		cancel()
		assert.NoError(t, err)
		if id == "" {
			id = message.ID()
		}
		assert.Equal(t, id, message.ID())
		assert.NoError(t, message.Nack(fmt.Errorf("attempt %d failed", attempt)))
	}

	assert.Eventually(t, func() bool { return queue.DLQSize() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, queue.Size())
}

func TestQueueDropWhenFull(t *testing.T) {
	config := DefaultConfig()
	config.QueueBuffer = 1
	config.DropWhenFull = true
	queue := NewQueue[model.Change](config)

	ctx := context.Background()
	assert.NoError(t, queue.Publish(ctx, &model.Change{DeviceID: "A"}))
	assert.ErrorIs(t, queue.Publish(ctx, &model.Change{DeviceID: "B"}), messaging.ErrQueueFull)
	assert.Equal(t, 1, queue.Size())
}

func TestQueueConcurrency(t *testing.T) {
	queue := NewQueue[model.Change](DefaultConfig())

	ctx := context.Background()
	producers := 10
	perProducer := 10

	var wg sync.WaitGroup
	var consumed int
	var consumedMu sync.Mutex

	for i := 0; i < producers; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < perProducer; j++ {
				message, err := queue.Consume(ctx)
				if err != nil {
					t.Errorf("Error consuming: %v", err)
					return
				}
				assert.NoError(t, message.Ack())
				consumedMu.Lock()
				consumed++
				consumedMu.Unlock()
			}
		}()
		go func(producerID int) {
			defer wg.Done()
			for j := 0; j < perProducer; j++ {
				change := model.Change{DeviceID: fmt.Sprintf("p%d-d%d", producerID, j), Applied: float64(j)}
				if err := queue.Publish(ctx, &change); err != nil {
					t.Errorf("Error publishing: %v", err)
				}
			}
		}(i)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Test timed out")
	}

	assert.Equal(t, producers*perProducer, consumed)
	assert.Equal(t, 0, queue.Size())
}

func TestQueueContextCancellation(t *testing.T) {
	queue := NewQueue[model.Change](DefaultConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	change := model.Change{DeviceID: "A"}
	assert.Error(t, queue.Publish(ctx, &change))

	timeoutCtx, cancelTimeout := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancelTimeout()
	_, err := queue.Consume(timeoutCtx)
	assert.Error(t, err)

	assert.NoError(t, queue.Publish(context.Background(), &change))
	message, err := queue.Consume(context.Background())
	assert.NoError(t, err)
	assert.NotNil(t, message)
}
