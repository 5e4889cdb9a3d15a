package events

import (
	"context"
	"fmt"
	"sync"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type message struct {
	key   string
	value []byte
}

type subscription struct {
	group   string
	handler Handler
}

// MemoryBus is an in-process channel with Kafka-like semantics: messages are routed to a
// partition by key and each partition is consumed by one goroutine, so events of one user are
// applied in publish order.
type MemoryBus struct {
	partitions []chan message
	balancer   *kafka.Hash
	subs       []subscription
	wg         sync.WaitGroup
	mu         sync.RWMutex
	started    bool
	closed     bool
	logger     *zap.Logger
}

func NewMemoryBus(partitions, bufferSize int, logger *zap.Logger) *MemoryBus {
	if partitions <= 0 {
		partitions = 1
	}
	b := &MemoryBus{
		partitions: make([]chan message, partitions),
		balancer:   &kafka.Hash{},
		logger:     logger,
	}
	for i := range b.partitions {
		b.partitions[i] = make(chan message, bufferSize)
	}
	return b
}

func (b *MemoryBus) Subscribe(group string, handler Handler) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.started {
		return fmt.Errorf("cannot subscribe %q after start", group)
	}
	b.subs = append(b.subs, subscription{group: group, handler: handler})
	return nil
}

func (b *MemoryBus) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return fmt.Errorf("bus is closed")
	}
	if b.started {
		return nil
	}
	b.started = true

	for i, ch := range b.partitions {
		b.wg.Add(1)
		go b.consume(ctx, i, ch)
	}
	return nil
}

func (b *MemoryBus) Publish(ctx context.Context, events []TransactionCreated) error {
	for _, e := range events {
		value, err := Encode(e)
		if err != nil {
			return fmt.Errorf("failed to encode event %s: %w", e.ID, err)
		}
		if err := b.send(ctx, message{key: e.UserID, value: value}); err != nil {
			return err
		}
	}
	return nil
}

func (b *MemoryBus) send(ctx context.Context, msg message) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return fmt.Errorf("bus is closed")
	}

	ids := make([]int, len(b.partitions))
	for i := range ids {
		ids[i] = i
	}
	p := b.balancer.Balance(kafka.Message{Key: []byte(msg.key)}, ids...)

	select {
	case b.partitions[p] <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *MemoryBus) consume(ctx context.Context, partition int, ch <-chan message) {
	defer b.wg.Done()

	for msg := range ch {
		event, err := Decode(msg.value)
		if err != nil {
			b.logger.Error("Dropping malformed event",
				zap.Int("partition", partition),
				zap.String("key", msg.key),
				zap.Error(err),
			)
			continue
		}

		for _, sub := range b.subs {
			if err := sub.handler(ctx, event); err != nil {
				b.logger.Error("Event handler failed",
					zap.String("group", sub.group),
					zap.String("event_id", event.ID),
					zap.Error(err),
				)
			}
		}
	}
}

// Stop rejects new messages, drains what is queued and waits for the consumers.
func (b *MemoryBus) Stop(ctx context.Context) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	for _, ch := range b.partitions {
		close(ch)
	}
	b.mu.Unlock()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

var (
	_ Publisher  = (*MemoryBus)(nil)
	_ Subscriber = (*MemoryBus)(nil)
)
