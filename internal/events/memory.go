package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

const subscriberBuffer = 64

type subscriber struct {
	ch   chan Event
	done chan struct{} // закрывается, когда подписчик перестал читать
}

// MemoryBus шина внутри процесса. Используется, когда Redis не настроен.
type MemoryBus struct {
	mu     sync.RWMutex
	subs   map[*subscriber]struct{}
	logger *zap.Logger
}

func NewMemoryBus(logger *zap.Logger) *MemoryBus {
	return &MemoryBus{
		subs:   make(map[*subscriber]struct{}),
		logger: logger,
	}
}

// Publish доставляет событие всем подписчикам. Если буфер подписчика
// заполнен, ждёт, пока он освободится или пока не отменят ctx.
func (b *MemoryBus) Publish(ctx context.Context, ev Event) error {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub := range b.subs {
		select {
		case sub.ch <- ev:
		case <-sub.done:
		case <-ctx.Done():
			b.logger.Warn("Event not delivered, subscriber is behind",
				zap.String("event_type", string(ev.Type)))
			return fmt.Errorf("publish %s: %w", ev.Type, ctx.Err())
		}
	}

	return nil
}

func (b *MemoryBus) Subscribe(ctx context.Context, handler Handler) error {
	sub := &subscriber{
		ch:   make(chan Event, subscriberBuffer),
		done: make(chan struct{}),
	}

	b.mu.Lock()
	b.subs[sub] = struct{}{}
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		delete(b.subs, sub)
		b.mu.Unlock()
	}()
	// Отпускает ждущих в Publish раньше, чем берётся мьютекс на удаление
	defer close(sub.done)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-sub.ch:
			handler(ctx, ev)
		}
	}
}
