package events

import (
	"context"
	"sync"

	"github.com/zatekoja/healthmarket/internal/domain/entities"
	"github.com/zatekoja/healthmarket/internal/domain/providers"
)

// MemoryEventBus delivers events to subscribers in the same process. It is
// used when Redis is not configured.
type MemoryEventBus struct {
	fanout *fanout
	closed bool
	mu     sync.Mutex
}

// NewMemoryEventBus creates an in-process event bus
func NewMemoryEventBus() providers.EventBus {
	return &MemoryEventBus{fanout: newFanout()}
}

// Publish delivers event to current subscribers of channel
func (b *MemoryEventBus) Publish(_ context.Context, channel string, event *entities.OrderEvent) error {
	b.fanout.broadcast(channel, event)
	return nil
}

// Subscribe returns a channel that is closed when ctx ends
func (b *MemoryEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.OrderEvent, error) {
	ch, _ := b.fanout.add(channel)
	go func() {
		<-ctx.Done()
		b.fanout.remove(channel, ch)
	}()
	return ch, nil
}

// Close closes every subscriber channel
func (b *MemoryEventBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	for _, channel := range b.fanout.channels() {
		b.fanout.closeChannel(channel)
	}
	return nil
}
