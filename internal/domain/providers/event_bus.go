package providers

import (
	"context"
	"fmt"

	"github.com/zatekoja/healthmarket/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to order events
type EventBus interface {
	// Publish publishes an event to all subscribers of channel
	Publish(ctx context.Context, channel string, event *entities.OrderEvent) error

	// Subscribe delivers events on channel until ctx is done
	Subscribe(ctx context.Context, channel string) (<-chan *entities.OrderEvent, error)

	// Close closes the event bus and all subscriptions
	Close() error
}

const (
	// EventChannelOrderUpdates carries every order event
	EventChannelOrderUpdates = "orders:updates"

	// EventChannelOrderPrefix prefixes per-record channels
	EventChannelOrderPrefix = "orders:"
)

// GetOrderChannel returns the channel for one booking or order
func GetOrderChannel(kind entities.OrderKind, id int64) string {
	return fmt.Sprintf("%s%s:%d", EventChannelOrderPrefix, kind, id)
}
