package events

import (
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/healthmarket/internal/domain/entities"
)

const subscriberBuffer = 100

// fanout tracks local subscriber channels per bus channel
type fanout struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan *entities.OrderEvent]struct{}
}

func newFanout() *fanout {
	return &fanout{subscribers: make(map[string]map[chan *entities.OrderEvent]struct{})}
}

// add registers a new subscriber and reports whether it is the first on channel
func (f *fanout) add(channel string) (chan *entities.OrderEvent, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	first := len(f.subscribers[channel]) == 0
	if f.subscribers[channel] == nil {
		f.subscribers[channel] = make(map[chan *entities.OrderEvent]struct{})
	}
	ch := make(chan *entities.OrderEvent, subscriberBuffer)
	f.subscribers[channel][ch] = struct{}{}
	return ch, first
}

// remove closes ch and reports whether channel has no subscribers left
func (f *fanout) remove(channel string, ch chan *entities.OrderEvent) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	subs, ok := f.subscribers[channel]
	if !ok {
		return false
	}
	if _, ok := subs[ch]; !ok {
		return false
	}
	delete(subs, ch)
	close(ch)

	if len(subs) == 0 {
		delete(f.subscribers, channel)
		return true
	}
	return false
}

// broadcast delivers event to every subscriber of channel without blocking
func (f *fanout) broadcast(channel string, event *entities.OrderEvent) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	for sub := range f.subscribers[channel] {
		select {
		case sub <- event:
		default:
			log.Warn().Str("channel", channel).Str("event_id", event.ID).Msg("subscriber channel full, skipping event")
		}
	}
}

// closeChannel closes every subscriber of channel
func (f *fanout) closeChannel(channel string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for sub := range f.subscribers[channel] {
		close(sub)
	}
	delete(f.subscribers, channel)
}

func (f *fanout) channels() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]string, 0, len(f.subscribers))
	for channel := range f.subscribers {
		out = append(out, channel)
	}
	return out
}
