package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/healthmarket/internal/application/services"
	"github.com/zatekoja/healthmarket/internal/domain/entities"
	"github.com/zatekoja/healthmarket/internal/domain/providers"
	"github.com/zatekoja/healthmarket/internal/infrastructure/observability"
)

const heartbeatInterval = 30 * time.Second

// accessCheck returns an error when req may not see the record
type accessCheck func(ctx context.Context, req services.Requester, id int64) error

// SSEHandler streams order tracking events as Server-Sent Events
type SSEHandler struct {
	eventBus  providers.EventBus
	access    map[entities.OrderKind]accessCheck
	heartbeat time.Duration
	clients   map[string]map[chan *entities.OrderEvent]bool // channel -> clients
	mu        sync.RWMutex
	done      chan struct{}
	closeOnce sync.Once
}

// NewSSEHandler creates a new SSE handler. The services decide who may
// follow which record.
func NewSSEHandler(
	eventBus providers.EventBus,
	appointments *services.AppointmentService,
	orders *services.MedicineOrderService,
	bookings *services.LabBookingService,
) *SSEHandler {
	return &SSEHandler{
		eventBus: eventBus,
		access: map[entities.OrderKind]accessCheck{
			entities.OrderKindAppointment: func(ctx context.Context, req services.Requester, id int64) error {
				_, err := appointments.GetAppointment(ctx, req, id)
				return err
			},
			entities.OrderKindMedicineOrder: func(ctx context.Context, req services.Requester, id int64) error {
				_, err := orders.GetOrder(ctx, req, id)
				return err
			},
			entities.OrderKindLabBooking: func(ctx context.Context, req services.Requester, id int64) error {
				_, err := bookings.GetBooking(ctx, req, id)
				return err
			},
		},
		heartbeat: heartbeatInterval,
		clients:   make(map[string]map[chan *entities.OrderEvent]bool),
		done:      make(chan struct{}),
	}
}

// Close ends every open stream and refuses new ones. Other requests are
// left to drain.
func (h *SSEHandler) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// SetHeartbeat overrides the keep-alive interval
func (h *SSEHandler) SetHeartbeat(d time.Duration) {
	h.heartbeat = d
}

// StreamOrderUpdates handles SSE connections for one booking or order
// GET /api/stream/orders/{kind}/{id}
func (h *SSEHandler) StreamOrderUpdates(w http.ResponseWriter, r *http.Request) {
	req, ok := requester(w, r)
	if !ok {
		return
	}
	kind := entities.OrderKind(r.PathValue("kind"))
	check, known := h.access[kind]
	if !known {
		respondWithError(w, http.StatusBadRequest, "unknown order kind")
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := check(r.Context(), req, id); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	h.stream(w, r, providers.GetOrderChannel(kind, id), map[string]interface{}{
		"kind":      kind,
		"record_id": id,
	})
}

// StreamAllUpdates handles the staff dashboard stream of every order event
// GET /api/admin/stream/orders
func (h *SSEHandler) StreamAllUpdates(w http.ResponseWriter, r *http.Request) {
	req, ok := requester(w, r)
	if !ok {
		return
	}
	if !req.Role.IsStaff() {
		respondWithError(w, http.StatusForbidden, "staff access required")
		return
	}
	h.stream(w, r, providers.EventChannelOrderUpdates, map[string]interface{}{})
}

func (h *SSEHandler) stream(w http.ResponseWriter, r *http.Request, channel string, hello map[string]interface{}) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}
	logger := observability.LoggerFromContext(r.Context())

	select {
	case <-h.done:
		respondWithError(w, http.StatusServiceUnavailable, "server is shutting down")
		return
	default:
	}

	eventChan, err := h.eventBus.Subscribe(r.Context(), channel)
	if err != nil {
		logger.Error().Err(err).Str("channel", channel).Msg("failed to subscribe to order events")
		respondWithError(w, http.StatusServiceUnavailable, "event stream unavailable")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	clientChan := make(chan *entities.OrderEvent, 10)
	h.registerClient(channel, clientChan)
	defer h.unregisterClient(channel, clientChan)

	hello["timestamp"] = time.Now()
	h.sendEvent(w, "connected", hello)
	flusher.Flush()

	go h.forwardEvents(r.Context(), eventChan, clientChan)

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			logger.Debug().Str("channel", channel).Msg("client disconnected from order stream")
			return
		case <-h.done:
			logger.Debug().Str("channel", channel).Msg("closing order stream for shutdown")
			return
		case <-ticker.C:
			h.sendEvent(w, "heartbeat", map[string]interface{}{
				"timestamp": time.Now(),
			})
			flusher.Flush()
		case event := <-clientChan:
			if event == nil {
				continue
			}
			h.sendEvent(w, string(event.EventType), event)
			flusher.Flush()
		}
	}
}

// forwardEvents forwards events from the event bus to a client channel,
// dropping events for slow clients
func (h *SSEHandler) forwardEvents(ctx context.Context, eventChan <-chan *entities.OrderEvent, clientChan chan<- *entities.OrderEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-eventChan:
			if !ok {
				return
			}
			select {
			case clientChan <- event:
			default:
			}
		}
	}
}

func (h *SSEHandler) registerClient(channel string, clientChan chan *entities.OrderEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[channel] == nil {
		h.clients[channel] = make(map[chan *entities.OrderEvent]bool)
	}
	h.clients[channel][clientChan] = true
	log.Debug().Str("channel", channel).Int("clients", len(h.clients[channel])).Msg("stream client registered")
}

func (h *SSEHandler) unregisterClient(channel string, clientChan chan *entities.OrderEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, exists := h.clients[channel]; exists {
		delete(clients, clientChan)
		if len(clients) == 0 {
			delete(h.clients, channel)
		}
	}
}

func (h *SSEHandler) sendEvent(w http.ResponseWriter, eventType string, data interface{}) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal stream event")
		return
	}

	fmt.Fprintf(w, "event: %s\n", eventType)
	fmt.Fprintf(w, "data: %s\n\n", jsonData)
}

// GetClientCount returns the number of connected stream clients
func (h *SSEHandler) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	count := 0
	for _, clients := range h.clients {
		count += len(clients)
	}
	return count
}
