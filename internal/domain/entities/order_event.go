package entities

import (
	"time"

	"github.com/google/uuid"
)

// OrderKind names which record family an event belongs to
type OrderKind string

const (
	OrderKindAppointment   OrderKind = "appointment"
	OrderKindMedicineOrder OrderKind = "medicine_order"
	OrderKindLabBooking    OrderKind = "lab_booking"
)

// Valid reports whether k is a known kind
func (k OrderKind) Valid() bool {
	switch k {
	case OrderKindAppointment, OrderKindMedicineOrder, OrderKindLabBooking:
		return true
	}
	return false
}

// OrderEventType represents what happened to an order
type OrderEventType string

const (
	OrderEventCreated          OrderEventType = "created"
	OrderEventStatusChanged    OrderEventType = "status_changed"
	OrderEventDeliveryAssigned OrderEventType = "delivery_assigned"
	OrderEventCancelled        OrderEventType = "cancelled"
)

// OrderEvent is published whenever a booking or order changes
type OrderEvent struct {
	ID        string         `json:"id"`
	Kind      OrderKind      `json:"kind"`
	RecordID  int64          `json:"record_id"`
	UserID    int64          `json:"user_id"`
	EventType OrderEventType `json:"event_type"`
	Status    string         `json:"status"`
	Notes     string         `json:"notes,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// NewOrderEvent creates an event stamped with at
func NewOrderEvent(kind OrderKind, recordID, userID int64, eventType OrderEventType, status, notes string, at time.Time) *OrderEvent {
	return &OrderEvent{
		ID:        uuid.NewString(),
		Kind:      kind,
		RecordID:  recordID,
		UserID:    userID,
		EventType: eventType,
		Status:    status,
		Notes:     notes,
		Timestamp: at,
	}
}
