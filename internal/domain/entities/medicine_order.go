package entities

import (
	"time"

	"github.com/zatekoja/healthmarket/pkg/money"
)

// OrderStatus represents the status of a medicine order
type OrderStatus string

const (
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusDelivered  OrderStatus = "Delivered"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

// TrackingOrderPlaced seeds every new order's history
const TrackingOrderPlaced = "Order Placed"

var orderFlow = statusFlow[OrderStatus]{
	sequence:  []OrderStatus{OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered},
	cancelled: OrderStatusCancelled,
}

// Valid reports whether s is a known order status
func (s OrderStatus) Valid() bool { return orderFlow.valid(s) }

// Terminal reports whether the order is delivered or cancelled
func (s OrderStatus) Terminal() bool { return orderFlow.terminal(s) }

// CanTransitionTo reports whether the strict transition table allows s -> next
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool { return orderFlow.allows(s, next) }

// OrderItem is a cart line with name and prices snapshotted at order time
type OrderItem struct {
	MedicineID   int64       `json:"medicine_id"`
	MedicineName string      `json:"medicine_name"`
	Quantity     int         `json:"quantity"`
	Price        money.Paise `json:"price"`
	MRP          money.Paise `json:"mrp"`
}

// MedicineOrder is a pharmacy order with an embedded address copy
type MedicineOrder struct {
	ID                 int64           `json:"id"`
	UserID             int64           `json:"user_id"`
	Items              []OrderItem     `json:"items"`
	DeliveryAddress    Address         `json:"delivery_address"`
	Subtotal           money.Paise     `json:"subtotal"`
	Savings            money.Paise     `json:"savings"`
	GST                money.Paise     `json:"gst"`
	DeliveryFee        money.Paise     `json:"delivery_fee"`
	PromiseFee         money.Paise     `json:"promise_fee"`
	TotalAmount        money.Paise     `json:"total_amount"`
	Status             OrderStatus     `json:"status"`
	OrderDate          time.Time       `json:"order_date"`
	DeliveryBoy        *DeliveryPerson `json:"delivery_boy,omitempty"`
	TrackingHistory    []TrackingEntry `json:"tracking_history"`
	CancellationReason string          `json:"cancellation_reason,omitempty"`
}

// Track appends a tracking entry
func (o *MedicineOrder) Track(status string, at time.Time, notes string) {
	o.TrackingHistory = appendTracking(o.TrackingHistory, status, at, notes)
}

// ItemCount is the total quantity across lines
func (o *MedicineOrder) ItemCount() int {
	n := 0
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}
