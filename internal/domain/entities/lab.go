package entities

import (
	"time"

	"github.com/zatekoja/healthmarket/pkg/money"
)

// LabTest is a diagnostic test catalog item
type LabTest struct {
	ID           int64       `json:"id"`
	Name         string      `json:"name"`
	Description  string      `json:"description,omitempty"`
	Price        money.Paise `json:"price"`
	MRP          money.Paise `json:"mrp"`
	Preparations string      `json:"preparations,omitempty"`
	Includes     []string    `json:"includes,omitempty"`
	Image        string      `json:"image,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// Validate checks the admin catalog form rules
func (t *LabTest) Validate() string {
	return validateCatalogPrice(t.Name, t.Price, t.MRP)
}

// LabBookingStatus represents the status of a lab test booking
type LabBookingStatus string

const (
	LabBookingStatusBooked          LabBookingStatus = "Booked"
	LabBookingStatusSampleCollected LabBookingStatus = "Sample Collected"
	LabBookingStatusReportReady     LabBookingStatus = "Report Ready"
	LabBookingStatusCancelled       LabBookingStatus = "Cancelled"
)

// TrackingBookingConfirmed seeds every new booking's history
const TrackingBookingConfirmed = "Booking Confirmed"

var labFlow = statusFlow[LabBookingStatus]{
	sequence:  []LabBookingStatus{LabBookingStatusBooked, LabBookingStatusSampleCollected, LabBookingStatusReportReady},
	cancelled: LabBookingStatusCancelled,
}

// Valid reports whether s is a known booking status
func (s LabBookingStatus) Valid() bool { return labFlow.valid(s) }

// Terminal reports whether the booking is finished or cancelled
func (s LabBookingStatus) Terminal() bool { return labFlow.terminal(s) }

// CanTransitionTo reports whether the strict transition table allows s -> next
func (s LabBookingStatus) CanTransitionTo(next LabBookingStatus) bool { return labFlow.allows(s, next) }

// LabSlots are the home-collection windows a booking may pick
var LabSlots = []string{
	"07:00 AM - 09:00 AM",
	"09:00 AM - 11:00 AM",
	"11:00 AM - 01:00 PM",
	"04:00 PM - 06:00 PM",
}

// IsLabSlot reports whether slot is one of LabSlots
func IsLabSlot(slot string) bool {
	for _, s := range LabSlots {
		if s == slot {
			return true
		}
	}
	return false
}

// LabTestBooking is a home sample-collection booking. TestName and Subtotal
// are snapshots of the catalog entry at booking time.
type LabTestBooking struct {
	ID                 int64            `json:"id"`
	UserID             int64            `json:"user_id"`
	PatientName        string           `json:"patient_name"`
	TestID             int64            `json:"test_id"`
	TestName           string           `json:"test_name"`
	BookingDate        time.Time        `json:"booking_date"`
	CollectionDate     string           `json:"collection_date,omitempty"` // YYYY-MM-DD
	Slot               string           `json:"slot"`
	Address            Address          `json:"address"`
	Subtotal           money.Paise      `json:"subtotal"`
	GST                money.Paise      `json:"gst"`
	TotalAmount        money.Paise      `json:"total_amount"`
	Status             LabBookingStatus `json:"status"`
	DeliveryBoy        *DeliveryPerson  `json:"delivery_boy,omitempty"`
	TrackingHistory    []TrackingEntry  `json:"tracking_history"`
	CancellationReason string           `json:"cancellation_reason,omitempty"`
}

// Track appends a tracking entry
func (b *LabTestBooking) Track(status string, at time.Time, notes string) {
	b.TrackingHistory = appendTracking(b.TrackingHistory, status, at, notes)
}
