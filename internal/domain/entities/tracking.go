package entities

import (
	"strings"
	"time"
)

// TrackingEntry is one line of an order's append-only tracking history
type TrackingEntry struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Notes     string    `json:"notes,omitempty"`
}

// DeliveryPerson is the courier or phlebotomist assigned to an order
type DeliveryPerson struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// IsZero reports whether no one has been assigned
func (d *DeliveryPerson) IsZero() bool {
	return d == nil || (strings.TrimSpace(d.Name) == "" && strings.TrimSpace(d.Phone) == "")
}

// appendTracking returns history with one new entry
func appendTracking(history []TrackingEntry, status string, at time.Time, notes string) []TrackingEntry {
	return append(history, TrackingEntry{
		Status:    status,
		Timestamp: at,
		Notes:     notes,
	})
}

// statusFlow describes an ordered status catalog. Moves are allowed forward
// along the sequence and to the cancel status from any non-terminal state.
type statusFlow[S comparable] struct {
	sequence  []S
	cancelled S
}

func (f statusFlow[S]) index(s S) int {
	for i, candidate := range f.sequence {
		if candidate == s {
			return i
		}
	}
	return -1
}

func (f statusFlow[S]) valid(s S) bool {
	return s == f.cancelled || f.index(s) >= 0
}

func (f statusFlow[S]) terminal(s S) bool {
	return s == f.cancelled || f.index(s) == len(f.sequence)-1
}

func (f statusFlow[S]) allows(from, to S) bool {
	if !f.valid(from) || !f.valid(to) || from == to || f.terminal(from) {
		return false
	}
	if to == f.cancelled {
		return true
	}
	return f.index(to) > f.index(from)
}
