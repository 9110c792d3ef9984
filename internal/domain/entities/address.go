package entities

import "strings"

// AddressType labels a saved address
type AddressType string

const (
	AddressTypeHome AddressType = "Home"
	AddressTypeWork AddressType = "Work"
)

// Address is a saved delivery/collection address. Orders hold a full copy,
// never a reference, so later edits do not rewrite past orders.
type Address struct {
	ID           int64       `json:"id"`
	UserID       int64       `json:"user_id"`
	FullName     string      `json:"full_name"`
	Phone        string      `json:"phone"`
	AddressLine1 string      `json:"address_line1"`
	AddressLine2 string      `json:"address_line2,omitempty"`
	City         string      `json:"city"`
	State        string      `json:"state"`
	Pincode      string      `json:"pincode"`
	Type         AddressType `json:"type"`
}

// MissingField reports the first blank required field, or ""
func (a *Address) MissingField() string {
	fields := []struct {
		name  string
		value string
	}{
		{"full name", a.FullName},
		{"phone", a.Phone},
		{"address line 1", a.AddressLine1},
		{"city", a.City},
		{"state", a.State},
		{"pincode", a.Pincode},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return f.name
		}
	}
	return ""
}

// ValidType reports whether the address type is Home or Work
func (a *Address) ValidType() bool {
	return a.Type == AddressTypeHome || a.Type == AddressTypeWork
}
