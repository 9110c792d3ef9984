package entities

import (
	"strings"
	"time"
)

// Doctor is a bookable practitioner in the discovery catalog
type Doctor struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Specialty     string    `json:"specialty"`
	Location      string    `json:"location"`
	AvailableTime string    `json:"available_time"` // free text, e.g. "10:00 AM - 1:00 PM"
	Image         string    `json:"image,omitempty"`
	Experience    int       `json:"experience,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Validate checks the fields the admin form requires
func (d *Doctor) Validate() string {
	switch {
	case strings.TrimSpace(d.Name) == "":
		return "doctor name is required"
	case strings.TrimSpace(d.Specialty) == "":
		return "specialty is required"
	case strings.TrimSpace(d.Location) == "":
		return "location is required"
	case strings.TrimSpace(d.AvailableTime) == "":
		return "available time is required"
	case d.Experience < 0:
		return "experience must not be negative"
	}
	return ""
}
