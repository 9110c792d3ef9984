package entities

import (
	"time"

	"github.com/zatekoja/healthmarket/pkg/money"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "Scheduled"
	AppointmentStatusCompleted AppointmentStatus = "Completed"
	AppointmentStatusCancelled AppointmentStatus = "Cancelled"
	AppointmentStatusNoShow    AppointmentStatus = "No-Show"
)

// Valid reports whether s is a known appointment status
func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusScheduled, AppointmentStatusCompleted, AppointmentStatusCancelled, AppointmentStatusNoShow:
		return true
	}
	return false
}

// Terminal reports whether no further status change is allowed
func (s AppointmentStatus) Terminal() bool {
	return s == AppointmentStatusCompleted || s == AppointmentStatusCancelled || s == AppointmentStatusNoShow
}

// Appointment is a consultation booked with a doctor. DoctorName is captured
// at booking time and is not refreshed when the doctor record changes.
type Appointment struct {
	ID                 int64             `json:"id"`
	UserID             int64             `json:"user_id"`
	PatientName        string            `json:"patient_name"`
	PatientPhone       string            `json:"patient_phone,omitempty"`
	DoctorID           int64             `json:"doctor_id"`
	DoctorName         string            `json:"doctor_name"`
	Specialty          string            `json:"specialty,omitempty"`
	AppointmentDate    string            `json:"appointment_date"` // YYYY-MM-DD
	AppointmentTime    string            `json:"appointment_time"` // e.g. "10:30 AM"
	HeartRate          *int              `json:"heart_rate,omitempty"`
	Symptoms           string            `json:"symptoms,omitempty"`
	Notes              string            `json:"notes,omitempty"`
	Report             string            `json:"report,omitempty"` // data:application/pdf;base64,...
	ReportName         string            `json:"report_name,omitempty"`
	ConsultationFee    money.Paise       `json:"consultation_fee"`
	GST                money.Paise       `json:"gst"`
	TotalAmount        money.Paise       `json:"total_amount"`
	Status             AppointmentStatus `json:"status"`
	CancellationReason string            `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}
