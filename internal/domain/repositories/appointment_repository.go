package repositories

import (
	"context"

	"github.com/zatekoja/healthmarket/internal/domain/entities"
)

// AppointmentRepository defines the interface for appointment data operations
type AppointmentRepository interface {
	// Create assigns the next id and stores the appointment
	Create(ctx context.Context, appointment *entities.Appointment) error

	// GetByID retrieves an appointment by ID
	GetByID(ctx context.Context, id int64) (*entities.Appointment, error)

	// Update replaces the stored appointment
	Update(ctx context.Context, appointment *entities.Appointment) error

	// Modify runs fn on the stored appointment and saves it under the write
	// lock. Nothing is saved when fn fails.
	Modify(ctx context.Context, id int64, fn func(*entities.Appointment) error) (*entities.Appointment, error)

	// List retrieves appointments matching the filter, newest first
	List(ctx context.Context, filter AppointmentFilter) ([]*entities.Appointment, error)
}

// AppointmentFilter defines filters for listing appointments
type AppointmentFilter struct {
	UserID   int64
	DoctorID int64
	Status   entities.AppointmentStatus
	Date     string
	Limit    int
	Offset   int
}
