package database

import (
	"context"

	"github.com/zatekoja/healthmarket/internal/adapters/storage"
	"github.com/zatekoja/healthmarket/internal/domain/entities"
	"github.com/zatekoja/healthmarket/internal/domain/providers"
	"github.com/zatekoja/healthmarket/internal/domain/repositories"
)

// AppointmentAdapter implements the AppointmentRepository interface
type AppointmentAdapter struct {
	appointments *collection[entities.Appointment]
}

// NewAppointmentAdapter creates a new appointment adapter
func NewAppointmentAdapter(store providers.StorageProvider) repositories.AppointmentRepository {
	return &AppointmentAdapter{
		appointments: newCollection(store, storage.KeyAppointments, "appointment",
			func(a *entities.Appointment) int64 { return a.ID },
			func(a *entities.Appointment, id int64) { a.ID = id }),
	}
}

// Create creates a new appointment
func (a *AppointmentAdapter) Create(ctx context.Context, appointment *entities.Appointment) error {
	return a.appointments.create(ctx, appointment)
}

// GetByID retrieves an appointment by ID
func (a *AppointmentAdapter) GetByID(ctx context.Context, id int64) (*entities.Appointment, error) {
	return a.appointments.get(ctx, id)
}

// Update updates an appointment
func (a *AppointmentAdapter) Update(ctx context.Context, appointment *entities.Appointment) error {
	return a.appointments.update(ctx, appointment)
}

// Modify applies fn to the stored appointment and saves the result atomically
func (a *AppointmentAdapter) Modify(ctx context.Context, id int64, fn func(*entities.Appointment) error) (*entities.Appointment, error) {
	return a.appointments.modify(ctx, id, fn)
}

// List retrieves appointments matching the filter, newest first
func (a *AppointmentAdapter) List(ctx context.Context, filter repositories.AppointmentFilter) ([]*entities.Appointment, error) {
	appointments, err := a.appointments.all(ctx)
	if err != nil {
		return nil, err
	}

	appointments = filterItems(appointments, func(ap *entities.Appointment) bool {
		switch {
		case filter.UserID != 0 && ap.UserID != filter.UserID:
			return false
		case filter.DoctorID != 0 && ap.DoctorID != filter.DoctorID:
			return false
		case filter.Status != "" && ap.Status != filter.Status:
			return false
		case filter.Date != "" && ap.AppointmentDate != filter.Date:
			return false
		}
		return true
	})
	return paginate(newestFirst(appointments), filter.Limit, filter.Offset), nil
}
