package repositories

import (
	"context"

	"github.com/zatekoja/healthmarket/internal/domain/entities"
)

// LabTestFilter narrows the lab test catalog
type LabTestFilter struct {
	Query string
}

// LabTestRepository defines the interface for the lab test catalog
type LabTestRepository interface {
	List(ctx context.Context, filter LabTestFilter) ([]*entities.LabTest, error)
	GetByID(ctx context.Context, id int64) (*entities.LabTest, error)
	Create(ctx context.Context, test *entities.LabTest) error
	Update(ctx context.Context, test *entities.LabTest) error
	Delete(ctx context.Context, id int64) error
}

// LabBookingFilter narrows lab booking listings
type LabBookingFilter struct {
	UserID int64
	Status entities.LabBookingStatus
}

// LabBookingRepository defines the interface for lab test bookings
type LabBookingRepository interface {
	Create(ctx context.Context, booking *entities.LabTestBooking) error
	GetByID(ctx context.Context, id int64) (*entities.LabTestBooking, error)
	Update(ctx context.Context, booking *entities.LabTestBooking) error

	// Modify runs fn on the stored booking and saves it under the write
	// lock. Nothing is saved when fn fails.
	Modify(ctx context.Context, id int64, fn func(*entities.LabTestBooking) error) (*entities.LabTestBooking, error)

	List(ctx context.Context, filter LabBookingFilter) ([]*entities.LabTestBooking, error)
}
