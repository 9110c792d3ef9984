package repositories

import (
	"context"

	"github.com/zatekoja/healthmarket/internal/domain/entities"
)

// DoctorFilter narrows doctor listings; empty fields match everything
type DoctorFilter struct {
	Specialty string
	Location  string
	Query     string // matched against name and specialty
	Limit     int
	Offset    int
}

// DoctorRepository defines the interface for doctor catalog operations
type DoctorRepository interface {
	// List returns doctors matching the filter in id order
	List(ctx context.Context, filter DoctorFilter) ([]*entities.Doctor, error)

	// GetByID retrieves a doctor by ID
	GetByID(ctx context.Context, id int64) (*entities.Doctor, error)

	// Create assigns the next id and stores the doctor
	Create(ctx context.Context, doctor *entities.Doctor) error

	// Update replaces the stored doctor with the same id
	Update(ctx context.Context, doctor *entities.Doctor) error

	// Delete permanently removes a doctor; appointments keep their snapshot
	Delete(ctx context.Context, id int64) error
}

// DoctorSearchRepository is an optional full-text index over doctors
type DoctorSearchRepository interface {
	Index(ctx context.Context, doctor *entities.Doctor) error
	Delete(ctx context.Context, id int64) error
	Search(ctx context.Context, filter DoctorFilter) ([]int64, error)
}
