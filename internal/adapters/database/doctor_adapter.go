package database

import (
	"context"
	"strings"

	"github.com/zatekoja/healthmarket/internal/adapters/storage"
	"github.com/zatekoja/healthmarket/internal/domain/entities"
	"github.com/zatekoja/healthmarket/internal/domain/providers"
	"github.com/zatekoja/healthmarket/internal/domain/repositories"
	"github.com/zatekoja/healthmarket/pkg/utils"
)

// DoctorAdapter implements the DoctorRepository interface
type DoctorAdapter struct {
	doctors *collection[entities.Doctor]
}

// NewDoctorAdapter creates a new doctor adapter
func NewDoctorAdapter(store providers.StorageProvider) repositories.DoctorRepository {
	return &DoctorAdapter{
		doctors: newCollection(store, storage.KeyDoctors, "doctor",
			func(d *entities.Doctor) int64 { return d.ID },
			func(d *entities.Doctor, id int64) { d.ID = id }),
	}
}

// List returns doctors matching the filter
func (a *DoctorAdapter) List(ctx context.Context, filter repositories.DoctorFilter) ([]*entities.Doctor, error) {
	doctors, err := a.doctors.all(ctx)
	if err != nil {
		return nil, err
	}

	doctors = filterItems(doctors, func(d *entities.Doctor) bool {
		if filter.Specialty != "" && !strings.EqualFold(d.Specialty, filter.Specialty) {
			return false
		}
		if filter.Location != "" && !utils.ContainsFold(d.Location, filter.Location) {
			return false
		}
		return filter.Query == "" ||
			utils.ContainsFold(d.Name, filter.Query) ||
			utils.ContainsFold(d.Specialty, filter.Query)
	})
	return paginate(doctors, filter.Limit, filter.Offset), nil
}

// GetByID retrieves a doctor by ID
func (a *DoctorAdapter) GetByID(ctx context.Context, id int64) (*entities.Doctor, error) {
	return a.doctors.get(ctx, id)
}

// Create stores a new doctor
func (a *DoctorAdapter) Create(ctx context.Context, doctor *entities.Doctor) error {
	return a.doctors.create(ctx, doctor)
}

// Update replaces a doctor
func (a *DoctorAdapter) Update(ctx context.Context, doctor *entities.Doctor) error {
	return a.doctors.update(ctx, doctor)
}

// Delete removes a doctor
func (a *DoctorAdapter) Delete(ctx context.Context, id int64) error {
	return a.doctors.delete(ctx, id)
}
