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

// MedicineAdapter implements the MedicineRepository interface
type MedicineAdapter struct {
	medicines *collection[entities.Medicine]
}

// NewMedicineAdapter creates a new medicine adapter
func NewMedicineAdapter(store providers.StorageProvider) repositories.MedicineRepository {
	return &MedicineAdapter{
		medicines: newCollection(store, storage.KeyMedicines, "medicine",
			func(m *entities.Medicine) int64 { return m.ID },
			func(m *entities.Medicine, id int64) { m.ID = id }),
	}
}

// List returns medicines matching the filter in id order
func (a *MedicineAdapter) List(ctx context.Context, filter repositories.MedicineFilter) ([]*entities.Medicine, error) {
	medicines, err := a.medicines.all(ctx)
	if err != nil {
		return nil, err
	}

	var wanted map[int64]bool
	if len(filter.IDs) > 0 {
		wanted = make(map[int64]bool, len(filter.IDs))
		for _, id := range filter.IDs {
			wanted[id] = true
		}
	}

	return filterItems(medicines, func(m *entities.Medicine) bool {
		if wanted != nil && !wanted[m.ID] {
			return false
		}
		if filter.Category != "" && !strings.EqualFold(m.Category, filter.Category) {
			return false
		}
		return utils.ContainsFold(m.Name, filter.Query)
	}), nil
}

// GetByID retrieves a medicine by ID
func (a *MedicineAdapter) GetByID(ctx context.Context, id int64) (*entities.Medicine, error) {
	return a.medicines.get(ctx, id)
}

// Create stores a new medicine
func (a *MedicineAdapter) Create(ctx context.Context, medicine *entities.Medicine) error {
	return a.medicines.create(ctx, medicine)
}

// Update replaces a medicine
func (a *MedicineAdapter) Update(ctx context.Context, medicine *entities.Medicine) error {
	return a.medicines.update(ctx, medicine)
}

// Delete removes a medicine
func (a *MedicineAdapter) Delete(ctx context.Context, id int64) error {
	return a.medicines.delete(ctx, id)
}
