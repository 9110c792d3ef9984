package database

import (
	"context"

	"github.com/zatekoja/healthmarket/internal/adapters/storage"
	"github.com/zatekoja/healthmarket/internal/domain/entities"
	"github.com/zatekoja/healthmarket/internal/domain/providers"
	"github.com/zatekoja/healthmarket/internal/domain/repositories"
)

// MedicineOrderAdapter implements the MedicineOrderRepository interface
type MedicineOrderAdapter struct {
	orders *collection[entities.MedicineOrder]
}

// NewMedicineOrderAdapter creates a new medicine order adapter
func NewMedicineOrderAdapter(store providers.StorageProvider) repositories.MedicineOrderRepository {
	return &MedicineOrderAdapter{
		orders: newCollection(store, storage.KeyMedicineOrders, "medicine order",
			func(o *entities.MedicineOrder) int64 { return o.ID },
			func(o *entities.MedicineOrder, id int64) { o.ID = id }),
	}
}

// Create stores a new order
func (a *MedicineOrderAdapter) Create(ctx context.Context, order *entities.MedicineOrder) error {
	return a.orders.create(ctx, order)
}

// GetByID retrieves an order by ID
func (a *MedicineOrderAdapter) GetByID(ctx context.Context, id int64) (*entities.MedicineOrder, error) {
	return a.orders.get(ctx, id)
}

// Update replaces an order
func (a *MedicineOrderAdapter) Update(ctx context.Context, order *entities.MedicineOrder) error {
	return a.orders.update(ctx, order)
}

// Modify applies fn to the stored order and saves the result atomically
func (a *MedicineOrderAdapter) Modify(ctx context.Context, id int64, fn func(*entities.MedicineOrder) error) (*entities.MedicineOrder, error) {
	return a.orders.modify(ctx, id, fn)
}

// List returns orders newest first
func (a *MedicineOrderAdapter) List(ctx context.Context, filter repositories.OrderFilter) ([]*entities.MedicineOrder, error) {
	orders, err := a.orders.all(ctx)
	if err != nil {
		return nil, err
	}
	orders = filterItems(orders, func(o *entities.MedicineOrder) bool {
		return (filter.UserID == 0 || o.UserID == filter.UserID) &&
			(filter.Status == "" || o.Status == filter.Status)
	})
	return newestFirst(orders), nil
}
