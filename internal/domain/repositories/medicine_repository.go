package repositories

import (
	"context"

	"github.com/zatekoja/healthmarket/internal/domain/entities"
)

// MedicineFilter narrows the pharmacy catalog
type MedicineFilter struct {
	Query    string
	Category string
	IDs      []int64
}

// MedicineRepository defines the interface for the pharmacy catalog
type MedicineRepository interface {
	List(ctx context.Context, filter MedicineFilter) ([]*entities.Medicine, error)
	GetByID(ctx context.Context, id int64) (*entities.Medicine, error)
	Create(ctx context.Context, medicine *entities.Medicine) error
	Update(ctx context.Context, medicine *entities.Medicine) error
	Delete(ctx context.Context, id int64) error
}

// OrderFilter narrows medicine order listings
type OrderFilter struct {
	UserID int64
	Status entities.OrderStatus
}

// MedicineOrderRepository defines the interface for medicine orders
type MedicineOrderRepository interface {
	Create(ctx context.Context, order *entities.MedicineOrder) error
	GetByID(ctx context.Context, id int64) (*entities.MedicineOrder, error)
	Update(ctx context.Context, order *entities.MedicineOrder) error

	// Modify runs fn on the stored order and saves it under the write lock.
	// Nothing is saved when fn fails.
	Modify(ctx context.Context, id int64, fn func(*entities.MedicineOrder) error) (*entities.MedicineOrder, error)

	List(ctx context.Context, filter OrderFilter) ([]*entities.MedicineOrder, error)
}

// WishlistRepository stores per-user medicine ids
type WishlistRepository interface {
	Get(ctx context.Context, userID int64) ([]int64, error)

	// Add is idempotent: an id already present is not added again
	Add(ctx context.Context, userID, medicineID int64) ([]int64, error)

	Remove(ctx context.Context, userID, medicineID int64) ([]int64, error)
}
