package repositories

import (
	"context"

	"github.com/zatekoja/healthmarket/internal/domain/entities"
)

// AddressRepository defines the interface for saved addresses
type AddressRepository interface {
	// ListByUser returns the user's addresses in creation order; the first
	// one is treated as the default
	ListByUser(ctx context.Context, userID int64) ([]*entities.Address, error)
	GetByID(ctx context.Context, id int64) (*entities.Address, error)
	Create(ctx context.Context, address *entities.Address) error
	Update(ctx context.Context, address *entities.Address) error
	Delete(ctx context.Context, id int64) error
}
