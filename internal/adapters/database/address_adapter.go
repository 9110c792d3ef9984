package database

import (
	"context"

	"github.com/zatekoja/healthmarket/internal/adapters/storage"
	"github.com/zatekoja/healthmarket/internal/domain/entities"
	"github.com/zatekoja/healthmarket/internal/domain/providers"
	"github.com/zatekoja/healthmarket/internal/domain/repositories"
)

// AddressAdapter implements the AddressRepository interface
type AddressAdapter struct {
	addresses *collection[entities.Address]
}

// NewAddressAdapter creates a new address adapter
func NewAddressAdapter(store providers.StorageProvider) repositories.AddressRepository {
	return &AddressAdapter{
		addresses: newCollection(store, storage.KeyAddresses, "address",
			func(a *entities.Address) int64 { return a.ID },
			func(a *entities.Address, id int64) { a.ID = id }),
	}
}

// ListByUser returns the user's addresses in creation order
func (a *AddressAdapter) ListByUser(ctx context.Context, userID int64) ([]*entities.Address, error) {
	addresses, err := a.addresses.all(ctx)
	if err != nil {
		return nil, err
	}
	return filterItems(addresses, func(addr *entities.Address) bool { return addr.UserID == userID }), nil
}

// GetByID retrieves an address by ID
func (a *AddressAdapter) GetByID(ctx context.Context, id int64) (*entities.Address, error) {
	return a.addresses.get(ctx, id)
}

// Create stores a new address
func (a *AddressAdapter) Create(ctx context.Context, address *entities.Address) error {
	return a.addresses.create(ctx, address)
}

// Update replaces an address
func (a *AddressAdapter) Update(ctx context.Context, address *entities.Address) error {
	return a.addresses.update(ctx, address)
}

// Delete removes an address
func (a *AddressAdapter) Delete(ctx context.Context, id int64) error {
	return a.addresses.delete(ctx, id)
}
