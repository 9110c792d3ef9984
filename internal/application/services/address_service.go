package services

import (
	"context"

	"github.com/zatekoja/healthmarket/internal/domain/entities"
	"github.com/zatekoja/healthmarket/internal/domain/repositories"
)

// AddressService manages a user's saved addresses
type AddressService struct {
	repo repositories.AddressRepository
}

// NewAddressService creates a new address service
func NewAddressService(repo repositories.AddressRepository) *AddressService {
	return &AddressService{repo: repo}
}

// List returns the user's addresses; the first one is the default
func (s *AddressService) List(ctx context.Context, userID int64) ([]*entities.Address, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Default returns the user's first address, or nil when there is none
func (s *AddressService) Default(ctx context.Context, userID int64) (*entities.Address, error) {
	addresses, err := s.repo.ListByUser(ctx, userID)
	if err != nil || len(addresses) == 0 {
		return nil, err
	}
	return addresses[0], nil
}

// Create validates and stores an address for the user
func (s *AddressService) Create(ctx context.Context, userID int64, address *entities.Address) error {
	address.ID = 0
	address.UserID = userID
	if err := validateAddress(address); err != nil {
		return err
	}
	return s.repo.Create(ctx, address)
}

// Update replaces one of the user's addresses
func (s *AddressService) Update(ctx context.Context, userID int64, address *entities.Address) error {
	if _, err := s.owned(ctx, userID, address.ID); err != nil {
		return err
	}
	address.UserID = userID
	if err := validateAddress(address); err != nil {
		return err
	}
	return s.repo.Update(ctx, address)
}

// Delete removes one of the user's addresses
func (s *AddressService) Delete(ctx context.Context, userID, id int64) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *AddressService) owned(ctx context.Context, userID, id int64) (*entities.Address, error) {
	address, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if address.UserID != userID {
		return nil, notFoundFor("address")
	}
	return address, nil
}
