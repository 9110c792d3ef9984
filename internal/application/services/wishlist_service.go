package services

import (
	"context"

	"github.com/zatekoja/healthmarket/internal/domain/entities"
	"github.com/zatekoja/healthmarket/internal/domain/repositories"
	apperrors "github.com/zatekoja/healthmarket/pkg/errors"
)

// WishlistService manages per-user saved medicines
type WishlistService struct {
	wishlists repositories.WishlistRepository
	medicines repositories.MedicineRepository
}

// NewWishlistService creates a new wishlist service
func NewWishlistService(wishlists repositories.WishlistRepository, medicines repositories.MedicineRepository) *WishlistService {
	return &WishlistService{wishlists: wishlists, medicines: medicines}
}

// List returns the medicines on the user's wishlist. Medicines removed from
// the catalog since they were saved are skipped.
func (s *WishlistService) List(ctx context.Context, userID int64) ([]*entities.Medicine, error) {
	ids, err := s.wishlists.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*entities.Medicine{}, nil
	}
	return s.medicines.List(ctx, repositories.MedicineFilter{IDs: ids})
}

// Add saves a medicine; adding it twice keeps one entry
func (s *WishlistService) Add(ctx context.Context, userID, medicineID int64) ([]int64, error) {
	if medicineID <= 0 {
		return nil, apperrors.NewValidationError("medicine is required")
	}
	if _, err := s.medicines.GetByID(ctx, medicineID); err != nil {
		return nil, err
	}
	return s.wishlists.Add(ctx, userID, medicineID)
}

// Remove drops a medicine from the wishlist
func (s *WishlistService) Remove(ctx context.Context, userID, medicineID int64) ([]int64, error) {
	return s.wishlists.Remove(ctx, userID, medicineID)
}
