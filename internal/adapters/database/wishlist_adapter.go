package database

import (
	"context"
	"sync"

	"github.com/zatekoja/healthmarket/internal/adapters/storage"
	"github.com/zatekoja/healthmarket/internal/domain/providers"
	"github.com/zatekoja/healthmarket/internal/domain/repositories"
	apperrors "github.com/zatekoja/healthmarket/pkg/errors"
)

// WishlistAdapter implements the WishlistRepository interface, one key per user
type WishlistAdapter struct {
	store providers.StorageProvider
	mu    sync.Mutex
}

// NewWishlistAdapter creates a new wishlist adapter
func NewWishlistAdapter(store providers.StorageProvider) repositories.WishlistRepository {
	return &WishlistAdapter{store: store}
}

// Get returns the user's medicine ids in insertion order
func (a *WishlistAdapter) Get(ctx context.Context, userID int64) ([]int64, error) {
	ids, err := storage.GetJSON(ctx, a.store, storage.WishlistKey(userID), []int64{})
	if err != nil {
		return nil, apperrors.NewInternalError("failed to load wishlist", err)
	}
	return ids, nil
}

// Add appends medicineID unless it is already present
func (a *WishlistAdapter) Add(ctx context.Context, userID, medicineID int64) ([]int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	ids, err := a.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if id == medicineID {
			return ids, nil
		}
	}
	ids = append(ids, medicineID)
	return ids, a.save(ctx, userID, ids)
}

// Remove drops medicineID; removing an absent id is a no-op
func (a *WishlistAdapter) Remove(ctx context.Context, userID, medicineID int64) ([]int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	ids, err := a.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	kept := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id != medicineID {
			kept = append(kept, id)
		}
	}
	return kept, a.save(ctx, userID, kept)
}

func (a *WishlistAdapter) save(ctx context.Context, userID int64, ids []int64) error {
	if err := storage.SetJSON(ctx, a.store, storage.WishlistKey(userID), ids); err != nil {
		return apperrors.NewInternalError("failed to save wishlist", err)
	}
	return nil
}
