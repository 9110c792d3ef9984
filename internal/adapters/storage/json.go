// Package storage holds the key-value backends behind the repositories and
// the JSON helpers used to read and write whole collections.
package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/zatekoja/healthmarket/internal/domain/providers"
)

// Fixed storage keys
const (
	KeyDoctors         = "doctors"
	KeyUsers           = "users"
	KeyAppointments    = "appointments"
	KeyMedicines       = "medicines"
	KeyMedicineOrders  = "medicineOrders"
	KeyAddresses       = "addresses"
	KeyLabTests        = "labTests"
	KeyLabTestBookings = "labTestBookings"
	KeyAuthLogs        = "authLogs"
	KeyUserSessions    = "userSessions"
)

// WishlistKey is the per-user wishlist key
func WishlistKey(userID int64) string {
	return fmt.Sprintf("wishlist_%d", userID)
}

// GetJSON decodes the value under key, or returns def when the key is absent.
// A value that does not decode is an error.
func GetJSON[T any](ctx context.Context, store providers.StorageProvider, key string, def T) (T, error) {
	raw, ok, err := store.Get(ctx, key)
	if err != nil {
		return def, fmt.Errorf("read %s: %w", key, err)
	}
	if !ok {
		return def, nil
	}

	var value T
	if err := json.Unmarshal(raw, &value); err != nil {
		return def, fmt.Errorf("decode %s: %w", key, err)
	}
	return value, nil
}

// SetJSON encodes value and stores it under key
func SetJSON[T any](ctx context.Context, store providers.StorageProvider, key string, value T) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := store.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
