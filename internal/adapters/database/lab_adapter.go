package database

import (
	"context"

	"github.com/zatekoja/healthmarket/internal/adapters/storage"
	"github.com/zatekoja/healthmarket/internal/domain/entities"
	"github.com/zatekoja/healthmarket/internal/domain/providers"
	"github.com/zatekoja/healthmarket/internal/domain/repositories"
	"github.com/zatekoja/healthmarket/pkg/utils"
)

// LabTestAdapter implements the LabTestRepository interface
type LabTestAdapter struct {
	tests *collection[entities.LabTest]
}

// NewLabTestAdapter creates a new lab test adapter
func NewLabTestAdapter(store providers.StorageProvider) repositories.LabTestRepository {
	return &LabTestAdapter{
		tests: newCollection(store, storage.KeyLabTests, "lab test",
			func(t *entities.LabTest) int64 { return t.ID },
			func(t *entities.LabTest, id int64) { t.ID = id }),
	}
}

// List returns lab tests whose name matches the query
func (a *LabTestAdapter) List(ctx context.Context, filter repositories.LabTestFilter) ([]*entities.LabTest, error) {
	tests, err := a.tests.all(ctx)
	if err != nil {
		return nil, err
	}
	return filterItems(tests, func(t *entities.LabTest) bool {
		return utils.ContainsFold(t.Name, filter.Query)
	}), nil
}

// GetByID retrieves a lab test by ID
func (a *LabTestAdapter) GetByID(ctx context.Context, id int64) (*entities.LabTest, error) {
	return a.tests.get(ctx, id)
}

// Create stores a new lab test
func (a *LabTestAdapter) Create(ctx context.Context, test *entities.LabTest) error {
	return a.tests.create(ctx, test)
}

// Update replaces a lab test
func (a *LabTestAdapter) Update(ctx context.Context, test *entities.LabTest) error {
	return a.tests.update(ctx, test)
}

// Delete removes a lab test
func (a *LabTestAdapter) Delete(ctx context.Context, id int64) error {
	return a.tests.delete(ctx, id)
}

// LabBookingAdapter implements the LabBookingRepository interface
type LabBookingAdapter struct {
	bookings *collection[entities.LabTestBooking]
}

// NewLabBookingAdapter creates a new lab booking adapter
func NewLabBookingAdapter(store providers.StorageProvider) repositories.LabBookingRepository {
	return &LabBookingAdapter{
		bookings: newCollection(store, storage.KeyLabTestBookings, "lab booking",
			func(b *entities.LabTestBooking) int64 { return b.ID },
			func(b *entities.LabTestBooking, id int64) { b.ID = id }),
	}
}

// Create stores a new booking
func (a *LabBookingAdapter) Create(ctx context.Context, booking *entities.LabTestBooking) error {
	return a.bookings.create(ctx, booking)
}

// GetByID retrieves a booking by ID
func (a *LabBookingAdapter) GetByID(ctx context.Context, id int64) (*entities.LabTestBooking, error) {
	return a.bookings.get(ctx, id)
}

// Update replaces a booking
func (a *LabBookingAdapter) Update(ctx context.Context, booking *entities.LabTestBooking) error {
	return a.bookings.update(ctx, booking)
}

// Modify applies fn to the stored booking and saves the result atomically
func (a *LabBookingAdapter) Modify(ctx context.Context, id int64, fn func(*entities.LabTestBooking) error) (*entities.LabTestBooking, error) {
	return a.bookings.modify(ctx, id, fn)
}

// List returns bookings newest first
func (a *LabBookingAdapter) List(ctx context.Context, filter repositories.LabBookingFilter) ([]*entities.LabTestBooking, error) {
	bookings, err := a.bookings.all(ctx)
	if err != nil {
		return nil, err
	}
	bookings = filterItems(bookings, func(b *entities.LabTestBooking) bool {
		return (filter.UserID == 0 || b.UserID == filter.UserID) &&
			(filter.Status == "" || b.Status == filter.Status)
	})
	return newestFirst(bookings), nil
}
