package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/healthmarket/internal/adapters/database"
	"github.com/zatekoja/healthmarket/internal/adapters/events"
	"github.com/zatekoja/healthmarket/internal/adapters/storage"
	"github.com/zatekoja/healthmarket/internal/application/services"
	"github.com/zatekoja/healthmarket/internal/domain/entities"
	"github.com/zatekoja/healthmarket/internal/domain/providers"
	"github.com/zatekoja/healthmarket/internal/domain/repositories"
	"github.com/zatekoja/healthmarket/pkg/config"
	"github.com/zatekoja/healthmarket/pkg/money"
)

var fixedNow = time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)

func testPricing() config.PricingConfig {
	return config.PricingConfig{
		GSTRate:               decimal.RequireFromString("0.18"),
		ConsultationFee:       money.MustParse("500"),
		PromiseFee:            money.MustParse("9"),
		DeliveryFee:           money.MustParse("40"),
		FreeDeliveryThreshold: money.MustParse("499"),
	}
}

// fixture wires repositories over one in-memory store
type fixture struct {
	store        *storage.MemoryStore
	doctors      repositories.DoctorRepository
	users        repositories.UserRepository
	appointments repositories.AppointmentRepository
	medicines    repositories.MedicineRepository
	orders       repositories.MedicineOrderRepository
	labTests     repositories.LabTestRepository
	labBookings  repositories.LabBookingRepository
	addresses    repositories.AddressRepository
	activity     repositories.ActivityRepository
	wishlists    repositories.WishlistRepository
	bus          providers.EventBus
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := storage.NewMemoryStore()
	return newFixtureOn(t, store, store)
}

// newSlowFixture reads through a store that takes a millisecond per Get,
// like a networked backend, so concurrent requests overlap their reads
func newSlowFixture(t *testing.T) *fixture {
	t.Helper()
	store := storage.NewMemoryStore()
	return newFixtureOn(t, store, &slowStore{StorageProvider: store, delay: time.Millisecond})
}

func newFixtureOn(t *testing.T, store *storage.MemoryStore, backend providers.StorageProvider) *fixture {
	t.Helper()
	bus := events.NewMemoryEventBus()
	t.Cleanup(func() { _ = bus.Close() })
	return &fixture{
		store:        store,
		doctors:      database.NewDoctorAdapter(backend),
		users:        database.NewUserAdapter(backend),
		appointments: database.NewAppointmentAdapter(backend),
		medicines:    database.NewMedicineAdapter(backend),
		orders:       database.NewMedicineOrderAdapter(backend),
		labTests:     database.NewLabTestAdapter(backend),
		labBookings:  database.NewLabBookingAdapter(backend),
		addresses:    database.NewAddressAdapter(backend),
		activity:     database.NewActivityAdapter(backend),
		wishlists:    database.NewWishlistAdapter(backend),
		bus:          bus,
	}
}

type slowStore struct {
	providers.StorageProvider
	delay time.Duration
}

func (s *slowStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	time.Sleep(s.delay)
	return s.StorageProvider.Get(ctx, key)
}

func (f *fixture) addDoctor(t *testing.T, name, specialty string) *entities.Doctor {
	t.Helper()
	doctor := &entities.Doctor{
		Name:          name,
		Specialty:     specialty,
		Location:      "Bengaluru",
		AvailableTime: "10:00 AM - 1:00 PM",
		Experience:    12,
	}
	require.NoError(t, f.doctors.Create(context.Background(), doctor))
	return doctor
}

func (f *fixture) addMedicine(t *testing.T, name, price, mrp string) *entities.Medicine {
	t.Helper()
	medicine := &entities.Medicine{
		Name:     name,
		Price:    money.MustParse(price),
		MRP:      money.MustParse(mrp),
		Category: "General",
	}
	require.NoError(t, f.medicines.Create(context.Background(), medicine))
	return medicine
}

func (f *fixture) addLabTest(t *testing.T, name, price string) *entities.LabTest {
	t.Helper()
	test := &entities.LabTest{
		Name:  name,
		Price: money.MustParse(price),
		MRP:   money.MustParse(price),
	}
	require.NoError(t, f.labTests.Create(context.Background(), test))
	return test
}

func (f *fixture) subscribe(t *testing.T, channel string) <-chan *entities.OrderEvent {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	ch, err := f.bus.Subscribe(ctx, channel)
	require.NoError(t, err)
	return ch
}

func receiveEvent(t *testing.T, ch <-chan *entities.OrderEvent) *entities.OrderEvent {
	t.Helper()
	select {
	case event := <-ch:
		return event
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for order event")
		return nil
	}
}

func homeAddress() *entities.Address {
	return &entities.Address{
		FullName:     "Asha Rao",
		Phone:        "9876543210",
		AddressLine1: "12 MG Road",
		City:         "Bengaluru",
		State:        "Karnataka",
		Pincode:      "560001",
		Type:         entities.AddressTypeHome,
	}
}

func patient(id int64) services.Requester {
	return services.Requester{UserID: id, Role: entities.RolePatient}
}

var admin = services.Requester{UserID: 99, Role: entities.RoleAdmin}

func paise(s string) money.Paise { return money.MustParse(s) }

func ptr[T any](v T) *T { return &v }
