package database

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/healthmarket/internal/adapters/storage"
	"github.com/zatekoja/healthmarket/internal/domain/entities"
	"github.com/zatekoja/healthmarket/internal/domain/repositories"
	apperrors "github.com/zatekoja/healthmarket/pkg/errors"
	"github.com/zatekoja/healthmarket/pkg/money"
)

func newDoctor(name, specialty, location string) *entities.Doctor {
	return &entities.Doctor{Name: name, Specialty: specialty, Location: location, AvailableTime: "10:00 AM - 1:00 PM"}
}

func TestCollection_IDsAreMaxPlusOne(t *testing.T) {
	ctx := context.Background()
	repo := NewDoctorAdapter(storage.NewMemoryStore())

	for _, name := range []string{"A", "B", "C"} {
		require.NoError(t, repo.Create(ctx, newDoctor(name, "Cardiology", "Pune")))
	}
	require.NoError(t, repo.Delete(ctx, 2))

	d := newDoctor("D", "Cardiology", "Pune")
	require.NoError(t, repo.Create(ctx, d))
	assert.Equal(t, int64(4), d.ID)

	all, err := repo.List(ctx, repositories.DoctorFilter{})
	require.NoError(t, err)
	ids := make([]int64, 0, len(all))
	for _, doc := range all {
		ids = append(ids, doc.ID)
	}
	assert.Equal(t, []int64{1, 3, 4}, ids)
}

func TestCollection_FirstIDIsOne(t *testing.T) {
	repo := NewMedicineAdapter(storage.NewMemoryStore())
	m := &entities.Medicine{Name: "Paracetamol", Price: 2550, MRP: 3000}

	require.NoError(t, repo.Create(context.Background(), m))
	assert.Equal(t, int64(1), m.ID)
}

func TestCollection_UpdateAndDeleteMissing(t *testing.T) {
	ctx := context.Background()
	repo := NewDoctorAdapter(storage.NewMemoryStore())

	err := repo.Update(ctx, &entities.Doctor{ID: 9, Name: "Ghost"})
	assert.True(t, apperrors.IsNotFound(err))

	err = repo.Delete(ctx, 9)
	assert.True(t, apperrors.IsNotFound(err))

	_, err = repo.GetByID(ctx, 9)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestCollection_UpdateReplacesWholeRecord(t *testing.T) {
	ctx := context.Background()
	repo := NewDoctorAdapter(storage.NewMemoryStore())
	d := newDoctor("Dr. Rao", "Dermatology", "Mumbai")
	d.Image = "rao.png"
	require.NoError(t, repo.Create(ctx, d))

	require.NoError(t, repo.Update(ctx, &entities.Doctor{ID: d.ID, Name: "Dr. Rao", Specialty: "Dermatology"}))

	got, err := repo.GetByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Image)
	assert.Empty(t, got.Location)
}

type slowReads struct {
	*storage.MemoryStore
}

func (s slowReads) Get(ctx context.Context, key string) ([]byte, bool, error) {
	time.Sleep(time.Millisecond)
	return s.MemoryStore.Get(ctx, key)
}

func TestCollection_ModifySerializesReadModifyWrite(t *testing.T) {
	ctx := context.Background()
	repo := NewLabBookingAdapter(slowReads{storage.NewMemoryStore()})
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	b := &entities.LabTestBooking{UserID: 1, Status: entities.LabBookingStatusBooked}
	b.Track(entities.TrackingBookingConfirmed, at, "")
	require.NoError(t, repo.Create(ctx, b))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Modify(ctx, b.ID, func(booking *entities.LabTestBooking) error {
				booking.Track(string(entities.LabBookingStatusSampleCollected), at, "")
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Len(t, got.TrackingHistory, 11)
}

func TestCollection_ModifyErrorSavesNothing(t *testing.T) {
	ctx := context.Background()
	repo := NewMedicineOrderAdapter(storage.NewMemoryStore())
	order := &entities.MedicineOrder{UserID: 1, Status: entities.OrderStatusProcessing}
	require.NoError(t, repo.Create(ctx, order))

	refused := errors.New("refused")
	_, err := repo.Modify(ctx, order.ID, func(o *entities.MedicineOrder) error {
		o.Status = entities.OrderStatusCancelled
		return refused
	})
	assert.ErrorIs(t, err, refused)

	got, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.OrderStatusProcessing, got.Status)

	_, err = repo.Modify(ctx, 42, func(*entities.MedicineOrder) error { return nil })
	assert.True(t, apperrors.IsNotFound(err))
}

func TestCollection_MalformedStorageIsInternalError(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	require.NoError(t, store.Set(ctx, storage.KeyDoctors, []byte(`{"oops"`)))

	_, err := NewDoctorAdapter(store).List(ctx, repositories.DoctorFilter{})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeInternal, apperrors.TypeOf(err))
}

func TestDoctorAdapter_ListFilters(t *testing.T) {
	ctx := context.Background()
	repo := NewDoctorAdapter(storage.NewMemoryStore())
	require.NoError(t, repo.Create(ctx, newDoctor("Dr. Anita Sharma", "Cardiology", "Bengaluru")))
	require.NoError(t, repo.Create(ctx, newDoctor("Dr. Vikram Rao", "Dermatology", "Mumbai")))
	require.NoError(t, repo.Create(ctx, newDoctor("Dr. Meera Iyer", "Cardiology", "Mumbai")))

	tests := []struct {
		name   string
		filter repositories.DoctorFilter
		want   []string
	}{
		{"specialty", repositories.DoctorFilter{Specialty: "cardiology"}, []string{"Dr. Anita Sharma", "Dr. Meera Iyer"}},
		{"location", repositories.DoctorFilter{Location: "mumbai"}, []string{"Dr. Vikram Rao", "Dr. Meera Iyer"}},
		{"query on name", repositories.DoctorFilter{Query: "vikram"}, []string{"Dr. Vikram Rao"}},
		{"query on specialty", repositories.DoctorFilter{Query: "derma"}, []string{"Dr. Vikram Rao"}},
		{"combined", repositories.DoctorFilter{Specialty: "Cardiology", Location: "Mumbai"}, []string{"Dr. Meera Iyer"}},
		{"paged", repositories.DoctorFilter{Limit: 1, Offset: 1}, []string{"Dr. Vikram Rao"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.List(ctx, tt.filter)
			require.NoError(t, err)
			names := []string{}
			for _, d := range got {
				names = append(names, d.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestUserAdapter_GetByPhone(t *testing.T) {
	ctx := context.Background()
	repo := NewUserAdapter(storage.NewMemoryStore())
	require.NoError(t, repo.Create(ctx, &entities.User{FirstName: "Ravi", Phone: "9876543210", Role: entities.RolePatient}))

	u, err := repo.GetByPhone(ctx, "+91 98765 43210")
	require.NoError(t, err)
	assert.Equal(t, "Ravi", u.FirstName)

	_, err = repo.GetByPhone(ctx, "9000000000")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestMedicineOrderAdapter_ListNewestFirstByUser(t *testing.T) {
	ctx := context.Background()
	repo := NewMedicineOrderAdapter(storage.NewMemoryStore())
	for _, userID := range []int64{1, 2, 1} {
		require.NoError(t, repo.Create(ctx, &entities.MedicineOrder{UserID: userID, Status: entities.OrderStatusProcessing, TotalAmount: money.Paise(100)}))
	}

	orders, err := repo.List(ctx, repositories.OrderFilter{UserID: 1})
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, int64(3), orders[0].ID)
	assert.Equal(t, int64(1), orders[1].ID)
}

func TestLabBookingAdapter_RoundTripKeepsTracking(t *testing.T) {
	ctx := context.Background()
	repo := NewLabBookingAdapter(storage.NewMemoryStore())
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	b := &entities.LabTestBooking{UserID: 1, TestID: 2, TestName: "CBC", BookingDate: at, Status: entities.LabBookingStatusBooked}
	b.Track(entities.TrackingBookingConfirmed, at, "")
	require.NoError(t, repo.Create(ctx, b))

	got, err := repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, got.TrackingHistory, 1)
	assert.Equal(t, entities.TrackingBookingConfirmed, got.TrackingHistory[0].Status)
	assert.True(t, got.TrackingHistory[0].Timestamp.Equal(at))
}

func TestAddressAdapter_ListByUser(t *testing.T) {
	ctx := context.Background()
	repo := NewAddressAdapter(storage.NewMemoryStore())
	require.NoError(t, repo.Create(ctx, &entities.Address{UserID: 1, City: "Pune"}))
	require.NoError(t, repo.Create(ctx, &entities.Address{UserID: 2, City: "Goa"}))
	require.NoError(t, repo.Create(ctx, &entities.Address{UserID: 1, City: "Delhi"}))

	got, err := repo.ListByUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Pune", got[0].City)
	assert.Equal(t, "Delhi", got[1].City)
}

func TestActivityAdapter_Caps(t *testing.T) {
	ctx := context.Background()
	repo := NewActivityAdapter(storage.NewMemoryStore())

	for i := 0; i < entities.MaxAuthLogs+5; i++ {
		require.NoError(t, repo.AppendAuthLog(ctx, &entities.AuthLog{UserID: 1, Action: entities.AuthActionLogin}))
	}
	logs, err := repo.ListAuthLogs(ctx)
	require.NoError(t, err)
	assert.Len(t, logs, entities.MaxAuthLogs)
	assert.Equal(t, int64(entities.MaxAuthLogs+5), logs[0].ID, "newest first")
	assert.Equal(t, int64(6), logs[len(logs)-1].ID, "oldest entries dropped")

	for i := 0; i < entities.MaxUserSessions+1; i++ {
		require.NoError(t, repo.AppendSession(ctx, &entities.UserSession{UserID: int64(i%2 + 1), DurationSeconds: 10}))
	}
	all, err := repo.ListSessions(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, entities.MaxUserSessions)

	mine, err := repo.ListSessions(ctx, 2)
	require.NoError(t, err)
	for _, s := range mine {
		assert.Equal(t, int64(2), s.UserID)
	}
}

func TestWishlistAdapter(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	repo := NewWishlistAdapter(store)

	ids, err := repo.Get(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, ids)

	_, err = repo.Add(ctx, 7, 3)
	require.NoError(t, err)
	ids, err = repo.Add(ctx, 7, 3)
	require.NoError(t, err)
	assert.Equal(t, []int64{3}, ids, "adding twice keeps one entry")

	ids, err = repo.Add(ctx, 7, 5)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 5}, ids)

	_, ok, err := store.Get(ctx, "wishlist_7")
	require.NoError(t, err)
	assert.True(t, ok)

	ids, err = repo.Remove(ctx, 7, 3)
	require.NoError(t, err)
	assert.Equal(t, []int64{5}, ids)

	other, err := repo.Get(ctx, 8)
	require.NoError(t, err)
	assert.Empty(t, other)
}
