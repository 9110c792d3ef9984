package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/healthmarket/internal/application/services"
	"github.com/zatekoja/healthmarket/internal/domain/entities"
	"github.com/zatekoja/healthmarket/internal/domain/providers"
	"github.com/zatekoja/healthmarket/internal/domain/repositories"
	apperrors "github.com/zatekoja/healthmarket/pkg/errors"
)

func newLabService(f *fixture, strict bool) *services.LabBookingService {
	cfg := testPricing()
	cfg.StrictTransitions = strict
	svc := services.NewLabBookingService(f.labBookings, f.labTests, f.addresses, cfg)
	svc.SetClock(func() time.Time { return fixedNow })
	svc.SetEventBus(f.bus)
	return svc
}

func labInput(testID int64) services.BookLabTestInput {
	return services.BookLabTestInput{
		UserID:         1,
		TestID:         testID,
		PatientName:    "Asha Rao",
		CollectionDate: "2026-03-16",
		Slot:           entities.LabSlots[0],
		Address:        homeAddress(),
	}
}

func TestLabBookingService_BookLabTest(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	test := f.addLabTest(t, "Complete Blood Count", "499")
	svc := newLabService(f, false)
	updates := f.subscribe(t, providers.EventChannelOrderUpdates)

	confirmation, err := svc.BookLabTest(ctx, labInput(test.ID))
	require.NoError(t, err)
	booking := confirmation.Booking

	assert.Contains(t, confirmation.Message, "Complete Blood Count")
	assert.Equal(t, "Complete Blood Count", booking.TestName)
	assert.Equal(t, paise("499"), booking.Subtotal)
	assert.Equal(t, paise("89.82"), booking.GST)
	assert.Equal(t, paise("588.82"), booking.TotalAmount)
	assert.Equal(t, entities.LabBookingStatusBooked, booking.Status)
	require.Len(t, booking.TrackingHistory, 1)
	assert.Equal(t, entities.TrackingBookingConfirmed, booking.TrackingHistory[0].Status)
	assert.Equal(t, booking.BookingDate, booking.TrackingHistory[0].Timestamp)

	event := receiveEvent(t, updates)
	assert.Equal(t, entities.OrderKindLabBooking, event.Kind)
	assert.Equal(t, booking.ID, event.RecordID)
}

func TestLabBookingService_BookLabTest_Rejects(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	test := f.addLabTest(t, "Complete Blood Count", "499")
	svc := newLabService(f, false)

	badSlot := labInput(test.ID)
	badSlot.Slot = "02:00 PM - 04:00 PM"
	_, err := svc.BookLabTest(ctx, badSlot)
	assert.True(t, apperrors.IsValidation(err))

	noPatient := labInput(test.ID)
	noPatient.PatientName = ""
	_, err = svc.BookLabTest(ctx, noPatient)
	assert.True(t, apperrors.IsValidation(err))

	_, err = svc.BookLabTest(ctx, labInput(77))
	assert.True(t, apperrors.IsNotFound(err))

	bookings, err := f.labBookings.List(ctx, repositories.LabBookingFilter{})
	require.NoError(t, err)
	assert.Empty(t, bookings)
}

func TestLabBookingService_StatusAndCollection(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	test := f.addLabTest(t, "Lipid Profile", "799")
	svc := newLabService(f, true)

	confirmation, err := svc.BookLabTest(ctx, labInput(test.ID))
	require.NoError(t, err)
	id := confirmation.Booking.ID

	assigned, err := svc.AssignDelivery(ctx, id, entities.DeliveryPerson{Name: "Priya", Phone: "9988776655"})
	require.NoError(t, err)
	assert.Equal(t, "Sample collection assigned to Priya", assigned.TrackingHistory[1].Notes)

	collected, err := svc.UpdateBookingStatus(ctx, id, entities.LabBookingStatusSampleCollected, "")
	require.NoError(t, err)
	assert.Len(t, collected.TrackingHistory, 3)

	_, err = svc.UpdateBookingStatus(ctx, id, entities.LabBookingStatusBooked, "")
	assert.Equal(t, apperrors.ErrorTypeConflict, apperrors.TypeOf(err))

	_, err = svc.UpdateBookingStatus(ctx, id, "Shipped", "")
	assert.True(t, apperrors.IsValidation(err))

	ready, err := svc.UpdateBookingStatus(ctx, id, entities.LabBookingStatusReportReady, "Report uploaded")
	require.NoError(t, err)
	assert.Equal(t, entities.LabBookingStatusReportReady, ready.Status)

	_, err = svc.CancelBooking(ctx, patient(1), id, "no longer needed")
	assert.Equal(t, apperrors.ErrorTypeConflict, apperrors.TypeOf(err))
}

func TestLabBookingService_CancelBooking(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	test := f.addLabTest(t, "Lipid Profile", "799")
	svc := newLabService(f, false)

	confirmation, err := svc.BookLabTest(ctx, labInput(test.ID))
	require.NoError(t, err)
	id := confirmation.Booking.ID

	_, err = svc.CancelBooking(ctx, patient(3), id, "not mine")
	assert.True(t, apperrors.IsNotFound(err))

	cancelled, err := svc.CancelBooking(ctx, patient(1), id, "fasting not possible")
	require.NoError(t, err)
	assert.Equal(t, entities.LabBookingStatusCancelled, cancelled.Status)
	assert.Equal(t, "fasting not possible", cancelled.CancellationReason)

	_, err = svc.AssignDelivery(ctx, id, entities.DeliveryPerson{Name: "Priya", Phone: "9988776655"})
	assert.Equal(t, apperrors.ErrorTypeConflict, apperrors.TypeOf(err))

	mine, err := svc.ListBookings(ctx, patient(1), repositories.LabBookingFilter{})
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	others, err := svc.ListBookings(ctx, patient(3), repositories.LabBookingFilter{})
	require.NoError(t, err)
	assert.Empty(t, others)
}

func TestLabBookingService_ConcurrentUpdatesKeepEveryEntry(t *testing.T) {
	ctx := context.Background()
	f := newSlowFixture(t)
	test := f.addLabTest(t, "Thyroid Profile", "650")
	svc := newLabService(f, false)

	confirmation, err := svc.BookLabTest(ctx, labInput(test.ID))
	require.NoError(t, err)
	id := confirmation.Booking.ID

	const updates = 10
	var wg sync.WaitGroup
	errs := make(chan error, updates)
	for i := 0; i < updates; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.UpdateBookingStatus(ctx, id, entities.LabBookingStatusSampleCollected, "")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	stored, err := f.labBookings.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Len(t, stored.TrackingHistory, updates+1)
	assert.Equal(t, entities.LabBookingStatusSampleCollected, stored.Status)
}

func TestLabBookingService_ConcurrentCancelSucceedsOnce(t *testing.T) {
	ctx := context.Background()
	f := newSlowFixture(t)
	test := f.addLabTest(t, "Thyroid Profile", "650")
	svc := newLabService(f, false)

	confirmation, err := svc.BookLabTest(ctx, labInput(test.ID))
	require.NoError(t, err)
	id := confirmation.Booking.ID

	const attempts = 5
	var wg sync.WaitGroup
	errs := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CancelBooking(ctx, patient(1), id, "travelling")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.Equal(t, apperrors.ErrorTypeConflict, apperrors.TypeOf(err))
	}
	assert.Equal(t, 1, succeeded)

	stored, err := f.labBookings.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Len(t, stored.TrackingHistory, 2)
}
