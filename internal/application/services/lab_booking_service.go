package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/zatekoja/healthmarket/internal/domain/entities"
	"github.com/zatekoja/healthmarket/internal/domain/pricing"
	"github.com/zatekoja/healthmarket/internal/domain/repositories"
	"github.com/zatekoja/healthmarket/internal/infrastructure/observability"
	"github.com/zatekoja/healthmarket/pkg/config"
	apperrors "github.com/zatekoja/healthmarket/pkg/errors"
)

// BookLabTestInput is the home collection booking form
type BookLabTestInput struct {
	UserID         int64
	TestID         int64
	PatientName    string
	CollectionDate string
	Slot           string
	AddressID      int64
	Address        *entities.Address
}

// BookingConfirmation is returned to the patient after booking
type BookingConfirmation struct {
	Booking *entities.LabTestBooking `json:"booking"`
	Message string                   `json:"message"`
}

// LabBookingService handles lab test bookings and sample collection tracking
type LabBookingService struct {
	lifecycle
	bookings  repositories.LabBookingRepository
	tests     repositories.LabTestRepository
	addresses repositories.AddressRepository
	pricing   config.PricingConfig
}

// NewLabBookingService creates a new lab booking service
func NewLabBookingService(
	bookings repositories.LabBookingRepository,
	tests repositories.LabTestRepository,
	addresses repositories.AddressRepository,
	pricingCfg config.PricingConfig,
) *LabBookingService {
	return &LabBookingService{
		lifecycle: newLifecycle(),
		bookings:  bookings,
		tests:     tests,
		addresses: addresses,
		pricing:   pricingCfg,
	}
}

// BookLabTest snapshots the test, prices it and stores a Booked booking
func (s *LabBookingService) BookLabTest(ctx context.Context, input BookLabTestInput) (*BookingConfirmation, error) {
	patient := strings.TrimSpace(input.PatientName)
	if patient == "" {
		return nil, apperrors.NewValidationError("patient name is required")
	}
	if !entities.IsLabSlot(input.Slot) {
		return nil, apperrors.NewValidationError(fmt.Sprintf("slot must be one of %s", strings.Join(entities.LabSlots, ", ")))
	}
	if input.CollectionDate != "" {
		if _, err := time.Parse(dateLayout, input.CollectionDate); err != nil {
			return nil, apperrors.NewValidationError("collection date must be in YYYY-MM-DD format")
		}
	}

	test, err := s.tests.GetByID(ctx, input.TestID)
	if err != nil {
		return nil, err
	}
	address, err := resolveAddress(ctx, s.addresses, input.UserID, input.AddressID, input.Address)
	if err != nil {
		return nil, err
	}

	totals := pricing.LabTest(test.Price, s.pricing.GSTRate)
	now := s.now()
	booking := &entities.LabTestBooking{
		UserID:         input.UserID,
		PatientName:    patient,
		TestID:         test.ID,
		TestName:       test.Name,
		BookingDate:    now,
		CollectionDate: input.CollectionDate,
		Slot:           input.Slot,
		Address:        address,
		Subtotal:       totals.Subtotal,
		GST:            totals.GST,
		TotalAmount:    totals.Total,
		Status:         entities.LabBookingStatusBooked,
	}
	booking.Track(entities.TrackingBookingConfirmed, now, "")

	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, err
	}

	observability.LoggerFromContext(ctx).Info().
		Int64("booking_id", booking.ID).
		Int64("test_id", test.ID).
		Str("slot", booking.Slot).
		Msg("lab test booked")
	observability.RecordBooking(ctx, s.metrics, string(entities.OrderKindLabBooking), int64(booking.TotalAmount))
	s.publish(ctx, entities.NewOrderEvent(entities.OrderKindLabBooking, booking.ID, booking.UserID,
		entities.OrderEventCreated, string(booking.Status), entities.TrackingBookingConfirmed, now))

	return &BookingConfirmation{
		Booking: booking,
		Message: fmt.Sprintf("%s booked for %s. Sample collection slot %s.", test.Name, patient, booking.Slot),
	}, nil
}

// GetBooking returns a booking visible to the requester
func (s *LabBookingService) GetBooking(ctx context.Context, req Requester, id int64) (*entities.LabTestBooking, error) {
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !req.CanAccess(booking.UserID) {
		return nil, notFoundFor("lab booking")
	}
	return booking, nil
}

// ListBookings lists bookings newest first; patients only see their own
func (s *LabBookingService) ListBookings(ctx context.Context, req Requester, filter repositories.LabBookingFilter) ([]*entities.LabTestBooking, error) {
	if !req.Role.IsStaff() {
		filter.UserID = req.UserID
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown booking status %q", filter.Status))
	}
	return s.bookings.List(ctx, filter)
}

// UpdateBookingStatus sets the status and appends one tracking entry
func (s *LabBookingService) UpdateBookingStatus(ctx context.Context, id int64, status entities.LabBookingStatus, notes string) (*entities.LabTestBooking, error) {
	if !status.Valid() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown booking status %q", status))
	}

	now := s.now()
	booking, err := s.bookings.Modify(ctx, id, func(booking *entities.LabTestBooking) error {
		if s.pricing.StrictTransitions && !booking.Status.CanTransitionTo(status) {
			return apperrors.NewConflictError(fmt.Sprintf("booking cannot move from %s to %s", booking.Status, status))
		}
		booking.Status = status
		booking.Track(string(status), now, strings.TrimSpace(notes))
		return nil
	})
	if err != nil {
		return nil, err
	}

	observability.RecordStatusChange(ctx, s.metrics, string(entities.OrderKindLabBooking), string(status))
	s.publish(ctx, entities.NewOrderEvent(entities.OrderKindLabBooking, booking.ID, booking.UserID,
		entities.OrderEventStatusChanged, string(status), notes, now))
	return booking, nil
}

// AssignDelivery sets the phlebotomist and appends a tracking entry
func (s *LabBookingService) AssignDelivery(ctx context.Context, id int64, person entities.DeliveryPerson) (*entities.LabTestBooking, error) {
	person, err := validateDeliveryPerson(person)
	if err != nil {
		return nil, err
	}

	now := s.now()
	notes := "Sample collection assigned to " + person.Name
	booking, err := s.bookings.Modify(ctx, id, func(booking *entities.LabTestBooking) error {
		if booking.Status == entities.LabBookingStatusCancelled {
			return apperrors.NewConflictError("booking is cancelled")
		}
		booking.DeliveryBoy = &person
		booking.Track(string(booking.Status), now, notes)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, entities.NewOrderEvent(entities.OrderKindLabBooking, booking.ID, booking.UserID,
		entities.OrderEventDeliveryAssigned, string(booking.Status), notes, now))
	return booking, nil
}

// CancelBooking lets the owner cancel a booking that is not finished
func (s *LabBookingService) CancelBooking(ctx context.Context, req Requester, id int64, reason string) (*entities.LabTestBooking, error) {
	now := s.now()
	reason = strings.TrimSpace(reason)
	booking, err := s.bookings.Modify(ctx, id, func(booking *entities.LabTestBooking) error {
		if !req.CanAccess(booking.UserID) {
			return notFoundFor("lab booking")
		}
		if booking.Status.Terminal() {
			return apperrors.NewConflictError(fmt.Sprintf("booking is already %s", booking.Status))
		}
		booking.Status = entities.LabBookingStatusCancelled
		booking.CancellationReason = reason
		booking.Track(string(booking.Status), now, reason)
		return nil
	})
	if err != nil {
		return nil, err
	}

	observability.RecordStatusChange(ctx, s.metrics, string(entities.OrderKindLabBooking), string(booking.Status))
	s.publish(ctx, entities.NewOrderEvent(entities.OrderKindLabBooking, booking.ID, booking.UserID,
		entities.OrderEventCancelled, string(booking.Status), reason, now))
	return booking, nil
}
