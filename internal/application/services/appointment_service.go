package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/zatekoja/healthmarket/internal/domain/entities"
	"github.com/zatekoja/healthmarket/internal/domain/pricing"
	"github.com/zatekoja/healthmarket/internal/domain/repositories"
	"github.com/zatekoja/healthmarket/internal/infrastructure/observability"
	"github.com/zatekoja/healthmarket/pkg/config"
	apperrors "github.com/zatekoja/healthmarket/pkg/errors"
	"github.com/zatekoja/healthmarket/pkg/utils"
)

// MaxReportSize is the largest medical report accepted with a booking
const MaxReportSize = 5 << 20

const dateLayout = "2006-01-02"

// ReportUpload is a PDF attached to an appointment booking
type ReportUpload struct {
	Name        string
	ContentType string
	Data        []byte
}

// BookAppointmentInput is the booking form
type BookAppointmentInput struct {
	UserID          int64
	DoctorID        int64
	PatientName     string
	PatientPhone    string
	AppointmentDate string
	AppointmentTime string
	HeartRate       *int
	Symptoms        string
	Notes           string
	Report          *ReportUpload
}

// AppointmentService handles appointment booking logic
type AppointmentService struct {
	lifecycle
	repo    repositories.AppointmentRepository
	doctors repositories.DoctorRepository
	pricing config.PricingConfig
}

// NewAppointmentService creates a new appointment service
func NewAppointmentService(
	repo repositories.AppointmentRepository,
	doctors repositories.DoctorRepository,
	pricingCfg config.PricingConfig,
) *AppointmentService {
	return &AppointmentService{
		lifecycle: newLifecycle(),
		repo:      repo,
		doctors:   doctors,
		pricing:   pricingCfg,
	}
}

// BookAppointment validates the form, snapshots the doctor and persists a
// Scheduled appointment. Nothing is written when the doctor does not exist.
func (s *AppointmentService) BookAppointment(ctx context.Context, input BookAppointmentInput) (*entities.Appointment, error) {
	if err := validateAppointmentInput(input); err != nil {
		return nil, err
	}

	doctor, err := s.doctors.GetByID(ctx, input.DoctorID)
	if err != nil {
		return nil, err
	}

	var report, reportName string
	if input.Report != nil {
		report, err = encodeReport(input.Report)
		if err != nil {
			return nil, err
		}
		reportName = input.Report.Name
	}

	totals := pricing.Appointment(s.pricing.ConsultationFee, s.pricing.GSTRate)
	now := s.now()
	appointment := &entities.Appointment{
		UserID:          input.UserID,
		PatientName:     strings.TrimSpace(input.PatientName),
		PatientPhone:    utils.NormalizePhone(input.PatientPhone),
		DoctorID:        doctor.ID,
		DoctorName:      doctor.Name,
		Specialty:       doctor.Specialty,
		AppointmentDate: input.AppointmentDate,
		AppointmentTime: strings.TrimSpace(input.AppointmentTime),
		HeartRate:       input.HeartRate,
		Symptoms:        strings.TrimSpace(input.Symptoms),
		Notes:           strings.TrimSpace(input.Notes),
		Report:          report,
		ReportName:      reportName,
		ConsultationFee: totals.ConsultationFee,
		GST:             totals.GST,
		TotalAmount:     totals.Total,
		Status:          entities.AppointmentStatusScheduled,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Create(ctx, appointment); err != nil {
		return nil, err
	}

	observability.LoggerFromContext(ctx).Info().
		Int64("appointment_id", appointment.ID).
		Int64("doctor_id", doctor.ID).
		Str("date", appointment.AppointmentDate).
		Msg("appointment booked")
	observability.RecordBooking(ctx, s.metrics, string(entities.OrderKindAppointment), int64(appointment.TotalAmount))
	s.publish(ctx, entities.NewOrderEvent(entities.OrderKindAppointment, appointment.ID, appointment.UserID,
		entities.OrderEventCreated, string(appointment.Status), "", now))

	return appointment, nil
}

// GetAppointment returns an appointment visible to the requester
func (s *AppointmentService) GetAppointment(ctx context.Context, req Requester, id int64) (*entities.Appointment, error) {
	appointment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !req.CanAccess(appointment.UserID) {
		return nil, notFoundFor("appointment")
	}
	return appointment, nil
}

// ListAppointments lists appointments; patients only see their own
func (s *AppointmentService) ListAppointments(ctx context.Context, req Requester, filter repositories.AppointmentFilter) ([]*entities.Appointment, error) {
	if !req.Role.IsStaff() {
		filter.UserID = req.UserID
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown appointment status %q", filter.Status))
	}
	return s.repo.List(ctx, filter)
}

// UpdateStatus moves a scheduled appointment to Completed or No-Show.
// Terminal appointments never change; cancelling goes through CancelAppointment.
func (s *AppointmentService) UpdateStatus(ctx context.Context, id int64, status entities.AppointmentStatus, notes string) (*entities.Appointment, error) {
	if !status.Valid() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown appointment status %q", status))
	}
	if status == entities.AppointmentStatusCancelled {
		return nil, apperrors.NewValidationError("appointments are cancelled with a reason, use the cancel operation")
	}

	now := s.now()
	notes = strings.TrimSpace(notes)
	changed := false
	appointment, err := s.repo.Modify(ctx, id, func(appointment *entities.Appointment) error {
		if appointment.Status == status {
			return nil
		}
		if appointment.Status.Terminal() {
			return apperrors.NewConflictError(fmt.Sprintf("appointment is already %s", appointment.Status))
		}
		appointment.Status = status
		if notes != "" {
			appointment.Notes = notes
		}
		appointment.UpdatedAt = now
		changed = true
		return nil
	})
	if err != nil || !changed {
		return appointment, err
	}

	observability.RecordStatusChange(ctx, s.metrics, string(entities.OrderKindAppointment), string(status))
	s.publish(ctx, entities.NewOrderEvent(entities.OrderKindAppointment, appointment.ID, appointment.UserID,
		entities.OrderEventStatusChanged, string(status), notes, now))
	return appointment, nil
}

// CancelAppointment cancels a scheduled appointment with a reason
func (s *AppointmentService) CancelAppointment(ctx context.Context, req Requester, id int64, reason string) (*entities.Appointment, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperrors.NewValidationError("cancellation reason is required")
	}

	now := s.now()
	appointment, err := s.repo.Modify(ctx, id, func(appointment *entities.Appointment) error {
		if !req.CanAccess(appointment.UserID) {
			return notFoundFor("appointment")
		}
		if appointment.Status.Terminal() {
			return apperrors.NewConflictError(fmt.Sprintf("appointment is already %s", appointment.Status))
		}
		appointment.Status = entities.AppointmentStatusCancelled
		appointment.CancellationReason = reason
		appointment.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}

	observability.RecordStatusChange(ctx, s.metrics, string(entities.OrderKindAppointment), string(appointment.Status))
	s.publish(ctx, entities.NewOrderEvent(entities.OrderKindAppointment, appointment.ID, appointment.UserID,
		entities.OrderEventCancelled, string(appointment.Status), reason, now))
	return appointment, nil
}

func validateAppointmentInput(input BookAppointmentInput) error {
	switch {
	case input.DoctorID <= 0:
		return apperrors.NewValidationError("doctor is required")
	case strings.TrimSpace(input.PatientName) == "":
		return apperrors.NewValidationError("patient name is required")
	case strings.TrimSpace(input.AppointmentTime) == "":
		return apperrors.NewValidationError("appointment time is required")
	case input.PatientPhone != "" && !utils.IsValidPhone(input.PatientPhone):
		return apperrors.NewValidationError("phone must be a valid 10 digit mobile number")
	case input.HeartRate != nil && (*input.HeartRate < 20 || *input.HeartRate > 250):
		return apperrors.NewValidationError("heart rate must be between 20 and 250 bpm")
	}
	if _, err := time.Parse(dateLayout, input.AppointmentDate); err != nil {
		return apperrors.NewValidationError("appointment date must be in YYYY-MM-DD format")
	}
	return nil
}

// encodeReport turns an uploaded PDF into a data URL
func encodeReport(report *ReportUpload) (string, error) {
	if len(report.Data) == 0 {
		return "", apperrors.NewValidationError("report file is empty")
	}
	if len(report.Data) > MaxReportSize {
		return "", apperrors.NewValidationError("report must be 5 MB or smaller")
	}
	contentType, _, _ := strings.Cut(report.ContentType, ";")
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if contentType == "" || contentType == "application/octet-stream" {
		contentType, _, _ = strings.Cut(http.DetectContentType(report.Data), ";")
	}
	if contentType != "application/pdf" {
		return "", apperrors.NewValidationError("report must be a PDF file")
	}
	return "data:application/pdf;base64," + base64.StdEncoding.EncodeToString(report.Data), nil
}
