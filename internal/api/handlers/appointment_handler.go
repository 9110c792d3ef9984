package handlers

import (
	"encoding/base64"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/zatekoja/healthmarket/internal/application/services"
	"github.com/zatekoja/healthmarket/internal/domain/entities"
	"github.com/zatekoja/healthmarket/internal/domain/repositories"
)

// AppointmentHandler handles appointment requests
type AppointmentHandler struct {
	service *services.AppointmentService
}

// NewAppointmentHandler creates a new appointment handler
func NewAppointmentHandler(service *services.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{service: service}
}

type bookAppointmentRequest struct {
	DoctorID        int64  `json:"doctor_id"`
	PatientName     string `json:"patient_name"`
	PatientPhone    string `json:"patient_phone"`
	AppointmentDate string `json:"appointment_date"`
	AppointmentTime string `json:"appointment_time"`
	HeartRate       *int   `json:"heart_rate"`
	Symptoms        string `json:"symptoms"`
	Notes           string `json:"notes"`
	ReportName      string `json:"report_name"`
	ReportBase64    string `json:"report_base64"`
}

type statusRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

// BookAppointment handles POST /api/appointments. The body is JSON, or
// multipart/form-data when a PDF report is attached as the "report" file.
func (h *AppointmentHandler) BookAppointment(w http.ResponseWriter, r *http.Request) {
	req, ok := requester(w, r)
	if !ok {
		return
	}

	var input services.BookAppointmentInput
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		input, ok = parseAppointmentForm(w, r)
	} else {
		input, ok = parseAppointmentJSON(w, r)
	}
	if !ok {
		return
	}
	input.UserID = req.UserID

	appointment, err := h.service.BookAppointment(r.Context(), input)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, appointment)
}

func parseAppointmentJSON(w http.ResponseWriter, r *http.Request) (services.BookAppointmentInput, bool) {
	var body bookAppointmentRequest
	if !decodeJSON(w, r, &body) {
		return services.BookAppointmentInput{}, false
	}
	input := services.BookAppointmentInput{
		DoctorID:        body.DoctorID,
		PatientName:     body.PatientName,
		PatientPhone:    body.PatientPhone,
		AppointmentDate: body.AppointmentDate,
		AppointmentTime: body.AppointmentTime,
		HeartRate:       body.HeartRate,
		Symptoms:        body.Symptoms,
		Notes:           body.Notes,
	}
	if body.ReportBase64 != "" {
		data, err := base64.StdEncoding.DecodeString(body.ReportBase64)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "report_base64 is not valid base64")
			return input, false
		}
		input.Report = &services.ReportUpload{Name: body.ReportName, Data: data}
	}
	return input, true
}

func parseAppointmentForm(w http.ResponseWriter, r *http.Request) (services.BookAppointmentInput, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, services.MaxReportSize+1<<20)
	if err := r.ParseMultipartForm(services.MaxReportSize + 1<<20); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid multipart form or report larger than 5 MB")
		return services.BookAppointmentInput{}, false
	}

	doctorID, _ := strconv.ParseInt(r.FormValue("doctor_id"), 10, 64)
	input := services.BookAppointmentInput{
		DoctorID:        doctorID,
		PatientName:     r.FormValue("patient_name"),
		PatientPhone:    r.FormValue("patient_phone"),
		AppointmentDate: r.FormValue("appointment_date"),
		AppointmentTime: r.FormValue("appointment_time"),
		Symptoms:        r.FormValue("symptoms"),
		Notes:           r.FormValue("notes"),
	}
	if raw := r.FormValue("heart_rate"); raw != "" {
		rate, err := strconv.Atoi(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "heart_rate must be a number")
			return input, false
		}
		input.HeartRate = &rate
	}

	file, header, err := r.FormFile("report")
	if err == http.ErrMissingFile {
		return input, true
	}
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid report upload")
		return input, false
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, services.MaxReportSize+1))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "failed to read report upload")
		return input, false
	}
	input.Report = &services.ReportUpload{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}
	return input, true
}

// ListAppointments handles GET /api/appointments?status=&date=&doctor_id=
func (h *AppointmentHandler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	req, ok := requester(w, r)
	if !ok {
		return
	}
	query := r.URL.Query()
	doctorID, _ := strconv.ParseInt(query.Get("doctor_id"), 10, 64)
	userID, _ := strconv.ParseInt(query.Get("user_id"), 10, 64)
	filter := repositories.AppointmentFilter{
		UserID:   userID,
		DoctorID: doctorID,
		Status:   entities.AppointmentStatus(query.Get("status")),
		Date:     query.Get("date"),
		Limit:    queryInt(r, "limit", 0),
		Offset:   queryInt(r, "offset", 0),
	}

	appointments, err := h.service.ListAppointments(r.Context(), req, filter)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if appointments == nil {
		appointments = []*entities.Appointment{}
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"appointments": appointments,
		"count":        len(appointments),
	})
}

// GetAppointment handles GET /api/appointments/{id}
func (h *AppointmentHandler) GetAppointment(w http.ResponseWriter, r *http.Request) {
	req, ok := requester(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	appointment, err := h.service.GetAppointment(r.Context(), req, id)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, appointment)
}

// CancelAppointment handles POST /api/appointments/{id}/cancel
func (h *AppointmentHandler) CancelAppointment(w http.ResponseWriter, r *http.Request) {
	req, ok := requester(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var body cancelRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	appointment, err := h.service.CancelAppointment(r.Context(), req, id, body.Reason)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, appointment)
}

// UpdateStatus handles PATCH /api/admin/appointments/{id}/status
func (h *AppointmentHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var body statusRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	appointment, err := h.service.UpdateStatus(r.Context(), id, entities.AppointmentStatus(body.Status), body.Notes)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, appointment)
}
