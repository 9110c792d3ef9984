package handlers

import (
	"net/http"
	"strconv"

	"github.com/zatekoja/healthmarket/internal/application/services"
	"github.com/zatekoja/healthmarket/internal/domain/entities"
	"github.com/zatekoja/healthmarket/internal/domain/repositories"
)

// LabHandler handles lab test booking requests
type LabHandler struct {
	service *services.LabBookingService
}

// NewLabHandler creates a new lab handler
func NewLabHandler(service *services.LabBookingService) *LabHandler {
	return &LabHandler{service: service}
}

type bookLabTestRequest struct {
	TestID         int64             `json:"test_id"`
	PatientName    string            `json:"patient_name"`
	CollectionDate string            `json:"collection_date"`
	Slot           string            `json:"slot"`
	AddressID      int64             `json:"address_id"`
	Address        *entities.Address `json:"address"`
}

// BookLabTest handles POST /api/lab-bookings
func (h *LabHandler) BookLabTest(w http.ResponseWriter, r *http.Request) {
	req, ok := requester(w, r)
	if !ok {
		return
	}
	var body bookLabTestRequest
	if !decodeJSON(w, r, &body) {
		return
	}

	confirmation, err := h.service.BookLabTest(r.Context(), services.BookLabTestInput{
		UserID:         req.UserID,
		TestID:         body.TestID,
		PatientName:    body.PatientName,
		CollectionDate: body.CollectionDate,
		Slot:           body.Slot,
		AddressID:      body.AddressID,
		Address:        body.Address,
	})
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, confirmation)
}

// ListBookings handles GET /api/lab-bookings?status=
func (h *LabHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	req, ok := requester(w, r)
	if !ok {
		return
	}
	userID, _ := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
	bookings, err := h.service.ListBookings(r.Context(), req, repositories.LabBookingFilter{
		UserID: userID,
		Status: entities.LabBookingStatus(r.URL.Query().Get("status")),
	})
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if bookings == nil {
		bookings = []*entities.LabTestBooking{}
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"bookings": bookings,
		"count":    len(bookings),
	})
}

// GetBooking handles GET /api/lab-bookings/{id}
func (h *LabHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	req, ok := requester(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	booking, err := h.service.GetBooking(r.Context(), req, id)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, booking)
}

// CancelBooking handles POST /api/lab-bookings/{id}/cancel
func (h *LabHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
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
	booking, err := h.service.CancelBooking(r.Context(), req, id, body.Reason)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, booking)
}

// UpdateStatus handles PATCH /api/admin/lab-bookings/{id}/status
func (h *LabHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var body statusRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	booking, err := h.service.UpdateBookingStatus(r.Context(), id, entities.LabBookingStatus(body.Status), body.Notes)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, booking)
}

// AssignCollector handles PUT /api/admin/lab-bookings/{id}/delivery
func (h *LabHandler) AssignCollector(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var person entities.DeliveryPerson
	if !decodeJSON(w, r, &person) {
		return
	}
	booking, err := h.service.AssignDelivery(r.Context(), id, person)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, booking)
}
