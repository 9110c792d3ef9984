package handlers

import (
	"net/http"

	"github.com/zatekoja/healthmarket/internal/application/services"
	"github.com/zatekoja/healthmarket/pkg/money"
)

// AssistHandler serves specialty recommendations and UPI payment helpers
type AssistHandler struct {
	recommendations *services.RecommendationService
	payments        *services.PaymentService
}

// NewAssistHandler creates a new assist handler
func NewAssistHandler(recommendations *services.RecommendationService, payments *services.PaymentService) *AssistHandler {
	return &AssistHandler{
		recommendations: recommendations,
		payments:        payments,
	}
}

type recommendRequest struct {
	Symptoms string `json:"symptoms"`
}

type upiQRRequest struct {
	Amount money.Paise `json:"amount"`
}

type validateUPIRequest struct {
	UPIID string `json:"upi_id"`
}

// RecommendSpecialty handles POST /api/recommendations/specialty
func (h *AssistHandler) RecommendSpecialty(w http.ResponseWriter, r *http.Request) {
	var body recommendRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	rec, err := h.recommendations.RecommendSpecialty(r.Context(), body.Symptoms)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, rec)
}

// GenerateUPIQR handles POST /api/payments/upi-qr
func (h *AssistHandler) GenerateUPIQR(w http.ResponseWriter, r *http.Request) {
	var body upiQRRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	qr, err := h.payments.GenerateUPIQR(r.Context(), body.Amount)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, qr)
}

// ValidateUPIID handles POST /api/payments/validate-upi
func (h *AssistHandler) ValidateUPIID(w http.ResponseWriter, r *http.Request) {
	var body validateUPIRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	if err := h.payments.ValidateUPIID(body.UPIID); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"upi_id": body.UPIID,
		"valid":  true,
	})
}
