package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/zatekoja/healthmarket/internal/application/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportHandler serves admin spreadsheet exports
type ReportHandler struct {
	service *services.ReportService
	now     func() time.Time
}

// NewReportHandler creates a new report handler
func NewReportHandler(service *services.ReportService) *ReportHandler {
	return &ReportHandler{service: service, now: time.Now}
}

// ExportBookings handles GET /api/admin/reports/bookings.xlsx
func (h *ReportHandler) ExportBookings(w http.ResponseWriter, r *http.Request) {
	data, err := h.service.ExportBookings(r.Context())
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	filename := fmt.Sprintf("bookings-%s.xlsx", h.now().Format("20060102"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
