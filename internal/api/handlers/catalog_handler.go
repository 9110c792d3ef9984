package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/zatekoja/healthmarket/internal/application/services"
	"github.com/zatekoja/healthmarket/internal/domain/entities"
	"github.com/zatekoja/healthmarket/internal/domain/repositories"
)

// CatalogHandler serves the doctor, medicine and lab test catalogs
type CatalogHandler struct {
	service *services.CatalogService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(service *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// ListDoctors handles GET /api/doctors?specialty=&location=&q=&limit=&offset=
func (h *CatalogHandler) ListDoctors(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := repositories.DoctorFilter{
		Specialty: query.Get("specialty"),
		Location:  query.Get("location"),
		Query:     strings.TrimSpace(query.Get("q")),
		Limit:     queryInt(r, "limit", 0),
		Offset:    queryInt(r, "offset", 0),
	}

	doctors, err := h.service.SearchDoctors(r.Context(), filter)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if doctors == nil {
		doctors = []*entities.Doctor{}
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"doctors": doctors,
		"count":   len(doctors),
	})
}

// GetDoctor handles GET /api/doctors/{id}
func (h *CatalogHandler) GetDoctor(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	doctor, err := h.service.GetDoctor(r.Context(), id)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, doctor)
}

// ListSpecialties handles GET /api/specialties
func (h *CatalogHandler) ListSpecialties(w http.ResponseWriter, r *http.Request) {
	specialties, err := h.service.Specialties(r.Context())
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if specialties == nil {
		specialties = []string{}
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"specialties": specialties})
}

// CreateDoctor handles POST /api/admin/doctors
func (h *CatalogHandler) CreateDoctor(w http.ResponseWriter, r *http.Request) {
	var doctor entities.Doctor
	if !decodeJSON(w, r, &doctor) {
		return
	}
	doctor.ID = 0
	if err := h.service.CreateDoctor(r.Context(), &doctor); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, doctor)
}

// UpdateDoctor handles PUT /api/admin/doctors/{id}
func (h *CatalogHandler) UpdateDoctor(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var doctor entities.Doctor
	if !decodeJSON(w, r, &doctor) {
		return
	}
	doctor.ID = id
	if err := h.service.UpdateDoctor(r.Context(), &doctor); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, doctor)
}

// DeleteDoctor handles DELETE /api/admin/doctors/{id}
func (h *CatalogHandler) DeleteDoctor(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteDoctor(r.Context(), id); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ReindexDoctors handles POST /api/admin/doctors/reindex
func (h *CatalogHandler) ReindexDoctors(w http.ResponseWriter, r *http.Request) {
	count, err := h.service.ReindexDoctors(r.Context())
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]int{"indexed": count})
}

// ListMedicines handles GET /api/medicines?q=&category=&ids=1,2
func (h *CatalogHandler) ListMedicines(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := repositories.MedicineFilter{
		Query:    query.Get("q"),
		Category: query.Get("category"),
	}
	if raw := query.Get("ids"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
			if err != nil {
				respondWithError(w, http.StatusBadRequest, "ids must be a comma separated list of numbers")
				return
			}
			filter.IDs = append(filter.IDs, id)
		}
	}

	medicines, err := h.service.ListMedicines(r.Context(), filter)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if medicines == nil {
		medicines = []*entities.Medicine{}
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"medicines": medicines,
		"count":     len(medicines),
	})
}

// GetMedicine handles GET /api/medicines/{id}
func (h *CatalogHandler) GetMedicine(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	medicine, err := h.service.GetMedicine(r.Context(), id)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, medicine)
}

// CreateMedicine handles POST /api/admin/medicines
func (h *CatalogHandler) CreateMedicine(w http.ResponseWriter, r *http.Request) {
	var medicine entities.Medicine
	if !decodeJSON(w, r, &medicine) {
		return
	}
	medicine.ID = 0
	if err := h.service.CreateMedicine(r.Context(), &medicine); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, medicine)
}

// UpdateMedicine handles PUT /api/admin/medicines/{id}
func (h *CatalogHandler) UpdateMedicine(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var medicine entities.Medicine
	if !decodeJSON(w, r, &medicine) {
		return
	}
	medicine.ID = id
	if err := h.service.UpdateMedicine(r.Context(), &medicine); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, medicine)
}

// DeleteMedicine handles DELETE /api/admin/medicines/{id}
func (h *CatalogHandler) DeleteMedicine(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteMedicine(r.Context(), id); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListLabTests handles GET /api/lab-tests?q=
func (h *CatalogHandler) ListLabTests(w http.ResponseWriter, r *http.Request) {
	tests, err := h.service.ListLabTests(r.Context(), repositories.LabTestFilter{Query: r.URL.Query().Get("q")})
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if tests == nil {
		tests = []*entities.LabTest{}
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"lab_tests": tests,
		"slots":     entities.LabSlots,
		"count":     len(tests),
	})
}

// GetLabTest handles GET /api/lab-tests/{id}
func (h *CatalogHandler) GetLabTest(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	test, err := h.service.GetLabTest(r.Context(), id)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, test)
}

// CreateLabTest handles POST /api/admin/lab-tests
func (h *CatalogHandler) CreateLabTest(w http.ResponseWriter, r *http.Request) {
	var test entities.LabTest
	if !decodeJSON(w, r, &test) {
		return
	}
	test.ID = 0
	if err := h.service.CreateLabTest(r.Context(), &test); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, test)
}

// UpdateLabTest handles PUT /api/admin/lab-tests/{id}
func (h *CatalogHandler) UpdateLabTest(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var test entities.LabTest
	if !decodeJSON(w, r, &test) {
		return
	}
	test.ID = id
	if err := h.service.UpdateLabTest(r.Context(), &test); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, test)
}

// DeleteLabTest handles DELETE /api/admin/lab-tests/{id}
func (h *CatalogHandler) DeleteLabTest(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteLabTest(r.Context(), id); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
