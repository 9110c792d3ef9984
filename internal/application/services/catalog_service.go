package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/zatekoja/healthmarket/internal/domain/entities"
	"github.com/zatekoja/healthmarket/internal/domain/repositories"
	"github.com/zatekoja/healthmarket/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/healthmarket/pkg/errors"
)

// CatalogService handles the doctor, medicine and lab test catalogs
type CatalogService struct {
	doctors   repositories.DoctorRepository
	medicines repositories.MedicineRepository
	labTests  repositories.LabTestRepository
	search    repositories.DoctorSearchRepository
	now       func() time.Time
}

// NewCatalogService creates a new catalog service
func NewCatalogService(
	doctors repositories.DoctorRepository,
	medicines repositories.MedicineRepository,
	labTests repositories.LabTestRepository,
) *CatalogService {
	return &CatalogService{
		doctors:   doctors,
		medicines: medicines,
		labTests:  labTests,
		now:       time.Now,
	}
}

// SetSearchIndex enables the doctor search index
func (s *CatalogService) SetSearchIndex(search repositories.DoctorSearchRepository) {
	s.search = search
}

// ListDoctors lists doctors from the repository
func (s *CatalogService) ListDoctors(ctx context.Context, filter repositories.DoctorFilter) ([]*entities.Doctor, error) {
	return s.doctors.List(ctx, filter)
}

// SearchDoctors answers free-text queries from the search index when one is
// configured and falls back to repository filtering otherwise
func (s *CatalogService) SearchDoctors(ctx context.Context, filter repositories.DoctorFilter) ([]*entities.Doctor, error) {
	if s.search == nil || strings.TrimSpace(filter.Query) == "" {
		return s.doctors.List(ctx, filter)
	}

	ids, err := s.search.Search(ctx, filter)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("query", filter.Query).
			Msg("doctor search index unavailable, filtering repository")
		return s.doctors.List(ctx, filter)
	}

	doctors := make([]*entities.Doctor, 0, len(ids))
	for _, id := range ids {
		doctor, err := s.doctors.GetByID(ctx, id)
		if err != nil {
			if apperrors.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		doctors = append(doctors, doctor)
	}
	return doctors, nil
}

// GetDoctor retrieves a doctor by ID
func (s *CatalogService) GetDoctor(ctx context.Context, id int64) (*entities.Doctor, error) {
	return s.doctors.GetByID(ctx, id)
}

// Specialties returns the distinct specialties in the catalog, sorted
func (s *CatalogService) Specialties(ctx context.Context) ([]string, error) {
	doctors, err := s.doctors.List(ctx, repositories.DoctorFilter{})
	if err != nil {
		return nil, err
	}
	specialties := distinctSpecialties(doctors)
	sort.Strings(specialties)
	return specialties, nil
}

// CreateDoctor validates, stores and indexes a doctor
func (s *CatalogService) CreateDoctor(ctx context.Context, doctor *entities.Doctor) error {
	if msg := doctor.Validate(); msg != "" {
		return apperrors.NewValidationError(msg)
	}
	now := s.now()
	doctor.CreatedAt = now
	doctor.UpdatedAt = now
	if err := s.doctors.Create(ctx, doctor); err != nil {
		return err
	}
	s.indexDoctor(ctx, doctor)
	return nil
}

// UpdateDoctor validates and replaces a doctor, keeping its creation time
func (s *CatalogService) UpdateDoctor(ctx context.Context, doctor *entities.Doctor) error {
	if msg := doctor.Validate(); msg != "" {
		return apperrors.NewValidationError(msg)
	}
	existing, err := s.doctors.GetByID(ctx, doctor.ID)
	if err != nil {
		return err
	}
	doctor.CreatedAt = existing.CreatedAt
	doctor.UpdatedAt = s.now()
	if err := s.doctors.Update(ctx, doctor); err != nil {
		return err
	}
	s.indexDoctor(ctx, doctor)
	return nil
}

// DeleteDoctor removes a doctor and its index entry. Existing appointments
// keep their doctor snapshot.
func (s *CatalogService) DeleteDoctor(ctx context.Context, id int64) error {
	if err := s.doctors.Delete(ctx, id); err != nil {
		return err
	}
	if s.search != nil {
		if err := s.search.Delete(ctx, id); err != nil {
			observability.LoggerFromContext(ctx).Warn().Err(err).Int64("doctor_id", id).
				Msg("failed to delete doctor from search index")
		}
	}
	return nil
}

// ReindexDoctors pushes every doctor to the search index
func (s *CatalogService) ReindexDoctors(ctx context.Context) (int, error) {
	if s.search == nil {
		return 0, nil
	}
	doctors, err := s.doctors.List(ctx, repositories.DoctorFilter{})
	if err != nil {
		return 0, err
	}
	for _, d := range doctors {
		if err := s.search.Index(ctx, d); err != nil {
			return 0, apperrors.NewExternalError("failed to index doctors", err)
		}
	}
	return len(doctors), nil
}

func (s *CatalogService) indexDoctor(ctx context.Context, doctor *entities.Doctor) {
	if s.search == nil {
		return
	}
	if err := s.search.Index(ctx, doctor); err != nil {
		// the repository is the source of truth; the index catches up on reindex
		observability.LoggerFromContext(ctx).Warn().Err(err).Int64("doctor_id", doctor.ID).
			Msg("failed to index doctor")
	}
}

// ListMedicines lists the pharmacy catalog
func (s *CatalogService) ListMedicines(ctx context.Context, filter repositories.MedicineFilter) ([]*entities.Medicine, error) {
	return s.medicines.List(ctx, filter)
}

// GetMedicine retrieves a medicine by ID
func (s *CatalogService) GetMedicine(ctx context.Context, id int64) (*entities.Medicine, error) {
	return s.medicines.GetByID(ctx, id)
}

// CreateMedicine validates and stores a medicine
func (s *CatalogService) CreateMedicine(ctx context.Context, medicine *entities.Medicine) error {
	if msg := medicine.Validate(); msg != "" {
		return apperrors.NewValidationError(msg)
	}
	now := s.now()
	medicine.CreatedAt = now
	medicine.UpdatedAt = now
	return s.medicines.Create(ctx, medicine)
}

// UpdateMedicine validates and replaces a medicine. Placed orders keep
// their price snapshot.
func (s *CatalogService) UpdateMedicine(ctx context.Context, medicine *entities.Medicine) error {
	if msg := medicine.Validate(); msg != "" {
		return apperrors.NewValidationError(msg)
	}
	existing, err := s.medicines.GetByID(ctx, medicine.ID)
	if err != nil {
		return err
	}
	medicine.CreatedAt = existing.CreatedAt
	medicine.UpdatedAt = s.now()
	return s.medicines.Update(ctx, medicine)
}

// DeleteMedicine removes a medicine
func (s *CatalogService) DeleteMedicine(ctx context.Context, id int64) error {
	return s.medicines.Delete(ctx, id)
}

// ListLabTests lists the lab test catalog
func (s *CatalogService) ListLabTests(ctx context.Context, filter repositories.LabTestFilter) ([]*entities.LabTest, error) {
	return s.labTests.List(ctx, filter)
}

// GetLabTest retrieves a lab test by ID
func (s *CatalogService) GetLabTest(ctx context.Context, id int64) (*entities.LabTest, error) {
	return s.labTests.GetByID(ctx, id)
}

// CreateLabTest validates and stores a lab test
func (s *CatalogService) CreateLabTest(ctx context.Context, test *entities.LabTest) error {
	if msg := test.Validate(); msg != "" {
		return apperrors.NewValidationError(msg)
	}
	now := s.now()
	test.CreatedAt = now
	test.UpdatedAt = now
	return s.labTests.Create(ctx, test)
}

// UpdateLabTest validates and replaces a lab test
func (s *CatalogService) UpdateLabTest(ctx context.Context, test *entities.LabTest) error {
	if msg := test.Validate(); msg != "" {
		return apperrors.NewValidationError(msg)
	}
	existing, err := s.labTests.GetByID(ctx, test.ID)
	if err != nil {
		return err
	}
	test.CreatedAt = existing.CreatedAt
	test.UpdatedAt = s.now()
	return s.labTests.Update(ctx, test)
}

// DeleteLabTest removes a lab test
func (s *CatalogService) DeleteLabTest(ctx context.Context, id int64) error {
	return s.labTests.Delete(ctx, id)
}
