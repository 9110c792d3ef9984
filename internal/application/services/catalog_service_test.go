package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/healthmarket/internal/application/services"
	"github.com/zatekoja/healthmarket/internal/domain/entities"
	"github.com/zatekoja/healthmarket/internal/domain/repositories"
	apperrors "github.com/zatekoja/healthmarket/pkg/errors"
)

type mockDoctorSearch struct {
	mock.Mock
}

func (m *mockDoctorSearch) Index(ctx context.Context, doctor *entities.Doctor) error {
	return m.Called(ctx, doctor).Error(0)
}

func (m *mockDoctorSearch) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockDoctorSearch) Search(ctx context.Context, filter repositories.DoctorFilter) ([]int64, error) {
	args := m.Called(ctx, filter)
	ids, _ := args.Get(0).([]int64)
	return ids, args.Error(1)
}

func newCatalogService(f *fixture) *services.CatalogService {
	return services.NewCatalogService(f.doctors, f.medicines, f.labTests)
}

func TestCatalogService_CreateDoctor_IndexesAndValidates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	search := new(mockDoctorSearch)
	svc := newCatalogService(f)
	svc.SetSearchIndex(search)

	search.On("Index", mock.Anything, mock.MatchedBy(func(d *entities.Doctor) bool {
		return d.Name == "Dr. Kavya Menon"
	})).Return(nil).Once()

	doctor := &entities.Doctor{Name: "Dr. Kavya Menon", Specialty: "Dermatologist", Location: "Kochi", AvailableTime: "5 PM - 8 PM"}
	require.NoError(t, svc.CreateDoctor(ctx, doctor))
	assert.Equal(t, int64(1), doctor.ID)
	assert.False(t, doctor.CreatedAt.IsZero())

	err := svc.CreateDoctor(ctx, &entities.Doctor{Name: "Dr. No Hours", Specialty: "Dermatologist", Location: "Kochi"})
	assert.True(t, apperrors.IsValidation(err))

	search.AssertExpectations(t)
}

func TestCatalogService_IndexFailureDoesNotFailWrite(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	search := new(mockDoctorSearch)
	svc := newCatalogService(f)
	svc.SetSearchIndex(search)

	search.On("Index", mock.Anything, mock.Anything).Return(errors.New("typesense down"))
	search.On("Delete", mock.Anything, int64(1)).Return(errors.New("typesense down"))

	doctor := &entities.Doctor{Name: "Dr. Kavya Menon", Specialty: "Dermatologist", Location: "Kochi", AvailableTime: "5 PM - 8 PM"}
	require.NoError(t, svc.CreateDoctor(ctx, doctor))
	require.NoError(t, svc.DeleteDoctor(ctx, doctor.ID))

	_, err := svc.GetDoctor(ctx, doctor.ID)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestCatalogService_SearchDoctors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	cardio := f.addDoctor(t, "Dr. Meera Iyer", "Cardiologist")
	f.addDoctor(t, "Dr. Arjun Shah", "Orthopedic")
	svc := newCatalogService(f)

	found, err := svc.SearchDoctors(ctx, repositories.DoctorFilter{Query: "cardio"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, cardio.ID, found[0].ID)

	search := new(mockDoctorSearch)
	svc.SetSearchIndex(search)
	filter := repositories.DoctorFilter{Query: "heart"}
	search.On("Search", mock.Anything, filter).Return([]int64{cardio.ID, 404}, nil).Once()

	found, err = svc.SearchDoctors(ctx, filter)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Dr. Meera Iyer", found[0].Name)

	search.On("Search", mock.Anything, repositories.DoctorFilter{Query: "Shah"}).Return(nil, errors.New("timeout")).Once()
	found, err = svc.SearchDoctors(ctx, repositories.DoctorFilter{Query: "Shah"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Dr. Arjun Shah", found[0].Name)

	search.AssertExpectations(t)
}

func TestCatalogService_Specialties(t *testing.T) {
	f := newFixture(t)
	f.addDoctor(t, "Dr. Meera Iyer", "Cardiologist")
	f.addDoctor(t, "Dr. Arjun Shah", "Orthopedic")
	f.addDoctor(t, "Dr. Rahul Verma", "cardiologist")

	specialties, err := newCatalogService(f).Specialties(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Cardiologist", "Orthopedic"}, specialties)
}

func TestCatalogService_Medicines(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := newCatalogService(f)

	err := svc.CreateMedicine(ctx, &entities.Medicine{Name: "Azithromycin", Price: paise("120"), MRP: paise("100")})
	assert.True(t, apperrors.IsValidation(err), "price above mrp")

	medicine := &entities.Medicine{Name: "Azithromycin", Price: paise("90"), MRP: paise("100")}
	require.NoError(t, svc.CreateMedicine(ctx, medicine))
	created := medicine.CreatedAt

	medicine.Price = paise("85")
	require.NoError(t, svc.UpdateMedicine(ctx, medicine))
	got, err := svc.GetMedicine(ctx, medicine.ID)
	require.NoError(t, err)
	assert.Equal(t, paise("85"), got.Price)
	assert.True(t, got.CreatedAt.Equal(created))

	err = svc.UpdateMedicine(ctx, &entities.Medicine{ID: 50, Name: "Ghost", Price: paise("1"), MRP: paise("1")})
	assert.True(t, apperrors.IsNotFound(err))

	require.NoError(t, svc.DeleteMedicine(ctx, medicine.ID))
	list, err := svc.ListMedicines(ctx, repositories.MedicineFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCatalogService_LabTests(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := newCatalogService(f)

	err := svc.CreateLabTest(ctx, &entities.LabTest{Name: "HbA1c", Price: 0, MRP: paise("500")})
	assert.True(t, apperrors.IsValidation(err))

	test := &entities.LabTest{Name: "HbA1c", Price: paise("450"), MRP: paise("500"), Includes: []string{"Glycated haemoglobin"}}
	require.NoError(t, svc.CreateLabTest(ctx, test))

	list, err := svc.ListLabTests(ctx, repositories.LabTestFilter{Query: "hba1c"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, []string{"Glycated haemoglobin"}, list[0].Includes)
}
