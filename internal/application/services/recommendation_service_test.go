package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/healthmarket/internal/adapters/cache"
	"github.com/zatekoja/healthmarket/internal/adapters/providers/recommendation"
	"github.com/zatekoja/healthmarket/internal/application/services"
	"github.com/zatekoja/healthmarket/internal/domain/entities"
	"github.com/zatekoja/healthmarket/internal/domain/providers"
	redisclient "github.com/zatekoja/healthmarket/internal/infrastructure/clients/redis"
	apperrors "github.com/zatekoja/healthmarket/pkg/errors"
)

type mockRecommender struct {
	mock.Mock
}

func (m *mockRecommender) RecommendSpecialty(ctx context.Context, symptoms string, specialties []string) (*entities.SpecialtyRecommendation, error) {
	args := m.Called(ctx, symptoms, specialties)
	rec, _ := args.Get(0).(*entities.SpecialtyRecommendation)
	return rec, args.Error(1)
}

func TestRecommendationService_UsesAIAndAttachesDoctors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addDoctor(t, "Dr. Meera Iyer", "Cardiologist")
	f.addDoctor(t, "Dr. Arjun Shah", "Orthopedic")

	ai := new(mockRecommender)
	ai.On("RecommendSpecialty", mock.Anything, "racing heart", []string{"Cardiologist", "Orthopedic"}).
		Return(&entities.SpecialtyRecommendation{Specialty: "Cardiologist", Reasoning: "Palpitations", Source: entities.RecommendationSourceAI}, nil).
		Once()

	svc := services.NewRecommendationService(ai, recommendation.NewKeywordProvider(), f.doctors)
	rec, err := svc.RecommendSpecialty(ctx, "racing heart")
	require.NoError(t, err)

	assert.Equal(t, "Cardiologist", rec.Specialty)
	assert.Equal(t, entities.RecommendationSourceAI, rec.Source)
	require.Len(t, rec.Doctors, 1)
	assert.Equal(t, "Dr. Meera Iyer", rec.Doctors[0].Name)
	ai.AssertExpectations(t)
}

func TestRecommendationService_FallsBackOnAIFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addDoctor(t, "Dr. Arjun Shah", "Orthopedics")
	f.addDoctor(t, "Dr. Nikhil Rao", "General Physician")

	ai := new(mockRecommender)
	ai.On("RecommendSpecialty", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, providers.ErrRecommendationUnauthorized).Once()

	svc := services.NewRecommendationService(ai, recommendation.NewKeywordProvider(), f.doctors)
	rec, err := svc.RecommendSpecialty(ctx, "knee pain after running")
	require.NoError(t, err)
	assert.Equal(t, entities.RecommendationSourceHeuristic, rec.Source)
	assert.Equal(t, "Orthopedics", rec.Specialty)
	ai.AssertNumberOfCalls(t, "RecommendSpecialty", 1)
}

func TestRecommendationService_WithoutAI(t *testing.T) {
	f := newFixture(t)
	svc := services.NewRecommendationService(nil, recommendation.NewKeywordProvider(), f.doctors)

	rec, err := svc.RecommendSpecialty(context.Background(), "mild fever and tiredness")
	require.NoError(t, err)
	assert.Equal(t, entities.RecommendationSourceHeuristic, rec.Source)

	_, err = svc.RecommendSpecialty(context.Background(), "   ")
	assert.True(t, apperrors.IsValidation(err))
}

func TestRecommendationService_CachesByNormalizedSymptoms(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addDoctor(t, "Dr. Meera Iyer", "Cardiologist")

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	ai := new(mockRecommender)
	ai.On("RecommendSpecialty", mock.Anything, mock.Anything, mock.Anything).
		Return(&entities.SpecialtyRecommendation{Specialty: "Cardiologist", Source: entities.RecommendationSourceAI}, nil).
		Once()

	svc := services.NewRecommendationService(ai, recommendation.NewKeywordProvider(), f.doctors)
	svc.SetCache(cache.NewRedisAdapter(redisclient.NewClientFromRedis(rdb), "test:"))

	first, err := svc.RecommendSpecialty(ctx, "Chest  Pain")
	require.NoError(t, err)
	second, err := svc.RecommendSpecialty(ctx, "chest pain")
	require.NoError(t, err)

	assert.Equal(t, first.Specialty, second.Specialty)
	assert.Len(t, second.Doctors, 1)
	ai.AssertNumberOfCalls(t, "RecommendSpecialty", 1)
}

type failingRecommender struct{}

func (failingRecommender) RecommendSpecialty(context.Context, string, []string) (*entities.SpecialtyRecommendation, error) {
	return nil, errors.New("boom")
}

func TestRecommendationService_FallbackFailureIsExternal(t *testing.T) {
	f := newFixture(t)
	svc := services.NewRecommendationService(failingRecommender{}, failingRecommender{}, f.doctors)

	_, err := svc.RecommendSpecialty(context.Background(), "headache")
	assert.Equal(t, apperrors.ErrorTypeExternal, apperrors.TypeOf(err))
}
