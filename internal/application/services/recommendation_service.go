package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/zatekoja/healthmarket/internal/domain/entities"
	"github.com/zatekoja/healthmarket/internal/domain/providers"
	"github.com/zatekoja/healthmarket/internal/domain/repositories"
	"github.com/zatekoja/healthmarket/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/healthmarket/pkg/errors"
	"github.com/zatekoja/healthmarket/pkg/utils"
)

const (
	recommendationCacheName = "recommendation"
	recommendationCacheTTL  = 6 * time.Hour
	maxRecommendedDoctors   = 5
)

// RecommendationService suggests a specialty for the patient's symptoms and
// the doctors who practise it
type RecommendationService struct {
	ai       providers.RecommendationProvider
	fallback providers.RecommendationProvider
	doctors  repositories.DoctorRepository
	cache    providers.CacheProvider
	metrics  *observability.Metrics
}

// NewRecommendationService creates a recommendation service. ai may be nil,
// in which case only the fallback is consulted.
func NewRecommendationService(ai, fallback providers.RecommendationProvider, doctors repositories.DoctorRepository) *RecommendationService {
	return &RecommendationService{
		ai:       ai,
		fallback: fallback,
		doctors:  doctors,
	}
}

// SetCache enables result caching
func (s *RecommendationService) SetCache(cache providers.CacheProvider) {
	s.cache = cache
}

// SetMetrics sets the metrics recorder
func (s *RecommendationService) SetMetrics(metrics *observability.Metrics) {
	s.metrics = metrics
}

// RecommendSpecialty asks the AI provider once and falls back to the keyword
// rules when it is unavailable or fails
func (s *RecommendationService) RecommendSpecialty(ctx context.Context, symptoms string) (*entities.SpecialtyRecommendation, error) {
	normalized := utils.NormalizeText(symptoms)
	if normalized == "" {
		return nil, apperrors.NewValidationError("symptoms are required")
	}

	logger := observability.LoggerFromContext(ctx)
	key := recommendationCacheKey(normalized)
	if rec, ok := s.cached(ctx, key); ok {
		return s.withDoctors(ctx, rec)
	}

	doctors, err := s.doctors.List(ctx, repositories.DoctorFilter{})
	if err != nil {
		return nil, err
	}
	specialties := distinctSpecialties(doctors)

	var rec *entities.SpecialtyRecommendation
	if s.ai != nil {
		rec, err = s.ai.RecommendSpecialty(ctx, symptoms, specialties)
		if err != nil {
			event := logger.Warn().Err(err)
			if errors.Is(err, providers.ErrRecommendationUnauthorized) {
				event = logger.Error().Err(err)
			}
			event.Msg("ai specialty recommendation failed, using keyword rules")
			rec = nil
		}
	}
	if rec == nil {
		rec, err = s.fallback.RecommendSpecialty(ctx, symptoms, specialties)
		if err != nil {
			return nil, apperrors.NewExternalError("failed to recommend a specialty", err)
		}
	}

	s.store(ctx, key, rec)
	return s.withDoctors(ctx, rec)
}

func (s *RecommendationService) cached(ctx context.Context, key string) (*entities.SpecialtyRecommendation, bool) {
	if s.cache == nil {
		return nil, false
	}
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, providers.ErrCacheMiss) {
			observability.LoggerFromContext(ctx).Warn().Err(err).Msg("recommendation cache read failed")
		}
		observability.RecordCacheMiss(ctx, s.metrics, recommendationCacheName)
		return nil, false
	}
	var rec entities.SpecialtyRecommendation
	if err := json.Unmarshal(data, &rec); err != nil {
		observability.RecordCacheMiss(ctx, s.metrics, recommendationCacheName)
		return nil, false
	}
	observability.RecordCacheHit(ctx, s.metrics, recommendationCacheName)
	return &rec, true
}

func (s *RecommendationService) store(ctx context.Context, key string, rec *entities.SpecialtyRecommendation) {
	if s.cache == nil {
		return
	}
	stored := *rec
	stored.Doctors = nil
	data, err := json.Marshal(stored)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, recommendationCacheTTL); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("recommendation cache write failed")
	}
}

// withDoctors attaches the current doctors of the recommended specialty
func (s *RecommendationService) withDoctors(ctx context.Context, rec *entities.SpecialtyRecommendation) (*entities.SpecialtyRecommendation, error) {
	doctors, err := s.doctors.List(ctx, repositories.DoctorFilter{Specialty: rec.Specialty, Limit: maxRecommendedDoctors})
	if err != nil {
		return nil, err
	}
	rec.Doctors = doctors
	return rec, nil
}

func recommendationCacheKey(normalized string) string {
	sum := sha256.Sum256([]byte(normalized))
	return "recommendation:" + hex.EncodeToString(sum[:])
}

func distinctSpecialties(doctors []*entities.Doctor) []string {
	seen := make(map[string]bool)
	var out []string
	for _, d := range doctors {
		key := strings.ToLower(d.Specialty)
		if d.Specialty == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, d.Specialty)
	}
	return out
}
