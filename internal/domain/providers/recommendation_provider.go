package providers

import (
	"context"
	"errors"

	"github.com/zatekoja/healthmarket/internal/domain/entities"
)

// ErrRecommendationUnauthorized indicates the AI credential was rejected
var ErrRecommendationUnauthorized = errors.New("recommendation provider unauthorized")

// RecommendationProvider maps free-text symptoms to a doctor specialty
type RecommendationProvider interface {
	RecommendSpecialty(ctx context.Context, symptoms string, specialties []string) (*entities.SpecialtyRecommendation, error)
}
