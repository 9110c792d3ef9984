package recommendation

import (
	"context"
	"strings"

	"github.com/zatekoja/healthmarket/internal/domain/entities"
	"github.com/zatekoja/healthmarket/internal/domain/providers"
)

// DefaultSpecialty is suggested when no keyword matches
const DefaultSpecialty = "General Physician"

type keywordRule struct {
	specialty string
	keywords  []string
	reasoning string
}

// rules are checked in order; the first rule with a matching keyword wins
var rules = []keywordRule{
	{
		specialty: "Cardiology",
		keywords:  []string{"chest pain", "heart", "palpitation", "blood pressure", "bp", "breathless"},
		reasoning: "Chest or heart related symptoms are best checked by a cardiologist.",
	},
	{
		specialty: "Dermatology",
		keywords:  []string{"skin", "rash", "itch", "acne", "pimple", "hair fall", "eczema"},
		reasoning: "Skin, hair and nail complaints are treated by a dermatologist.",
	},
	{
		specialty: "Orthopedics",
		keywords:  []string{"bone", "joint", "knee", "back pain", "fracture", "sprain", "shoulder"},
		reasoning: "Bone, joint and muscle pain is handled by an orthopedic doctor.",
	},
	{
		specialty: "Pediatrics",
		keywords:  []string{"child", "baby", "infant", "kid", "toddler"},
		reasoning: "Children's health concerns are best seen by a pediatrician.",
	},
	{
		specialty: "Neurology",
		keywords:  []string{"headache", "migraine", "seizure", "numbness", "dizzy", "dizziness"},
		reasoning: "Headaches and nerve related symptoms are assessed by a neurologist.",
	},
	{
		specialty: "ENT",
		keywords:  []string{"ear", "throat", "nose", "sinus", "tonsil", "hearing"},
		reasoning: "Ear, nose and throat problems are treated by an ENT specialist.",
	},
	{
		specialty: "Gynecology",
		keywords:  []string{"period", "pregnan", "menstrual", "pcos"},
		reasoning: "Menstrual and pregnancy concerns are handled by a gynecologist.",
	},
	{
		specialty: "Gastroenterology",
		keywords:  []string{"stomach", "acidity", "digestion", "constipation", "diarrhea", "vomit"},
		reasoning: "Stomach and digestion issues are treated by a gastroenterologist.",
	},
}

// KeywordProvider maps symptoms to a specialty with fixed keyword rules.
// It stands in for the AI provider when no credential is configured or the
// AI call fails.
type KeywordProvider struct{}

var _ providers.RecommendationProvider = KeywordProvider{}

// NewKeywordProvider creates the keyword fallback
func NewKeywordProvider() KeywordProvider {
	return KeywordProvider{}
}

// RecommendSpecialty never fails. When specialties is non-empty, only rules
// naming one of them are considered.
func (KeywordProvider) RecommendSpecialty(_ context.Context, symptoms string, specialties []string) (*entities.SpecialtyRecommendation, error) {
	text := " " + strings.ToLower(symptoms) + " "
	for _, rule := range rules {
		specialty, ok := allowed(rule.specialty, specialties)
		if !ok {
			continue
		}
		for _, kw := range rule.keywords {
			if containsWord(text, kw) {
				return &entities.SpecialtyRecommendation{
					Specialty: specialty,
					Reasoning: rule.reasoning,
					Source:    entities.RecommendationSourceHeuristic,
				}, nil
			}
		}
	}

	specialty, ok := allowed(DefaultSpecialty, specialties)
	if !ok && len(specialties) > 0 {
		specialty = specialties[0]
	}
	return &entities.SpecialtyRecommendation{
		Specialty: specialty,
		Reasoning: "A general physician can assess your symptoms and refer you if needed.",
		Source:    entities.RecommendationSourceHeuristic,
	}, nil
}

func allowed(specialty string, specialties []string) (string, bool) {
	if len(specialties) == 0 {
		return specialty, true
	}
	for _, s := range specialties {
		if strings.EqualFold(s, specialty) {
			return s, true
		}
	}
	return "", false
}

// containsWord matches short keywords on word boundaries so "bp" does not
// match inside another word; longer keywords match as substrings
func containsWord(text, keyword string) bool {
	if len(keyword) <= 3 {
		return strings.Contains(text, " "+keyword+" ")
	}
	return strings.Contains(text, keyword)
}
