package evaluation

import (
	"context"
	"time"

	"github.com/zatekoja/healthmarket/internal/domain/entities"
)

// Recommender is the specialty recommendation under evaluation
type Recommender interface {
	RecommendSpecialty(ctx context.Context, symptoms string) (*entities.SpecialtyRecommendation, error)
}

// Runner runs evaluation across a set of golden cases.
type Runner struct {
	recommender Recommender
}

func NewRunner(rec Recommender) *Runner {
	return &Runner{recommender: rec}
}

func (r *Runner) Run(ctx context.Context, cases []GoldenCase) (*EvalSummary, error) {
	summary := &EvalSummary{
		TotalCases:   len(cases),
		ByDifficulty: make(map[Difficulty]*DifficultySummary),
	}

	fallbacks := 0
	for _, gc := range cases {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start := time.Now()
		rec, err := r.recommender.RecommendSpecialty(ctx, gc.Symptoms)
		result := EvalResult{
			CaseID:     gc.ID,
			Symptoms:   gc.Symptoms,
			Difficulty: gc.Difficulty,
			Expected:   gc.ExpectedSpecialty,
			Latency:    time.Since(start),
		}

		if err != nil {
			result.Error = err.Error()
		} else {
			predicted := []string{rec.Specialty}
			result.Predicted = rec.Specialty
			result.Source = string(rec.Source)
			result.Exact = HitAtK([]string{gc.ExpectedSpecialty}, predicted, 1)
			result.Acceptable = HitAtK(append([]string{gc.ExpectedSpecialty}, gc.Acceptable...), predicted, 1)
			if rec.Source == entities.RecommendationSourceHeuristic {
				fallbacks++
			}
		}

		r.updateSummary(summary, result)
	}

	r.finalizeSummary(summary, fallbacks)
	return summary, nil
}

func (r *Runner) updateSummary(s *EvalSummary, res EvalResult) {
	s.AvgLatency += res.Latency
	if res.Error != "" {
		s.Errors++
	}
	if res.Exact {
		s.ExactAccuracy++
	}
	if res.Acceptable {
		s.AcceptableAccuracy++
	} else {
		s.Misses = append(s.Misses, res)
	}

	if _, ok := s.ByDifficulty[res.Difficulty]; !ok {
		s.ByDifficulty[res.Difficulty] = &DifficultySummary{}
	}
	ds := s.ByDifficulty[res.Difficulty]
	ds.Count++
	if res.Exact {
		ds.ExactAccuracy++
	}
	if res.Acceptable {
		ds.AcceptableAccuracy++
	}
}

func (r *Runner) finalizeSummary(s *EvalSummary, fallbacks int) {
	if s.TotalCases > 0 {
		n := float64(s.TotalCases)
		s.ExactAccuracy /= n
		s.AcceptableAccuracy /= n
		s.AvgLatency /= time.Duration(s.TotalCases)
	}
	if answered := s.TotalCases - s.Errors; answered > 0 {
		s.FallbackRate = float64(fallbacks) / float64(answered)
	}

	for _, ds := range s.ByDifficulty {
		if ds.Count > 0 {
			n := float64(ds.Count)
			ds.ExactAccuracy /= n
			ds.AcceptableAccuracy /= n
		}
	}
}
