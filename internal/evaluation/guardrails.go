package evaluation

import "fmt"

// GuardrailConfig sets the minimum quality a recommender must reach
type GuardrailConfig struct {
	MinExactAccuracy      float64
	MinAcceptableAccuracy float64
	MaxErrorRate          float64
}

// Guardrails gates an evaluation run on GuardrailConfig
type Guardrails struct {
	config GuardrailConfig
}

func NewGuardrails(config GuardrailConfig) *Guardrails {
	return &Guardrails{config: config}
}

// Check returns one message per threshold the summary violates
func (g *Guardrails) Check(s *EvalSummary) []string {
	var violations []string
	if s == nil || s.TotalCases == 0 {
		return []string{"no cases evaluated"}
	}
	if s.ExactAccuracy < g.config.MinExactAccuracy {
		violations = append(violations, fmt.Sprintf("exact accuracy %.2f below %.2f", s.ExactAccuracy, g.config.MinExactAccuracy))
	}
	if s.AcceptableAccuracy < g.config.MinAcceptableAccuracy {
		violations = append(violations, fmt.Sprintf("acceptable accuracy %.2f below %.2f", s.AcceptableAccuracy, g.config.MinAcceptableAccuracy))
	}
	errorRate := float64(s.Errors) / float64(s.TotalCases)
	if errorRate > g.config.MaxErrorRate {
		violations = append(violations, fmt.Sprintf("error rate %.2f above %.2f", errorRate, g.config.MaxErrorRate))
	}
	return violations
}
