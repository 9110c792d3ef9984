package evaluation

import "time"

// Difficulty grades how clearly a case's symptoms point at one specialty.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"   // e.g., "chest pain", "skin rash"
	DifficultyMedium Difficulty = "medium" // e.g., "my kid has an ear infection"
	DifficultyHard   Difficulty = "hard"   // vague or mixed symptoms
)

// IsValid checks if the difficulty value is one of the defined constants.
func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// GoldenCase is a labeled symptom description with the specialty a
// clinician would send the patient to.
type GoldenCase struct {
	ID                string     `json:"id"`
	Symptoms          string     `json:"symptoms"`
	ExpectedSpecialty string     `json:"expected_specialty"`
	Acceptable        []string   `json:"acceptable,omitempty"` // other specialties that are not wrong
	Difficulty        Difficulty `json:"difficulty"`
}

// EvalResult holds the evaluation outcome for a single case.
type EvalResult struct {
	CaseID     string        `json:"case_id"`
	Symptoms   string        `json:"symptoms"`
	Difficulty Difficulty    `json:"difficulty"`
	Expected   string        `json:"expected"`
	Predicted  string        `json:"predicted,omitempty"`
	Source     string        `json:"source,omitempty"`
	Exact      bool          `json:"exact"`
	Acceptable bool          `json:"acceptable"`
	Error      string        `json:"error,omitempty"`
	Latency    time.Duration `json:"latency"`
}

// EvalSummary holds aggregate metrics across all golden cases.
type EvalSummary struct {
	TotalCases         int                               `json:"total_cases"`
	Errors             int                               `json:"errors"`
	ExactAccuracy      float64                           `json:"exact_accuracy"`
	AcceptableAccuracy float64                           `json:"acceptable_accuracy"`
	FallbackRate       float64                           `json:"fallback_rate"` // share answered by the keyword rules
	AvgLatency         time.Duration                     `json:"avg_latency"`
	ByDifficulty       map[Difficulty]*DifficultySummary `json:"by_difficulty"`
	Misses             []EvalResult                      `json:"misses,omitempty"`
}

// DifficultySummary holds metrics grouped by difficulty.
type DifficultySummary struct {
	Count              int     `json:"count"`
	ExactAccuracy      float64 `json:"exact_accuracy"`
	AcceptableAccuracy float64 `json:"acceptable_accuracy"`
}
