package openai

import (
	"encoding/json"
	"fmt"
	"strings"
)

const specialtySystemPrompt = `You are a triage assistant for an Indian healthcare marketplace. Given a patient's symptoms, pick the single most suitable doctor specialty. Return ONLY valid JSON with this schema:
{
  "specialty": string (must be one of the allowed specialties when a list is given),
  "reasoning": string (1-2 short sentences in simple language)
}
Do not diagnose. Do not give medical advice beyond which kind of doctor to see.`

type specialtyPayload struct {
	Specialty string `json:"specialty"`
	Reasoning string `json:"reasoning"`
}

func buildSpecialtyUserPrompt(symptoms string, specialties []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Symptoms: %s\n", strings.TrimSpace(symptoms))
	if len(specialties) > 0 {
		fmt.Fprintf(&b, "Allowed specialties: %s\n", strings.Join(specialties, ", "))
	}
	return b.String()
}

// stripCodeFence removes a surrounding markdown code block
func stripCodeFence(text string) string {
	cleaned := strings.TrimSpace(text)
	if strings.HasPrefix(cleaned, "```json") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimSuffix(cleaned, "```")
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(cleaned, "```")
	}
	return strings.TrimSpace(cleaned)
}

func parseSpecialtyPayload(data []byte) (*specialtyPayload, error) {
	var payload specialtyPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	payload.Specialty = strings.TrimSpace(payload.Specialty)
	if payload.Specialty == "" {
		return nil, fmt.Errorf("response has no specialty")
	}
	return &payload, nil
}

// matchSpecialty maps the model's answer onto the catalog's spelling
func matchSpecialty(answer string, specialties []string) (string, bool) {
	if len(specialties) == 0 {
		return answer, true
	}
	for _, s := range specialties {
		if strings.EqualFold(s, answer) {
			return s, true
		}
	}
	return "", false
}
