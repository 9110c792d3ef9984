package evaluation

import "strings"

// HitAtK reports whether any relevant label appears in the top-K predictions.
// Labels compare case-insensitively.
func HitAtK(relevant, predicted []string, k int) bool {
	return MRRAtK(relevant, predicted, k) > 0
}

// MRRAtK computes the reciprocal of the rank of the first relevant label in
// the top-K predictions. Returns 0.0 if no relevant label is found in top-K.
func MRRAtK(relevant, predicted []string, k int) float64 {
	if len(relevant) == 0 || len(predicted) == 0 {
		return 0.0
	}

	relevantSet := make(map[string]struct{}, len(relevant))
	for _, r := range relevant {
		relevantSet[strings.ToLower(strings.TrimSpace(r))] = struct{}{}
	}

	topK := predicted
	if k < len(topK) {
		topK = topK[:k]
	}

	for i, p := range topK {
		if _, ok := relevantSet[strings.ToLower(strings.TrimSpace(p))]; ok {
			return 1.0 / float64(i+1)
		}
	}

	return 0.0
}
