package entities

// RecommendationSource tells whether the AI or the keyword fallback answered
type RecommendationSource string

const (
	RecommendationSourceAI        RecommendationSource = "ai"
	RecommendationSourceHeuristic RecommendationSource = "heuristic"
)

// SpecialtyRecommendation suggests which kind of doctor fits the symptoms
type SpecialtyRecommendation struct {
	Specialty string               `json:"specialty"`
	Reasoning string               `json:"reasoning"`
	Source    RecommendationSource `json:"source"`
	Doctors   []*Doctor            `json:"doctors,omitempty"`
}

// PaymentQR is a UPI deep link and its rendered QR image
type PaymentQR struct {
	UPILink string `json:"upi_link"`
	DataURL string `json:"data_url"` // data:image/png;base64,...
	Amount  string `json:"amount"`
}
