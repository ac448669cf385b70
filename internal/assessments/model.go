package assessments

import (
	"mindwell-backend/internal/assessments/features"
	"mindwell-backend/internal/assessments/recommendations"
)

// Probabilities are percentages that sum to 100.
type Probabilities struct {
	Low    float64 `json:"Low"`
	Medium float64 `json:"Medium"`
	High   float64 `json:"High"`
}

// Result is the outcome of one assessment. It is never persisted.
type Result struct {
	Level                 string                           `json:"level"`
	Probabilities         Probabilities                    `json:"probabilities"`
	Recommendations       []recommendations.Recommendation `json:"recommendations"`
	Maintain              []recommendations.Recommendation `json:"maintain"`
	Features              features.Vector                  `json:"features"`
	PackedRecommendations string                           `json:"packedRecommendations"`
	Symptoms              string                           `json:"symptoms,omitempty"`
	SymptomsLong          string                           `json:"symptomsLong,omitempty"`
}
