package entities

import "time"

type Strategy string

const (
	StrategyWeightedAverage    Strategy = "weighted_average"
	StrategyMajorityVote       Strategy = "majority_vote"
	StrategyConfidenceWeighted Strategy = "confidence_weighted"
)

func (s Strategy) Valid() bool {
	switch s {
	case StrategyWeightedAverage, StrategyMajorityVote, StrategyConfidenceWeighted:
		return true
	default:
		return false
	}
}

type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "low"
	RiskLevelModerate RiskLevel = "moderate"
	RiskLevelHigh     RiskLevel = "high"
)

// MethodOutput is one modeling method's contribution to an ensemble. Scores
// and confidences are normalized to [0,1].
type MethodOutput struct {
	Method     string
	RiskScore  float64
	Confidence float64
}

type EnsemblePrediction struct {
	PredictionID string
	PatientID    string
	PlanID       string
	Strategy     Strategy
	Inputs       []MethodOutput
	RiskScore    float64
	RiskLevel    RiskLevel
	Agreement    float64
	CreatedBy    string
	CreatedAt    time.Time
}
