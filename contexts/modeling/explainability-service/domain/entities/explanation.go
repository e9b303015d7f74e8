package entities

import "time"

type Method string

const (
	MethodSHAP Method = "shap"
	MethodLIME Method = "lime"
)

func (m Method) Valid() bool {
	switch m {
	case MethodSHAP, MethodLIME:
		return true
	default:
		return false
	}
}

type Direction string

const (
	DirectionIncreases Direction = "increases"
	DirectionDecreases Direction = "decreases"
)

// FeatureAttribution is one feature's contribution to a prediction. The
// contribution magnitude is method specific; the direction says which way it
// pushed the risk score.
type FeatureAttribution struct {
	Feature      string
	Contribution float64
	Direction    Direction
}

type Explanation struct {
	ExplanationID string
	PredictionID  string
	Method        Method
	Attributions  []FeatureAttribution
	Summary       string
	ArtifactKey   string
	CreatedBy     string
	CreatedAt     time.Time
}
