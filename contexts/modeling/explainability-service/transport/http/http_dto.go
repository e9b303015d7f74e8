package http

import "time"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ExplainRequest struct {
	PredictionID string `json:"prediction_id"`
	Method       string `json:"method"`
}

type AttributionResponse struct {
	Feature      string  `json:"feature"`
	Contribution float64 `json:"contribution"`
	Direction    string  `json:"direction"`
}

type ExplanationResponse struct {
	ExplanationID string                `json:"explanation_id"`
	PredictionID  string                `json:"prediction_id"`
	Method        string                `json:"method"`
	Attributions  []AttributionResponse `json:"attributions"`
	Summary       string                `json:"summary"`
	ArtifactKey   string                `json:"artifact_key"`
	CreatedBy     string                `json:"created_by"`
	CreatedAt     time.Time             `json:"created_at"`
}

type ExplanationListResponse struct {
	Items []ExplanationResponse `json:"items"`
}
