package http

import "time"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type MethodOutputRequest struct {
	Method     string  `json:"method"`
	RiskScore  float64 `json:"risk_score"`
	Confidence float64 `json:"confidence"`
}

type CombineRequest struct {
	PatientID string                `json:"patient_id"`
	PlanID    string                `json:"plan_id,omitempty"`
	Strategy  string                `json:"strategy"`
	Inputs    []MethodOutputRequest `json:"inputs"`
}

type PredictionResponse struct {
	PredictionID string                `json:"prediction_id"`
	PatientID    string                `json:"patient_id"`
	PlanID       string                `json:"plan_id,omitempty"`
	Strategy     string                `json:"strategy"`
	Inputs       []MethodOutputRequest `json:"inputs"`
	RiskScore    float64               `json:"risk_score"`
	RiskLevel    string                `json:"risk_level"`
	Agreement    float64               `json:"agreement"`
	CreatedBy    string                `json:"created_by"`
	CreatedAt    time.Time             `json:"created_at"`
}

type PredictionListResponse struct {
	Items []PredictionResponse `json:"items"`
}
