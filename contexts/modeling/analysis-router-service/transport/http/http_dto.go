package http

import "time"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type DataProfileRequest struct {
	SampleCount    int     `json:"sample_count"`
	HasTimeSeries  bool    `json:"has_time_series"`
	NoiseLevel     float64 `json:"noise_level"`
	PriorKnowledge bool    `json:"prior_knowledge"`
}

type CreatePlanRequest struct {
	PatientID string             `json:"patient_id"`
	Requested []string           `json:"requested_methods,omitempty"`
	Profile   DataProfileRequest `json:"profile"`
}

type MethodRouteResponse struct {
	Method string  `json:"method"`
	Weight float64 `json:"weight"`
	Reason string  `json:"reason"`
}

type PlanResponse struct {
	PlanID     string                `json:"plan_id"`
	PatientID  string                `json:"patient_id"`
	Requested  []string              `json:"requested_methods,omitempty"`
	Profile    DataProfileRequest    `json:"profile"`
	Routes     []MethodRouteResponse `json:"routes"`
	Status     string                `json:"status"`
	CreatedBy  string                `json:"created_by"`
	CreatedAt  time.Time             `json:"created_at"`
	DispatchAt *time.Time            `json:"dispatch_at,omitempty"`
}

type PlanListResponse struct {
	Items []PlanResponse `json:"items"`
}
