package http

import "time"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type SubmitWorkflowRequest struct {
	IdempotencyKey string         `json:"idempotency_key"`
	WorkflowType   string         `json:"workflow_type"`
	PatientID      string         `json:"patient_id"`
	PlanID         string         `json:"plan_id,omitempty"`
	Priority       int            `json:"priority,omitempty"`
	Parameters     map[string]any `json:"parameters,omitempty"`
	MaxAttempts    int            `json:"max_attempts,omitempty"`
}

type ReportProgressRequest struct {
	Progress float64 `json:"progress"`
}

type WorkflowResponse struct {
	WorkflowID   string         `json:"workflow_id"`
	WorkflowType string         `json:"workflow_type"`
	PatientID    string         `json:"patient_id"`
	PlanID       string         `json:"plan_id,omitempty"`
	Status       string         `json:"status"`
	Priority     int            `json:"priority"`
	Progress     float64        `json:"progress"`
	Parameters   map[string]any `json:"parameters,omitempty"`
	ErrorMessage string         `json:"error_message,omitempty"`
	Attempts     int            `json:"attempts"`
	MaxAttempts  int            `json:"max_attempts"`
	CreatedBy    string         `json:"created_by,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	StartedAt    *time.Time     `json:"started_at,omitempty"`
	CompletedAt  *time.Time     `json:"completed_at,omitempty"`
}

type SubmitWorkflowResponse struct {
	Workflow WorkflowResponse `json:"workflow"`
	Replayed bool             `json:"replayed"`
}

type WorkflowListResponse struct {
	Items []WorkflowResponse `json:"items"`
}

type WorkflowResultsResponse struct {
	WorkflowID string         `json:"workflow_id"`
	Results    map[string]any `json:"results"`
}
