package entities

import "time"

type WorkflowType string

const (
	TypeGRNInference       WorkflowType = "grn_inference"
	TypeEnsemblePrediction WorkflowType = "ensemble_prediction"
	TypeExplanation        WorkflowType = "explanation"
)

func (t WorkflowType) Valid() bool {
	switch t {
	case TypeGRNInference, TypeEnsemblePrediction, TypeExplanation:
		return true
	default:
		return false
	}
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// CanTransition reports whether the status machine allows moving from one
// status to another. Retry is the only edge out of failed.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusPending:
		return to == StatusRunning || to == StatusCancelled
	case StatusRunning:
		return to == StatusCompleted || to == StatusFailed || to == StatusCancelled || to == StatusPending
	case StatusFailed:
		return to == StatusPending
	default:
		return false
	}
}

type Workflow struct {
	WorkflowID     string
	WorkflowType   WorkflowType
	PatientID      string
	PlanID         string
	Status         Status
	Priority       int
	Progress       float64
	Parameters     map[string]any
	Results        map[string]any
	ErrorMessage   string
	Attempts       int
	MaxAttempts    int
	LeaseOwner     string
	LeaseExpiresAt *time.Time
	NextRunAt      time.Time
	CreatedBy      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	StartedAt      *time.Time
	CompletedAt    *time.Time
}

// Terminal reports whether the workflow can never run again.
func (w Workflow) Terminal() bool {
	switch w.Status {
	case StatusCompleted, StatusCancelled:
		return true
	case StatusFailed:
		return w.Attempts >= w.MaxAttempts
	default:
		return false
	}
}
