package entities

import "time"

type Method string

const (
	MethodGNN         Method = "gnn"
	MethodQualitative Method = "qualitative"
	MethodDynamical   Method = "dynamical"
	MethodStatistical Method = "statistical"
)

func (m Method) Valid() bool {
	switch m {
	case MethodGNN, MethodQualitative, MethodDynamical, MethodStatistical:
		return true
	default:
		return false
	}
}

type PlanStatus string

const (
	PlanStatusDrafted    PlanStatus = "drafted"
	PlanStatusDispatched PlanStatus = "dispatched"
)

// DataProfile summarizes the dataset characteristics routing decides on.
type DataProfile struct {
	SampleCount    int
	HasTimeSeries  bool
	NoiseLevel     float64
	PriorKnowledge bool
}

type MethodRoute struct {
	Method Method
	Weight float64
	Reason string
}

type AnalysisPlan struct {
	PlanID     string
	PatientID  string
	Requested  []Method
	Profile    DataProfile
	Routes     []MethodRoute
	Status     PlanStatus
	CreatedBy  string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DispatchAt *time.Time
}
