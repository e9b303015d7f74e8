package entities

import "time"

type Metric string

const (
	MetricHeartRate       Metric = "heart_rate"
	MetricSpO2            Metric = "spo2"
	MetricSystolicBP      Metric = "systolic_bp"
	MetricRespiratoryRate Metric = "respiratory_rate"
	MetricTemperature     Metric = "temperature"
)

func (m Metric) Valid() bool {
	switch m {
	case MetricHeartRate, MetricSpO2, MetricSystolicBP, MetricRespiratoryRate, MetricTemperature:
		return true
	default:
		return false
	}
}

type VitalEvent struct {
	EventID    string
	PatientID  string
	Metric     Metric
	Value      float64
	ObservedAt time.Time
	Source     string
}

type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

type AlertKind string

const (
	AlertKindThreshold AlertKind = "threshold"
	AlertKindTrend     AlertKind = "trend"
)

type Alert struct {
	AlertID      string
	PatientID    string
	Metric       Metric
	Severity     Severity
	Kind         AlertKind
	Value        float64
	Threshold    float64
	Message      string
	Acknowledged bool
	AckBy        string
	CreatedAt    time.Time
	AckAt        *time.Time
}
