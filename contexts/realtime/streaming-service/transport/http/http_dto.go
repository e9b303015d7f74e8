package http

import "time"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type IngestEventRequest struct {
	EventID    string    `json:"event_id"`
	PatientID  string    `json:"patient_id"`
	Metric     string    `json:"metric"`
	Value      float64   `json:"value"`
	ObservedAt time.Time `json:"observed_at,omitempty"`
	Source     string    `json:"source,omitempty"`
}

type VitalEventResponse struct {
	EventID    string    `json:"event_id"`
	PatientID  string    `json:"patient_id"`
	Metric     string    `json:"metric"`
	Value      float64   `json:"value"`
	ObservedAt time.Time `json:"observed_at"`
	Source     string    `json:"source,omitempty"`
}

type AlertResponse struct {
	AlertID      string     `json:"alert_id"`
	PatientID    string     `json:"patient_id"`
	Metric       string     `json:"metric"`
	Severity     string     `json:"severity"`
	Kind         string     `json:"kind"`
	Value        float64    `json:"value"`
	Threshold    float64    `json:"threshold"`
	Message      string     `json:"message"`
	Acknowledged bool       `json:"acknowledged"`
	AckBy        string     `json:"ack_by,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	AckAt        *time.Time `json:"ack_at,omitempty"`
}

type IngestEventResponse struct {
	Event     VitalEventResponse `json:"event"`
	Alerts    []AlertResponse    `json:"alerts"`
	Duplicate bool               `json:"duplicate"`
}

type VitalEventListResponse struct {
	Items []VitalEventResponse `json:"items"`
}

type AlertListResponse struct {
	Items []AlertResponse `json:"items"`
}
