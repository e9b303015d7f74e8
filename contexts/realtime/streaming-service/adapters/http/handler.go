package httpadapter

import (
	"context"
	"log/slog"

	"helix/contexts/realtime/streaming-service/application"
	"helix/contexts/realtime/streaming-service/domain/entities"
	"helix/contexts/realtime/streaming-service/ports"
	httptransport "helix/contexts/realtime/streaming-service/transport/http"
)

type Handler struct {
	Vitals application.Service
	Logger *slog.Logger
}

func (h Handler) IngestEventHandler(
	ctx context.Context,
	req httptransport.IngestEventRequest,
) (httptransport.IngestEventResponse, error) {
	result, err := h.Vitals.IngestEvent(ctx, application.IngestInput{
		EventID:    req.EventID,
		PatientID:  req.PatientID,
		Metric:     entities.Metric(req.Metric),
		Value:      req.Value,
		ObservedAt: req.ObservedAt,
		Source:     req.Source,
	})
	if err != nil {
		return httptransport.IngestEventResponse{}, err
	}
	alerts := make([]httptransport.AlertResponse, 0, len(result.Alerts))
	for _, alert := range result.Alerts {
		alerts = append(alerts, toAlertResponse(alert))
	}
	return httptransport.IngestEventResponse{
		Event:     toEventResponse(result.Event),
		Alerts:    alerts,
		Duplicate: result.Duplicate,
	}, nil
}

func (h Handler) ListEventsByPatientHandler(
	ctx context.Context,
	patientID string,
	limit int,
) (httptransport.VitalEventListResponse, error) {
	events, err := h.Vitals.ListEventsByPatient(ctx, patientID, limit)
	if err != nil {
		return httptransport.VitalEventListResponse{}, err
	}
	items := make([]httptransport.VitalEventResponse, 0, len(events))
	for _, event := range events {
		items = append(items, toEventResponse(event))
	}
	return httptransport.VitalEventListResponse{Items: items}, nil
}

func (h Handler) ListAlertsHandler(
	ctx context.Context,
	filter ports.AlertFilter,
	limit int,
) (httptransport.AlertListResponse, error) {
	alerts, err := h.Vitals.ListAlerts(ctx, filter, limit)
	if err != nil {
		return httptransport.AlertListResponse{}, err
	}
	items := make([]httptransport.AlertResponse, 0, len(alerts))
	for _, alert := range alerts {
		items = append(items, toAlertResponse(alert))
	}
	return httptransport.AlertListResponse{Items: items}, nil
}

func (h Handler) AcknowledgeAlertHandler(
	ctx context.Context,
	alertID string,
	userID string,
) (httptransport.AlertResponse, error) {
	alert, err := h.Vitals.AcknowledgeAlert(ctx, alertID, userID)
	if err != nil {
		return httptransport.AlertResponse{}, err
	}
	return toAlertResponse(alert), nil
}

func toEventResponse(event entities.VitalEvent) httptransport.VitalEventResponse {
	return httptransport.VitalEventResponse{
		EventID:    event.EventID,
		PatientID:  event.PatientID,
		Metric:     string(event.Metric),
		Value:      event.Value,
		ObservedAt: event.ObservedAt,
		Source:     event.Source,
	}
}

func toAlertResponse(alert entities.Alert) httptransport.AlertResponse {
	return httptransport.AlertResponse{
		AlertID:      alert.AlertID,
		PatientID:    alert.PatientID,
		Metric:       string(alert.Metric),
		Severity:     string(alert.Severity),
		Kind:         string(alert.Kind),
		Value:        alert.Value,
		Threshold:    alert.Threshold,
		Message:      alert.Message,
		Acknowledged: alert.Acknowledged,
		AckBy:        alert.AckBy,
		CreatedAt:    alert.CreatedAt,
		AckAt:        alert.AckAt,
	}
}
