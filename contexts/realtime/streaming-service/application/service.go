package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"helix/contexts/realtime/streaming-service/domain/entities"
	domainerrors "helix/contexts/realtime/streaming-service/domain/errors"
	"helix/contexts/realtime/streaming-service/ports"
	"helix/internal/shared/events"
)

const (
	eventIngestedEventType = "vitals.event.ingested"
	alertRaisedEventType   = "vitals.alert.raised"

	defaultEventListLimit = 100
)

type IngestInput struct {
	EventID    string
	PatientID  string
	Metric     entities.Metric
	Value      float64
	ObservedAt time.Time
	Source     string
}

// IngestResult reports what one ingest did: the stored event, any alerts the
// rules raised, and whether the event was a duplicate replay.
type IngestResult struct {
	Event     entities.VitalEvent
	Alerts    []entities.Alert
	Duplicate bool
}

// Service ingests vital events and runs the alert rules over them.
type Service struct {
	Events ports.EventRepository
	Alerts ports.AlertRepository
	Trends *TrendTracker
	Outbox ports.OutboxWriter
	// Publisher, when set, receives each envelope immediately after the
	// outbox write so in-process subscribers (the websocket bridge) see
	// vitals without waiting for the relay. Publish failures are logged
	// and never fail the ingest; the outbox relay remains the durable
	// path and consumers dedup on EventID.
	Publisher ports.EventPublisher
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

// IngestEvent stores the event, evaluates threshold and trend rules, and
// persists any resulting alerts. Replays of an already-seen event ID are
// acknowledged without re-evaluating rules.
func (s Service) IngestEvent(ctx context.Context, input IngestInput) (IngestResult, error) {
	patientID := strings.TrimSpace(input.PatientID)
	eventID := strings.TrimSpace(input.EventID)
	if patientID == "" || eventID == "" {
		return IngestResult{}, domainerrors.ErrInvalidVitalEvent
	}
	if !input.Metric.Valid() {
		return IngestResult{}, domainerrors.ErrUnknownMetric
	}

	seen, err := s.Events.HasEvent(ctx, eventID)
	if err != nil {
		return IngestResult{}, fmt.Errorf("check event id: %w", err)
	}
	if seen {
		return IngestResult{Duplicate: true}, nil
	}

	now := s.Clock.Now().UTC()
	observedAt := input.ObservedAt.UTC()
	if input.ObservedAt.IsZero() {
		observedAt = now
	}
	event := entities.VitalEvent{
		EventID:    eventID,
		PatientID:  patientID,
		Metric:     input.Metric,
		Value:      input.Value,
		ObservedAt: observedAt,
		Source:     strings.TrimSpace(input.Source),
	}
	if err := s.Events.SaveEvent(ctx, event); err != nil {
		return IngestResult{}, fmt.Errorf("save vital event: %w", err)
	}
	if err := s.appendEnvelope(ctx, eventIngestedEventType, patientID, map[string]any{
		"event_id":   event.EventID,
		"patient_id": event.PatientID,
		"metric":     string(event.Metric),
		"value":      event.Value,
		"source":     event.Source,
	}); err != nil {
		return IngestResult{}, err
	}

	signals := evaluateThresholds(event.Metric, event.Value)
	if s.Trends != nil {
		if trend, fired := s.Trends.Observe(patientID, event.Metric, event.Value); fired {
			signals = append(signals, trend)
		}
	}

	alerts := make([]entities.Alert, 0, len(signals))
	for _, signal := range signals {
		alertID, err := s.IDGen.NewID(ctx)
		if err != nil {
			return IngestResult{}, fmt.Errorf("generate alert id: %w", err)
		}
		alert := entities.Alert{
			AlertID:   alertID,
			PatientID: patientID,
			Metric:    event.Metric,
			Severity:  signal.Severity,
			Kind:      signal.Kind,
			Value:     event.Value,
			Threshold: signal.Threshold,
			Message:   signal.Message,
			CreatedAt: now,
		}
		if err := s.Alerts.SaveAlert(ctx, alert); err != nil {
			return IngestResult{}, fmt.Errorf("save alert: %w", err)
		}
		if err := s.appendEnvelope(ctx, alertRaisedEventType, patientID, map[string]any{
			"alert_id":   alert.AlertID,
			"patient_id": alert.PatientID,
			"metric":     string(alert.Metric),
			"severity":   string(alert.Severity),
			"kind":       string(alert.Kind),
			"value":      alert.Value,
			"threshold":  alert.Threshold,
			"message":    alert.Message,
		}); err != nil {
			return IngestResult{}, err
		}
		alerts = append(alerts, alert)

		s.resolveLogger().Warn("vital alert raised",
			"event", "vital_alert_raised",
			"module", "streaming",
			"layer", "application",
			"alert_id", alert.AlertID,
			"patient_id", alert.PatientID,
			"metric", string(alert.Metric),
			"severity", string(alert.Severity),
			"kind", string(alert.Kind),
		)
	}

	return IngestResult{Event: event, Alerts: alerts}, nil
}

func (s Service) ListEventsByPatient(ctx context.Context, patientID string, limit int) ([]entities.VitalEvent, error) {
	if limit <= 0 || limit > defaultEventListLimit {
		limit = defaultEventListLimit
	}
	return s.Events.ListEventsByPatient(ctx, strings.TrimSpace(patientID), limit)
}

func (s Service) ListAlerts(ctx context.Context, filter ports.AlertFilter, limit int) ([]entities.Alert, error) {
	if limit <= 0 || limit > defaultEventListLimit {
		limit = defaultEventListLimit
	}
	filter.PatientID = strings.TrimSpace(filter.PatientID)
	return s.Alerts.ListAlerts(ctx, filter, limit)
}

// AcknowledgeAlert marks an alert as handled by a clinician. Acknowledging
// twice is rejected so the audit trail keeps the first acknowledger.
func (s Service) AcknowledgeAlert(ctx context.Context, alertID, ackBy string) (entities.Alert, error) {
	alert, err := s.Alerts.GetAlert(ctx, strings.TrimSpace(alertID))
	if err != nil {
		return entities.Alert{}, err
	}
	if alert.Acknowledged {
		return entities.Alert{}, domainerrors.ErrAlertAcknowledged
	}

	now := s.Clock.Now().UTC()
	alert.Acknowledged = true
	alert.AckBy = strings.TrimSpace(ackBy)
	alert.AckAt = &now
	if err := s.Alerts.SaveAlert(ctx, alert); err != nil {
		return entities.Alert{}, fmt.Errorf("save alert: %w", err)
	}

	s.resolveLogger().Info("vital alert acknowledged",
		"event", "vital_alert_acknowledged",
		"module", "streaming",
		"layer", "application",
		"alert_id", alert.AlertID,
		"ack_by", alert.AckBy,
	)
	return alert, nil
}

func (s Service) appendEnvelope(ctx context.Context, eventType, patientID string, payload map[string]any) error {
	eventID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return fmt.Errorf("generate event id: %w", err)
	}
	envelope := events.Envelope{
		EventID:        eventID,
		EventType:      eventType,
		SourceService:  "streaming-service",
		PartitionKey:   patientID,
		OccurredAt:     s.Clock.Now().UTC(),
		PayloadVersion: 1,
		Payload:        payload,
	}
	if err := s.Outbox.AppendOutbox(ctx, envelope); err != nil {
		return fmt.Errorf("append outbox event: %w", err)
	}
	if s.Publisher != nil {
		if err := s.Publisher.Publish(ctx, eventType, envelope); err != nil {
			s.resolveLogger().Warn("vitals live publish failed",
				"event", "vitals_live_publish_failed",
				"module", "streaming",
				"layer", "application",
				"event_id", envelope.EventID,
				"topic", eventType,
				"error", err.Error(),
			)
		}
	}
	return nil
}

func (s Service) resolveLogger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}
