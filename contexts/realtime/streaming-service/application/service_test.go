package application

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"helix/contexts/realtime/streaming-service/adapters/memory"
	"helix/contexts/realtime/streaming-service/domain/entities"
	domainerrors "helix/contexts/realtime/streaming-service/domain/errors"
	"helix/contexts/realtime/streaming-service/ports"
	"helix/internal/shared/events"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

func newTestService() (Service, *memory.Store) {
	store := memory.NewStore()
	service := Service{
		Events: store,
		Alerts: store,
		Trends: NewTrendTracker(4, 0.25),
		Outbox: store,
		Clock:  fixedClock{now: time.Date(2026, time.May, 1, 10, 0, 0, 0, time.UTC)},
		IDGen:  memory.UUIDGenerator{},
	}
	return service, store
}

func ingest(t *testing.T, service Service, eventID string, metric entities.Metric, value float64) IngestResult {
	t.Helper()
	result, err := service.IngestEvent(context.Background(), IngestInput{
		EventID:   eventID,
		PatientID: "patient-1",
		Metric:    metric,
		Value:     value,
		Source:    "bedside-monitor",
	})
	if err != nil {
		t.Fatalf("ingest failed: %v", err)
	}
	return result
}

func TestIngestNormalReadingRaisesNoAlert(t *testing.T) {
	service, _ := newTestService()

	result := ingest(t, service, "evt-1", entities.MetricHeartRate, 72)
	if len(result.Alerts) != 0 {
		t.Fatalf("expected no alerts, got %d", len(result.Alerts))
	}
}

func TestIngestCriticalHeartRateRaisesCriticalAlert(t *testing.T) {
	service, _ := newTestService()

	result := ingest(t, service, "evt-1", entities.MetricHeartRate, 150)
	if len(result.Alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(result.Alerts))
	}
	alert := result.Alerts[0]
	if alert.Severity != entities.SeverityCritical {
		t.Fatalf("expected critical severity, got %s", alert.Severity)
	}
	if alert.Kind != entities.AlertKindThreshold {
		t.Fatalf("expected threshold kind, got %s", alert.Kind)
	}
	if alert.Threshold != 140 {
		t.Fatalf("expected breached threshold 140, got %.1f", alert.Threshold)
	}
}

func TestIngestElevatedHeartRateRaisesWarning(t *testing.T) {
	service, _ := newTestService()

	result := ingest(t, service, "evt-1", entities.MetricHeartRate, 130)
	if len(result.Alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(result.Alerts))
	}
	if result.Alerts[0].Severity != entities.SeverityWarning {
		t.Fatalf("expected warning severity, got %s", result.Alerts[0].Severity)
	}
}

func TestIngestSpO2Thresholds(t *testing.T) {
	service, _ := newTestService()

	critical := ingest(t, service, "evt-1", entities.MetricSpO2, 80)
	if len(critical.Alerts) != 1 || critical.Alerts[0].Severity != entities.SeverityCritical {
		t.Fatalf("expected critical spo2 alert, got %+v", critical.Alerts)
	}
	warning := ingest(t, service, "evt-2", entities.MetricSpO2, 90)
	if len(warning.Alerts) != 1 || warning.Alerts[0].Severity != entities.SeverityWarning {
		t.Fatalf("expected warning spo2 alert, got %+v", warning.Alerts)
	}
	normal := ingest(t, service, "evt-3", entities.MetricSpO2, 97)
	if len(normal.Alerts) != 0 {
		t.Fatalf("expected no alert for normal spo2, got %+v", normal.Alerts)
	}
}

func TestIngestDuplicateEventIsIdempotent(t *testing.T) {
	service, store := newTestService()

	ingest(t, service, "evt-1", entities.MetricHeartRate, 150)
	replay := ingest(t, service, "evt-1", entities.MetricHeartRate, 150)
	if !replay.Duplicate {
		t.Fatalf("expected duplicate flag on replay")
	}
	if len(replay.Alerts) != 0 {
		t.Fatalf("expected replay to raise no alerts")
	}

	alerts, err := store.ListAlerts(context.Background(), ports.AlertFilter{PatientID: "patient-1"}, 10)
	if err != nil {
		t.Fatalf("list alerts failed: %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("expected exactly 1 persisted alert, got %d", len(alerts))
	}
}

func TestTrendAlertFiresWhenWindowFullAndValueDeviates(t *testing.T) {
	service, _ := newTestService()

	// Window size is 4 in the test service; fill it with steady readings.
	for i := 0; i < 4; i++ {
		result := ingest(t, service, fmt.Sprintf("evt-%d", i), entities.MetricHeartRate, 80)
		if len(result.Alerts) != 0 {
			t.Fatalf("unexpected alert while filling window: %+v", result.Alerts)
		}
	}

	// 110 deviates 37.5% from the mean of 80 but stays inside the fixed
	// warning band, so the only alert is the trend warning.
	result := ingest(t, service, "evt-jump", entities.MetricHeartRate, 110)
	if len(result.Alerts) != 1 {
		t.Fatalf("expected 1 trend alert, got %d", len(result.Alerts))
	}
	alert := result.Alerts[0]
	if alert.Kind != entities.AlertKindTrend {
		t.Fatalf("expected trend kind, got %s", alert.Kind)
	}
	if alert.Severity != entities.SeverityWarning {
		t.Fatalf("expected warning severity, got %s", alert.Severity)
	}
}

func TestTrendWindowDoesNotFireBeforeFull(t *testing.T) {
	service, _ := newTestService()

	ingest(t, service, "evt-1", entities.MetricHeartRate, 80)
	result := ingest(t, service, "evt-2", entities.MetricHeartRate, 110)
	for _, alert := range result.Alerts {
		if alert.Kind == entities.AlertKindTrend {
			t.Fatalf("trend alert fired before window was full")
		}
	}
}

func TestTrendWindowEvictsOldestReadings(t *testing.T) {
	tracker := NewTrendTracker(3, 0.25)

	// Drift the baseline upward; the window follows, so the final value is
	// judged against recent readings, not the stale low ones.
	for _, value := range []float64{60, 62, 64, 90, 92, 94} {
		tracker.Observe("patient-1", entities.MetricHeartRate, value)
	}
	if _, fired := tracker.Observe("patient-1", entities.MetricHeartRate, 96); fired {
		t.Fatalf("trend fired against an evicted baseline")
	}
}

func TestIngestRejectsUnknownMetric(t *testing.T) {
	service, _ := newTestService()

	_, err := service.IngestEvent(context.Background(), IngestInput{
		EventID:   "evt-1",
		PatientID: "patient-1",
		Metric:    "blood_glucose",
		Value:     5.5,
	})
	if !errors.Is(err, domainerrors.ErrUnknownMetric) {
		t.Fatalf("expected ErrUnknownMetric, got %v", err)
	}
}

func TestIngestEmitsOutboxEvents(t *testing.T) {
	service, store := newTestService()

	ingest(t, service, "evt-1", entities.MetricHeartRate, 150)

	pending, err := store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list outbox failed: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected ingested + alert events, got %d", len(pending))
	}
	types := map[string]bool{}
	for _, message := range pending {
		types[message.EventType] = true
	}
	if !types["vitals.event.ingested"] || !types["vitals.alert.raised"] {
		t.Fatalf("missing expected event types: %v", types)
	}
}

type capturingPublisher struct {
	topics []string
	fail   bool
}

func (p *capturingPublisher) Publish(_ context.Context, topic string, _ events.Envelope) error {
	if p.fail {
		return errors.New("bus unavailable")
	}
	p.topics = append(p.topics, topic)
	return nil
}

func TestIngestPublishesLiveEnvelopes(t *testing.T) {
	service, _ := newTestService()
	publisher := &capturingPublisher{}
	service.Publisher = publisher

	ingest(t, service, "evt-1", entities.MetricHeartRate, 150)

	if len(publisher.topics) != 2 {
		t.Fatalf("expected ingested + alert publishes, got %v", publisher.topics)
	}
	seen := map[string]bool{}
	for _, topic := range publisher.topics {
		seen[topic] = true
	}
	if !seen["vitals.event.ingested"] || !seen["vitals.alert.raised"] {
		t.Fatalf("missing expected topics: %v", publisher.topics)
	}
}

func TestIngestSurvivesLivePublishFailure(t *testing.T) {
	service, store := newTestService()
	service.Publisher = &capturingPublisher{fail: true}

	result := ingest(t, service, "evt-1", entities.MetricHeartRate, 150)
	if result.Duplicate {
		t.Fatal("ingest should succeed when the live publish fails")
	}

	pending, err := store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list outbox failed: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected outbox rows despite publish failure, got %d", len(pending))
	}
}

func TestAcknowledgeAlertOnce(t *testing.T) {
	service, _ := newTestService()

	result := ingest(t, service, "evt-1", entities.MetricSpO2, 80)
	alertID := result.Alerts[0].AlertID

	acked, err := service.AcknowledgeAlert(context.Background(), alertID, "clinician-1")
	if err != nil {
		t.Fatalf("acknowledge failed: %v", err)
	}
	if !acked.Acknowledged || acked.AckBy != "clinician-1" || acked.AckAt == nil {
		t.Fatalf("acknowledgement not recorded: %+v", acked)
	}

	if _, err := service.AcknowledgeAlert(context.Background(), alertID, "clinician-2"); !errors.Is(err, domainerrors.ErrAlertAcknowledged) {
		t.Fatalf("expected ErrAlertAcknowledged, got %v", err)
	}
}

func TestListEventsNewestFirst(t *testing.T) {
	store := memory.NewStore()
	base := time.Date(2026, time.May, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		if err := store.SaveEvent(context.Background(), entities.VitalEvent{
			EventID:    fmt.Sprintf("evt-%d", i),
			PatientID:  "patient-1",
			Metric:     entities.MetricHeartRate,
			Value:      70 + float64(i),
			ObservedAt: base.Add(time.Duration(i) * time.Minute),
		}); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}
	service := Service{Events: store}
	events, err := service.ListEventsByPatient(context.Background(), "patient-1", 2)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].EventID != "evt-2" {
		t.Fatalf("expected newest first, got %s", events[0].EventID)
	}
}
