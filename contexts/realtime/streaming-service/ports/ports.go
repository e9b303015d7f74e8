package ports

import (
	"context"
	"time"

	"helix/contexts/realtime/streaming-service/domain/entities"
	"helix/internal/shared/events"
	"helix/internal/shared/outbox"
)

type EventRepository interface {
	SaveEvent(ctx context.Context, event entities.VitalEvent) error
	HasEvent(ctx context.Context, eventID string) (bool, error)
	ListEventsByPatient(ctx context.Context, patientID string, limit int) ([]entities.VitalEvent, error)
}

type AlertFilter struct {
	PatientID    string
	Acknowledged *bool
}

type AlertRepository interface {
	SaveAlert(ctx context.Context, alert entities.Alert) error
	GetAlert(ctx context.Context, alertID string) (entities.Alert, error)
	ListAlerts(ctx context.Context, filter AlertFilter, limit int) ([]entities.Alert, error)
}

type OutboxWriter interface {
	AppendOutbox(ctx context.Context, envelope events.Envelope) error
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]outbox.Message, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event events.Envelope) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
