package ports

import (
	"context"
	"time"

	"helix/contexts/modeling/analysis-router-service/domain/entities"
	"helix/internal/shared/events"
	"helix/internal/shared/outbox"
)

type PlanRepository interface {
	SavePlan(ctx context.Context, plan entities.AnalysisPlan) error
	GetPlan(ctx context.Context, planID string) (entities.AnalysisPlan, error)
	ListPlansByPatient(ctx context.Context, patientID string) ([]entities.AnalysisPlan, error)
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
