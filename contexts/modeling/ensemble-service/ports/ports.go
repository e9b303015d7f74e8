package ports

import (
	"context"
	"time"

	"helix/contexts/modeling/ensemble-service/domain/entities"
	"helix/internal/shared/events"
	"helix/internal/shared/outbox"
)

type PredictionRepository interface {
	SavePrediction(ctx context.Context, prediction entities.EnsemblePrediction) error
	GetPrediction(ctx context.Context, predictionID string) (entities.EnsemblePrediction, error)
	ListPredictionsByPatient(ctx context.Context, patientID string) ([]entities.EnsemblePrediction, error)
}

// RouteDirectory resolves the method weights of a dispatched analysis plan.
// Methods absent from the returned map default to weight 1.
type RouteDirectory interface {
	RoutesForPlan(ctx context.Context, planID string) (map[string]float64, error)
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
