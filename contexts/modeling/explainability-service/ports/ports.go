package ports

import (
	"context"
	"time"

	"helix/contexts/modeling/explainability-service/domain/entities"
)

type ExplanationRepository interface {
	SaveExplanation(ctx context.Context, explanation entities.Explanation) error
	GetExplanation(ctx context.Context, explanationID string) (entities.Explanation, error)
	ListExplanationsByPrediction(ctx context.Context, predictionID string) ([]entities.Explanation, error)
}

// Attributor computes feature attributions for one prediction. Each supported
// attribution method registers its own implementation.
type Attributor interface {
	Attribute(ctx context.Context, predictionID string) ([]entities.FeatureAttribution, string, error)
}

// BlobStore is the object-store surface the module needs; the platform
// objectstore adapter satisfies it.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
