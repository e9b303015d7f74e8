package ports

import (
	"context"
	"time"

	"helix/contexts/modeling/grn-service/domain/entities"
)

type ModelRepository interface {
	SaveModel(ctx context.Context, model entities.GRNModel) error
	GetModel(ctx context.Context, modelID string) (entities.GRNModel, error)
	ListModels(ctx context.Context, limit int) ([]entities.GRNModel, error)
	DeleteModel(ctx context.Context, modelID string) error
	SaveReport(ctx context.Context, report entities.VerificationReport) error
	GetReport(ctx context.Context, modelID string) (entities.VerificationReport, bool, error)
}

// QualitativeChecker runs CTL model checking against a network's qualitative
// dynamics. Implementations wrap external formal-verification tooling.
type QualitativeChecker interface {
	CheckProperties(ctx context.Context, model entities.GRNModel, properties []string) ([]entities.PropertyResult, error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
