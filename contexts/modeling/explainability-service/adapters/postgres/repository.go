package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"helix/contexts/modeling/explainability-service/domain/entities"
	domainerrors "helix/contexts/modeling/explainability-service/domain/errors"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) SaveExplanation(ctx context.Context, explanation entities.Explanation) error {
	row, err := explanationRowFromEntity(explanation)
	if err != nil {
		return r.logError("explain_repo_encode_failed", err, "explanation_id", explanation.ExplanationID)
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return r.logError("explain_repo_save_failed", err, "explanation_id", explanation.ExplanationID)
	}
	return nil
}

func (r *Repository) GetExplanation(ctx context.Context, explanationID string) (entities.Explanation, error) {
	var row explanationModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(explanationID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Explanation{}, domainerrors.ErrExplanationNotFound
		}
		return entities.Explanation{}, r.logError("explain_repo_get_failed", err,
			"explanation_id", strings.TrimSpace(explanationID),
		)
	}
	return row.toEntity()
}

func (r *Repository) ListExplanationsByPrediction(ctx context.Context, predictionID string) ([]entities.Explanation, error) {
	var rows []explanationModel
	if err := r.db.WithContext(ctx).
		Where("prediction_id = ?", strings.TrimSpace(predictionID)).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("explain_repo_list_failed", err, "prediction_id", strings.TrimSpace(predictionID))
	}
	items := make([]entities.Explanation, 0, len(rows))
	for _, row := range rows {
		entity, err := row.toEntity()
		if err != nil {
			return nil, r.logError("explain_repo_decode_failed", err, "explanation_id", row.ID)
		}
		items = append(items, entity)
	}
	return items, nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "modeling/explainability-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("explanation repository operation failed", fields...)
	return err
}

type explanationModel struct {
	ID           string    `gorm:"column:id;primaryKey"`
	PredictionID string    `gorm:"column:prediction_id"`
	Method       string    `gorm:"column:method"`
	Attributions []byte    `gorm:"column:attributions;type:jsonb"`
	Summary      string    `gorm:"column:summary"`
	ArtifactKey  string    `gorm:"column:artifact_key"`
	CreatedBy    string    `gorm:"column:created_by"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (explanationModel) TableName() string {
	return "explanations"
}

type attributionRow struct {
	Feature      string  `json:"feature"`
	Contribution float64 `json:"contribution"`
	Direction    string  `json:"direction"`
}

func explanationRowFromEntity(explanation entities.Explanation) (explanationModel, error) {
	rows := make([]attributionRow, 0, len(explanation.Attributions))
	for _, attribution := range explanation.Attributions {
		rows = append(rows, attributionRow{
			Feature:      attribution.Feature,
			Contribution: attribution.Contribution,
			Direction:    string(attribution.Direction),
		})
	}
	encoded, err := json.Marshal(rows)
	if err != nil {
		return explanationModel{}, err
	}
	row := explanationModel{
		ID:           strings.TrimSpace(explanation.ExplanationID),
		PredictionID: strings.TrimSpace(explanation.PredictionID),
		Method:       string(explanation.Method),
		Attributions: encoded,
		Summary:      explanation.Summary,
		ArtifactKey:  explanation.ArtifactKey,
		CreatedBy:    strings.TrimSpace(explanation.CreatedBy),
		CreatedAt:    explanation.CreatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	return row, nil
}

func (m explanationModel) toEntity() (entities.Explanation, error) {
	var rows []attributionRow
	if len(m.Attributions) > 0 {
		if err := json.Unmarshal(m.Attributions, &rows); err != nil {
			return entities.Explanation{}, err
		}
	}
	attributions := make([]entities.FeatureAttribution, 0, len(rows))
	for _, row := range rows {
		attributions = append(attributions, entities.FeatureAttribution{
			Feature:      row.Feature,
			Contribution: row.Contribution,
			Direction:    entities.Direction(row.Direction),
		})
	}
	return entities.Explanation{
		ExplanationID: m.ID,
		PredictionID:  m.PredictionID,
		Method:        entities.Method(m.Method),
		Attributions:  attributions,
		Summary:       m.Summary,
		ArtifactKey:   m.ArtifactKey,
		CreatedBy:     m.CreatedBy,
		CreatedAt:     m.CreatedAt.UTC(),
	}, nil
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
