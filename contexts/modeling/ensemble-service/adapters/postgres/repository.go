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

	"helix/contexts/modeling/ensemble-service/domain/entities"
	domainerrors "helix/contexts/modeling/ensemble-service/domain/errors"
	"helix/internal/shared/events"
	"helix/internal/shared/outbox"
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

func (r *Repository) SavePrediction(ctx context.Context, prediction entities.EnsemblePrediction) error {
	row, err := predictionRowFromEntity(prediction)
	if err != nil {
		return r.logError("ensemble_repo_encode_prediction_failed", err, "prediction_id", prediction.PredictionID)
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return r.logError("ensemble_repo_save_prediction_failed", err, "prediction_id", prediction.PredictionID)
	}
	return nil
}

func (r *Repository) GetPrediction(ctx context.Context, predictionID string) (entities.EnsemblePrediction, error) {
	var row predictionModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(predictionID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.EnsemblePrediction{}, domainerrors.ErrPredictionNotFound
		}
		return entities.EnsemblePrediction{}, r.logError("ensemble_repo_get_prediction_failed", err,
			"prediction_id", strings.TrimSpace(predictionID),
		)
	}
	return row.toEntity()
}

func (r *Repository) ListPredictionsByPatient(ctx context.Context, patientID string) ([]entities.EnsemblePrediction, error) {
	var rows []predictionModel
	if err := r.db.WithContext(ctx).
		Where("patient_id = ?", strings.TrimSpace(patientID)).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("ensemble_repo_list_predictions_failed", err, "patient_id", strings.TrimSpace(patientID))
	}
	items := make([]entities.EnsemblePrediction, 0, len(rows))
	for _, row := range rows {
		entity, err := row.toEntity()
		if err != nil {
			return nil, r.logError("ensemble_repo_decode_prediction_failed", err, "prediction_id", row.ID)
		}
		items = append(items, entity)
	}
	return items, nil
}

func (r *Repository) AppendOutbox(ctx context.Context, envelope events.Envelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return r.logError("ensemble_repo_encode_outbox_failed", err, "event_id", envelope.EventID)
	}
	row := outboxModel{
		ID:        envelope.EventID,
		EventType: envelope.EventType,
		Payload:   payload,
		Status:    outbox.StatusPending,
		CreatedAt: envelope.OccurredAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return r.logError("ensemble_repo_append_outbox_failed", err, "event_id", envelope.EventID)
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]outbox.Message, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outbox.StatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("ensemble_repo_list_outbox_failed", err)
	}
	messages := make([]outbox.Message, 0, len(rows))
	for _, row := range rows {
		messages = append(messages, outbox.Message{
			OutboxID:   row.ID,
			EventType:  row.EventType,
			Payload:    row.Payload,
			Status:     row.Status,
			RetryCount: row.RetryCount,
		})
	}
	return messages, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("id = ?", strings.TrimSpace(outboxID)).
		Updates(map[string]any{
			"status":       outbox.StatusPublished,
			"published_at": publishedAt.UTC(),
		}).Error
	if err != nil {
		return r.logError("ensemble_repo_mark_outbox_failed", err, "outbox_id", strings.TrimSpace(outboxID))
	}
	return nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "modeling/ensemble-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("ensemble repository operation failed", fields...)
	return err
}

type predictionModel struct {
	ID        string    `gorm:"column:id;primaryKey"`
	PatientID string    `gorm:"column:patient_id"`
	PlanID    string    `gorm:"column:plan_id"`
	Strategy  string    `gorm:"column:strategy"`
	Inputs    []byte    `gorm:"column:inputs;type:jsonb"`
	RiskScore float64   `gorm:"column:risk_score"`
	RiskLevel string    `gorm:"column:risk_level"`
	Agreement float64   `gorm:"column:agreement"`
	CreatedBy string    `gorm:"column:created_by"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (predictionModel) TableName() string {
	return "ensemble_predictions"
}

type methodOutputRow struct {
	Method     string  `json:"method"`
	RiskScore  float64 `json:"risk_score"`
	Confidence float64 `json:"confidence"`
}

func predictionRowFromEntity(prediction entities.EnsemblePrediction) (predictionModel, error) {
	inputs := make([]methodOutputRow, 0, len(prediction.Inputs))
	for _, input := range prediction.Inputs {
		inputs = append(inputs, methodOutputRow{
			Method:     input.Method,
			RiskScore:  input.RiskScore,
			Confidence: input.Confidence,
		})
	}
	encoded, err := json.Marshal(inputs)
	if err != nil {
		return predictionModel{}, err
	}
	row := predictionModel{
		ID:        strings.TrimSpace(prediction.PredictionID),
		PatientID: strings.TrimSpace(prediction.PatientID),
		PlanID:    strings.TrimSpace(prediction.PlanID),
		Strategy:  string(prediction.Strategy),
		Inputs:    encoded,
		RiskScore: prediction.RiskScore,
		RiskLevel: string(prediction.RiskLevel),
		Agreement: prediction.Agreement,
		CreatedBy: strings.TrimSpace(prediction.CreatedBy),
		CreatedAt: prediction.CreatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	return row, nil
}

func (m predictionModel) toEntity() (entities.EnsemblePrediction, error) {
	var rows []methodOutputRow
	if len(m.Inputs) > 0 {
		if err := json.Unmarshal(m.Inputs, &rows); err != nil {
			return entities.EnsemblePrediction{}, err
		}
	}
	inputs := make([]entities.MethodOutput, 0, len(rows))
	for _, row := range rows {
		inputs = append(inputs, entities.MethodOutput{
			Method:     row.Method,
			RiskScore:  row.RiskScore,
			Confidence: row.Confidence,
		})
	}
	return entities.EnsemblePrediction{
		PredictionID: m.ID,
		PatientID:    m.PatientID,
		PlanID:       m.PlanID,
		Strategy:     entities.Strategy(m.Strategy),
		Inputs:       inputs,
		RiskScore:    m.RiskScore,
		RiskLevel:    entities.RiskLevel(m.RiskLevel),
		Agreement:    m.Agreement,
		CreatedBy:    m.CreatedBy,
		CreatedAt:    m.CreatedAt.UTC(),
	}, nil
}

type outboxModel struct {
	ID          string     `gorm:"column:id;primaryKey"`
	EventType   string     `gorm:"column:event_type"`
	Payload     []byte     `gorm:"column:payload;type:jsonb"`
	Status      string     `gorm:"column:status"`
	RetryCount  int        `gorm:"column:retry_count"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	PublishedAt *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "ensemble_prediction_outbox"
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
