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
	"gorm.io/gorm/clause"

	"helix/contexts/modeling/grn-service/domain/entities"
	domainerrors "helix/contexts/modeling/grn-service/domain/errors"
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

func (r *Repository) SaveModel(ctx context.Context, model entities.GRNModel) error {
	row, err := modelRowFromEntity(model)
	if err != nil {
		return r.logError("grn_repo_encode_model_failed", err, "model_id", model.ModelID)
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"name":       row.Name,
			"organism":   row.Organism,
			"genes":      row.Genes,
			"edges":      row.Edges,
			"status":     row.Status,
			"updated_at": row.UpdatedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("grn_repo_save_model_failed", create.Error, "model_id", model.ModelID)
	}
	return nil
}

func (r *Repository) GetModel(ctx context.Context, modelID string) (entities.GRNModel, error) {
	var row grnModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(modelID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.GRNModel{}, domainerrors.ErrModelNotFound
		}
		return entities.GRNModel{}, r.logError("grn_repo_get_model_failed", err, "model_id", strings.TrimSpace(modelID))
	}
	return row.toEntity()
}

func (r *Repository) ListModels(ctx context.Context, limit int) ([]entities.GRNModel, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []grnModel
	if err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("grn_repo_list_models_failed", err)
	}
	items := make([]entities.GRNModel, 0, len(rows))
	for _, row := range rows {
		entity, err := row.toEntity()
		if err != nil {
			return nil, r.logError("grn_repo_decode_model_failed", err, "model_id", row.ID)
		}
		items = append(items, entity)
	}
	return items, nil
}

func (r *Repository) DeleteModel(ctx context.Context, modelID string) error {
	result := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(modelID)).
		Delete(&grnModel{})
	if result.Error != nil {
		return r.logError("grn_repo_delete_model_failed", result.Error, "model_id", strings.TrimSpace(modelID))
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrModelNotFound
	}
	return nil
}

func (r *Repository) SaveReport(ctx context.Context, report entities.VerificationReport) error {
	row, err := reportRowFromEntity(report)
	if err != nil {
		return r.logError("grn_repo_encode_report_failed", err, "model_id", report.ModelID)
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "model_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"properties": row.Properties,
			"all_hold":   row.AllHold,
			"checked_at": row.CheckedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("grn_repo_save_report_failed", create.Error, "model_id", report.ModelID)
	}
	return nil
}

func (r *Repository) GetReport(ctx context.Context, modelID string) (entities.VerificationReport, bool, error) {
	var row reportModel
	err := r.db.WithContext(ctx).
		Where("model_id = ?", strings.TrimSpace(modelID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.VerificationReport{}, false, nil
		}
		return entities.VerificationReport{}, false, r.logError("grn_repo_get_report_failed", err,
			"model_id", strings.TrimSpace(modelID),
		)
	}
	report, err := row.toEntity()
	if err != nil {
		return entities.VerificationReport{}, false, r.logError("grn_repo_decode_report_failed", err,
			"model_id", strings.TrimSpace(modelID),
		)
	}
	return report, true, nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "modeling/grn-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("grn repository operation failed", fields...)
	return err
}

type grnModel struct {
	ID        string    `gorm:"column:id;primaryKey"`
	Name      string    `gorm:"column:name"`
	Organism  string    `gorm:"column:organism"`
	Genes     []byte    `gorm:"column:genes;type:jsonb"`
	Edges     []byte    `gorm:"column:edges;type:jsonb"`
	Status    string    `gorm:"column:status"`
	CreatedBy string    `gorm:"column:created_by"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (grnModel) TableName() string {
	return "grn_models"
}

type edgeRow struct {
	Regulator string `json:"regulator"`
	Target    string `json:"target"`
	Sign      string `json:"sign"`
}

func modelRowFromEntity(model entities.GRNModel) (grnModel, error) {
	genes, err := json.Marshal(model.Genes)
	if err != nil {
		return grnModel{}, err
	}
	edges := make([]edgeRow, 0, len(model.Edges))
	for _, edge := range model.Edges {
		edges = append(edges, edgeRow{
			Regulator: edge.Regulator,
			Target:    edge.Target,
			Sign:      string(edge.Sign),
		})
	}
	encodedEdges, err := json.Marshal(edges)
	if err != nil {
		return grnModel{}, err
	}
	row := grnModel{
		ID:        strings.TrimSpace(model.ModelID),
		Name:      strings.TrimSpace(model.Name),
		Organism:  strings.TrimSpace(model.Organism),
		Genes:     genes,
		Edges:     encodedEdges,
		Status:    string(model.Status),
		CreatedBy: strings.TrimSpace(model.CreatedBy),
		CreatedAt: model.CreatedAt.UTC(),
		UpdatedAt: model.UpdatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	return row, nil
}

func (m grnModel) toEntity() (entities.GRNModel, error) {
	var genes []string
	if len(m.Genes) > 0 {
		if err := json.Unmarshal(m.Genes, &genes); err != nil {
			return entities.GRNModel{}, err
		}
	}
	var edgeRows []edgeRow
	if len(m.Edges) > 0 {
		if err := json.Unmarshal(m.Edges, &edgeRows); err != nil {
			return entities.GRNModel{}, err
		}
	}
	edges := make([]entities.Interaction, 0, len(edgeRows))
	for _, edge := range edgeRows {
		edges = append(edges, entities.Interaction{
			Regulator: edge.Regulator,
			Target:    edge.Target,
			Sign:      entities.InteractionSign(edge.Sign),
		})
	}
	return entities.GRNModel{
		ModelID:   m.ID,
		Name:      m.Name,
		Organism:  m.Organism,
		Genes:     genes,
		Edges:     edges,
		Status:    entities.ModelStatus(m.Status),
		CreatedBy: m.CreatedBy,
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}, nil
}

type reportModel struct {
	ModelID    string    `gorm:"column:model_id;primaryKey"`
	Properties []byte    `gorm:"column:properties;type:jsonb"`
	AllHold    bool      `gorm:"column:all_hold"`
	CheckedAt  time.Time `gorm:"column:checked_at"`
}

func (reportModel) TableName() string {
	return "grn_verification_reports"
}

type propertyRow struct {
	Property string `json:"property"`
	Holds    bool   `json:"holds"`
	Witness  string `json:"witness,omitempty"`
}

func reportRowFromEntity(report entities.VerificationReport) (reportModel, error) {
	rows := make([]propertyRow, 0, len(report.Properties))
	for _, result := range report.Properties {
		rows = append(rows, propertyRow{
			Property: result.Property,
			Holds:    result.Holds,
			Witness:  result.Witness,
		})
	}
	encoded, err := json.Marshal(rows)
	if err != nil {
		return reportModel{}, err
	}
	return reportModel{
		ModelID:    strings.TrimSpace(report.ModelID),
		Properties: encoded,
		AllHold:    report.AllHold,
		CheckedAt:  report.CheckedAt.UTC(),
	}, nil
}

func (m reportModel) toEntity() (entities.VerificationReport, error) {
	var rows []propertyRow
	if len(m.Properties) > 0 {
		if err := json.Unmarshal(m.Properties, &rows); err != nil {
			return entities.VerificationReport{}, err
		}
	}
	results := make([]entities.PropertyResult, 0, len(rows))
	for _, row := range rows {
		results = append(results, entities.PropertyResult{
			Property: row.Property,
			Holds:    row.Holds,
			Witness:  row.Witness,
		})
	}
	return entities.VerificationReport{
		ModelID:    m.ModelID,
		Properties: results,
		AllHold:    m.AllHold,
		CheckedAt:  m.CheckedAt.UTC(),
	}, nil
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
