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

	"helix/contexts/modeling/analysis-router-service/domain/entities"
	domainerrors "helix/contexts/modeling/analysis-router-service/domain/errors"
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

func (r *Repository) SavePlan(ctx context.Context, plan entities.AnalysisPlan) error {
	row, err := planRowFromEntity(plan)
	if err != nil {
		return r.logError("analysis_repo_encode_plan_failed", err, "plan_id", plan.PlanID)
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"status":      row.Status,
			"routes":      row.Routes,
			"dispatch_at": row.DispatchAt,
			"updated_at":  row.UpdatedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("analysis_repo_save_plan_failed", create.Error, "plan_id", plan.PlanID)
	}
	return nil
}

func (r *Repository) GetPlan(ctx context.Context, planID string) (entities.AnalysisPlan, error) {
	var row analysisPlanModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(planID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.AnalysisPlan{}, domainerrors.ErrPlanNotFound
		}
		return entities.AnalysisPlan{}, r.logError("analysis_repo_get_plan_failed", err, "plan_id", strings.TrimSpace(planID))
	}
	return row.toEntity()
}

func (r *Repository) ListPlansByPatient(ctx context.Context, patientID string) ([]entities.AnalysisPlan, error) {
	var rows []analysisPlanModel
	if err := r.db.WithContext(ctx).
		Where("patient_id = ?", strings.TrimSpace(patientID)).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("analysis_repo_list_plans_failed", err, "patient_id", strings.TrimSpace(patientID))
	}
	items := make([]entities.AnalysisPlan, 0, len(rows))
	for _, row := range rows {
		entity, err := row.toEntity()
		if err != nil {
			return nil, r.logError("analysis_repo_decode_plan_failed", err, "plan_id", row.ID)
		}
		items = append(items, entity)
	}
	return items, nil
}

func (r *Repository) AppendOutbox(ctx context.Context, envelope events.Envelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return r.logError("analysis_repo_encode_outbox_failed", err, "event_id", envelope.EventID)
	}
	row := outboxModel{
		ID:        envelope.EventID,
		EventType: envelope.EventType,
		Payload:   payload,
		Status:    outbox.StatusPending,
		CreatedAt: envelope.OccurredAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return r.logError("analysis_repo_append_outbox_failed", err, "event_id", envelope.EventID)
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
		return nil, r.logError("analysis_repo_list_outbox_failed", err)
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
		return r.logError("analysis_repo_mark_outbox_failed", err, "outbox_id", strings.TrimSpace(outboxID))
	}
	return nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "modeling/analysis-router-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("analysis plan repository operation failed", fields...)
	return err
}

type analysisPlanModel struct {
	ID         string     `gorm:"column:id;primaryKey"`
	PatientID  string     `gorm:"column:patient_id"`
	Requested  []byte     `gorm:"column:requested;type:jsonb"`
	Profile    []byte     `gorm:"column:profile;type:jsonb"`
	Routes     []byte     `gorm:"column:routes;type:jsonb"`
	Status     string     `gorm:"column:status"`
	CreatedBy  string     `gorm:"column:created_by"`
	CreatedAt  time.Time  `gorm:"column:created_at"`
	UpdatedAt  time.Time  `gorm:"column:updated_at"`
	DispatchAt *time.Time `gorm:"column:dispatch_at"`
}

func (analysisPlanModel) TableName() string {
	return "analysis_plans"
}

type profileRow struct {
	SampleCount    int     `json:"sample_count"`
	HasTimeSeries  bool    `json:"has_time_series"`
	NoiseLevel     float64 `json:"noise_level"`
	PriorKnowledge bool    `json:"prior_knowledge"`
}

type routeRow struct {
	Method string  `json:"method"`
	Weight float64 `json:"weight"`
	Reason string  `json:"reason"`
}

func planRowFromEntity(plan entities.AnalysisPlan) (analysisPlanModel, error) {
	requested := make([]string, 0, len(plan.Requested))
	for _, method := range plan.Requested {
		requested = append(requested, string(method))
	}
	encodedRequested, err := json.Marshal(requested)
	if err != nil {
		return analysisPlanModel{}, err
	}
	encodedProfile, err := json.Marshal(profileRow{
		SampleCount:    plan.Profile.SampleCount,
		HasTimeSeries:  plan.Profile.HasTimeSeries,
		NoiseLevel:     plan.Profile.NoiseLevel,
		PriorKnowledge: plan.Profile.PriorKnowledge,
	})
	if err != nil {
		return analysisPlanModel{}, err
	}
	routes := make([]routeRow, 0, len(plan.Routes))
	for _, route := range plan.Routes {
		routes = append(routes, routeRow{
			Method: string(route.Method),
			Weight: route.Weight,
			Reason: route.Reason,
		})
	}
	encodedRoutes, err := json.Marshal(routes)
	if err != nil {
		return analysisPlanModel{}, err
	}
	row := analysisPlanModel{
		ID:        strings.TrimSpace(plan.PlanID),
		PatientID: strings.TrimSpace(plan.PatientID),
		Requested: encodedRequested,
		Profile:   encodedProfile,
		Routes:    encodedRoutes,
		Status:    string(plan.Status),
		CreatedBy: strings.TrimSpace(plan.CreatedBy),
		CreatedAt: plan.CreatedAt.UTC(),
		UpdatedAt: plan.UpdatedAt.UTC(),
	}
	if plan.DispatchAt != nil {
		dispatched := plan.DispatchAt.UTC()
		row.DispatchAt = &dispatched
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	return row, nil
}

func (m analysisPlanModel) toEntity() (entities.AnalysisPlan, error) {
	var requested []string
	if len(m.Requested) > 0 {
		if err := json.Unmarshal(m.Requested, &requested); err != nil {
			return entities.AnalysisPlan{}, err
		}
	}
	var profile profileRow
	if len(m.Profile) > 0 {
		if err := json.Unmarshal(m.Profile, &profile); err != nil {
			return entities.AnalysisPlan{}, err
		}
	}
	var routeRows []routeRow
	if len(m.Routes) > 0 {
		if err := json.Unmarshal(m.Routes, &routeRows); err != nil {
			return entities.AnalysisPlan{}, err
		}
	}
	methods := make([]entities.Method, 0, len(requested))
	for _, method := range requested {
		methods = append(methods, entities.Method(method))
	}
	routes := make([]entities.MethodRoute, 0, len(routeRows))
	for _, row := range routeRows {
		routes = append(routes, entities.MethodRoute{
			Method: entities.Method(row.Method),
			Weight: row.Weight,
			Reason: row.Reason,
		})
	}
	plan := entities.AnalysisPlan{
		PlanID:    m.ID,
		PatientID: m.PatientID,
		Requested: methods,
		Profile: entities.DataProfile{
			SampleCount:    profile.SampleCount,
			HasTimeSeries:  profile.HasTimeSeries,
			NoiseLevel:     profile.NoiseLevel,
			PriorKnowledge: profile.PriorKnowledge,
		},
		Routes:    routes,
		Status:    entities.PlanStatus(m.Status),
		CreatedBy: m.CreatedBy,
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
	if m.DispatchAt != nil {
		dispatched := m.DispatchAt.UTC()
		plan.DispatchAt = &dispatched
	}
	return plan, nil
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
	return "analysis_plan_outbox"
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
