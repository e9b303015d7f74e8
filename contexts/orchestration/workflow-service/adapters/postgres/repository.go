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

	"helix/contexts/orchestration/workflow-service/domain/entities"
	domainerrors "helix/contexts/orchestration/workflow-service/domain/errors"
	"helix/contexts/orchestration/workflow-service/ports"
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

func (r *Repository) CreateWorkflow(ctx context.Context, workflow entities.Workflow) error {
	row, err := rowFromEntity(workflow)
	if err != nil {
		return r.logError("workflow_repo_encode_failed", err, "workflow_id", workflow.WorkflowID)
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return r.logError("workflow_repo_create_failed", err, "workflow_id", workflow.WorkflowID)
	}
	return nil
}

func (r *Repository) GetWorkflow(ctx context.Context, workflowID string) (entities.Workflow, error) {
	var row workflowModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(workflowID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Workflow{}, domainerrors.ErrWorkflowNotFound
		}
		return entities.Workflow{}, r.logError("workflow_repo_get_failed", err,
			"workflow_id", strings.TrimSpace(workflowID),
		)
	}
	return row.toEntity()
}

func (r *Repository) UpdateWorkflow(ctx context.Context, workflow entities.Workflow) error {
	row, err := rowFromEntity(workflow)
	if err != nil {
		return r.logError("workflow_repo_encode_failed", err, "workflow_id", workflow.WorkflowID)
	}
	result := r.db.WithContext(ctx).
		Model(&workflowModel{}).
		Where("id = ?", row.ID).
		Updates(map[string]any{
			"status":           row.Status,
			"progress":         row.Progress,
			"results":          row.Results,
			"error_message":    row.ErrorMessage,
			"attempts":         row.Attempts,
			"lease_owner":      row.LeaseOwner,
			"lease_expires_at": row.LeaseExpiresAt,
			"next_run_at":      row.NextRunAt,
			"updated_at":       row.UpdatedAt,
			"started_at":       row.StartedAt,
			"completed_at":     row.CompletedAt,
		})
	if result.Error != nil {
		return r.logError("workflow_repo_update_failed", result.Error, "workflow_id", workflow.WorkflowID)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrWorkflowNotFound
	}
	return nil
}

func (r *Repository) UpdateWorkflowOwned(ctx context.Context, workflow entities.Workflow, owner string) (bool, error) {
	row, err := rowFromEntity(workflow)
	if err != nil {
		return false, r.logError("workflow_repo_encode_failed", err, "workflow_id", workflow.WorkflowID)
	}
	result := r.db.WithContext(ctx).
		Model(&workflowModel{}).
		Where("id = ? AND lease_owner = ?", row.ID, owner).
		Updates(map[string]any{
			"status":           row.Status,
			"progress":         row.Progress,
			"results":          row.Results,
			"error_message":    row.ErrorMessage,
			"attempts":         row.Attempts,
			"lease_owner":      row.LeaseOwner,
			"lease_expires_at": row.LeaseExpiresAt,
			"next_run_at":      row.NextRunAt,
			"updated_at":       row.UpdatedAt,
			"started_at":       row.StartedAt,
			"completed_at":     row.CompletedAt,
		})
	if result.Error != nil {
		return false, r.logError("workflow_repo_update_failed", result.Error, "workflow_id", workflow.WorkflowID)
	}
	return result.RowsAffected > 0, nil
}

func (r *Repository) ListWorkflows(ctx context.Context, filter ports.WorkflowFilter, limit int) ([]entities.Workflow, error) {
	if limit <= 0 {
		limit = 50
	}
	query := r.db.WithContext(ctx).Model(&workflowModel{})
	if filter.PatientID != "" {
		query = query.Where("patient_id = ?", strings.TrimSpace(filter.PatientID))
	}
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	var rows []workflowModel
	if err := query.Order("created_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, r.logError("workflow_repo_list_failed", err)
	}
	items := make([]entities.Workflow, 0, len(rows))
	for _, row := range rows {
		entity, err := row.toEntity()
		if err != nil {
			return nil, r.logError("workflow_repo_decode_failed", err, "workflow_id", row.ID)
		}
		items = append(items, entity)
	}
	return items, nil
}

func (r *Repository) ClaimDueWorkflow(
	ctx context.Context,
	owner string,
	now time.Time,
	leaseTTL time.Duration,
) (entities.Workflow, bool, error) {
	var claimed entities.Workflow
	found := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row workflowModel
		err := tx.
			Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("status = ? AND next_run_at <= ?", string(entities.StatusPending), now.UTC()).
			Order("priority DESC, created_at ASC").
			First(&row).
			Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		expires := now.UTC().Add(leaseTTL)
		started := now.UTC()
		update := tx.Model(&workflowModel{}).
			Where("id = ?", row.ID).
			Updates(map[string]any{
				"status":           string(entities.StatusRunning),
				"attempts":         gorm.Expr("attempts + 1"),
				"lease_owner":      owner,
				"lease_expires_at": expires,
				"started_at":       started,
				"updated_at":       now.UTC(),
			})
		if update.Error != nil {
			return update.Error
		}

		row.Status = string(entities.StatusRunning)
		row.Attempts++
		row.LeaseOwner = owner
		row.LeaseExpiresAt = &expires
		row.StartedAt = &started
		row.UpdatedAt = now.UTC()
		entity, err := row.toEntity()
		if err != nil {
			return err
		}
		claimed = entity
		found = true
		return nil
	})
	if err != nil {
		return entities.Workflow{}, false, r.logError("workflow_repo_claim_failed", err, "owner", owner)
	}
	return claimed, found, nil
}

func (r *Repository) ListExpiredLeases(ctx context.Context, now time.Time, limit int) ([]entities.Workflow, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []workflowModel
	err := r.db.WithContext(ctx).
		Where("status = ? AND lease_expires_at IS NOT NULL AND lease_expires_at < ?",
			string(entities.StatusRunning), now.UTC()).
		Order("lease_expires_at ASC").
		Limit(limit).
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("workflow_repo_list_expired_failed", err)
	}
	items := make([]entities.Workflow, 0, len(rows))
	for _, row := range rows {
		entity, err := row.toEntity()
		if err != nil {
			return nil, r.logError("workflow_repo_decode_failed", err, "workflow_id", row.ID)
		}
		items = append(items, entity)
	}
	return items, nil
}

func (r *Repository) GetRecord(ctx context.Context, key string, now time.Time) (ports.IdempotencyRecord, bool, error) {
	var row idempotencyModel
	err := r.db.WithContext(ctx).
		Where("key = ? AND expires_at > ?", strings.TrimSpace(key), now.UTC()).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.IdempotencyRecord{}, false, nil
		}
		return ports.IdempotencyRecord{}, false, r.logError("workflow_repo_get_idempotency_failed", err)
	}
	return ports.IdempotencyRecord{
		Key:             row.Key,
		RequestHash:     row.RequestHash,
		ResponsePayload: row.ResponsePayload,
		ExpiresAt:       row.ExpiresAt.UTC(),
	}, true, nil
}

func (r *Repository) PutRecord(ctx context.Context, record ports.IdempotencyRecord) error {
	row := idempotencyModel{
		Key:             strings.TrimSpace(record.Key),
		RequestHash:     record.RequestHash,
		ResponsePayload: record.ResponsePayload,
		ExpiresAt:       record.ExpiresAt.UTC(),
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]any{
			"request_hash":     row.RequestHash,
			"response_payload": row.ResponsePayload,
			"expires_at":       row.ExpiresAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("workflow_repo_put_idempotency_failed", create.Error)
	}
	return nil
}

func (r *Repository) AppendOutbox(ctx context.Context, envelope events.Envelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return r.logError("workflow_repo_encode_outbox_failed", err, "event_id", envelope.EventID)
	}
	row := outboxModel{
		ID:        envelope.EventID,
		EventType: envelope.EventType,
		Payload:   payload,
		Status:    outbox.StatusPending,
		CreatedAt: envelope.OccurredAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return r.logError("workflow_repo_append_outbox_failed", err, "event_id", envelope.EventID)
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
		return nil, r.logError("workflow_repo_list_outbox_failed", err)
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
		return r.logError("workflow_repo_mark_outbox_failed", err, "outbox_id", strings.TrimSpace(outboxID))
	}
	return nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "orchestration/workflow-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("workflow repository operation failed", fields...)
	return err
}

type workflowModel struct {
	ID             string     `gorm:"column:id;primaryKey"`
	WorkflowType   string     `gorm:"column:workflow_type"`
	PatientID      string     `gorm:"column:patient_id"`
	PlanID         string     `gorm:"column:plan_id"`
	Status         string     `gorm:"column:status"`
	Priority       int        `gorm:"column:priority"`
	Progress       float64    `gorm:"column:progress"`
	Parameters     []byte     `gorm:"column:parameters;type:jsonb"`
	Results        []byte     `gorm:"column:results;type:jsonb"`
	ErrorMessage   string     `gorm:"column:error_message"`
	Attempts       int        `gorm:"column:attempts"`
	MaxAttempts    int        `gorm:"column:max_attempts"`
	LeaseOwner     string     `gorm:"column:lease_owner"`
	LeaseExpiresAt *time.Time `gorm:"column:lease_expires_at"`
	NextRunAt      time.Time  `gorm:"column:next_run_at"`
	CreatedBy      string     `gorm:"column:created_by"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
	UpdatedAt      time.Time  `gorm:"column:updated_at"`
	StartedAt      *time.Time `gorm:"column:started_at"`
	CompletedAt    *time.Time `gorm:"column:completed_at"`
}

func (workflowModel) TableName() string {
	return "workflows"
}

func rowFromEntity(workflow entities.Workflow) (workflowModel, error) {
	parameters, err := json.Marshal(workflow.Parameters)
	if err != nil {
		return workflowModel{}, err
	}
	results, err := json.Marshal(workflow.Results)
	if err != nil {
		return workflowModel{}, err
	}
	row := workflowModel{
		ID:           strings.TrimSpace(workflow.WorkflowID),
		WorkflowType: string(workflow.WorkflowType),
		PatientID:    strings.TrimSpace(workflow.PatientID),
		PlanID:       strings.TrimSpace(workflow.PlanID),
		Status:       string(workflow.Status),
		Priority:     workflow.Priority,
		Progress:     workflow.Progress,
		Parameters:   parameters,
		Results:      results,
		ErrorMessage: workflow.ErrorMessage,
		Attempts:     workflow.Attempts,
		MaxAttempts:  workflow.MaxAttempts,
		LeaseOwner:   workflow.LeaseOwner,
		NextRunAt:    workflow.NextRunAt.UTC(),
		CreatedBy:    strings.TrimSpace(workflow.CreatedBy),
		CreatedAt:    workflow.CreatedAt.UTC(),
		UpdatedAt:    workflow.UpdatedAt.UTC(),
	}
	if workflow.LeaseExpiresAt != nil {
		expires := workflow.LeaseExpiresAt.UTC()
		row.LeaseExpiresAt = &expires
	}
	if workflow.StartedAt != nil {
		started := workflow.StartedAt.UTC()
		row.StartedAt = &started
	}
	if workflow.CompletedAt != nil {
		completed := workflow.CompletedAt.UTC()
		row.CompletedAt = &completed
	}
	return row, nil
}

func (m workflowModel) toEntity() (entities.Workflow, error) {
	var parameters map[string]any
	if len(m.Parameters) > 0 {
		if err := json.Unmarshal(m.Parameters, &parameters); err != nil {
			return entities.Workflow{}, err
		}
	}
	var results map[string]any
	if len(m.Results) > 0 {
		if err := json.Unmarshal(m.Results, &results); err != nil {
			return entities.Workflow{}, err
		}
	}
	workflow := entities.Workflow{
		WorkflowID:   m.ID,
		WorkflowType: entities.WorkflowType(m.WorkflowType),
		PatientID:    m.PatientID,
		PlanID:       m.PlanID,
		Status:       entities.Status(m.Status),
		Priority:     m.Priority,
		Progress:     m.Progress,
		Parameters:   parameters,
		Results:      results,
		ErrorMessage: m.ErrorMessage,
		Attempts:     m.Attempts,
		MaxAttempts:  m.MaxAttempts,
		LeaseOwner:   m.LeaseOwner,
		NextRunAt:    m.NextRunAt.UTC(),
		CreatedBy:    m.CreatedBy,
		CreatedAt:    m.CreatedAt.UTC(),
		UpdatedAt:    m.UpdatedAt.UTC(),
	}
	if m.LeaseExpiresAt != nil {
		expires := m.LeaseExpiresAt.UTC()
		workflow.LeaseExpiresAt = &expires
	}
	if m.StartedAt != nil {
		started := m.StartedAt.UTC()
		workflow.StartedAt = &started
	}
	if m.CompletedAt != nil {
		completed := m.CompletedAt.UTC()
		workflow.CompletedAt = &completed
	}
	return workflow, nil
}

type idempotencyModel struct {
	Key             string    `gorm:"column:key;primaryKey"`
	RequestHash     string    `gorm:"column:request_hash"`
	ResponsePayload []byte    `gorm:"column:response_payload;type:jsonb"`
	ExpiresAt       time.Time `gorm:"column:expires_at"`
}

func (idempotencyModel) TableName() string {
	return "workflow_idempotency_keys"
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
	return "workflow_outbox"
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
