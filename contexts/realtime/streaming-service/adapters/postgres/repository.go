package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"helix/contexts/realtime/streaming-service/domain/entities"
	domainerrors "helix/contexts/realtime/streaming-service/domain/errors"
	"helix/contexts/realtime/streaming-service/ports"
	"helix/internal/shared/events"
	"helix/internal/shared/outbox"
)

const uniqueViolationCode = "23505"

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

func (r *Repository) SaveEvent(ctx context.Context, event entities.VitalEvent) error {
	row := eventRowFromEntity(event)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		// A concurrent replay of the same event ID is not an error; the
		// first insert won.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return nil
		}
		return r.logError("vitals_repo_save_event_failed", err, "event_id", event.EventID)
	}
	return nil
}

func (r *Repository) HasEvent(ctx context.Context, eventID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&vitalEventModel{}).
		Where("id = ?", strings.TrimSpace(eventID)).
		Count(&count).
		Error
	if err != nil {
		return false, r.logError("vitals_repo_has_event_failed", err, "event_id", strings.TrimSpace(eventID))
	}
	return count > 0, nil
}

func (r *Repository) ListEventsByPatient(ctx context.Context, patientID string, limit int) ([]entities.VitalEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []vitalEventModel
	if err := r.db.WithContext(ctx).
		Where("patient_id = ?", strings.TrimSpace(patientID)).
		Order("observed_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("vitals_repo_list_events_failed", err, "patient_id", strings.TrimSpace(patientID))
	}
	items := make([]entities.VitalEvent, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) SaveAlert(ctx context.Context, alert entities.Alert) error {
	row := alertRowFromEntity(alert)
	err := r.db.WithContext(ctx).Save(&row).Error
	if err != nil {
		return r.logError("vitals_repo_save_alert_failed", err, "alert_id", alert.AlertID)
	}
	return nil
}

func (r *Repository) GetAlert(ctx context.Context, alertID string) (entities.Alert, error) {
	var row alertModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(alertID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Alert{}, domainerrors.ErrAlertNotFound
		}
		return entities.Alert{}, r.logError("vitals_repo_get_alert_failed", err, "alert_id", strings.TrimSpace(alertID))
	}
	return row.toEntity(), nil
}

func (r *Repository) ListAlerts(ctx context.Context, filter ports.AlertFilter, limit int) ([]entities.Alert, error) {
	if limit <= 0 {
		limit = 100
	}
	query := r.db.WithContext(ctx).Model(&alertModel{})
	if filter.PatientID != "" {
		query = query.Where("patient_id = ?", filter.PatientID)
	}
	if filter.Acknowledged != nil {
		query = query.Where("acknowledged = ?", *filter.Acknowledged)
	}
	var rows []alertModel
	if err := query.Order("created_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, r.logError("vitals_repo_list_alerts_failed", err)
	}
	items := make([]entities.Alert, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) AppendOutbox(ctx context.Context, envelope events.Envelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return r.logError("vitals_repo_encode_outbox_failed", err, "event_id", envelope.EventID)
	}
	row := outboxModel{
		ID:        envelope.EventID,
		EventType: envelope.EventType,
		Payload:   payload,
		Status:    outbox.StatusPending,
		CreatedAt: envelope.OccurredAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return r.logError("vitals_repo_append_outbox_failed", err, "event_id", envelope.EventID)
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
		return nil, r.logError("vitals_repo_list_outbox_failed", err)
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
		return r.logError("vitals_repo_mark_outbox_failed", err, "outbox_id", strings.TrimSpace(outboxID))
	}
	return nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "realtime/streaming-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("vitals repository operation failed", fields...)
	return err
}

type vitalEventModel struct {
	ID         string    `gorm:"column:id;primaryKey"`
	PatientID  string    `gorm:"column:patient_id"`
	Metric     string    `gorm:"column:metric"`
	Value      float64   `gorm:"column:value"`
	ObservedAt time.Time `gorm:"column:observed_at"`
	Source     string    `gorm:"column:source"`
}

func (vitalEventModel) TableName() string {
	return "vital_events"
}

func eventRowFromEntity(event entities.VitalEvent) vitalEventModel {
	return vitalEventModel{
		ID:         strings.TrimSpace(event.EventID),
		PatientID:  strings.TrimSpace(event.PatientID),
		Metric:     string(event.Metric),
		Value:      event.Value,
		ObservedAt: event.ObservedAt.UTC(),
		Source:     strings.TrimSpace(event.Source),
	}
}

func (m vitalEventModel) toEntity() entities.VitalEvent {
	return entities.VitalEvent{
		EventID:    m.ID,
		PatientID:  m.PatientID,
		Metric:     entities.Metric(m.Metric),
		Value:      m.Value,
		ObservedAt: m.ObservedAt.UTC(),
		Source:     m.Source,
	}
}

type alertModel struct {
	ID           string     `gorm:"column:id;primaryKey"`
	PatientID    string     `gorm:"column:patient_id"`
	Metric       string     `gorm:"column:metric"`
	Severity     string     `gorm:"column:severity"`
	Kind         string     `gorm:"column:kind"`
	Value        float64    `gorm:"column:value"`
	Threshold    float64    `gorm:"column:threshold"`
	Message      string     `gorm:"column:message"`
	Acknowledged bool       `gorm:"column:acknowledged"`
	AckBy        string     `gorm:"column:ack_by"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	AckAt        *time.Time `gorm:"column:ack_at"`
}

func (alertModel) TableName() string {
	return "vital_alerts"
}

func alertRowFromEntity(alert entities.Alert) alertModel {
	row := alertModel{
		ID:           strings.TrimSpace(alert.AlertID),
		PatientID:    strings.TrimSpace(alert.PatientID),
		Metric:       string(alert.Metric),
		Severity:     string(alert.Severity),
		Kind:         string(alert.Kind),
		Value:        alert.Value,
		Threshold:    alert.Threshold,
		Message:      alert.Message,
		Acknowledged: alert.Acknowledged,
		AckBy:        strings.TrimSpace(alert.AckBy),
		CreatedAt:    alert.CreatedAt.UTC(),
	}
	if alert.AckAt != nil {
		acked := alert.AckAt.UTC()
		row.AckAt = &acked
	}
	return row
}

func (m alertModel) toEntity() entities.Alert {
	alert := entities.Alert{
		AlertID:      m.ID,
		PatientID:    m.PatientID,
		Metric:       entities.Metric(m.Metric),
		Severity:     entities.Severity(m.Severity),
		Kind:         entities.AlertKind(m.Kind),
		Value:        m.Value,
		Threshold:    m.Threshold,
		Message:      m.Message,
		Acknowledged: m.Acknowledged,
		AckBy:        m.AckBy,
		CreatedAt:    m.CreatedAt.UTC(),
	}
	if m.AckAt != nil {
		acked := m.AckAt.UTC()
		alert.AckAt = &acked
	}
	return alert
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
	return "vitals_outbox"
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
