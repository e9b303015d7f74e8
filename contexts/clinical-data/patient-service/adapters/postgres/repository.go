package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"helix/contexts/clinical-data/patient-service/domain/entities"
	domainerrors "helix/contexts/clinical-data/patient-service/domain/errors"
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

func (r *Repository) SavePatient(ctx context.Context, patient entities.Patient) error {
	row := patientModelFromEntity(patient)
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"given_name":      row.GivenName,
			"family_name":     row.FamilyName,
			"birth_year":      row.BirthYear,
			"sex":             row.Sex,
			"consent_granted": row.ConsentGranted,
			"updated_at":      row.UpdatedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("patient_repo_save_patient_failed", create.Error,
			"patient_id", strings.TrimSpace(patient.PatientID),
		)
	}
	return nil
}

func (r *Repository) GetPatient(ctx context.Context, patientID string) (entities.Patient, error) {
	var row patientModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(patientID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Patient{}, domainerrors.ErrPatientNotFound
		}
		return entities.Patient{}, r.logError("patient_repo_get_patient_failed", err,
			"patient_id", strings.TrimSpace(patientID),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) ListPatients(ctx context.Context, limit int) ([]entities.Patient, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []patientModel
	if err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("patient_repo_list_patients_failed", err)
	}
	items := make([]entities.Patient, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) SaveArtifact(ctx context.Context, artifact entities.RecordArtifact) error {
	row := artifactModelFromEntity(artifact)
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		return r.logError("patient_repo_save_artifact_failed", create.Error,
			"artifact_id", strings.TrimSpace(artifact.ArtifactID),
			"patient_id", strings.TrimSpace(artifact.PatientID),
		)
	}
	return nil
}

func (r *Repository) GetArtifact(ctx context.Context, artifactID string) (entities.RecordArtifact, error) {
	var row artifactModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(artifactID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.RecordArtifact{}, domainerrors.ErrArtifactNotFound
		}
		return entities.RecordArtifact{}, r.logError("patient_repo_get_artifact_failed", err,
			"artifact_id", strings.TrimSpace(artifactID),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) ListArtifactsByPatient(ctx context.Context, patientID string) ([]entities.RecordArtifact, error) {
	var rows []artifactModel
	if err := r.db.WithContext(ctx).
		Where("patient_id = ?", strings.TrimSpace(patientID)).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("patient_repo_list_artifacts_failed", err,
			"patient_id", strings.TrimSpace(patientID),
		)
	}
	items := make([]entities.RecordArtifact, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "clinical-data/patient-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("patient repository operation failed", fields...)
	return err
}

type patientModel struct {
	ID             string    `gorm:"column:id;primaryKey"`
	MRNCipher      string    `gorm:"column:mrn_cipher"`
	GivenName      string    `gorm:"column:given_name"`
	FamilyName     string    `gorm:"column:family_name"`
	BirthYear      int       `gorm:"column:birth_year"`
	Sex            string    `gorm:"column:sex"`
	ConsentGranted bool      `gorm:"column:consent_granted"`
	CreatedBy      string    `gorm:"column:created_by"`
	CreatedAt      time.Time `gorm:"column:created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
}

func (patientModel) TableName() string {
	return "patients"
}

func patientModelFromEntity(patient entities.Patient) patientModel {
	row := patientModel{
		ID:             strings.TrimSpace(patient.PatientID),
		MRNCipher:      patient.MRNCipher,
		GivenName:      strings.TrimSpace(patient.GivenName),
		FamilyName:     strings.TrimSpace(patient.FamilyName),
		BirthYear:      patient.BirthYear,
		Sex:            string(patient.Sex),
		ConsentGranted: patient.ConsentGranted,
		CreatedBy:      strings.TrimSpace(patient.CreatedBy),
		CreatedAt:      patient.CreatedAt.UTC(),
		UpdatedAt:      patient.UpdatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	return row
}

func (m patientModel) toEntity() entities.Patient {
	return entities.Patient{
		PatientID:      m.ID,
		MRNCipher:      m.MRNCipher,
		GivenName:      m.GivenName,
		FamilyName:     m.FamilyName,
		BirthYear:      m.BirthYear,
		Sex:            entities.Sex(m.Sex),
		ConsentGranted: m.ConsentGranted,
		CreatedBy:      m.CreatedBy,
		CreatedAt:      m.CreatedAt.UTC(),
		UpdatedAt:      m.UpdatedAt.UTC(),
	}
}

type artifactModel struct {
	ID          string    `gorm:"column:id;primaryKey"`
	PatientID   string    `gorm:"column:patient_id"`
	Kind        string    `gorm:"column:kind"`
	ObjectKey   string    `gorm:"column:object_key"`
	ContentType string    `gorm:"column:content_type"`
	Size        int64     `gorm:"column:size"`
	UploadedBy  string    `gorm:"column:uploaded_by"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (artifactModel) TableName() string {
	return "record_artifacts"
}

func artifactModelFromEntity(artifact entities.RecordArtifact) artifactModel {
	row := artifactModel{
		ID:          strings.TrimSpace(artifact.ArtifactID),
		PatientID:   strings.TrimSpace(artifact.PatientID),
		Kind:        string(artifact.Kind),
		ObjectKey:   strings.TrimSpace(artifact.ObjectKey),
		ContentType: strings.TrimSpace(artifact.ContentType),
		Size:        artifact.Size,
		UploadedBy:  strings.TrimSpace(artifact.UploadedBy),
		CreatedAt:   artifact.CreatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	return row
}

func (m artifactModel) toEntity() entities.RecordArtifact {
	return entities.RecordArtifact{
		ArtifactID:  m.ID,
		PatientID:   m.PatientID,
		Kind:        entities.ArtifactKind(m.Kind),
		ObjectKey:   m.ObjectKey,
		ContentType: m.ContentType,
		Size:        m.Size,
		UploadedBy:  m.UploadedBy,
		CreatedAt:   m.CreatedAt.UTC(),
	}
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }
