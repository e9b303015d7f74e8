package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"helix/contexts/clinical-data/patient-service/domain/entities"
	domainerrors "helix/contexts/clinical-data/patient-service/domain/errors"
	"helix/contexts/clinical-data/patient-service/ports"
)

type CreatePatientInput struct {
	MRN            string
	GivenName      string
	FamilyName     string
	BirthYear      int
	Sex            entities.Sex
	ConsentGranted bool
	CreatedBy      string
}

type AttachArtifactInput struct {
	PatientID   string
	Kind        entities.ArtifactKind
	ContentType string
	Data        []byte
	UploadedBy  string
}

type ArtifactDownload struct {
	Artifact entities.RecordArtifact
	Data     []byte
}

// PatientView is a patient with the MRN decrypted for an authorized reader.
type PatientView struct {
	Patient entities.Patient
	MRN     string
}

type Service struct {
	Patients  ports.PatientRepository
	Artifacts ports.ArtifactRepository
	Blobs     ports.BlobStore
	Cipher    MRNCipher
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

func (s Service) CreatePatient(ctx context.Context, input CreatePatientInput) (entities.Patient, error) {
	logger := s.resolveLogger()
	mrn := strings.TrimSpace(input.MRN)
	if mrn == "" || strings.TrimSpace(input.FamilyName) == "" {
		return entities.Patient{}, domainerrors.ErrInvalidPatientInput
	}
	if input.BirthYear < 1900 || input.BirthYear > time.Now().UTC().Year() {
		return entities.Patient{}, domainerrors.ErrInvalidPatientInput
	}
	sex := input.Sex
	if sex == "" {
		sex = entities.SexUnknown
	}
	if !sex.Valid() {
		return entities.Patient{}, domainerrors.ErrInvalidPatientInput
	}
	if !input.ConsentGranted {
		return entities.Patient{}, domainerrors.ErrConsentRequired
	}

	cipherText, err := s.Cipher.Encrypt(mrn)
	if err != nil {
		return entities.Patient{}, fmt.Errorf("encrypt mrn: %w", err)
	}
	patientID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return entities.Patient{}, err
	}

	now := s.now()
	patient := entities.Patient{
		PatientID:      patientID,
		MRNCipher:      cipherText,
		GivenName:      strings.TrimSpace(input.GivenName),
		FamilyName:     strings.TrimSpace(input.FamilyName),
		BirthYear:      input.BirthYear,
		Sex:            sex,
		ConsentGranted: true,
		CreatedBy:      strings.TrimSpace(input.CreatedBy),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.Patients.SavePatient(ctx, patient); err != nil {
		return entities.Patient{}, err
	}

	logger.Info("patient created",
		"event", "patient_created",
		"module", "clinical-data/patient-service",
		"layer", "application",
		"patient_id", patient.PatientID,
		"created_by", patient.CreatedBy,
	)
	return patient, nil
}

func (s Service) GetPatient(ctx context.Context, patientID string) (PatientView, error) {
	patient, err := s.Patients.GetPatient(ctx, strings.TrimSpace(patientID))
	if err != nil {
		return PatientView{}, err
	}
	mrn, err := s.Cipher.Decrypt(patient.MRNCipher)
	if err != nil {
		return PatientView{}, fmt.Errorf("decrypt mrn: %w", err)
	}
	return PatientView{Patient: patient, MRN: mrn}, nil
}

func (s Service) ListPatients(ctx context.Context, limit int) ([]entities.Patient, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.Patients.ListPatients(ctx, limit)
}

func (s Service) UpdateConsent(ctx context.Context, patientID string, granted bool) (entities.Patient, error) {
	patient, err := s.Patients.GetPatient(ctx, strings.TrimSpace(patientID))
	if err != nil {
		return entities.Patient{}, err
	}
	if patient.ConsentGranted == granted {
		return patient, nil
	}
	patient.ConsentGranted = granted
	patient.UpdatedAt = s.now()
	if err := s.Patients.SavePatient(ctx, patient); err != nil {
		return entities.Patient{}, err
	}
	s.resolveLogger().Info("patient consent updated",
		"event", "patient_consent_updated",
		"module", "clinical-data/patient-service",
		"layer", "application",
		"patient_id", patient.PatientID,
		"consent_granted", granted,
	)
	return patient, nil
}

func (s Service) AttachArtifact(ctx context.Context, input AttachArtifactInput) (entities.RecordArtifact, error) {
	logger := s.resolveLogger()
	if !input.Kind.Valid() || len(input.Data) == 0 {
		return entities.RecordArtifact{}, domainerrors.ErrInvalidArtifactInput
	}
	patient, err := s.Patients.GetPatient(ctx, strings.TrimSpace(input.PatientID))
	if err != nil {
		return entities.RecordArtifact{}, err
	}
	if !patient.ConsentGranted {
		return entities.RecordArtifact{}, domainerrors.ErrConsentRequired
	}

	artifactID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return entities.RecordArtifact{}, err
	}
	objectKey := fmt.Sprintf("patients/%s/artifacts/%s", patient.PatientID, artifactID)
	if err := s.Blobs.Put(ctx, objectKey, input.Data); err != nil {
		return entities.RecordArtifact{}, err
	}

	artifact := entities.RecordArtifact{
		ArtifactID:  artifactID,
		PatientID:   patient.PatientID,
		Kind:        input.Kind,
		ObjectKey:   objectKey,
		ContentType: strings.TrimSpace(input.ContentType),
		Size:        int64(len(input.Data)),
		UploadedBy:  strings.TrimSpace(input.UploadedBy),
		CreatedAt:   s.now(),
	}
	if err := s.Artifacts.SaveArtifact(ctx, artifact); err != nil {
		return entities.RecordArtifact{}, err
	}

	logger.Info("record artifact attached",
		"event", "patient_artifact_attached",
		"module", "clinical-data/patient-service",
		"layer", "application",
		"patient_id", patient.PatientID,
		"artifact_id", artifact.ArtifactID,
		"kind", string(artifact.Kind),
		"size", artifact.Size,
	)
	return artifact, nil
}

func (s Service) GetArtifact(ctx context.Context, artifactID string) (ArtifactDownload, error) {
	artifact, err := s.Artifacts.GetArtifact(ctx, strings.TrimSpace(artifactID))
	if err != nil {
		return ArtifactDownload{}, err
	}
	data, err := s.Blobs.Get(ctx, artifact.ObjectKey)
	if err != nil {
		return ArtifactDownload{}, domainerrors.ErrArtifactNotFound
	}
	return ArtifactDownload{Artifact: artifact, Data: data}, nil
}

func (s Service) ListArtifacts(ctx context.Context, patientID string) ([]entities.RecordArtifact, error) {
	if _, err := s.Patients.GetPatient(ctx, strings.TrimSpace(patientID)); err != nil {
		return nil, err
	}
	return s.Artifacts.ListArtifactsByPatient(ctx, strings.TrimSpace(patientID))
}

func (s Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

func (s Service) resolveLogger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}
