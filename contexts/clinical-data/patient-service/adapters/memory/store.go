package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"helix/contexts/clinical-data/patient-service/domain/entities"
	domainerrors "helix/contexts/clinical-data/patient-service/domain/errors"
)

type Store struct {
	mu        sync.RWMutex
	patients  map[string]entities.Patient
	artifacts map[string]entities.RecordArtifact
}

func NewStore() *Store {
	return &Store{
		patients:  make(map[string]entities.Patient),
		artifacts: make(map[string]entities.RecordArtifact),
	}
}

func (s *Store) SavePatient(_ context.Context, patient entities.Patient) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.patients[patient.PatientID] = patient
	return nil
}

func (s *Store) GetPatient(_ context.Context, patientID string) (entities.Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	patient, ok := s.patients[strings.TrimSpace(patientID)]
	if !ok {
		return entities.Patient{}, domainerrors.ErrPatientNotFound
	}
	return patient, nil
}

func (s *Store) ListPatients(_ context.Context, limit int) ([]entities.Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.Patient, 0, len(s.patients))
	for _, patient := range s.patients {
		items = append(items, patient)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) SaveArtifact(_ context.Context, artifact entities.RecordArtifact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.artifacts[artifact.ArtifactID] = artifact
	return nil
}

func (s *Store) GetArtifact(_ context.Context, artifactID string) (entities.RecordArtifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	artifact, ok := s.artifacts[strings.TrimSpace(artifactID)]
	if !ok {
		return entities.RecordArtifact{}, domainerrors.ErrArtifactNotFound
	}
	return artifact, nil
}

func (s *Store) ListArtifactsByPatient(_ context.Context, patientID string) ([]entities.RecordArtifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.RecordArtifact, 0)
	for _, artifact := range s.artifacts {
		if artifact.PatientID == strings.TrimSpace(patientID) {
			items = append(items, artifact)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
