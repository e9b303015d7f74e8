package ports

import (
	"context"
	"time"

	"helix/contexts/clinical-data/patient-service/domain/entities"
)

type PatientRepository interface {
	SavePatient(ctx context.Context, patient entities.Patient) error
	GetPatient(ctx context.Context, patientID string) (entities.Patient, error)
	ListPatients(ctx context.Context, limit int) ([]entities.Patient, error)
}

type ArtifactRepository interface {
	SaveArtifact(ctx context.Context, artifact entities.RecordArtifact) error
	GetArtifact(ctx context.Context, artifactID string) (entities.RecordArtifact, error)
	ListArtifactsByPatient(ctx context.Context, patientID string) ([]entities.RecordArtifact, error)
}

// BlobStore is the object-store surface the module needs; the platform
// objectstore adapter satisfies it.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
