package entities

import "time"

type Sex string

const (
	SexFemale  Sex = "female"
	SexMale    Sex = "male"
	SexOther   Sex = "other"
	SexUnknown Sex = "unknown"
)

func (s Sex) Valid() bool {
	switch s {
	case SexFemale, SexMale, SexOther, SexUnknown:
		return true
	default:
		return false
	}
}

// Patient carries demographics only; MRNCipher holds the encrypted medical
// record number and the plain value never leaves the application layer.
type Patient struct {
	PatientID      string
	MRNCipher      string
	GivenName      string
	FamilyName     string
	BirthYear      int
	Sex            Sex
	ConsentGranted bool
	CreatedBy      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type ArtifactKind string

const (
	ArtifactKindExpressionMatrix ArtifactKind = "expression_matrix"
	ArtifactKindVariantCalls     ArtifactKind = "variant_calls"
	ArtifactKindClinicalNote     ArtifactKind = "clinical_note"
	ArtifactKindImaging          ArtifactKind = "imaging"
)

func (k ArtifactKind) Valid() bool {
	switch k {
	case ArtifactKindExpressionMatrix, ArtifactKindVariantCalls, ArtifactKindClinicalNote, ArtifactKindImaging:
		return true
	default:
		return false
	}
}

// RecordArtifact is the metadata row for a blob stored in the object store.
type RecordArtifact struct {
	ArtifactID  string
	PatientID   string
	Kind        ArtifactKind
	ObjectKey   string
	ContentType string
	Size        int64
	UploadedBy  string
	CreatedAt   time.Time
}
