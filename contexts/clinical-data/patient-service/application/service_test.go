package application

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"helix/contexts/clinical-data/patient-service/adapters/memory"
	"helix/contexts/clinical-data/patient-service/domain/entities"
	domainerrors "helix/contexts/clinical-data/patient-service/domain/errors"
	"helix/internal/platform/objectstore"
)

var testKey = bytes.Repeat([]byte{0x42}, 32)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

func newTestService(t *testing.T) (Service, *memory.Store) {
	t.Helper()
	cipher, err := NewMRNCipher(testKey)
	if err != nil {
		t.Fatalf("cipher init failed: %v", err)
	}
	store := memory.NewStore()
	return Service{
		Patients:  store,
		Artifacts: store,
		Blobs:     objectstore.NewInMemory(nil),
		Cipher:    cipher,
		Clock:     fixedClock{now: time.Date(2026, time.April, 2, 8, 30, 0, 0, time.UTC)},
		IDGen:     memory.UUIDGenerator{},
	}, store
}

func TestCreatePatientEncryptsMRNAtRest(t *testing.T) {
	service, store := newTestService(t)

	patient, err := service.CreatePatient(context.Background(), CreatePatientInput{
		MRN:            "MRN-00912",
		GivenName:      "Iris",
		FamilyName:     "Okafor",
		BirthYear:      1984,
		Sex:            entities.SexFemale,
		ConsentGranted: true,
		CreatedBy:      "user-1",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	stored, err := store.GetPatient(context.Background(), patient.PatientID)
	if err != nil {
		t.Fatalf("store lookup failed: %v", err)
	}
	if strings.Contains(stored.MRNCipher, "MRN-00912") {
		t.Fatal("stored record leaks the plain MRN")
	}

	view, err := service.GetPatient(context.Background(), patient.PatientID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if view.MRN != "MRN-00912" {
		t.Fatalf("expected round-tripped MRN, got %q", view.MRN)
	}
}

func TestCreatePatientRequiresConsent(t *testing.T) {
	service, _ := newTestService(t)

	_, err := service.CreatePatient(context.Background(), CreatePatientInput{
		MRN:        "MRN-1",
		FamilyName: "Okafor",
		BirthYear:  1984,
	})
	if !errors.Is(err, domainerrors.ErrConsentRequired) {
		t.Fatalf("expected ErrConsentRequired, got %v", err)
	}
}

func TestAttachArtifactStoresBlobAndMetadata(t *testing.T) {
	service, _ := newTestService(t)

	patient, err := service.CreatePatient(context.Background(), CreatePatientInput{
		MRN:            "MRN-2",
		FamilyName:     "Okafor",
		BirthYear:      1990,
		ConsentGranted: true,
	})
	if err != nil {
		t.Fatalf("create patient failed: %v", err)
	}

	payload := []byte(`{"genes":["TP53","BRCA1"],"values":[0.2,0.9]}`)
	artifact, err := service.AttachArtifact(context.Background(), AttachArtifactInput{
		PatientID:   patient.PatientID,
		Kind:        entities.ArtifactKindExpressionMatrix,
		ContentType: "application/json",
		Data:        payload,
		UploadedBy:  "user-1",
	})
	if err != nil {
		t.Fatalf("attach failed: %v", err)
	}
	if artifact.Size != int64(len(payload)) {
		t.Fatalf("expected size %d, got %d", len(payload), artifact.Size)
	}

	download, err := service.GetArtifact(context.Background(), artifact.ArtifactID)
	if err != nil {
		t.Fatalf("download failed: %v", err)
	}
	if !bytes.Equal(download.Data, payload) {
		t.Fatal("downloaded blob does not match uploaded payload")
	}
}

func TestAttachArtifactRejectsRevokedConsent(t *testing.T) {
	service, _ := newTestService(t)

	patient, err := service.CreatePatient(context.Background(), CreatePatientInput{
		MRN:            "MRN-3",
		FamilyName:     "Okafor",
		BirthYear:      1990,
		ConsentGranted: true,
	})
	if err != nil {
		t.Fatalf("create patient failed: %v", err)
	}
	if _, err := service.UpdateConsent(context.Background(), patient.PatientID, false); err != nil {
		t.Fatalf("revoke consent failed: %v", err)
	}

	_, err = service.AttachArtifact(context.Background(), AttachArtifactInput{
		PatientID: patient.PatientID,
		Kind:      entities.ArtifactKindClinicalNote,
		Data:      []byte("note"),
	})
	if !errors.Is(err, domainerrors.ErrConsentRequired) {
		t.Fatalf("expected ErrConsentRequired after revocation, got %v", err)
	}
}

func TestMRNCipherRejectsTamperedCiphertext(t *testing.T) {
	cipher, err := NewMRNCipher(testKey)
	if err != nil {
		t.Fatalf("cipher init failed: %v", err)
	}
	sealed, err := cipher.Encrypt("MRN-55")
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}
	tampered := "A" + sealed[1:]
	if tampered == sealed {
		tampered = "B" + sealed[1:]
	}
	if _, err := cipher.Decrypt(tampered); err == nil {
		t.Fatal("expected tampered ciphertext to fail authentication")
	}
}
