package httpadapter

import (
	"context"
	"encoding/base64"
	"log/slog"

	"helix/contexts/clinical-data/patient-service/application"
	"helix/contexts/clinical-data/patient-service/domain/entities"
	domainerrors "helix/contexts/clinical-data/patient-service/domain/errors"
	httptransport "helix/contexts/clinical-data/patient-service/transport/http"
)

type Handler struct {
	Patients application.Service
	Logger   *slog.Logger
}

func (h Handler) CreatePatientHandler(
	ctx context.Context,
	userID string,
	req httptransport.CreatePatientRequest,
) (httptransport.PatientResponse, error) {
	patient, err := h.Patients.CreatePatient(ctx, application.CreatePatientInput{
		MRN:            req.MRN,
		GivenName:      req.GivenName,
		FamilyName:     req.FamilyName,
		BirthYear:      req.BirthYear,
		Sex:            entities.Sex(req.Sex),
		ConsentGranted: req.ConsentGranted,
		CreatedBy:      userID,
	})
	if err != nil {
		return httptransport.PatientResponse{}, err
	}
	return toPatientResponse(patient, ""), nil
}

func (h Handler) GetPatientHandler(ctx context.Context, patientID string) (httptransport.PatientResponse, error) {
	view, err := h.Patients.GetPatient(ctx, patientID)
	if err != nil {
		return httptransport.PatientResponse{}, err
	}
	return toPatientResponse(view.Patient, view.MRN), nil
}

func (h Handler) ListPatientsHandler(ctx context.Context, limit int) (httptransport.PatientListResponse, error) {
	patients, err := h.Patients.ListPatients(ctx, limit)
	if err != nil {
		return httptransport.PatientListResponse{}, err
	}
	items := make([]httptransport.PatientResponse, 0, len(patients))
	for _, patient := range patients {
		// List views never include the MRN.
		items = append(items, toPatientResponse(patient, ""))
	}
	return httptransport.PatientListResponse{Items: items}, nil
}

func (h Handler) UpdateConsentHandler(
	ctx context.Context,
	patientID string,
	req httptransport.UpdateConsentRequest,
) (httptransport.PatientResponse, error) {
	patient, err := h.Patients.UpdateConsent(ctx, patientID, req.ConsentGranted)
	if err != nil {
		return httptransport.PatientResponse{}, err
	}
	return toPatientResponse(patient, ""), nil
}

func (h Handler) AttachArtifactHandler(
	ctx context.Context,
	userID string,
	patientID string,
	req httptransport.AttachArtifactRequest,
) (httptransport.ArtifactResponse, error) {
	data, err := base64.StdEncoding.DecodeString(req.DataBase64)
	if err != nil {
		return httptransport.ArtifactResponse{}, domainerrors.ErrInvalidArtifactInput
	}
	artifact, err := h.Patients.AttachArtifact(ctx, application.AttachArtifactInput{
		PatientID:   patientID,
		Kind:        entities.ArtifactKind(req.Kind),
		ContentType: req.ContentType,
		Data:        data,
		UploadedBy:  userID,
	})
	if err != nil {
		return httptransport.ArtifactResponse{}, err
	}
	return toArtifactResponse(artifact), nil
}

func (h Handler) GetArtifactHandler(ctx context.Context, artifactID string) (httptransport.ArtifactResponse, []byte, error) {
	download, err := h.Patients.GetArtifact(ctx, artifactID)
	if err != nil {
		return httptransport.ArtifactResponse{}, nil, err
	}
	return toArtifactResponse(download.Artifact), download.Data, nil
}

func (h Handler) ListArtifactsHandler(ctx context.Context, patientID string) (httptransport.ArtifactListResponse, error) {
	artifacts, err := h.Patients.ListArtifacts(ctx, patientID)
	if err != nil {
		return httptransport.ArtifactListResponse{}, err
	}
	items := make([]httptransport.ArtifactResponse, 0, len(artifacts))
	for _, artifact := range artifacts {
		items = append(items, toArtifactResponse(artifact))
	}
	return httptransport.ArtifactListResponse{Items: items}, nil
}

func toPatientResponse(patient entities.Patient, mrn string) httptransport.PatientResponse {
	return httptransport.PatientResponse{
		PatientID:      patient.PatientID,
		MRN:            mrn,
		GivenName:      patient.GivenName,
		FamilyName:     patient.FamilyName,
		BirthYear:      patient.BirthYear,
		Sex:            string(patient.Sex),
		ConsentGranted: patient.ConsentGranted,
		CreatedAt:      patient.CreatedAt,
	}
}

func toArtifactResponse(artifact entities.RecordArtifact) httptransport.ArtifactResponse {
	return httptransport.ArtifactResponse{
		ArtifactID:  artifact.ArtifactID,
		PatientID:   artifact.PatientID,
		Kind:        string(artifact.Kind),
		ContentType: artifact.ContentType,
		Size:        artifact.Size,
		UploadedBy:  artifact.UploadedBy,
		CreatedAt:   artifact.CreatedAt,
	}
}
