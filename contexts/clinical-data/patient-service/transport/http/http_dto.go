package http

import "time"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CreatePatientRequest struct {
	MRN            string `json:"mrn"`
	GivenName      string `json:"given_name"`
	FamilyName     string `json:"family_name"`
	BirthYear      int    `json:"birth_year"`
	Sex            string `json:"sex,omitempty"`
	ConsentGranted bool   `json:"consent_granted"`
}

type UpdateConsentRequest struct {
	ConsentGranted bool `json:"consent_granted"`
}

type PatientResponse struct {
	PatientID      string    `json:"patient_id"`
	MRN            string    `json:"mrn,omitempty"`
	GivenName      string    `json:"given_name"`
	FamilyName     string    `json:"family_name"`
	BirthYear      int       `json:"birth_year"`
	Sex            string    `json:"sex"`
	ConsentGranted bool      `json:"consent_granted"`
	CreatedAt      time.Time `json:"created_at"`
}

type PatientListResponse struct {
	Items []PatientResponse `json:"items"`
}

type AttachArtifactRequest struct {
	Kind        string `json:"kind"`
	ContentType string `json:"content_type"`
	// DataBase64 carries the blob body; the HTTP layer decodes before the
	// handler is invoked.
	DataBase64 string `json:"data_base64"`
}

type ArtifactResponse struct {
	ArtifactID  string    `json:"artifact_id"`
	PatientID   string    `json:"patient_id"`
	Kind        string    `json:"kind"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	UploadedBy  string    `json:"uploaded_by"`
	CreatedAt   time.Time `json:"created_at"`
}

type ArtifactListResponse struct {
	Items []ArtifactResponse `json:"items"`
}
