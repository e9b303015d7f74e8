package http

import "time"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type EdgeRequest struct {
	Regulator string `json:"regulator"`
	Target    string `json:"target"`
	Sign      string `json:"sign"`
}

type CreateModelRequest struct {
	Name     string        `json:"name"`
	Organism string        `json:"organism,omitempty"`
	Genes    []string      `json:"genes"`
	Edges    []EdgeRequest `json:"edges"`
}

type ModelResponse struct {
	ModelID   string        `json:"model_id"`
	Name      string        `json:"name"`
	Organism  string        `json:"organism,omitempty"`
	Genes     []string      `json:"genes"`
	Edges     []EdgeRequest `json:"edges"`
	Status    string        `json:"status"`
	CreatedBy string        `json:"created_by"`
	CreatedAt time.Time     `json:"created_at"`
}

type ModelListResponse struct {
	Items []ModelResponse `json:"items"`
}

type VerifyModelRequest struct {
	Properties []string `json:"properties"`
}

type PropertyResultResponse struct {
	Property string `json:"property"`
	Holds    bool   `json:"holds"`
	Witness  string `json:"witness,omitempty"`
}

type VerificationReportResponse struct {
	ModelID    string                   `json:"model_id"`
	Properties []PropertyResultResponse `json:"properties"`
	AllHold    bool                     `json:"all_hold"`
	CheckedAt  time.Time                `json:"checked_at"`
}
