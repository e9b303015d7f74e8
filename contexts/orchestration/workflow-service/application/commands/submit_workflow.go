package commands

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"helix/contexts/orchestration/workflow-service/application"
	"helix/contexts/orchestration/workflow-service/domain/entities"
	domainerrors "helix/contexts/orchestration/workflow-service/domain/errors"
	"helix/contexts/orchestration/workflow-service/ports"
)

const (
	defaultMaxAttempts    = 3
	defaultIdempotencyTTL = 24 * time.Hour
)

type SubmitWorkflowCommand struct {
	IdempotencyKey string
	WorkflowType   entities.WorkflowType
	PatientID      string
	PlanID         string
	Priority       int
	Parameters     map[string]any
	MaxAttempts    int
	CreatedBy      string
}

type SubmitWorkflowResult struct {
	Workflow entities.Workflow
	Replayed bool
}

type SubmitWorkflowUseCase struct {
	Workflows      ports.WorkflowRepository
	Idempotency    ports.IdempotencyStore
	Outbox         ports.OutboxWriter
	Clock          ports.Clock
	IDGenerator    ports.IDGenerator
	IdempotencyTTL time.Duration
	// DefaultMaxAttempts applies when a command does not set MaxAttempts.
	// Zero falls back to the package default.
	DefaultMaxAttempts int
	Logger             *slog.Logger
}

type submitReplayPayload struct {
	WorkflowID   string         `json:"workflow_id"`
	WorkflowType string         `json:"workflow_type"`
	PatientID    string         `json:"patient_id"`
	PlanID       string         `json:"plan_id"`
	Status       string         `json:"status"`
	Priority     int            `json:"priority"`
	Parameters   map[string]any `json:"parameters"`
	MaxAttempts  int            `json:"max_attempts"`
	CreatedBy    string         `json:"created_by"`
	CreatedAt    time.Time      `json:"created_at"`
}

func (uc SubmitWorkflowUseCase) Execute(ctx context.Context, cmd SubmitWorkflowCommand) (SubmitWorkflowResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	if strings.TrimSpace(cmd.IdempotencyKey) == "" {
		return SubmitWorkflowResult{}, domainerrors.ErrIdempotencyKeyRequired
	}
	if !cmd.WorkflowType.Valid() {
		return SubmitWorkflowResult{}, domainerrors.ErrUnknownWorkflowType
	}
	if strings.TrimSpace(cmd.PatientID) == "" {
		return SubmitWorkflowResult{}, domainerrors.ErrInvalidWorkflowInput
	}

	now := uc.Clock.Now().UTC()
	requestHash := hashSubmitCommand(cmd)
	if record, found, err := uc.Idempotency.GetRecord(ctx, cmd.IdempotencyKey, now); err != nil {
		return SubmitWorkflowResult{}, err
	} else if found {
		if record.RequestHash != requestHash {
			return SubmitWorkflowResult{}, domainerrors.ErrIdempotencyConflict
		}
		var payload submitReplayPayload
		if err := json.Unmarshal(record.ResponsePayload, &payload); err != nil {
			return SubmitWorkflowResult{}, err
		}
		return SubmitWorkflowResult{
			Workflow: entities.Workflow{
				WorkflowID:   payload.WorkflowID,
				WorkflowType: entities.WorkflowType(payload.WorkflowType),
				PatientID:    payload.PatientID,
				PlanID:       payload.PlanID,
				Status:       entities.Status(payload.Status),
				Priority:     payload.Priority,
				Parameters:   payload.Parameters,
				MaxAttempts:  payload.MaxAttempts,
				CreatedBy:    payload.CreatedBy,
				CreatedAt:    payload.CreatedAt,
				UpdatedAt:    payload.CreatedAt,
				NextRunAt:    payload.CreatedAt,
			},
			Replayed: true,
		}, nil
	}

	workflowID, err := uc.IDGenerator.NewID(ctx)
	if err != nil {
		return SubmitWorkflowResult{}, err
	}

	maxAttempts := cmd.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = uc.DefaultMaxAttempts
	}
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	workflow := entities.Workflow{
		WorkflowID:   workflowID,
		WorkflowType: cmd.WorkflowType,
		PatientID:    strings.TrimSpace(cmd.PatientID),
		PlanID:       strings.TrimSpace(cmd.PlanID),
		Status:       entities.StatusPending,
		Priority:     cmd.Priority,
		Parameters:   cmd.Parameters,
		MaxAttempts:  maxAttempts,
		NextRunAt:    now,
		CreatedBy:    strings.TrimSpace(cmd.CreatedBy),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.Workflows.CreateWorkflow(ctx, workflow); err != nil {
		return SubmitWorkflowResult{}, err
	}

	payload := submitReplayPayload{
		WorkflowID:   workflow.WorkflowID,
		WorkflowType: string(workflow.WorkflowType),
		PatientID:    workflow.PatientID,
		PlanID:       workflow.PlanID,
		Status:       string(workflow.Status),
		Priority:     workflow.Priority,
		Parameters:   workflow.Parameters,
		MaxAttempts:  workflow.MaxAttempts,
		CreatedBy:    workflow.CreatedBy,
		CreatedAt:    workflow.CreatedAt,
	}
	serialized, err := json.Marshal(payload)
	if err != nil {
		return SubmitWorkflowResult{}, err
	}
	ttl := uc.IdempotencyTTL
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	if err := uc.Idempotency.PutRecord(ctx, ports.IdempotencyRecord{
		Key:             cmd.IdempotencyKey,
		RequestHash:     requestHash,
		ResponsePayload: serialized,
		ExpiresAt:       now.Add(ttl),
	}); err != nil {
		return SubmitWorkflowResult{}, err
	}
	if err := AppendStatusChanged(ctx, uc.Outbox, uc.IDGenerator, workflow, "", now); err != nil {
		return SubmitWorkflowResult{}, err
	}

	logger.Info("workflow submitted",
		"event", "workflow_submitted",
		"module", "orchestration/workflow-service",
		"layer", "application",
		"workflow_id", workflow.WorkflowID,
		"workflow_type", string(workflow.WorkflowType),
		"patient_id", workflow.PatientID,
		"priority", workflow.Priority,
	)
	return SubmitWorkflowResult{Workflow: workflow}, nil
}

func hashSubmitCommand(cmd SubmitWorkflowCommand) string {
	payload := map[string]any{
		"workflow_type": string(cmd.WorkflowType),
		"patient_id":    strings.TrimSpace(cmd.PatientID),
		"plan_id":       strings.TrimSpace(cmd.PlanID),
		"priority":      cmd.Priority,
		"parameters":    cmd.Parameters,
		"max_attempts":  cmd.MaxAttempts,
	}
	raw, _ := json.Marshal(payload)
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
