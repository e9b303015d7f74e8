package commands

import (
	"context"
	"log/slog"
	"strings"

	"helix/contexts/orchestration/workflow-service/application"
	"helix/contexts/orchestration/workflow-service/domain/entities"
	domainerrors "helix/contexts/orchestration/workflow-service/domain/errors"
	"helix/contexts/orchestration/workflow-service/ports"
)

type RetryWorkflowUseCase struct {
	Workflows   ports.WorkflowRepository
	Outbox      ports.OutboxWriter
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

// Execute requeues a failed workflow with a fresh attempt budget. Only failed
// workflows are retryable; the attempt counter resets so the operator gets a
// full set of retries.
func (uc RetryWorkflowUseCase) Execute(ctx context.Context, workflowID string) (entities.Workflow, error) {
	logger := application.ResolveLogger(uc.Logger)
	workflow, err := uc.Workflows.GetWorkflow(ctx, strings.TrimSpace(workflowID))
	if err != nil {
		return entities.Workflow{}, err
	}
	if workflow.Status != entities.StatusFailed {
		return entities.Workflow{}, domainerrors.ErrWorkflowNotRetryable
	}

	now := uc.Clock.Now().UTC()
	previous := workflow.Status
	workflow.Status = entities.StatusPending
	workflow.Attempts = 0
	workflow.Progress = 0
	workflow.ErrorMessage = ""
	workflow.NextRunAt = now
	workflow.UpdatedAt = now
	workflow.StartedAt = nil
	workflow.CompletedAt = nil
	if err := uc.Workflows.UpdateWorkflow(ctx, workflow); err != nil {
		return entities.Workflow{}, err
	}
	if err := AppendStatusChanged(ctx, uc.Outbox, uc.IDGenerator, workflow, previous, now); err != nil {
		return entities.Workflow{}, err
	}

	logger.Info("workflow requeued",
		"event", "workflow_requeued",
		"module", "orchestration/workflow-service",
		"layer", "application",
		"workflow_id", workflow.WorkflowID,
	)
	return workflow, nil
}
