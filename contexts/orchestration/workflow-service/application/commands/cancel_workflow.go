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

type CancelWorkflowUseCase struct {
	Workflows   ports.WorkflowRepository
	Outbox      ports.OutboxWriter
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

// Execute cancels a pending or running workflow. Pending rows stop
// immediately; running rows are observed by the scheduler, which discards the
// executor result once it sees the cancelled status.
func (uc CancelWorkflowUseCase) Execute(ctx context.Context, workflowID string) (entities.Workflow, error) {
	logger := application.ResolveLogger(uc.Logger)
	workflow, err := uc.Workflows.GetWorkflow(ctx, strings.TrimSpace(workflowID))
	if err != nil {
		return entities.Workflow{}, err
	}
	if !entities.CanTransition(workflow.Status, entities.StatusCancelled) {
		return entities.Workflow{}, domainerrors.ErrInvalidTransition
	}

	now := uc.Clock.Now().UTC()
	previous := workflow.Status
	workflow.Status = entities.StatusCancelled
	workflow.UpdatedAt = now
	workflow.CompletedAt = &now
	workflow.LeaseOwner = ""
	workflow.LeaseExpiresAt = nil
	if err := uc.Workflows.UpdateWorkflow(ctx, workflow); err != nil {
		return entities.Workflow{}, err
	}
	if err := AppendStatusChanged(ctx, uc.Outbox, uc.IDGenerator, workflow, previous, now); err != nil {
		return entities.Workflow{}, err
	}

	logger.Info("workflow cancelled",
		"event", "workflow_cancelled",
		"module", "orchestration/workflow-service",
		"layer", "application",
		"workflow_id", workflow.WorkflowID,
		"previous_status", string(previous),
	)
	return workflow, nil
}
