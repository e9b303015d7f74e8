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

type ReportProgressUseCase struct {
	Workflows ports.WorkflowRepository
	Clock     ports.Clock
	Logger    *slog.Logger
}

// Execute persists an executor's progress fraction. Only running workflows
// accept progress; a cancelled workflow surfaces ErrWorkflowCancelled so
// cooperative executors can stop.
func (uc ReportProgressUseCase) Execute(ctx context.Context, workflowID string, fraction float64) (entities.Workflow, error) {
	logger := application.ResolveLogger(uc.Logger)
	workflow, err := uc.Workflows.GetWorkflow(ctx, strings.TrimSpace(workflowID))
	if err != nil {
		return entities.Workflow{}, err
	}
	if workflow.Status == entities.StatusCancelled {
		return entities.Workflow{}, domainerrors.ErrWorkflowCancelled
	}
	if workflow.Status != entities.StatusRunning {
		return entities.Workflow{}, domainerrors.ErrWorkflowNotRunning
	}
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}

	workflow.Progress = fraction
	workflow.UpdatedAt = uc.Clock.Now().UTC()
	if err := uc.Workflows.UpdateWorkflow(ctx, workflow); err != nil {
		return entities.Workflow{}, err
	}

	logger.Debug("workflow progress reported",
		"event", "workflow_progress_reported",
		"module", "orchestration/workflow-service",
		"layer", "application",
		"workflow_id", workflow.WorkflowID,
		"progress", fraction,
	)
	return workflow, nil
}
