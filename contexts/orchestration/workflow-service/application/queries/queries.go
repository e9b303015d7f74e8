package queries

import (
	"context"
	"log/slog"
	"strings"

	"helix/contexts/orchestration/workflow-service/domain/entities"
	domainerrors "helix/contexts/orchestration/workflow-service/domain/errors"
	"helix/contexts/orchestration/workflow-service/ports"
)

type GetWorkflowUseCase struct {
	Workflows ports.WorkflowRepository
	Logger    *slog.Logger
}

func (uc GetWorkflowUseCase) Execute(ctx context.Context, workflowID string) (entities.Workflow, error) {
	return uc.Workflows.GetWorkflow(ctx, strings.TrimSpace(workflowID))
}

type ListWorkflowsUseCase struct {
	Workflows ports.WorkflowRepository
	Logger    *slog.Logger
}

func (uc ListWorkflowsUseCase) Execute(ctx context.Context, filter ports.WorkflowFilter, limit int) ([]entities.Workflow, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	filter.PatientID = strings.TrimSpace(filter.PatientID)
	return uc.Workflows.ListWorkflows(ctx, filter, limit)
}

type GetResultsUseCase struct {
	Workflows ports.WorkflowRepository
	Logger    *slog.Logger
}

// Execute returns the results map of a completed workflow. Any other status,
// including failed, reports that results are not ready.
func (uc GetResultsUseCase) Execute(ctx context.Context, workflowID string) (map[string]any, error) {
	workflow, err := uc.Workflows.GetWorkflow(ctx, strings.TrimSpace(workflowID))
	if err != nil {
		return nil, err
	}
	if workflow.Status != entities.StatusCompleted {
		return nil, domainerrors.ErrResultsNotReady
	}
	return workflow.Results, nil
}
