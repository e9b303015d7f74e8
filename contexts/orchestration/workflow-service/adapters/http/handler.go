package httpadapter

import (
	"context"
	"log/slog"

	"helix/contexts/orchestration/workflow-service/application/commands"
	"helix/contexts/orchestration/workflow-service/application/queries"
	"helix/contexts/orchestration/workflow-service/domain/entities"
	"helix/contexts/orchestration/workflow-service/ports"
	httptransport "helix/contexts/orchestration/workflow-service/transport/http"
)

type Handler struct {
	Submit   commands.SubmitWorkflowUseCase
	Cancel   commands.CancelWorkflowUseCase
	Retry    commands.RetryWorkflowUseCase
	Progress commands.ReportProgressUseCase
	Get      queries.GetWorkflowUseCase
	List     queries.ListWorkflowsUseCase
	Results  queries.GetResultsUseCase
	Logger   *slog.Logger
}

func (h Handler) SubmitWorkflowHandler(
	ctx context.Context,
	req httptransport.SubmitWorkflowRequest,
	createdBy string,
) (httptransport.SubmitWorkflowResponse, error) {
	result, err := h.Submit.Execute(ctx, commands.SubmitWorkflowCommand{
		IdempotencyKey: req.IdempotencyKey,
		WorkflowType:   entities.WorkflowType(req.WorkflowType),
		PatientID:      req.PatientID,
		PlanID:         req.PlanID,
		Priority:       req.Priority,
		Parameters:     req.Parameters,
		MaxAttempts:    req.MaxAttempts,
		CreatedBy:      createdBy,
	})
	if err != nil {
		return httptransport.SubmitWorkflowResponse{}, err
	}
	return httptransport.SubmitWorkflowResponse{
		Workflow: toWorkflowResponse(result.Workflow),
		Replayed: result.Replayed,
	}, nil
}

func (h Handler) GetWorkflowHandler(ctx context.Context, workflowID string) (httptransport.WorkflowResponse, error) {
	workflow, err := h.Get.Execute(ctx, workflowID)
	if err != nil {
		return httptransport.WorkflowResponse{}, err
	}
	return toWorkflowResponse(workflow), nil
}

func (h Handler) ListWorkflowsHandler(
	ctx context.Context,
	filter ports.WorkflowFilter,
	limit int,
) (httptransport.WorkflowListResponse, error) {
	workflows, err := h.List.Execute(ctx, filter, limit)
	if err != nil {
		return httptransport.WorkflowListResponse{}, err
	}
	items := make([]httptransport.WorkflowResponse, 0, len(workflows))
	for _, workflow := range workflows {
		items = append(items, toWorkflowResponse(workflow))
	}
	return httptransport.WorkflowListResponse{Items: items}, nil
}

func (h Handler) GetResultsHandler(ctx context.Context, workflowID string) (httptransport.WorkflowResultsResponse, error) {
	results, err := h.Results.Execute(ctx, workflowID)
	if err != nil {
		return httptransport.WorkflowResultsResponse{}, err
	}
	return httptransport.WorkflowResultsResponse{
		WorkflowID: workflowID,
		Results:    results,
	}, nil
}

func (h Handler) CancelWorkflowHandler(ctx context.Context, workflowID string) (httptransport.WorkflowResponse, error) {
	workflow, err := h.Cancel.Execute(ctx, workflowID)
	if err != nil {
		return httptransport.WorkflowResponse{}, err
	}
	return toWorkflowResponse(workflow), nil
}

func (h Handler) RetryWorkflowHandler(ctx context.Context, workflowID string) (httptransport.WorkflowResponse, error) {
	workflow, err := h.Retry.Execute(ctx, workflowID)
	if err != nil {
		return httptransport.WorkflowResponse{}, err
	}
	return toWorkflowResponse(workflow), nil
}

func (h Handler) ReportProgressHandler(
	ctx context.Context,
	workflowID string,
	req httptransport.ReportProgressRequest,
) (httptransport.WorkflowResponse, error) {
	workflow, err := h.Progress.Execute(ctx, workflowID, req.Progress)
	if err != nil {
		return httptransport.WorkflowResponse{}, err
	}
	return toWorkflowResponse(workflow), nil
}

func toWorkflowResponse(workflow entities.Workflow) httptransport.WorkflowResponse {
	return httptransport.WorkflowResponse{
		WorkflowID:   workflow.WorkflowID,
		WorkflowType: string(workflow.WorkflowType),
		PatientID:    workflow.PatientID,
		PlanID:       workflow.PlanID,
		Status:       string(workflow.Status),
		Priority:     workflow.Priority,
		Progress:     workflow.Progress,
		Parameters:   workflow.Parameters,
		ErrorMessage: workflow.ErrorMessage,
		Attempts:     workflow.Attempts,
		MaxAttempts:  workflow.MaxAttempts,
		CreatedBy:    workflow.CreatedBy,
		CreatedAt:    workflow.CreatedAt,
		UpdatedAt:    workflow.UpdatedAt,
		StartedAt:    workflow.StartedAt,
		CompletedAt:  workflow.CompletedAt,
	}
}
