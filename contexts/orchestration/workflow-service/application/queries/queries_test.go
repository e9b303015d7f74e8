package queries

import (
	"context"
	"errors"
	"testing"
	"time"

	"helix/contexts/orchestration/workflow-service/adapters/memory"
	"helix/contexts/orchestration/workflow-service/domain/entities"
	domainerrors "helix/contexts/orchestration/workflow-service/domain/errors"
)

func seedWorkflow(t *testing.T, store *memory.Store, workflowID string, status entities.Status, results map[string]any) {
	t.Helper()
	now := time.Date(2026, time.June, 3, 9, 0, 0, 0, time.UTC)
	if err := store.CreateWorkflow(context.Background(), entities.Workflow{
		WorkflowID:   workflowID,
		PatientID:    "patient-1",
		WorkflowType: entities.TypeGRNInference,
		Status:       status,
		Results:      results,
		MaxAttempts:  3,
		CreatedAt:    now,
		UpdatedAt:    now,
	}); err != nil {
		t.Fatalf("seed workflow failed: %v", err)
	}
}

func TestGetResultsForCompletedWorkflow(t *testing.T) {
	store := memory.NewStore()
	seedWorkflow(t, store, "wf-1", entities.StatusCompleted, map[string]any{"score": 0.91})

	uc := GetResultsUseCase{Workflows: store}
	results, err := uc.Execute(context.Background(), "wf-1")
	if err != nil {
		t.Fatalf("results failed: %v", err)
	}
	if results["score"] != 0.91 {
		t.Fatalf("expected completed results, got %v", results)
	}
}

func TestGetResultsNotReadyBeforeCompletion(t *testing.T) {
	store := memory.NewStore()
	seedWorkflow(t, store, "wf-pending", entities.StatusPending, nil)
	seedWorkflow(t, store, "wf-running", entities.StatusRunning, nil)
	seedWorkflow(t, store, "wf-failed", entities.StatusFailed, nil)

	uc := GetResultsUseCase{Workflows: store}
	for _, workflowID := range []string{"wf-pending", "wf-running", "wf-failed"} {
		if _, err := uc.Execute(context.Background(), workflowID); !errors.Is(err, domainerrors.ErrResultsNotReady) {
			t.Fatalf("%s: expected ErrResultsNotReady, got %v", workflowID, err)
		}
	}
}

func TestGetResultsUnknownWorkflow(t *testing.T) {
	store := memory.NewStore()

	uc := GetResultsUseCase{Workflows: store}
	if _, err := uc.Execute(context.Background(), "wf-missing"); !errors.Is(err, domainerrors.ErrWorkflowNotFound) {
		t.Fatalf("expected ErrWorkflowNotFound, got %v", err)
	}
}
