package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"helix/contexts/orchestration/workflow-service/adapters/memory"
	"helix/contexts/orchestration/workflow-service/domain/entities"
	domainerrors "helix/contexts/orchestration/workflow-service/domain/errors"
	"helix/contexts/orchestration/workflow-service/ports"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

var testNow = time.Date(2026, time.June, 3, 9, 0, 0, 0, time.UTC)

func newSubmit(store *memory.Store) SubmitWorkflowUseCase {
	return SubmitWorkflowUseCase{
		Workflows:   store,
		Idempotency: store,
		Outbox:      store,
		Clock:       fixedClock{now: testNow},
		IDGenerator: memory.UUIDGenerator{},
	}
}

func submitCommand() SubmitWorkflowCommand {
	return SubmitWorkflowCommand{
		IdempotencyKey: "key-1",
		WorkflowType:   entities.TypeGRNInference,
		PatientID:      "patient-1",
		Priority:       5,
		Parameters:     map[string]any{"organism": "human"},
		CreatedBy:      "clinician-1",
	}
}

func TestSubmitCreatesPendingWorkflow(t *testing.T) {
	store := memory.NewStore()
	submit := newSubmit(store)

	result, err := submit.Execute(context.Background(), submitCommand())
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if result.Replayed {
		t.Fatal("first submit must not be a replay")
	}
	workflow := result.Workflow
	if workflow.Status != entities.StatusPending {
		t.Fatalf("expected pending status, got %s", workflow.Status)
	}
	if workflow.MaxAttempts != defaultMaxAttempts {
		t.Fatalf("expected default max attempts %d, got %d", defaultMaxAttempts, workflow.MaxAttempts)
	}
	if !workflow.NextRunAt.Equal(testNow) {
		t.Fatalf("expected next run at submission time, got %s", workflow.NextRunAt)
	}

	pending, err := store.ListPendingOutbox(context.Background(), 0)
	if err != nil {
		t.Fatalf("list outbox failed: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected 1 outbox event, got %d", len(pending))
	}
	if pending[0].EventType != statusChangedEventType {
		t.Fatalf("unexpected event type %s", pending[0].EventType)
	}
}

func TestSubmitReplaysSameRequest(t *testing.T) {
	store := memory.NewStore()
	submit := newSubmit(store)

	first, err := submit.Execute(context.Background(), submitCommand())
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	second, err := submit.Execute(context.Background(), submitCommand())
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	if !second.Replayed {
		t.Fatal("expected replayed result")
	}
	if second.Workflow.WorkflowID != first.Workflow.WorkflowID {
		t.Fatalf("replay returned a different workflow: %s vs %s",
			second.Workflow.WorkflowID, first.Workflow.WorkflowID)
	}

	listed, err := store.ListWorkflows(context.Background(), ports.WorkflowFilter{}, 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("replay must not create a second workflow, found %d", len(listed))
	}
}

func TestSubmitRejectsReusedKeyWithDifferentRequest(t *testing.T) {
	store := memory.NewStore()
	submit := newSubmit(store)

	if _, err := submit.Execute(context.Background(), submitCommand()); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	altered := submitCommand()
	altered.Priority = 9
	if _, err := submit.Execute(context.Background(), altered); !errors.Is(err, domainerrors.ErrIdempotencyConflict) {
		t.Fatalf("expected ErrIdempotencyConflict, got %v", err)
	}
}

func TestSubmitValidation(t *testing.T) {
	store := memory.NewStore()
	submit := newSubmit(store)

	cases := []struct {
		name   string
		mutate func(*SubmitWorkflowCommand)
		want   error
	}{
		{"missing idempotency key", func(c *SubmitWorkflowCommand) { c.IdempotencyKey = " " }, domainerrors.ErrIdempotencyKeyRequired},
		{"unknown workflow type", func(c *SubmitWorkflowCommand) { c.WorkflowType = "drug_discovery" }, domainerrors.ErrUnknownWorkflowType},
		{"missing patient", func(c *SubmitWorkflowCommand) { c.PatientID = "" }, domainerrors.ErrInvalidWorkflowInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cmd := submitCommand()
			tc.mutate(&cmd)
			if _, err := submit.Execute(context.Background(), cmd); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestCancelPendingWorkflow(t *testing.T) {
	store := memory.NewStore()
	submit := newSubmit(store)
	cancel := CancelWorkflowUseCase{
		Workflows:   store,
		Outbox:      store,
		Clock:       fixedClock{now: testNow},
		IDGenerator: memory.UUIDGenerator{},
	}

	created, err := submit.Execute(context.Background(), submitCommand())
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	cancelled, err := cancel.Execute(context.Background(), created.Workflow.WorkflowID)
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if cancelled.Status != entities.StatusCancelled {
		t.Fatalf("expected cancelled status, got %s", cancelled.Status)
	}
	if cancelled.CompletedAt == nil {
		t.Fatal("expected completed_at to be set")
	}
}

func TestCancelCompletedWorkflowFails(t *testing.T) {
	store := memory.NewStore()
	cancel := CancelWorkflowUseCase{
		Workflows:   store,
		Outbox:      store,
		Clock:       fixedClock{now: testNow},
		IDGenerator: memory.UUIDGenerator{},
	}

	seedWorkflow(t, store, "wf-1", entities.StatusCompleted)
	if _, err := cancel.Execute(context.Background(), "wf-1"); !errors.Is(err, domainerrors.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestRetryFailedWorkflowResetsAttempts(t *testing.T) {
	store := memory.NewStore()
	retry := RetryWorkflowUseCase{
		Workflows:   store,
		Outbox:      store,
		Clock:       fixedClock{now: testNow},
		IDGenerator: memory.UUIDGenerator{},
	}

	failed := seedWorkflow(t, store, "wf-1", entities.StatusFailed)
	failed.Attempts = 3
	failed.Progress = 0.4
	failed.ErrorMessage = "upstream unavailable"
	if err := store.UpdateWorkflow(context.Background(), failed); err != nil {
		t.Fatalf("seed update failed: %v", err)
	}

	requeued, err := retry.Execute(context.Background(), "wf-1")
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if requeued.Status != entities.StatusPending {
		t.Fatalf("expected pending status, got %s", requeued.Status)
	}
	if requeued.Attempts != 0 {
		t.Fatalf("expected attempts reset to 0, got %d", requeued.Attempts)
	}
	if requeued.Progress != 0 {
		t.Fatalf("expected progress reset, got %.2f", requeued.Progress)
	}
	if requeued.ErrorMessage != "" {
		t.Fatalf("expected error message cleared, got %q", requeued.ErrorMessage)
	}
	if !requeued.NextRunAt.Equal(testNow) {
		t.Fatalf("expected immediate requeue, got %s", requeued.NextRunAt)
	}
}

func TestRetryNonFailedWorkflowIsRejected(t *testing.T) {
	store := memory.NewStore()
	retry := RetryWorkflowUseCase{
		Workflows:   store,
		Outbox:      store,
		Clock:       fixedClock{now: testNow},
		IDGenerator: memory.UUIDGenerator{},
	}

	seedWorkflow(t, store, "wf-1", entities.StatusRunning)
	if _, err := retry.Execute(context.Background(), "wf-1"); !errors.Is(err, domainerrors.ErrWorkflowNotRetryable) {
		t.Fatalf("expected ErrWorkflowNotRetryable, got %v", err)
	}
}

func TestReportProgressClampsAndPersists(t *testing.T) {
	store := memory.NewStore()
	report := ReportProgressUseCase{
		Workflows: store,
		Clock:     fixedClock{now: testNow},
	}

	seedWorkflow(t, store, "wf-1", entities.StatusRunning)
	updated, err := report.Execute(context.Background(), "wf-1", 1.7)
	if err != nil {
		t.Fatalf("report failed: %v", err)
	}
	if updated.Progress != 1 {
		t.Fatalf("expected progress clamped to 1, got %.2f", updated.Progress)
	}
}

func TestReportProgressOnCancelledWorkflow(t *testing.T) {
	store := memory.NewStore()
	report := ReportProgressUseCase{
		Workflows: store,
		Clock:     fixedClock{now: testNow},
	}

	seedWorkflow(t, store, "wf-1", entities.StatusCancelled)
	if _, err := report.Execute(context.Background(), "wf-1", 0.5); !errors.Is(err, domainerrors.ErrWorkflowCancelled) {
		t.Fatalf("expected ErrWorkflowCancelled, got %v", err)
	}
}

func seedWorkflow(t *testing.T, store *memory.Store, workflowID string, status entities.Status) entities.Workflow {
	t.Helper()
	workflow := entities.Workflow{
		WorkflowID:   workflowID,
		WorkflowType: entities.TypeGRNInference,
		PatientID:    "patient-1",
		Status:       status,
		MaxAttempts:  3,
		NextRunAt:    testNow,
		CreatedAt:    testNow,
		UpdatedAt:    testNow,
	}
	if err := store.CreateWorkflow(context.Background(), workflow); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	return workflow
}
