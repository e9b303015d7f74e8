package workers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"

	"helix/contexts/orchestration/workflow-service/adapters/executors"
	"helix/contexts/orchestration/workflow-service/adapters/memory"
	"helix/contexts/orchestration/workflow-service/application/commands"
	"helix/contexts/orchestration/workflow-service/domain/entities"
	"helix/contexts/orchestration/workflow-service/ports"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

var testNow = time.Date(2026, time.June, 3, 9, 0, 0, 0, time.UTC)

type funcExecutor func(ctx context.Context, workflow entities.Workflow, report ports.ProgressFunc) (map[string]any, error)

func (f funcExecutor) Execute(ctx context.Context, workflow entities.Workflow, report ports.ProgressFunc) (map[string]any, error) {
	return f(ctx, workflow, report)
}

func newScheduler(store *memory.Store, registry ports.ExecutorRegistry) Scheduler {
	return Scheduler{
		Workflows: store,
		Registry:  registry,
		Outbox:    store,
		Clock:     fixedClock{now: testNow},
		IDGen:     memory.UUIDGenerator{},
		Owner:     "worker-test",
		Retry:     RetryPolicy{InitialInterval: time.Second, Multiplier: 2},
	}
}

func seedPending(t *testing.T, store *memory.Store, workflowID string, attempts int) entities.Workflow {
	t.Helper()
	workflow := entities.Workflow{
		WorkflowID:   workflowID,
		WorkflowType: entities.TypeGRNInference,
		PatientID:    "patient-1",
		Status:       entities.StatusPending,
		Attempts:     attempts,
		MaxAttempts:  3,
		NextRunAt:    testNow.Add(-time.Minute),
		CreatedAt:    testNow.Add(-time.Hour),
		UpdatedAt:    testNow.Add(-time.Hour),
	}
	if err := store.CreateWorkflow(context.Background(), workflow); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	return workflow
}

func TestRetryPolicyDelaysGrowExponentially(t *testing.T) {
	policy := RetryPolicy{InitialInterval: time.Second, Multiplier: 2}

	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{1, time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
	}
	for _, tc := range cases {
		if got := policy.Delay(tc.attempt); got != tc.want {
			t.Errorf("Delay(%d) = %s, want %s", tc.attempt, got, tc.want)
		}
	}
}

func TestRetryPolicyRespectsMaxInterval(t *testing.T) {
	policy := RetryPolicy{InitialInterval: time.Second, MaxInterval: 3 * time.Second, Multiplier: 2}
	if got := policy.Delay(4); got != 3*time.Second {
		t.Fatalf("Delay(4) = %s, want capped 3s", got)
	}
}

func TestSchedulerRunsNothingWhenQueueEmpty(t *testing.T) {
	store := memory.NewStore()
	scheduler := newScheduler(store, executors.Registry{})

	ran, err := scheduler.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if ran {
		t.Fatal("expected no workflow to run on an empty queue")
	}
}

func TestSchedulerCompletesWorkflow(t *testing.T) {
	store := memory.NewStore()
	registry := executors.Registry{
		entities.TypeGRNInference: executors.StubExecutor{Result: map[string]any{"edges": 42}},
	}
	scheduler := newScheduler(store, registry)
	seedPending(t, store, "wf-1", 0)

	ran, err := scheduler.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !ran {
		t.Fatal("expected the due workflow to run")
	}

	workflow, err := store.GetWorkflow(context.Background(), "wf-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if workflow.Status != entities.StatusCompleted {
		t.Fatalf("expected completed status, got %s", workflow.Status)
	}
	if workflow.Progress != 1 {
		t.Fatalf("expected progress 1, got %.2f", workflow.Progress)
	}
	if workflow.Attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", workflow.Attempts)
	}
	if workflow.Results["edges"] != 42 {
		t.Fatalf("expected executor results to be stored, got %v", workflow.Results)
	}
	if workflow.LeaseOwner != "" || workflow.LeaseExpiresAt != nil {
		t.Fatal("expected lease cleared on completion")
	}

	pending, err := store.ListPendingOutbox(context.Background(), 0)
	if err != nil {
		t.Fatalf("list outbox failed: %v", err)
	}
	// pending->running and running->completed.
	if len(pending) != 2 {
		t.Fatalf("expected 2 status events, got %d", len(pending))
	}
}

func TestSchedulerReschedulesTransientFailure(t *testing.T) {
	store := memory.NewStore()
	registry := executors.Registry{
		entities.TypeGRNInference: funcExecutor(func(context.Context, entities.Workflow, ports.ProgressFunc) (map[string]any, error) {
			return nil, errors.New("inference backend unavailable")
		}),
	}
	scheduler := newScheduler(store, registry)
	seedPending(t, store, "wf-1", 0)

	if _, err := scheduler.RunOnce(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	workflow, err := store.GetWorkflow(context.Background(), "wf-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if workflow.Status != entities.StatusPending {
		t.Fatalf("expected pending status after transient failure, got %s", workflow.Status)
	}
	if workflow.Attempts != 1 {
		t.Fatalf("expected 1 attempt consumed, got %d", workflow.Attempts)
	}
	wantNext := testNow.Add(time.Second)
	if !workflow.NextRunAt.Equal(wantNext) {
		t.Fatalf("expected next run at %s, got %s", wantNext, workflow.NextRunAt)
	}
	if workflow.ErrorMessage == "" {
		t.Fatal("expected error message recorded")
	}
}

func TestSchedulerFailsWhenAttemptsExhausted(t *testing.T) {
	store := memory.NewStore()
	registry := executors.Registry{
		entities.TypeGRNInference: funcExecutor(func(context.Context, entities.Workflow, ports.ProgressFunc) (map[string]any, error) {
			return nil, errors.New("inference backend unavailable")
		}),
	}
	scheduler := newScheduler(store, registry)
	seedPending(t, store, "wf-1", 2)

	if _, err := scheduler.RunOnce(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	workflow, err := store.GetWorkflow(context.Background(), "wf-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if workflow.Status != entities.StatusFailed {
		t.Fatalf("expected failed status after exhausting attempts, got %s", workflow.Status)
	}
	if workflow.CompletedAt == nil {
		t.Fatal("expected completed_at set on terminal failure")
	}
}

func TestSchedulerFailsImmediatelyOnPermanentError(t *testing.T) {
	store := memory.NewStore()
	registry := executors.Registry{
		entities.TypeGRNInference: funcExecutor(func(context.Context, entities.Workflow, ports.ProgressFunc) (map[string]any, error) {
			return nil, backoff.Permanent(errors.New("malformed expression matrix"))
		}),
	}
	scheduler := newScheduler(store, registry)
	seedPending(t, store, "wf-1", 0)

	if _, err := scheduler.RunOnce(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	workflow, err := store.GetWorkflow(context.Background(), "wf-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if workflow.Status != entities.StatusFailed {
		t.Fatalf("expected failed status, got %s", workflow.Status)
	}
	if workflow.Attempts != workflow.MaxAttempts {
		t.Fatalf("permanent failure must exhaust attempts, got %d of %d",
			workflow.Attempts, workflow.MaxAttempts)
	}
}

func TestSchedulerFailsWorkflowWithoutExecutor(t *testing.T) {
	store := memory.NewStore()
	scheduler := newScheduler(store, executors.Registry{})
	seedPending(t, store, "wf-1", 0)

	if _, err := scheduler.RunOnce(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	workflow, err := store.GetWorkflow(context.Background(), "wf-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if workflow.Status != entities.StatusFailed {
		t.Fatalf("expected failed status, got %s", workflow.Status)
	}
}

func TestSchedulerDiscardsResultOfCancelledWorkflow(t *testing.T) {
	store := memory.NewStore()
	cancel := commands.CancelWorkflowUseCase{
		Workflows:   store,
		Outbox:      store,
		Clock:       fixedClock{now: testNow},
		IDGenerator: memory.UUIDGenerator{},
	}
	registry := executors.Registry{
		entities.TypeGRNInference: funcExecutor(func(ctx context.Context, workflow entities.Workflow, _ ports.ProgressFunc) (map[string]any, error) {
			// A cancel lands while the executor is still working.
			if _, err := cancel.Execute(ctx, workflow.WorkflowID); err != nil {
				return nil, backoff.Permanent(err)
			}
			return map[string]any{"edges": 42}, nil
		}),
	}
	scheduler := newScheduler(store, registry)
	seedPending(t, store, "wf-1", 0)

	if _, err := scheduler.RunOnce(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	workflow, err := store.GetWorkflow(context.Background(), "wf-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if workflow.Status != entities.StatusCancelled {
		t.Fatalf("cancel must win over the executor result, got %s", workflow.Status)
	}
	if len(workflow.Results) != 0 {
		t.Fatalf("expected results discarded, got %v", workflow.Results)
	}
}

func TestSchedulerDiscardsResultAfterLeaseLoss(t *testing.T) {
	store := memory.NewStore()
	reaper := LeaseReaper{
		Workflows: store,
		Outbox:    store,
		Clock:     fixedClock{now: testNow},
		IDGen:     memory.UUIDGenerator{},
	}
	registry := executors.Registry{
		entities.TypeGRNInference: funcExecutor(func(ctx context.Context, workflow entities.Workflow, _ ports.ProgressFunc) (map[string]any, error) {
			// The lease expires mid-run: the reaper requeues the row and a
			// rival worker claims it before this executor finishes.
			current, err := store.GetWorkflow(ctx, workflow.WorkflowID)
			if err != nil {
				t.Fatalf("get mid-run failed: %v", err)
			}
			expired := testNow.Add(-time.Minute)
			current.LeaseExpiresAt = &expired
			if err := store.UpdateWorkflow(ctx, current); err != nil {
				t.Fatalf("expire lease failed: %v", err)
			}
			if err := reaper.RunOnce(ctx); err != nil {
				t.Fatalf("reap failed: %v", err)
			}
			if _, claimed, err := store.ClaimDueWorkflow(ctx, "worker-rival", testNow, time.Minute); err != nil || !claimed {
				t.Fatalf("expected rival claim, claimed=%v err=%v", claimed, err)
			}
			return map[string]any{"edges": 7}, nil
		}),
	}
	scheduler := newScheduler(store, registry)
	seedPending(t, store, "wf-1", 0)

	ran, err := scheduler.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !ran {
		t.Fatal("expected the due workflow to run")
	}

	workflow, err := store.GetWorkflow(context.Background(), "wf-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if workflow.Status != entities.StatusRunning {
		t.Fatalf("expected the rival's running state to survive, got %s", workflow.Status)
	}
	if workflow.LeaseOwner != "worker-rival" {
		t.Fatalf("expected lease owner worker-rival, got %q", workflow.LeaseOwner)
	}
	if workflow.Results != nil {
		t.Fatalf("expected the stale result to be discarded, got %v", workflow.Results)
	}
}

func TestUpdateWorkflowOwnedRejectsStaleOwner(t *testing.T) {
	store := memory.NewStore()
	seedPending(t, store, "wf-1", 0)

	claimed, ok, err := store.ClaimDueWorkflow(context.Background(), "worker-a", testNow, time.Minute)
	if err != nil || !ok {
		t.Fatalf("claim failed: ok=%v err=%v", ok, err)
	}

	claimed.Status = entities.StatusCompleted
	owned, err := store.UpdateWorkflowOwned(context.Background(), claimed, "worker-b")
	if err != nil {
		t.Fatalf("owned update failed: %v", err)
	}
	if owned {
		t.Fatal("expected the update to be rejected for a stale owner")
	}

	owned, err = store.UpdateWorkflowOwned(context.Background(), claimed, "worker-a")
	if err != nil {
		t.Fatalf("owned update failed: %v", err)
	}
	if !owned {
		t.Fatal("expected the lease holder's update to apply")
	}
}

func TestLeaseReaperRequeuesExpiredLease(t *testing.T) {
	store := memory.NewStore()
	reaper := LeaseReaper{
		Workflows: store,
		Outbox:    store,
		Clock:     fixedClock{now: testNow},
		IDGen:     memory.UUIDGenerator{},
	}

	expired := testNow.Add(-time.Minute)
	workflow := entities.Workflow{
		WorkflowID:     "wf-1",
		WorkflowType:   entities.TypeGRNInference,
		PatientID:      "patient-1",
		Status:         entities.StatusRunning,
		Attempts:       1,
		MaxAttempts:    3,
		LeaseOwner:     "worker-dead",
		LeaseExpiresAt: &expired,
		CreatedAt:      testNow.Add(-time.Hour),
	}
	if err := store.CreateWorkflow(context.Background(), workflow); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	if err := reaper.RunOnce(context.Background()); err != nil {
		t.Fatalf("reap failed: %v", err)
	}

	requeued, err := store.GetWorkflow(context.Background(), "wf-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if requeued.Status != entities.StatusPending {
		t.Fatalf("expected pending status, got %s", requeued.Status)
	}
	if requeued.LeaseOwner != "" || requeued.LeaseExpiresAt != nil {
		t.Fatal("expected lease cleared")
	}
	if requeued.Attempts != 1 {
		t.Fatalf("the dead owner's attempt stays counted, got %d", requeued.Attempts)
	}
}

func TestLeaseReaperFailsExhaustedWorkflow(t *testing.T) {
	store := memory.NewStore()
	reaper := LeaseReaper{
		Workflows: store,
		Outbox:    store,
		Clock:     fixedClock{now: testNow},
		IDGen:     memory.UUIDGenerator{},
	}

	expired := testNow.Add(-time.Minute)
	workflow := entities.Workflow{
		WorkflowID:     "wf-1",
		WorkflowType:   entities.TypeGRNInference,
		PatientID:      "patient-1",
		Status:         entities.StatusRunning,
		Attempts:       3,
		MaxAttempts:    3,
		LeaseOwner:     "worker-dead",
		LeaseExpiresAt: &expired,
		CreatedAt:      testNow.Add(-time.Hour),
	}
	if err := store.CreateWorkflow(context.Background(), workflow); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	if err := reaper.RunOnce(context.Background()); err != nil {
		t.Fatalf("reap failed: %v", err)
	}

	failed, err := store.GetWorkflow(context.Background(), "wf-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if failed.Status != entities.StatusFailed {
		t.Fatalf("expected failed status, got %s", failed.Status)
	}
	if failed.ErrorMessage == "" {
		t.Fatal("expected error message recorded")
	}
}

func TestSchedulerPicksHighestPriorityFirst(t *testing.T) {
	store := memory.NewStore()
	registry := executors.Registry{
		entities.TypeGRNInference: executors.StubExecutor{},
	}
	scheduler := newScheduler(store, registry)

	low := seedPending(t, store, "wf-low", 0)
	low.Priority = 1
	low.CreatedAt = testNow.Add(-2 * time.Hour)
	if err := store.UpdateWorkflow(context.Background(), low); err != nil {
		t.Fatalf("seed update failed: %v", err)
	}
	high := seedPending(t, store, "wf-high", 0)
	high.Priority = 9
	if err := store.UpdateWorkflow(context.Background(), high); err != nil {
		t.Fatalf("seed update failed: %v", err)
	}

	if _, err := scheduler.RunOnce(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	ran, err := store.GetWorkflow(context.Background(), "wf-high")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if ran.Status != entities.StatusCompleted {
		t.Fatalf("expected the high-priority workflow to run first, status %s", ran.Status)
	}
	waiting, err := store.GetWorkflow(context.Background(), "wf-low")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if waiting.Status != entities.StatusPending {
		t.Fatalf("expected the low-priority workflow to stay pending, status %s", waiting.Status)
	}
}
