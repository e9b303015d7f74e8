package workers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"helix/contexts/orchestration/workflow-service/application"
	"helix/contexts/orchestration/workflow-service/application/commands"
	"helix/contexts/orchestration/workflow-service/domain/entities"
	domainerrors "helix/contexts/orchestration/workflow-service/domain/errors"
	"helix/contexts/orchestration/workflow-service/ports"
)

const defaultLeaseTTL = 5 * time.Minute

// RetryPolicy computes the reschedule delay for a given attempt number using
// exponential backoff without jitter, so tests and operators can predict when
// a workflow runs next.
type RetryPolicy struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
}

func (p RetryPolicy) Delay(attempt int) time.Duration {
	b := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		b.InitialInterval = p.InitialInterval
	}
	if p.MaxInterval > 0 {
		b.MaxInterval = p.MaxInterval
	}
	if p.Multiplier > 0 {
		b.Multiplier = p.Multiplier
	}
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0
	b.Reset()

	delay := b.NextBackOff()
	for i := 1; i < attempt; i++ {
		delay = b.NextBackOff()
	}
	return delay
}

// Scheduler claims due pending workflows under a lease and dispatches them to
// the executor registered for their type. One RunOnce call processes at most
// one workflow so worker loops stay responsive to shutdown.
type Scheduler struct {
	Workflows ports.WorkflowRepository
	Registry  ports.ExecutorRegistry
	Outbox    ports.OutboxWriter
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Owner     string
	LeaseTTL  time.Duration
	Retry     RetryPolicy
	Logger    *slog.Logger
}

func (s Scheduler) RunOnce(ctx context.Context) (bool, error) {
	logger := application.ResolveLogger(s.Logger)
	leaseTTL := s.LeaseTTL
	if leaseTTL <= 0 {
		leaseTTL = defaultLeaseTTL
	}

	now := s.Clock.Now().UTC()
	workflow, claimed, err := s.Workflows.ClaimDueWorkflow(ctx, s.Owner, now, leaseTTL)
	if err != nil {
		logger.Error("workflow claim failed",
			"event", "workflow_claim_failed",
			"module", "orchestration/workflow-service",
			"layer", "worker",
			"owner", s.Owner,
			"error", err.Error(),
		)
		return false, err
	}
	if !claimed {
		return false, nil
	}
	if err := commands.AppendStatusChanged(ctx, s.Outbox, s.IDGen, workflow, entities.StatusPending, now); err != nil {
		return true, err
	}
	logger.Info("workflow claimed",
		"event", "workflow_claimed",
		"module", "orchestration/workflow-service",
		"layer", "worker",
		"workflow_id", workflow.WorkflowID,
		"workflow_type", string(workflow.WorkflowType),
		"owner", s.Owner,
		"attempt", workflow.Attempts,
	)

	executor, ok := s.Registry.ExecutorFor(workflow.WorkflowType)
	if !ok {
		return true, s.failPermanently(ctx, workflow, domainerrors.ErrNoExecutor)
	}

	results, execErr := executor.Execute(ctx, workflow, s.progressFunc(workflow.WorkflowID))

	// A cancel issued while the executor ran wins over its outcome, and a
	// lease lost to the reaper or another owner means their state wins.
	current, err := s.Workflows.GetWorkflow(ctx, workflow.WorkflowID)
	if err != nil {
		return true, err
	}
	if current.Status == entities.StatusCancelled {
		logger.Info("workflow result discarded after cancellation",
			"event", "workflow_result_discarded",
			"module", "orchestration/workflow-service",
			"layer", "worker",
			"workflow_id", workflow.WorkflowID,
		)
		return true, nil
	}
	if current.LeaseOwner != s.Owner {
		s.logLeaseLost(workflow.WorkflowID)
		return true, nil
	}
	workflow = current

	if execErr != nil {
		var permanent *backoff.PermanentError
		if errors.As(execErr, &permanent) {
			return true, s.failPermanently(ctx, workflow, execErr)
		}
		return true, s.rescheduleOrFail(ctx, workflow, execErr)
	}
	return true, s.complete(ctx, workflow, results)
}

func (s Scheduler) logLeaseLost(workflowID string) {
	application.ResolveLogger(s.Logger).Warn("workflow result discarded after lease loss",
		"event", "workflow_lease_lost",
		"module", "orchestration/workflow-service",
		"layer", "worker",
		"workflow_id", workflowID,
		"owner", s.Owner,
	)
}

func (s Scheduler) progressFunc(workflowID string) ports.ProgressFunc {
	report := commands.ReportProgressUseCase{
		Workflows: s.Workflows,
		Clock:     s.Clock,
		Logger:    s.Logger,
	}
	return func(ctx context.Context, fraction float64) error {
		_, err := report.Execute(ctx, workflowID, fraction)
		return err
	}
}

func (s Scheduler) complete(ctx context.Context, workflow entities.Workflow, results map[string]any) error {
	now := s.Clock.Now().UTC()
	previous := workflow.Status
	workflow.Status = entities.StatusCompleted
	workflow.Progress = 1
	workflow.Results = results
	workflow.ErrorMessage = ""
	workflow.LeaseOwner = ""
	workflow.LeaseExpiresAt = nil
	workflow.UpdatedAt = now
	workflow.CompletedAt = &now
	owned, err := s.Workflows.UpdateWorkflowOwned(ctx, workflow, s.Owner)
	if err != nil {
		return err
	}
	if !owned {
		s.logLeaseLost(workflow.WorkflowID)
		return nil
	}
	if err := commands.AppendStatusChanged(ctx, s.Outbox, s.IDGen, workflow, previous, now); err != nil {
		return err
	}

	application.ResolveLogger(s.Logger).Info("workflow completed",
		"event", "workflow_completed",
		"module", "orchestration/workflow-service",
		"layer", "worker",
		"workflow_id", workflow.WorkflowID,
		"attempts", workflow.Attempts,
	)
	return nil
}

func (s Scheduler) failPermanently(ctx context.Context, workflow entities.Workflow, cause error) error {
	now := s.Clock.Now().UTC()
	previous := workflow.Status
	workflow.Status = entities.StatusFailed
	workflow.Attempts = workflow.MaxAttempts
	workflow.ErrorMessage = cause.Error()
	workflow.LeaseOwner = ""
	workflow.LeaseExpiresAt = nil
	workflow.UpdatedAt = now
	workflow.CompletedAt = &now
	owned, err := s.Workflows.UpdateWorkflowOwned(ctx, workflow, s.Owner)
	if err != nil {
		return err
	}
	if !owned {
		s.logLeaseLost(workflow.WorkflowID)
		return nil
	}
	if err := commands.AppendStatusChanged(ctx, s.Outbox, s.IDGen, workflow, previous, now); err != nil {
		return err
	}

	application.ResolveLogger(s.Logger).Error("workflow failed permanently",
		"event", "workflow_failed",
		"module", "orchestration/workflow-service",
		"layer", "worker",
		"workflow_id", workflow.WorkflowID,
		"error", cause.Error(),
	)
	return nil
}

func (s Scheduler) rescheduleOrFail(ctx context.Context, workflow entities.Workflow, cause error) error {
	now := s.Clock.Now().UTC()
	previous := workflow.Status
	workflow.ErrorMessage = cause.Error()
	workflow.LeaseOwner = ""
	workflow.LeaseExpiresAt = nil
	workflow.UpdatedAt = now

	if workflow.Attempts >= workflow.MaxAttempts {
		workflow.Status = entities.StatusFailed
		workflow.CompletedAt = &now
	} else {
		workflow.Status = entities.StatusPending
		workflow.NextRunAt = now.Add(s.Retry.Delay(workflow.Attempts))
	}
	owned, err := s.Workflows.UpdateWorkflowOwned(ctx, workflow, s.Owner)
	if err != nil {
		return err
	}
	if !owned {
		s.logLeaseLost(workflow.WorkflowID)
		return nil
	}
	if err := commands.AppendStatusChanged(ctx, s.Outbox, s.IDGen, workflow, previous, now); err != nil {
		return err
	}

	application.ResolveLogger(s.Logger).Warn("workflow attempt failed",
		"event", "workflow_attempt_failed",
		"module", "orchestration/workflow-service",
		"layer", "worker",
		"workflow_id", workflow.WorkflowID,
		"attempt", workflow.Attempts,
		"max_attempts", workflow.MaxAttempts,
		"rescheduled", workflow.Status == entities.StatusPending,
		"error", cause.Error(),
	)
	return nil
}
