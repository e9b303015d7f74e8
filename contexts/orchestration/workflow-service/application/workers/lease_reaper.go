package workers

import (
	"context"
	"log/slog"

	"helix/contexts/orchestration/workflow-service/application"
	"helix/contexts/orchestration/workflow-service/application/commands"
	"helix/contexts/orchestration/workflow-service/domain/entities"
	"helix/contexts/orchestration/workflow-service/ports"
)

// LeaseReaper requeues running workflows whose lease expired, which happens
// when the owning worker crashed mid-run. The attempt consumed by the dead
// owner stays counted; exhausted workflows fail instead of looping forever.
type LeaseReaper struct {
	Workflows ports.WorkflowRepository
	Outbox    ports.OutboxWriter
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	BatchSize int
	Logger    *slog.Logger
}

func (r LeaseReaper) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(r.Logger)
	limit := r.BatchSize
	if limit <= 0 {
		limit = 50
	}

	now := r.Clock.Now().UTC()
	expired, err := r.Workflows.ListExpiredLeases(ctx, now, limit)
	if err != nil {
		logger.Error("lease scan failed",
			"event", "workflow_lease_scan_failed",
			"module", "orchestration/workflow-service",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}

	for _, workflow := range expired {
		previous := workflow.Status
		workflow.LeaseOwner = ""
		workflow.LeaseExpiresAt = nil
		workflow.UpdatedAt = now
		if workflow.Attempts >= workflow.MaxAttempts {
			workflow.Status = entities.StatusFailed
			workflow.ErrorMessage = "lease expired with no attempts remaining"
			workflow.CompletedAt = &now
		} else {
			workflow.Status = entities.StatusPending
			workflow.NextRunAt = now
		}
		if err := r.Workflows.UpdateWorkflow(ctx, workflow); err != nil {
			return err
		}
		if err := commands.AppendStatusChanged(ctx, r.Outbox, r.IDGen, workflow, previous, now); err != nil {
			return err
		}
		logger.Warn("expired lease reaped",
			"event", "workflow_lease_reaped",
			"module", "orchestration/workflow-service",
			"layer", "worker",
			"workflow_id", workflow.WorkflowID,
			"new_status", string(workflow.Status),
			"attempts", workflow.Attempts,
		)
	}
	return nil
}
