package workers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"helix/contexts/orchestration/workflow-service/application"
	"helix/contexts/orchestration/workflow-service/application/commands"
	"helix/contexts/orchestration/workflow-service/domain/entities"
	domainerrors "helix/contexts/orchestration/workflow-service/domain/errors"
	"helix/internal/shared/events"
)

type Subscriber interface {
	Subscribe(ctx context.Context, topic string, consumerGroup string, handler func(context.Context, events.Envelope) error) error
}

const planDispatchedTopic = "analysis.plan.dispatched"

// PlanWorkflowConsumer submits a GRN inference workflow whenever an analysis
// plan is dispatched. The idempotency key is derived from the plan ID, so a
// redelivered event replays the original submission instead of duplicating it.
type PlanWorkflowConsumer struct {
	Submit   commands.SubmitWorkflowUseCase
	Bus      Subscriber
	Priority int
	Logger   *slog.Logger
}

func (c PlanWorkflowConsumer) Start(ctx context.Context) error {
	if err := c.Bus.Subscribe(ctx, planDispatchedTopic, "workflow-plan-consumer", c.consume); err != nil {
		return fmt.Errorf("subscribe %s: %w", planDispatchedTopic, err)
	}
	application.ResolveLogger(c.Logger).Info("plan workflow consumer subscribed",
		"event", "plan_workflow_consumer_subscribed",
		"module", "orchestration/workflow-service",
		"layer", "worker",
		"topic", planDispatchedTopic,
	)
	return nil
}

func (c PlanWorkflowConsumer) consume(ctx context.Context, event events.Envelope) error {
	planID, _ := event.Payload["plan_id"].(string)
	patientID, _ := event.Payload["patient_id"].(string)
	if planID == "" || patientID == "" {
		application.ResolveLogger(c.Logger).Warn("plan event missing identifiers",
			"event", "plan_workflow_event_malformed",
			"module", "orchestration/workflow-service",
			"layer", "worker",
			"event_id", event.EventID,
		)
		return nil
	}

	result, err := c.Submit.Execute(ctx, commands.SubmitWorkflowCommand{
		IdempotencyKey: "plan-" + planID,
		WorkflowType:   entities.TypeGRNInference,
		PatientID:      patientID,
		PlanID:         planID,
		Priority:       c.Priority,
		Parameters:     map[string]any{"routes": event.Payload["routes"]},
		CreatedBy:      "analysis-router-service",
	})
	if err != nil {
		// A key collision with different content means the plan was already
		// handled under an older payload; drop rather than retry forever.
		if errors.Is(err, domainerrors.ErrIdempotencyConflict) {
			return nil
		}
		return err
	}

	application.ResolveLogger(c.Logger).Info("workflow submitted for dispatched plan",
		"event", "plan_workflow_submitted",
		"module", "orchestration/workflow-service",
		"layer", "worker",
		"plan_id", planID,
		"workflow_id", result.Workflow.WorkflowID,
		"replayed", result.Replayed,
	)
	return nil
}
