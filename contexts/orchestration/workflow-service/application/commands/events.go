package commands

import (
	"context"
	"time"

	"helix/contexts/orchestration/workflow-service/domain/entities"
	"helix/contexts/orchestration/workflow-service/ports"
	"helix/internal/shared/events"
)

const statusChangedEventType = "workflow.status_changed"

func newStatusEnvelope(eventID string, workflow entities.Workflow, previous entities.Status, occurredAt time.Time) events.Envelope {
	return events.Envelope{
		EventID:        eventID,
		EventType:      statusChangedEventType,
		SourceService:  "workflow-service",
		PartitionKey:   workflow.WorkflowID,
		OccurredAt:     occurredAt.UTC(),
		PayloadVersion: 1,
		Payload: map[string]any{
			"workflow_id":   workflow.WorkflowID,
			"workflow_type": string(workflow.WorkflowType),
			"patient_id":    workflow.PatientID,
			"from_status":   string(previous),
			"to_status":     string(workflow.Status),
			"attempts":      workflow.Attempts,
		},
	}
}

// AppendStatusChanged records a status-transition outbox event. Every command
// and worker that moves a workflow calls this with the prior status.
func AppendStatusChanged(
	ctx context.Context,
	writer ports.OutboxWriter,
	ids ports.IDGenerator,
	workflow entities.Workflow,
	previous entities.Status,
	occurredAt time.Time,
) error {
	if writer == nil {
		return nil
	}
	eventID, err := ids.NewID(ctx)
	if err != nil {
		return err
	}
	return writer.AppendOutbox(ctx, newStatusEnvelope(eventID, workflow, previous, occurredAt))
}
