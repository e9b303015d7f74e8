package ports

import (
	"context"
	"time"

	"helix/contexts/orchestration/workflow-service/domain/entities"
	"helix/internal/shared/events"
	"helix/internal/shared/outbox"
)

type WorkflowFilter struct {
	PatientID string
	Status    entities.Status
}

type WorkflowRepository interface {
	CreateWorkflow(ctx context.Context, workflow entities.Workflow) error
	GetWorkflow(ctx context.Context, workflowID string) (entities.Workflow, error)
	UpdateWorkflow(ctx context.Context, workflow entities.Workflow) error

	// UpdateWorkflowOwned persists the workflow only while owner still
	// holds its lease. It reports false when the lease was lost, so a
	// stale worker cannot overwrite state written by the new owner.
	UpdateWorkflowOwned(ctx context.Context, workflow entities.Workflow, owner string) (bool, error)

	ListWorkflows(ctx context.Context, filter WorkflowFilter, limit int) ([]entities.Workflow, error)

	// ClaimDueWorkflow atomically claims the highest-priority due pending
	// workflow: it is moved to running with the lease owner and expiry set.
	// The boolean reports whether anything was due.
	ClaimDueWorkflow(ctx context.Context, owner string, now time.Time, leaseTTL time.Duration) (entities.Workflow, bool, error)

	// ListExpiredLeases returns running workflows whose lease expired
	// before now.
	ListExpiredLeases(ctx context.Context, now time.Time, limit int) ([]entities.Workflow, error)
}

type IdempotencyRecord struct {
	Key             string
	RequestHash     string
	ResponsePayload []byte
	ExpiresAt       time.Time
}

type IdempotencyStore interface {
	GetRecord(ctx context.Context, key string, now time.Time) (IdempotencyRecord, bool, error)
	PutRecord(ctx context.Context, record IdempotencyRecord) error
}

// ProgressFunc lets an executor report completion fraction while it runs.
type ProgressFunc func(ctx context.Context, fraction float64) error

// Executor runs one workflow type. Returning an error wrapped with
// backoff.Permanent fails the workflow immediately; any other error counts as
// transient and is retried.
type Executor interface {
	Execute(ctx context.Context, workflow entities.Workflow, report ProgressFunc) (map[string]any, error)
}

type ExecutorRegistry interface {
	ExecutorFor(workflowType entities.WorkflowType) (Executor, bool)
}

type OutboxWriter interface {
	AppendOutbox(ctx context.Context, envelope events.Envelope) error
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]outbox.Message, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event events.Envelope) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
