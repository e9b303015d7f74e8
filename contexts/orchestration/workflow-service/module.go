package workflowservice

import (
	"log/slog"
	"time"

	"helix/contexts/orchestration/workflow-service/adapters/executors"
	httpadapter "helix/contexts/orchestration/workflow-service/adapters/http"
	"helix/contexts/orchestration/workflow-service/adapters/memory"
	"helix/contexts/orchestration/workflow-service/application/commands"
	"helix/contexts/orchestration/workflow-service/application/queries"
	"helix/contexts/orchestration/workflow-service/application/workers"
	"helix/contexts/orchestration/workflow-service/ports"
)

type Module struct {
	Handler      httpadapter.Handler
	Scheduler    workers.Scheduler
	Reaper       workers.LeaseReaper
	Relay        workers.OutboxRelay
	PlanConsumer workers.PlanWorkflowConsumer
	Store        *memory.Store
}

type Dependencies struct {
	Workflows   ports.WorkflowRepository
	Idempotency ports.IdempotencyStore
	Outbox      ports.OutboxWriter
	OutboxLog   ports.OutboxRepository
	Publisher   ports.EventPublisher
	Registry    ports.ExecutorRegistry
	Bus         workers.Subscriber
	Clock       ports.Clock
	IDGen       ports.IDGenerator
	Owner       string
	LeaseTTL    time.Duration
	MaxAttempts int
	Retry       workers.RetryPolicy
	Logger      *slog.Logger
}

func NewModule(deps Dependencies) Module {
	submit := commands.SubmitWorkflowUseCase{
		Workflows:          deps.Workflows,
		Idempotency:        deps.Idempotency,
		Outbox:             deps.Outbox,
		Clock:              deps.Clock,
		IDGenerator:        deps.IDGen,
		DefaultMaxAttempts: deps.MaxAttempts,
		Logger:             deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Submit: submit,
			Cancel: commands.CancelWorkflowUseCase{
				Workflows:   deps.Workflows,
				Outbox:      deps.Outbox,
				Clock:       deps.Clock,
				IDGenerator: deps.IDGen,
				Logger:      deps.Logger,
			},
			Retry: commands.RetryWorkflowUseCase{
				Workflows:   deps.Workflows,
				Outbox:      deps.Outbox,
				Clock:       deps.Clock,
				IDGenerator: deps.IDGen,
				Logger:      deps.Logger,
			},
			Progress: commands.ReportProgressUseCase{
				Workflows: deps.Workflows,
				Clock:     deps.Clock,
				Logger:    deps.Logger,
			},
			Get:     queries.GetWorkflowUseCase{Workflows: deps.Workflows, Logger: deps.Logger},
			List:    queries.ListWorkflowsUseCase{Workflows: deps.Workflows, Logger: deps.Logger},
			Results: queries.GetResultsUseCase{Workflows: deps.Workflows, Logger: deps.Logger},
			Logger:  deps.Logger,
		},
		Scheduler: workers.Scheduler{
			Workflows: deps.Workflows,
			Registry:  deps.Registry,
			Outbox:    deps.Outbox,
			Clock:     deps.Clock,
			IDGen:     deps.IDGen,
			Owner:     deps.Owner,
			LeaseTTL:  deps.LeaseTTL,
			Retry:     deps.Retry,
			Logger:    deps.Logger,
		},
		Reaper: workers.LeaseReaper{
			Workflows: deps.Workflows,
			Outbox:    deps.Outbox,
			Clock:     deps.Clock,
			IDGen:     deps.IDGen,
			Logger:    deps.Logger,
		},
		Relay: workers.OutboxRelay{
			Outbox:    deps.OutboxLog,
			Publisher: deps.Publisher,
			Clock:     deps.Clock,
			Logger:    deps.Logger,
		},
		PlanConsumer: workers.PlanWorkflowConsumer{
			Submit: submit,
			Bus:    deps.Bus,
			Logger: deps.Logger,
		},
	}
}

func NewInMemoryModule(registry ports.ExecutorRegistry, publisher ports.EventPublisher, logger *slog.Logger) Module {
	store := memory.NewStore()
	if registry == nil {
		registry = executors.DefaultRegistry()
	}
	module := NewModule(Dependencies{
		Workflows:   store,
		Idempotency: store,
		Outbox:      store,
		OutboxLog:   store,
		Publisher:   publisher,
		Registry:    registry,
		Clock:       memory.SystemClock{},
		IDGen:       memory.UUIDGenerator{},
		Owner:       "worker-local",
		Logger:      logger,
	})
	module.Store = store
	return module
}
