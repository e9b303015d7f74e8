package analysisrouterservice

import (
	"log/slog"

	httpadapter "helix/contexts/modeling/analysis-router-service/adapters/http"
	"helix/contexts/modeling/analysis-router-service/adapters/memory"
	"helix/contexts/modeling/analysis-router-service/application"
	"helix/contexts/modeling/analysis-router-service/application/workers"
	"helix/contexts/modeling/analysis-router-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Relay   workers.OutboxRelay
	Store   *memory.Store
}

type Dependencies struct {
	Plans     ports.PlanRepository
	Outbox    ports.OutboxWriter
	OutboxLog ports.OutboxRepository
	Publisher ports.EventPublisher
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Plans:  deps.Plans,
		Outbox: deps.Outbox,
		Clock:  deps.Clock,
		IDGen:  deps.IDGen,
		Logger: deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Plans:  service,
			Logger: deps.Logger,
		},
		Relay: workers.OutboxRelay{
			Outbox:    deps.OutboxLog,
			Publisher: deps.Publisher,
			Clock:     deps.Clock,
			Logger:    deps.Logger,
		},
	}
}

func NewInMemoryModule(publisher ports.EventPublisher, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Plans:     store,
		Outbox:    store,
		OutboxLog: store,
		Publisher: publisher,
		Clock:     memory.SystemClock{},
		IDGen:     memory.UUIDGenerator{},
		Logger:    logger,
	})
	module.Store = store
	return module
}
