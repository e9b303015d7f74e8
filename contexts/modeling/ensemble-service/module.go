package ensembleservice

import (
	"log/slog"

	httpadapter "helix/contexts/modeling/ensemble-service/adapters/http"
	"helix/contexts/modeling/ensemble-service/adapters/memory"
	"helix/contexts/modeling/ensemble-service/application"
	"helix/contexts/modeling/ensemble-service/application/workers"
	"helix/contexts/modeling/ensemble-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Relay   workers.OutboxRelay
	Store   *memory.Store
}

type Dependencies struct {
	Predictions ports.PredictionRepository
	Routes      ports.RouteDirectory
	Outbox      ports.OutboxWriter
	OutboxLog   ports.OutboxRepository
	Publisher   ports.EventPublisher
	Clock       ports.Clock
	IDGen       ports.IDGenerator
	Logger      *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Predictions: deps.Predictions,
		Routes:      deps.Routes,
		Outbox:      deps.Outbox,
		Clock:       deps.Clock,
		IDGen:       deps.IDGen,
		Logger:      deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Predictions: service,
			Logger:      deps.Logger,
		},
		Relay: workers.OutboxRelay{
			Outbox:    deps.OutboxLog,
			Publisher: deps.Publisher,
			Clock:     deps.Clock,
			Logger:    deps.Logger,
		},
	}
}

func NewInMemoryModule(routes ports.RouteDirectory, publisher ports.EventPublisher, logger *slog.Logger) Module {
	store := memory.NewStore()
	if routes == nil {
		routes = memory.StaticRoutes{}
	}
	module := NewModule(Dependencies{
		Predictions: store,
		Routes:      routes,
		Outbox:      store,
		OutboxLog:   store,
		Publisher:   publisher,
		Clock:       memory.SystemClock{},
		IDGen:       memory.UUIDGenerator{},
		Logger:      logger,
	})
	module.Store = store
	return module
}
