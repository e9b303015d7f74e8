package streamingservice

import (
	"log/slog"

	httpadapter "helix/contexts/realtime/streaming-service/adapters/http"
	"helix/contexts/realtime/streaming-service/adapters/memory"
	wshub "helix/contexts/realtime/streaming-service/adapters/websocket"
	"helix/contexts/realtime/streaming-service/application"
	"helix/contexts/realtime/streaming-service/application/workers"
	"helix/contexts/realtime/streaming-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Hub     *wshub.Hub
	Relay   workers.OutboxRelay
	Bridge  workers.VitalsBridge
	Store   *memory.Store
}

type Dependencies struct {
	Events         ports.EventRepository
	Alerts         ports.AlertRepository
	Outbox         ports.OutboxWriter
	OutboxLog      ports.OutboxRepository
	Publisher      ports.EventPublisher
	Bus            workers.Subscriber
	Clock          ports.Clock
	IDGen          ports.IDGenerator
	WindowSize     int
	TrendDeviation float64
	Logger         *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Events:    deps.Events,
		Alerts:    deps.Alerts,
		Trends:    application.NewTrendTracker(deps.WindowSize, deps.TrendDeviation),
		Outbox:    deps.Outbox,
		Publisher: deps.Publisher,
		Clock:     deps.Clock,
		IDGen:     deps.IDGen,
		Logger:    deps.Logger,
	}
	hub := wshub.NewHub(deps.Logger)
	return Module{
		Handler: httpadapter.Handler{
			Vitals: service,
			Logger: deps.Logger,
		},
		Hub: hub,
		Relay: workers.OutboxRelay{
			Outbox:    deps.OutboxLog,
			Publisher: deps.Publisher,
			Clock:     deps.Clock,
			Logger:    deps.Logger,
		},
		Bridge: workers.VitalsBridge{
			Bus:    deps.Bus,
			Hub:    hub,
			Logger: deps.Logger,
		},
	}
}

func NewInMemoryModule(bus workers.Subscriber, publisher ports.EventPublisher, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Events:    store,
		Alerts:    store,
		Outbox:    store,
		OutboxLog: store,
		Publisher: publisher,
		Bus:       bus,
		Clock:     memory.SystemClock{},
		IDGen:     memory.UUIDGenerator{},
		Logger:    logger,
	})
	module.Store = store
	return module
}
