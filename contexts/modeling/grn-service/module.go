package grnservice

import (
	"log/slog"

	httpadapter "helix/contexts/modeling/grn-service/adapters/http"
	"helix/contexts/modeling/grn-service/adapters/memory"
	"helix/contexts/modeling/grn-service/application"
	"helix/contexts/modeling/grn-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Models  ports.ModelRepository
	Checker ports.QualitativeChecker
	Clock   ports.Clock
	IDGen   ports.IDGenerator
	Logger  *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Models:  deps.Models,
		Checker: deps.Checker,
		Clock:   deps.Clock,
		IDGen:   deps.IDGen,
		Logger:  deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Models: service,
			Logger: deps.Logger,
		},
	}
}

func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Models:  store,
		Checker: memory.StubChecker{},
		Clock:   memory.SystemClock{},
		IDGen:   memory.UUIDGenerator{},
		Logger:  logger,
	})
	module.Store = store
	return module
}
