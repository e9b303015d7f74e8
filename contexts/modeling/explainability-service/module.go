package explainabilityservice

import (
	"log/slog"

	httpadapter "helix/contexts/modeling/explainability-service/adapters/http"
	"helix/contexts/modeling/explainability-service/adapters/memory"
	"helix/contexts/modeling/explainability-service/application"
	"helix/contexts/modeling/explainability-service/domain/entities"
	"helix/contexts/modeling/explainability-service/ports"
	"helix/internal/platform/objectstore"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Explanations ports.ExplanationRepository
	Attributors  map[entities.Method]ports.Attributor
	Blobs        ports.BlobStore
	Clock        ports.Clock
	IDGen        ports.IDGenerator
	Logger       *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Explanations: deps.Explanations,
		Attributors:  deps.Attributors,
		Blobs:        deps.Blobs,
		Clock:        deps.Clock,
		IDGen:        deps.IDGen,
		Logger:       deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Explanations: service,
			Logger:       deps.Logger,
		},
	}
}

// DefaultAttributors wires the stub SHAP and LIME attributors. Production
// deployments replace these with adapters for the real attribution backends.
func DefaultAttributors() map[entities.Method]ports.Attributor {
	return map[entities.Method]ports.Attributor{
		entities.MethodSHAP: memory.StubAttributor{Method: entities.MethodSHAP},
		entities.MethodLIME: memory.StubAttributor{Method: entities.MethodLIME},
	}
}

func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Explanations: store,
		Attributors:  DefaultAttributors(),
		Blobs:        objectstore.NewInMemory(logger),
		Clock:        memory.SystemClock{},
		IDGen:        memory.UUIDGenerator{},
		Logger:       logger,
	})
	module.Store = store
	return module
}
