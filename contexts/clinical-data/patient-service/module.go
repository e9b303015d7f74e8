package patientservice

import (
	"log/slog"

	httpadapter "helix/contexts/clinical-data/patient-service/adapters/http"
	"helix/contexts/clinical-data/patient-service/adapters/memory"
	"helix/contexts/clinical-data/patient-service/application"
	"helix/contexts/clinical-data/patient-service/ports"
	"helix/internal/platform/objectstore"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Patients  ports.PatientRepository
	Artifacts ports.ArtifactRepository
	Blobs     ports.BlobStore
	Cipher    application.MRNCipher
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Patients:  deps.Patients,
		Artifacts: deps.Artifacts,
		Blobs:     deps.Blobs,
		Cipher:    deps.Cipher,
		Clock:     deps.Clock,
		IDGen:     deps.IDGen,
		Logger:    deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Patients: service,
			Logger:   deps.Logger,
		},
	}
}

func NewInMemoryModule(cipher application.MRNCipher, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Patients:  store,
		Artifacts: store,
		Blobs:     objectstore.NewInMemory(logger),
		Cipher:    cipher,
		Clock:     memory.SystemClock{},
		IDGen:     memory.UUIDGenerator{},
		Logger:    logger,
	})
	module.Store = store
	return module
}
