package authservice

import (
	"log/slog"
	"time"

	httpadapter "helix/contexts/identity-access/auth-service/adapters/http"
	"helix/contexts/identity-access/auth-service/adapters/memory"
	"helix/contexts/identity-access/auth-service/application"
	"helix/contexts/identity-access/auth-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Users     ports.UserRepository
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	JWTSecret []byte
	TokenTTL  time.Duration
	Logger    *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Users: deps.Users,
		Tokens: application.TokenIssuer{
			Secret: deps.JWTSecret,
			TTL:    deps.TokenTTL,
		},
		Clock:  deps.Clock,
		IDGen:  deps.IDGen,
		Logger: deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Accounts: service,
			Logger:   deps.Logger,
		},
	}
}

func NewInMemoryModule(secret []byte, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Users:     store,
		Clock:     memory.SystemClock{},
		IDGen:     memory.UUIDGenerator{},
		JWTSecret: secret,
		TokenTTL:  12 * time.Hour,
		Logger:    logger,
	})
	module.Store = store
	return module
}
