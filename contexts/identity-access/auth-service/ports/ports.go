package ports

import (
	"context"
	"time"

	"helix/contexts/identity-access/auth-service/domain/entities"
)

type UserRepository interface {
	SaveUser(ctx context.Context, user entities.User) error
	GetUser(ctx context.Context, userID string) (entities.User, error)
	GetUserByUsername(ctx context.Context, username string) (entities.User, bool, error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
