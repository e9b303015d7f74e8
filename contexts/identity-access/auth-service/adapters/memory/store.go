package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"helix/contexts/identity-access/auth-service/domain/entities"
	domainerrors "helix/contexts/identity-access/auth-service/domain/errors"
)

type Store struct {
	mu         sync.RWMutex
	users      map[string]entities.User
	byUsername map[string]string
}

func NewStore() *Store {
	return &Store{
		users:      make(map[string]entities.User),
		byUsername: make(map[string]string),
	}
}

func (s *Store) SaveUser(_ context.Context, user entities.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	username := strings.ToLower(strings.TrimSpace(user.Username))
	if existingID, ok := s.byUsername[username]; ok && existingID != user.UserID {
		return domainerrors.ErrUsernameTaken
	}
	s.users[user.UserID] = user
	s.byUsername[username] = user.UserID
	return nil
}

func (s *Store) GetUser(_ context.Context, userID string) (entities.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[strings.TrimSpace(userID)]
	if !ok {
		return entities.User{}, domainerrors.ErrUserNotFound
	}
	return user, nil
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (entities.User, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	userID, ok := s.byUsername[strings.ToLower(strings.TrimSpace(username))]
	if !ok {
		return entities.User{}, false, nil
	}
	user, ok := s.users[userID]
	if !ok {
		return entities.User{}, false, nil
	}
	return user, true, nil
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
