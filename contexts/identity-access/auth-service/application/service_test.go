package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"helix/contexts/identity-access/auth-service/adapters/memory"
	"helix/contexts/identity-access/auth-service/domain/entities"
	domainerrors "helix/contexts/identity-access/auth-service/domain/errors"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

func newTestService(now time.Time) (Service, *memory.Store) {
	store := memory.NewStore()
	service := Service{
		Users: store,
		Tokens: TokenIssuer{
			Secret: []byte("unit-test-secret"),
			TTL:    time.Hour,
		},
		Clock: fixedClock{now: now},
		IDGen: memory.UUIDGenerator{},
	}
	return service, store
}

func TestRegisterRejectsDuplicateUsername(t *testing.T) {
	now := time.Now().UTC()
	service, _ := newTestService(now)

	input := RegisterInput{
		Username: "ana.morales",
		Email:    "ana@example.org",
		Password: "correct-horse",
	}
	if _, err := service.Register(context.Background(), input); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}

	input.Email = "other@example.org"
	if _, err := service.Register(context.Background(), input); !errors.Is(err, domainerrors.ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestRegisterValidatesInput(t *testing.T) {
	now := time.Now().UTC()
	service, _ := newTestService(now)

	cases := []struct {
		name  string
		input RegisterInput
	}{
		{"missing username", RegisterInput{Email: "a@b.org", Password: "long-enough"}},
		{"short password", RegisterInput{Username: "u1", Email: "a@b.org", Password: "short"}},
		{"bad email", RegisterInput{Username: "u1", Email: "not-an-email", Password: "long-enough"}},
		{"bad role", RegisterInput{Username: "u1", Email: "a@b.org", Password: "long-enough", Role: "superuser"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := service.Register(context.Background(), tc.input); !errors.Is(err, domainerrors.ErrInvalidRegistration) {
				t.Fatalf("expected ErrInvalidRegistration, got %v", err)
			}
		})
	}
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	now := time.Now().UTC()
	service, _ := newTestService(now)

	user, err := service.Register(context.Background(), RegisterInput{
		Username: "kwame",
		Email:    "kwame@example.org",
		Password: "correct-horse",
		Role:     entities.RoleResearcher,
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	result, err := service.Login(context.Background(), "Kwame", "correct-horse")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if result.Token == "" {
		t.Fatal("expected a signed token")
	}

	identity, err := service.Tokens.Verify(result.Token)
	if err != nil {
		t.Fatalf("token verify failed: %v", err)
	}
	if identity.UserID != user.UserID || identity.Role != entities.RoleResearcher {
		t.Fatalf("unexpected identity %+v", identity)
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	now := time.Now().UTC()
	service, _ := newTestService(now)

	if _, err := service.Register(context.Background(), RegisterInput{
		Username: "kwame",
		Email:    "kwame@example.org",
		Password: "correct-horse",
	}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if _, err := service.Login(context.Background(), "kwame", "wrong-password"); !errors.Is(err, domainerrors.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthenticateRejectsDeactivatedAccount(t *testing.T) {
	now := time.Now().UTC()
	service, store := newTestService(now)

	admin, err := service.Register(context.Background(), RegisterInput{
		Username: "root",
		Email:    "root@example.org",
		Password: "correct-horse",
		Role:     entities.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("register admin failed: %v", err)
	}
	target, err := service.Register(context.Background(), RegisterInput{
		Username: "worker",
		Email:    "worker@example.org",
		Password: "correct-horse",
	})
	if err != nil {
		t.Fatalf("register target failed: %v", err)
	}

	login, err := service.Login(context.Background(), "worker", "correct-horse")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if _, err := service.Deactivate(context.Background(), admin, target.UserID); err != nil {
		t.Fatalf("deactivate failed: %v", err)
	}

	if _, err := service.Authenticate(context.Background(), login.Token); !errors.Is(err, domainerrors.ErrUserInactive) {
		t.Fatalf("expected ErrUserInactive, got %v", err)
	}

	stored, err := store.GetUser(context.Background(), target.UserID)
	if err != nil {
		t.Fatalf("store lookup failed: %v", err)
	}
	if stored.Active {
		t.Fatal("expected stored user to be inactive")
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	// Issue far enough in the past that the one-hour TTL has already elapsed.
	issueTime := time.Now().UTC().Add(-2 * time.Hour)
	issuer := TokenIssuer{Secret: []byte("unit-test-secret"), TTL: time.Hour}

	token, _, err := issuer.Issue(entities.User{UserID: "u-1", Username: "x", Role: entities.RoleClinician}, issueTime)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if _, err := issuer.Verify(token); !errors.Is(err, domainerrors.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}
