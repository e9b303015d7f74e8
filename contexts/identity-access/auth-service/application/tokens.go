package application

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"helix/contexts/identity-access/auth-service/domain/entities"
	domainerrors "helix/contexts/identity-access/auth-service/domain/errors"
)

// Identity is the verified subject extracted from a bearer token.
type Identity struct {
	UserID   string
	Username string
	Role     entities.Role
}

type tokenClaims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 bearer tokens against the platform
// shared secret. Verification is stateless so every module can re-check
// tokens without a repository round trip.
type TokenIssuer struct {
	Secret []byte
	TTL    time.Duration
}

func (t TokenIssuer) Issue(user entities.User, now time.Time) (string, time.Time, error) {
	ttl := t.TTL
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	expiresAt := now.Add(ttl)
	claims := tokenClaims{
		Username: user.Username,
		Role:     string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.UserID,
			Issuer:    "helix",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (t TokenIssuer) Verify(raw string) (Identity, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Identity{}, domainerrors.ErrInvalidToken
	}

	var claims tokenClaims
	token, err := jwt.ParseWithClaims(trimmed, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domainerrors.ErrInvalidToken
		}
		return t.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return Identity{}, domainerrors.ErrInvalidToken
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return Identity{}, domainerrors.ErrInvalidToken
	}
	return Identity{
		UserID:   claims.Subject,
		Username: claims.Username,
		Role:     entities.Role(claims.Role),
	}, nil
}
