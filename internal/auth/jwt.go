package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mamadbah2/dairyfarm/internal/domain/models"
)

// Claims carried by bearer tokens issued by the identity service.
type Claims struct {
	Name string      `json:"name,omitempty"`
	Role models.Role `json:"role"`
	jwt.RegisteredClaims
}

// Authenticator resolves bearer tokens into users.
type Authenticator struct {
	secret []byte
	now    func() time.Time
}

// NewAuthenticator builds an HS256 authenticator.
func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret), now: time.Now}
}

// CurrentUser validates token and returns the user it identifies.
func (a *Authenticator) CurrentUser(token string) (models.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return models.User{}, fmt.Errorf("%w: missing bearer token", models.ErrUnauthorized)
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return a.secret, nil
	}, jwt.WithTimeFunc(a.now), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return models.User{}, fmt.Errorf("%w: invalid token", models.ErrUnauthorized)
	}

	subject := strings.TrimSpace(claims.Subject)
	if subject == "" {
		return models.User{}, fmt.Errorf("%w: invalid token subject", models.ErrUnauthorized)
	}
	if !models.KnownRole(claims.Role) {
		return models.User{}, fmt.Errorf("%w: unknown role %q", models.ErrUnauthorized, claims.Role)
	}

	return models.User{ID: subject, Name: claims.Name, Role: claims.Role}, nil
}

// Issue signs a token for user valid for ttl. The identity service owns
// issuance in production; this is used by tooling and tests.
func (a *Authenticator) Issue(user models.User, ttl time.Duration) (string, error) {
	now := a.now()
	claims := Claims{
		Name: user.Name,
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(header[len(prefix):]), true
}
