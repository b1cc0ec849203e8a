package tokens

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"medical-calendar/internal/ports/auth"
)

var (
	ErrNotConfigured = errors.New("token verifier not configured")
	ErrTokenInvalid  = errors.New("token invalid")
)

// Verifier implementa auth.AuthVerifier validando JWTs HS256 emitidos por el
// portal de login (emisión de credenciales fuera de este servicio).
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) (*Verifier, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, ErrNotConfigured
	}
	return &Verifier{secret: []byte(secret)}, nil
}

type tokenClaims struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

func (v *Verifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	if v == nil || len(v.secret) == 0 {
		return auth.Claims{}, ErrNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrTokenInvalid
	}

	var claims tokenClaims
	parsed, err := jwt.ParseWithClaims(token, &claims,
		func(t *jwt.Token) (any, error) { return v.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return auth.Claims{}, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !parsed.Valid {
		return auth.Claims{}, ErrTokenInvalid
	}

	userID := strings.TrimSpace(claims.Subject)
	if userID == "" {
		return auth.Claims{}, fmt.Errorf("%w: missing sub", ErrTokenInvalid)
	}

	role := strings.TrimSpace(claims.Role)
	if role == "" {
		role = auth.RoleDoctor
	}

	return auth.Claims{
		UserID: userID,
		Name:   strings.TrimSpace(claims.Name),
		Email:  strings.TrimSpace(claims.Email),
		Role:   role,
	}, nil
}
