package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bnema/teamfocus-cli/internal/ports"
)

// TokenInspector reads the registered claims of a JWT bearer token. The
// signature is not checked: the key lives on the backend, and the claims
// only drive local decisions such as skipping a doomed session restore.
type TokenInspector struct {
	parser *jwt.Parser
}

var _ ports.TokenInspector = (*TokenInspector)(nil)

func NewTokenInspector() *TokenInspector {
	return &TokenInspector{parser: jwt.NewParser()}
}

func (i *TokenInspector) Inspect(token string) (ports.TokenClaims, error) {
	var claims jwt.RegisteredClaims
	if _, _, err := i.parser.ParseUnverified(token, &claims); err != nil {
		return ports.TokenClaims{}, fmt.Errorf("parse token: %w", err)
	}

	result := ports.TokenClaims{Subject: claims.Subject}
	if claims.ExpiresAt != nil {
		expiresAt := claims.ExpiresAt.Time
		result.ExpiresAt = &expiresAt
	}
	return result, nil
}
