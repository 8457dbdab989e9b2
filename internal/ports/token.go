package ports

import "time"

type TokenClaims struct {
	Subject   string
	ExpiresAt *time.Time
}

// TokenInspector reads claims from a bearer token without verifying it.
// The backend remains the authority on validity.
type TokenInspector interface {
	Inspect(token string) (TokenClaims, error)
}
