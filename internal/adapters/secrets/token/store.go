package token

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bnema/teamfocus-cli/internal/domain"
	"github.com/bnema/teamfocus-cli/internal/ports"
)

const DefaultKey = "teamfocus/token"

// Store exposes the session bearer token on top of a SecretStore.
type Store struct {
	secrets ports.SecretStore
	key     string
}

var _ ports.CredentialProvider = (*Store)(nil)

func NewStore(secrets ports.SecretStore, key string) *Store {
	if key == "" {
		key = DefaultKey
	}
	return &Store{secrets: secrets, key: key}
}

// Token returns "" with a nil error when no token is stored.
func (s *Store) Token(ctx context.Context) (string, error) {
	value, err := s.secrets.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, domain.ErrSecretNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("read session token: %w", err)
	}
	return strings.TrimSpace(value), nil
}

func (s *Store) SetToken(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("session token is empty")
	}
	if err := s.secrets.Put(ctx, s.key, token); err != nil {
		return fmt.Errorf("store session token: %w", err)
	}
	return nil
}

func (s *Store) ClearToken(ctx context.Context) error {
	if err := s.secrets.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("clear session token: %w", err)
	}
	return nil
}
