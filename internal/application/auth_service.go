package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bnema/teamfocus-cli/internal/domain"
	"github.com/bnema/teamfocus-cli/internal/notify"
	"github.com/bnema/teamfocus-cli/internal/ports"
)

const (
	RoleNotAllowedMessage = "This app is for team members only. Team managers should use the web app."
	TrialEndedMessage     = "Trial ended. Please contact your team manager."
	SessionExpiredMessage = "Session expired. Please sign in again."
)

var errMissingCredentials = errors.New("please enter email and password")

type AuthServiceConfig struct {
	API         ports.AuthAPI
	Credentials ports.CredentialProvider
	Session     *SessionStore
	Preferences ports.PreferencesRepository
	Tokens      ports.TokenInspector
	Clock       ports.Clock
	Notices     *notify.Bus
	Logger      *slog.Logger
}

// AuthService signs the member in and out and keeps the session store in
// step with the stored credential. Preferences and Tokens are optional.
type AuthService struct {
	api         ports.AuthAPI
	credentials ports.CredentialProvider
	session     *SessionStore
	preferences ports.PreferencesRepository
	tokens      ports.TokenInspector
	clock       ports.Clock
	notices     *notify.Bus
	logger      *slog.Logger
}

func NewAuthService(cfg AuthServiceConfig) *AuthService {
	if cfg.Clock == nil {
		cfg.Clock = ports.SystemClock{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &AuthService{
		api:         cfg.API,
		credentials: cfg.Credentials,
		session:     cfg.Session,
		preferences: cfg.Preferences,
		tokens:      cfg.Tokens,
		clock:       cfg.Clock,
		notices:     cfg.Notices,
		logger:      cfg.Logger,
	}
}

func (s *AuthService) Login(ctx context.Context, email, password string) (domain.SessionSnapshot, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return domain.SessionSnapshot{}, errMissingCredentials
	}

	result, err := s.api.Login(ctx, email, password)
	if err != nil {
		return domain.SessionSnapshot{}, err
	}
	if result.Token == "" {
		return domain.SessionSnapshot{}, errors.New("login: invalid response from server")
	}
	if err := s.credentials.SetToken(ctx, result.Token); err != nil {
		return domain.SessionSnapshot{}, fmt.Errorf("store token: %w", err)
	}

	if err := s.establish(ctx, result.User); err != nil {
		return domain.SessionSnapshot{}, s.abort(ctx, err)
	}

	s.rememberEmail(ctx, email)
	s.logger.Info("logged in", "user", result.User.ID)
	return s.session.Snapshot(), nil
}

// RestoreSession signs back in with the stored token. Any failure leaves
// the member logged out.
func (s *AuthService) RestoreSession(ctx context.Context) (domain.SessionSnapshot, error) {
	token, err := s.credentials.Token(ctx)
	if err != nil {
		return domain.SessionSnapshot{}, fmt.Errorf("read token: %w", err)
	}
	if token == "" {
		return domain.SessionSnapshot{}, domain.ErrNotLoggedIn
	}

	if claims, ok := s.inspect(token); ok && claims.ExpiresAt != nil && !claims.ExpiresAt.After(s.clock.Now()) {
		return domain.SessionSnapshot{}, s.abort(ctx, fmt.Errorf("stored token expired at %s: %w", claims.ExpiresAt.Format("2006-01-02 15:04"), domain.ErrNotLoggedIn))
	}

	user, err := s.api.Me(ctx)
	if err != nil {
		return domain.SessionSnapshot{}, s.abort(ctx, fmt.Errorf("restore session: %w", err))
	}
	if err := s.establish(ctx, user); err != nil {
		return domain.SessionSnapshot{}, s.abort(ctx, err)
	}

	return s.session.Snapshot(), nil
}

func (s *AuthService) Logout(ctx context.Context) error {
	s.session.Clear()
	if err := s.credentials.ClearToken(ctx); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}

// HandleUnauthorized is the request client's callback for 401 and 403
// responses. It is a no-op once the session is already signed out.
func (s *AuthService) HandleUnauthorized() {
	if s.session.User() == nil {
		return
	}

	s.session.Clear()
	s.notices.Publish(notify.Notice{
		Kind:    notify.KindSessionExpired,
		Message: SessionExpiredMessage,
		Err:     domain.ErrUnauthorized,
		At:      s.clock.Now(),
	})
}

// TokenClaims reports what the stored token says about itself.
func (s *AuthService) TokenClaims(ctx context.Context) (ports.TokenClaims, error) {
	token, err := s.credentials.Token(ctx)
	if err != nil {
		return ports.TokenClaims{}, fmt.Errorf("read token: %w", err)
	}
	if token == "" {
		return ports.TokenClaims{}, domain.ErrNotLoggedIn
	}

	claims, _ := s.inspect(token)
	return claims, nil
}

func (s *AuthService) RememberedEmail(ctx context.Context) string {
	if s.preferences == nil {
		return ""
	}

	prefs, err := s.preferences.Load(ctx)
	if err != nil {
		s.logger.Debug("load preferences failed", "err", err)
		return ""
	}
	return prefs.LastEmail
}

func (s *AuthService) establish(ctx context.Context, user domain.User) error {
	if !user.IsMember() {
		return fmt.Errorf("%w: %s", domain.ErrRoleNotAllowed, RoleNotAllowedMessage)
	}

	team, err := s.api.MyTeam(ctx)
	if err != nil {
		return err
	}

	s.session.SetUser(&user)
	s.session.SetTeam(&team)

	if !s.session.IsTrialActive() {
		return fmt.Errorf("%w: %s", domain.ErrTrialEnded, TrialEndedMessage)
	}
	return nil
}

func (s *AuthService) abort(ctx context.Context, cause error) error {
	if err := s.Logout(ctx); err != nil {
		return errors.Join(cause, err)
	}
	return cause
}

func (s *AuthService) inspect(token string) (ports.TokenClaims, bool) {
	if s.tokens == nil {
		return ports.TokenClaims{}, false
	}

	claims, err := s.tokens.Inspect(token)
	if err != nil {
		s.logger.Debug("token is not inspectable", "err", err)
		return ports.TokenClaims{}, false
	}
	return claims, true
}

func (s *AuthService) rememberEmail(ctx context.Context, email string) {
	if s.preferences == nil {
		return
	}

	prefs, err := s.preferences.Load(ctx)
	if err != nil {
		s.logger.Debug("load preferences failed", "err", err)
		prefs = domain.Preferences{}
	}
	if prefs.LastEmail == email {
		return
	}

	prefs.LastEmail = email
	if err := s.preferences.Save(ctx, prefs); err != nil {
		s.logger.Warn("save preferences failed", "err", err)
	}
}
