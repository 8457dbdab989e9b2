package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	authadapter "github.com/bnema/teamfocus-cli/internal/adapters/auth"
	"github.com/bnema/teamfocus-cli/internal/adapters/backend"
	"github.com/bnema/teamfocus-cli/internal/adapters/desktop"
	statusadapter "github.com/bnema/teamfocus-cli/internal/adapters/render/status"
	tomlrepo "github.com/bnema/teamfocus-cli/internal/adapters/repo/toml"
	chainstore "github.com/bnema/teamfocus-cli/internal/adapters/secrets/chain"
	filestore "github.com/bnema/teamfocus-cli/internal/adapters/secrets/file"
	passstore "github.com/bnema/teamfocus-cli/internal/adapters/secrets/pass"
	tokenstore "github.com/bnema/teamfocus-cli/internal/adapters/secrets/token"
	"github.com/bnema/teamfocus-cli/internal/application"
	"github.com/bnema/teamfocus-cli/internal/config"
	"github.com/bnema/teamfocus-cli/internal/domain"
	"github.com/bnema/teamfocus-cli/internal/notify"
	"github.com/bnema/teamfocus-cli/internal/ports"
)

type app struct {
	cfg        *config.Config
	logger     *slog.Logger
	clock      ports.Clock
	httpClient *http.Client
	notices    *notify.Bus

	client  *backend.Client
	api     *backend.API
	session *application.SessionStore

	auth     *application.AuthService
	work     *application.WorkService
	profiles *application.ProfileService

	desktop desktopAdapters
	render  renderers
}

// desktopAdapters are the optional OS capabilities. A nil field means the
// platform has none.
type desktopAdapters struct {
	env      desktop.Env
	displays ports.DisplayLister
	capturer ports.ScreenCapturer
	windows  ports.WindowInspector
	privacy  ports.PrivacySettings
}

type renderers struct {
	summary  func(domain.WorkSummary, statusadapter.RenderOptions) (string, error)
	events   func(domain.WorkEventPage, statusadapter.RenderOptions) (string, error)
	profile  func(application.Profile, statusadapter.RenderOptions) (string, error)
	displays func([]domain.Display) (string, error)
}

func wireApp(logOutput io.Writer) (*app, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	cfg, err := config.Load(homeDir)
	if err != nil {
		return nil, err
	}

	logger := cfg.Log.NewLogger(logOutput)
	clock := ports.SystemClock{}
	notices := notify.NewBus()
	httpClient := &http.Client{}

	secrets, err := wireSecretStore(cfg.Secrets, logger)
	if err != nil {
		return nil, fmt.Errorf("wire secret store: %w", err)
	}
	credentials := tokenstore.NewStore(secrets, tokenstore.DefaultKey)

	preferences, err := tomlrepo.NewRepository(cfg.Preferences.Path)
	if err != nil {
		return nil, fmt.Errorf("wire preferences repository: %w", err)
	}

	client := backend.NewClient(backend.Config{
		BaseURL:        cfg.API.BaseURL,
		HTTPClient:     httpClient,
		Credentials:    credentials,
		Clock:          clock,
		Logger:         logger.With("component", "backend"),
		Notices:        notices,
		MaxAttempts:    cfg.API.MaxAttempts,
		RetryBaseDelay: cfg.API.RetryBaseDelay,
		RequestTimeout: cfg.API.RequestTimeout,
		QueueLimit:     cfg.API.QueueLimit,
	})
	api := backend.NewAPI(client)
	session := application.NewSessionStore(clock, logger.With("component", "session"))

	auth := application.NewAuthService(application.AuthServiceConfig{
		API:         api,
		Credentials: credentials,
		Session:     session,
		Preferences: preferences,
		Tokens:      authadapter.NewTokenInspector(),
		Clock:       clock,
		Notices:     notices,
		Logger:      logger.With("component", "auth"),
	})
	client.OnUnauthorized(func(error) { auth.HandleUnauthorized() })

	return &app{
		cfg:        cfg,
		logger:     logger,
		clock:      clock,
		httpClient: httpClient,
		notices:    notices,
		client:     client,
		api:        api,
		session:    session,
		auth:       auth,
		work:       application.NewWorkService(api, session, clock, logger.With("component", "work")),
		profiles:   application.NewProfileService(api, api, session),
		desktop:    wireDesktop(desktop.DetectEnv()),
		render: renderers{
			summary:  statusadapter.Summary,
			events:   statusadapter.Events,
			profile:  statusadapter.Profile,
			displays: statusadapter.Displays,
		},
	}, nil
}

func wireSecretStore(cfg config.SecretsConfig, logger *slog.Logger) (ports.SecretStore, error) {
	switch cfg.Backend {
	case config.SecretsBackendPass:
		return passstore.NewStore(), nil
	case config.SecretsBackendFile:
		return filestore.NewStore(cfg.Dir), nil
	default:
		return chainstore.NewPassFirstWithFileFallback(cfg.Dir, logger.With("component", "secrets"))
	}
}

// wireDesktop leaves every capability nil on platforms without a
// screenshot tool chain.
func wireDesktop(env desktop.Env) desktopAdapters {
	adapters := desktopAdapters{env: env}
	switch env.GOOS {
	case "linux", "darwin":
		adapters.displays = desktop.NewDisplayLister(env)
		adapters.capturer = desktop.NewScreenCapturer(env)
		adapters.windows = desktop.NewWindowInspector(env)
	}
	switch env.GOOS {
	case "linux", "darwin", "windows":
		adapters.privacy = desktop.NewPrivacySettings(env)
	}
	return adapters
}
