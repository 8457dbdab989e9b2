// Package config loads the client configuration from an optional TOML file
// and TF_ environment variables using Viper.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DirName  = ".teamfocus"
	FileName = "config.toml"

	envPrefix = "TF"

	SecretsBackendAuto = "auto"
	SecretsBackendPass = "pass"
	SecretsBackendFile = "file"

	LogFormatText = "text"
	LogFormatJSON = "json"
)

type Config struct {
	API          APIConfig          `mapstructure:"api"`
	Capture      CaptureConfig      `mapstructure:"capture"`
	Heartbeat    HeartbeatConfig    `mapstructure:"heartbeat"`
	Connectivity ConnectivityConfig `mapstructure:"connectivity"`
	Secrets      SecretsConfig      `mapstructure:"secrets"`
	Preferences  PreferencesConfig  `mapstructure:"preferences"`
	Log          LogConfig          `mapstructure:"log"`
}

type APIConfig struct {
	// BaseURL may stay empty; requests then fail with a configuration error.
	BaseURL        string        `mapstructure:"base_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxAttempts    int           `mapstructure:"max_attempts"`
	RetryBaseDelay time.Duration `mapstructure:"retry_base_delay"`
	QueueLimit     int           `mapstructure:"queue_limit"`
}

type CaptureConfig struct {
	RetryDelay time.Duration `mapstructure:"retry_delay"`
}

type HeartbeatConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

type ConnectivityConfig struct {
	ProbeInterval time.Duration `mapstructure:"probe_interval"`
}

type SecretsConfig struct {
	Backend string `mapstructure:"backend"`
	Dir     string `mapstructure:"dir"`
}

type PreferencesConfig struct {
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads <home>/.teamfocus/config.toml when present, then applies TF_
// environment overrides (TF_API_BASE_URL, TF_LOG_LEVEL, ...).
func Load(home string) (*Config, error) {
	if home == "" {
		return nil, errors.New("config: home directory is required")
	}

	v := viper.New()
	setDefaults(v, home)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path := filepath.Join(home, DirName, FileName)
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: stat %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}

	cfg.Secrets.Dir = expandHome(cfg.Secrets.Dir, home)
	cfg.Preferences.Path = expandHome(cfg.Preferences.Path, home)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, home string) {
	root := filepath.Join(home, DirName)

	v.SetDefault("api.base_url", "")
	v.SetDefault("api.request_timeout", 30*time.Second)
	v.SetDefault("api.max_attempts", 3)
	v.SetDefault("api.retry_base_delay", time.Second)
	v.SetDefault("api.queue_limit", 200)
	v.SetDefault("capture.retry_delay", 5*time.Second)
	v.SetDefault("heartbeat.interval", 5*time.Minute)
	v.SetDefault("connectivity.probe_interval", 15*time.Second)
	v.SetDefault("secrets.backend", SecretsBackendAuto)
	v.SetDefault("secrets.dir", filepath.Join(root, "secrets"))
	v.SetDefault("preferences.path", filepath.Join(root, "preferences.toml"))
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", LogFormatText)
}

func (c *Config) Validate() error {
	var errs []error

	if c.API.BaseURL != "" {
		parsed, err := url.Parse(c.API.BaseURL)
		if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
			errs = append(errs, fmt.Errorf("config: api.base_url must be an absolute http(s) url, got %q", c.API.BaseURL))
		}
	}
	if c.API.RequestTimeout < 0 {
		errs = append(errs, errors.New("config: api.request_timeout must not be negative"))
	}
	if c.API.MaxAttempts < 1 {
		errs = append(errs, errors.New("config: api.max_attempts must be at least 1"))
	}
	if c.API.RetryBaseDelay <= 0 {
		errs = append(errs, errors.New("config: api.retry_base_delay must be positive"))
	}
	if c.API.QueueLimit < 1 {
		errs = append(errs, errors.New("config: api.queue_limit must be at least 1"))
	}
	if c.Capture.RetryDelay <= 0 {
		errs = append(errs, errors.New("config: capture.retry_delay must be positive"))
	}
	if c.Heartbeat.Interval <= 0 {
		errs = append(errs, errors.New("config: heartbeat.interval must be positive"))
	}
	if c.Connectivity.ProbeInterval <= 0 {
		errs = append(errs, errors.New("config: connectivity.probe_interval must be positive"))
	}

	switch c.Secrets.Backend {
	case SecretsBackendAuto, SecretsBackendPass, SecretsBackendFile:
	default:
		errs = append(errs, fmt.Errorf("config: secrets.backend must be auto, pass or file, got %q", c.Secrets.Backend))
	}
	if c.Secrets.Dir == "" {
		errs = append(errs, errors.New("config: secrets.dir must be set"))
	}
	if c.Preferences.Path == "" {
		errs = append(errs, errors.New("config: preferences.path must be set"))
	}

	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	switch c.Log.Format {
	case LogFormatText, LogFormatJSON:
	default:
		errs = append(errs, fmt.Errorf("config: log.format must be text or json, got %q", c.Log.Format))
	}

	return errors.Join(errs...)
}

func expandHome(path, home string) string {
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}
