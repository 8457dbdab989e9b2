package desktop

import (
	"context"
	"fmt"

	"github.com/bnema/teamfocus-cli/internal/domain"
	"github.com/bnema/teamfocus-cli/internal/ports"
)

const (
	windowsPrivacyURI = "ms-settings:privacy"
	macPrivacyURI     = "x-apple.systempreferences:com.apple.preference.security?Privacy_ScreenCapture"
)

// PrivacySettings opens the OS pane where screen recording is granted.
type PrivacySettings struct {
	env Env
	run runFunc
}

var _ ports.PrivacySettings = (*PrivacySettings)(nil)

func NewPrivacySettings(env Env) *PrivacySettings {
	return &PrivacySettings{env: env, run: runCommand}
}

func (p *PrivacySettings) Open(ctx context.Context) error {
	name, args, err := privacyCommand(p.env.GOOS)
	if err != nil {
		return err
	}

	if _, stderr, err := p.run(ctx, name, args...); err != nil {
		return fmt.Errorf("open privacy settings: %w", commandError(name, err, stderr))
	}
	return nil
}

func privacyCommand(goos string) (string, []string, error) {
	switch goos {
	case "windows":
		return "cmd", []string{"/c", "start", "", windowsPrivacyURI}, nil
	case "darwin":
		return "open", []string{macPrivacyURI}, nil
	case "linux":
		return "gnome-control-center", []string{"privacy"}, nil
	default:
		return "", nil, fmt.Errorf("open privacy settings on %s: %w", goos, domain.ErrCaptureUnavailable)
	}
}
