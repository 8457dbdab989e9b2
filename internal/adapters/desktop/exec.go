package desktop

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/bnema/teamfocus-cli/internal/domain"
)

type runFunc func(ctx context.Context, name string, args ...string) (stdout []byte, stderr string, err error)

// Env describes the desktop session the adapters run in.
type Env struct {
	GOOS    string
	Wayland bool
}

func DetectEnv() Env {
	return Env{
		GOOS:    runtime.GOOS,
		Wayland: os.Getenv("WAYLAND_DISPLAY") != "",
	}
}

// DisplayServer names the session type the way window tools report it.
func (e Env) DisplayServer() string {
	switch {
	case e.GOOS != "linux":
		return e.GOOS
	case e.Wayland:
		return "wayland"
	default:
		return "x11"
	}
}

// errToolMissing is returned by runCommand when the binary is not on PATH.
// The path is looked up on every call so tools installed after start-up
// are picked up.
type errToolMissing struct {
	tool string
}

func (e errToolMissing) Error() string {
	return fmt.Sprintf("%s is not installed", e.tool)
}

func (e errToolMissing) Is(target error) bool {
	return target == domain.ErrCaptureUnavailable
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, "", errToolMissing{tool: name}
		}
		return nil, "", fmt.Errorf("locate %s: %w", name, err)
	}

	cmd := exec.CommandContext(ctx, path, args...)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	return stdout.Bytes(), strings.TrimSpace(stderr.String()), err
}

func commandError(tool string, err error, stderr string) error {
	if stderr == "" {
		return fmt.Errorf("%s: %w", tool, err)
	}
	return fmt.Errorf("%s: %w: %s", tool, err, stderr)
}
