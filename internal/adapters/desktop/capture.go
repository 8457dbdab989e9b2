package desktop

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/bnema/teamfocus-cli/internal/domain"
	"github.com/bnema/teamfocus-cli/internal/ports"
)

var permissionHints = []string{"permission", "denied", "not authorized", "not permitted", "access"}

// ScreenCapturer shells out to the platform screenshot tool: grim on
// Wayland, ImageMagick import on X11, screencapture on macOS.
type ScreenCapturer struct {
	env     Env
	run     runFunc
	tempDir string
}

var _ ports.ScreenCapturer = (*ScreenCapturer)(nil)

func NewScreenCapturer(env Env) *ScreenCapturer {
	return &ScreenCapturer{env: env, run: runCommand}
}

func (c *ScreenCapturer) CaptureDisplay(ctx context.Context, display domain.Display) ([]byte, error) {
	switch {
	case c.env.GOOS == "linux" && c.env.Wayland:
		return c.capture(ctx, "grim", grimArgs(display)...)
	case c.env.GOOS == "linux":
		return c.capture(ctx, "import", importArgs(display)...)
	case c.env.GOOS == "darwin":
		return c.captureDarwin(ctx, display)
	default:
		return nil, fmt.Errorf("capture display %d on %s: %w", display.Index, c.env.GOOS, domain.ErrCaptureUnavailable)
	}
}

func (c *ScreenCapturer) capture(ctx context.Context, tool string, args ...string) ([]byte, error) {
	stdout, stderr, err := c.run(ctx, tool, args...)
	if err != nil {
		return nil, classifyCaptureError(tool, err, stderr)
	}
	if len(stdout) == 0 {
		return nil, nil
	}
	return stdout, nil
}

// captureDarwin writes through a temp file: screencapture has no stdout mode.
func (c *ScreenCapturer) captureDarwin(ctx context.Context, display domain.Display) ([]byte, error) {
	file, err := os.CreateTemp(c.tempDir, "tf-capture-*.png")
	if err != nil {
		return nil, fmt.Errorf("create capture file: %w", err)
	}
	path := file.Name()
	_ = file.Close()
	defer os.Remove(path)

	_, stderr, err := c.run(ctx, "screencapture", "-x", "-t", "png", "-D", strconv.Itoa(display.Index+1), path)
	if err != nil {
		return nil, classifyCaptureError("screencapture", err, stderr)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read capture file: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	return data, nil
}

func grimArgs(display domain.Display) []string {
	switch {
	case display.NativeScreenID != "":
		return []string{"-t", "png", "-o", display.NativeScreenID, "-"}
	case display.Bounds.Width > 0 && display.Bounds.Height > 0:
		geometry := fmt.Sprintf("%d,%d %dx%d", display.Bounds.X, display.Bounds.Y, display.Bounds.Width, display.Bounds.Height)
		return []string{"-t", "png", "-g", geometry, "-"}
	default:
		return []string{"-t", "png", "-"}
	}
}

func importArgs(display domain.Display) []string {
	args := []string{"-silent", "-window", "root"}
	if display.Bounds.Width > 0 && display.Bounds.Height > 0 {
		crop := fmt.Sprintf("%dx%d%+d%+d", display.Bounds.Width, display.Bounds.Height, display.Bounds.X, display.Bounds.Y)
		args = append(args, "-crop", crop, "+repage")
	}
	return append(args, "png:-")
}

// classifyCaptureError maps tool failures onto the capture taxonomy: a
// missing binary is unavailable, anything mentioning access is a permission
// problem, the rest keeps the tool's own message.
func classifyCaptureError(tool string, err error, stderr string) error {
	var missing errToolMissing
	if errors.As(err, &missing) {
		return fmt.Errorf("capture with %s: %w", tool, err)
	}

	lower := strings.ToLower(stderr + " " + err.Error())
	for _, hint := range permissionHints {
		if strings.Contains(lower, hint) {
			return fmt.Errorf("capture with %s: %w: %s", tool, domain.ErrPermissionDenied, strings.TrimSpace(stderr))
		}
	}

	return fmt.Errorf("capture with %s: %w", tool, commandError(tool, err, stderr))
}
