package desktop

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bnema/teamfocus-cli/internal/domain"
	"github.com/bnema/teamfocus-cli/internal/ports"
)

const (
	frontAppScript   = `tell application "System Events" to get name of first application process whose frontmost is true`
	frontTitleScript = `tell application "System Events" to tell (first application process whose frontmost is true) to get name of front window`
)

// browserURLScripts read the address of the front tab for browsers that
// expose it over AppleScript.
var browserURLScripts = map[string]string{
	"Safari":         `tell application "Safari" to get URL of front document`,
	"Google Chrome":  `tell application "Google Chrome" to get URL of active tab of front window`,
	"Brave Browser":  `tell application "Brave Browser" to get URL of active tab of front window`,
	"Microsoft Edge": `tell application "Microsoft Edge" to get URL of active tab of front window`,
	"Arc":            `tell application "Arc" to get URL of active tab of front window`,
}

type WindowInspector struct {
	env      Env
	run      runFunc
	procRoot string
}

var _ ports.WindowInspector = (*WindowInspector)(nil)

func NewWindowInspector(env Env) *WindowInspector {
	return &WindowInspector{env: env, run: runCommand, procRoot: "/proc"}
}

func (w *WindowInspector) ActiveWindow(ctx context.Context) (*domain.WindowContext, error) {
	switch {
	case w.env.GOOS == "linux" && w.env.Wayland:
		return w.activeSway(ctx)
	case w.env.GOOS == "linux":
		return w.activeX11(ctx)
	case w.env.GOOS == "darwin":
		return w.activeDarwin(ctx)
	default:
		return nil, fmt.Errorf("active window on %s: %w", w.env.GOOS, domain.ErrCaptureUnavailable)
	}
}

func (w *WindowInspector) activeX11(ctx context.Context) (*domain.WindowContext, error) {
	title, stderr, err := w.run(ctx, "xdotool", "getactivewindow", "getwindowname")
	if err != nil {
		if stderr == "" {
			return nil, commandError("xdotool", err, stderr)
		}
		// xdotool exits non-zero when nothing has focus.
		return nil, nil
	}

	window := &domain.WindowContext{WindowTitle: strings.TrimSpace(string(title))}

	pid, _, err := w.run(ctx, "xdotool", "getactivewindow", "getwindowpid")
	if err == nil {
		window.AppName = w.processName(strings.TrimSpace(string(pid)))
	}
	return window, nil
}

func (w *WindowInspector) processName(pid string) string {
	if _, err := strconv.Atoi(pid); err != nil {
		return ""
	}
	comm, err := os.ReadFile(filepath.Join(w.procRoot, pid, "comm"))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(comm))
}

type swayNode struct {
	Name             string `json:"name"`
	AppID            string `json:"app_id"`
	Focused          bool   `json:"focused"`
	Type             string `json:"type"`
	WindowProperties *struct {
		Class string `json:"class"`
	} `json:"window_properties"`
	Nodes         []swayNode `json:"nodes"`
	FloatingNodes []swayNode `json:"floating_nodes"`
}

func (w *WindowInspector) activeSway(ctx context.Context) (*domain.WindowContext, error) {
	stdout, stderr, err := w.run(ctx, "swaymsg", "-t", "get_tree", "-r")
	if err != nil {
		return nil, commandError("swaymsg", err, stderr)
	}

	var root swayNode
	if err := json.Unmarshal(stdout, &root); err != nil {
		return nil, fmt.Errorf("decode sway tree: %w", err)
	}

	focused := findFocused(root)
	if focused == nil || focused.Type == "workspace" || focused.Type == "output" || focused.Type == "root" {
		return nil, nil
	}

	appName := focused.AppID
	if appName == "" && focused.WindowProperties != nil {
		appName = focused.WindowProperties.Class
	}
	return &domain.WindowContext{AppName: appName, WindowTitle: focused.Name}, nil
}

func findFocused(node swayNode) *swayNode {
	if node.Focused {
		return &node
	}
	for _, children := range [][]swayNode{node.Nodes, node.FloatingNodes} {
		for _, child := range children {
			if found := findFocused(child); found != nil {
				return found
			}
		}
	}
	return nil
}

func (w *WindowInspector) activeDarwin(ctx context.Context) (*domain.WindowContext, error) {
	app, stderr, err := w.run(ctx, "osascript", "-e", frontAppScript)
	if err != nil {
		return nil, commandError("osascript", err, stderr)
	}

	appName := strings.TrimSpace(string(app))
	if appName == "" {
		return nil, nil
	}
	window := &domain.WindowContext{AppName: appName}

	if title, _, err := w.run(ctx, "osascript", "-e", frontTitleScript); err == nil {
		window.WindowTitle = strings.TrimSpace(string(title))
	}
	if script, ok := browserURLScripts[appName]; ok {
		if url, _, err := w.run(ctx, "osascript", "-e", script); err == nil {
			window.URL = strings.TrimSpace(string(url))
		}
	}
	return window, nil
}
