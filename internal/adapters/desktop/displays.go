package desktop

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/bnema/teamfocus-cli/internal/domain"
	"github.com/bnema/teamfocus-cli/internal/ports"
)

// boundsTolerance absorbs rounding between tools that report scaled sizes.
const boundsTolerance = 2

var (
	xrandrMonitorPattern = regexp.MustCompile(`^\s*\d+:\s+\+?(\*?)(\S+)\s+(\d+)/\d+x(\d+)/\d+\+(-?\d+)\+(-?\d+)`)
	resolutionPattern    = regexp.MustCompile(`(\d+)\s*x\s*(\d+)`)
)

// NativeScreen is a screen as named by the capture tool.
type NativeScreen struct {
	ID     string
	Bounds domain.Bounds
}

type DisplayLister struct {
	env Env
	run runFunc
}

var _ ports.DisplayLister = (*DisplayLister)(nil)

func NewDisplayLister(env Env) *DisplayLister {
	return &DisplayLister{env: env, run: runCommand}
}

func (l *DisplayLister) ListDisplays(ctx context.Context) ([]domain.Display, error) {
	var (
		displays []domain.Display
		err      error
	)

	switch l.env.GOOS {
	case "linux":
		displays, err = l.listLinux(ctx)
	case "darwin":
		displays, err = l.listDarwin(ctx)
	default:
		return nil, fmt.Errorf("list displays on %s: %w", l.env.GOOS, domain.ErrCaptureUnavailable)
	}
	if err != nil {
		return nil, err
	}

	return orderDisplays(displays), nil
}

func (l *DisplayLister) listLinux(ctx context.Context) ([]domain.Display, error) {
	stdout, stderr, err := l.run(ctx, "xrandr", "--listmonitors")
	var monitors []domain.Display
	if err == nil {
		monitors = parseXrandrMonitors(string(stdout))
	}

	if !l.env.Wayland {
		if err != nil {
			return nil, commandError("xrandr", err, stderr)
		}
		return monitors, nil
	}

	outputs, werr := l.waylandOutputs(ctx)
	switch {
	case werr == nil && len(monitors) == 0:
		displays := make([]domain.Display, 0, len(outputs))
		for i, output := range outputs {
			displays = append(displays, domain.Display{
				ID:             output.ID,
				Bounds:         output.Bounds,
				ScaleFactor:    1,
				Primary:        i == 0,
				NativeScreenID: output.ID,
			})
		}
		return displays, nil
	case werr == nil:
		return MatchNativeScreens(monitors, outputs), nil
	case err == nil:
		return monitors, nil
	default:
		return nil, commandError("xrandr", err, stderr)
	}
}

type wlrOutput struct {
	Name     string  `json:"name"`
	Enabled  bool    `json:"enabled"`
	Scale    float64 `json:"scale"`
	Position struct {
		X int `json:"x"`
		Y int `json:"y"`
	} `json:"position"`
	Modes []struct {
		Width   int  `json:"width"`
		Height  int  `json:"height"`
		Current bool `json:"current"`
	} `json:"modes"`
}

func (l *DisplayLister) waylandOutputs(ctx context.Context) ([]NativeScreen, error) {
	stdout, stderr, err := l.run(ctx, "wlr-randr", "--json")
	if err != nil {
		return nil, commandError("wlr-randr", err, stderr)
	}
	return parseWlrOutputs(stdout)
}

func parseWlrOutputs(raw []byte) ([]NativeScreen, error) {
	var outputs []wlrOutput
	if err := json.Unmarshal(raw, &outputs); err != nil {
		return nil, fmt.Errorf("decode wlr-randr output: %w", err)
	}

	screens := make([]NativeScreen, 0, len(outputs))
	for _, output := range outputs {
		if !output.Enabled {
			continue
		}
		scale := output.Scale
		if scale <= 0 {
			scale = 1
		}
		for _, mode := range output.Modes {
			if !mode.Current {
				continue
			}
			screens = append(screens, NativeScreen{
				ID: output.Name,
				Bounds: domain.Bounds{
					X:      output.Position.X,
					Y:      output.Position.Y,
					Width:  int(math.Round(float64(mode.Width) / scale)),
					Height: int(math.Round(float64(mode.Height) / scale)),
				},
			})
			break
		}
	}
	return screens, nil
}

func parseXrandrMonitors(output string) []domain.Display {
	var displays []domain.Display
	for _, line := range strings.Split(output, "\n") {
		match := xrandrMonitorPattern.FindStringSubmatch(line)
		if match == nil {
			continue
		}

		width, _ := strconv.Atoi(match[3])
		height, _ := strconv.Atoi(match[4])
		x, _ := strconv.Atoi(match[5])
		y, _ := strconv.Atoi(match[6])

		displays = append(displays, domain.Display{
			ID:          match[2],
			Bounds:      domain.Bounds{X: x, Y: y, Width: width, Height: height},
			ScaleFactor: 1,
			Primary:     match[1] == "*",
		})
	}
	return displays
}

type systemProfilerDisplays struct {
	Adapters []struct {
		Displays []struct {
			Name       string `json:"_name"`
			DisplayID  string `json:"_spdisplays_displayID"`
			Resolution string `json:"_spdisplays_resolution"`
			Pixels     string `json:"_spdisplays_pixels"`
			Main       string `json:"spdisplays_main"`
		} `json:"spdisplays_ndrvs"`
	} `json:"SPDisplaysDataType"`
}

func (l *DisplayLister) listDarwin(ctx context.Context) ([]domain.Display, error) {
	stdout, stderr, err := l.run(ctx, "system_profiler", "SPDisplaysDataType", "-json")
	if err != nil {
		return nil, commandError("system_profiler", err, stderr)
	}
	return parseSystemProfiler(stdout)
}

func parseSystemProfiler(raw []byte) ([]domain.Display, error) {
	var report systemProfilerDisplays
	if err := json.Unmarshal(raw, &report); err != nil {
		return nil, fmt.Errorf("decode system_profiler output: %w", err)
	}

	var displays []domain.Display
	for _, adapter := range report.Adapters {
		for _, d := range adapter.Displays {
			width, height := parseResolution(d.Resolution)
			display := domain.Display{
				ID:          d.DisplayID,
				Bounds:      domain.Bounds{Width: width, Height: height},
				ScaleFactor: 1,
				Primary:     d.Main == "spdisplays_yes",
			}
			if display.ID == "" {
				display.ID = d.Name
			}
			if pixelWidth, _ := parseResolution(d.Pixels); pixelWidth > 0 && width > 0 {
				display.ScaleFactor = float64(pixelWidth) / float64(width)
			}
			displays = append(displays, display)
		}
	}
	return displays, nil
}

func parseResolution(raw string) (int, int) {
	match := resolutionPattern.FindStringSubmatch(raw)
	if match == nil {
		return 0, 0
	}
	width, _ := strconv.Atoi(match[1])
	height, _ := strconv.Atoi(match[2])
	return width, height
}

// MatchNativeScreens records the capture tool's id on every display whose
// bounds agree with a native screen within boundsTolerance pixels.
func MatchNativeScreens(displays []domain.Display, native []NativeScreen) []domain.Display {
	matched := make([]domain.Display, len(displays))
	for i, display := range displays {
		matched[i] = display
		for _, screen := range native {
			if boundsClose(display.Bounds, screen.Bounds) {
				matched[i].NativeScreenID = screen.ID
				break
			}
		}
	}
	return matched
}

func boundsClose(a, b domain.Bounds) bool {
	return absInt(a.X-b.X) <= boundsTolerance &&
		absInt(a.Y-b.Y) <= boundsTolerance &&
		absInt(a.Width-b.Width) <= boundsTolerance &&
		absInt(a.Height-b.Height) <= boundsTolerance
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// orderDisplays puts the primary display first, keeps the rest in reported
// order and renumbers indexes from zero. Exactly one display ends up primary.
func orderDisplays(displays []domain.Display) []domain.Display {
	ordered := append([]domain.Display(nil), displays...)

	primary := -1
	for i, display := range ordered {
		if display.Primary && primary < 0 {
			primary = i
		}
		ordered[i].Primary = false
	}
	if primary < 0 && len(ordered) > 0 {
		primary = 0
	}
	if primary >= 0 {
		ordered[primary].Primary = true
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Primary && !ordered[j].Primary
	})
	for i := range ordered {
		ordered[i].Index = i
	}
	return ordered
}
