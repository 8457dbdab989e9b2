package ports

import (
	"context"

	"github.com/bnema/teamfocus-cli/internal/domain"
)

// DisplayLister enumerates the logical displays, primary first.
type DisplayLister interface {
	ListDisplays(ctx context.Context) ([]domain.Display, error)
}

// ScreenCapturer returns PNG bytes for one display. A nil slice with a nil
// error means the platform declined the capture.
type ScreenCapturer interface {
	CaptureDisplay(ctx context.Context, display domain.Display) ([]byte, error)
}

// WindowInspector reports the focused application. A nil context with a nil
// error means no window has focus.
type WindowInspector interface {
	ActiveWindow(ctx context.Context) (*domain.WindowContext, error)
}

// PrivacySettings opens the OS settings pane where screen recording is granted.
type PrivacySettings interface {
	Open(ctx context.Context) error
}
