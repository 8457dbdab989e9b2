package application

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/bnema/teamfocus-cli/internal/domain"
	"github.com/bnema/teamfocus-cli/internal/notify"
	"github.com/bnema/teamfocus-cli/internal/ports"
)

const (
	DefaultCaptureRetryDelay = 5 * time.Second
	maxCaptureRetries        = 1

	capturePermissionMessage  = "TeamFocus can't capture screenshots yet. Please allow screen recording in system settings, then try again."
	captureUnavailableMessage = "Screenshot capture failed because a required capture tool is missing. Install one, then try again."
	captureGenericMessage     = "Screenshot capture failed. Please try again."
)

type CaptureSchedulerConfig struct {
	Session  *SessionStore
	Displays ports.DisplayLister
	Capturer ports.ScreenCapturer
	Windows  ports.WindowInspector
	Uploader ports.ActivityUploader
	Clock    ports.Clock
	Notices  *notify.Bus
	Logger   *slog.Logger

	RetryDelay time.Duration
}

// CaptureScheduler uploads one screenshot per display on every tick while
// the session is working. Displays and Windows are optional.
type CaptureScheduler struct {
	session  *SessionStore
	displays ports.DisplayLister
	capturer ports.ScreenCapturer
	windows  ports.WindowInspector
	uploader ports.ActivityUploader
	clock    ports.Clock
	notices  *notify.Bus
	logger   *slog.Logger

	retryDelay time.Duration

	mu           sync.Mutex
	running      bool
	generation   uint64
	retries      int
	periodic     ports.Timer
	retry        ports.Timer
	unsubscribes []func()

	cycles conc.WaitGroup
}

func NewCaptureScheduler(cfg CaptureSchedulerConfig) *CaptureScheduler {
	if cfg.Clock == nil {
		cfg.Clock = ports.SystemClock{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultCaptureRetryDelay
	}

	return &CaptureScheduler{
		session:    cfg.Session,
		displays:   cfg.Displays,
		capturer:   cfg.Capturer,
		windows:    cfg.Windows,
		uploader:   cfg.Uploader,
		clock:      cfg.Clock,
		notices:    cfg.Notices,
		logger:     cfg.Logger,
		retryDelay: cfg.RetryDelay,
	}
}

// Start follows the session's work status and team until Stop.
func (s *CaptureScheduler) Start() {
	s.mu.Lock()
	s.unsubscribes = append(s.unsubscribes,
		s.session.SubscribeWorkStatus(func(status domain.WorkStatus, _ *time.Time) { s.onWorkStatus(status) }),
		s.session.SubscribeTeam(func(*domain.Team) { s.onTeam() }),
	)
	s.mu.Unlock()

	s.onWorkStatus(s.session.WorkStatus())
}

func (s *CaptureScheduler) Stop() {
	s.mu.Lock()
	unsubscribes := s.unsubscribes
	s.unsubscribes = nil
	s.haltLocked()
	s.mu.Unlock()

	for _, unsubscribe := range unsubscribes {
		unsubscribe()
	}
}

// Wait blocks until every cycle started so far has finished.
func (s *CaptureScheduler) Wait() {
	s.cycles.Wait()
}

func (s *CaptureScheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *CaptureScheduler) onWorkStatus(status domain.WorkStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case status == domain.WorkStatusWorking && !s.running:
		s.running = true
		s.generation++
		s.retries = 0
		s.armPeriodicLocked(s.generation)
		s.launchLocked(s.generation)
	case status != domain.WorkStatusWorking && s.running:
		s.haltLocked()
	}
}

func (s *CaptureScheduler) onTeam() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	if s.periodic != nil {
		s.periodic.Stop()
	}
	s.armPeriodicLocked(s.generation)
}

func (s *CaptureScheduler) haltLocked() {
	s.running = false
	s.generation++
	s.retries = 0
	if s.periodic != nil {
		s.periodic.Stop()
		s.periodic = nil
	}
	if s.retry != nil {
		s.retry.Stop()
		s.retry = nil
	}
}

func (s *CaptureScheduler) armPeriodicLocked(generation uint64) {
	interval := domain.Team{}.ScreenshotInterval()
	if team := s.session.Team(); team != nil {
		interval = team.ScreenshotInterval()
	}

	s.periodic = s.clock.AfterFunc(interval, func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		if !s.currentLocked(generation) {
			return
		}
		s.armPeriodicLocked(generation)
		s.launchLocked(generation)
	})
}

func (s *CaptureScheduler) launchLocked(generation uint64) {
	s.cycles.Go(func() {
		s.runCycle(context.Background(), generation)
	})
}

func (s *CaptureScheduler) currentLocked(generation uint64) bool {
	return s.running && s.generation == generation
}

func (s *CaptureScheduler) current(generation uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentLocked(generation)
}

func (s *CaptureScheduler) runCycle(ctx context.Context, generation uint64) {
	if s.session.WorkStatus() != domain.WorkStatusWorking || !s.session.IsTrialActive() {
		return
	}
	if s.capturer == nil || s.uploader == nil {
		return
	}

	displays, window := s.gather(ctx)

	for _, display := range displays {
		if !s.current(generation) {
			return
		}

		shot, err := s.capturer.CaptureDisplay(ctx, display)
		if err != nil {
			s.logger.Warn("screen capture failed", "display", display.Index, "err", err)
			s.publishCaptureFailure(err)
			s.onHardFailure(generation)
			return
		}
		if len(shot) == 0 {
			s.logger.Debug("screen capture declined", "display", display.Index)
			continue
		}

		log := domain.NewActivityLog(shot, window, s.clock.Now())
		if err := s.uploader.UploadActivityLog(ctx, log); err != nil {
			s.logger.Warn("activity log upload failed", "display", display.Index, "err", err)
			s.onHardFailure(generation)
			return
		}
	}

	s.mu.Lock()
	if s.currentLocked(generation) {
		s.retries = 0
	}
	s.mu.Unlock()
}

// gather reads the display list and the focused window concurrently.
// A missing or failing display list falls back to the primary display.
func (s *CaptureScheduler) gather(ctx context.Context) ([]domain.Display, *domain.WindowContext) {
	var displays []domain.Display
	var window *domain.WindowContext

	var wg conc.WaitGroup
	if s.displays != nil {
		wg.Go(func() {
			listed, err := s.displays.ListDisplays(ctx)
			if err != nil {
				s.logger.Debug("list displays failed", "err", err)
				return
			}
			displays = listed
		})
	}
	if s.windows != nil {
		wg.Go(func() {
			active, err := s.windows.ActiveWindow(ctx)
			if err != nil {
				s.logger.Debug("active window lookup failed", "err", err)
				return
			}
			window = active
		})
	}
	wg.Wait()

	if len(displays) == 0 {
		return []domain.Display{{Index: 0, Primary: true}}, window
	}

	sorted := append([]domain.Display(nil), displays...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Index < sorted[j].Index
	})
	return sorted, window
}

func (s *CaptureScheduler) onHardFailure(generation uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.currentLocked(generation) {
		return
	}
	if s.retries >= maxCaptureRetries {
		s.logger.Info("capture cycle failed again, waiting for next tick")
		return
	}

	s.retries++
	s.retry = s.clock.AfterFunc(s.retryDelay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		if !s.currentLocked(generation) {
			return
		}
		s.retry = nil
		s.launchLocked(generation)
	})
}

func (s *CaptureScheduler) publishCaptureFailure(err error) {
	notice := notify.Notice{
		Kind:    notify.KindCaptureFailed,
		Message: captureGenericMessage,
		Err:     err,
		At:      s.clock.Now(),
	}

	switch {
	case errors.Is(err, domain.ErrPermissionDenied):
		notice.Message = capturePermissionMessage
		notice.Remediation = notify.RemediationOpenPrivacySettings
	case errors.Is(err, domain.ErrCaptureUnavailable):
		notice.Message = captureUnavailableMessage
	}

	s.notices.Publish(notice)
}
