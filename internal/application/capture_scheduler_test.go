package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bnema/teamfocus-cli/internal/domain"
	"github.com/bnema/teamfocus-cli/internal/notify"
	"github.com/bnema/teamfocus-cli/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticDisplays struct {
	displays []domain.Display
	err      error
}

func (d staticDisplays) ListDisplays(context.Context) ([]domain.Display, error) {
	return d.displays, d.err
}

type scriptedCapturer struct {
	mu       sync.Mutex
	failures map[int]error
	declined map[int]bool
	calls    []int
}

func (c *scriptedCapturer) CaptureDisplay(_ context.Context, display domain.Display) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls = append(c.calls, display.Index)
	if err := c.failures[display.Index]; err != nil {
		return nil, err
	}
	if c.declined[display.Index] {
		return nil, nil
	}
	return []byte(fmt.Sprintf("png-%d", display.Index)), nil
}

func (c *scriptedCapturer) Calls() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]int(nil), c.calls...)
}

type staticWindow struct {
	window *domain.WindowContext
	err    error
}

func (w staticWindow) ActiveWindow(context.Context) (*domain.WindowContext, error) {
	return w.window, w.err
}

type recordingUploader struct {
	mu   sync.Mutex
	logs []domain.ActivityLog
	err  error
}

func (u *recordingUploader) UploadActivityLog(_ context.Context, log domain.ActivityLog) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.err != nil {
		return u.err
	}
	u.logs = append(u.logs, log)
	return nil
}

func (u *recordingUploader) Logs() []domain.ActivityLog {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]domain.ActivityLog(nil), u.logs...)
}

type captureFixture struct {
	clock     *testutil.FakeClock
	session   *SessionStore
	capturer  *scriptedCapturer
	uploader  *recordingUploader
	bus       *notify.Bus
	scheduler *CaptureScheduler
}

func newCaptureFixture(t *testing.T, displays staticDisplays, window staticWindow) *captureFixture {
	t.Helper()

	clock := testutil.NewFakeClock(testEpoch)
	session := NewSessionStore(clock, discardLogger())
	minutes := 5
	session.SetTeam(&domain.Team{ID: "t1", ScreenshotIntervalMinutes: &minutes})

	fixture := &captureFixture{
		clock:    clock,
		session:  session,
		capturer: &scriptedCapturer{failures: map[int]error{}, declined: map[int]bool{}},
		uploader: &recordingUploader{},
		bus:      notify.NewBus(),
	}
	fixture.scheduler = NewCaptureScheduler(CaptureSchedulerConfig{
		Session:  session,
		Displays: displays,
		Capturer: fixture.capturer,
		Windows:  window,
		Uploader: fixture.uploader,
		Clock:    clock,
		Notices:  fixture.bus,
		Logger:   discardLogger(),
	})
	fixture.scheduler.Start()
	t.Cleanup(func() {
		fixture.scheduler.Stop()
		fixture.scheduler.Wait()
	})

	return fixture
}

func (f *captureFixture) startWorking(t *testing.T) {
	t.Helper()
	require.NoError(t, f.session.SetWorkStatus(domain.WorkStatusWorking, f.clock.Now()))
	f.scheduler.Wait()
}

func twoDisplays() staticDisplays {
	return staticDisplays{displays: []domain.Display{
		{Index: 1, ID: "hdmi"},
		{Index: 0, ID: "edp", Primary: true},
	}}
}

func TestCaptureSchedulerIdleDoesNothing(t *testing.T) {
	t.Parallel()

	f := newCaptureFixture(t, twoDisplays(), staticWindow{})

	f.clock.Advance(time.Hour)
	f.scheduler.Wait()

	assert.False(t, f.scheduler.Running())
	assert.Empty(t, f.capturer.Calls())
	assert.Zero(t, f.clock.PendingCount())
}

func TestCaptureSchedulerCapturesImmediatelyThenEveryInterval(t *testing.T) {
	t.Parallel()

	window := &domain.WindowContext{AppName: "Firefox", WindowTitle: "Docs", URL: "https://docs.example.com/a?b=c"}
	f := newCaptureFixture(t, twoDisplays(), staticWindow{window: window})

	f.startWorking(t)

	assert.Equal(t, []int{0, 1}, f.capturer.Calls())
	logs := f.uploader.Logs()
	require.Len(t, logs, 2)
	assert.Equal(t, []byte("png-0"), logs[0].Screenshot)
	assert.Equal(t, "Firefox", logs[0].AppName)
	assert.Equal(t, "Docs", logs[0].WindowTitle)
	assert.Equal(t, "docs.example.com", logs[0].Domain)
	assert.True(t, logs[0].Timestamp.Equal(testEpoch))
	assert.Equal(t, []time.Duration{5 * time.Minute}, f.clock.Requested())

	f.clock.Advance(5 * time.Minute)
	f.scheduler.Wait()

	assert.Equal(t, []int{0, 1, 0, 1}, f.capturer.Calls())
	assert.Len(t, f.uploader.Logs(), 4)
	assert.Equal(t, 1, f.clock.PendingCount())
}

func TestCaptureSchedulerRetriesOnceWhenSecondDisplayFails(t *testing.T) {
	t.Parallel()

	f := newCaptureFixture(t, twoDisplays(), staticWindow{})
	f.capturer.failures[1] = fmt.Errorf("capture display 1: %w", domain.ErrCaptureUnavailable)

	f.startWorking(t)

	assert.Equal(t, []int{0, 1}, f.capturer.Calls())
	assert.Equal(t, []time.Duration{5 * time.Minute, 5 * time.Second}, f.clock.Requested())
	assert.Equal(t, 2, f.clock.PendingCount())

	f.clock.Advance(4999 * time.Millisecond)
	f.scheduler.Wait()
	assert.Equal(t, []int{0, 1}, f.capturer.Calls())

	f.clock.Advance(time.Millisecond)
	f.scheduler.Wait()

	assert.Equal(t, []int{0, 1, 0, 1}, f.capturer.Calls())
	assert.Equal(t, []time.Duration{5 * time.Minute, 5 * time.Second}, f.clock.Requested())
	assert.Equal(t, 1, f.clock.PendingCount())
	assert.Len(t, f.uploader.Logs(), 2)
}

func TestCaptureSchedulerFailureAbortsRemainingDisplays(t *testing.T) {
	t.Parallel()

	f := newCaptureFixture(t, twoDisplays(), staticWindow{})
	f.capturer.failures[0] = errors.New("boom")

	f.startWorking(t)

	assert.Equal(t, []int{0}, f.capturer.Calls())
	assert.Empty(t, f.uploader.Logs())
}

func TestCaptureSchedulerSuccessResetsRetryBudget(t *testing.T) {
	t.Parallel()

	f := newCaptureFixture(t, staticDisplays{}, staticWindow{})
	f.uploader.err = fmt.Errorf("upload: %w", domain.ErrNetwork)

	f.startWorking(t)
	require.Equal(t, 2, f.clock.PendingCount())

	f.uploader.mu.Lock()
	f.uploader.err = nil
	f.uploader.mu.Unlock()

	f.clock.Advance(5 * time.Second)
	f.scheduler.Wait()
	require.Len(t, f.uploader.Logs(), 1)

	f.uploader.mu.Lock()
	f.uploader.err = fmt.Errorf("upload: %w", domain.ErrNetwork)
	f.uploader.mu.Unlock()

	f.clock.Advance(5*time.Minute - 5*time.Second)
	f.scheduler.Wait()

	assert.Equal(t, []time.Duration{
		5 * time.Minute, 5 * time.Second, 5 * time.Minute, 5 * time.Second,
	}, f.clock.Requested())
}

func TestCaptureSchedulerDeclinedCaptureIsSkipped(t *testing.T) {
	t.Parallel()

	f := newCaptureFixture(t, twoDisplays(), staticWindow{})
	f.capturer.declined[0] = true

	f.startWorking(t)

	assert.Equal(t, []int{0, 1}, f.capturer.Calls())
	logs := f.uploader.Logs()
	require.Len(t, logs, 1)
	assert.Equal(t, []byte("png-1"), logs[0].Screenshot)
	assert.Equal(t, 1, f.clock.PendingCount())
}

func TestCaptureSchedulerFallsBackToPrimaryDisplay(t *testing.T) {
	t.Parallel()

	f := newCaptureFixture(t, staticDisplays{err: errors.New("xrandr missing")}, staticWindow{err: errors.New("no xdotool")})

	f.startWorking(t)

	assert.Equal(t, []int{0}, f.capturer.Calls())
	logs := f.uploader.Logs()
	require.Len(t, logs, 1)
	assert.Empty(t, logs[0].AppName)
	assert.Empty(t, logs[0].Domain)
}

func TestCaptureSchedulerSkipsWhenTrialEnded(t *testing.T) {
	t.Parallel()

	f := newCaptureFixture(t, twoDisplays(), staticWindow{})
	ended := testEpoch.Add(-time.Minute)
	f.session.SetTeam(&domain.Team{ID: "t1", TrialEndsAt: &ended})

	f.startWorking(t)

	assert.Empty(t, f.capturer.Calls())
	assert.True(t, f.scheduler.Running())
}

func TestCaptureSchedulerStopsWhenLeavingWorking(t *testing.T) {
	t.Parallel()

	f := newCaptureFixture(t, twoDisplays(), staticWindow{})
	f.capturer.failures[1] = errors.New("boom")

	f.startWorking(t)
	require.Equal(t, 2, f.clock.PendingCount())

	require.NoError(t, f.session.SetWorkStatus(domain.WorkStatusPaused, time.Time{}))

	assert.False(t, f.scheduler.Running())
	assert.Zero(t, f.clock.PendingCount())

	f.clock.Advance(time.Hour)
	f.scheduler.Wait()
	assert.Equal(t, []int{0, 1}, f.capturer.Calls())
}

func TestCaptureSchedulerTeamChangeRearmsInterval(t *testing.T) {
	t.Parallel()

	f := newCaptureFixture(t, staticDisplays{}, staticWindow{})
	f.startWorking(t)

	minutes := 0
	f.session.SetTeam(&domain.Team{ID: "t1", ScreenshotIntervalMinutes: &minutes})

	assert.Equal(t, []time.Duration{5 * time.Minute, time.Minute}, f.clock.Requested())
	assert.Equal(t, 1, f.clock.PendingCount())

	f.clock.Advance(time.Minute)
	f.scheduler.Wait()
	assert.Equal(t, []int{0, 0}, f.capturer.Calls())
}

func TestCaptureSchedulerPublishesPermissionNotice(t *testing.T) {
	t.Parallel()

	f := newCaptureFixture(t, staticDisplays{}, staticWindow{})
	notices, cancel := f.bus.Subscribe()
	defer cancel()
	f.capturer.failures[0] = fmt.Errorf("grim: %w", domain.ErrPermissionDenied)

	f.startWorking(t)

	select {
	case notice := <-notices:
		assert.Equal(t, notify.KindCaptureFailed, notice.Kind)
		assert.Equal(t, notify.RemediationOpenPrivacySettings, notice.Remediation)
		assert.Equal(t, capturePermissionMessage, notice.Message)
		assert.ErrorIs(t, notice.Err, domain.ErrPermissionDenied)
	default:
		t.Fatal("expected a capture notice")
	}
}

func TestCaptureSchedulerClearStopsCapture(t *testing.T) {
	t.Parallel()

	f := newCaptureFixture(t, staticDisplays{}, staticWindow{})
	f.startWorking(t)
	require.True(t, f.scheduler.Running())

	f.session.Clear()

	assert.False(t, f.scheduler.Running())
	assert.Zero(t, f.clock.PendingCount())
}
