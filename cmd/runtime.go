package cmd

import (
	"context"
	"time"

	"github.com/bnema/teamfocus-cli/internal/adapters/backend"
	"github.com/bnema/teamfocus-cli/internal/application"
	"github.com/bnema/teamfocus-cli/internal/domain"
	"github.com/sourcegraph/conc"
)

const shutdownTimeout = 10 * time.Second

// clientRuntime owns the background workers of a long-lived `tf run`.
type clientRuntime struct {
	app       *app
	scheduler *application.CaptureScheduler
	heartbeat *application.HeartbeatEmitter
	cancel    context.CancelFunc
	workers   conc.WaitGroup
}

func startClientRuntime(ctx context.Context, app *app) *clientRuntime {
	scheduler := application.NewCaptureScheduler(application.CaptureSchedulerConfig{
		Session:    app.session,
		Displays:   app.desktop.displays,
		Capturer:   app.desktop.capturer,
		Windows:    app.desktop.windows,
		Uploader:   app.api,
		Clock:      app.clock,
		Notices:    app.notices,
		Logger:     app.logger.With("component", "capture"),
		RetryDelay: app.cfg.Capture.RetryDelay,
	})
	heartbeat := application.NewHeartbeatEmitter(app.session, app.api, app.clock, app.cfg.Heartbeat.Interval, app.logger.With("component", "heartbeat"))
	watcher := backend.NewConnectivityWatcher(app.client, app.httpClient, app.clock, app.cfg.Connectivity.ProbeInterval, app.logger.With("component", "connectivity"))

	watchCtx, cancel := context.WithCancel(ctx)
	rt := &clientRuntime{app: app, scheduler: scheduler, heartbeat: heartbeat, cancel: cancel}
	rt.workers.Go(func() { watcher.Run(watchCtx) })

	scheduler.Start()
	heartbeat.Start()
	return rt
}

// shutdown stops an open work session, then drains every worker.
func (r *clientRuntime) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if r.app.session.User() != nil && r.app.session.WorkStatus() != domain.WorkStatusIdle {
		if _, err := r.app.work.Stop(ctx); err != nil {
			r.app.logger.Warn("stop work session on exit", "err", err)
		}
	}

	r.scheduler.Stop()
	r.heartbeat.Stop()
	r.cancel()

	r.workers.Wait()
	r.scheduler.Wait()
	r.heartbeat.Wait()
	r.app.client.WaitReplays()
}
