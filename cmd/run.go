package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bnema/teamfocus-cli/internal/application"
	"github.com/bnema/teamfocus-cli/internal/domain"
	"github.com/bnema/teamfocus-cli/internal/notify"
	"github.com/spf13/cobra"
)

func newRunCmd(app *app) *cobra.Command {
	var headless bool
	var start bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the tracking client (dashboard or headless)",
		Long:  "run restores the stored session, then follows the work status: screenshots are uploaded on the team's interval and heartbeats sent while working. Exiting stops an open work session first.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if _, err := app.auth.RestoreSession(ctx); err != nil {
				if errors.Is(err, domain.ErrNotLoggedIn) {
					return fmt.Errorf("%w: run `tf login`", err)
				}
				return err
			}

			rt := startClientRuntime(ctx, app)
			defer rt.shutdown()

			if start {
				if _, err := app.work.Start(ctx); err != nil {
					return err
				}
			}

			if headless {
				return runHeadless(ctx, app)
			}
			return runDashboard(ctx, cmd, app)
		},
	}

	cmd.Flags().BoolVar(&headless, "headless", false, "Log status changes instead of showing the dashboard")
	cmd.Flags().BoolVar(&start, "start", false, "Start a work session right away")

	return cmd
}

// runHeadless logs notices and status changes until ctx is done or the
// session ends.
func runHeadless(ctx context.Context, app *app) error {
	notices, cancelNotices := app.notices.Subscribe()
	defer cancelNotices()

	signedOut := make(chan struct{}, 1)
	unsubscribeUser := app.session.SubscribeUser(func(user *domain.User) {
		if user == nil {
			select {
			case signedOut <- struct{}{}:
			default:
			}
		}
	})
	defer unsubscribeUser()

	unsubscribeStatus := app.session.SubscribeWorkStatus(func(status domain.WorkStatus, _ *time.Time) {
		app.logger.Info("work status changed", "status", status)
	})
	defer unsubscribeStatus()

	unsubscribeOffline := app.client.SubscribeOffline(func(offline bool) {
		app.logger.Info("connectivity changed", "offline", offline)
	})
	defer unsubscribeOffline()

	app.logger.Info("tracking client running", "status", app.session.WorkStatus())
	for {
		select {
		case <-ctx.Done():
			app.logger.Info("shutting down")
			return nil
		case <-signedOut:
			return errors.New(application.SessionExpiredMessage)
		case notice, ok := <-notices:
			if !ok {
				return nil
			}
			logNotice(app, notice)
		}
	}
}

func logNotice(app *app, notice notify.Notice) {
	attrs := []any{"kind", notice.Kind}
	if notice.Err != nil {
		attrs = append(attrs, "err", notice.Err)
	}
	if notice.Remediation == notify.RemediationOpenPrivacySettings {
		attrs = append(attrs, "remediation", "grant screen recording in the OS privacy settings")
	}
	app.logger.Warn(notice.Message, attrs...)
}
