package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	statusadapter "github.com/bnema/teamfocus-cli/internal/adapters/render/status"
	"github.com/bnema/teamfocus-cli/internal/application"
	"github.com/bnema/teamfocus-cli/internal/domain"
	"github.com/bnema/teamfocus-cli/internal/notify"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

const (
	dashboardTick       = time.Second
	dashboardNoticeKeep = 10
)

type (
	tickMsg      time.Time
	noticeMsg    notify.Notice
	offlineMsg   bool
	statusMsg    struct{}
	signedOutMsg struct{}
	actionMsg    struct {
		label string
		err   error
	}
)

type dashboardModel struct {
	ctx     context.Context
	app     *app
	notices <-chan notify.Notice

	now       time.Time
	offline   bool
	log       []notify.Notice
	busy      string
	err       string
	signedOut bool
}

func newDashboardModel(ctx context.Context, app *app, notices <-chan notify.Notice) dashboardModel {
	return dashboardModel{
		ctx:     ctx,
		app:     app,
		notices: notices,
		now:     app.clock.Now(),
		offline: app.client.IsOffline(),
	}
}

func (m dashboardModel) Init() tea.Cmd {
	return tea.Batch(tickEvery(), waitForNotice(m.notices))
}

func tickEvery() tea.Cmd {
	return tea.Tick(dashboardTick, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func waitForNotice(notices <-chan notify.Notice) tea.Cmd {
	return func() tea.Msg {
		notice, ok := <-notices
		if !ok {
			return nil
		}
		return noticeMsg(notice)
	}
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.now = m.app.clock.Now()
		return m, tickEvery()
	case noticeMsg:
		m.log = append(m.log, notify.Notice(msg))
		if len(m.log) > dashboardNoticeKeep {
			m.log = m.log[len(m.log)-dashboardNoticeKeep:]
		}
		return m, waitForNotice(m.notices)
	case offlineMsg:
		m.offline = bool(msg)
		return m, nil
	case statusMsg:
		m.now = m.app.clock.Now()
		return m, nil
	case signedOutMsg:
		m.signedOut = true
		return m, tea.Quit
	case actionMsg:
		m.busy = ""
		m.err = ""
		if msg.err != nil {
			m.err = fmt.Sprintf("%s failed: %s", msg.label, msg.err)
		}
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		return m, nil
	}
}

func (m dashboardModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "q" || msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.busy != "" {
		return m, nil
	}

	var (
		label  string
		action func(context.Context) error
	)
	switch msg.String() {
	case "s":
		label, action = "start", m.workAction(m.app.work.Start)
	case "p":
		label, action = "pause", m.workAction(m.app.work.Pause)
	case "r":
		label, action = "resume", m.workAction(m.app.work.Resume)
	case "x":
		label, action = "stop", m.workAction(m.app.work.Stop)
	case "o":
		if m.app.desktop.privacy == nil {
			m.err = fmt.Sprintf("privacy settings: %s", domain.ErrCaptureUnavailable)
			return m, nil
		}
		label, action = "open privacy settings", m.app.desktop.privacy.Open
	default:
		return m, nil
	}

	m.busy = label + "..."
	ctx := m.ctx
	return m, func() tea.Msg {
		return actionMsg{label: label, err: action(ctx)}
	}
}

func (m dashboardModel) workAction(apply func(context.Context) (domain.SessionSnapshot, error)) func(context.Context) error {
	return func(ctx context.Context) error {
		_, err := apply(ctx)
		return err
	}
}

func (m dashboardModel) View() string {
	return statusadapter.RenderDashboard(statusadapter.Dashboard{
		Session: m.app.session.Snapshot(),
		Offline: m.offline,
		Notices: m.log,
		Error:   m.err,
		Busy:    m.busy,
		Now:     m.now,
	}) + "\n"
}

func runDashboard(ctx context.Context, cmd *cobra.Command, app *app) error {
	notices, cancelNotices := app.notices.Subscribe()
	defer cancelNotices()

	p := tea.NewProgram(
		newDashboardModel(ctx, app, notices),
		tea.WithContext(ctx),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
		tea.WithAltScreen(),
	)

	unsubscribes := []func(){
		app.client.SubscribeOffline(func(offline bool) { p.Send(offlineMsg(offline)) }),
		app.session.SubscribeWorkStatus(func(domain.WorkStatus, *time.Time) { p.Send(statusMsg{}) }),
		app.session.SubscribeUser(func(user *domain.User) {
			if user == nil {
				p.Send(signedOutMsg{})
			}
		}),
	}
	defer func() {
		for _, unsubscribe := range unsubscribes {
			unsubscribe()
		}
	}()

	finalModel, err := p.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}

	if result, ok := finalModel.(dashboardModel); ok && result.signedOut {
		return errors.New(application.SessionExpiredMessage)
	}
	return nil
}
