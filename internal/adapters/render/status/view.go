package status

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bnema/teamfocus-cli/internal/domain"
	"github.com/bnema/teamfocus-cli/internal/notify"
	"github.com/charmbracelet/lipgloss"
)

const maxDashboardNotices = 3

type RenderOptions struct {
	Now      time.Time
	Location *time.Location
}

func (o RenderOptions) location() *time.Location {
	if o.Location == nil {
		return time.Local
	}
	return o.Location
}

// Dashboard is everything the live view shows at one tick.
type Dashboard struct {
	Session domain.SessionSnapshot
	Offline bool
	Notices []notify.Notice
	Error   string
	Busy    string
	Now     time.Time
}

func RenderDashboard(d Dashboard) string {
	return renderDashboard(d, newStyles())
}

func renderDashboard(d Dashboard, s styles) string {
	lines := []string{s.title.Render("TeamFocus")}

	if d.Session.User == nil {
		lines = append(lines, s.empty.Render("Not signed in. Run `tf login` first."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	lines = append(lines, s.user.Render(userTitle(*d.Session.User)))
	if d.Session.Team != nil {
		lines = append(lines,
			s.header.Render(fmt.Sprintf("team: %s", d.Session.Team.Name)),
			trialLine(d.Session.Team, d.Now, s),
		)
	}

	statusLine := lipgloss.JoinHorizontal(lipgloss.Top, statusBadge(d.Session.WorkStatus, s))
	if d.Session.WorkStatus == domain.WorkStatusWorking {
		statusLine = lipgloss.JoinHorizontal(
			lipgloss.Top,
			statusLine,
			"  ",
			s.clock.Render("Session: "+FormatSessionClock(d.Session.SessionElapsed(d.Now))),
		)
	}
	if d.Offline {
		statusLine += "  " + s.offline.Render("[offline]")
	}
	lines = append(lines, s.section.Render(statusLine))

	if d.Busy != "" {
		lines = append(lines, s.meta.Render(d.Busy))
	}
	if d.Error != "" {
		lines = append(lines, s.warning.Render(d.Error))
	}
	if noticeLines := renderNotices(d.Notices, s); len(noticeLines) > 0 {
		lines = append(lines, s.section.Render(lipgloss.JoinVertical(lipgloss.Left, noticeLines...)))
	}

	lines = append(lines, s.section.Render(s.header.Render(keyHelp(d.Session.WorkStatus, d.Notices))))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func userTitle(user domain.User) string {
	if user.Name != "" && user.Email != "" {
		return fmt.Sprintf("%s <%s>", user.Name, user.Email)
	}
	return user.DisplayName()
}

func statusBadge(status domain.WorkStatus, s styles) string {
	switch status {
	case domain.WorkStatusWorking:
		return s.working.Render("Working")
	case domain.WorkStatusPaused:
		return s.paused.Render("Paused")
	default:
		return s.idle.Render("Idle")
	}
}

// FormatSessionClock renders elapsed as mm:ss. Minutes keep counting past 59.
func FormatSessionClock(elapsed time.Duration) string {
	if elapsed < 0 {
		elapsed = 0
	}
	seconds := int(elapsed / time.Second)
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

func trialLine(team *domain.Team, now time.Time, s styles) string {
	label := s.key.Render("trial:")
	if !team.TrialActiveAt(now) {
		return label + " " + s.warning.Render("ended") + " " + s.meta.Render("(contact your team manager)")
	}
	if team.TrialEndsAt == nil {
		return label + " " + s.detail.Render("active")
	}

	days := trialDaysRemaining(*team.TrialEndsAt, now)
	suffix := "days"
	if days == 1 {
		suffix = "day"
	}
	return label + " " + s.detail.Render(fmt.Sprintf("%d %s remaining", days, suffix))
}

func trialDaysRemaining(endsAt, now time.Time) int {
	if !endsAt.After(now) {
		return 0
	}
	return int(math.Ceil(endsAt.Sub(now).Hours() / 24))
}

func renderNotices(notices []notify.Notice, s styles) []string {
	if len(notices) > maxDashboardNotices {
		notices = notices[len(notices)-maxDashboardNotices:]
	}

	lines := make([]string, 0, len(notices))
	for _, notice := range notices {
		line := s.notice.Render(fmt.Sprintf("%s %s", notice.At.Format("15:04:05"), notice.Message))
		if notice.Remediation == notify.RemediationOpenPrivacySettings {
			line += " " + s.meta.Render("(press o to open privacy settings)")
		}
		lines = append(lines, line)
	}
	return lines
}

func keyHelp(status domain.WorkStatus, notices []notify.Notice) string {
	var keys []string
	switch status {
	case domain.WorkStatusIdle:
		keys = append(keys, "s start")
	case domain.WorkStatusWorking:
		keys = append(keys, "p pause", "x stop")
	case domain.WorkStatusPaused:
		keys = append(keys, "r resume", "x stop")
	}
	for _, notice := range notices {
		if notice.Remediation == notify.RemediationOpenPrivacySettings {
			keys = append(keys, "o privacy settings")
			break
		}
	}
	keys = append(keys, "q quit")
	return strings.Join(keys, " • ")
}

func renderProgressBar(fraction float64, width int, s styles) string {
	if width <= 0 {
		return ""
	}

	filled := int(math.Round(float64(width) * clampFraction(fraction)))
	empty := width - filled

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		s.barFill.Render(strings.Repeat("=", filled)),
		s.barEmpty.Render(strings.Repeat("-", empty)),
		s.barBracket.Render("]"),
	)
}

func clampFraction(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func formatMinutes(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dh%02dm", minutes/60, minutes%60)
}
