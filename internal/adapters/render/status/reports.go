package status

import (
	"fmt"
	"strings"

	"github.com/bnema/teamfocus-cli/internal/application"
	"github.com/bnema/teamfocus-cli/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

const summaryBarWidth = 24

func Summary(summary domain.WorkSummary, opts RenderOptions) (string, error) {
	return render(func(s styles) string {
		return renderSummary(summary, s)
	})
}

func Events(page domain.WorkEventPage, opts RenderOptions) (string, error) {
	return render(func(s styles) string {
		return renderEvents(page, opts, s)
	})
}

func Profile(profile application.Profile, opts RenderOptions) (string, error) {
	return render(func(s styles) string {
		return renderProfile(profile, opts, s)
	})
}

func Displays(displays []domain.Display) (string, error) {
	return render(func(s styles) string {
		return renderDisplays(displays, s)
	})
}

func renderSummary(summary domain.WorkSummary, s styles) string {
	lines := []string{
		s.title.Render("Work summary"),
		s.header.Render(fmt.Sprintf("days: %d", len(summary.Summary))),
	}

	if len(summary.Summary) == 0 {
		lines = append(lines, s.empty.Render("No activity in this range."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	var total domain.DaySummary
	for _, day := range summary.Summary {
		lines = append(lines, summaryLine(day.Date, day, s))
		total.TotalWorkMinutes += day.TotalWorkMinutes
		total.TotalPauseMinutes += day.TotalPauseMinutes
		total.SessionCount += day.SessionCount
	}
	if len(summary.Summary) > 1 {
		lines = append(lines, s.section.Render(summaryLine("total", total, s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func summaryLine(label string, day domain.DaySummary, s styles) string {
	tracked := day.TotalWorkMinutes + day.TotalPauseMinutes
	fraction := 0.0
	if tracked > 0 {
		fraction = float64(day.TotalWorkMinutes) / float64(tracked)
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.key.Render(fmt.Sprintf("%-10s", label)),
		" ",
		renderProgressBar(fraction, summaryBarWidth, s),
		" ",
		s.detail.Render(fmt.Sprintf("work %s", formatMinutes(day.TotalWorkMinutes))),
		" ",
		s.meta.Render(fmt.Sprintf("pause %s", formatMinutes(day.TotalPauseMinutes))),
		" ",
		s.meta.Render(fmt.Sprintf("sessions %d", day.SessionCount)),
	)
}

func renderEvents(page domain.WorkEventPage, opts RenderOptions, s styles) string {
	p := page.Pagination
	lines := []string{
		s.title.Render("Work events"),
		s.header.Render(fmt.Sprintf("page %d/%d (total %d)", p.Page, max(p.TotalPages, 1), p.Total)),
	}

	if len(page.WorkEvents) == 0 {
		lines = append(lines, s.empty.Render("No work events."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	loc := opts.location()
	for _, event := range page.WorkEvents {
		lines = append(lines, lipgloss.JoinHorizontal(
			lipgloss.Top,
			s.meta.Render(event.Timestamp.In(loc).Format("2006-01-02 15:04:05")),
			"  ",
			eventStyle(event.EventType, s).Render(string(event.EventType)),
		))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func eventStyle(eventType domain.WorkEventType, s styles) lipgloss.Style {
	switch eventType {
	case domain.WorkEventStart, domain.WorkEventResume:
		return s.working
	case domain.WorkEventPause:
		return s.paused
	default:
		return s.idle
	}
}

func renderProfile(profile application.Profile, opts RenderOptions, s styles) string {
	user := profile.User
	lines := []string{
		s.user.Render(user.DisplayName()),
		field("email", user.Email, s),
		field("role", user.Role, s),
	}

	if profile.Team == nil {
		lines = append(lines, s.empty.Render("Team details unavailable."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	team := profile.Team
	lines = append(lines,
		field("team", team.Name, s),
		field("screenshots", fmt.Sprintf("every %d min", int(team.ScreenshotInterval().Minutes())), s),
		trialLine(team, opts.Now, s),
	)
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func field(key, value string, s styles) string {
	if value == "" {
		value = "—"
	}
	return s.key.Render(key+":") + " " + s.detail.Render(value)
}

func renderDisplays(displays []domain.Display, s styles) string {
	lines := []string{
		s.title.Render("Displays"),
		s.header.Render(fmt.Sprintf("displays: %d", len(displays))),
	}

	if len(displays) == 0 {
		lines = append(lines, s.empty.Render("No displays detected."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, display := range displays {
		b := display.Bounds
		parts := []string{
			s.key.Render(fmt.Sprintf("#%d", display.Index)),
			s.detail.Render(display.ID),
			s.meta.Render(fmt.Sprintf("%dx%d%+d%+d", b.Width, b.Height, b.X, b.Y)),
			s.meta.Render(fmt.Sprintf("scale %.2f", display.ScaleFactor)),
		}
		if display.Primary {
			parts = append(parts, s.user.Render("primary"))
		}
		if display.NativeScreenID != "" && display.NativeScreenID != display.ID {
			parts = append(parts, s.meta.Render("native "+display.NativeScreenID))
		}
		lines = append(lines, strings.Join(parts, "  "))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
