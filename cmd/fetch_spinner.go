package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/bnema/teamfocus-cli/internal/domain"
)

// Elapsed time is only worth showing once the backend is noticeably slow.
const slowFetchAfter = 2 * time.Second

var (
	fetchSpinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("69"))
	fetchDetailStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// fetchLabel names what is being fetched and, dimmed, the query behind it.
type fetchLabel struct {
	what   string
	detail string
}

func (l fetchLabel) String() string {
	if l.detail == "" {
		return l.what
	}
	return l.what + " " + fetchDetailStyle.Render("("+l.detail+")")
}

func eventsFetchLabel(query domain.WorkEventQuery) fetchLabel {
	parts := []string{fmt.Sprintf("page %d", max(query.Page, 1))}
	if query.EventType != "" {
		parts = append(parts, string(query.EventType)+" only")
	}
	if span := dateSpan(query.DateFrom, query.DateTo); span != "" {
		parts = append(parts, span)
	}
	return fetchLabel{what: "Fetching work events", detail: strings.Join(parts, ", ")}
}

func summaryFetchLabel(query domain.SummaryQuery) fetchLabel {
	span := dateSpan(query.DateFrom, query.DateTo)
	if span == "" {
		span = "today"
	}
	return fetchLabel{what: "Fetching work summary", detail: span}
}

func dateSpan(from, to string) string {
	switch {
	case from == "" && to == "":
		return ""
	case from == to:
		return from
	case to == "":
		return "since " + from
	case from == "":
		return "until " + to
	default:
		return from + ".." + to
	}
}

type fetchDoneMsg struct {
	err error
}

type fetchSpinnerModel struct {
	spinner spinner.Model
	label   fetchLabel
	fetch   tea.Cmd
	started time.Time
	now     time.Time
	err     error
	done    bool
}

func newFetchSpinnerModel(label fetchLabel, fetch tea.Cmd, started time.Time) fetchSpinnerModel {
	return fetchSpinnerModel{
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(fetchSpinnerStyle)),
		label:   label,
		fetch:   fetch,
		started: started,
		now:     started,
	}
}

func (m fetchSpinnerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetch)
}

func (m fetchSpinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if msg.Time.After(m.now) {
			m.now = msg.Time
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case fetchDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m fetchSpinnerModel) View() string {
	if m.done {
		return ""
	}

	view := m.spinner.View() + " " + m.label.String() + "..."
	if elapsed := m.now.Sub(m.started); elapsed >= slowFetchAfter {
		view += fetchDetailStyle.Render(fmt.Sprintf(" %ds", int(elapsed.Seconds())))
	}
	return view
}

// runFetchSpinner animates label on output while fetch runs. Output that is
// not a terminal gets no animation, only the fetch.
func runFetchSpinner(ctx context.Context, output io.Writer, label fetchLabel, fetch func(context.Context) error) error {
	if !isTerminalWriter(output) {
		return fetch(ctx)
	}

	fetchCmd := func() tea.Msg {
		return fetchDoneMsg{err: fetch(ctx)}
	}

	p := tea.NewProgram(
		newFetchSpinnerModel(label, fetchCmd, time.Now()),
		tea.WithInput(nil),
		tea.WithOutput(output),
		tea.WithContext(ctx),
	)

	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	result, ok := finalModel.(fetchSpinnerModel)
	if !ok {
		return fmt.Errorf("unexpected final spinner model type %T", finalModel)
	}

	return result.err
}

func isTerminalWriter(w io.Writer) bool {
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}
