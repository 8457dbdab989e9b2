package cmd

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/teamfocus-cli/internal/domain"
)

func TestEventsFetchLabelDescribesQuery(t *testing.T) {
	t.Parallel()

	label := eventsFetchLabel(domain.WorkEventQuery{Page: 2, EventType: domain.WorkEventPause, DateFrom: "2026-03-01", DateTo: "2026-03-07"})
	assert.Equal(t, "Fetching work events", label.what)
	assert.Equal(t, "page 2, pause only, 2026-03-01..2026-03-07", label.detail)

	assert.Equal(t, "page 1", eventsFetchLabel(domain.WorkEventQuery{}).detail)
	assert.Equal(t, "page 1, since 2026-03-01", eventsFetchLabel(domain.WorkEventQuery{Page: 1, DateFrom: "2026-03-01"}).detail)
}

func TestSummaryFetchLabelDefaultsToToday(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "today", summaryFetchLabel(domain.SummaryQuery{}).detail)
	assert.Equal(t, "2026-03-02", summaryFetchLabel(domain.SummaryQuery{DateFrom: "2026-03-02", DateTo: "2026-03-02"}).detail)
	assert.Equal(t, "until 2026-03-02", summaryFetchLabel(domain.SummaryQuery{DateTo: "2026-03-02"}).detail)
}

func TestFetchSpinnerShowsElapsedOnceSlow(t *testing.T) {
	t.Parallel()

	started := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	model := newFetchSpinnerModel(fetchLabel{what: "Fetching work summary", detail: "today"}, nil, started)

	view := model.View()
	assert.Contains(t, view, "Fetching work summary")
	assert.Contains(t, view, "today")
	assert.NotContains(t, view, "1s")

	updated, _ := model.Update(spinner.TickMsg{Time: started.Add(3 * time.Second)})
	assert.Contains(t, updated.View(), "3s")

	done, cmd := updated.Update(fetchDoneMsg{})
	require.NotNil(t, cmd)
	assert.Empty(t, done.View())
}

func TestRunFetchSpinnerSkipsAnimationWithoutTerminal(t *testing.T) {
	t.Parallel()

	output := &bytes.Buffer{}
	fetchErr := errors.New("backend unavailable")
	calls := 0

	err := runFetchSpinner(context.Background(), output, summaryFetchLabel(domain.SummaryQuery{}), func(context.Context) error {
		calls++
		return fetchErr
	})

	assert.ErrorIs(t, err, fetchErr)
	assert.Equal(t, 1, calls)
	assert.Empty(t, output.String())
}
