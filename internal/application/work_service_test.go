package application

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bnema/teamfocus-cli/internal/domain"
	"github.com/bnema/teamfocus-cli/internal/ports/mocks"
	"github.com/bnema/teamfocus-cli/internal/testutil"
)

func newWorkFixture(t *testing.T) (*testutil.FakeClock, *SessionStore, *mocks.MockWorkEventsAPI, *WorkService) {
	t.Helper()

	clock := testutil.NewFakeClock(testEpoch)
	session := NewSessionStore(clock, discardLogger())
	user := member()
	session.SetUser(&user)
	api := mocks.NewMockWorkEventsAPI(t)

	return clock, session, api, NewWorkService(api, session, clock, discardLogger())
}

func TestWorkStartSetsWorkingWithFreshResumeTime(t *testing.T) {
	t.Parallel()

	clock, session, api, svc := newWorkFixture(t)
	clock.Advance(90 * time.Second)
	api.EXPECT().CreateWorkEvent(mock.Anything, domain.WorkEventStart).
		Return(domain.WorkEvent{ID: "e1", EventType: domain.WorkEventStart}, nil).Once()

	snapshot, err := svc.Start(context.Background())

	require.NoError(t, err)
	assert.Equal(t, domain.WorkStatusWorking, snapshot.WorkStatus)
	require.NotNil(t, snapshot.LastResumeAt)
	assert.True(t, snapshot.LastResumeAt.Equal(testEpoch.Add(90*time.Second)))
	assert.Equal(t, domain.WorkStatusWorking, session.WorkStatus())
}

func TestWorkFullCycle(t *testing.T) {
	t.Parallel()

	_, session, api, svc := newWorkFixture(t)
	for _, event := range []domain.WorkEventType{domain.WorkEventStart, domain.WorkEventPause, domain.WorkEventResume, domain.WorkEventStop} {
		api.EXPECT().CreateWorkEvent(mock.Anything, event).Return(domain.WorkEvent{EventType: event}, nil).Once()
	}

	ctx := context.Background()
	_, err := svc.Start(ctx)
	require.NoError(t, err)
	paused, err := svc.Pause(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.WorkStatusPaused, paused.WorkStatus)
	assert.Nil(t, paused.LastResumeAt)
	_, err = svc.Resume(ctx)
	require.NoError(t, err)
	stopped, err := svc.Stop(ctx)
	require.NoError(t, err)

	assert.Equal(t, domain.WorkStatusIdle, stopped.WorkStatus)
	assert.Equal(t, domain.WorkStatusIdle, session.WorkStatus())
}

func TestWorkRejectsInvalidTransitionWithoutCallingBackend(t *testing.T) {
	t.Parallel()

	_, _, _, svc := newWorkFixture(t)

	_, err := svc.Pause(context.Background())

	require.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestWorkRequiresLogin(t *testing.T) {
	t.Parallel()

	clock := testutil.NewFakeClock(testEpoch)
	svc := NewWorkService(mocks.NewMockWorkEventsAPI(t), NewSessionStore(clock, discardLogger()), clock, discardLogger())

	_, err := svc.Start(context.Background())

	require.ErrorIs(t, err, domain.ErrNotLoggedIn)
}

func TestWorkStartBlockedWhenTrialEnded(t *testing.T) {
	t.Parallel()

	_, session, _, svc := newWorkFixture(t)
	ended := testEpoch.Add(-time.Second)
	session.SetTeam(&domain.Team{ID: "t1", TrialEndsAt: &ended})

	_, err := svc.Start(context.Background())

	require.ErrorIs(t, err, domain.ErrTrialEnded)
	assert.Equal(t, domain.WorkStatusIdle, session.WorkStatus())
}

func TestWorkBackendFailureLeavesStatus(t *testing.T) {
	t.Parallel()

	_, session, api, svc := newWorkFixture(t)
	api.EXPECT().CreateWorkEvent(mock.Anything, domain.WorkEventStart).
		Return(domain.WorkEvent{}, fmt.Errorf("create start work event: %w", domain.ErrServer)).Once()

	_, err := svc.Start(context.Background())

	require.ErrorIs(t, err, domain.ErrServer)
	assert.Equal(t, domain.WorkStatusIdle, session.WorkStatus())
}

func TestWorkEventsAppliesDefaults(t *testing.T) {
	t.Parallel()

	_, _, api, svc := newWorkFixture(t)
	api.EXPECT().ListWorkEvents(mock.Anything, domain.WorkEventQuery{
		Page: 1, Limit: DefaultEventsPageSize, Sort: "timestamp", Order: "desc", DateFrom: "2026-03-01",
	}).Return(domain.WorkEventPage{Pagination: domain.Pagination{Total: 0}}, nil).Once()

	_, err := svc.Events(context.Background(), domain.WorkEventQuery{DateFrom: "2026-03-01"})

	require.NoError(t, err)
}

func TestWorkSummaryDefaultsToToday(t *testing.T) {
	t.Parallel()

	_, _, api, svc := newWorkFixture(t)
	api.EXPECT().WorkSummary(mock.Anything, domain.SummaryQuery{DateFrom: "2026-03-02", DateTo: "2026-03-02"}).
		Return(domain.WorkSummary{Summary: []domain.DaySummary{{Date: "2026-03-02", TotalWorkMinutes: 90}}}, nil).Once()

	summary, err := svc.Summary(context.Background(), domain.SummaryQuery{})

	require.NoError(t, err)
	require.Len(t, summary.Summary, 1)
	assert.Equal(t, 90, summary.Summary[0].TotalWorkMinutes)
}
