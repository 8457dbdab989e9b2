package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bnema/teamfocus-cli/internal/domain"
	"github.com/bnema/teamfocus-cli/internal/ports"
)

const (
	DefaultEventsPageSize = 20
	defaultEventsSort     = "timestamp"
	defaultEventsOrder    = "desc"
)

// WorkService records work events and moves the session to the status the
// event leads to once the backend has accepted it.
type WorkService struct {
	api     ports.WorkEventsAPI
	session *SessionStore
	clock   ports.Clock
	logger  *slog.Logger
}

func NewWorkService(api ports.WorkEventsAPI, session *SessionStore, clock ports.Clock, logger *slog.Logger) *WorkService {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &WorkService{
		api:     api,
		session: session,
		clock:   clock,
		logger:  logger,
	}
}

func (s *WorkService) Start(ctx context.Context) (domain.SessionSnapshot, error) {
	return s.Apply(ctx, domain.WorkEventStart)
}

func (s *WorkService) Pause(ctx context.Context) (domain.SessionSnapshot, error) {
	return s.Apply(ctx, domain.WorkEventPause)
}

func (s *WorkService) Resume(ctx context.Context) (domain.SessionSnapshot, error) {
	return s.Apply(ctx, domain.WorkEventResume)
}

func (s *WorkService) Stop(ctx context.Context) (domain.SessionSnapshot, error) {
	return s.Apply(ctx, domain.WorkEventStop)
}

func (s *WorkService) Apply(ctx context.Context, event domain.WorkEventType) (domain.SessionSnapshot, error) {
	snapshot := s.session.Snapshot()
	if snapshot.User == nil {
		return snapshot, domain.ErrNotLoggedIn
	}

	next, err := domain.NextWorkStatus(snapshot.WorkStatus, event)
	if err != nil {
		return snapshot, err
	}

	if next == domain.WorkStatusWorking && !s.session.IsTrialActive() {
		verb := "start"
		if event == domain.WorkEventResume {
			verb = "resume"
		}
		return snapshot, fmt.Errorf("%w: you cannot %s work", domain.ErrTrialEnded, verb)
	}

	if _, err := s.api.CreateWorkEvent(ctx, event); err != nil {
		return snapshot, err
	}

	if err := s.session.SetWorkStatus(next, s.clock.Now()); err != nil {
		return s.session.Snapshot(), fmt.Errorf("apply %s: %w", event, err)
	}

	s.logger.Info("work event recorded", "event", event, "status", next)
	return s.session.Snapshot(), nil
}

// Events lists the member's work events, newest first unless the query
// says otherwise.
func (s *WorkService) Events(ctx context.Context, query domain.WorkEventQuery) (domain.WorkEventPage, error) {
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = DefaultEventsPageSize
	}
	if query.Sort == "" {
		query.Sort = defaultEventsSort
	}
	if query.Order == "" {
		query.Order = defaultEventsOrder
	}

	return s.api.ListWorkEvents(ctx, query)
}

// Summary defaults to today when no range is given.
func (s *WorkService) Summary(ctx context.Context, query domain.SummaryQuery) (domain.WorkSummary, error) {
	if query.DateFrom == "" && query.DateTo == "" {
		today := domain.DateKey(s.clock.Now())
		query.DateFrom = today
		query.DateTo = today
	}

	return s.api.WorkSummary(ctx, query)
}
