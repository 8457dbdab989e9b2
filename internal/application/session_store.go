package application

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bnema/teamfocus-cli/internal/domain"
	"github.com/bnema/teamfocus-cli/internal/ports"
)

type WorkStatusListener func(status domain.WorkStatus, lastResumeAt *time.Time)

type listenerSet[F any] struct {
	entries []listenerEntry[F]
}

type listenerEntry[F any] struct {
	id int
	fn F
}

func (s *listenerSet[F]) add(id int, fn F) {
	s.entries = append(s.entries, listenerEntry[F]{id: id, fn: fn})
}

func (s *listenerSet[F]) remove(id int) {
	for i, entry := range s.entries {
		if entry.id == id {
			s.entries = append(s.entries[:i:i], s.entries[i+1:]...)
			return
		}
	}
}

func (s *listenerSet[F]) snapshot() []F {
	fns := make([]F, 0, len(s.entries))
	for _, entry := range s.entries {
		fns = append(fns, entry.fn)
	}
	return fns
}

// SessionStore holds the signed-in user, their team and the work status.
// Listeners are called synchronously, in registration order, after the
// store lock is released.
type SessionStore struct {
	clock  ports.Clock
	logger *slog.Logger

	mu           sync.Mutex
	user         *domain.User
	team         *domain.Team
	status       domain.WorkStatus
	lastResumeAt *time.Time

	nextID          int
	statusListeners listenerSet[WorkStatusListener]
	userListeners   listenerSet[func(*domain.User)]
	teamListeners   listenerSet[func(*domain.Team)]
}

func NewSessionStore(clock ports.Clock, logger *slog.Logger) *SessionStore {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &SessionStore{
		clock:  clock,
		logger: logger,
		status: domain.WorkStatusIdle,
	}
}

func (s *SessionStore) User() *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyUser(s.user)
}

func (s *SessionStore) Team() *domain.Team {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyTeam(s.team)
}

func (s *SessionStore) WorkStatus() domain.WorkStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *SessionStore) LastResumeAt() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyTime(s.lastResumeAt)
}

func (s *SessionStore) Snapshot() domain.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return domain.SessionSnapshot{
		User:         copyUser(s.user),
		Team:         copyTeam(s.team),
		WorkStatus:   s.status,
		LastResumeAt: copyTime(s.lastResumeAt),
	}
}

func (s *SessionStore) SetUser(user *domain.User) {
	s.mu.Lock()
	s.user = copyUser(user)
	listeners := s.userListeners.snapshot()
	current := copyUser(s.user)
	s.mu.Unlock()

	for _, fn := range listeners {
		s.safeCall("user", func() { fn(copyUser(current)) })
	}
}

func (s *SessionStore) SetTeam(team *domain.Team) {
	s.mu.Lock()
	s.team = copyTeam(team)
	listeners := s.teamListeners.snapshot()
	current := copyTeam(s.team)
	s.mu.Unlock()

	for _, fn := range listeners {
		s.safeCall("team", func() { fn(copyTeam(current)) })
	}
}

// SetWorkStatus records a new work status. Working requires the time the
// current stretch began; every other status discards lastResumeAt.
func (s *SessionStore) SetWorkStatus(status domain.WorkStatus, lastResumeAt time.Time) error {
	if !status.Valid() {
		return fmt.Errorf("set work status %q: unknown status", status)
	}
	if status == domain.WorkStatusWorking && lastResumeAt.IsZero() {
		return domain.ErrResumeTimeRequired
	}

	s.mu.Lock()
	s.status = status
	if status == domain.WorkStatusWorking {
		s.lastResumeAt = &lastResumeAt
	} else {
		s.lastResumeAt = nil
	}
	listeners := s.statusListeners.snapshot()
	resumeAt := copyTime(s.lastResumeAt)
	s.mu.Unlock()

	s.logger.Debug("work status changed", "status", status)
	s.notifyStatus(listeners, status, resumeAt)
	return nil
}

// Clear resets the session to its signed-out state. Work-status listeners
// are told about the reset when the status was not already idle so that
// capture and heartbeat stop with the session.
func (s *SessionStore) Clear() {
	s.mu.Lock()
	wasIdle := s.status == domain.WorkStatusIdle
	s.user = nil
	s.team = nil
	s.status = domain.WorkStatusIdle
	s.lastResumeAt = nil
	userListeners := s.userListeners.snapshot()
	teamListeners := s.teamListeners.snapshot()
	statusListeners := s.statusListeners.snapshot()
	s.mu.Unlock()

	for _, fn := range userListeners {
		s.safeCall("user", func() { fn(nil) })
	}
	for _, fn := range teamListeners {
		s.safeCall("team", func() { fn(nil) })
	}
	if !wasIdle {
		s.notifyStatus(statusListeners, domain.WorkStatusIdle, nil)
	}
}

// IsTrialActive is true when no team or trial end is known, or when the
// trial ends in the future.
func (s *SessionStore) IsTrialActive() bool {
	s.mu.Lock()
	team := s.team
	s.mu.Unlock()

	if team == nil {
		return true
	}
	return team.TrialActiveAt(s.clock.Now())
}

func (s *SessionStore) SubscribeWorkStatus(fn WorkStatusListener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.statusListeners.add(id, fn)

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.statusListeners.remove(id)
	}
}

func (s *SessionStore) SubscribeUser(fn func(*domain.User)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.userListeners.add(id, fn)

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.userListeners.remove(id)
	}
}

func (s *SessionStore) SubscribeTeam(fn func(*domain.Team)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.teamListeners.add(id, fn)

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.teamListeners.remove(id)
	}
}

func (s *SessionStore) notifyStatus(listeners []WorkStatusListener, status domain.WorkStatus, lastResumeAt *time.Time) {
	for _, fn := range listeners {
		s.safeCall("work status", func() { fn(status, copyTime(lastResumeAt)) })
	}
}

func (s *SessionStore) safeCall(kind string, call func()) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("session listener panicked", "listener", kind, "panic", r)
		}
	}()
	call()
}

func copyUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	clone := *user
	return &clone
}

func copyTeam(team *domain.Team) *domain.Team {
	if team == nil {
		return nil
	}
	clone := *team
	if team.ScreenshotIntervalMinutes != nil {
		minutes := *team.ScreenshotIntervalMinutes
		clone.ScreenshotIntervalMinutes = &minutes
	}
	clone.TrialEndsAt = copyTime(team.TrialEndsAt)
	return &clone
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	clone := *t
	return &clone
}
