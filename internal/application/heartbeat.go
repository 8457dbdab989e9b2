package application

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/bnema/teamfocus-cli/internal/domain"
	"github.com/bnema/teamfocus-cli/internal/ports"
)

const DefaultHeartbeatInterval = 5 * time.Minute

// HeartbeatEmitter tells the backend whether a work session is active:
// true on entering working and on every interval after, false once on
// leaving it.
type HeartbeatEmitter struct {
	session  *SessionStore
	sender   ports.HeartbeatSender
	clock    ports.Clock
	interval time.Duration
	logger   *slog.Logger

	mu          sync.Mutex
	active      bool
	generation  uint64
	timer       ports.Timer
	unsubscribe func()

	outboxMu sync.Mutex
	outbox   []bool
	draining bool
	sends    conc.WaitGroup
}

func NewHeartbeatEmitter(session *SessionStore, sender ports.HeartbeatSender, clock ports.Clock, interval time.Duration, logger *slog.Logger) *HeartbeatEmitter {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if interval <= 0 {
		interval = DefaultHeartbeatInterval
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &HeartbeatEmitter{
		session:  session,
		sender:   sender,
		clock:    clock,
		interval: interval,
		logger:   logger,
	}
}

func (h *HeartbeatEmitter) Start() {
	unsubscribe := h.session.SubscribeWorkStatus(func(status domain.WorkStatus, _ *time.Time) {
		h.onWorkStatus(status)
	})

	h.mu.Lock()
	h.unsubscribe = unsubscribe
	h.mu.Unlock()

	h.onWorkStatus(h.session.WorkStatus())
}

// Stop cancels the interval without sending a final heartbeat.
func (h *HeartbeatEmitter) Stop() {
	h.mu.Lock()
	unsubscribe := h.unsubscribe
	h.unsubscribe = nil
	h.active = false
	h.generation++
	h.stopTimerLocked()
	h.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// Wait blocks until every heartbeat sent so far has completed.
func (h *HeartbeatEmitter) Wait() {
	h.sends.Wait()
}

func (h *HeartbeatEmitter) onWorkStatus(status domain.WorkStatus) {
	h.mu.Lock()
	defer h.mu.Unlock()

	working := status == domain.WorkStatusWorking
	switch {
	case working && !h.active:
		h.active = true
		h.generation++
		h.sendLocked(true)
		h.armLocked(h.generation)
	case !working && h.active:
		h.active = false
		h.generation++
		h.stopTimerLocked()
		h.sendLocked(false)
	}
}

func (h *HeartbeatEmitter) armLocked(generation uint64) {
	h.timer = h.clock.AfterFunc(h.interval, func() {
		h.mu.Lock()
		defer h.mu.Unlock()

		if !h.active || h.generation != generation {
			return
		}
		h.sendLocked(true)
		h.armLocked(generation)
	})
}

func (h *HeartbeatEmitter) stopTimerLocked() {
	if h.timer != nil {
		h.timer.Stop()
		h.timer = nil
	}
}

// sendLocked queues a heartbeat without blocking the caller. One drain
// goroutine at a time delivers the outbox, so the backend sees values in the
// order the transitions happened.
func (h *HeartbeatEmitter) sendLocked(active bool) {
	h.outboxMu.Lock()
	defer h.outboxMu.Unlock()

	h.outbox = append(h.outbox, active)
	if h.draining {
		return
	}
	h.draining = true
	h.sends.Go(h.drain)
}

func (h *HeartbeatEmitter) drain() {
	for {
		h.outboxMu.Lock()
		if len(h.outbox) == 0 {
			h.draining = false
			h.outboxMu.Unlock()
			return
		}
		active := h.outbox[0]
		h.outbox = h.outbox[1:]
		h.outboxMu.Unlock()

		err := h.sender.SendHeartbeat(context.Background(), active)
		if err != nil && !errors.Is(err, domain.ErrUnauthorized) {
			h.logger.Warn("heartbeat failed", "active", active, "err", err)
		}
	}
}
