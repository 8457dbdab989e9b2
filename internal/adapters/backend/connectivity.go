package backend

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/bnema/teamfocus-cli/internal/ports"
)

const DefaultProbeInterval = 15 * time.Second

// ConnectivityWatcher stands in for the platform "online" event: while the
// client is offline or still holds queued requests it probes the backend and
// calls MarkOnline once any HTTP response comes back. A request that succeeds
// in between clears the offline flag without flushing, so the queue alone
// keeps the watcher probing.
type ConnectivityWatcher struct {
	client     *Client
	httpClient *http.Client
	clock      ports.Clock
	interval   time.Duration
	logger     *slog.Logger
}

func NewConnectivityWatcher(client *Client, httpClient *http.Client, clock ports.Clock, interval time.Duration, logger *slog.Logger) *ConnectivityWatcher {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if interval <= 0 {
		interval = DefaultProbeInterval
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &ConnectivityWatcher{
		client:     client,
		httpClient: httpClient,
		clock:      clock,
		interval:   interval,
		logger:     logger,
	}
}

// Run probes until ctx is done.
func (w *ConnectivityWatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.clock.After(w.interval):
		}

		if !w.client.IsOffline() && len(w.client.Pending()) == 0 {
			continue
		}
		if w.probe(ctx) {
			w.logger.Info("backend reachable again, replaying queued requests", "queued", len(w.client.Pending()))
			w.client.MarkOnline()
		}
	}
}

func (w *ConnectivityWatcher) probe(ctx context.Context) bool {
	baseURL := w.client.BaseURL()
	if baseURL == "" {
		return false
	}

	probeCtx, cancel := context.WithTimeout(ctx, w.interval)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodHead, baseURL, nil)
	if err != nil {
		return false
	}

	resp, err := w.httpClient.Do(req)
	if err != nil {
		w.logger.Debug("connectivity probe failed", "err", err)
		return false
	}
	_ = resp.Body.Close()
	return true
}
