package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/bnema/teamfocus-cli/internal/domain"
	"github.com/bnema/teamfocus-cli/internal/notify"
	"github.com/bnema/teamfocus-cli/internal/ports"
	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/sourcegraph/conc"
)

const (
	DefaultMaxAttempts    = 3
	DefaultRetryBaseDelay = time.Second
	DefaultRequestTimeout = 30 * time.Second
	DefaultQueueLimit     = 200

	maxResponseBytes = 1 << 20
	requestIDHeader  = "X-Request-Id"

	TrialEndedMessage = "Trial ended. Please contact your team manager."
)

type Config struct {
	BaseURL        string
	HTTPClient     *http.Client
	Credentials    ports.CredentialProvider
	Clock          ports.Clock
	Logger         *slog.Logger
	Notices        *notify.Bus
	MaxAttempts    int
	RetryBaseDelay time.Duration
	// RequestTimeout bounds a single attempt. Zero disables it.
	RequestTimeout time.Duration
	QueueLimit     int
}

// PendingRequest is a request that failed at the network level and waits
// for connectivity to come back.
type PendingRequest struct {
	ID       string
	Method   string
	Path     string
	Header   http.Header
	Body     any
	QueuedAt time.Time
}

type offlineListener struct {
	id int
	fn func(bool)
}

// Client is the single path to the backend. It injects the bearer token,
// retries transport and 5xx failures, tracks connectivity and replays
// requests that failed while offline.
type Client struct {
	httpClient     *http.Client
	credentials    ports.CredentialProvider
	clock          ports.Clock
	logger         *slog.Logger
	notices        *notify.Bus
	maxAttempts    int
	retryBaseDelay time.Duration
	requestTimeout time.Duration
	queueLimit     int

	mu             sync.Mutex
	baseURL        string
	offline        bool
	queue          []PendingRequest
	listeners      []offlineListener
	nextListener   int
	onUnauthorized func(error)

	replays conc.WaitGroup
}

func NewClient(cfg Config) *Client {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	if cfg.Clock == nil {
		cfg.Clock = ports.SystemClock{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.RetryBaseDelay <= 0 {
		cfg.RetryBaseDelay = DefaultRetryBaseDelay
	}
	if cfg.RequestTimeout < 0 {
		cfg.RequestTimeout = 0
	}
	if cfg.QueueLimit <= 0 {
		cfg.QueueLimit = DefaultQueueLimit
	}

	return &Client{
		httpClient:     cfg.HTTPClient,
		credentials:    cfg.Credentials,
		clock:          cfg.Clock,
		logger:         cfg.Logger,
		notices:        cfg.Notices,
		maxAttempts:    cfg.MaxAttempts,
		retryBaseDelay: cfg.RetryBaseDelay,
		requestTimeout: cfg.RequestTimeout,
		queueLimit:     cfg.QueueLimit,
		baseURL:        normalizeBaseURL(cfg.BaseURL),
	}
}

func (c *Client) SetBaseURL(raw string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.baseURL = normalizeBaseURL(raw)
}

func (c *Client) BaseURL() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.baseURL
}

// OnUnauthorized registers the callback invoked for every 401 or 403 response.
func (c *Client) OnUnauthorized(fn func(error)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUnauthorized = fn
}

func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.call(ctx, Request{Method: http.MethodGet, Path: path}, out)
}

func (c *Client) Post(ctx context.Context, path string, body any, out any) error {
	return c.call(ctx, Request{Method: http.MethodPost, Path: path, Body: body}, out)
}

func (c *Client) Patch(ctx context.Context, path string, body any, out any) error {
	return c.call(ctx, Request{Method: http.MethodPatch, Path: path, Body: body}, out)
}

func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.call(ctx, Request{Method: http.MethodDelete, Path: path}, out)
}

func (c *Client) call(ctx context.Context, req Request, out any) error {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	return resp.DecodeJSON(out)
}

// Do sends req, retrying network failures and 5xx responses. A request that
// still fails at the network level is queued for replay and its error is
// returned to the caller.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	return c.do(ctx, req, uuid.NewString(), false)
}

func (c *Client) do(ctx context.Context, req Request, requestID string, replay bool) (*Response, error) {
	baseURL := c.BaseURL()
	if baseURL == "" {
		return nil, domain.ErrConfigurationNotReady
	}
	if req.Method == "" {
		req.Method = http.MethodGet
	}
	req.Method = strings.ToUpper(req.Method)
	header := req.Header.Clone()
	if header == nil {
		header = http.Header{}
	}

	body, err := encodeBody(req.Body, header)
	if err != nil {
		return nil, fmt.Errorf("encode %s %s body: %w", req.Method, req.Path, err)
	}

	delays := &backoff.ExponentialBackOff{
		InitialInterval:     c.retryBaseDelay,
		RandomizationFactor: 0,
		Multiplier:          2,
		MaxInterval:         c.retryBaseDelay << c.maxAttempts,
	}
	delays.Reset()

	var lastErr error
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if attempt > 0 {
			delay := delays.NextBackOff()
			c.logger.Debug("retrying request",
				"request_id", requestID, "method", req.Method, "path", req.Path,
				"attempt", attempt+1, "delay", delay, "err", lastErr)

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-c.clock.After(delay):
			}
		}

		resp, err := c.send(ctx, baseURL, req, header, body, requestID)
		if err == nil {
			c.setOffline(false)
			return resp, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		lastErr = err
		if !retryable(err) {
			return nil, err
		}
	}

	if isNetworkError(lastErr) {
		c.setOffline(true)
		if !replay {
			c.enqueue(PendingRequest{
				ID:       requestID,
				Method:   req.Method,
				Path:     req.Path,
				Header:   req.Header.Clone(),
				Body:     req.Body,
				QueuedAt: c.clock.Now(),
			})
		}
	}

	return nil, lastErr
}

func (c *Client) send(ctx context.Context, baseURL string, req Request, header http.Header, body encodedBody, requestID string) (*Response, error) {
	attemptCtx := ctx
	if c.requestTimeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, c.requestTimeout)
		defer cancel()
	}

	var reader io.Reader
	if body.payload != nil {
		reader = bytes.NewReader(body.payload)
	}

	httpReq, err := http.NewRequestWithContext(attemptCtx, req.Method, resolveURL(baseURL, req.Path), reader)
	if err != nil {
		return nil, fmt.Errorf("build %s %s request: %w", req.Method, req.Path, err)
	}

	for key, values := range header {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}
	if body.override {
		httpReq.Header.Del(contentTypeHeader)
	}
	if body.contentType != "" {
		httpReq.Header.Set(contentTypeHeader, body.contentType)
	}
	httpReq.Header.Set(requestIDHeader, requestID)
	if httpReq.Header.Get("Accept") == "" {
		httpReq.Header.Set("Accept", jsonContentType)
	}

	if token := c.token(ctx); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &NetworkError{Method: req.Method, Path: req.Path, Err: err}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &NetworkError{Method: req.Method, Path: req.Path, Err: fmt.Errorf("read response body: %w", err)}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		out := &Response{StatusCode: resp.StatusCode, Header: resp.Header}
		if resp.StatusCode != http.StatusNoContent && len(bytes.TrimSpace(payload)) > 0 {
			out.Body = payload
		}
		return out, nil
	}

	apiErr := parseAPIError(resp, payload)
	c.logger.Debug("request failed",
		"request_id", requestID, "method", req.Method, "path", req.Path, "status", resp.StatusCode)
	c.handleAuthFailure(ctx, apiErr)

	return nil, apiErr
}

func (c *Client) handleAuthFailure(ctx context.Context, apiErr *APIError) {
	if !apiErr.IsAuth() {
		return
	}

	if apiErr.StatusCode == http.StatusUnauthorized && c.credentials != nil {
		if err := c.credentials.ClearToken(ctx); err != nil {
			c.logger.Warn("clear rejected credential", "err", err)
		}
	}
	if apiErr.TrialEnded() {
		c.notices.Publish(notify.Notice{Kind: notify.KindTrialEnded, Message: TrialEndedMessage, Err: apiErr})
	}

	c.mu.Lock()
	callback := c.onUnauthorized
	c.mu.Unlock()
	if callback != nil {
		callback(apiErr)
	}
}

func (c *Client) token(ctx context.Context) string {
	if c.credentials == nil {
		return ""
	}

	token, err := c.credentials.Token(ctx)
	if err != nil {
		c.logger.Debug("read credential", "err", err)
		return ""
	}
	return token
}

func parseAPIError(resp *http.Response, payload []byte) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	if isJSONContentType(resp.Header.Get(contentTypeHeader)) {
		var decoded struct {
			Error   any    `json:"error"`
			Message string `json:"message"`
		}
		var data any
		if err := json.Unmarshal(payload, &data); err == nil {
			apiErr.Data = data
			_ = json.Unmarshal(payload, &decoded)
			if code, ok := decoded.Error.(string); ok {
				apiErr.Code = code
			}
			apiErr.Message = decoded.Message
			if apiErr.Message == "" {
				apiErr.Message = apiErr.Code
			}
			return apiErr
		}
	}

	text := strings.TrimSpace(string(payload))
	if text != "" {
		apiErr.Data = text
	}
	return apiErr
}

func (c *Client) IsOffline() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.offline
}

// SubscribeOffline registers fn for offline state changes and returns a func
// that removes it. Listeners run synchronously in registration order.
func (c *Client) SubscribeOffline(fn func(offline bool)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextListener
	c.nextListener++
	c.listeners = append(c.listeners, offlineListener{id: id, fn: fn})

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, listener := range c.listeners {
			if listener.id == id {
				c.listeners = append(c.listeners[:i:i], c.listeners[i+1:]...)
				return
			}
		}
	}
}

func (c *Client) setOffline(offline bool) {
	c.mu.Lock()
	if c.offline == offline {
		c.mu.Unlock()
		return
	}
	c.offline = offline
	listeners := append([]offlineListener(nil), c.listeners...)
	c.mu.Unlock()

	c.logger.Info("connectivity changed", "offline", offline)
	for _, listener := range listeners {
		c.notifyListener(listener, offline)
	}
}

func (c *Client) notifyListener(listener offlineListener, offline bool) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("offline listener panicked", "panic", r)
		}
	}()
	listener.fn(offline)
}

// MarkOffline records a platform signal that the network went away.
func (c *Client) MarkOffline() {
	c.setOffline(true)
}

// MarkOnline records that connectivity is back and replays every queued
// request once. Replays start in queue order and run in parallel; their
// failures are logged and dropped.
func (c *Client) MarkOnline() {
	c.setOffline(false)

	c.mu.Lock()
	pending := c.queue
	c.queue = nil
	c.mu.Unlock()

	for _, entry := range pending {
		c.replays.Go(func() {
			req := Request{Method: entry.Method, Path: entry.Path, Header: entry.Header, Body: entry.Body}
			if _, err := c.do(context.Background(), req, entry.ID, true); err != nil {
				c.logger.Debug("replay dropped",
					"request_id", entry.ID, "method", entry.Method, "path", entry.Path, "err", err)
			}
		})
	}
}

// WaitReplays blocks until every replay started by MarkOnline has finished.
func (c *Client) WaitReplays() {
	c.replays.Wait()
}

// Pending returns a copy of the replay queue, oldest first.
func (c *Client) Pending() []PendingRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]PendingRequest(nil), c.queue...)
}

func (c *Client) enqueue(entry PendingRequest) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.queue) >= c.queueLimit {
		dropped := c.queue[0]
		c.queue = c.queue[1:]
		c.logger.Warn("replay queue full, dropping oldest request",
			"request_id", dropped.ID, "method", dropped.Method, "path", dropped.Path)
	}
	c.queue = append(c.queue, entry)
}

func normalizeBaseURL(raw string) string {
	return strings.TrimRight(strings.TrimSpace(raw), "/")
}

func resolveURL(baseURL, path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return baseURL + path
}
