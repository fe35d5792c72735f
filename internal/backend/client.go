// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package backend talks to the vendor bridge, the sidecar that owns the
// vendor session and speaks JSON over HTTP.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/ManuGH/stbbridge/internal/channels"
	"github.com/ManuGH/stbbridge/internal/config"
	xglog "github.com/ManuGH/stbbridge/internal/log"
	"github.com/ManuGH/stbbridge/internal/metrics"
	"github.com/ManuGH/stbbridge/internal/recordings"
	"github.com/ManuGH/stbbridge/internal/resilience"
	"github.com/ManuGH/stbbridge/internal/telemetry"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout        = 10 * time.Second
	defaultRetries        = 2
	defaultBackoff        = 200 * time.Millisecond
	defaultMaxBackoff     = 2 * time.Second
	defaultRateLimit      = 10
	defaultRateLimitBurst = 20
	defaultUserAgent      = "stbbridge"

	maxErrorBody = 512
)

// Options configures a Client.
type Options struct {
	Provider         config.Provider
	Timeout          time.Duration
	MaxRetries       int
	Backoff          time.Duration
	MaxBackoff       time.Duration
	Username         string
	Password         string
	UserAgent        string
	RateLimit        rate.Limit
	RateLimitBurst   int
	// Consecutive failed requests before calls are short-circuited, and how
	// long they stay short-circuited.
	BreakerThreshold int
	BreakerReset     time.Duration
	Logger           *zerolog.Logger
}

// OptionsFrom derives client options from the bridge configuration.
func OptionsFrom(cfg config.AppConfig) Options {
	return Options{
		Provider:         cfg.Provider,
		Timeout:          cfg.Backend.Timeout,
		MaxRetries:       cfg.Backend.MaxRetries,
		Backoff:          cfg.Backend.Backoff,
		MaxBackoff:       cfg.Backend.MaxBackoff,
		Username:         cfg.Backend.Username,
		Password:         cfg.Backend.Password,
		RateLimit:        rate.Limit(cfg.Backend.RPS),
		RateLimitBurst:   cfg.Backend.Burst,
		BreakerThreshold: cfg.Backend.BreakerThreshold,
		BreakerReset:     cfg.Backend.BreakerReset,
	}
}

// Client is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	provider   config.Provider
	decoder    decoder
	limiter    *rate.Limiter
	breaker    *resilience.Breaker
	maxRetries int
	backoff    time.Duration
	maxBackoff time.Duration
	username   string
	password   string
	userAgent  string
	logger     zerolog.Logger

	shows singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewClient creates a client for the bridge at baseURL. Credentials embedded
// in the URL are moved to basic auth.
func NewClient(baseURL string, opts Options) *Client {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if u, err := url.Parse(trimmed); err == nil {
		if u.User != nil && opts.Username == "" {
			opts.Username = u.User.Username()
			if pass, ok := u.User.Password(); ok {
				opts.Password = pass
			}
		}
		u.User = nil
		trimmed = strings.TrimRight(u.String(), "/")
	}

	nopts := normalizeOptions(opts)
	transport := &http.Transport{
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		ResponseHeaderTimeout: nopts.Timeout,
		TLSHandshakeTimeout:   5 * time.Second,
	}

	c := &Client{
		baseURL:    trimmed,
		httpClient: &http.Client{Timeout: nopts.Timeout, Transport: transport},
		provider:   nopts.Provider,
		decoder:    decoderFor(nopts.Provider),
		limiter:    rate.NewLimiter(nopts.RateLimit, nopts.RateLimitBurst),
		breaker:    resilience.NewBreaker("backend", nopts.BreakerThreshold, nopts.BreakerReset),
		maxRetries: nopts.MaxRetries,
		backoff:    nopts.Backoff,
		maxBackoff: nopts.MaxBackoff,
		username:   nopts.Username,
		password:   nopts.Password,
		userAgent:  nopts.UserAgent,
		rnd:        rand.New(rand.NewSource(time.Now().UnixNano())), // #nosec G404 -- jitter only
	}
	if opts.Logger != nil {
		c.logger = *opts.Logger
	} else {
		c.logger = xglog.WithComponent("backend")
	}
	return c
}

func normalizeOptions(opts Options) Options {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.Backoff <= 0 {
		opts.Backoff = defaultBackoff
	}
	if opts.MaxBackoff <= 0 {
		opts.MaxBackoff = defaultMaxBackoff
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = rate.Limit(defaultRateLimit)
	}
	if opts.RateLimitBurst <= 0 {
		opts.RateLimitBurst = defaultRateLimitBurst
	}
	if strings.TrimSpace(opts.UserAgent) == "" {
		opts.UserAgent = defaultUserAgent
	}
	return opts
}

// CloseIdleConnections releases pooled connections to the bridge.
func (c *Client) CloseIdleConnections() {
	c.httpClient.CloseIdleConnections()
}

// Provider returns the vendor integration this client decodes for.
func (c *Client) Provider() config.Provider {
	return c.provider
}

// Connect opens the vendor session.
func (c *Client) Connect(ctx context.Context, creds Credentials) error {
	return c.call(ctx, "connect", http.MethodPost, "/api/session", creds, nil)
}

// Disconnect closes the vendor session.
func (c *Client) Disconnect(ctx context.Context) error {
	return c.call(ctx, "disconnect", http.MethodDelete, "/api/session", nil, nil)
}

// Boxes lists the set-top boxes of the account.
func (c *Client) Boxes(ctx context.Context) ([]Box, error) {
	var boxes []Box
	if err := c.call(ctx, "boxes", http.MethodGet, "/api/boxes", nil, &boxes); err != nil {
		return nil, err
	}
	return boxes, nil
}

// Box returns one box by id.
func (c *Client) Box(ctx context.Context, boxID string) (Box, error) {
	boxes, err := c.Boxes(ctx)
	if err != nil {
		return Box{}, err
	}
	for _, b := range boxes {
		if b.ID == boxID {
			return b, nil
		}
	}
	return Box{}, &Error{Sentinel: ErrNotFound, Operation: "box", Body: boxID}
}

// Channels returns the channel lineup in backend order.
func (c *Client) Channels(ctx context.Context) ([]channels.Channel, error) {
	var lineup []channels.Channel
	if err := c.call(ctx, "channels", http.MethodGet, "/api/channels", nil, &lineup); err != nil {
		return nil, err
	}
	return lineup, nil
}

// Recordings returns the top-level recording listing.
func (c *Client) Recordings(ctx context.Context) ([]recordings.Entry, error) {
	var raw json.RawMessage
	if err := c.call(ctx, "recordings", http.MethodGet, "/api/recordings", nil, &raw); err != nil {
		return nil, err
	}
	entries, err := c.decoder.recordings(raw)
	if err != nil {
		return nil, &Error{Sentinel: ErrBadResponse, Operation: "recordings", Err: err}
	}
	return entries, nil
}

// Show looks up the episodes of one show. Concurrent lookups of the same show
// share a single request; the shared request is detached from the first
// caller's cancellation and each caller waits on its own ctx.
func (c *Client) Show(ctx context.Context, showID string) (recordings.Show, error) {
	ch := c.shows.DoChan(showID, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.lookupBudget())
		defer cancel()
		return c.fetchShow(fetchCtx, showID)
	})

	select {
	case <-ctx.Done():
		sentinel := ErrUnavailable
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			sentinel = ErrTimeout
		}
		return recordings.Show{}, &Error{Sentinel: sentinel, Operation: "show", Err: ctx.Err()}
	case res := <-ch:
		if res.Shared {
			c.logger.Debug().Str(xglog.FieldShowID, showID).Msg("show lookup shared with concurrent caller")
		}
		if res.Err != nil {
			return recordings.Show{}, res.Err
		}
		return res.Val.(recordings.Show), nil
	}
}

func (c *Client) fetchShow(ctx context.Context, showID string) (recordings.Show, error) {
	var raw json.RawMessage
	path := "/api/recordings/shows/" + url.PathEscape(showID)
	if err := c.call(ctx, "show", http.MethodGet, path, nil, &raw); err != nil {
		return recordings.Show{}, err
	}
	show, err := c.decoder.show(showID, raw)
	if err != nil {
		return recordings.Show{}, &Error{Sentinel: ErrBadResponse, Operation: "show", Err: err}
	}
	return show, nil
}

// lookupBudget bounds a detached request: every attempt plus the backoff
// between them.
func (c *Client) lookupBudget() time.Duration {
	return time.Duration(c.maxRetries+1)*c.httpClient.Timeout + time.Duration(c.maxRetries)*c.maxBackoff
}

// RecordingCapacity returns the used DVR capacity in percent. ok is false
// when the account has no network DVR quota.
func (c *Client) RecordingCapacity(ctx context.Context) (percent float64, ok bool, err error) {
	var payload capacityPayload
	if err := c.call(ctx, "recording_capacity", http.MethodGet, "/api/recording_capacity", nil, &payload); err != nil {
		return 0, false, err
	}
	if payload.Capacity == nil {
		return 0, false, nil
	}
	return *payload.Capacity, true, nil
}

// SendCommand issues cmd to a box.
func (c *Client) SendCommand(ctx context.Context, boxID string, cmd Command) error {
	path := "/api/boxes/" + url.PathEscape(boxID) + "/commands"
	err := c.call(ctx, "command", http.MethodPost, path, cmd, nil)
	metrics.RecordCommand(cmd.Command, err)
	return err
}

// call performs one logical request and decodes a JSON response into out.
func (c *Client) call(ctx context.Context, op, method, path string, in, out any) error {
	var body []byte
	if in != nil {
		var err error
		if body, err = json.Marshal(in); err != nil {
			return fmt.Errorf("encode %s request: %w", op, err)
		}
	}

	resp, err := c.do(ctx, method, c.baseURL+path, body)
	if err != nil {
		sentinel := ErrUnavailable
		if errors.Is(err, context.DeadlineExceeded) {
			sentinel = ErrTimeout
		}
		return &Error{Sentinel: sentinel, Operation: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &Error{
			Sentinel:  sentinelForStatus(resp.StatusCode),
			Operation: op,
			Status:    resp.StatusCode,
			Body:      strings.TrimSpace(string(snippet)),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Sentinel: ErrBadResponse, Operation: op, Status: resp.StatusCode, Err: err}
	}
	return nil
}

// do sends a request through the circuit breaker. Calls abandoned by the
// caller do not count against the bridge.
func (c *Client) do(ctx context.Context, method, rawURL string, body []byte) (*http.Response, error) {
	if err := c.breaker.Allow(); err != nil {
		c.logger.Debug().
			Str(xglog.FieldEvent, "backend.short_circuit").
			Str("method", method).
			Msg("backend circuit open, request rejected")
		return nil, err
	}

	resp, err := c.send(ctx, method, rawURL, body)
	switch {
	case err != nil && ctx.Err() != nil:
		c.breaker.RecordNeutral()
	case err != nil || resp.StatusCode >= http.StatusInternalServerError:
		c.breaker.RecordFailure()
	default:
		c.breaker.RecordSuccess()
	}
	return resp, err
}

func (c *Client) send(ctx context.Context, method, rawURL string, body []byte) (*http.Response, error) {
	tracer := telemetry.Tracer("stbbridge.backend")
	route, urlLabel := traceLabels(rawURL)
	ctx, span := tracer.Start(ctx, "stbbridge.backend.request", trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("http.route", route),
		attribute.String("http.url", urlLabel),
	)
	defer span.End()

	maxAttempts := 1
	if idempotent(method) {
		maxAttempts = c.maxRetries + 1
	}

	var lastErr error
	var lastStatus int
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		attemptCtx, attemptSpan := tracer.Start(ctx, "stbbridge.backend.request.attempt", trace.WithSpanKind(trace.SpanKindClient))
		attemptSpan.SetAttributes(
			attribute.Int("attempt", attempt),
			attribute.Bool("retry", attempt > 1),
		)

		if err := c.limiter.Wait(attemptCtx); err != nil {
			endWithError(attemptSpan, err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(attemptCtx, method, rawURL, reader)
		if err != nil {
			endWithError(attemptSpan, err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		c.applyHeaders(req, body != nil)
		otel.GetTextMapPropagator().Inject(attemptCtx, propagation.HeaderCarrier(req.Header))

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		duration := time.Since(start)

		status := 0
		if resp != nil {
			status = resp.StatusCode
		}

		retry := attempt < maxAttempts && shouldRetry(resp, err)
		metrics.ObserveBackendAttempt(method, route, status, duration, err, retry)

		attemptSpan.SetAttributes(telemetry.HTTPAttributes(method, route, urlLabel, status)...)
		if err != nil {
			attemptSpan.RecordError(err)
		}
		if err != nil || status >= http.StatusBadRequest {
			statusText := http.StatusText(status)
			if statusText == "" {
				statusText = "request failed"
			}
			attemptSpan.SetStatus(codes.Error, statusText)
		} else {
			attemptSpan.SetStatus(codes.Ok, "")
		}
		attemptSpan.End()

		if err == nil && (status < http.StatusInternalServerError || !retry) {
			span.SetAttributes(telemetry.HTTPAttributes(method, route, urlLabel, status)...)
			if status >= http.StatusBadRequest {
				span.SetStatus(codes.Error, http.StatusText(status))
			} else {
				span.SetStatus(codes.Ok, "")
			}
			return resp, nil
		}

		if resp != nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
		}
		lastErr = err
		lastStatus = status

		if !retry {
			break
		}

		wait := c.backoffFor(attempt - 1)
		c.logger.Debug().
			Str(xglog.FieldEvent, "backend.retry").
			Str("method", method).
			Str("route", route).
			Int("attempt", attempt).
			Int("status", status).
			Dur("wait", wait).
			Msg("retrying backend request")
		if err := sleepWithContext(ctx, wait); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
	}

	if lastStatus > 0 {
		span.SetAttributes(telemetry.HTTPAttributes(method, route, urlLabel, lastStatus)...)
	}
	if lastErr != nil {
		span.RecordError(lastErr)
		span.SetStatus(codes.Error, lastErr.Error())
		return nil, lastErr
	}
	return nil, fmt.Errorf("request failed")
}

func endWithError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.End()
}

func (c *Client) applyHeaders(req *http.Request, hasBody bool) {
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.username != "" || c.password != "" {
		req.SetBasicAuth(c.username, c.password)
	}
	if id := xglog.RequestIDFromContext(req.Context()); id != "" {
		req.Header.Set("X-Request-ID", id)
	}
}

// idempotent requests are retried; commands are not, a repeated key press
// is visible to the viewer.
func idempotent(method string) bool {
	return method == http.MethodGet || method == http.MethodDelete
}

func shouldRetry(resp *http.Response, err error) bool {
	if err != nil {
		return !errors.Is(err, context.Canceled)
	}
	if resp == nil {
		return true
	}
	return resp.StatusCode >= http.StatusInternalServerError
}

func (c *Client) backoffFor(attempt int) time.Duration {
	wait := c.backoff * time.Duration(1<<attempt)
	if wait > c.maxBackoff {
		wait = c.maxBackoff
	}
	jitter := time.Duration(c.randInt63n(int64(wait/5 + 1)))
	return wait + jitter
}

func (c *Client) randInt63n(n int64) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rnd.Int63n(n)
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func traceLabels(rawURL string) (string, string) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL, rawURL
	}
	route := routeTemplate(u.Path)
	urlLabel := u.Path
	if urlLabel == "" {
		urlLabel = "/"
	}
	if u.RawQuery != "" {
		urlLabel += "?"
	}
	return route, urlLabel
}

// routeTemplate replaces identifiers in path so metric labels stay bounded.
func routeTemplate(path string) string {
	if path == "" {
		return "/"
	}
	parts := strings.Split(path, "/")
	for i := 1; i < len(parts); i++ {
		switch parts[i-1] {
		case "shows", "boxes":
			parts[i] = "{id}"
		}
	}
	return strings.Join(parts, "/")
}
