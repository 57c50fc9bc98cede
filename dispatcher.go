package goSession

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrEthical07/goSession/session"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxResponseBody = 4 << 20

// ClearFunc clears the in-memory session if it still holds the revoked access token.
// [State.ClearRevoked] satisfies it.
type ClearFunc func(ctx context.Context, revoked string)

type unauthorizedKind uint8

const (
	unauthorizedNone unauthorizedKind = iota
	unauthorizedAuthEntry
	unauthorizedRevoked
	unauthorizedGuest
)

// outcome carries the 401 classification from RoundTrip back to Do.
type outcome struct {
	kind unauthorizedKind
}

// Dispatcher is an [http.RoundTripper] that attaches the bearer token from the [TokenSlot]
// and reacts to 401 responses. It never retries.
type Dispatcher struct {
	next      http.RoundTripper
	client    *http.Client
	base      *url.URL
	userAgent string
	prefixes  []string

	slot      *TokenSlot
	store     session.Store
	navigator Navigator
	clearer   atomic.Pointer[func() ClearFunc]

	logger  *zap.Logger
	metrics *Metrics
	events  *eventDispatcher
	now     func() time.Time

	closeMu sync.Mutex
	pending sync.WaitGroup
	closed  atomic.Bool
}

func newDispatcher(cfg Config, next http.RoundTripper, slot *TokenSlot, store session.Store, nav Navigator, logger *zap.Logger, metrics *Metrics, events *eventDispatcher) (*Dispatcher, error) {
	base, err := url.Parse(cfg.HTTP.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	base = base.JoinPath(cfg.HTTP.BasePath)

	if next == nil {
		next = http.DefaultTransport
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	d := &Dispatcher{
		next:      next,
		base:      base,
		userAgent: cfg.HTTP.UserAgent,
		prefixes:  append([]string(nil), cfg.Navigation.AuthEntryPrefixes...),
		slot:      slot,
		store:     store,
		navigator: nav,
		logger:    logger,
		metrics:   metrics,
		events:    events,
		now:       time.Now,
	}
	d.client = &http.Client{
		Transport: d,
		Timeout:   cfg.HTTP.Timeout,
	}
	return d, nil
}

// BindClearer installs the accessor used to find the session-clearing capability when a 401
// revokes a session. The accessor is called at failure time, not at bind time.
func (d *Dispatcher) BindClearer(lookup func() ClearFunc) {
	if lookup == nil {
		d.clearer.Store(nil)
		return
	}
	d.clearer.Store(&lookup)
}

// HTTPClient returns a client that sends every request through the dispatcher.
func (d *Dispatcher) HTTPClient() *http.Client {
	return d.client
}

// RoundTrip implements [http.RoundTripper].
func (d *Dispatcher) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	r := req.Clone(ctx)

	token := d.slot.Get()
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	if r.Header.Get("X-Request-ID") == "" {
		id := requestIDFromContext(ctx)
		if id == "" {
			id = uuid.NewString()
		}
		r.Header.Set("X-Request-ID", id)
	}
	if d.userAgent != "" && r.Header.Get("User-Agent") == "" {
		r.Header.Set("User-Agent", d.userAgent)
	}

	start := d.now()
	resp, err := d.next.RoundTrip(r)
	d.metrics.Inc(MetricRequests)
	d.metrics.Observe(MetricRequestLatency, d.now().Sub(start))
	if err != nil {
		d.metrics.Inc(MetricRequestFailures)
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		d.metrics.Inc(MetricRequestFailures)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		kind := d.handleUnauthorized(r, token)
		if oc, ok := ctx.Value(outcomeContextKey{}).(*outcome); ok {
			oc.kind = kind
		}
	}

	return resp, nil
}

func (d *Dispatcher) currentPath(ctx context.Context) string {
	if p, ok := navigationPathFromContext(ctx); ok {
		return p
	}
	if d.navigator == nil {
		return ""
	}
	return d.navigator.CurrentPath()
}

func (d *Dispatcher) handleUnauthorized(r *http.Request, attached string) unauthorizedKind {
	ctx := r.Context()
	ev := Event{
		Method:    r.Method,
		Path:      r.URL.Path,
		RequestID: r.Header.Get("X-Request-ID"),
	}

	if view := d.currentPath(ctx); hasAuthEntryPrefix(view, d.prefixes) {
		d.metrics.Inc(MetricUnauthorizedAuthPage)
		ev.Type = EventAuthPageUnauthorized
		ev.Metadata = map[string]string{"view": view}
		d.events.Emit(ctx, ev)
		return unauthorizedAuthEntry
	}

	if attached == "" {
		d.metrics.Inc(MetricUnauthorizedGuest)
		ev.Type = EventGuestUnauthorized
		d.events.Emit(ctx, ev)
		return unauthorizedGuest
	}

	d.revoke(ctx, attached, ev)
	return unauthorizedRevoked
}

// revoke wipes the persisted entries and the token slot before returning, then clears the
// in-memory state on its own goroutine. Both steps are skipped once a different token has been
// installed, so a session set after the rejected request survives.
func (d *Dispatcher) revoke(ctx context.Context, attached string, ev Event) {
	wipeCtx := context.WithoutCancel(ctx)
	if d.slot.ClearIf(attached) {
		if err := session.Wipe(wipeCtx, d.store); err != nil {
			d.metrics.Inc(MetricStoreFailures)
			d.logger.Warn("session store wipe after 401 failed", zap.Error(err))
		}
	}

	d.metrics.Inc(MetricSessionRevoked)
	d.logger.Info("session revoked by backend",
		zap.String("method", ev.Method),
		zap.String("path", ev.Path),
		zap.String("request_id", ev.RequestID),
	)
	ev.Type = EventSessionRevoked
	d.events.Emit(wipeCtx, ev)

	d.closeMu.Lock()
	if d.closed.Load() {
		d.closeMu.Unlock()
		return
	}
	d.pending.Add(1)
	d.closeMu.Unlock()

	go func() {
		defer d.pending.Done()
		lookup := d.clearer.Load()
		if lookup == nil {
			return
		}
		if fn := (*lookup)(); fn != nil {
			fn(wipeCtx, attached)
		}
	}()
}

// Do sends a JSON request to path (relative to the base path) and decodes a 2xx body into out.
// Non-2xx responses return an [*HTTPError].
func (d *Dispatcher) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if d.closed.Load() {
		return ErrClientClosed
	}

	u := d.base.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	oc := &outcome{}
	req, err := http.NewRequestWithContext(context.WithValue(ctx, outcomeContextKey{}, oc), method, u.String(), reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return fmt.Errorf("%s %s: read body: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		herr := &HTTPError{
			StatusCode: resp.StatusCode,
			Method:     method,
			Path:       path,
		}
		_ = json.Unmarshal(data, herr)
		if resp.StatusCode == http.StatusUnauthorized {
			herr.kinds = append(herr.kinds, ErrUnauthorized)
			switch oc.kind {
			case unauthorizedRevoked:
				herr.kinds = append(herr.kinds, ErrSessionRevoked)
			case unauthorizedAuthEntry:
				herr.kinds = append(herr.kinds, ErrAuthEntryRejected)
			}
		}
		return herr
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrMalformedResponse, method, path, err)
	}
	return nil
}

// Close stops accepting calls and waits for pending session teardowns.
func (d *Dispatcher) Close() {
	d.closeMu.Lock()
	d.closed.Store(true)
	d.closeMu.Unlock()
	d.pending.Wait()
}
