package goSession

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/MrEthical07/goSession/forum"
	"github.com/MrEthical07/goSession/session"
	"go.uber.org/zap"
)

// Client is the composition root: one session, one dispatcher, one set of forum services.
// All methods are safe for concurrent use.
type Client struct {
	config     Config
	logger     *zap.Logger
	store      session.Store
	slot       *TokenSlot
	state      *State
	dispatcher *Dispatcher
	hydrator   *Hydrator
	events     *eventDispatcher
	metrics    *Metrics
	forum      *forum.Client

	closers   []func() error
	closeOnce sync.Once
	closeErr  error
}

// Session returns the current session snapshot.
func (c *Client) Session() Snapshot {
	return c.state.Snapshot()
}

// Subscribe registers fn for every session transition. See [State.Subscribe].
func (c *Client) Subscribe(fn Listener) (unsubscribe func()) {
	return c.state.Subscribe(fn)
}

// State exposes the session state for callers that need SetSession/ClearSession directly.
func (c *Client) State() *State { return c.state }

func (c *Client) Dispatcher() *Dispatcher { return c.dispatcher }

// HTTPClient returns an [http.Client] that attaches the session token and handles 401s.
func (c *Client) HTTPClient() *http.Client { return c.dispatcher.HTTPClient() }

func (c *Client) Categories() *forum.CategoryService { return c.forum.Categories }

func (c *Client) Threads() *forum.ThreadService { return c.forum.Threads }

func (c *Client) Moderation() *forum.ModerationService { return c.forum.Moderation }

// Login authenticates against the backend and installs the returned session.
func (c *Client) Login(ctx context.Context, username, password string) error {
	res, err := c.forum.Auth.Login(ctx, forum.LoginRequest{Username: username, Password: password})
	if err != nil {
		return err
	}
	return c.state.SetSession(ctx, res)
}

// Register creates an account and installs the returned session.
func (c *Client) Register(ctx context.Context, username, password string) error {
	res, err := c.forum.Auth.Register(ctx, forum.RegisterRequest{Username: username, Password: password})
	if err != nil {
		return err
	}
	return c.state.SetSession(ctx, res)
}

// Logout clears the local session. The backend keeps no session to revoke.
func (c *Client) Logout(ctx context.Context) {
	c.state.ClearSession(ctx)
}

func (c *Client) SetSession(ctx context.Context, res session.AuthResult) error {
	return c.state.SetSession(ctx, res)
}

func (c *Client) ClearSession(ctx context.Context) {
	c.state.ClearSession(ctx)
}

// Reconcile runs the hydration repair pass. See [Hydrator.Reconcile].
func (c *Client) Reconcile(ctx context.Context) (bool, error) {
	return c.hydrator.Reconcile(ctx)
}

// Landing runs the repair pass and returns the surface for the resulting session. A repair
// failure is returned alongside the surface of the unrepaired session.
func (c *Client) Landing(ctx context.Context) (Surface, error) {
	_, err := c.hydrator.Reconcile(ctx)
	return LandingFor(c.state.Snapshot()), err
}

func (c *Client) MetricsSnapshot() MetricsSnapshot {
	return c.metrics.Snapshot()
}

// EventsDropped returns how many events the bus discarded because its buffer was full.
func (c *Client) EventsDropped() uint64 {
	return c.events.Dropped()
}

// Close waits for pending session teardowns, drains the event bus and releases any store the
// client opened itself. Injected stores and Redis clients are left open.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.dispatcher.Close()
		c.events.Close()

		var errs []error
		for i := len(c.closers) - 1; i >= 0; i-- {
			if err := c.closers[i](); err != nil {
				errs = append(errs, err)
			}
		}
		c.closeErr = errors.Join(errs...)
		_ = c.logger.Sync()
	})
	return c.closeErr
}
