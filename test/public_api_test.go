package test

import (
	"context"
	"net/http"
	"testing"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/forum"
	"github.com/MrEthical07/goSession/session"
)

// This test guards public API compile-compat for consumers.
func TestPublicAPISurfaceCompile(t *testing.T) {
	_ = goSession.New
	_ = goSession.DefaultConfig
	_ = goSession.LoadConfig
	_ = goSession.LandingFor

	var _ *goSession.Client
	var _ goSession.Config
	var _ goSession.Snapshot
	var _ goSession.Surface
	var _ goSession.Navigator = goSession.NewPathNavigator("/")
	var _ goSession.Navigator = goSession.NavigatorFunc(func() string { return "/" })
	var _ goSession.EventSink = goSession.NoOpSink{}
	var _ http.RoundTripper = (*goSession.Dispatcher)(nil)
	var _ forum.Requester = (*goSession.Dispatcher)(nil)

	var _ session.Store = (*session.MemoryStore)(nil)
	var _ session.Store = (*session.RedisStore)(nil)
	var _ session.Store = (*session.SQLiteStore)(nil)

	var _ error = goSession.ErrUnauthorized
	var _ error = goSession.ErrSessionRevoked
	var _ error = goSession.ErrAuthEntryRejected
	var _ error = goSession.ErrInvalidAuthResult
	var _ error = goSession.ErrClientClosed
	var _ error = goSession.ErrMalformedResponse
	var _ error = (*goSession.HTTPError)(nil)

	var _ func(*goSession.Client, context.Context, string, string) error = (*goSession.Client).Login
	var _ func(*goSession.Client, context.Context, session.AuthResult) error = (*goSession.Client).SetSession
	var _ func(*goSession.Client, context.Context) = (*goSession.Client).ClearSession
	var _ func(*goSession.Client, context.Context) (bool, error) = (*goSession.Client).Reconcile
	var _ func(*goSession.Client, context.Context) (goSession.Surface, error) = (*goSession.Client).Landing
	var _ func(*goSession.Client) error = (*goSession.Client).Close
}
