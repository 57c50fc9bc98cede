package goSession

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/MrEthical07/goSession/session"
)

func testUser(id string, role session.Role) *session.UserProfile {
	return &session.UserProfile{ID: session.UserID(id), Username: id, Role: role}
}

func testAuth(token, id string, role session.Role) session.AuthResult {
	return session.AuthResult{
		AccessToken:  token,
		RefreshToken: "r-" + token,
		User:         testUser(id, role),
		TokenType:    "Bearer",
		ExpiresIn:    900,
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

// recordingTransport answers every request with one canned response and keeps the requests.
type recordingTransport struct {
	mu       sync.Mutex
	status   int
	body     string
	requests []*http.Request
}

func (t *recordingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.requests = append(t.requests, r)
	return jsonResponse(t.status, t.body), nil
}

func (t *recordingTransport) last() *http.Request {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.requests) == 0 {
		return nil
	}
	return t.requests[len(t.requests)-1]
}

var errStoreDown = errors.New("store down")

// failingStore fails every read and write.
type failingStore struct{}

func (failingStore) AccessToken(context.Context) (string, error) { return "", errStoreDown }
func (failingStore) SetAccessToken(context.Context, string) error { return errStoreDown }
func (failingStore) RefreshToken(context.Context) (string, error) { return "", errStoreDown }
func (failingStore) SetRefreshToken(context.Context, string) error { return errStoreDown }
func (failingStore) User(context.Context) (*session.UserProfile, error) { return nil, errStoreDown }
func (failingStore) SetUser(context.Context, *session.UserProfile) error { return errStoreDown }

// countingStore counts writes that reach the wrapped store.
type countingStore struct {
	session.Store
	writes atomic.Int32
}

func (s *countingStore) SetAccessToken(ctx context.Context, token string) error {
	s.writes.Add(1)
	return s.Store.SetAccessToken(ctx, token)
}

func (s *countingStore) SetRefreshToken(ctx context.Context, token string) error {
	s.writes.Add(1)
	return s.Store.SetRefreshToken(ctx, token)
}

func (s *countingStore) SetUser(ctx context.Context, u *session.UserProfile) error {
	s.writes.Add(1)
	return s.Store.SetUser(ctx, u)
}
