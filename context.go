package goSession

import (
	"context"
	"strings"
	"sync/atomic"
)

type requestIDContextKey struct{}
type navigationPathContextKey struct{}
type outcomeContextKey struct{}

// WithRequestID sets the X-Request-ID sent with requests made under ctx. Without it the
// dispatcher generates one per request.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDContextKey{}, id)
}

// WithNavigationPath overrides the [Navigator] for requests made under ctx. Useful for
// server-side renderers that know the page being served.
func WithNavigationPath(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, navigationPathContextKey{}, path)
}

func requestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	id, _ := ctx.Value(requestIDContextKey{}).(string)
	return id
}

func navigationPathFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}

	p, ok := ctx.Value(navigationPathContextKey{}).(string)
	return p, ok
}

// Navigator reports the caller's current view path. The dispatcher reads it when a 401
// arrives; it never changes it.
type Navigator interface {
	CurrentPath() string
}

// PathNavigator is a [Navigator] whose path is set by the host application.
type PathNavigator struct {
	path atomic.Value
}

func NewPathNavigator(initial string) *PathNavigator {
	n := &PathNavigator{}
	n.Set(initial)
	return n
}

func (n *PathNavigator) Set(path string) {
	n.path.Store(path)
}

func (n *PathNavigator) CurrentPath() string {
	p, _ := n.path.Load().(string)
	return p
}

// NavigatorFunc adapts a function to [Navigator].
type NavigatorFunc func() string

func (f NavigatorFunc) CurrentPath() string { return f() }

func hasAuthEntryPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
