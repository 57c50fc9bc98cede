//go:build integration
// +build integration

package test

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/forumtest"
	"github.com/MrEthical07/goSession/session"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// redisMode describes which Redis backend the compatibility suite is running against.
type redisMode struct {
	name  string
	setup func(t *testing.T) redis.UniversalClient
}

// redisModes returns the Redis backends to test. miniredis is always available.
// Real Redis standalone is used when REDIS_ADDR is set (e.g. "127.0.0.1:6379"), a cluster
// when REDIS_CLUSTER_ADDRS is set (comma-separated).
func redisModes(t *testing.T) []redisMode {
	t.Helper()
	modes := []redisMode{
		{
			name: "miniredis",
			setup: func(t *testing.T) redis.UniversalClient {
				t.Helper()
				mr := miniredis.RunT(t)
				rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
				t.Cleanup(func() { _ = rdb.Close() })
				return rdb
			},
		},
	}

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		modes = append(modes, redisMode{
			name: "standalone:" + addr,
			setup: func(t *testing.T) redis.UniversalClient {
				t.Helper()
				rdb := redis.NewClient(&redis.Options{Addr: addr})
				ping(t, rdb)
				rdb.FlushDB(context.Background())
				t.Cleanup(func() { rdb.FlushDB(context.Background()); _ = rdb.Close() })
				return rdb
			},
		})
	}

	if addrs := os.Getenv("REDIS_CLUSTER_ADDRS"); addrs != "" {
		modes = append(modes, redisMode{
			name: "cluster",
			setup: func(t *testing.T) redis.UniversalClient {
				t.Helper()
				rdb := redis.NewClusterClient(&redis.ClusterOptions{Addrs: splitAddrs(addrs)})
				ping(t, rdb)
				t.Cleanup(func() { _ = rdb.Close() })
				return rdb
			},
		})
	}

	return modes
}

func ping(t *testing.T, rdb redis.UniversalClient) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		t.Skipf("cannot connect to Redis: %v", err)
	}
}

func splitAddrs(s string) []string {
	var addrs []string
	for _, a := range strings.Split(s, ",") {
		if a = strings.TrimSpace(a); a != "" {
			addrs = append(addrs, a)
		}
	}
	return addrs
}

func newCompatClient(t *testing.T, srv *forumtest.Server, rdb redis.UniversalClient, namespace string) *goSession.Client {
	t.Helper()
	cfg := goSession.DefaultConfig()
	cfg.HTTP.BaseURL = srv.URL()
	cfg.Storage.Backend = goSession.StorageRedis
	cfg.Storage.KeyPrefix = "compat"
	cfg.Storage.Namespace = namespace

	c, err := goSession.New().WithConfig(cfg).WithRedis(rdb).Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func newCompatServer(t *testing.T) *forumtest.Server {
	t.Helper()
	srv, err := forumtest.NewServer()
	if err != nil {
		t.Fatalf("forumtest: %v", err)
	}
	t.Cleanup(srv.Close)
	return srv
}

// TestRedisCompat_RecordRoundTrip validates the transactional write across backends.
func TestRedisCompat_RecordRoundTrip(t *testing.T) {
	for _, mode := range redisModes(t) {
		t.Run(mode.name, func(t *testing.T) {
			rdb := mode.setup(t)
			store := session.NewRedisStore(rdb, "compat", "rt", time.Minute)
			ctx := context.Background()

			rec := session.Record{
				AccessToken:  "a1",
				RefreshToken: "r1",
				User:         &session.UserProfile{ID: "u1", Username: "alice", Role: session.RoleUser},
			}
			if err := session.Save(ctx, store, rec); err != nil {
				t.Fatalf("save: %v", err)
			}

			got, err := session.Load(ctx, store)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if !got.Complete() || got.User.Username != "alice" {
				t.Fatalf("unexpected record %+v", got)
			}

			if err := session.Wipe(ctx, store); err != nil {
				t.Fatalf("wipe: %v", err)
			}
			got, err = session.Load(ctx, store)
			if err != nil {
				t.Fatalf("load after wipe: %v", err)
			}
			if !got.Empty() {
				t.Fatalf("expected empty record, got %+v", got)
			}
		})
	}
}

// TestRedisCompat_RevocationIsVisibleToNewClients validates that a revoked session is gone from
// the shared store before the failing call returns.
func TestRedisCompat_RevocationIsVisibleToNewClients(t *testing.T) {
	for _, mode := range redisModes(t) {
		t.Run(mode.name, func(t *testing.T) {
			rdb := mode.setup(t)
			srv := newCompatServer(t)
			ctx := context.Background()

			first := newCompatClient(t, srv, rdb, "revoke")
			if err := first.Login(ctx, forumtest.ModeratorUsername, forumtest.ModeratorUsername); err != nil {
				t.Fatalf("login: %v", err)
			}

			restored := newCompatClient(t, srv, rdb, "revoke")
			if !restored.Session().IsAuthenticated {
				t.Fatal("expected bootstrap to restore the persisted session")
			}

			srv.RevokeToken(first.Session().AccessToken)
			if _, err := first.Moderation().Stats(ctx, ""); !errors.Is(err, goSession.ErrSessionRevoked) {
				t.Fatalf("expected ErrSessionRevoked, got %v", err)
			}

			after := newCompatClient(t, srv, rdb, "revoke")
			if after.Session().IsAuthenticated {
				t.Fatal("expected revoked session to be wiped from the store")
			}
		})
	}
}

// TestRedisCompat_NamespacesAreIsolated validates that two installations never see each other.
func TestRedisCompat_NamespacesAreIsolated(t *testing.T) {
	for _, mode := range redisModes(t) {
		t.Run(mode.name, func(t *testing.T) {
			rdb := mode.setup(t)
			srv := newCompatServer(t)
			ctx := context.Background()

			a := newCompatClient(t, srv, rdb, "tab-a")
			b := newCompatClient(t, srv, rdb, "tab-b")
			if err := a.Login(ctx, forumtest.AdminUsername, forumtest.AdminUsername); err != nil {
				t.Fatalf("login: %v", err)
			}

			repaired, err := b.Reconcile(ctx)
			if err != nil {
				t.Fatalf("reconcile: %v", err)
			}
			if repaired || b.Session().IsAuthenticated {
				t.Fatal("session leaked across namespaces")
			}
		})
	}
}
