package main

import (
	"errors"
	"fmt"
	"io"
	"sync"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/forum"
	"github.com/MrEthical07/goSession/forumtest"
	"github.com/MrEthical07/goSession/metrics/export/prometheus"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var showMetrics bool

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run a scripted session against an in-process backend",
	Long: `demo starts a fake forum backend and a miniredis store, then walks one session through
sign-in, browsing, a server-side revocation and the resulting teardown.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDemo(cmd, cmd.OutOrStdout())
	},
}

func registerDemoCommand(root *cobra.Command) {
	demoCmd.Flags().BoolVar(&showMetrics, "metrics", false, "Print Prometheus metrics at the end")
	root.AddCommand(demoCmd)
}

func runDemo(cmd *cobra.Command, out io.Writer) error {
	srv, err := forumtest.NewServer()
	if err != nil {
		return err
	}
	defer srv.Close()

	mr, err := miniredis.Run()
	if err != nil {
		return fmt.Errorf("failed to start miniredis: %w", err)
	}
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	cfg := goSession.DefaultConfig()
	cfg.HTTP.BaseURL = srv.URL()
	cfg.Storage.Backend = goSession.StorageRedis
	cfg.Metrics.Enabled = true
	cfg.Metrics.EnableLatencyHistograms = true
	cfg.Events.Enabled = true

	nav := goSession.NewPathNavigator("/")
	c, err := goSession.New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithNavigator(nav).
		WithLogger(logger).
		WithEventSink(goSession.NewZapSink(logger)).
		Build()
	if err != nil {
		return err
	}
	closed := false
	defer func() {
		if !closed {
			_ = c.Close()
		}
	}()

	ctx := cmd.Context()
	// Revocation teardown reports from its own goroutine.
	var mu sync.Mutex
	step := func(format string, a ...any) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(out, "- "+format+"\n", a...)
	}

	c.Subscribe(func(s goSession.Snapshot) {
		step("transition: authenticated=%v landing=%s", s.IsAuthenticated, goSession.LandingFor(s))
	})

	surface, _ := c.Landing(ctx)
	step("start as guest, landing=%s", surface)

	nav.Set("/login")
	if err := c.Login(ctx, forumtest.ModeratorUsername, "wrong-password"); errors.Is(err, goSession.ErrAuthEntryRejected) {
		step("bad password on /login rejected, session untouched")
	}
	if err := c.Login(ctx, forumtest.ModeratorUsername, forumtest.ModeratorUsername); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	nav.Set("/threads")
	cats := c.Categories().List(ctx)
	step("%d public categories", len(cats))
	if len(cats) > 0 {
		if _, err := c.Threads().Create(ctx, forum.CreateThreadRequest{Title: "Welcome", Content: "First post", CategoryID: cats[0].ID}); err != nil {
			return err
		}
	}
	list := c.Threads().List(ctx, forum.ThreadListParams{})
	step("%d threads on page %d (size %d)", len(list.Threads), list.Page, list.PageSize)

	nav.Set("/moderation")
	if st, err := c.Moderation().Stats(ctx, ""); err == nil {
		step("moderation stats: %d total reports", st.TotalReports)
	}

	srv.RevokeToken(c.Session().AccessToken)
	step("backend revoked the token")
	if _, err := c.Moderation().Stats(ctx, ""); errors.Is(err, goSession.ErrSessionRevoked) {
		step("next staff call failed with %d, session torn down", goSession.StatusCode(err))
	}

	if err := c.Close(); err != nil {
		logger.Warn("close client", zap.Error(err))
	}
	closed = true
	step("final landing=%s", goSession.LandingFor(c.Session()))

	if showMetrics {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprint(out, prometheus.NewPrometheusExporter(c).Render())
	}
	return nil
}
