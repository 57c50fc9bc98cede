// Command forumctl drives a forum session from the terminal: sign in, browse, moderate and
// inspect the persisted session.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	goSession "github.com/MrEthical07/goSession"
	"github.com/alicebob/miniredis/v2"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	configPath string
	verbose    bool
	backend    string
	namespace  string
	redisAddr  string
	viewPath   string
	timeout    time.Duration

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "forumctl",
	Short: "Forum session client",
	Long: `forumctl keeps a forum session in a persistent store and uses it for every call.

The session survives between invocations when the storage backend is sqlite or redis.
With the redis backend and no REDIS_ADDR, an in-process miniredis is used instead.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A missing .env is fine.
		_ = godotenv.Load()

		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		} else {
			config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "forumctl.yaml", "YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&backend, "backend", "", "Storage backend override: memory, redis or sqlite")
	rootCmd.PersistentFlags().StringVar(&namespace, "namespace", "", "Storage namespace override")
	rootCmd.PersistentFlags().StringVar(&redisAddr, "redis-addr", "", "Redis address; if empty, REDIS_ADDR env or miniredis is used")
	rootCmd.PersistentFlags().StringVar(&viewPath, "view", "/", "Current view path reported on 401 responses")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Operation timeout")

	registerSessionCommands(rootCmd)
	registerForumCommands(rootCmd)
	registerDemoCommand(rootCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies the command-line overrides.
func loadConfig() (goSession.Config, error) {
	cfg, err := goSession.LoadConfig(configPath)
	if err != nil {
		return goSession.Config{}, err
	}
	if backend != "" {
		cfg.Storage.Backend = goSession.StorageBackend(backend)
	} else if cfg.Storage.Backend == goSession.StorageMemory {
		// A CLI session is useless if it dies with the process.
		cfg.Storage.Backend = goSession.StorageSQLite
	}
	if namespace != "" {
		cfg.Storage.Namespace = namespace
	}
	return cfg, nil
}

// openRedis resolves the Redis client for the redis backend. With no address configured
// anywhere, it starts a miniredis that lives until cleanup runs.
func openRedis() (redis.UniversalClient, func(), error) {
	addr := redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to start miniredis: %w", err)
		}
		client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{mr.Addr()}})
		logger.Info("using miniredis", zap.String("addr", mr.Addr()))
		return client, func() {
			_ = client.Close()
			mr.Close()
		}, nil
	}

	client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
	logger.Info("using redis", zap.String("addr", addr))
	return client, func() { _ = client.Close() }, nil
}

// openClient builds a client from the resolved config. cleanup closes the client and anything
// opened for it.
func openClient(cfg goSession.Config, nav goSession.Navigator) (*goSession.Client, func(), error) {
	b := goSession.New().
		WithConfig(cfg).
		WithLogger(logger).
		WithNavigator(nav)

	release := func() {}
	if cfg.Storage.Backend == goSession.StorageRedis {
		rdb, closeRedis, err := openRedis()
		if err != nil {
			return nil, nil, err
		}
		b = b.WithRedis(rdb)
		release = closeRedis
	}

	c, err := b.Build()
	if err != nil {
		release()
		return nil, nil, err
	}
	return c, func() {
		if err := c.Close(); err != nil {
			logger.Warn("close client", zap.Error(err))
		}
		release()
	}, nil
}

// withClient runs fn against a client built from the current flags.
func withClient(cmd *cobra.Command, fn func(ctx context.Context, c *goSession.Client) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	c, cleanup, err := openClient(cfg, goSession.NewPathNavigator(viewPath))
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()
	return fn(ctx, c)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
