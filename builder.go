package goSession

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/MrEthical07/goSession/forum"
	"github.com/MrEthical07/goSession/session"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// storePinger is implemented by stores that can report reachability, such as
// [session.RedisStore].
type storePinger interface {
	Ping(ctx context.Context) (time.Duration, error)
}

// Builder assembles a [Client]. A Builder can be used once.
type Builder struct {
	config    Config
	store     session.Store
	redis     redis.UniversalClient
	logger    *zap.Logger
	navigator Navigator
	transport http.RoundTripper
	eventSink EventSink

	built bool
}

// New returns a Builder holding [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithStore injects a persistent store, overriding Storage.Backend. The client does not close
// it.
func (b *Builder) WithStore(s session.Store) *Builder {
	b.store = s
	return b
}

// WithRedis supplies the client used when Storage.Backend is "redis".
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

func (b *Builder) WithLogger(l *zap.Logger) *Builder {
	b.logger = l
	return b
}

// WithNavigator supplies the current-path source consulted on 401 responses.
func (b *Builder) WithNavigator(n Navigator) *Builder {
	b.navigator = n
	return b
}

// WithTransport sets the transport the dispatcher wraps. Defaults to http.DefaultTransport.
func (b *Builder) WithTransport(rt http.RoundTripper) *Builder {
	b.transport = rt
	return b
}

func (b *Builder) WithEventSink(sink EventSink) *Builder {
	b.eventSink = sink
	return b
}

func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration, opens the store and hydrates the session from it before
// returning.
func (b *Builder) Build() (*Client, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := b.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Hydration.BootstrapTimeout)
	defer cancel()

	// -------- PERSISTENT STORE --------
	store, closers, err := b.openStore(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}
	if p, ok := store.(storePinger); ok {
		if latency, err := p.Ping(ctx); err != nil {
			logger.Warn("session store unreachable, persisted session unavailable", zap.Error(err))
		} else {
			logger.Debug("session store reachable", zap.Duration("latency", latency))
		}
	}

	c := &Client{
		config:  cfg,
		logger:  logger,
		store:   store,
		slot:    &TokenSlot{},
		closers: closers,
	}
	c.metrics = NewMetrics(cfg.Metrics)
	c.events = newEventDispatcher(cfg.Events, b.eventSink)
	c.state = newState(store, c.slot, logger.Named("state"), c.metrics, c.events)

	// -------- DISPATCHER --------
	d, err := newDispatcher(cfg, b.transport, c.slot, store, b.navigator, logger.Named("dispatcher"), c.metrics, c.events)
	if err != nil {
		c.events.Close()
		for _, closeFn := range closers {
			_ = closeFn()
		}
		return nil, err
	}
	d.BindClearer(func() ClearFunc {
		return c.state.ClearRevoked
	})
	c.dispatcher = d

	c.forum = forum.NewClient(d,
		forum.WithLogger(logger.Named("forum")),
		forum.WithMalformedHook(func(string) { c.metrics.Inc(MetricMalformedResponses) }),
	)

	// -------- HYDRATION --------
	c.hydrator = newHydrator(store, c.state, logger.Named("hydrator"), c.metrics, c.events)
	c.hydrator.Bootstrap(ctx)

	b.built = true

	return c, nil
}

func (b *Builder) openStore(ctx context.Context, cfg StorageConfig) (session.Store, []func() error, error) {
	if b.store != nil {
		return b.store, nil, nil
	}

	switch cfg.Backend {
	case StorageRedis:
		if b.redis != nil {
			return session.NewRedisStore(b.redis, cfg.KeyPrefix, cfg.Namespace, cfg.TTL), nil, nil
		}
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
		return session.NewRedisStore(rdb, cfg.KeyPrefix, cfg.Namespace, cfg.TTL), []func() error{rdb.Close}, nil
	case StorageSQLite:
		s, err := session.OpenSQLiteStore(ctx, cfg.SQLitePath, cfg.Namespace)
		if err != nil {
			return nil, nil, err
		}
		return s, []func() error{s.Close}, nil
	default:
		return session.NewMemoryStore(), nil, nil
	}
}
