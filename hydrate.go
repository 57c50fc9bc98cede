package goSession

import (
	"context"

	"github.com/MrEthical07/goSession/session"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Hydrator rebuilds the in-memory session from the persistent store.
//
// Bootstrap is the source of truth and runs once, synchronously, inside [Builder.Build].
// Reconcile is a repair pass that may run any number of times.
type Hydrator struct {
	store   session.Store
	state   *State
	logger  *zap.Logger
	metrics *Metrics
	events  *eventDispatcher
	group   singleflight.Group
}

func newHydrator(store session.Store, state *State, logger *zap.Logger, metrics *Metrics, events *eventDispatcher) *Hydrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hydrator{
		store:   store,
		state:   state,
		logger:  logger,
		metrics: metrics,
		events:  events,
	}
}

func (h *Hydrator) load(ctx context.Context) session.Record {
	rec, err := session.Load(ctx, h.store)
	if err != nil {
		h.metrics.Inc(MetricStoreFailures)
		h.logger.Warn("session store read failed, treating entries as absent", zap.Error(err))
	}
	return rec
}

// Bootstrap reads the store once and seeds the state and token slot when it holds a complete
// record. A partial record seeds nothing. Reports whether a session was seeded.
func (h *Hydrator) Bootstrap(ctx context.Context) bool {
	rec := h.load(ctx)
	if !rec.Complete() {
		if !rec.Empty() {
			h.logger.Debug("ignoring partial session record",
				zap.Bool("has_access_token", rec.AccessToken != ""),
				zap.Bool("has_user", rec.User != nil),
			)
		}
		return false
	}

	h.state.seed(rec)
	h.metrics.Inc(MetricHydrated)
	h.events.Emit(ctx, Event{
		Type:   EventSessionHydrated,
		UserID: string(rec.User.ID),
		Role:   string(rec.User.Role),
	})
	return true
}

// Reconcile repairs an unauthenticated state when the store holds a complete record. It is a
// no-op when the state is already authenticated or the store is empty, partial, or unreadable.
// Concurrent calls share one pass.
func (h *Hydrator) Reconcile(ctx context.Context) (repaired bool, err error) {
	v, err, _ := h.group.Do("reconcile", func() (any, error) {
		return h.reconcile(ctx)
	})
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

func (h *Hydrator) reconcile(ctx context.Context) (bool, error) {
	if h.state.Snapshot().IsAuthenticated {
		return false, nil
	}

	rec := h.load(ctx)
	if !rec.Complete() {
		return false, nil
	}

	if err := h.state.SetSession(ctx, rec.AuthResult()); err != nil {
		return false, err
	}

	h.metrics.Inc(MetricReconcileRepaired)
	h.logger.Info("session repaired from store", zap.String("user_id", string(rec.User.ID)))
	h.events.Emit(ctx, Event{
		Type:   EventSessionRepaired,
		UserID: string(rec.User.ID),
		Role:   string(rec.User.Role),
	})
	return true, nil
}
