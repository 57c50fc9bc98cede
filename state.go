package goSession

import (
	"context"
	"sync"
	"time"

	"github.com/MrEthical07/goSession/session"
	"go.uber.org/zap"
)

// Snapshot is an immutable copy of the session at one point in time.
type Snapshot struct {
	User         *session.UserProfile
	AccessToken  string
	RefreshToken string
	// TokenType and ExpiresIn are carried from the auth result; expiry is never enforced.
	TokenType       string
	ExpiresIn       int64
	IsAuthenticated bool
	// LastChangeAt is zero until the first SetSession or ClearSession.
	LastChangeAt time.Time
}

// Role returns the signed-in user's role, or "" for a guest.
func (s Snapshot) Role() session.Role {
	if s.User == nil {
		return ""
	}
	return s.User.Role
}

func (s Snapshot) clone() Snapshot {
	s.User = s.User.Clone()
	return s
}

// Listener receives every transition, in order. A listener must not call SetSession or
// ClearSession synchronously; Snapshot is safe.
type Listener func(Snapshot)

// State is the authoritative in-memory session. It is the only writer of session fields; each
// transition also updates the persistent store and the token slot.
type State struct {
	store   session.Store
	slot    *TokenSlot
	logger  *zap.Logger
	metrics *Metrics
	events  *eventDispatcher
	now     func() time.Time

	// transition serializes SetSession/ClearSession and listener delivery.
	transition sync.Mutex

	mu        sync.RWMutex
	snap      Snapshot
	listeners map[uint64]Listener
	nextID    uint64
}

func newState(store session.Store, slot *TokenSlot, logger *zap.Logger, metrics *Metrics, events *eventDispatcher) *State {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &State{
		store:     store,
		slot:      slot,
		logger:    logger,
		metrics:   metrics,
		events:    events,
		now:       time.Now,
		listeners: make(map[uint64]Listener),
	}
}

// Snapshot returns a copy of the current session.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.clone()
}

// Subscribe registers fn for every future transition and returns a function that removes it.
func (s *State) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// SetSession records a successful authentication. The store is written first, then the token
// slot, then the in-memory fields. A store failure is logged and counted but does not stop the
// in-memory transition.
func (s *State) SetSession(ctx context.Context, res session.AuthResult) error {
	if res.AccessToken == "" || res.User == nil {
		return ErrInvalidAuthResult
	}

	s.transition.Lock()
	defer s.transition.Unlock()

	rec := session.Record{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		User:         res.User.Clone(),
	}
	if err := session.Save(ctx, s.store, rec); err != nil {
		s.metrics.Inc(MetricStoreFailures)
		s.logger.Warn("session store write failed", zap.Error(err))
	}

	s.slot.Set(res.AccessToken)

	next := Snapshot{
		User:            res.User.Clone(),
		AccessToken:     res.AccessToken,
		RefreshToken:    res.RefreshToken,
		TokenType:       res.TokenType,
		ExpiresIn:       res.ExpiresIn,
		IsAuthenticated: true,
		LastChangeAt:    s.now(),
	}
	s.commit(next)

	s.metrics.Inc(MetricSessionSet)
	s.events.Emit(ctx, Event{
		Type:   EventSessionSet,
		UserID: string(next.User.ID),
		Role:   string(next.User.Role),
	})
	return nil
}

// ClearSession drops the session. Calling it on an empty session is a no-op apart from the
// timestamp and the notification.
func (s *State) ClearSession(ctx context.Context) {
	s.transition.Lock()
	defer s.transition.Unlock()
	s.clear(ctx)
}

// ClearRevoked clears the session only while it still holds the rejected access token. A
// session installed after that token was rejected is kept.
func (s *State) ClearRevoked(ctx context.Context, token string) {
	s.transition.Lock()
	defer s.transition.Unlock()

	s.mu.RLock()
	current := s.snap.AccessToken
	s.mu.RUnlock()
	if token == "" || current != token {
		s.logger.Debug("skipping stale revocation, session changed since the rejected request")
		return
	}
	s.clear(ctx)
}

// clear wipes the store, the slot and the fields. Caller holds s.transition.
func (s *State) clear(ctx context.Context) {
	if err := session.Wipe(ctx, s.store); err != nil {
		s.metrics.Inc(MetricStoreFailures)
		s.logger.Warn("session store wipe failed", zap.Error(err))
	}

	s.slot.Set("")
	s.commit(Snapshot{LastChangeAt: s.now()})

	s.metrics.Inc(MetricSessionCleared)
	s.events.Emit(ctx, Event{Type: EventSessionCleared})
}

// seed installs a persisted session without writing it back. LastChangeAt stays zero.
func (s *State) seed(rec session.Record) {
	s.transition.Lock()
	defer s.transition.Unlock()

	s.slot.Set(rec.AccessToken)

	s.mu.Lock()
	s.snap = Snapshot{
		User:            rec.User.Clone(),
		AccessToken:     rec.AccessToken,
		RefreshToken:    rec.RefreshToken,
		IsAuthenticated: true,
	}
	s.mu.Unlock()
}

// commit installs next and delivers it to listeners. Caller holds s.transition.
func (s *State) commit(next Snapshot) {
	s.mu.Lock()
	s.snap = next
	listeners := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(next.clone())
	}
}
