package goSession

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/MrEthical07/goSession/session"
	"github.com/google/go-cmp/cmp"
)

func newTestState(t *testing.T, store session.Store) (*State, *TokenSlot, *Metrics) {
	t.Helper()
	slot := &TokenSlot{}
	m := NewMetrics(MetricsConfig{Enabled: true})
	return newState(store, slot, nil, m, nil), slot, m
}

func TestSetSessionWritesStoreSlotAndState(t *testing.T) {
	store := session.NewMemoryStore()
	st, slot, m := newTestState(t, store)
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	st.now = func() time.Time { return fixed }

	if err := st.SetSession(context.Background(), testAuth("t1", "u1", session.RoleAdmin)); err != nil {
		t.Fatalf("set session: %v", err)
	}

	want := Snapshot{
		User:            testUser("u1", session.RoleAdmin),
		AccessToken:     "t1",
		RefreshToken:    "r-t1",
		TokenType:       "Bearer",
		ExpiresIn:       900,
		IsAuthenticated: true,
		LastChangeAt:    fixed,
	}
	if diff := cmp.Diff(want, st.Snapshot()); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}
	if slot.Get() != "t1" {
		t.Fatalf("expected slot t1, got %q", slot.Get())
	}

	rec, err := session.Load(context.Background(), store)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !rec.Complete() || rec.AccessToken != "t1" || rec.RefreshToken != "r-t1" {
		t.Fatalf("unexpected persisted record: %+v", rec)
	}
	if m.Value(MetricSessionSet) != 1 {
		t.Fatalf("expected one session_set, got %d", m.Value(MetricSessionSet))
	}
}

func TestSetSessionRejectsIncompleteResult(t *testing.T) {
	store := session.NewMemoryStore()
	st, slot, _ := newTestState(t, store)

	cases := map[string]session.AuthResult{
		"no token": {User: testUser("u1", session.RoleUser)},
		"no user":  {AccessToken: "t1"},
	}
	for name, res := range cases {
		if err := st.SetSession(context.Background(), res); !errors.Is(err, ErrInvalidAuthResult) {
			t.Fatalf("%s: expected ErrInvalidAuthResult, got %v", name, err)
		}
	}
	if st.Snapshot().IsAuthenticated || slot.Get() != "" {
		t.Fatal("rejected result must not change the session")
	}
	if raw := store.Raw("access"); len(raw) != 0 {
		t.Fatalf("rejected result must not reach the store, got %q", raw)
	}
}

func TestSetSessionSurvivesStoreFailure(t *testing.T) {
	st, slot, m := newTestState(t, failingStore{})

	if err := st.SetSession(context.Background(), testAuth("t1", "u1", session.RoleUser)); err != nil {
		t.Fatalf("store failure must not fail SetSession: %v", err)
	}
	if !st.Snapshot().IsAuthenticated || slot.Get() != "t1" {
		t.Fatal("expected in-memory session despite store failure")
	}
	if m.Value(MetricStoreFailures) != 1 {
		t.Fatalf("expected one store failure, got %d", m.Value(MetricStoreFailures))
	}

	st.ClearSession(context.Background())
	if st.Snapshot().IsAuthenticated || slot.Get() != "" {
		t.Fatal("expected cleared session despite store failure")
	}
}

func TestClearSessionWipesEverything(t *testing.T) {
	store := session.NewMemoryStore()
	st, slot, _ := newTestState(t, store)
	ctx := context.Background()

	if err := st.SetSession(ctx, testAuth("t1", "u1", session.RoleModerator)); err != nil {
		t.Fatalf("set session: %v", err)
	}
	st.ClearSession(ctx)

	snap := st.Snapshot()
	if snap.IsAuthenticated || snap.User != nil || snap.AccessToken != "" || snap.RefreshToken != "" {
		t.Fatalf("expected empty snapshot, got %+v", snap)
	}
	if snap.LastChangeAt.IsZero() {
		t.Fatal("clear must stamp LastChangeAt")
	}
	if slot.Get() != "" {
		t.Fatal("slot must be empty after clear")
	}
	rec, _ := session.Load(ctx, store)
	if !rec.Empty() {
		t.Fatalf("expected empty store, got %+v", rec)
	}
}

func TestClearSessionOnEmptyIsHarmless(t *testing.T) {
	st, _, m := newTestState(t, session.NewMemoryStore())
	st.ClearSession(context.Background())
	st.ClearSession(context.Background())

	if st.Snapshot().IsAuthenticated {
		t.Fatal("expected guest")
	}
	if m.Value(MetricSessionCleared) != 2 {
		t.Fatalf("expected two clears, got %d", m.Value(MetricSessionCleared))
	}
}

func TestSeedLeavesLastChangeZero(t *testing.T) {
	store := session.NewMemoryStore()
	st, slot, _ := newTestState(t, store)

	st.seed(session.Record{AccessToken: "t1", User: testUser("u1", session.RoleUser)})

	snap := st.Snapshot()
	if !snap.IsAuthenticated || snap.AccessToken != "t1" {
		t.Fatalf("expected seeded session, got %+v", snap)
	}
	if !snap.LastChangeAt.IsZero() {
		t.Fatalf("seed must not stamp LastChangeAt, got %v", snap.LastChangeAt)
	}
	if slot.Get() != "t1" {
		t.Fatal("seed must prime the slot")
	}
	if raw := store.Raw("access"); len(raw) != 0 {
		t.Fatal("seed must not write the store")
	}
}

func TestListenersSeeEveryTransitionInOrder(t *testing.T) {
	st, _, _ := newTestState(t, session.NewMemoryStore())
	ctx := context.Background()

	var got []string
	unsubscribe := st.Subscribe(func(s Snapshot) {
		if s.IsAuthenticated {
			got = append(got, "set:"+s.AccessToken)
			return
		}
		got = append(got, "clear")
	})

	_ = st.SetSession(ctx, testAuth("t1", "u1", session.RoleUser))
	_ = st.SetSession(ctx, testAuth("t2", "u1", session.RoleUser))
	st.ClearSession(ctx)

	unsubscribe()
	unsubscribe()
	_ = st.SetSession(ctx, testAuth("t3", "u1", session.RoleUser))

	want := []string{"set:t1", "set:t2", "clear"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("listener sequence mismatch (-want +got):\n%s", diff)
	}
}

func TestListenerObservesCommittedState(t *testing.T) {
	st, slot, _ := newTestState(t, session.NewMemoryStore())

	var seen Snapshot
	var slotSeen string
	st.Subscribe(func(Snapshot) {
		seen = st.Snapshot()
		slotSeen = slot.Get()
	})

	_ = st.SetSession(context.Background(), testAuth("t1", "u1", session.RoleUser))
	if !seen.IsAuthenticated || slotSeen != "t1" {
		t.Fatalf("listener ran before commit: snap=%+v slot=%q", seen, slotSeen)
	}
}

func TestSnapshotDoesNotAlias(t *testing.T) {
	st, _, _ := newTestState(t, session.NewMemoryStore())
	res := testAuth("t1", "u1", session.RoleUser)
	_ = st.SetSession(context.Background(), res)

	res.User.Role = session.RoleAdmin
	snap := st.Snapshot()
	snap.User.Username = "mutated"

	again := st.Snapshot()
	if again.User.Role != session.RoleUser || again.User.Username != "u1" {
		t.Fatalf("snapshot aliased internal state: %+v", again.User)
	}
}

func TestConcurrentTransitionsStayConsistent(t *testing.T) {
	store := session.NewMemoryStore()
	st, slot, _ := newTestState(t, store)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = st.SetSession(ctx, testAuth("tok", "u1", session.RoleUser))
		}()
		go func() {
			defer wg.Done()
			st.ClearSession(ctx)
		}()
	}
	wg.Wait()

	snap := st.Snapshot()
	if snap.IsAuthenticated != (slot.Get() != "") {
		t.Fatalf("slot and state diverged: snap=%v slot=%q", snap.IsAuthenticated, slot.Get())
	}
	if snap.IsAuthenticated != (string(store.Raw("access")) != "") {
		t.Fatalf("store and state diverged")
	}
}

func TestRoleOfGuestIsEmpty(t *testing.T) {
	if (Snapshot{}).Role() != "" {
		t.Fatal("guest role must be empty")
	}
}

func TestClearRevokedOnlyClearsMatchingToken(t *testing.T) {
	store := session.NewMemoryStore()
	st, slot, m := newTestState(t, store)
	ctx := context.Background()

	if err := st.SetSession(ctx, testAuth("t2", "u1", session.RoleUser)); err != nil {
		t.Fatalf("set session: %v", err)
	}

	st.ClearRevoked(ctx, "t1")
	if !st.Snapshot().IsAuthenticated || slot.Get() != "t2" || string(store.Raw("access")) != "t2" {
		t.Fatal("a stale token must not clear the current session")
	}
	if m.Value(MetricSessionCleared) != 0 {
		t.Fatalf("expected no clear transition, got %d", m.Value(MetricSessionCleared))
	}

	st.ClearRevoked(ctx, "")
	if !st.Snapshot().IsAuthenticated {
		t.Fatal("an empty token must not clear the session")
	}

	st.ClearRevoked(ctx, "t2")
	if st.Snapshot().IsAuthenticated || slot.Get() != "" || len(store.Raw("access")) != 0 {
		t.Fatal("the matching token must clear the session")
	}
}

func TestTokenSlotClearIf(t *testing.T) {
	var slot TokenSlot
	if slot.ClearIf("a") {
		t.Fatal("empty slot must not report a clear")
	}

	slot.Set("a")
	if slot.ClearIf("b") || slot.Get() != "a" {
		t.Fatal("mismatched token must leave the slot alone")
	}
	if !slot.ClearIf("a") || slot.Get() != "" {
		t.Fatal("matching token must empty the slot")
	}
}
