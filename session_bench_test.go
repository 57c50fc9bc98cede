package goSession

import (
	"context"
	"net/http"
	"testing"

	"github.com/MrEthical07/goSession/session"
)

func newBenchmarkDispatcher(b *testing.B, status int) (*Dispatcher, *State) {
	b.Helper()

	slot := &TokenSlot{}
	store := session.NewMemoryStore()
	m := NewMetrics(MetricsConfig{Enabled: true, EnableLatencyHistograms: true})
	state := newState(store, slot, nil, m, nil)
	transport := roundTripFunc(func(*http.Request) (*http.Response, error) {
		return jsonResponse(status, `{"ok":true}`), nil
	})

	d, err := newDispatcher(defaultConfig(), transport, slot, store, NewPathNavigator("/threads"), nil, m, nil)
	if err != nil {
		b.Fatalf("new dispatcher: %v", err)
	}
	d.BindClearer(func() ClearFunc { return state.ClearRevoked })
	b.Cleanup(d.Close)
	return d, state
}

func BenchmarkDispatcherDoAuthenticated(b *testing.B) {
	d, state := newBenchmarkDispatcher(b, http.StatusOK)
	ctx := context.Background()
	if err := state.SetSession(ctx, testAuth("bench-token", "u1", session.RoleUser)); err != nil {
		b.Fatalf("set session: %v", err)
	}

	var out struct {
		OK bool `json:"ok"`
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := d.Do(ctx, http.MethodGet, "/threads", nil, nil, &out); err != nil {
			b.Fatalf("do: %v", err)
		}
	}
}

func BenchmarkDispatcherDoGuestParallel(b *testing.B) {
	d, _ := newBenchmarkDispatcher(b, http.StatusOK)
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if err := d.Do(ctx, http.MethodGet, "/categories", nil, nil, nil); err != nil {
				b.Errorf("do: %v", err)
				return
			}
		}
	})
}

func BenchmarkStateSnapshotParallel(b *testing.B) {
	state := newState(session.NewMemoryStore(), &TokenSlot{}, nil, nil, nil)
	if err := state.SetSession(context.Background(), testAuth("bench-token", "u1", session.RoleModerator)); err != nil {
		b.Fatalf("set session: %v", err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if !state.Snapshot().IsAuthenticated {
				b.Error("expected authenticated snapshot")
				return
			}
		}
	})
}

func BenchmarkStateSetClear(b *testing.B) {
	state := newState(session.NewMemoryStore(), &TokenSlot{}, nil, nil, nil)
	ctx := context.Background()
	res := testAuth("bench-token", "u1", session.RoleUser)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := state.SetSession(ctx, res); err != nil {
			b.Fatalf("set session: %v", err)
		}
		state.ClearSession(ctx)
	}
}
