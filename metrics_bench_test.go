package goSession

import (
	"testing"
	"time"
)

// recordRoundTrip mirrors the counter updates RoundTrip makes for one response.
func recordRoundTrip(m *Metrics, status int, d time.Duration) {
	m.Inc(MetricRequests)
	m.Observe(MetricRequestLatency, d)
	if status < 200 || status > 299 {
		m.Inc(MetricRequestFailures)
	}
}

func BenchmarkMetricsRoundTrip(b *testing.B) {
	cases := []struct {
		name string
		cfg  MetricsConfig
	}{
		{"disabled", MetricsConfig{}},
		{"counters", MetricsConfig{Enabled: true}},
		{"counters+latency", MetricsConfig{Enabled: true, EnableLatencyHistograms: true}},
	}
	for _, tc := range cases {
		b.Run(tc.name, func(b *testing.B) {
			m := NewMetrics(tc.cfg)
			b.ReportAllocs()
			b.ResetTimer()

			b.RunParallel(func(pb *testing.PB) {
				i := 0
				for pb.Next() {
					status := 200
					if i%16 == 0 {
						status = 401
					}
					recordRoundTrip(m, status, time.Duration(i%600)*time.Millisecond)
					i++
				}
			})
		})
	}
}

func BenchmarkMetricsSnapshotUnderLoad(b *testing.B) {
	m := NewMetrics(MetricsConfig{Enabled: true, EnableLatencyHistograms: true})
	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-stop:
				return
			default:
				recordRoundTrip(m, 200, 12*time.Millisecond)
			}
		}
	}()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s := m.Snapshot()
		if len(s.Histograms[MetricRequestLatency]) != histBucketCount {
			b.Fatal("expected latency histogram in snapshot")
		}
	}
	b.StopTimer()
	close(stop)
	<-done
}
