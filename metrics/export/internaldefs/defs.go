package internaldefs

import (
	goSession "github.com/MrEthical07/goSession"
)

// CounterDef maps a session counter to its exported name.
type CounterDef struct {
	ID   goSession.MetricID
	Name string
	Help string
}

type HistogramDef struct {
	ID   goSession.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter in render order.
var CounterDefs = []CounterDef{
	{ID: goSession.MetricSessionSet, Name: "gosession_session_set_total", Help: "Sessions installed by login, register or repair."},
	{ID: goSession.MetricSessionCleared, Name: "gosession_session_cleared_total", Help: "Sessions cleared."},
	{ID: goSession.MetricSessionRevoked, Name: "gosession_session_revoked_total", Help: "Sessions torn down by a backend 401."},
	{ID: goSession.MetricUnauthorizedGuest, Name: "gosession_unauthorized_guest_total", Help: "401 responses to requests sent without a token."},
	{ID: goSession.MetricUnauthorizedAuthPage, Name: "gosession_unauthorized_auth_page_total", Help: "401 responses received on an authentication page."},
	{ID: goSession.MetricHydrated, Name: "gosession_hydrated_total", Help: "Sessions seeded from the persistent store at startup."},
	{ID: goSession.MetricReconcileRepaired, Name: "gosession_reconcile_repaired_total", Help: "Sessions restored by the repair pass."},
	{ID: goSession.MetricRequests, Name: "gosession_requests_total", Help: "Backend requests sent."},
	{ID: goSession.MetricRequestFailures, Name: "gosession_request_failures_total", Help: "Backend requests that failed or returned non-2xx."},
	{ID: goSession.MetricMalformedResponses, Name: "gosession_malformed_responses_total", Help: "List responses replaced by an empty default."},
	{ID: goSession.MetricStoreFailures, Name: "gosession_store_failures_total", Help: "Persistent store reads or writes that failed."},
}

var HistogramDefs = []HistogramDef{
	{ID: goSession.MetricRequestLatency, Name: "gosession_request_latency_seconds", Help: "Backend round-trip latency."},
}

// HistogramBounds are the upper bounds of the eight latency buckets, in seconds.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix names each bucket for exporters that cannot carry labels.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets copies raw into a fixed array, zero-filling missing buckets.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
