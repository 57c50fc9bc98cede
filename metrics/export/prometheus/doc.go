// Package prometheus renders goSession metrics in Prometheus text exposition format.
//
// [NewPrometheusExporter] reads a [goSession.Client] and exposes an [http.Handler]. Counter
// names are gosession_*_total; the single histogram is gosession_request_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry. Callers mount the Handler.
//   - Mutate session state.
package prometheus
