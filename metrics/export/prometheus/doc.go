// Package prometheus renders console metrics in Prometheus text format.
//
// [NewPrometheusExporter] accepts a [perksAdmin.Console] and exposes an
// [http.Handler]. Counter names are prefixed perks_admin_ and end in _total;
// the single histogram is perks_admin_api_request_duration_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry. Callers mount the Handler.
//   - Mutate console state.
package prometheus
