// Package inspect serves a development-time HTTP surface for a running
// reactive application: a JSON snapshot of observed state, a WebSocket feed
// of scheduler and reconciler events, and the Prometheus metrics endpoint.
// The Feed implements telemetry.Hooks, so wiring it next to Metrics and
// Tracer through telemetry.Fanout streams every flush live to connected
// inspector clients.
package inspect
