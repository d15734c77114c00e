// Package telemetry provides observability adapters for the reactive
// scheduler and the tree reconciler: a Prometheus metrics collector and an
// OpenTelemetry tracer, both implementing reactive.Hooks and vtree.Hooks so
// they plug straight into reactive.WithHooks and vtree.WithHooks.
package telemetry
