package telemetry

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/strand-ui/strand"

// Tracer emits one span per scheduler flush with events for watcher runs,
// cycle skips and patch operations. It implements reactive.Hooks and
// vtree.Hooks. Flushes are serialized on the scheduler's run loop, so a
// single current-span slot suffices.
type Tracer struct {
	tracer trace.Tracer

	mu   sync.Mutex
	span trace.Span
}

// NewTracer creates a Tracer using the global OpenTelemetry provider.
func NewTracer() *Tracer {
	return &Tracer{tracer: otel.Tracer(tracerName)}
}

// FlushStart implements reactive.Hooks.
func (t *Tracer) FlushStart(pending int) {
	_, span := t.tracer.Start(context.Background(), "strand.flush",
		trace.WithAttributes(attribute.Int("strand.pending", pending)),
	)
	t.mu.Lock()
	t.span = span
	t.mu.Unlock()
}

// FlushEnd implements reactive.Hooks.
func (t *Tracer) FlushEnd(ran int, took time.Duration) {
	t.mu.Lock()
	span := t.span
	t.span = nil
	t.mu.Unlock()
	if span == nil {
		return
	}
	span.SetAttributes(
		attribute.Int("strand.ran", ran),
		attribute.Int64("strand.duration_us", took.Microseconds()),
	)
	span.End()
}

// WatcherRan implements reactive.Hooks.
func (t *Tracer) WatcherRan(id uint64) {
	t.event("strand.watcher_run", attribute.Int64("strand.watcher", int64(id)))
}

// CycleDetected implements reactive.Hooks.
func (t *Tracer) CycleDetected(id uint64) {
	t.mu.Lock()
	span := t.span
	t.mu.Unlock()
	if span == nil {
		return
	}
	span.AddEvent("strand.cycle", trace.WithAttributes(
		attribute.Int64("strand.watcher", int64(id)),
	))
	span.SetStatus(codes.Error, "watcher update cycle")
}

// OpApplied implements vtree.Hooks.
func (t *Tracer) OpApplied(op string) {
	t.event("strand.patch_op", attribute.String("strand.op", op))
}

func (t *Tracer) event(name string, attrs ...attribute.KeyValue) {
	t.mu.Lock()
	span := t.span
	t.mu.Unlock()
	if span == nil {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
