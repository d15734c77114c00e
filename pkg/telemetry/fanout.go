package telemetry

import (
	"time"

	"github.com/strand-ui/strand/pkg/reactive"
	"github.com/strand-ui/strand/pkg/vtree"
)

// Hooks is the union of the scheduler and reconciler hook interfaces.
// Metrics, Tracer and the inspector feed all satisfy it.
type Hooks interface {
	reactive.Hooks
	vtree.Hooks
}

// Fanout combines multiple hook implementations into one, invoking them in
// order.
func Fanout(hs ...Hooks) Hooks {
	return fanout(hs)
}

type fanout []Hooks

func (f fanout) FlushStart(pending int) {
	for _, h := range f {
		h.FlushStart(pending)
	}
}

func (f fanout) FlushEnd(ran int, took time.Duration) {
	for _, h := range f {
		h.FlushEnd(ran, took)
	}
}

func (f fanout) WatcherRan(id uint64) {
	for _, h := range f {
		h.WatcherRan(id)
	}
}

func (f fanout) CycleDetected(id uint64) {
	for _, h := range f {
		h.CycleDetected(id)
	}
}

func (f fanout) OpApplied(op string) {
	for _, h := range f {
		h.OpApplied(op)
	}
}
