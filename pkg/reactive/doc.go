// Package reactive implements a fine-grained dependency-tracking graph and
// the batched update scheduler that drives it.
//
// The graph has three pieces. A Cell is one tracked slot of state: reads
// during a watcher run subscribe that watcher, writes notify every
// subscriber. Observe wraps plain maps and slices into Object and List
// containers that route every access through cells. A Watcher is a
// re-runnable unit of work whose dependency set is re-established from
// scratch on every run, so conditional branches that are no longer read
// stop being subscribed.
//
// Dirty watchers are collected by a Scheduler, deduplicated, ordered by
// creation id, and flushed in one batched pass per tick:
//
//	state := reactive.Observe(map[string]any{"count": 0}).(*reactive.Object)
//	stop, _ := state.Watch("count", func(newV, oldV any) {
//	    fmt.Println("count is now", newV)
//	})
//	defer stop()
//
//	state.Set("count", 1)
//	state.Set("count", 2)
//	<-reactive.NextTick(nil) // callback fires once, with 2
package reactive
