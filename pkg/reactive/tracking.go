package reactive

import (
	"runtime"
	"sync"
)

// trackingContext holds the reactive tracking state for a goroutine.
// Each goroutine has its own context so tracked evaluation on one goroutine
// cannot observe another goroutine's active watcher.
type trackingContext struct {
	// watcherStack records nested watcher evaluations. The top entry is the
	// watcher currently collecting dependencies; a nil top entry (pushed by
	// Untracked) means reads are untracked. Evaluation can nest because a
	// computed value's getter may read another computed value.
	watcherStack []*Watcher
}

// trackingContexts stores per-goroutine tracking contexts.
var trackingContexts sync.Map

// getGoroutineID returns a unique identifier for the current goroutine.
// This uses the runtime stack to extract the goroutine ID.
// Note: This is an implementation detail and should not be relied upon externally.
func getGoroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)

	// The stack starts with "goroutine <id> "
	var id uint64
	for i := 10; i < n; i++ { // Skip "goroutine "
		if buf[i] == ' ' {
			break
		}
		id = id*10 + uint64(buf[i]-'0')
	}
	return id
}

// getTrackingContext returns the tracking context for the current goroutine,
// creating one if none exists.
func getTrackingContext() *trackingContext {
	gid := getGoroutineID()

	if ctx, ok := trackingContexts.Load(gid); ok {
		return ctx.(*trackingContext)
	}

	ctx := &trackingContext{}
	trackingContexts.Store(gid, ctx)
	return ctx
}

// activeWatcher returns the watcher currently collecting dependencies.
// Returns nil if no tracking is active on this goroutine.
func activeWatcher() *Watcher {
	ctx := getTrackingContext()
	if n := len(ctx.watcherStack); n > 0 {
		return ctx.watcherStack[n-1]
	}
	return nil
}

// pushWatcher installs w as the active watcher. Every pushWatcher must be
// paired with a popWatcher on all exit paths, including panics; Watcher.get
// does this with defer so a throwing getter cannot leave a stale entry.
func pushWatcher(w *Watcher) {
	ctx := getTrackingContext()
	ctx.watcherStack = append(ctx.watcherStack, w)
}

// popWatcher removes the top of the active-watcher stack, restoring the
// caller's watcher after a nested evaluation completes.
func popWatcher() {
	ctx := getTrackingContext()
	if n := len(ctx.watcherStack); n > 0 {
		ctx.watcherStack[n-1] = nil
		ctx.watcherStack = ctx.watcherStack[:n-1]
	}
}

// Untracked runs fn without tracking cell reads as dependencies.
// Reads inside fn do not subscribe the surrounding watcher.
//
// Example:
//
//	reactive.Untracked(func() {
//	    // Reading state here won't subscribe the current watcher
//	    total := state.Get("count")
//	    fmt.Println("current:", total)
//	})
func Untracked(fn func()) {
	pushWatcher(nil)
	defer popWatcher()
	fn()
}
