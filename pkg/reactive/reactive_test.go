package reactive

import (
	"testing"
	"time"
)

// waitTick blocks until the scheduler's pending flush (if any) and the tick
// callbacks behind it have completed.
func waitTick(t *testing.T, s *Scheduler) {
	t.Helper()
	select {
	case <-s.NextTick(nil):
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for flush")
	}
}

// runOnLoop executes fn on the scheduler's loop goroutine, so a burst of
// writes inside fn lands in one tick the way writes from an event handler
// would. Follow with waitTick to wait for the flush those writes scheduled.
func runOnLoop(t *testing.T, s *Scheduler, fn func()) {
	t.Helper()
	select {
	case <-s.NextTick(fn):
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for loop execution")
	}
}

// syncRunCounter builds a sync watcher around getter and returns a pointer
// to its run count. The construction run itself counts.
func syncRunCounter(t *testing.T, getter func()) (*int, *Watcher) {
	t.Helper()
	runs := new(int)
	w := NewWatcher(func() any {
		*runs++
		getter()
		return nil
	}, Sync())
	t.Cleanup(w.Teardown)
	return runs, w
}
