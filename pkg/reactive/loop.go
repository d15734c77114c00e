package reactive

import (
	"sync"
	"time"
)

// DeferFunc schedules fn to run at a later task boundary. The scheduler
// uses two tiers: a microtask-equivalent default that runs fn as soon as
// the current call stack unwinds, and a macrotask-equivalent tier that
// yields to timer dispatch first. Both tiers must execute fn serially with
// respect to each other.
type DeferFunc func(fn func())

// runLoop is the serial executor behind the built-in defer tiers. All
// deferred work for one scheduler runs on a single goroutine, preserving
// the cooperative single-threaded model: flushes never run concurrently
// with each other.
type runLoop struct {
	mu      sync.Mutex
	jobs    []func()
	wake    chan struct{}
	started bool
}

func newRunLoop() *runLoop {
	return &runLoop{wake: make(chan struct{}, 1)}
}

// post queues fn and wakes the loop goroutine, starting it on first use.
// The queue is unbounded so the loop itself can post follow-up work without
// deadlocking.
func (l *runLoop) post(fn func()) {
	l.mu.Lock()
	if !l.started {
		l.started = true
		go l.run()
	}
	l.jobs = append(l.jobs, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

func (l *runLoop) run() {
	for range l.wake {
		for {
			l.mu.Lock()
			if len(l.jobs) == 0 {
				l.mu.Unlock()
				break
			}
			job := l.jobs[0]
			l.jobs = l.jobs[1:]
			l.mu.Unlock()

			job()
		}
	}
}

// microDefer is the microtask-equivalent tier: fn runs as soon as the loop
// goroutine picks it up.
func (l *runLoop) microDefer(fn func()) {
	l.post(fn)
}

// macroDefer is the macrotask-equivalent tier: a zero-ish timer hop before
// the post, so platform-level event dispatch scheduled on timers is ordered
// ahead of the flush. Used when deterministic ordering relative to such
// dispatch matters (trusted user-initiated event handling).
func (l *runLoop) macroDefer(fn func()) {
	time.AfterFunc(time.Millisecond, func() {
		l.post(fn)
	})
}
