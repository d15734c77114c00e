package reactive

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	serrors "github.com/strand-ui/strand/internal/errors"
)

// maxFlushPasses is the ceiling on how many times a single watcher may be
// re-enqueued within one flush before it is treated as cyclic.
const maxFlushPasses = 100

// Hooks receives scheduler lifecycle notifications. Implementations must be
// fast; they run inline on the flush path. See pkg/telemetry for Prometheus
// and OpenTelemetry implementations.
type Hooks interface {
	// FlushStart fires before a flush drains the queue, with the number of
	// watchers pending at that moment.
	FlushStart(pending int)

	// FlushEnd fires after the queue drained, with how many runs happened.
	FlushEnd(ran int, took time.Duration)

	// WatcherRan fires after each watcher run within a flush.
	WatcherRan(id uint64)

	// CycleDetected fires when a watcher exceeds the re-enqueue ceiling.
	CycleDetected(id uint64)
}

// Scheduler collects dirty watchers, deduplicates them by id, and flushes
// them in one batched pass per tick in ascending creation-id order. Parent
// watchers (created earlier) therefore always run before child watchers,
// and an owner's non-rendering watchers run before its rendering watcher.
type Scheduler struct {
	mu       sync.Mutex
	queue    []*Watcher
	has      map[uint64]bool
	passes   map[uint64]int
	skipped  map[uint64]bool
	ticks    []func()
	waiting  bool
	flushing bool
	index    int

	loop       *runLoop
	microDefer DeferFunc
	macroDefer DeferFunc
	forceMacro bool

	logger *slog.Logger
	hooks  Hooks
}

// SchedulerOption configures a Scheduler at construction.
type SchedulerOption func(*Scheduler)

// WithLogger sets the logger used for scheduler diagnostics.
func WithLogger(logger *slog.Logger) SchedulerOption {
	return func(s *Scheduler) { s.logger = logger }
}

// WithHooks installs lifecycle hooks.
func WithHooks(h Hooks) SchedulerOption {
	return func(s *Scheduler) { s.hooks = h }
}

// WithDeferFuncs overrides both deferral tiers. Pass nil for either to keep
// the built-in run-loop tier.
func WithDeferFuncs(micro, macro DeferFunc) SchedulerOption {
	return func(s *Scheduler) {
		if micro != nil {
			s.microDefer = micro
		}
		if macro != nil {
			s.macroDefer = macro
		}
	}
}

// ForceMacrotask makes every flush use the macrotask-equivalent tier,
// for contexts where ordering relative to platform-level event dispatch
// must be deterministic rather than racing ahead of it.
func ForceMacrotask() SchedulerOption {
	return func(s *Scheduler) { s.forceMacro = true }
}

// NewScheduler creates an idle scheduler with its own run loop.
func NewScheduler(opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		has:     make(map[uint64]bool),
		passes:  make(map[uint64]int),
		skipped: make(map[uint64]bool),
		loop:    newRunLoop(),
		logger:  slog.Default(),
	}
	s.microDefer = s.loop.microDefer
	s.macroDefer = s.loop.macroDefer
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var (
	defaultSchedulerOnce sync.Once
	defaultScheduler     *Scheduler
)

// DefaultScheduler returns the process-wide scheduler that watchers use
// unless constructed with WithScheduler.
func DefaultScheduler() *Scheduler {
	defaultSchedulerOnce.Do(func() {
		defaultScheduler = NewScheduler()
	})
	return defaultScheduler
}

// NextTick registers fn to run after the currently pending flush completes,
// scheduling a flush if none is pending. The returned channel is closed
// once fn has run (or immediately after the flush, when fn is nil).
func NextTick(fn func()) <-chan struct{} {
	return DefaultScheduler().NextTick(fn)
}

// Enqueue hands a dirty watcher to the scheduler. Watchers already pending
// in this flush are not added twice. During a flush, a watcher with an id
// greater than the one currently being processed is spliced into id-order
// so it still runs in this same flush: state changes made by one rendering
// watcher's re-run are picked up without an extra tick. Every enqueue
// during a flush counts toward the watcher's cycle ceiling, whichever
// watcher's run caused it; past the ceiling it is skipped for the rest of
// the flush.
func (s *Scheduler) Enqueue(w *Watcher) {
	s.mu.Lock()
	if s.has[w.id] || s.skipped[w.id] {
		s.mu.Unlock()
		return
	}
	if s.flushing {
		s.passes[w.id]++
		if s.passes[w.id] > maxFlushPasses {
			s.skipped[w.id] = true
			hooks := s.hooks
			s.mu.Unlock()
			s.reportCycle(w)
			if hooks != nil {
				hooks.CycleDetected(w.id)
			}
			return
		}
	}
	s.has[w.id] = true

	if !s.flushing {
		s.queue = append(s.queue, w)
	} else {
		// Splice in sorted position past the current index.
		i := len(s.queue) - 1
		for i >= s.index && s.queue[i].id > w.id {
			i--
		}
		s.queue = append(s.queue, nil)
		copy(s.queue[i+2:], s.queue[i+1:])
		s.queue[i+1] = w
	}

	schedule := !s.waiting
	if schedule {
		s.waiting = true
	}
	s.mu.Unlock()

	if schedule {
		s.deferFlush()
	}
}

// NextTick registers fn to run after the pending flush on this scheduler.
func (s *Scheduler) NextTick(fn func()) <-chan struct{} {
	done := make(chan struct{})

	s.mu.Lock()
	s.ticks = append(s.ticks, func() {
		if fn != nil {
			runTickCallback(fn)
		}
		close(done)
	})
	schedule := !s.waiting
	if schedule {
		s.waiting = true
	}
	s.mu.Unlock()

	if schedule {
		s.deferFlush()
	}
	return done
}

func runTickCallback(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			reportError(recoveredError(r), nil, PhaseTick)
		}
	}()
	fn()
}

// deferFlush hands the flush to the configured tier. Multiple synchronous
// mutations within one tick coalesce: only the first Enqueue schedules.
func (s *Scheduler) deferFlush() {
	d := s.microDefer
	if s.forceMacro || d == nil {
		d = s.macroDefer
	}
	if d == nil {
		d = s.loop.microDefer
	}
	d(s.flush)
}

// flush drains the queue in ascending id order. Iteration is by index, not
// over a snapshot: the queue may grow mid-flush as watchers schedule
// further watchers. A watcher re-enqueued more than maxFlushPasses times in
// one flush is reported as cyclic and skipped for the rest of the flush;
// everything else continues. Scheduler state is reset before tick callbacks
// run so a callback can schedule a fresh flush.
func (s *Scheduler) flush() {
	start := time.Now()

	s.mu.Lock()
	s.flushing = true
	sort.Slice(s.queue, func(i, j int) bool { return s.queue[i].id < s.queue[j].id })
	pending := len(s.queue)
	hooks := s.hooks
	s.mu.Unlock()

	if hooks != nil {
		hooks.FlushStart(pending)
	}

	ran := 0
	for {
		s.mu.Lock()
		if s.index >= len(s.queue) {
			s.mu.Unlock()
			break
		}
		w := s.queue[s.index]
		s.index++
		if s.skipped[w.id] {
			delete(s.has, w.id)
			s.mu.Unlock()
			continue
		}
		// Clear the pending marker before the run so the watcher can
		// legitimately re-enqueue itself during its own run.
		delete(s.has, w.id)
		s.mu.Unlock()

		w.run()
		ran++
		if hooks != nil {
			hooks.WatcherRan(w.id)
		}
	}

	s.mu.Lock()
	ticks := s.ticks
	s.ticks = nil
	s.queue = nil
	s.has = make(map[uint64]bool)
	s.passes = make(map[uint64]int)
	s.skipped = make(map[uint64]bool)
	s.waiting = false
	s.flushing = false
	s.index = 0
	s.mu.Unlock()

	if hooks != nil {
		hooks.FlushEnd(ran, time.Since(start))
	}

	for _, tick := range ticks {
		tick()
	}
}

// reportCycle logs the cycle diagnostic. Non-fatal: the cyclic watcher
// degrades to its last good state while the rest of the flush proceeds.
func (s *Scheduler) reportCycle(w *Watcher) {
	err := serrors.New(serrors.CodeSchedulerCycle)
	s.logger.Warn("strand: watcher re-enqueued beyond the flush ceiling, skipping further runs this flush",
		"watcher", w.id,
		"ceiling", maxFlushPasses,
		"code", err.Code,
	)
}
