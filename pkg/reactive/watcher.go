package reactive

import "sync"

// Watcher is a re-runnable unit of work with a tracked dependency set.
// Running the getter re-establishes from scratch which cells the watcher
// depends on: cells read on the previous run but not this one are
// unsubscribed, so conditional branches no longer taken stop notifying.
//
// Watchers come in three modes. A plain watcher re-runs via the scheduler
// when a dependency changes. A lazy watcher only flips its dirty flag and
// recomputes on the next read (see Computed). A sync watcher re-runs
// immediately inside the notifying write.
type Watcher struct {
	id uint64

	// getter is the tracked function to re-run.
	getter func() any

	// onChange is invoked with (new, old) when the result changes.
	onChange func(newValue, oldValue any)

	// sched receives this watcher when a dependency marks it dirty.
	sched *Scheduler

	// deps is the dependency set established by the previous run; newDeps
	// collects the current run. get swaps them wholesale and unsubscribes
	// the stale remainder.
	depMu     sync.Mutex
	deps      []*Cell
	depIDs    map[uint64]struct{}
	newDeps   []*Cell
	newDepIDs map[uint64]struct{}

	// mu protects value, dirty and active.
	mu     sync.Mutex
	value  any
	dirty  bool
	active bool

	lazy     bool
	syncMode bool
	deep     bool
}

// WatcherOption configures a Watcher at construction.
type WatcherOption func(*Watcher)

// Lazy makes the watcher compute on demand: it starts dirty, does not run at
// construction, and a dependency change only flips the dirty flag.
func Lazy() WatcherOption {
	return func(w *Watcher) { w.lazy = true }
}

// Sync makes the watcher re-run immediately inside the notifying write
// instead of going through the scheduler.
func Sync() WatcherOption {
	return func(w *Watcher) { w.syncMode = true }
}

// Deep makes each run traverse the result, subscribing to nested shape
// cells so mutations deep inside observed containers still notify.
func Deep() WatcherOption {
	return func(w *Watcher) { w.deep = true }
}

// OnChange sets the result-change callback.
func OnChange(fn func(newValue, oldValue any)) WatcherOption {
	return func(w *Watcher) { w.onChange = fn }
}

// WithScheduler routes the watcher through sched instead of the default
// scheduler. Useful for isolating tests.
func WithScheduler(sched *Scheduler) WatcherOption {
	return func(w *Watcher) { w.sched = sched }
}

// NewWatcher creates a watcher around getter. Unless Lazy is given, the
// getter runs immediately to establish the initial value and dependencies.
func NewWatcher(getter func() any, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		id:        nextID(),
		getter:    getter,
		active:    true,
		depIDs:    make(map[uint64]struct{}),
		newDepIDs: make(map[uint64]struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.sched == nil {
		w.sched = DefaultScheduler()
	}

	if w.lazy {
		w.dirty = true
	} else {
		w.value = w.get()
	}
	return w
}

// ID returns the unique identifier for this watcher. IDs are assigned in
// creation order and double as the flush sort key.
func (w *Watcher) ID() uint64 {
	return w.id
}

// get runs the getter with this watcher installed as the active watcher,
// then swaps the dependency sets. Push and pop are paired via defer so a
// panicking getter cannot leave a stale active watcher installed; the
// watcher keeps whatever was tracked before the throw.
func (w *Watcher) get() (value any) {
	pushWatcher(w)
	defer popWatcher()
	defer w.cleanupDeps()
	defer func() {
		if r := recover(); r != nil {
			reportError(recoveredError(r), w, PhaseGetter)
			w.mu.Lock()
			value = w.value
			w.mu.Unlock()
		}
	}()

	value = w.getter()
	if w.deep {
		traverse(value)
	}
	return value
}

// addDep records a cell read during the current run. The cell is added to
// the new set once, and subscribed only if the previous run was not already
// subscribed.
func (w *Watcher) addDep(c *Cell) {
	w.depMu.Lock()
	if _, seen := w.newDepIDs[c.id]; seen {
		w.depMu.Unlock()
		return
	}
	w.newDepIDs[c.id] = struct{}{}
	w.newDeps = append(w.newDeps, c)
	_, subscribed := w.depIDs[c.id]
	w.depMu.Unlock()

	if !subscribed {
		c.addSub(w)
	}
}

// cleanupDeps promotes the new dependency set and unsubscribes from every
// cell of the previous set that was not read this run. Without this, a
// watcher accumulates subscriptions to branches it no longer reads.
func (w *Watcher) cleanupDeps() {
	w.depMu.Lock()
	old := w.deps
	w.deps = w.newDeps
	w.depIDs = w.newDepIDs
	w.newDeps = nil
	w.newDepIDs = make(map[uint64]struct{})
	current := w.depIDs
	w.depMu.Unlock()

	for _, c := range old {
		if _, still := current[c.id]; !still {
			c.removeSub(w)
		}
	}
}

// MarkDirty is called by a cell when a dependency changed. Lazy watchers
// only flip their dirty flag; sync watchers run in place; everything else
// is handed to the scheduler for the next batched flush.
func (w *Watcher) MarkDirty() {
	switch {
	case w.lazy:
		w.mu.Lock()
		w.dirty = true
		w.mu.Unlock()
	case w.syncMode:
		w.run()
	default:
		w.sched.Enqueue(w)
	}
}

// run re-invokes the getter and fires onChange when the result changed.
// Container results and deep watchers always propagate: identity equality
// cannot see mutation inside the same container.
func (w *Watcher) run() {
	w.mu.Lock()
	if !w.active {
		w.mu.Unlock()
		return
	}
	w.mu.Unlock()

	value := w.get()

	w.mu.Lock()
	old := w.value
	changed := !strictEqual(value, old) || isContainer(value) || w.deep
	if changed {
		w.value = value
	}
	cb := w.onChange
	w.mu.Unlock()

	if changed && cb != nil {
		w.invoke(cb, value, old)
	}
}

// invoke calls a callback with panic isolation so one failing callback does
// not abort sibling callbacks or the flush.
func (w *Watcher) invoke(cb func(any, any), newValue, oldValue any) {
	defer func() {
		if r := recover(); r != nil {
			reportError(recoveredError(r), w, PhaseCallback)
		}
	}()
	cb(newValue, oldValue)
}

// Evaluate computes the value of a lazy watcher and clears its dirty flag.
// Callers are expected to check Dirty first; Computed does this.
func (w *Watcher) Evaluate() {
	value := w.get()
	w.mu.Lock()
	w.value = value
	w.dirty = false
	w.mu.Unlock()
}

// Dirty reports whether a lazy watcher needs recomputation.
func (w *Watcher) Dirty() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.dirty
}

// Value returns the last computed value. For lazy watchers it recomputes if
// dirty and re-registers this watcher's dependencies on the outer active
// watcher, so reading a computed value inside another watcher chains the
// subscription through.
func (w *Watcher) Value() any {
	if w.lazy {
		if w.Dirty() {
			w.Evaluate()
		}
		if activeWatcher() != nil {
			w.Depend()
		}
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.value
}

// Depend registers every cell of this watcher's dependency set on the
// currently active watcher.
func (w *Watcher) Depend() {
	w.depMu.Lock()
	deps := make([]*Cell, len(w.deps))
	copy(deps, w.deps)
	w.depMu.Unlock()

	for _, c := range deps {
		c.Depend()
	}
}

// Teardown deactivates the watcher and unsubscribes from every cell it
// holds. A torn-down watcher simply stops being re-run.
func (w *Watcher) Teardown() {
	w.mu.Lock()
	if !w.active {
		w.mu.Unlock()
		return
	}
	w.active = false
	w.mu.Unlock()

	w.depMu.Lock()
	deps := w.deps
	w.deps = nil
	w.depIDs = make(map[uint64]struct{})
	w.depMu.Unlock()

	for _, c := range deps {
		c.removeSub(w)
	}
}

// Active reports whether the watcher has not been torn down.
func (w *Watcher) Active() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.active
}

// depCellIDs returns the ids of the current dependency set, for tests.
func (w *Watcher) depCellIDs() map[uint64]struct{} {
	w.depMu.Lock()
	defer w.depMu.Unlock()
	ids := make(map[uint64]struct{}, len(w.depIDs))
	for id := range w.depIDs {
		ids[id] = struct{}{}
	}
	return ids
}

// traverse walks an observed value, reading every nested shape cell so the
// active watcher subscribes to deep mutations. The seen set guards against
// cycles through self-referencing containers.
func traverse(v any) {
	traverseWith(v, make(map[uint64]struct{}))
}

func traverseWith(v any, seen map[uint64]struct{}) {
	switch c := v.(type) {
	case *Object:
		if _, ok := seen[c.shape.id]; ok {
			return
		}
		seen[c.shape.id] = struct{}{}
		for _, k := range c.Keys() {
			traverseWith(c.Get(k), seen)
		}
	case *List:
		if _, ok := seen[c.shape.id]; ok {
			return
		}
		seen[c.shape.id] = struct{}{}
		for i := 0; i < c.Len(); i++ {
			traverseWith(c.At(i), seen)
		}
	}
}
