package reactive

// Computed is a lazily evaluated derived value backed by a lazy watcher.
// It starts dirty and computes on first read; a dependency change only
// flips the dirty flag, so repeated reads without intervening writes run
// the getter exactly once. Reading a Computed inside another watcher
// re-registers its dependencies on that outer watcher.
type Computed struct {
	w *Watcher
}

// NewComputed creates a computed value around getter.
func NewComputed(getter func() any, opts ...WatcherOption) *Computed {
	opts = append(opts, Lazy())
	return &Computed{w: NewWatcher(getter, opts...)}
}

// Value returns the computed value, recomputing only if dirty.
func (c *Computed) Value() any {
	return c.w.Value()
}

// Dirty reports whether the next read will recompute.
func (c *Computed) Dirty() bool {
	return c.w.Dirty()
}

// Teardown releases all dependency subscriptions.
func (c *Computed) Teardown() {
	c.w.Teardown()
}
