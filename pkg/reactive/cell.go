package reactive

import "sync"

// Cell is one tracked slot of the dependency graph. Containers own one Cell
// per key plus a shape Cell representing "this container's key-set or length
// changed". Reads during an active watcher run subscribe that watcher; the
// owning container notifies the cell when the slot changes.
//
// Cells are created lazily and never destroyed explicitly; they are
// garbage-collected with their owner.
type Cell struct {
	id uint64

	// subs are the watchers subscribed to this cell.
	subs []*Watcher

	// subsMu protects the subs slice.
	subsMu sync.RWMutex
}

// newCell creates a cell with a fresh monotonic id.
func newCell() *Cell {
	return &Cell{id: nextID()}
}

// ID returns the unique identifier for this cell.
func (c *Cell) ID() uint64 {
	return c.id
}

// Depend registers the currently active watcher, if any, as a subscriber and
// records this cell in that watcher's current dependency set.
func (c *Cell) Depend() {
	if w := activeWatcher(); w != nil {
		w.addDep(c)
	}
}

// addSub adds a watcher to this cell's subscribers.
// Deduplicates by watcher ID to prevent double-subscription.
func (c *Cell) addSub(w *Watcher) {
	if w == nil {
		return
	}

	c.subsMu.Lock()
	defer c.subsMu.Unlock()

	for _, existing := range c.subs {
		if existing.id == w.id {
			return
		}
	}
	c.subs = append(c.subs, w)
}

// removeSub removes a watcher from this cell's subscribers.
func (c *Cell) removeSub(w *Watcher) {
	if w == nil {
		return
	}

	c.subsMu.Lock()
	defer c.subsMu.Unlock()

	for i, existing := range c.subs {
		if existing.id == w.id {
			// Remove by swapping with last element (order doesn't matter)
			c.subs[i] = c.subs[len(c.subs)-1]
			c.subs = c.subs[:len(c.subs)-1]
			return
		}
	}
}

// Notify asks every subscriber to mark itself dirty. It does not re-run
// anything here; non-sync watchers hand themselves to the scheduler.
// Uses copy-before-notify so a MarkDirty that tears a watcher down cannot
// corrupt the iteration.
func (c *Cell) Notify() {
	c.subsMu.RLock()
	subs := make([]*Watcher, len(c.subs))
	copy(subs, c.subs)
	c.subsMu.RUnlock()

	for _, w := range subs {
		w.MarkDirty()
	}
}

// subCount returns the current number of subscribers.
func (c *Cell) subCount() int {
	c.subsMu.RLock()
	defer c.subsMu.RUnlock()
	return len(c.subs)
}
