package reactive

import (
	"sort"
	"sync"
)

// Observe recursively wraps plain containers so every access routes through
// cells: map[string]any becomes *Object, []any becomes *List. Wrapping is
// idempotent; an already-observed value is returned as-is. Anything else is
// returned unchanged.
func Observe(value any) any {
	switch v := value.(type) {
	case *Object:
		return v
	case *List:
		return v
	case map[string]any:
		return newObject(v)
	case []any:
		return newList(v)
	default:
		return value
	}
}

// Object is the tracked form of a string-keyed record. It owns one Cell per
// declared key plus a shape Cell representing "this object's key-set
// changed". Keys stored after wrapping are invisible to per-key tracking
// unless added through Declare.
type Object struct {
	mu    sync.RWMutex
	data  map[string]any
	cells map[string]*Cell
	shape *Cell
}

func newObject(src map[string]any) *Object {
	o := &Object{
		data:  make(map[string]any, len(src)),
		cells: make(map[string]*Cell, len(src)),
		shape: newCell(),
	}
	for k, v := range src {
		o.data[k] = Observe(v)
		o.cells[k] = newCell()
	}
	return o
}

// NewObject returns an empty observed object.
func NewObject() *Object {
	return newObject(nil)
}

// Get returns the value stored under key and, when a watcher is active,
// subscribes it to the key's cell. If the value is itself observed, the
// watcher also subscribes to that container's shape cell, and for lists to
// every element's shape cell recursively, so deep mutations inside
// unindexed list contents still surface.
func (o *Object) Get(key string) any {
	o.mu.RLock()
	v := o.data[key]
	cell := o.cells[key]
	o.mu.RUnlock()

	if cell != nil {
		cell.Depend()
	}
	dependChild(v)
	return v
}

// Set replaces the value under key. Writes of a strictly-equal value are
// no-ops (NaN over NaN counts as no-change). New values are recursively
// wrapped before the key's subscribers are notified.
//
// Setting a key that was never declared stores the value untracked: no cell
// exists for it, so no watcher can observe it. Use Declare for dynamic keys.
func (o *Object) Set(key string, value any) {
	o.mu.Lock()
	cell, tracked := o.cells[key]
	if !tracked {
		o.data[key] = value
		o.mu.Unlock()
		return
	}
	if strictEqual(o.data[key], value) {
		o.mu.Unlock()
		return
	}
	o.data[key] = Observe(value)
	o.mu.Unlock()

	cell.Notify()
}

// Declare installs a fresh cell for key, stores the wrapped value and
// notifies the shape cell. This is the explicit operation that makes a key
// added after wrapping visible to tracking. Declaring an existing key
// behaves like Set.
func (o *Object) Declare(key string, value any) {
	o.mu.Lock()
	if _, exists := o.cells[key]; exists {
		o.mu.Unlock()
		o.Set(key, value)
		return
	}
	o.data[key] = Observe(value)
	o.cells[key] = newCell()
	o.mu.Unlock()

	o.shape.Notify()
}

// Delete removes key and its cell, then notifies both the key's former
// subscribers and the shape cell.
func (o *Object) Delete(key string) {
	o.mu.Lock()
	cell, tracked := o.cells[key]
	_, present := o.data[key]
	delete(o.data, key)
	delete(o.cells, key)
	o.mu.Unlock()

	if !present {
		return
	}
	if tracked {
		cell.Notify()
	}
	o.shape.Notify()
}

// Has reports whether key is present, subscribing to the shape cell.
func (o *Object) Has(key string) bool {
	o.shape.Depend()
	o.mu.RLock()
	defer o.mu.RUnlock()
	_, ok := o.data[key]
	return ok
}

// Keys returns the declared keys in sorted order, subscribing to the shape
// cell.
func (o *Object) Keys() []string {
	o.shape.Depend()
	o.mu.RLock()
	keys := make([]string, 0, len(o.data))
	for k := range o.data {
		keys = append(keys, k)
	}
	o.mu.RUnlock()
	sort.Strings(keys)
	return keys
}

// Len returns the number of keys, subscribing to the shape cell.
func (o *Object) Len() int {
	o.shape.Depend()
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.data)
}

// ShapeCell exposes the object's shape cell for advanced integrations.
func (o *Object) ShapeCell() *Cell {
	return o.shape
}

// Peek returns the value under key without subscribing anything.
func (o *Object) Peek(key string) any {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.data[key]
}

// dependChild subscribes the active watcher to the shape of an observed
// child value, recursing through list elements.
func dependChild(v any) {
	switch c := v.(type) {
	case *Object:
		c.shape.Depend()
	case *List:
		c.shape.Depend()
		c.dependElements()
	}
}
