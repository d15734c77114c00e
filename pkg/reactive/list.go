package reactive

import (
	"sort"
	"sync"
)

// List is the tracked form of an ordered sequence. Element access is not
// tracked per index; instead the List owns a single shape Cell and every
// mutating operation notifies it exactly once. Elements pushed in are
// recursively wrapped.
//
// This is the tracked-sequence composition of the classic "override the
// array's mutating methods" trick: mutators route through one shape-cell
// notification before delegating to the underlying slice operation.
type List struct {
	mu    sync.RWMutex
	items []any
	shape *Cell
}

func newList(src []any) *List {
	l := &List{
		items: make([]any, len(src)),
		shape: newCell(),
	}
	for i, v := range src {
		l.items[i] = Observe(v)
	}
	return l
}

// NewList returns an empty observed list.
func NewList() *List {
	return newList(nil)
}

// At returns the element at index i, subscribing the active watcher to the
// list's shape cell and to the element's own shape if it is observed.
// Out-of-range indices return nil.
func (l *List) At(i int) any {
	l.shape.Depend()
	l.mu.RLock()
	var v any
	if i >= 0 && i < len(l.items) {
		v = l.items[i]
	}
	l.mu.RUnlock()

	dependChild(v)
	return v
}

// Len returns the element count, subscribing to the shape cell.
func (l *List) Len() int {
	l.shape.Depend()
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}

// Append adds values to the end of the list. One shape notification per
// call regardless of how many values are appended.
func (l *List) Append(values ...any) {
	if len(values) == 0 {
		return
	}
	l.mu.Lock()
	for _, v := range values {
		l.items = append(l.items, Observe(v))
	}
	l.mu.Unlock()

	l.shape.Notify()
}

// Insert places value at index i, shifting later elements right.
// Indices are clamped to the valid range.
func (l *List) Insert(i int, value any) {
	l.mu.Lock()
	if i < 0 {
		i = 0
	}
	if i > len(l.items) {
		i = len(l.items)
	}
	l.items = append(l.items, nil)
	copy(l.items[i+1:], l.items[i:])
	l.items[i] = Observe(value)
	l.mu.Unlock()

	l.shape.Notify()
}

// RemoveAt deletes the element at index i. Out-of-range indices are no-ops
// and do not notify.
func (l *List) RemoveAt(i int) {
	l.mu.Lock()
	if i < 0 || i >= len(l.items) {
		l.mu.Unlock()
		return
	}
	l.items = append(l.items[:i], l.items[i+1:]...)
	l.mu.Unlock()

	l.shape.Notify()
}

// SetAt replaces the element at index i. Out-of-range indices are no-ops.
// Strictly-equal replacements do not notify.
func (l *List) SetAt(i int, value any) {
	l.mu.Lock()
	if i < 0 || i >= len(l.items) {
		l.mu.Unlock()
		return
	}
	if strictEqual(l.items[i], value) {
		l.mu.Unlock()
		return
	}
	l.items[i] = Observe(value)
	l.mu.Unlock()

	l.shape.Notify()
}

// Splice removes deleteCount elements starting at start and inserts values
// in their place, notifying the shape cell exactly once. Arguments are
// clamped to the valid range.
func (l *List) Splice(start, deleteCount int, values ...any) {
	l.mu.Lock()
	n := len(l.items)
	if start < 0 {
		start = 0
	}
	if start > n {
		start = n
	}
	if deleteCount < 0 {
		deleteCount = 0
	}
	if start+deleteCount > n {
		deleteCount = n - start
	}

	wrapped := make([]any, len(values))
	for i, v := range values {
		wrapped[i] = Observe(v)
	}

	tail := append([]any(nil), l.items[start+deleteCount:]...)
	l.items = append(l.items[:start], wrapped...)
	l.items = append(l.items, tail...)
	l.mu.Unlock()

	l.shape.Notify()
}

// Sort reorders the list with the given comparison, then notifies once.
func (l *List) Sort(less func(a, b any) bool) {
	l.mu.Lock()
	sort.SliceStable(l.items, func(i, j int) bool { return less(l.items[i], l.items[j]) })
	l.mu.Unlock()

	l.shape.Notify()
}

// Reverse flips the element order, then notifies once.
func (l *List) Reverse() {
	l.mu.Lock()
	for i, j := 0, len(l.items)-1; i < j; i, j = i+1, j-1 {
		l.items[i], l.items[j] = l.items[j], l.items[i]
	}
	l.mu.Unlock()

	l.shape.Notify()
}

// Values returns a snapshot of the elements, subscribing to the shape cell.
func (l *List) Values() []any {
	l.shape.Depend()
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]any, len(l.items))
	copy(out, l.items)
	return out
}

// ShapeCell exposes the list's shape cell for advanced integrations.
func (l *List) ShapeCell() *Cell {
	return l.shape
}

// dependElements subscribes the active watcher to the shape cell of every
// observed element, recursing through nested lists. Reading a list-valued
// property subscribes to the whole reachable shape so deep mutations inside
// contents never read by index still surface.
func (l *List) dependElements() {
	l.mu.RLock()
	items := make([]any, len(l.items))
	copy(items, l.items)
	l.mu.RUnlock()

	for _, v := range items {
		switch c := v.(type) {
		case *Object:
			c.shape.Depend()
		case *List:
			c.shape.Depend()
			c.dependElements()
		}
	}
}
