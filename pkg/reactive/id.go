package reactive

import "sync/atomic"

// globalIDCounter is the source of unique IDs for cells and watchers.
// Using atomic operations ensures thread-safe ID generation without locks.
var globalIDCounter uint64

// nextID returns the next unique ID for a reactive primitive.
// IDs are monotonically increasing and never reused. Watcher IDs double as
// the scheduler's sort key, so creation order is execution order.
func nextID() uint64 {
	return atomic.AddUint64(&globalIDCounter, 1)
}
