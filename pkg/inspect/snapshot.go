package inspect

import (
	"github.com/strand-ui/strand/pkg/reactive"
)

// Snapshot converts observed containers into plain maps and slices for JSON
// serialization. It reads untracked, so snapshotting inside a watcher does
// not subscribe it, and guards against self-referencing containers.
func Snapshot(v any) any {
	var out any
	reactive.Untracked(func() {
		out = snapshotWith(v, make(map[uint64]struct{}))
	})
	return out
}

func snapshotWith(v any, seen map[uint64]struct{}) any {
	switch c := v.(type) {
	case *reactive.Object:
		id := c.ShapeCell().ID()
		if _, ok := seen[id]; ok {
			return "<cycle>"
		}
		seen[id] = struct{}{}
		m := make(map[string]any)
		for _, key := range c.Keys() {
			m[key] = snapshotWith(c.Peek(key), seen)
		}
		delete(seen, id)
		return m
	case *reactive.List:
		id := c.ShapeCell().ID()
		if _, ok := seen[id]; ok {
			return "<cycle>"
		}
		seen[id] = struct{}{}
		items := c.Values()
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = snapshotWith(item, seen)
		}
		delete(seen, id)
		return out
	default:
		return v
	}
}
