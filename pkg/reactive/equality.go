package reactive

import (
	"math"
	"reflect"
)

// strictEqual reports whether a write of b over a is a no-change write.
// Semantics are identity equality with one caveat: a NaN written over a NaN
// is treated as no-change, so a NaN-valued slot does not notify forever.
func strictEqual(a, b any) bool {
	switch av := a.(type) {
	case float64:
		bv, ok := b.(float64)
		if !ok {
			return false
		}
		if math.IsNaN(av) && math.IsNaN(bv) {
			return true
		}
		return av == bv
	case float32:
		bv, ok := b.(float32)
		if !ok {
			return false
		}
		if math.IsNaN(float64(av)) && math.IsNaN(float64(bv)) {
			return true
		}
		return av == bv
	case int:
		bv, ok := b.(int)
		return ok && av == bv
	case int64:
		bv, ok := b.(int64)
		return ok && av == bv
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case nil:
		return b == nil
	}

	ta := reflect.TypeOf(a)
	tb := reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if !ta.Comparable() {
		// Slices, maps, funcs: never considered identical.
		return false
	}
	return a == b
}

// isContainer reports whether v is an observed container. Watchers whose
// result is a container always propagate a change: identity equality cannot
// detect mutation inside the same container.
func isContainer(v any) bool {
	switch v.(type) {
	case *Object, *List:
		return true
	}
	return false
}
