package reactive

import (
	"strings"

	serrors "github.com/strand-ui/strand/internal/errors"
)

// WatchOptions tunes Watch behavior.
type WatchOptions struct {
	// Deep also subscribes to nested shape changes of the watched value.
	Deep bool

	// Immediate invokes the callback right away with the current value.
	Immediate bool

	// Sync runs the callback inside the notifying write instead of on the
	// next flush.
	Sync bool

	// Scheduler routes the watcher through a non-default scheduler.
	Scheduler *Scheduler
}

// Watch observes the value at a dotted path within the object and invokes
// cb(new, old) when it changes. It returns a stop function that releases
// every dependency subscription, and ErrBadWatchPath (wrapping the E005
// diagnostic) when the expression is not a plain dotted identifier path.
//
// A shallow watch on "a.b" is isolated from sibling properties: mutating
// "a.c" does not invoke cb.
func (o *Object) Watch(path string, cb func(newValue, oldValue any), opts ...WatchOptions) (func(), error) {
	getter, err := parsePath(path)
	if err != nil {
		return nil, err
	}
	root := o
	return WatchFn(func() any { return getter(root) }, cb, opts...), nil
}

// WatchFn observes the result of a getter function and invokes cb(new, old)
// when it changes. The returned stop function tears the watcher down.
func WatchFn(getter func() any, cb func(newValue, oldValue any), opts ...WatchOptions) func() {
	var opt WatchOptions
	if len(opts) > 0 {
		opt = opts[0]
	}

	wopts := []WatcherOption{OnChange(cb)}
	if opt.Deep {
		wopts = append(wopts, Deep())
	}
	if opt.Sync {
		wopts = append(wopts, Sync())
	}
	if opt.Scheduler != nil {
		wopts = append(wopts, WithScheduler(opt.Scheduler))
	}

	w := NewWatcher(getter, wopts...)
	if opt.Immediate {
		w.invoke(cb, w.Value(), nil)
	}
	return w.Teardown
}

// parsePath compiles a dotted path expression into a getter. Each segment
// must be a bare identifier; traversal stops with nil as soon as a segment
// is missing or the current value is not an object.
func parsePath(path string) (func(*Object) any, error) {
	if path == "" || !validPath(path) {
		return nil, serrors.New(serrors.CodeBadWatchPath).Wrap(ErrBadWatchPath)
	}

	segments := strings.Split(path, ".")
	return func(root *Object) any {
		var current any = root
		for _, seg := range segments {
			obj, ok := current.(*Object)
			if !ok {
				return nil
			}
			current = obj.Get(seg)
		}
		return current
	}, nil
}

// validPath accepts dotted identifier paths: letters, digits, '_' and '$'
// within segments, no empty segments.
func validPath(path string) bool {
	lastDot := true
	for _, r := range path {
		switch {
		case r == '.':
			if lastDot {
				return false
			}
			lastDot = true
		case r == '_' || r == '$',
			r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9':
			lastDot = false
		default:
			return false
		}
	}
	return !lastDot
}
