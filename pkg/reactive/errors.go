package reactive

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	serrors "github.com/strand-ui/strand/internal/errors"
)

// ErrBadWatchPath is returned by Watch when the path expression cannot be
// parsed. Only dotted identifier paths are supported; anything else must be
// expressed as a getter function.
var ErrBadWatchPath = errors.New("strand: unsupported watch path expression")

// Phase identifies where in a watcher's lifecycle an error surfaced.
type Phase string

const (
	// PhaseGetter covers errors thrown while the getter runs under tracking.
	PhaseGetter Phase = "getter"

	// PhaseCallback covers errors thrown by a watch callback.
	PhaseCallback Phase = "callback"

	// PhaseTick covers errors thrown by a NextTick callback.
	PhaseTick Phase = "nextTick"
)

// ErrorHandler receives errors raised inside tracked evaluation and watch
// callbacks. The watcher argument is the owner of the failing code; it is
// nil for NextTick callbacks. Handlers must not assume the watcher is still
// active.
type ErrorHandler func(err error, w *Watcher, phase Phase)

var (
	errorHandlerMu sync.RWMutex
	errorHandler   ErrorHandler
)

// SetErrorHandler installs a process-wide handler for errors thrown inside
// getters and callbacks. Passing nil restores the default behavior of
// logging through slog.
func SetErrorHandler(h ErrorHandler) {
	errorHandlerMu.Lock()
	errorHandler = h
	errorHandlerMu.Unlock()
}

// reportError routes an error to the registered handler, falling back to
// structured logging. A failing getter aborts that run only; the watcher
// keeps whatever dependencies were tracked before the throw.
func reportError(err error, w *Watcher, phase Phase) {
	errorHandlerMu.RLock()
	h := errorHandler
	errorHandlerMu.RUnlock()

	if h != nil {
		h(err, w, phase)
		return
	}

	var id uint64
	if w != nil {
		id = w.id
	}
	slog.Error("strand: unhandled reactive error",
		"phase", string(phase),
		"watcher", id,
		"err", err,
	)
}

// recoveredError converts a recovered panic value into an error carrying
// the tracking-error code.
func recoveredError(r any) error {
	var inner error
	if err, ok := r.(error); ok {
		inner = err
	} else {
		inner = fmt.Errorf("%v", r)
	}
	return serrors.New(serrors.CodeTrackingError).Wrap(inner)
}
