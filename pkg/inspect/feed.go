package inspect

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event is one entry of the inspector stream.
type Event struct {
	Type       string    `json:"type"`
	At         time.Time `json:"at"`
	Pending    int       `json:"pending,omitempty"`
	Ran        int       `json:"ran,omitempty"`
	DurationUS int64     `json:"duration_us,omitempty"`
	Watcher    uint64    `json:"watcher,omitempty"`
	Op         string    `json:"op,omitempty"`
}

// Event types carried on the feed.
const (
	EventFlushStart = "flush_start"
	EventFlushEnd   = "flush_end"
	EventWatcherRun = "watcher_run"
	EventCycle      = "cycle"
	EventPatchOp    = "patch_op"
)

// Feed broadcasts scheduler and reconciler events to subscribed clients.
// It implements telemetry.Hooks. Slow subscribers drop events rather than
// stall the flush path.
type Feed struct {
	logger *slog.Logger

	mu   sync.RWMutex
	subs map[string]chan Event
}

// NewFeed creates an empty feed.
func NewFeed(logger *slog.Logger) *Feed {
	if logger == nil {
		logger = slog.Default()
	}
	return &Feed{
		logger: logger,
		subs:   make(map[string]chan Event),
	}
}

// Subscribe registers a new subscriber and returns its id and channel.
func (f *Feed) Subscribe(buffer int) (string, <-chan Event) {
	id := uuid.NewString()
	ch := make(chan Event, buffer)

	f.mu.Lock()
	f.subs[id] = ch
	f.mu.Unlock()

	f.logger.Debug("inspector subscribed", "client", id)
	return id, ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (f *Feed) Unsubscribe(id string) {
	f.mu.Lock()
	ch, ok := f.subs[id]
	delete(f.subs, id)
	f.mu.Unlock()

	if ok {
		close(ch)
		f.logger.Debug("inspector unsubscribed", "client", id)
	}
}

// SubscriberCount returns the number of connected subscribers.
func (f *Feed) SubscriberCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subs)
}

func (f *Feed) broadcast(ev Event) {
	ev.At = time.Now()

	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, ch := range f.subs {
		select {
		case ch <- ev:
		default:
			// Subscriber is behind; drop rather than block the flush.
		}
	}
}

// FlushStart implements reactive.Hooks.
func (f *Feed) FlushStart(pending int) {
	f.broadcast(Event{Type: EventFlushStart, Pending: pending})
}

// FlushEnd implements reactive.Hooks.
func (f *Feed) FlushEnd(ran int, took time.Duration) {
	f.broadcast(Event{Type: EventFlushEnd, Ran: ran, DurationUS: took.Microseconds()})
}

// WatcherRan implements reactive.Hooks.
func (f *Feed) WatcherRan(id uint64) {
	f.broadcast(Event{Type: EventWatcherRun, Watcher: id})
}

// CycleDetected implements reactive.Hooks.
func (f *Feed) CycleDetected(id uint64) {
	f.broadcast(Event{Type: EventCycle, Watcher: id})
}

// OpApplied implements vtree.Hooks.
func (f *Feed) OpApplied(op string) {
	f.broadcast(Event{Type: EventPatchOp, Op: op})
}
