package component

import (
	"log/slog"
	"sync"

	serrors "github.com/strand-ui/strand/internal/errors"
	"github.com/strand-ui/strand/pkg/reactive"
	"github.com/strand-ui/strand/pkg/vtree"
)

// RenderFunc produces the next tree description. Reads of observed state
// inside it are tracked; any of them changing re-renders.
type RenderFunc func() *vtree.VNode

// Instance is a mounted root: a render function, the tree it last produced,
// and the watcher that keeps the two in sync with observed state.
type Instance struct {
	patcher    *vtree.Patcher
	container  vtree.Node
	render     RenderFunc
	logger     *slog.Logger
	sched      *reactive.Scheduler
	patchHooks vtree.Hooks

	mu   sync.Mutex
	tree *vtree.VNode
	w    *reactive.Watcher
}

// Option configures an Instance at mount.
type Option func(*Instance)

// WithLogger sets the diagnostics logger.
func WithLogger(logger *slog.Logger) Option {
	return func(inst *Instance) { inst.logger = logger }
}

// WithScheduler routes the rendering watcher through sched instead of the
// default scheduler.
func WithScheduler(sched *reactive.Scheduler) Option {
	return func(inst *Instance) { inst.sched = sched }
}

// WithPatchHooks installs per-mutation hooks on the instance's patcher.
func WithPatchHooks(h vtree.Hooks) Option {
	return func(inst *Instance) { inst.patchHooks = h }
}

// Mount renders the root component into container and keeps it updated.
// The initial render happens synchronously before Mount returns; subsequent
// renders are batched through the scheduler.
func Mount(container vtree.Node, p vtree.Platform, render RenderFunc, opts ...Option) *Instance {
	inst := &Instance{
		container: container,
		render:    render,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(inst)
	}
	popts := []vtree.Option{vtree.WithLogger(inst.logger)}
	if inst.patchHooks != nil {
		popts = append(popts, vtree.WithHooks(inst.patchHooks))
	}
	inst.patcher = vtree.New(p, popts...)

	var wopts []reactive.WatcherOption
	if inst.sched != nil {
		wopts = append(wopts, reactive.WithScheduler(inst.sched))
	}
	inst.w = reactive.NewWatcher(inst.renderAndPatch, wopts...)
	return inst
}

// renderAndPatch is the rendering watcher's getter: render the next
// description, patch it over the previous one, remember it. Running the
// patch inside the tracked getter is what ties the instance's subscriptions
// to exactly the state the current tree reads.
func (inst *Instance) renderAndPatch() any {
	if inst.render == nil {
		inst.reportMalformed("render function is nil")
		inst.mu.Lock()
		defer inst.mu.Unlock()
		return inst.tree
	}

	next := inst.render()
	if next == nil {
		// Keep showing the previous tree rather than blanking the UI.
		inst.reportMalformed("render returned no root node")
		inst.mu.Lock()
		defer inst.mu.Unlock()
		return inst.tree
	}

	inst.mu.Lock()
	prev := inst.tree
	inst.tree = next
	inst.mu.Unlock()

	if prev == nil {
		inst.patcher.MountAt(inst.container, next)
	} else {
		inst.patcher.Patch(prev, next)
	}
	return next
}

func (inst *Instance) reportMalformed(detail string) {
	err := serrors.New(serrors.CodeMalformedTree).WithDetail(detail)
	inst.logger.Error("strand: malformed render output",
		"code", err.Code,
		"detail", detail,
	)
}

// Root returns the platform node at the mounted tree's root, or nil before
// the first successful render.
func (inst *Instance) Root() vtree.Node {
	inst.mu.Lock()
	defer inst.mu.Unlock()
	if inst.tree == nil {
		return nil
	}
	return inst.tree.Ref
}

// Tree returns the last rendered description.
func (inst *Instance) Tree() *vtree.VNode {
	inst.mu.Lock()
	defer inst.mu.Unlock()
	return inst.tree
}

// Teardown stops the rendering watcher, unsubscribes it everywhere, and
// removes the mounted subtree from the platform.
func (inst *Instance) Teardown() {
	inst.w.Teardown()

	inst.mu.Lock()
	tree := inst.tree
	inst.tree = nil
	inst.mu.Unlock()

	if tree != nil {
		inst.patcher.Patch(tree, nil)
	}
}
