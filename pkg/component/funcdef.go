package component

import (
	"log/slog"
	"sync"

	serrors "github.com/strand-ui/strand/internal/errors"
	"github.com/strand-ui/strand/pkg/reactive"
	"github.com/strand-ui/strand/pkg/vtree"
)

// childRevKey is the declared key on the children box that render functions
// depend on through Children(). Bumped whenever the parent passes new
// children.
const childRevKey = "rev"

// SetupFunc configures a function component. It runs once per instance at
// mount, receives the instance's observed inputs and a tracked children
// accessor, and returns the render function. State created inside the setup
// closure is private to the instance.
type SetupFunc func(inputs *reactive.Object, children func() []*vtree.VNode) RenderFunc

// FuncDef is a component definition backed by a setup function. Two tree
// nodes are the same component only when they point at the same *FuncDef.
type FuncDef struct {
	name  string
	setup SetupFunc
}

// Define creates a component definition.
func Define(name string, setup SetupFunc) *FuncDef {
	return &FuncDef{name: name, setup: setup}
}

// Name implements vtree.ComponentDef.
func (d *FuncDef) Name() string {
	return d.name
}

// Mount implements vtree.ComponentDef. The instance's initial render runs
// before Mount returns, detached; the caller inserts Root() into position.
func (d *FuncDef) Mount(vn *vtree.VNode, p vtree.Platform) vtree.Instance {
	fi := &funcInstance{
		def:      d,
		patcher:  vtree.New(p),
		logger:   slog.Default(),
		inputs:   reactive.NewObject(),
		childBox: reactive.NewObject(),
		children: vn.Children,
	}
	for key, value := range vn.Attrs {
		if key == "key" {
			continue
		}
		fi.inputs.Declare(key, value)
	}
	fi.childBox.Declare(childRevKey, 0)

	fi.render = d.setup(fi.inputs, fi.Children)
	fi.w = reactive.NewWatcher(fi.renderAndPatch)
	return fi
}

// funcInstance is the live side of a FuncDef. It mirrors Instance but renders
// detached and takes updated inputs through Receive instead of owning a
// container.
type funcInstance struct {
	def     *FuncDef
	patcher *vtree.Patcher
	logger  *slog.Logger
	render  RenderFunc

	// inputs carries the attrs the parent passed, one declared key per attr.
	inputs *reactive.Object

	// childBox holds a revision counter so renders that place children
	// re-run when the parent passes a new child list.
	childBox *reactive.Object

	mu       sync.Mutex
	children []*vtree.VNode
	tree     *vtree.VNode
	w        *reactive.Watcher
}

// Children returns the child descriptions the parent passed, subscribing
// the active watcher to future child-list updates.
func (fi *funcInstance) Children() []*vtree.VNode {
	fi.childBox.Get(childRevKey)
	fi.mu.Lock()
	defer fi.mu.Unlock()
	return fi.children
}

func (fi *funcInstance) renderAndPatch() any {
	next := fi.render()
	if next == nil {
		err := serrors.New(serrors.CodeMalformedTree)
		fi.logger.Error("strand: malformed render output",
			"component", fi.def.name,
			"code", err.Code,
		)
		fi.mu.Lock()
		defer fi.mu.Unlock()
		return fi.tree
	}

	fi.mu.Lock()
	prev := fi.tree
	fi.tree = next
	fi.mu.Unlock()

	fi.patcher.Patch(prev, next)
	return next
}

// Receive implements vtree.Instance. It runs inside the parent's tracked
// render, so every read here is wrapped in Untracked: the parent must not
// subscribe to the child's inputs. The writes still notify; the child's own
// watcher joins the flush already in progress.
func (fi *funcInstance) Receive(next *vtree.VNode) {
	reactive.Untracked(func() {
		seen := make(map[string]struct{}, len(next.Attrs))
		for key, value := range next.Attrs {
			if key == "key" {
				continue
			}
			seen[key] = struct{}{}
			fi.inputs.Declare(key, value)
		}
		for _, key := range fi.inputs.Keys() {
			if _, ok := seen[key]; !ok {
				fi.inputs.Delete(key)
			}
		}

		fi.mu.Lock()
		changed := len(next.Children) > 0 || len(fi.children) > 0
		fi.children = next.Children
		fi.mu.Unlock()

		if changed {
			rev, _ := fi.childBox.Peek(childRevKey).(int)
			fi.childBox.Set(childRevKey, rev+1)
		}
	})
}

// Root implements vtree.Instance.
func (fi *funcInstance) Root() vtree.Node {
	fi.mu.Lock()
	defer fi.mu.Unlock()
	if fi.tree == nil {
		return nil
	}
	return fi.tree.Ref
}

// Unmount implements vtree.Instance.
func (fi *funcInstance) Unmount() {
	fi.w.Teardown()

	fi.mu.Lock()
	tree := fi.tree
	fi.tree = nil
	fi.mu.Unlock()

	if tree != nil {
		fi.patcher.Patch(tree, nil)
	}
}
