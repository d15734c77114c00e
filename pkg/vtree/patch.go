package vtree

import (
	"log/slog"
	"reflect"

	serrors "github.com/strand-ui/strand/internal/errors"
)

// Op names reported to hooks, one per platform mutation kind.
const (
	OpCreate         = "create"
	OpCreateText     = "create_text"
	OpSetAttr        = "set_attr"
	OpRemoveAttr     = "remove_attr"
	OpInsert         = "insert"
	OpRemove         = "remove"
	OpSetText        = "set_text"
	OpMountComponent = "mount_component"
)

// Hooks receives a notification per applied mutation. Implementations must
// be fast; they run inline on the patch path.
type Hooks interface {
	OpApplied(op string)
}

// Patcher reconciles tree descriptions against one Platform.
type Patcher struct {
	p         Platform
	logger    *slog.Logger
	hooks     Hooks
	devChecks bool
}

// Option configures a Patcher.
type Option func(*Patcher)

// WithLogger sets the logger used for reconciliation diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(pt *Patcher) { pt.logger = logger }
}

// WithHooks installs per-mutation hooks.
func WithHooks(h Hooks) Option {
	return func(pt *Patcher) { pt.hooks = h }
}

// WithDevChecks enables development-time validation such as duplicate
// sibling key detection. Off by default; the checks cost a pass per child
// list.
func WithDevChecks() Option {
	return func(pt *Patcher) { pt.devChecks = true }
}

// New creates a Patcher bound to a platform.
func New(p Platform, opts ...Option) *Patcher {
	pt := &Patcher{
		p:      p,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(pt)
	}
	return pt
}

func (pt *Patcher) op(name string) {
	if pt.hooks != nil {
		pt.hooks.OpApplied(name)
	}
}

// Patch reconciles new against old and returns the root platform node.
// A nil old fully materializes new; a nil new fully destroys old. When the
// two are the same node they are patched in place, otherwise the old
// subtree is destroyed and a fresh one replaces it at the same position.
func (pt *Patcher) Patch(old, new *VNode) Node {
	switch {
	case old == nil && new == nil:
		return nil
	case old == nil:
		return pt.create(new)
	case new == nil:
		pt.destroy(old)
		return nil
	}

	if sameNode(old, new) {
		pt.patchNode(old, new)
		return new.Ref
	}

	parent := pt.p.Parent(old.Ref)
	var before Node
	if parent != nil {
		before = pt.p.NextSibling(old.Ref)
	}
	pt.destroy(old)
	root := pt.create(new)
	if parent != nil {
		pt.p.Insert(parent, root, before)
		pt.op(OpInsert)
	}
	return root
}

// MountAt materializes vn and appends it under parent.
func (pt *Patcher) MountAt(parent Node, vn *VNode) Node {
	root := pt.create(vn)
	pt.p.Insert(parent, root, nil)
	pt.op(OpInsert)
	return root
}

// create materializes a description, recording the platform node in Ref.
func (pt *Patcher) create(vn *VNode) Node {
	switch vn.Kind {
	case KindText:
		vn.Ref = pt.p.CreateText(vn.Text)
		pt.op(OpCreateText)
	case KindComponent:
		vn.Inst = vn.Def.Mount(vn, pt.p)
		vn.Ref = vn.Inst.Root()
		pt.op(OpMountComponent)
	default:
		vn.Ref = pt.p.CreateNode(vn)
		pt.op(OpCreate)
		for key, value := range vn.Attrs {
			if key == "key" {
				continue
			}
			pt.p.SetAttr(vn.Ref, key, value)
			pt.op(OpSetAttr)
		}
		for _, child := range vn.Children {
			pt.p.Insert(vn.Ref, pt.create(child), nil)
			pt.op(OpInsert)
		}
	}
	return vn.Ref
}

// destroy tears down the materialized subtree behind vn, unmounting nested
// component instances depth-first before removing the root.
func (pt *Patcher) destroy(vn *VNode) {
	if vn.Kind == KindComponent {
		if vn.Inst != nil {
			vn.Inst.Unmount()
		}
		return
	}
	pt.release(vn)
	if vn.Ref != nil {
		pt.p.Remove(vn.Ref)
		pt.op(OpRemove)
	}
}

// release unmounts component instances nested inside an element subtree.
// Their platform nodes go away with the subtree root's removal.
func (pt *Patcher) release(vn *VNode) {
	for _, child := range vn.Children {
		if child.Kind == KindComponent {
			if child.Inst != nil {
				child.Inst.Unmount()
			}
			continue
		}
		pt.release(child)
	}
}

// patchNode updates a materialized node in place. Component nodes delegate
// to the instance's own update path: new inputs go in, the instance's
// rendering watcher re-runs on its own schedule.
func (pt *Patcher) patchNode(old, new *VNode) {
	new.Ref = old.Ref

	switch new.Kind {
	case KindComponent:
		new.Inst = old.Inst
		new.Inst.Receive(new)
		new.Ref = new.Inst.Root()
	case KindText, KindComment:
		if old.Text != new.Text {
			pt.p.SetText(new.Ref, new.Text)
			pt.op(OpSetText)
		}
	case KindElement:
		pt.updateAttrs(old, new)
		pt.updateChildren(new.Ref, old.Children, new.Children)
	case KindEmpty:
		// Nothing to update.
	}
}

// updateAttrs diffs the attribute bags key by key: keys present in old but
// absent in new are removed, keys whose value changed are set.
func (pt *Patcher) updateAttrs(old, new *VNode) {
	for key, oldVal := range old.Attrs {
		if key == "key" {
			continue
		}
		newVal, exists := new.Attrs[key]
		if !exists {
			pt.p.RemoveAttr(new.Ref, key)
			pt.op(OpRemoveAttr)
		} else if !attrsEqual(oldVal, newVal) {
			pt.p.SetAttr(new.Ref, key, newVal)
			pt.op(OpSetAttr)
		}
	}

	for key, newVal := range new.Attrs {
		if key == "key" {
			continue
		}
		if _, exists := old.Attrs[key]; !exists {
			pt.p.SetAttr(new.Ref, key, newVal)
			pt.op(OpSetAttr)
		}
	}
}

// attrsEqual compares two attribute values. Function values never compare
// equal, so handlers are re-set on every patch; platforms that care can
// dedupe internally.
func attrsEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}

// updateChildren reconciles two child sequences with the keyed four-pointer
// walk. The four head/tail comparisons resolve the common edit patterns
// (prepend, append, single-range move) in O(1) per step; only genuine
// reordering pays for the lazily built key map. The old slice is copied so
// matched-by-key entries can be blanked without mutating the caller's tree.
func (pt *Patcher) updateChildren(parent Node, oldCh, newCh []*VNode) {
	if pt.devChecks {
		pt.checkDuplicateKeys(newCh)
	}

	oldStart, oldEnd := 0, len(oldCh)-1
	newStart, newEnd := 0, len(newCh)-1
	old := make([]*VNode, len(oldCh))
	copy(old, oldCh)

	var keyIdx map[string]int

	for oldStart <= oldEnd && newStart <= newEnd {
		switch {
		case old[oldStart] == nil:
			// Already matched by key and moved.
			oldStart++
		case old[oldEnd] == nil:
			oldEnd--
		case sameNode(old[oldStart], newCh[newStart]):
			pt.patchNode(old[oldStart], newCh[newStart])
			oldStart++
			newStart++
		case sameNode(old[oldEnd], newCh[newEnd]):
			pt.patchNode(old[oldEnd], newCh[newEnd])
			oldEnd--
			newEnd--
		case sameNode(old[oldStart], newCh[newEnd]):
			// Node moved toward the end.
			pt.patchNode(old[oldStart], newCh[newEnd])
			pt.p.Insert(parent, newCh[newEnd].Ref, pt.p.NextSibling(old[oldEnd].Ref))
			pt.op(OpInsert)
			oldStart++
			newEnd--
		case sameNode(old[oldEnd], newCh[newStart]):
			// Node moved toward the front.
			pt.patchNode(old[oldEnd], newCh[newStart])
			pt.p.Insert(parent, newCh[newStart].Ref, old[oldStart].Ref)
			pt.op(OpInsert)
			oldEnd--
			newStart++
		default:
			if keyIdx == nil {
				keyIdx = pt.buildKeyIndex(old, oldStart, oldEnd)
			}
			idx := -1
			if nk := newCh[newStart].Key; nk != "" {
				if i, ok := keyIdx[nk]; ok {
					idx = i
				}
			}
			if idx >= 0 && old[idx] != nil && sameNode(old[idx], newCh[newStart]) {
				pt.patchNode(old[idx], newCh[newStart])
				pt.p.Insert(parent, newCh[newStart].Ref, old[oldStart].Ref)
				pt.op(OpInsert)
				old[idx] = nil
			} else {
				// Unkeyed, unknown key, or key reused for a different
				// node type: build fresh at this position.
				pt.p.Insert(parent, pt.create(newCh[newStart]), old[oldStart].Ref)
				pt.op(OpInsert)
			}
			newStart++
		}
	}

	if oldStart > oldEnd {
		// Old range exhausted: bulk-insert the remaining new nodes before
		// the first node already matched from the tail.
		var before Node
		if newEnd+1 < len(newCh) {
			before = newCh[newEnd+1].Ref
		}
		for i := newStart; i <= newEnd; i++ {
			pt.p.Insert(parent, pt.create(newCh[i]), before)
			pt.op(OpInsert)
		}
	} else if newStart > newEnd {
		// New range exhausted: bulk-remove the remaining old nodes.
		for i := oldStart; i <= oldEnd; i++ {
			if old[i] != nil {
				pt.destroy(old[i])
			}
		}
	}
}

// buildKeyIndex maps keys to indices over the remaining old range, logging
// a diagnostic on duplicates (the later entry wins, matching positional
// bias toward earlier reuse).
func (pt *Patcher) buildKeyIndex(old []*VNode, start, end int) map[string]int {
	idx := make(map[string]int, end-start+1)
	for i := start; i <= end; i++ {
		if old[i] == nil || old[i].Key == "" {
			continue
		}
		if _, dup := idx[old[i].Key]; dup {
			err := serrors.New(serrors.CodeDuplicateKeys)
			pt.logger.Warn("strand: duplicate key among siblings",
				"key", old[i].Key,
				"code", err.Code,
			)
			continue
		}
		idx[old[i].Key] = i
	}
	return idx
}

// checkDuplicateKeys validates the new child list once per reconciliation.
func (pt *Patcher) checkDuplicateKeys(children []*VNode) {
	seen := make(map[string]struct{}, len(children))
	for _, c := range children {
		if c == nil || c.Key == "" {
			continue
		}
		if _, dup := seen[c.Key]; dup {
			err := serrors.New(serrors.CodeDuplicateKeys)
			pt.logger.Warn("strand: duplicate key among siblings",
				"key", c.Key,
				"code", err.Code,
			)
		}
		seen[c.Key] = struct{}{}
	}
}
