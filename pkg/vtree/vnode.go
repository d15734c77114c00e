package vtree

// Kind is the node type discriminator.
type Kind uint8

const (
	KindElement   Kind = iota // primitive element, e.g. "div"
	KindText                  // plain text node
	KindComment               // comment node
	KindComponent             // nested component
	KindEmpty                 // empty placeholder
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindComment:
		return "Comment"
	case KindComponent:
		return "Component"
	case KindEmpty:
		return "Empty"
	default:
		return "Unknown"
	}
}

// Attrs holds the attribute/prop/event bag of a node.
type Attrs map[string]any

// VNode is an immutable-by-convention description of a UI node. The
// reconciler fills in Ref (and Inst for components) as it materializes the
// description; everything else is authored by the producer and must not be
// mutated after patching.
type VNode struct {
	Kind     Kind
	Tag      string       // element tag name (KindElement)
	Attrs    Attrs        // attributes and event handlers
	Children []*VNode     // ordered child descriptions
	Key      string       // reconciliation key, unique among keyed siblings
	Text     string       // content for KindText and KindComment
	Pending  bool         // still awaiting asynchronous resolution
	Def      ComponentDef // component identity (KindComponent)

	// Ref is the platform node this description was materialized into.
	Ref Node

	// Inst is the live instance behind a component node.
	Inst Instance
}

// WithKey sets the reconciliation key and returns the node.
func (v *VNode) WithKey(key string) *VNode {
	v.Key = key
	return v
}

// sameNode decides whether b can be patched in place over a, or whether the
// subtree must be torn down and rebuilt. False positives corrupt platform
// state; false negatives only cost performance.
func sameNode(a, b *VNode) bool {
	if a == nil || b == nil {
		return false
	}
	if a.Key != b.Key || a.Kind != b.Kind || a.Pending != b.Pending {
		return false
	}
	switch a.Kind {
	case KindElement:
		return a.Tag == b.Tag
	case KindComponent:
		return a.Def == b.Def
	default:
		// Text, comment and empty nodes of the same kind are always the
		// same node; content is updated in place.
		return true
	}
}

// ComponentDef identifies a component type and creates live instances of
// it. Two component nodes are the same node only when their defs compare
// equal.
type ComponentDef interface {
	// Name returns a diagnostic name for the component.
	Name() string

	// Mount materializes an instance for the given description against the
	// platform and returns it. The instance's root node must exist when
	// Mount returns.
	Mount(vn *VNode, p Platform) Instance
}

// Instance is a live component mounted in the tree. Patching a component
// node delegates to Receive (the instance updates its inputs and lets its
// own rendering watcher re-run) instead of diffing structure here.
type Instance interface {
	// Receive hands the instance its next description (new attrs and
	// children).
	Receive(next *VNode)

	// Root returns the platform node at the instance's root.
	Root() Node

	// Unmount tears the instance down and removes its subtree.
	Unmount()
}
